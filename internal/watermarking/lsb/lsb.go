package lsb

import (
	"bytes"
	"io"

	"stegguard/internal/carrier"
	"stegguard/internal/stego"
	"stegguard/internal/watermarking"
)

// LSB hides data in the least-significant bit of every image sample.
type LSB struct {
	Algorithm string
}

func init() {

	lsb := &LSB{
		Algorithm: watermarking.DefaultAlgorithm,
	}

	watermarking.Register(lsb.Algorithm, lsb)
}

// Name returns the algorithm's name.
func (w *LSB) Name() string {
	return w.Algorithm
}

// Description returns the algorithm's description.
func (w *LSB) Description() string {
	return "Hides a payload with its MD5 digest in the least-significant bit of every sample of a PNG, BMP or TIFF image"
}

// Embed decodes the carrier, hides data in it and re-encodes it in the carrier's own format.
func (w *LSB) Embed(reader io.Reader, data []byte) (io.Reader, error) {
	img, err := carrier.Decode(reader)
	if err != nil {
		return nil, err
	}

	out, err := stego.Embed(data, img.Raster)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	stegoImg := &carrier.Image{Raster: out, Format: img.Format, Palette: img.Palette}
	if err := carrier.Encode(&buf, stegoImg, img.Format); err != nil {
		return nil, err
	}
	return &buf, nil
}

// Extract recovers and verifies data hidden by Embed.
func (w *LSB) Extract(reader io.Reader) ([]byte, error) {
	img, err := carrier.Decode(reader)
	if err != nil {
		return nil, err
	}
	return stego.Extract(img.Raster)
}
