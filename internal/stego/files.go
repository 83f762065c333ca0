package stego

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"stegguard/internal/carrier"
)

// Report summarizes a completed file operation.
type Report struct {
	PayloadSize int
	Checksum    string // hex MD5 of the payload
	BitsUsed    int
	Capacity    int
	Format      string
}

// EmbedFile hides the file at payloadPath inside the image at carrierPath and
// writes the stego image to outputPath. The output format follows the output
// extension and must be lossless. Nothing is written unless every step succeeds.
func EmbedFile(payloadPath, carrierPath, outputPath string) (*Report, error) {
	format, err := carrier.FormatForPath(outputPath)
	if err != nil {
		return nil, err
	}

	payload, sum, err := readPayload(payloadPath)
	if err != nil {
		return nil, err
	}

	img, err := carrier.Load(carrierPath)
	if err != nil {
		return nil, notFound(carrierPath, err)
	}

	out, err := embed(payload, sum, img.Raster)
	if err != nil {
		return nil, err
	}

	stegoImg := &carrier.Image{Raster: out, Format: format, Palette: img.Palette}
	err = writeAtomic(outputPath, func(w io.Writer) error {
		return carrier.Encode(w, stegoImg, format)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[DEBUG] embedded %d bytes into %s (%d/%d samples)", len(payload), outputPath, RequiredBits(len(payload)), out.Capacity())
	return &Report{
		PayloadSize: len(payload),
		Checksum:    hex.EncodeToString(sum),
		BitsUsed:    RequiredBits(len(payload)),
		Capacity:    out.Capacity(),
		Format:      format,
	}, nil
}

// ExtractFile recovers the payload hidden in the image at stegoPath and
// writes it to outputPath only after the checksum has been verified.
func ExtractFile(stegoPath, outputPath string) (*Report, error) {
	img, err := carrier.Load(stegoPath)
	if err != nil {
		return nil, notFound(stegoPath, err)
	}

	payload, read, err := extract(img.Raster)
	if err != nil {
		return nil, err
	}

	err = writeAtomic(outputPath, func(w io.Writer) error {
		_, err := w.Write(payload)
		return err
	})
	if err != nil {
		return nil, err
	}

	sum := md5.Sum(payload)
	return &Report{
		PayloadSize: len(payload),
		Checksum:    hex.EncodeToString(sum[:]),
		BitsUsed:    read,
		Capacity:    img.Raster.Capacity(),
		Format:      img.Format,
	}, nil
}

// readPayload reads the whole file and hashes it in bounded chunks on the way.
func readPayload(path string) ([]byte, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, notFound(path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if info, err := f.Stat(); err == nil {
		buf.Grow(int(info.Size()))
	}

	h := md5.New()
	if _, err := copyChunked(io.MultiWriter(h, &buf), f); err != nil {
		return nil, nil, fmt.Errorf("read payload %s: %w", path, err)
	}
	return buf.Bytes(), h.Sum(nil), nil
}

// writeAtomic writes to a temp file next to path and renames it into place,
// so a failure never leaves a partially written output behind.
func writeAtomic(path string, write func(w io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

func notFound(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %w", ErrFileNotFound, path, err)
	}
	return err
}
