// Package bitplane writes bit sequences into the least-significant bit of
// 8-bit image samples and reads them back.
//
// Samples are addressed through a single linear order, row-major and
// channel-minor. Embedding and extraction both go through SampleOffset so the
// traversal is identical in both directions.
package bitplane

import (
	"errors"
	"fmt"
)

// ErrInvalidRaster is returned for rasters whose geometry does not match their buffer.
var ErrInvalidRaster = errors.New("invalid raster")

// Raster is a flat buffer of 8-bit samples. Sample (x, y, c) lives at
// Pix[y*Stride + x*Channels + c].
type Raster struct {
	Width    int
	Height   int
	Channels int
	Stride   int
	Pix      []uint8
}

// NewRaster allocates a zeroed, tightly packed raster.
func NewRaster(width, height, channels int) *Raster {
	stride := width * channels
	return &Raster{
		Width:    width,
		Height:   height,
		Channels: channels,
		Stride:   stride,
		Pix:      make([]uint8, stride*height),
	}
}

// Validate checks that the geometry is addressable within Pix.
func (r *Raster) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil raster", ErrInvalidRaster)
	}
	if r.Width < 0 || r.Height < 0 || r.Channels < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%dx%d", ErrInvalidRaster, r.Width, r.Height, r.Channels)
	}
	if r.Stride < r.Width*r.Channels {
		return fmt.Errorf("%w: stride %d shorter than row of %d samples", ErrInvalidRaster, r.Stride, r.Width*r.Channels)
	}
	if r.Height > 0 && r.Width*r.Channels > 0 {
		need := (r.Height-1)*r.Stride + r.Width*r.Channels
		if len(r.Pix) < need {
			return fmt.Errorf("%w: buffer holds %d samples, geometry needs %d", ErrInvalidRaster, len(r.Pix), need)
		}
	}
	return nil
}

// Capacity is the number of addressable samples, one hidden bit each.
func (r *Raster) Capacity() int {
	return r.Width * r.Height * r.Channels
}

// SampleOffset maps linear sample position i to its offset in Pix.
func (r *Raster) SampleOffset(i int) int {
	row := r.Width * r.Channels
	return (i/row)*r.Stride + i%row
}

// Clone returns a tightly packed copy that shares no memory with r.
func (r *Raster) Clone() *Raster {
	out := NewRaster(r.Width, r.Height, r.Channels)
	row := r.Width * r.Channels
	for y := 0; y < r.Height; y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+row], r.Pix[y*r.Stride:y*r.Stride+row])
	}
	return out
}

// At returns sample i in linear order.
func (r *Raster) At(i int) uint8 {
	return r.Pix[r.SampleOffset(i)]
}
