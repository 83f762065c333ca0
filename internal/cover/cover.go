// Package cover generates carrier images for embedding.
//
// Output is always an opaque RGB raster written through the carrier package,
// so the format follows the output extension (.png, .bmp, .tif/.tiff).
package cover

import (
	"crypto/rand"
	"fmt"
	"image/color"
	mrand "math/rand/v2"
	"strconv"
	"strings"

	"stegguard/internal/bitplane"
	"stegguard/internal/carrier"
)

// Config holds parameters for cover generation.
type Config struct {
	Width  int    // Pixel width (default: 1280)
	Height int    // Pixel height (default: 720)
	Color  string // Hex "#rrggbb" or "random"
	Noise  int    // Per-sample noise amplitude, 0 for a flat fill
	Seed   uint64 // Noise seed; the same seed yields the same image
}

// ParseColor parses a color string. Accepts "#rrggbb", "random", or "".
// Empty string is treated as "random".
func ParseColor(s string) (color.RGBA, error) {
	if s == "" || s == "random" {
		buf := make([]byte, 3)
		if _, err := rand.Read(buf); err != nil {
			return color.RGBA{}, fmt.Errorf("random color: %w", err)
		}
		return color.RGBA{R: buf[0], G: buf[1], B: buf[2], A: 255}, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: expected 6-char hex", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// NewSolid returns a w×h RGB raster filled with c.
func NewSolid(w, h int, c color.RGBA) *bitplane.Raster {
	r := bitplane.NewRaster(w, h, 3)
	for i := 0; i < len(r.Pix); i += 3 {
		r.Pix[i], r.Pix[i+1], r.Pix[i+2] = c.R, c.G, c.B
	}
	return r
}

// AddNoise perturbs every sample by up to ±amplitude, clamped to [0, 255].
func AddNoise(r *bitplane.Raster, amplitude int, seed uint64) {
	if amplitude <= 0 {
		return
	}
	rng := mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range r.Pix {
		v := int(r.Pix[i]) + rng.IntN(2*amplitude+1) - amplitude
		r.Pix[i] = uint8(min(max(v, 0), 255))
	}
}

// New builds the raster described by cfg.
func New(cfg Config) (*bitplane.Raster, error) {
	w := cfg.Width
	if w <= 0 {
		w = 1280
	}
	h := cfg.Height
	if h <= 0 {
		h = 720
	}

	c, err := ParseColor(cfg.Color)
	if err != nil {
		return nil, err
	}

	r := NewSolid(w, h, c)
	AddNoise(r, cfg.Noise, cfg.Seed)
	return r, nil
}

// Generate writes a cover image to output.
func Generate(output string, cfg Config) error {
	r, err := New(cfg)
	if err != nil {
		return err
	}
	return carrier.Save(output, &carrier.Image{Raster: r})
}
