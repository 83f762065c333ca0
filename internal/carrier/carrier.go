// Package carrier converts losslessly stored images to and from the flat
// sample rasters used by the bit-plane engine.
//
// Channel layout is derived from the decoded image so that a save followed by
// a load yields the same raster:
//   - *image.Gray and *image.Paletted have one channel (gray level or palette index).
//   - Opaque RGBA/NRGBA images have three channels; encoders drop the alpha plane
//     of opaque images, so it never carries data.
//   - Translucent NRGBA images have four channels.
package carrier

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"stegguard/internal/bitplane"
)

// ErrUnsupportedImageFormat is returned for lossy or otherwise unusable images.
var ErrUnsupportedImageFormat = errors.New("unsupported image format")

// Image is a decoded carrier or stego image.
type Image struct {
	Raster  *bitplane.Raster
	Format  string
	Palette color.Palette // set for paletted images only
}

// Load decodes the image at path.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Save encodes img in the format implied by the extension of path.
func Save(path string, img *Image) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Decode reads an image and copies its samples into a new raster.
func Decode(r io.Reader) (*Image, error) {
	m, format, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedImageFormat, err)
		}
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if _, err := Lookup(format); err != nil {
		return nil, err
	}

	raster, palette, err := FromImage(m)
	if err != nil {
		return nil, err
	}
	return &Image{Raster: raster, Format: format, Palette: palette}, nil
}

// Encode writes img using the named format.
func Encode(w io.Writer, img *Image, format string) error {
	codec, err := Lookup(format)
	if err != nil {
		return err
	}
	if img.Raster != nil && img.Raster.Channels == 4 && !codec.Alpha {
		return fmt.Errorf("%w: %s cannot store a translucent alpha plane", ErrUnsupportedImageFormat, format)
	}
	m, err := ToImage(img.Raster, img.Palette)
	if err != nil {
		return err
	}
	if err := codec.Encode(w, m); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

// FromImage copies the samples of m into a tightly packed raster.
func FromImage(m image.Image) (*bitplane.Raster, color.Palette, error) {
	b := m.Bounds()
	if b.Empty() {
		return bitplane.NewRaster(0, 0, 1), nil, nil
	}

	switch m := m.(type) {
	case *image.Gray:
		return view(m.Pix[m.PixOffset(b.Min.X, b.Min.Y):], b, 1, m.Stride).Clone(), nil, nil
	case *image.Paletted:
		pal := append(color.Palette(nil), m.Palette...)
		return view(m.Pix[m.PixOffset(b.Min.X, b.Min.Y):], b, 1, m.Stride).Clone(), pal, nil
	case *image.NRGBA:
		pix := m.Pix[m.PixOffset(b.Min.X, b.Min.Y):]
		if m.Opaque() {
			return dropAlpha(pix, b, m.Stride), nil, nil
		}
		return view(pix, b, 4, m.Stride).Clone(), nil, nil
	case *image.RGBA:
		if !m.Opaque() {
			return nil, nil, fmt.Errorf("%w: premultiplied translucent RGBA cannot be stored without loss", ErrUnsupportedImageFormat)
		}
		return dropAlpha(m.Pix[m.PixOffset(b.Min.X, b.Min.Y):], b, m.Stride), nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: %T samples are not 8-bit gray, paletted or RGB(A)", ErrUnsupportedImageFormat, m)
	}
}

// ToImage builds an image.Image that encoders persist without changing samples.
func ToImage(r *bitplane.Raster, palette color.Palette) (image.Image, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, r.Width, r.Height)

	switch {
	case r.Channels == 1 && palette != nil:
		if len(palette) == 0 {
			return nil, fmt.Errorf("%w: empty palette", ErrUnsupportedImageFormat)
		}
		m := image.NewPaletted(rect, evenPalette(palette))
		copyRows(m.Pix, m.Stride, r)
		return m, nil
	case r.Channels == 1:
		m := image.NewGray(rect)
		copyRows(m.Pix, m.Stride, r)
		return m, nil
	case r.Channels == 3:
		m := image.NewNRGBA(rect)
		for y := 0; y < r.Height; y++ {
			for x := 0; x < r.Width; x++ {
				src := y*r.Stride + x*3
				dst := y*m.Stride + x*4
				copy(m.Pix[dst:dst+3], r.Pix[src:src+3])
				m.Pix[dst+3] = 0xFF
			}
		}
		return m, nil
	case r.Channels == 4:
		m := image.NewNRGBA(rect)
		copyRows(m.Pix, m.Stride, r)
		if m.Opaque() {
			return nil, fmt.Errorf("%w: alpha plane became fully opaque and would be dropped on save", ErrUnsupportedImageFormat)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedImageFormat, r.Channels)
	}
}

func view(pix []uint8, b image.Rectangle, channels, stride int) *bitplane.Raster {
	return &bitplane.Raster{
		Width:    b.Dx(),
		Height:   b.Dy(),
		Channels: channels,
		Stride:   stride,
		Pix:      pix,
	}
}

func dropAlpha(pix []uint8, b image.Rectangle, stride int) *bitplane.Raster {
	out := bitplane.NewRaster(b.Dx(), b.Dy(), 3)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			src := y*stride + x*4
			dst := y*out.Stride + x*3
			copy(out.Pix[dst:dst+3], pix[src:src+3])
		}
	}
	return out
}

func copyRows(dst []uint8, dstStride int, r *bitplane.Raster) {
	row := r.Width * r.Channels
	for y := 0; y < r.Height; y++ {
		copy(dst[y*dstStride:y*dstStride+row], r.Pix[y*r.Stride:y*r.Stride+row])
	}
}

// evenPalette pads p to an even length so flipping an index LSB stays in range.
func evenPalette(p color.Palette) color.Palette {
	out := append(color.Palette(nil), p...)
	if len(out)%2 == 1 && len(out) < 256 {
		out = append(out, color.RGBA{A: 0xFF})
	}
	return out
}
