package carrier

import (
	"image"
	"image/png"
	"io"

	// Registered so lossy inputs are recognized and rejected by name.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/webp"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func init() {
	Register(&Codec{
		Name:       "png",
		Extensions: []string{".png"},
		Alpha:      true,
		Encode: func(w io.Writer, m image.Image) error {
			enc := png.Encoder{CompressionLevel: png.BestCompression}
			return enc.Encode(w, m)
		},
	})

	Register(&Codec{
		Name:       "bmp",
		Extensions: []string{".bmp"},
		Encode:     bmp.Encode,
	})

	Register(&Codec{
		Name:       "tiff",
		Extensions: []string{".tif", ".tiff"},
		Alpha:      true,
		Encode: func(w io.Writer, m image.Image) error {
			return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
		},
	})
}
