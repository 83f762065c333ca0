package carrier

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// Codec writes one lossless container format.
type Codec struct {
	Name       string
	Extensions []string
	Alpha      bool // false when the format drops or premultiplies a translucent alpha plane
	Encode     func(w io.Writer, m image.Image) error
}

var (
	registry    = make(map[string]*Codec)
	byExtension = make(map[string]*Codec)
)

// Formats that decode fine but cannot hold LSB data across a save.
var lossy = map[string]string{
	"jpeg": ".jpg",
	"gif":  ".gif",
	"webp": ".webp",
}

func Register(c *Codec) {
	registry[c.Name] = c
	for _, ext := range c.Extensions {
		byExtension[strings.ToLower(ext)] = c
	}
}

// Lookup returns the codec registered under name.
func Lookup(name string) (*Codec, error) {
	if _, ok := lossy[name]; ok {
		return nil, fmt.Errorf("%w: %s is lossy or re-quantizes samples", ErrUnsupportedImageFormat, name)
	}
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedImageFormat, name)
	}
	return c, nil
}

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if c, ok := byExtension[ext]; ok {
		return c.Name, nil
	}
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	for name, e := range lossy {
		if e == ext {
			return "", fmt.Errorf("%w: %s output would destroy hidden bits", ErrUnsupportedImageFormat, name)
		}
	}
	return "", fmt.Errorf("%w: unknown extension %q (use %s)", ErrUnsupportedImageFormat, ext, strings.Join(Extensions(), ", "))
}

// Extensions lists every registered lossless extension.
func Extensions() []string {
	exts := make([]string, 0, len(byExtension))
	for ext := range byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
