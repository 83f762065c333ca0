package cover

import (
	"bytes"
	"image/color"
	"path/filepath"
	"testing"

	"stegguard/internal/carrier"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "#1a1a2e", want: color.RGBA{0x1a, 0x1a, 0x2e, 255}},
		{in: "ff0000", want: color.RGBA{255, 0, 0, 255}},
		{in: "#fff", wantErr: true},
		{in: "#gg0000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseColor(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}

	if c, err := ParseColor("random"); err != nil || c.A != 255 {
		t.Fatalf("random color = %v, %v", c, err)
	}
}

func TestNew_Defaults(t *testing.T) {
	r, err := New(Config{Color: "#000000"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Width != 1280 || r.Height != 720 || r.Channels != 3 {
		t.Fatalf("geometry = %dx%dx%d", r.Width, r.Height, r.Channels)
	}
}

func TestAddNoise_Deterministic(t *testing.T) {
	a := NewSolid(16, 16, color.RGBA{128, 128, 128, 255})
	b := NewSolid(16, 16, color.RGBA{128, 128, 128, 255})
	AddNoise(a, 5, 42)
	AddNoise(b, 5, 42)

	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatalf("same seed produced different noise")
	}
	for i, v := range a.Pix {
		if v < 123 || v > 133 {
			t.Fatalf("sample %d = %d outside ±5 of 128", i, v)
		}
	}
}

func TestGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.png")
	cfg := Config{Width: 32, Height: 24, Color: "#336699", Noise: 3, Seed: 7}
	if err := Generate(path, cfg); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	img, err := carrier.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want, _ := New(cfg)
	if !bytes.Equal(img.Raster.Pix, want.Pix) {
		t.Fatalf("generated cover does not round-trip")
	}

	if err := Generate(filepath.Join(t.TempDir(), "cover.jpg"), cfg); err == nil {
		t.Fatalf("expected error for lossy output")
	}
}
