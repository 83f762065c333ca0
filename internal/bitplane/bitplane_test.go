package bitplane

import (
	"bytes"
	"errors"
	"testing"
)

func makeTestRaster(w, h, c int) *Raster {
	r := NewRaster(w, h, c)
	for i := range r.Pix {
		r.Pix[i] = uint8(i*37 + 11)
	}
	return r
}

func TestCapacity(t *testing.T) {
	tests := []struct {
		name       string
		w, h, c    int
		wantSample int
	}{
		{name: "gray", w: 4, h: 3, c: 1, wantSample: 12},
		{name: "rgb", w: 4, h: 3, c: 3, wantSample: 36},
		{name: "rgba", w: 10, h: 10, c: 4, wantSample: 400},
		{name: "empty", w: 0, h: 7, c: 3, wantSample: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewRaster(tt.w, tt.h, tt.c).Capacity(); got != tt.wantSample {
				t.Errorf("Capacity() = %d, want %d", got, tt.wantSample)
			}
		})
	}
}

func TestSampleOffset_HonorsStride(t *testing.T) {
	// 2x2 RGB with two padding bytes per row.
	r := &Raster{Width: 2, Height: 2, Channels: 3, Stride: 8, Pix: make([]uint8, 16)}
	want := []int{0, 1, 2, 3, 4, 5, 8, 9, 10, 11, 12, 13}
	for i, w := range want {
		if got := r.SampleOffset(i); got != w {
			t.Errorf("SampleOffset(%d) = %d, want %d", i, got, w)
		}
	}
}

func TestEmbedBits(t *testing.T) {
	carrier := makeTestRaster(5, 4, 3)
	original := append([]uint8(nil), carrier.Pix...)
	bits := []uint8{1, 0, 1, 1, 0, 0, 1, 0, 1, 1, 1}

	stego, err := EmbedBits(carrier, bits)
	if err != nil {
		t.Fatalf("EmbedBits: %v", err)
	}

	if !bytes.Equal(carrier.Pix, original) {
		t.Fatalf("carrier was mutated")
	}
	for i := range stego.Pix {
		if i < len(bits) {
			want := original[i]&^1 | bits[i]
			if stego.Pix[i] != want {
				t.Errorf("sample %d = %08b, want %08b", i, stego.Pix[i], want)
			}
			continue
		}
		if stego.Pix[i] != original[i] {
			t.Errorf("sample %d beyond payload changed: %d -> %d", i, original[i], stego.Pix[i])
		}
	}
}

func TestEmbedBits_NoAliasing(t *testing.T) {
	carrier := makeTestRaster(2, 2, 1)
	stego, err := EmbedBits(carrier, nil)
	if err != nil {
		t.Fatalf("EmbedBits: %v", err)
	}
	stego.Pix[0] ^= 0xFF
	if carrier.Pix[0] == stego.Pix[0] {
		t.Fatalf("stego shares memory with carrier")
	}
}

func TestEmbedBits_CapacityBoundary(t *testing.T) {
	carrier := makeTestRaster(4, 2, 3) // 24 samples

	if _, err := EmbedBits(carrier, make([]uint8, 24)); err != nil {
		t.Fatalf("exact capacity should succeed: %v", err)
	}

	_, err := EmbedBits(carrier, make([]uint8, 25))
	if !errors.Is(err, ErrInsufficientCapacity) {
		t.Fatalf("expected ErrInsufficientCapacity, got %v", err)
	}
	var capErr *InsufficientCapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected *InsufficientCapacityError, got %T", err)
	}
	if capErr.Required != 25 || capErr.Available != 24 {
		t.Errorf("got required=%d available=%d", capErr.Required, capErr.Available)
	}
}

func TestEmbedBits_ZeroCapacity(t *testing.T) {
	empty := NewRaster(0, 0, 3)

	if _, err := EmbedBits(empty, []uint8{1}); !errors.Is(err, ErrInsufficientCapacity) {
		t.Fatalf("expected ErrInsufficientCapacity, got %v", err)
	}
	if _, err := EmbedBits(empty, nil); err != nil {
		t.Fatalf("empty bits on empty raster: %v", err)
	}
}

func TestEmbedBits_RejectsBadInput(t *testing.T) {
	if _, err := EmbedBits(makeTestRaster(2, 2, 1), []uint8{0, 2}); err == nil {
		t.Fatalf("expected error for non-binary bit")
	}

	bad := &Raster{Width: 4, Height: 4, Channels: 3, Stride: 12, Pix: make([]uint8, 10)}
	if _, err := EmbedBits(bad, []uint8{1}); !errors.Is(err, ErrInvalidRaster) {
		t.Fatalf("expected ErrInvalidRaster, got %v", err)
	}
}

func TestExtractBits_RoundTrip(t *testing.T) {
	carrier := makeTestRaster(3, 3, 4)
	bits := make([]uint8, carrier.Capacity())
	for i := range bits {
		bits[i] = uint8((i * 7 / 3) & 1)
	}

	stego, err := EmbedBits(carrier, bits)
	if err != nil {
		t.Fatalf("EmbedBits: %v", err)
	}
	if got := ExtractBits(stego); !bytes.Equal(got, bits) {
		t.Fatalf("ExtractBits = %v, want %v", got, bits)
	}
}

func TestBitReader(t *testing.T) {
	r := &Raster{Width: 2, Height: 2, Channels: 1, Stride: 3, Pix: []uint8{1, 2, 0xFF, 3, 4}}
	br := NewBitReader(r)

	if br.Remaining() != 4 {
		t.Fatalf("Remaining() = %d, want 4", br.Remaining())
	}
	var got []uint8
	for {
		bit, ok := br.Next()
		if !ok {
			break
		}
		got = append(got, bit)
	}
	// Padding byte 0xFF at offset 2 must be skipped.
	if want := []uint8{1, 0, 1, 0}; !bytes.Equal(got, want) {
		t.Fatalf("bits = %v, want %v", got, want)
	}
	if br.Read() != 4 || br.Remaining() != 0 {
		t.Fatalf("read=%d remaining=%d", br.Read(), br.Remaining())
	}
}

func TestClone_PacksStride(t *testing.T) {
	r := &Raster{Width: 1, Height: 2, Channels: 2, Stride: 4, Pix: []uint8{1, 2, 9, 9, 3, 4, 9, 9}}
	c := r.Clone()
	if c.Stride != 2 || !bytes.Equal(c.Pix, []uint8{1, 2, 3, 4}) {
		t.Fatalf("Clone = stride %d pix %v", c.Stride, c.Pix)
	}
}
