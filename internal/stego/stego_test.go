package stego

import (
	"bytes"
	"crypto/md5"
	"errors"
	"io"
	"strings"
	"testing"

	"stegguard/internal/bitplane"
	"stegguard/internal/frame"
)

func makeTestRaster(w, h, c int) *bitplane.Raster {
	r := bitplane.NewRaster(w, h, c)
	for i := range r.Pix {
		r.Pix[i] = uint8((i * 31) ^ (i >> 3))
	}
	return r
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		w, h, c int
	}{
		{name: "empty payload", payload: nil, w: 16, h: 16, c: 1},
		{name: "ten 0xFF", payload: bytes.Repeat([]byte{0xFF}, 10), w: 20, h: 16, c: 1},
		{name: "binary", payload: []byte{0, 1, 2, 0x7F, 0x80, 0xFE, 0xFF, 0}, w: 32, h: 32, c: 3},
		{name: "text rgba", payload: []byte(strings.Repeat("MZ\x90\x00 executable ", 40)), w: 64, h: 64, c: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carrier := makeTestRaster(tt.w, tt.h, tt.c)

			stego, err := Embed(tt.payload, carrier)
			if err != nil {
				t.Fatalf("Embed: %v", err)
			}
			got, err := Extract(stego)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if !bytes.Equal(got, tt.payload) {
				t.Fatalf("payload mismatch: got %d bytes, want %d", len(got), len(tt.payload))
			}
		})
	}
}

func TestEmbed_ConcreteScenario(t *testing.T) {
	payload := bytes.Repeat([]byte{0xFF}, 10)
	if got := RequiredBits(len(payload)); got != 320 {
		t.Fatalf("RequiredBits = %d, want 320", got)
	}

	carrier := makeTestRaster(320, 1, 1)
	stego, err := Embed(payload, carrier)
	if err != nil {
		t.Fatalf("Embed at exact capacity: %v", err)
	}

	sum := md5.Sum(payload)
	want, _ := frame.BuildStream(payload, sum[:])
	raw, err := frame.BitsToBytes(bitplane.ExtractBits(stego))
	if err != nil {
		t.Fatalf("BitsToBytes: %v", err)
	}
	if !bytes.Equal(raw, want) {
		t.Fatalf("embedded stream = %x, want %x", raw, want)
	}
}

func TestEmbed_CapacityBoundary(t *testing.T) {
	payload := []byte("boundary")
	required := RequiredBits(len(payload))

	if _, err := Embed(payload, makeTestRaster(required, 1, 1)); err != nil {
		t.Fatalf("capacity == required should succeed: %v", err)
	}

	_, err := Embed(payload, makeTestRaster(required-1, 1, 1))
	if !errors.Is(err, bitplane.ErrInsufficientCapacity) {
		t.Fatalf("expected ErrInsufficientCapacity, got %v", err)
	}
	var capErr *bitplane.InsufficientCapacityError
	if !errors.As(err, &capErr) || capErr.Required != required || capErr.Available != required-1 {
		t.Fatalf("unexpected capacity error: %v", err)
	}
}

func TestEmbed_ZeroCapacity(t *testing.T) {
	if _, err := Embed([]byte("x"), bitplane.NewRaster(0, 0, 3)); !errors.Is(err, bitplane.ErrInsufficientCapacity) {
		t.Fatalf("expected ErrInsufficientCapacity, got %v", err)
	}
}

func TestEmbed_PreservesCarrierAndTail(t *testing.T) {
	carrier := makeTestRaster(40, 40, 3)
	original := append([]uint8(nil), carrier.Pix...)
	payload := []byte("tail preservation")

	stego, err := Embed(payload, carrier)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !bytes.Equal(carrier.Pix, original) {
		t.Fatalf("Embed mutated the carrier")
	}

	used := RequiredBits(len(payload))
	for i := range stego.Pix {
		if i >= used && stego.Pix[i] != original[i] {
			t.Fatalf("sample %d beyond written range changed", i)
		}
		if i < used && stego.Pix[i]&^1 != original[i]&^1 {
			t.Fatalf("sample %d changed above the LSB", i)
		}
	}
}

func TestExtract_TamperedChecksum(t *testing.T) {
	payload := []byte("integrity matters")
	stego, err := Embed(payload, makeTestRaster(30, 30, 3))
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	start := len(payload) * 8
	for bit := start; bit < start+frame.ChecksumSize*8; bit++ {
		tampered := stego.Clone()
		tampered.Pix[bit] ^= 1

		_, err := Extract(tampered)
		if !errors.Is(err, ErrIntegrityMismatch) {
			t.Fatalf("flip at bit %d: expected ErrIntegrityMismatch, got %v", bit, err)
		}
	}
}

func TestExtract_TamperedPayload(t *testing.T) {
	payload := []byte("integrity matters")
	stego, _ := Embed(payload, makeTestRaster(30, 30, 3))
	stego.Pix[5] ^= 1

	_, err := Extract(stego)
	var integrityErr *IntegrityError
	if !errors.As(err, &integrityErr) {
		t.Fatalf("expected *IntegrityError, got %v", err)
	}
	sum := md5.Sum(payload)
	if !bytes.Equal(integrityErr.Expected, sum[:]) {
		t.Errorf("expected digest = %x, want %x", integrityErr.Expected, sum)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	stego, _ := Embed([]byte("read me twice"), makeTestRaster(25, 25, 3))
	before := append([]uint8(nil), stego.Pix...)

	first, err := Extract(stego)
	if err != nil {
		t.Fatalf("first Extract: %v", err)
	}
	second, err := Extract(stego)
	if err != nil {
		t.Fatalf("second Extract: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("extractions differ")
	}
	if !bytes.Equal(before, stego.Pix) {
		t.Fatalf("Extract mutated the image")
	}
}

func TestExtract_NoFrame(t *testing.T) {
	clean := bitplane.NewRaster(64, 64, 3) // all LSBs zero
	if _, err := Extract(clean); !errors.Is(err, frame.ErrTerminatorNotFound) {
		t.Fatalf("expected ErrTerminatorNotFound, got %v", err)
	}
	if _, err := Extract(bitplane.NewRaster(0, 0, 1)); !errors.Is(err, frame.ErrTerminatorNotFound) {
		t.Fatalf("expected ErrTerminatorNotFound on empty image, got %v", err)
	}
}

func TestExtract_StopsAfterTerminator(t *testing.T) {
	payload := []byte("short")
	stego, _ := Embed(payload, makeTestRaster(100, 100, 3))

	_, read, err := extract(stego)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if read != RequiredBits(len(payload)) {
		t.Fatalf("read %d samples, want %d", read, RequiredBits(len(payload)))
	}
}

func TestChecksum(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 2000) // spans several chunks
	got, err := Checksum(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	want := md5.Sum(data)
	if !bytes.Equal(got, want[:]) {
		t.Fatalf("Checksum = %x, want %x", got, want)
	}
}

type readSizeRecorder struct {
	r       io.Reader
	maxRead int
}

func (r *readSizeRecorder) Read(p []byte) (int, error) {
	r.maxRead = max(r.maxRead, len(p))
	return r.r.Read(p)
}

func TestChecksum_BoundedReads(t *testing.T) {
	src := &readSizeRecorder{r: bytes.NewReader(make([]byte, 3*chunkSize+17))}
	if _, err := Checksum(src); err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	if src.maxRead != chunkSize {
		t.Fatalf("largest read = %d, want %d", src.maxRead, chunkSize)
	}
}

func TestMaxPayload(t *testing.T) {
	tests := []struct {
		capacity int
		want     int
	}{
		{capacity: 0, want: 0},
		{capacity: 239, want: 0},
		{capacity: 320, want: 10},
		{capacity: 327, want: 10},
		{capacity: 1280 * 720 * 3, want: 1280*720*3/8 - 30},
	}
	for _, tt := range tests {
		if got := MaxPayload(tt.capacity); got != tt.want {
			t.Errorf("MaxPayload(%d) = %d, want %d", tt.capacity, got, tt.want)
		}
		if tt.want > 0 && RequiredBits(tt.want) > tt.capacity {
			t.Errorf("MaxPayload(%d) does not fit", tt.capacity)
		}
	}
}
