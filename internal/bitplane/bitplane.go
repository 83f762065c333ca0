package bitplane

import (
	"errors"
	"fmt"
)

// ErrInsufficientCapacity matches any *InsufficientCapacityError.
var ErrInsufficientCapacity = errors.New("insufficient capacity")

// InsufficientCapacityError reports how many bits were needed and how many samples exist.
type InsufficientCapacityError struct {
	Required  int
	Available int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity: need %d bits, image holds %d", e.Required, e.Available)
}

func (e *InsufficientCapacityError) Is(target error) bool {
	return target == ErrInsufficientCapacity
}

// EmbedBits returns a copy of carrier with bits written into the LSBs of its
// first len(bits) samples. The carrier is left untouched.
func EmbedBits(carrier *Raster, bits []uint8) (*Raster, error) {
	if err := carrier.Validate(); err != nil {
		return nil, err
	}
	if available := carrier.Capacity(); len(bits) > available {
		return nil, &InsufficientCapacityError{Required: len(bits), Available: available}
	}
	for i, bit := range bits {
		if bit > 1 {
			return nil, fmt.Errorf("bit %d has value %d, want 0 or 1", i, bit)
		}
	}

	out := carrier.Clone()
	for i, bit := range bits {
		off := out.SampleOffset(i)
		out.Pix[off] = out.Pix[off]&^1 | bit
	}
	return out, nil
}

// ExtractBits returns the LSB of every sample in linear order.
func ExtractBits(r *Raster) []uint8 {
	br := NewBitReader(r)
	bits := make([]uint8, 0, br.Remaining())
	for {
		bit, ok := br.Next()
		if !ok {
			return bits
		}
		bits = append(bits, bit)
	}
}

// BitReader pulls sample LSBs one at a time so callers can stop early.
type BitReader struct {
	r   *Raster
	pos int
	end int
}

// NewBitReader starts reading at the first sample of r.
func NewBitReader(r *Raster) *BitReader {
	return &BitReader{r: r, end: r.Capacity()}
}

// Next returns the next LSB, or ok=false once every sample has been read.
func (br *BitReader) Next() (bit uint8, ok bool) {
	if br.pos >= br.end {
		return 0, false
	}
	bit = br.r.Pix[br.r.SampleOffset(br.pos)] & 1
	br.pos++
	return bit, true
}

// Remaining is the number of samples not yet read.
func (br *BitReader) Remaining() int {
	return br.end - br.pos
}

// Read is the number of samples consumed so far.
func (br *BitReader) Read() int {
	return br.pos
}
