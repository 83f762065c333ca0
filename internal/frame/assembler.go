package frame

import (
	"bytes"
	"fmt"
)

// Assembler packs bits into bytes as they arrive and stops as soon as the
// decoded bytes end with the terminator. It lets a reader stop pulling sample
// LSBs once a frame is complete instead of decoding the whole image.
type Assembler struct {
	buf   []byte
	cur   byte
	nbits int
	done  bool
}

// NewAssembler returns an empty Assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// PushBit appends one bit. It reports true once the first terminator match
// has been decoded; bits pushed after that are ignored.
func (a *Assembler) PushBit(bit uint8) (bool, error) {
	if a.done {
		return true, nil
	}
	if bit > 1 {
		return false, fmt.Errorf("%w: bit value %d", ErrMalformedBitStream, bit)
	}

	a.cur = a.cur<<1 | bit
	a.nbits++
	if a.nbits < 8 {
		return false, nil
	}

	a.buf = append(a.buf, a.cur)
	a.cur, a.nbits = 0, 0
	if len(a.buf) >= len(terminator) && bytes.HasSuffix(a.buf, terminator) {
		a.done = true
	}
	return a.done, nil
}

// Done reports whether a terminator has been seen.
func (a *Assembler) Done() bool {
	return a.done
}

// Bytes returns the whole bytes decoded so far, terminator included.
func (a *Assembler) Bytes() []byte {
	return a.buf
}

// Pending returns the number of bits held that do not yet form a byte.
func (a *Assembler) Pending() int {
	return a.nbits
}
