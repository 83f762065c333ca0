// Package frame builds and parses the byte stream hidden in a carrier:
//
//	payload ‖ MD5(payload) ‖ Terminator
//
// There is no length prefix. The end of the data is found by scanning for the
// first complete Terminator match, so a payload that happens to contain the
// terminator bytes will be split early and fail the checksum comparison.
package frame

import (
	"bytes"
	"crypto/md5"
	"errors"
	"fmt"
)

const (
	// Terminator marks the end of the embedded stream.
	Terminator = "<<END_OF_EXE>>"
	// ChecksumSize is the width of the MD5 digest stored after the payload.
	ChecksumSize = md5.Size
)

var (
	// ErrMalformedBitStream indicates a bit sequence that cannot be packed into whole bytes.
	ErrMalformedBitStream = errors.New("malformed bit stream")
	// ErrTerminatorNotFound indicates the decoded bytes contain no valid frame.
	ErrTerminatorNotFound = errors.New("terminator not found")
	// ErrChecksumSize indicates a checksum of the wrong width was passed to BuildStream.
	ErrChecksumSize = errors.New("invalid checksum size")
)

var terminator = []byte(Terminator)

// Overhead returns the number of bytes a frame adds around the payload.
func Overhead() int {
	return ChecksumSize + len(terminator)
}

// BuildStream concatenates payload, checksum and the terminator.
func BuildStream(payload, checksum []byte) ([]byte, error) {
	if len(checksum) != ChecksumSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrChecksumSize, len(checksum), ChecksumSize)
	}

	stream := make([]byte, 0, len(payload)+Overhead())
	stream = append(stream, payload...)
	stream = append(stream, checksum...)
	stream = append(stream, terminator...)
	return stream, nil
}

// BytesToBits expands every byte into 8 bits, most significant first.
func BytesToBits(data []byte) []uint8 {
	bits := make([]uint8, 0, len(data)*8)
	for _, b := range data {
		for shift := 7; shift >= 0; shift-- {
			bits = append(bits, (b>>uint(shift))&1)
		}
	}
	return bits
}

// BitsToBytes packs bits back into bytes. The bit count must be a multiple of 8.
func BitsToBytes(bits []uint8) ([]byte, error) {
	if len(bits)%8 != 0 {
		return nil, fmt.Errorf("%w: %d bits is not a multiple of 8", ErrMalformedBitStream, len(bits))
	}

	out := make([]byte, len(bits)/8)
	for i := range out {
		b, err := packByte(bits[i*8 : i*8+8])
		if err != nil {
			return nil, fmt.Errorf("%w at bit %d", err, i*8)
		}
		out[i] = b
	}
	return out, nil
}

func packByte(bits []uint8) (byte, error) {
	var b byte
	for _, bit := range bits {
		if bit > 1 {
			return 0, fmt.Errorf("%w: bit value %d", ErrMalformedBitStream, bit)
		}
		b = b<<1 | bit
	}
	return b, nil
}

// SplitStream locates the first terminator in raw and returns the payload and
// the checksum that precedes it.
func SplitStream(raw []byte) (payload, checksum []byte, err error) {
	end := bytes.Index(raw, terminator)
	if end < 0 {
		return nil, nil, fmt.Errorf("%w in %d decoded bytes", ErrTerminatorNotFound, len(raw))
	}
	if end < ChecksumSize {
		return nil, nil, fmt.Errorf("%w: terminator at offset %d leaves no room for a %d-byte checksum",
			ErrTerminatorNotFound, end, ChecksumSize)
	}

	return raw[:end-ChecksumSize], raw[end-ChecksumSize : end], nil
}
