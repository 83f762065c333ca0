// Package stego ties the frame codec and the bit-plane engine together into
// the two public operations, Embed and Extract, and verifies payload
// integrity with the MD5 digest stored in every frame.
package stego

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"stegguard/internal/bitplane"
	"stegguard/internal/frame"
)

// chunkSize bounds each read while hashing a payload.
const chunkSize = 4096

var (
	// ErrIntegrityMismatch matches any *IntegrityError.
	ErrIntegrityMismatch = errors.New("integrity mismatch")
	// ErrFileNotFound is returned when an input path does not exist.
	ErrFileNotFound = errors.New("file not found")
)

// IntegrityError carries both digests when a recovered payload fails verification.
type IntegrityError struct {
	Expected []byte // digest stored in the image
	Actual   []byte // digest of the recovered payload
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity mismatch: embedded MD5 %s, recovered payload MD5 %s",
		hex.EncodeToString(e.Expected), hex.EncodeToString(e.Actual))
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrityMismatch
}

// Checksum returns the MD5 digest of everything read from r.
func Checksum(r io.Reader) ([]byte, error) {
	h := md5.New()
	if _, err := copyChunked(h, r); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// RequiredBits is the number of samples a payload of n bytes occupies.
func RequiredBits(n int) int {
	return 8 * (n + frame.Overhead())
}

// MaxPayload is the largest payload, in bytes, that fits in capacity samples.
func MaxPayload(capacity int) int {
	return max(capacity/8-frame.Overhead(), 0)
}

// Embed hides payload in a copy of carrier.
func Embed(payload []byte, carrier *bitplane.Raster) (*bitplane.Raster, error) {
	sum := md5.Sum(payload)
	return embed(payload, sum[:], carrier)
}

func embed(payload, sum []byte, carrier *bitplane.Raster) (*bitplane.Raster, error) {
	if err := carrier.Validate(); err != nil {
		return nil, err
	}
	// Fail on capacity before building the stream so huge payloads don't allocate bits for nothing.
	if required, available := RequiredBits(len(payload)), carrier.Capacity(); required > available {
		return nil, &bitplane.InsufficientCapacityError{Required: required, Available: available}
	}

	stream, err := frame.BuildStream(payload, sum)
	if err != nil {
		return nil, err
	}
	return bitplane.EmbedBits(carrier, frame.BytesToBits(stream))
}

// Extract recovers and verifies the payload hidden in stego.
func Extract(stego *bitplane.Raster) ([]byte, error) {
	payload, _, err := extract(stego)
	return payload, err
}

// extract also reports how many samples were consumed.
func extract(stego *bitplane.Raster) ([]byte, int, error) {
	if err := stego.Validate(); err != nil {
		return nil, 0, err
	}

	br := bitplane.NewBitReader(stego)
	asm := frame.NewAssembler()
	for !asm.Done() {
		bit, ok := br.Next()
		if !ok {
			return nil, br.Read(), fmt.Errorf("%w after reading all %d samples", frame.ErrTerminatorNotFound, br.Read())
		}
		if _, err := asm.PushBit(bit); err != nil {
			return nil, br.Read(), err
		}
	}

	payload, embedded, err := frame.SplitStream(asm.Bytes())
	if err != nil {
		return nil, br.Read(), err
	}

	actual := md5.Sum(payload)
	if !bytes.Equal(actual[:], embedded) {
		return nil, br.Read(), &IntegrityError{
			Expected: append([]byte(nil), embedded...),
			Actual:   actual[:],
		}
	}
	return append([]byte(nil), payload...), br.Read(), nil
}

// copyChunked copies through a chunkSize buffer. The wrappers hide WriterTo and
// ReaderFrom so io.CopyBuffer cannot bypass the bound.
func copyChunked(dst io.Writer, src io.Reader) (int64, error) {
	return io.CopyBuffer(struct{ io.Writer }{dst}, struct{ io.Reader }{src}, make([]byte, chunkSize))
}
