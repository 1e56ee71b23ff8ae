package algebra

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// ErrDecompressElement is returned when a byte string does not decode to a
// valid group element.
var ErrDecompressElement = errors.New("algebra: element decompression failed")

// ErrNonCanonicalScalar is returned when a 32-byte string does not encode a
// reduced scalar.
var ErrNonCanonicalScalar = errors.New("algebra: non-canonical scalar encoding")

// ScalarBytesLen is the length of the canonical scalar encoding for both
// scalar fields used in this module.
const ScalarBytesLen = 32

// Element represents an element of a prime-order group.
type Element interface {
	// Add sets the receiver to A + B, and returns it.
	Add(A, B Element) Element
	// Subtract sets the receiver to A - B, and returns it.
	Subtract(A, B Element) Element
	// Negate sets the receiver to -A, and returns it.
	Negate(A Element) Element
	// Double sets the receiver to A + A, and returns it.
	Double(A Element) Element
	// Scale performs the group operation s times with E,
	// sets the receiver to the result, and returns it.
	Scale(E Element, s *big.Int) Element
	// BaseScale performs the group operation s times with the
	// group's generator, sets the receiver to the result, and returns it.
	BaseScale(s *big.Int) Element
	// Set sets the receiver to A, and returns it.
	Set(A Element) Element
	// Equal returns true if the receiver is equal to B.
	Equal(B Element) bool
	// IsIdentity returns true if the receiver is the group's
	// identity element.
	IsIdentity() bool
	// Bytes returns the canonical compressed encoding of the element.
	Bytes() []byte
	// Decompress recovers an element from its compressed encoding and
	// sets the receiver to it. Fails with ErrDecompressElement when the
	// bytes do not encode a group element.
	Decompress(b []byte) error
	// String returns a string representation of the element.
	String() string
}

// Group represents a prime-order group.
type Group interface {
	// Name returns the name of the group.
	Name() string

	// Element creates a new group element set to the identity.
	Element() Element
	// Generator creates a group element set to the group's generator.
	Generator() Element
	// Identity creates a group element set to the group's identity element.
	Identity() Element

	// Random returns a uniformly sampled element of the group by sampling
	// a random scalar r and returning rG. Randomness is read from rd.
	Random(rd io.Reader) Element

	// HashToGroup hashes a message to a group element with uniform
	// distribution whose discrete logarithm is not known.
	HashToGroup(msg, dst []byte) Element

	// N returns the prime order of the group.
	N() *big.Int
}

// RandomScalar returns a uniformly sampled scalar in [0, order).
func RandomScalar(rd io.Reader, order *big.Int) (*big.Int, error) {
	s, err := rand.Int(rd, order)
	if err != nil {
		return nil, fmt.Errorf("algebra: scalar sampling: %w", err)
	}
	return s, nil
}

// ScalarToBytesLE encodes a reduced scalar as 32 little-endian bytes.
func ScalarToBytesLE(s *big.Int) []byte {
	buf := make([]byte, ScalarBytesLen)
	raw := s.Bytes() // big-endian
	for i, b := range raw {
		buf[len(raw)-1-i] = b
	}
	return buf
}

// ScalarFromBytesLE decodes a 32-byte little-endian scalar and checks that
// it is canonical, i.e. reduced modulo order.
func ScalarFromBytesLE(b []byte, order *big.Int) (*big.Int, error) {
	if len(b) != ScalarBytesLen {
		return nil, ErrNonCanonicalScalar
	}
	be := make([]byte, ScalarBytesLen)
	for i, v := range b {
		be[ScalarBytesLen-1-i] = v
	}
	s := new(big.Int).SetBytes(be)
	if s.Cmp(order) >= 0 {
		return nil, ErrNonCanonicalScalar
	}
	return s, nil
}
