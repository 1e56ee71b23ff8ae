// Package testutils provides deterministic helpers for tests and demos.
package testutils

import (
	"io"

	"golang.org/x/crypto/chacha20"
)

type chachaReader struct {
	cipher *chacha20.Cipher
}

// NewSeededReader returns a deterministic CSPRNG stream seeded by seed.
func NewSeededReader(seed [32]byte) io.Reader {
	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce)
	if err != nil {
		panic(err)
	}
	return &chachaReader{cipher: c}
}

func (r *chachaReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	r.cipher.XORKeyStream(p, p)
	return len(p), nil
}
