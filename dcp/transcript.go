package dcp

import (
	"crypto/sha512"
	"encoding/binary"
	"math/big"
)

// Transcript is a Merlin-style Fiat-Shamir transcript: a running SHA-512
// state over length-framed, labelled messages. Both prover and verifier
// must feed it the same messages in the same order.
type Transcript struct {
	state [sha512.Size]byte
}

// NewTranscript initializes a transcript domain-separated by label.
func NewTranscript(label []byte) *Transcript {
	t := &Transcript{}
	h := sha512.New()
	h.Write([]byte("transcript-init"))
	writeFramed(h, label)
	h.Sum(t.state[:0])
	return t
}

// Append absorbs a labelled message.
func (t *Transcript) Append(label string, msg []byte) {
	h := sha512.New()
	h.Write(t.state[:])
	writeFramed(h, []byte(label))
	writeFramed(h, msg)
	h.Sum(t.state[:0])
}

// ChallengeScalar squeezes a labelled challenge reduced modulo order, and
// ratchets the transcript state so later challenges are independent.
func (t *Transcript) ChallengeScalar(label string, order *big.Int) *big.Int {
	h := sha512.New()
	h.Write(t.state[:])
	writeFramed(h, []byte(label))
	h.Write([]byte("challenge"))
	wide := h.Sum(nil)

	t.state = sha512.Sum512(wide)

	c := new(big.Int).SetBytes(wide)
	return c.Mod(c, order)
}

func writeFramed(h interface{ Write([]byte) (int, error) }, msg []byte) {
	var ln [8]byte
	binary.LittleEndian.PutUint64(ln[:], uint64(len(msg)))
	h.Write(ln[:])
	h.Write(msg)
}
