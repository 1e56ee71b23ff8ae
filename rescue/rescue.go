// Package rescue implements the 4-to-4 Rescue permutation over the
// BLS12-381 scalar field, natively and as a circuit gadget.
//
// The round constants are expanded deterministically from a fixed domain
// label and the MDS matrix is a 4x4 Cauchy matrix; together they form the
// consensus constant set of this module.
package rescue

import (
	"crypto/sha512"
	"encoding/binary"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

const (
	// StateSize is the width of the permutation state.
	StateSize = 4
	// NumRounds is the number of full rounds; each applies the inverse
	// S-box and the forward S-box once.
	NumRounds = 12

	constantsLabel = "bar2abar rescue bls12-381 v1"
)

var (
	alpha    = big.NewInt(5)
	alphaInv *big.Int

	// roundConstants[0] is injected before the first round; each round r
	// then uses roundConstants[2r+1] and roundConstants[2r+2].
	roundConstants [2*NumRounds + 1][StateSize]*big.Int
	mdsMatrix      [StateSize][StateSize]*big.Int
)

func init() {
	qMinusOne := new(big.Int).Sub(fr.Modulus(), big.NewInt(1))
	alphaInv = new(big.Int).ModInverse(alpha, qMinusOne)
	if alphaInv == nil {
		panic("rescue: alpha is not invertible")
	}

	ctr := uint32(0)
	next := func() *big.Int {
		buf := make([]byte, len(constantsLabel)+4)
		copy(buf, constantsLabel)
		binary.BigEndian.PutUint32(buf[len(constantsLabel):], ctr)
		ctr++
		h := sha512.Sum512(buf)
		v := new(big.Int).SetBytes(h[:])
		return v.Mod(v, fr.Modulus())
	}
	for i := range roundConstants {
		for j := range roundConstants[i] {
			roundConstants[i][j] = next()
		}
	}

	// Cauchy matrix over {0..3} x {-1..-4}: entries 1/(i+j+1), invertible.
	for i := 0; i < StateSize; i++ {
		for j := 0; j < StateSize; j++ {
			e := big.NewInt(int64(i + j + 1))
			mdsMatrix[i][j] = e.ModInverse(e, fr.Modulus())
		}
	}
}

// Instance is a Rescue permutation instance. The zero value is ready to use;
// all instances share the package constant set.
type Instance struct{}

// NewInstance returns a Rescue instance.
func NewInstance() *Instance {
	return &Instance{}
}

// Rescue applies the permutation to a 4-element state and returns the full
// output state. Commitments use output slot 0.
func (r *Instance) Rescue(input [StateSize]fr.Element) [StateSize]fr.Element {
	state := input
	addConstants(&state, &roundConstants[0])
	for round := 0; round < NumRounds; round++ {
		for i := range state {
			state[i].Exp(state[i], alphaInv)
		}
		state = mdsMul(state)
		addConstants(&state, &roundConstants[2*round+1])

		for i := range state {
			state[i].Exp(state[i], alpha)
		}
		state = mdsMul(state)
		addConstants(&state, &roundConstants[2*round+2])
	}
	return state
}

func addConstants(state *[StateSize]fr.Element, cs *[StateSize]*big.Int) {
	var c fr.Element
	for i := range state {
		c.SetBigInt(cs[i])
		state[i].Add(&state[i], &c)
	}
}

func mdsMul(state [StateSize]fr.Element) [StateSize]fr.Element {
	var out [StateSize]fr.Element
	var m, t fr.Element
	for i := 0; i < StateSize; i++ {
		for j := 0; j < StateSize; j++ {
			m.SetBigInt(mdsMatrix[i][j])
			t.Mul(&m, &state[j])
			out[i].Add(&out[i], &t)
		}
	}
	return out
}
