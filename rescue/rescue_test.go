package rescue

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
)

func TestRescueDeterministic(t *testing.T) {
	instance := NewInstance()
	var state [StateSize]fr.Element
	state[0].SetUint64(1)
	state[1].SetUint64(2)
	state[2].SetUint64(3)
	state[3].SetUint64(4)

	out1 := instance.Rescue(state)
	out2 := instance.Rescue(state)
	for i := range out1 {
		if !out1[i].Equal(&out2[i]) {
			t.Fatal("permutation is not deterministic")
		}
	}

	state[0].SetUint64(5)
	out3 := instance.Rescue(state)
	if out1[0].Equal(&out3[0]) {
		t.Fatal("distinct inputs collided on slot 0")
	}
}

func TestSboxInverse(t *testing.T) {
	var x, y, back fr.Element
	x.SetUint64(123456789)
	y.Exp(x, alphaInv)
	back.Exp(y, alpha)
	if !back.Equal(&x) {
		t.Fatal("inverse S-box is not the inverse of the S-box")
	}
}

type rescueCircuit struct {
	In  [StateSize]frontend.Variable
	Out [StateSize]frontend.Variable
}

func (c *rescueCircuit) Define(api frontend.API) error {
	out := HashVar(api, c.In)
	for i := range out {
		api.AssertIsEqual(out[i], c.Out[i])
	}
	return nil
}

// The gadget must agree with the native permutation.
func TestGadgetMatchesNative(t *testing.T) {
	instance := NewInstance()
	var state [StateSize]fr.Element
	for i := range state {
		state[i].SetUint64(uint64(100 + i))
	}
	out := instance.Rescue(state)

	assignment := &rescueCircuit{}
	for i := range state {
		assignment.In[i] = state[i].BigInt(new(big.Int))
		assignment.Out[i] = out[i].BigInt(new(big.Int))
	}
	if err := test.IsSolved(&rescueCircuit{}, assignment, ecc.BLS12_381.ScalarField()); err != nil {
		t.Fatal("gadget disagrees with native permutation:", err)
	}

	assignment.Out[0] = 0
	if err := test.IsSolved(&rescueCircuit{}, assignment, ecc.BLS12_381.ScalarField()); err == nil {
		t.Fatal("gadget accepted a wrong output")
	}
}
