package rescue

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"
)

func init() {
	solver.RegisterHint(fifthRootHint)
}

// HashVar applies the Rescue permutation to a 4-variable state inside a
// circuit. The inverse S-box is witnessed through a fifth-root hint and
// pinned by out^5 == in; everything else is linear or a short
// multiplication chain.
func HashVar(api frontend.API, input [StateSize]frontend.Variable) [StateSize]frontend.Variable {
	state := input
	addConstantsVar(api, &state, &roundConstants[0])
	for round := 0; round < NumRounds; round++ {
		for i := range state {
			state[i] = sboxInvVar(api, state[i])
		}
		state = mdsMulVar(api, state)
		addConstantsVar(api, &state, &roundConstants[2*round+1])

		for i := range state {
			state[i] = powAlphaVar(api, state[i])
		}
		state = mdsMulVar(api, state)
		addConstantsVar(api, &state, &roundConstants[2*round+2])
	}
	return state
}

func powAlphaVar(api frontend.API, x frontend.Variable) frontend.Variable {
	x2 := api.Mul(x, x)
	x4 := api.Mul(x2, x2)
	return api.Mul(x4, x)
}

func sboxInvVar(api frontend.API, x frontend.Variable) frontend.Variable {
	out, err := api.Compiler().NewHint(fifthRootHint, 1, x)
	if err != nil {
		panic(err)
	}
	y := out[0]
	api.AssertIsEqual(powAlphaVar(api, y), x)
	return y
}

func addConstantsVar(api frontend.API, state *[StateSize]frontend.Variable, cs *[StateSize]*big.Int) {
	for i := range state {
		state[i] = api.Add(state[i], cs[i])
	}
}

func mdsMulVar(api frontend.API, state [StateSize]frontend.Variable) [StateSize]frontend.Variable {
	var out [StateSize]frontend.Variable
	for i := 0; i < StateSize; i++ {
		acc := frontend.Variable(0)
		for j := 0; j < StateSize; j++ {
			acc = api.Add(acc, api.Mul(state[j], mdsMatrix[i][j]))
		}
		out[i] = acc
	}
	return out
}

// fifthRootHint computes x^(1/5) in the circuit field.
func fifthRootHint(field *big.Int, inputs, outputs []*big.Int) error {
	if len(inputs) != 1 || len(outputs) != 1 {
		return errors.New("rescue: malformed hint io")
	}
	exp := new(big.Int).ModInverse(big.NewInt(5), new(big.Int).Sub(field, big.NewInt(1)))
	if exp == nil {
		return errors.New("rescue: alpha not invertible in this field")
	}
	outputs[0].Exp(inputs[0], exp, field)
	return nil
}
