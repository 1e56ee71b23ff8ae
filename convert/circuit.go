// Package convert proves and verifies that a freshly published anonymous
// record commits to the same amount and asset type as a blind asset record
// on the source curve.
package convert

import (
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/takakv/bar2abar/fieldsim"
	"github.com/takakv/bar2abar/rescue"
)

// limbStep[i] = 2^(BitPerLimb*i).
var limbStep [fieldsim.NumOfLimbs]*big.Int

func init() {
	for i := range limbStep {
		limbStep[i] = new(big.Int).Lsh(big.NewInt(1), uint(fieldsim.BitPerLimb*i))
	}
}

// ConvertCircuit ties the sigma-protocol state, the Pedersen-committed
// values, and the anonymous record commitment together.
//
// The public fields are declared in the exact order of the online inputs
// the verifier assembles: the record commitment, the non-ZK state
// commitment, then the limbs of beta, lambda, beta*lambda and
// s1 + lambda*s2.
type ConvertCircuit struct {
	HashComm       frontend.Variable                      `gnark:",public"`
	NonZKStateComm frontend.Variable                      `gnark:",public"`
	Beta           [fieldsim.NumOfLimbs]frontend.Variable `gnark:",public"`
	Lambda         [fieldsim.NumOfLimbs]frontend.Variable `gnark:",public"`
	BetaLambda     [fieldsim.NumOfLimbs]frontend.Variable `gnark:",public"`
	S1PlusLambdaS2 [fieldsim.NumOfLimbs]frontend.Variable `gnark:",public"`

	Amount          frontend.Variable
	AssetTypeScalar frontend.Variable
	BlindHash       frontend.Variable
	PubKeyX         frontend.Variable
	R               frontend.Variable
	X               [fieldsim.NumOfLimbs]frontend.Variable
	Y               [fieldsim.NumOfLimbs]frontend.Variable
	A               [fieldsim.NumOfLimbs]frontend.Variable
	B               [fieldsim.NumOfLimbs]frontend.Variable
}

// Define enforces, in order: the opening of the non-ZK state commitment,
// the sigma verification equation in simulated arithmetic, the binding of
// the simulated values to the native amount and asset type, and the
// anonymous record's Rescue commitment.
func (c *ConvertCircuit) Define(api frontend.API) error {
	xVar := fieldsim.AllocWitnessBoundedTotalBits(api, c.X, 64)
	yVar := fieldsim.AllocWitnessBoundedTotalBits(api, c.Y, 240)
	aVar := fieldsim.AllocWitness(api, c.A)
	bVar := fieldsim.AllocWitness(api, c.B)

	betaVar := fieldsim.AllocInput(api, c.Beta)
	lambdaVar := fieldsim.AllocInput(api, c.Lambda)
	betaLambdaVar := fieldsim.AllocInput(api, c.BetaLambda)
	s1PlusLambdaS2Var := fieldsim.AllocInput(api, c.S1PlusLambdaS2)

	// Group the 24 witness limbs into five compressed state words.
	allLimbs := make([]frontend.Variable, 0, 4*fieldsim.NumOfLimbs)
	allLimbs = append(allLimbs, c.X[:]...)
	allLimbs = append(allLimbs, c.Y[:]...)
	allLimbs = append(allLimbs, c.A[:]...)
	allLimbs = append(allLimbs, c.B[:]...)

	var compressed [5]frontend.Variable
	for g := 0; g < 5; g++ {
		chunk := allLimbs[g*5:]
		if len(chunk) > 5 {
			chunk = chunk[:5]
		}
		sum := api.Add(
			api.Mul(chunk[0], limbStep[0]),
			api.Mul(chunk[1], limbStep[1]),
			api.Mul(chunk[2], limbStep[2]),
			api.Mul(chunk[3], limbStep[3]),
		)
		if len(chunk) == 5 {
			sum = api.Add(sum, api.Mul(chunk[4], limbStep[4]))
		}
		compressed[g] = sum
	}

	// Open the non-ZK verifier state.
	h1 := rescue.HashVar(api, [rescue.StateSize]frontend.Variable{
		compressed[0], compressed[1], compressed[2], compressed[3],
	})[0]
	h2 := rescue.HashVar(api, [rescue.StateSize]frontend.Variable{
		h1, compressed[4], c.R, 0,
	})[0]
	api.AssertIsEqual(h2, c.NonZKStateComm)

	// The sigma verification equation in simulated arithmetic:
	// beta*x + beta*lambda*y + lambda*b - (s1 + lambda*s2 - a) = 0 mod q.
	betaX := betaVar.Mul(api, xVar)
	betaLambdaY := betaLambdaVar.Mul(api, yVar)
	lambdaB := lambdaVar.Mul(api, bVar)

	rhs := betaX.Add(api, betaLambdaY)
	rhs = rhs.Add(api, lambdaB)

	s1PlusLambdaS2MinusA := s1PlusLambdaS2Var.Sub(api, aVar)
	eqn := rhs.SubVar(api, s1PlusLambdaS2MinusA)
	if err := eqn.EnforceZero(api); err != nil {
		return err
	}

	// Bind x to the native amount and y to the native asset type.
	api.AssertIsEqual(packLimbs(api, c.X), c.Amount)
	api.AssertIsEqual(packLimbs(api, c.Y), c.AssetTypeScalar)

	// The anonymous record commitment.
	cur := rescue.HashVar(api, [rescue.StateSize]frontend.Variable{
		c.BlindHash, c.Amount, c.AssetTypeScalar, 0,
	})[0]
	rescueComm := rescue.HashVar(api, [rescue.StateSize]frontend.Variable{
		cur, c.PubKeyX, 0, 0,
	})[0]
	api.AssertIsEqual(rescueComm, c.HashComm)

	return nil
}

// packLimbs recomposes six limbs into the field element they encode, as two
// chained linear combinations.
func packLimbs(api frontend.API, limbs [fieldsim.NumOfLimbs]frontend.Variable) frontend.Variable {
	low := api.Add(
		api.Mul(limbs[0], limbStep[0]),
		api.Mul(limbs[1], limbStep[1]),
		api.Mul(limbs[2], limbStep[2]),
		api.Mul(limbs[3], limbStep[3]),
	)
	return api.Add(low,
		api.Mul(limbs[4], limbStep[4]),
		api.Mul(limbs[5], limbStep[5]),
	)
}
