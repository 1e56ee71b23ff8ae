package fieldsim

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"
)

func init() {
	solver.RegisterHint(enforceZeroHint)
}

// Var is an in-circuit simulated Ristretto scalar. LimbMax is a strict
// upper bound on every limb value, maintained by the caller-side
// bookkeeping exactly like SimFr's addition counter.
type Var struct {
	Limbs   [NumOfLimbs]frontend.Variable
	LimbMax *big.Int
}

// MulVar is an in-circuit unreduced product.
type MulVar struct {
	Limbs   [NumOfMulLimbs]frontend.Variable
	LimbMax *big.Int
}

// AllocWitness range-checks each limb to BitPerLimb bits and returns the
// simulated value they form.
func AllocWitness(api frontend.API, limbs [NumOfLimbs]frontend.Variable) *Var {
	for i := 0; i < NumOfLimbs; i++ {
		api.ToBinary(limbs[i], BitPerLimb)
	}
	return &Var{Limbs: limbs, LimbMax: new(big.Int).Set(limbUnit)}
}

// AllocWitnessBoundedTotalBits additionally constrains the total value to
// stay below 2^totalBits by bit-decomposing the boundary limb and zeroing
// the limbs above it.
func AllocWitnessBoundedTotalBits(api frontend.API, limbs [NumOfLimbs]frontend.Variable, totalBits int) *Var {
	if totalBits > BitPerLimb*NumOfLimbs {
		panic("fieldsim: total bit bound exceeds limb capacity")
	}
	full := totalBits / BitPerLimb
	rem := totalBits % BitPerLimb
	for i := 0; i < NumOfLimbs; i++ {
		switch {
		case i < full:
			api.ToBinary(limbs[i], BitPerLimb)
		case i == full && rem > 0:
			api.ToBinary(limbs[i], rem)
		default:
			api.AssertIsEqual(limbs[i], 0)
		}
	}
	return &Var{Limbs: limbs, LimbMax: new(big.Int).Set(limbUnit)}
}

// AllocInput performs the same range checks as AllocWitness. The limbs are
// expected to be public inputs of the enclosing circuit.
func AllocInput(api frontend.API, limbs [NumOfLimbs]frontend.Variable) *Var {
	return AllocWitness(api, limbs)
}

// Add returns the limb-wise sum.
func (v *Var) Add(api frontend.API, o *Var) *Var {
	var r Var
	for i := 0; i < NumOfLimbs; i++ {
		r.Limbs[i] = api.Add(v.Limbs[i], o.Limbs[i])
	}
	r.LimbMax = new(big.Int).Add(v.LimbMax, o.LimbMax)
	return &r
}

// Sub returns the limb-wise difference, padded with a multiple of the
// modulus so every limb stays a non-negative integer.
func (v *Var) Sub(api frontend.API, o *Var) *Var {
	pad, _ := subPadLimbs(padUnits(o.LimbMax), NumOfLimbs)
	var r Var
	padMax := new(big.Int)
	for i := 0; i < NumOfLimbs; i++ {
		r.Limbs[i] = api.Sub(api.Add(v.Limbs[i], pad[i]), o.Limbs[i])
		if pad[i].Cmp(padMax) > 0 {
			padMax = pad[i]
		}
	}
	r.LimbMax = new(big.Int).Add(v.LimbMax, new(big.Int).Add(padMax, bigOne))
	return &r
}

// Mul returns the unreduced schoolbook product.
func (v *Var) Mul(api frontend.API, o *Var) *MulVar {
	var r MulVar
	for i := range r.Limbs {
		r.Limbs[i] = frontend.Variable(0)
	}
	for i := 0; i < NumOfLimbs; i++ {
		for j := 0; j < NumOfLimbs; j++ {
			t := api.Mul(v.Limbs[i], o.Limbs[j])
			r.Limbs[i+j] = api.Add(r.Limbs[i+j], t)
		}
	}
	r.LimbMax = new(big.Int).Mul(v.LimbMax, o.LimbMax)
	r.LimbMax.Mul(r.LimbMax, big.NewInt(NumOfLimbs))
	return &r
}

// Add returns the limb-wise sum of two unreduced products.
func (m *MulVar) Add(api frontend.API, o *MulVar) *MulVar {
	var r MulVar
	for i := range r.Limbs {
		r.Limbs[i] = api.Add(m.Limbs[i], o.Limbs[i])
	}
	r.LimbMax = new(big.Int).Add(m.LimbMax, o.LimbMax)
	return &r
}

// SubVar subtracts a six-limb value from the product with modulus padding.
func (m *MulVar) SubVar(api frontend.API, o *Var) *MulVar {
	pad, _ := subPadLimbs(padUnits(o.LimbMax), NumOfLimbs)
	var r MulVar
	padMax := new(big.Int)
	for i := range r.Limbs {
		if i < NumOfLimbs {
			r.Limbs[i] = api.Sub(api.Add(m.Limbs[i], pad[i]), o.Limbs[i])
			if pad[i].Cmp(padMax) > 0 {
				padMax = pad[i]
			}
		} else {
			r.Limbs[i] = m.Limbs[i]
		}
	}
	r.LimbMax = new(big.Int).Add(m.LimbMax, new(big.Int).Add(padMax, bigOne))
	return &r
}

// EnforceZero constrains the product to be zero modulo the Ristretto scalar
// order. A small quotient witness k is introduced through a hint and the
// exact integer identity value = k * q is closed with a range-checked carry
// chain; the limb-bit budget accumulated in LimbMax determines the quotient
// and carry ranges.
func (m *MulVar) EnforceZero(api frontend.API) error {
	limbMaxBits := m.LimbMax.BitLen()
	if limbMaxBits < 2*BitPerLimb+3 {
		limbMaxBits = 2*BitPerLimb + 3
	}

	valueBits := limbMaxBits + BitPerLimb*(NumOfMulLimbs-1) + 4
	kBits := valueBits - rSModulus.BitLen() + 1
	nk := (kBits + BitPerLimb - 1) / BitPerLimb
	if nk > NumOfLimbs+1 {
		return errors.New("fieldsim: limb-bit budget exhausted")
	}
	positions := NumOfMulLimbs
	if nk+NumOfLimbs-1 > positions {
		positions = nk + NumOfLimbs - 1
	}
	carryBits := limbMaxBits - BitPerLimb + 2

	hintIn := make([]frontend.Variable, 0, 2+NumOfMulLimbs)
	hintIn = append(hintIn, nk, carryBits)
	hintIn = append(hintIn, m.Limbs[:]...)
	out, err := api.Compiler().NewHint(enforceZeroHint, nk+positions-1, hintIn...)
	if err != nil {
		return err
	}
	kLimbs := out[:nk]
	carries := out[nk:]

	topBits := kBits - BitPerLimb*(nk-1)
	for i := 0; i < nk; i++ {
		if i == nk-1 {
			api.ToBinary(kLimbs[i], topBits)
		} else {
			api.ToBinary(kLimbs[i], BitPerLimb)
		}
	}

	offset := new(big.Int).Lsh(bigOne, uint(carryBits))
	carryIn := frontend.Variable(0)
	for pos := 0; pos < positions; pos++ {
		var left frontend.Variable = 0
		if pos < NumOfMulLimbs {
			left = m.Limbs[pos]
		}
		right := frontend.Variable(0)
		for i := 0; i < nk; i++ {
			j := pos - i
			if j < 0 || j >= NumOfLimbs {
				continue
			}
			right = api.Add(right, api.Mul(kLimbs[i], rSLimbs[j]))
		}
		t := api.Sub(api.Add(left, carryIn), right)
		if pos < positions-1 {
			cv := carries[pos]
			api.ToBinary(cv, carryBits+1)
			carry := api.Sub(cv, offset)
			api.AssertIsEqual(t, api.Mul(carry, limbUnit))
			carryIn = carry
		} else {
			api.AssertIsEqual(t, 0)
		}
	}
	return nil
}

func padUnits(limbMax *big.Int) uint64 {
	u := new(big.Int).Add(limbMax, new(big.Int).Sub(limbUnit, bigOne))
	u.Rsh(u, BitPerLimb)
	return u.Uint64()
}

// enforceZeroHint computes the quotient limbs and the carry chain for
// EnforceZero. Inputs: nk, carryBits, then the product limbs. Outputs: nk
// quotient limbs followed by offset-encoded carries.
func enforceZeroHint(_ *big.Int, inputs, outputs []*big.Int) error {
	if len(inputs) < 2+NumOfMulLimbs {
		return errors.New("fieldsim: malformed hint inputs")
	}
	nk := int(inputs[0].Int64())
	carryBits := uint(inputs[1].Uint64())
	limbs := inputs[2 : 2+NumOfMulLimbs]

	value := recompose(limbs)
	k, rem := new(big.Int).QuoRem(value, rSModulus, new(big.Int))
	if rem.Sign() != 0 {
		return errors.New("fieldsim: value not divisible by the modulus")
	}

	kLimbs := make([]*big.Int, nk)
	rest := new(big.Int).Set(k)
	for i := 0; i < nk; i++ {
		kLimbs[i] = new(big.Int).And(rest, limbMask)
		rest.Rsh(rest, BitPerLimb)
	}
	if rest.Sign() != 0 {
		return errors.New("fieldsim: quotient exceeds its range")
	}
	for i := 0; i < nk; i++ {
		outputs[i].Set(kLimbs[i])
	}

	positions := NumOfMulLimbs
	if nk+NumOfLimbs-1 > positions {
		positions = nk + NumOfLimbs - 1
	}
	offset := new(big.Int).Lsh(bigOne, carryBits)
	carry := new(big.Int)
	for pos := 0; pos < positions-1; pos++ {
		t := new(big.Int).Set(carry)
		if pos < NumOfMulLimbs {
			t.Add(t, limbs[pos])
		}
		for i := 0; i < nk; i++ {
			j := pos - i
			if j < 0 || j >= NumOfLimbs {
				continue
			}
			t.Sub(t, new(big.Int).Mul(kLimbs[i], rSLimbs[j]))
		}
		carry = new(big.Int).Rsh(t, BitPerLimb)
		if new(big.Int).Lsh(carry, BitPerLimb).Cmp(t) != 0 {
			return errors.New("fieldsim: carry chain misaligned")
		}
		outputs[nk+pos].Add(carry, offset)
	}
	return nil
}
