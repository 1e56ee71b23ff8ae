// Package fieldsim represents elements of the Ristretto scalar field as
// bounded limbs inside a circuit over the BLS12-381 scalar field.
//
// Values are unsigned big integers encoded as limbs of BitPerLimb bits.
// Arithmetic never reduces modulo the Ristretto scalar order; limbs may
// temporarily exceed their normal form, and every operation tracks how far.
// The only way to enforce an equation modulo the order is EnforceZero on the
// circuit side.
package fieldsim

import (
	"errors"
	"math/big"
)

const (
	// BitPerLimb is the width of a limb in normal form.
	BitPerLimb = 43
	// NumOfLimbs is the number of limbs of a simulated field element.
	NumOfLimbs = 6
	// NumOfMulLimbs is the number of limbs of an unreduced product.
	NumOfMulLimbs = 2*NumOfLimbs - 1
)

// ErrDeserialization is returned when bytes or an integer cannot be
// reconstructed into limbs.
var ErrDeserialization = errors.New("fieldsim: limb reconstruction failed")

// rSModulus is the order of the Ristretto scalar field,
// 2^252 + 27742317777372353535851937790883648493.
var rSModulus, _ = new(big.Int).SetString(
	"1000000000000000000000000000000014def9dea2f79cd65812631a5cf5d3ed", 16)

var (
	limbMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), BitPerLimb), big.NewInt(1))
	capBound = new(big.Int).Lsh(big.NewInt(1), BitPerLimb*NumOfLimbs)
	rSLimbs  = mustDecompose(rSModulus, NumOfLimbs)
	bigOne   = big.NewInt(1)
	limbUnit = new(big.Int).Lsh(big.NewInt(1), BitPerLimb)
)

// Modulus returns the simulated field's modulus.
func Modulus() *big.Int {
	return new(big.Int).Set(rSModulus)
}

// SimFr is a simulated Ristretto scalar: NumOfLimbs limbs plus a counter of
// how many additions over the normal form the limbs may carry.
type SimFr struct {
	Limbs [NumOfLimbs]*big.Int

	// NumOfAdditionsOverNormalForm bounds each limb by
	// (counter+1) * 2^BitPerLimb.
	NumOfAdditionsOverNormalForm uint64
}

// SimFrMul is an unreduced product of two simulated scalars.
type SimFrMul struct {
	Limbs [NumOfMulLimbs]*big.Int

	// LimbMax is a strict upper bound on every limb value.
	LimbMax *big.Int
}

// FromBigInt decomposes a non-negative integer below the limb capacity
// (2^258) into normal-form limbs.
func FromBigInt(v *big.Int) (*SimFr, error) {
	if v.Sign() < 0 || v.Cmp(capBound) >= 0 {
		return nil, ErrDeserialization
	}
	var s SimFr
	rest := new(big.Int).Set(v)
	for i := 0; i < NumOfLimbs; i++ {
		s.Limbs[i] = new(big.Int).And(rest, limbMask)
		rest.Rsh(rest, BitPerLimb)
	}
	return &s, nil
}

// ToBigInt recomposes the limbs into the integer they encode.
func (s *SimFr) ToBigInt() *big.Int {
	return recompose(s.Limbs[:])
}

// Add returns the limb-wise sum. No carry propagation is performed.
func (s *SimFr) Add(o *SimFr) *SimFr {
	var r SimFr
	for i := 0; i < NumOfLimbs; i++ {
		r.Limbs[i] = new(big.Int).Add(s.Limbs[i], o.Limbs[i])
	}
	r.NumOfAdditionsOverNormalForm = s.NumOfAdditionsOverNormalForm + o.NumOfAdditionsOverNormalForm + 1
	return &r
}

// Sub returns the limb-wise difference, first padding the minuend with a
// multiple of the modulus so that every limb stays non-negative.
func (s *SimFr) Sub(o *SimFr) *SimFr {
	pad, padAdds := subPadLimbs(o.NumOfAdditionsOverNormalForm+1, NumOfLimbs)
	var r SimFr
	for i := 0; i < NumOfLimbs; i++ {
		r.Limbs[i] = new(big.Int).Add(s.Limbs[i], pad[i])
		r.Limbs[i].Sub(r.Limbs[i], o.Limbs[i])
		if r.Limbs[i].Sign() < 0 {
			panic("fieldsim: sub pad too small")
		}
	}
	r.NumOfAdditionsOverNormalForm = s.NumOfAdditionsOverNormalForm + padAdds
	return &r
}

// Mul returns the unreduced schoolbook product.
func (s *SimFr) Mul(o *SimFr) *SimFrMul {
	var r SimFrMul
	for i := range r.Limbs {
		r.Limbs[i] = new(big.Int)
	}
	for i := 0; i < NumOfLimbs; i++ {
		for j := 0; j < NumOfLimbs; j++ {
			t := new(big.Int).Mul(s.Limbs[i], o.Limbs[j])
			r.Limbs[i+j].Add(r.Limbs[i+j], t)
		}
	}
	sBound := limbBound(s.NumOfAdditionsOverNormalForm)
	oBound := limbBound(o.NumOfAdditionsOverNormalForm)
	r.LimbMax = new(big.Int).Mul(sBound, oBound)
	r.LimbMax.Mul(r.LimbMax, big.NewInt(NumOfLimbs))
	return &r
}

// ToBigInt recomposes the product limbs.
func (m *SimFrMul) ToBigInt() *big.Int {
	return recompose(m.Limbs[:])
}

// Add returns the limb-wise sum of two products.
func (m *SimFrMul) Add(o *SimFrMul) *SimFrMul {
	var r SimFrMul
	for i := range r.Limbs {
		r.Limbs[i] = new(big.Int).Add(m.Limbs[i], o.Limbs[i])
	}
	r.LimbMax = new(big.Int).Add(m.LimbMax, o.LimbMax)
	return &r
}

// SubSimFr subtracts a six-limb value from the product, padding with a
// multiple of the modulus so limbs stay non-negative.
func (m *SimFrMul) SubSimFr(o *SimFr) *SimFrMul {
	pad, _ := subPadLimbs(o.NumOfAdditionsOverNormalForm+1, NumOfLimbs)
	var r SimFrMul
	padMax := new(big.Int)
	for i := range r.Limbs {
		r.Limbs[i] = new(big.Int).Set(m.Limbs[i])
		if i < NumOfLimbs {
			r.Limbs[i].Add(r.Limbs[i], pad[i])
			r.Limbs[i].Sub(r.Limbs[i], o.Limbs[i])
			if r.Limbs[i].Sign() < 0 {
				panic("fieldsim: sub pad too small")
			}
			if pad[i].Cmp(padMax) > 0 {
				padMax = pad[i]
			}
		}
	}
	r.LimbMax = new(big.Int).Add(m.LimbMax, new(big.Int).Add(padMax, bigOne))
	return &r
}

// Compress5 packs up to five limbs into a single integer
// sum(limb_i * 2^(BitPerLimb*i)). Used for the Rescue state packing of the
// non-ZK verifier state.
func Compress5(limbs []*big.Int) *big.Int {
	if len(limbs) > 5 {
		panic("fieldsim: compress group too large")
	}
	return recompose(limbs)
}

func limbBound(nAdds uint64) *big.Int {
	b := new(big.Int).SetUint64(nAdds + 1)
	return b.Lsh(b, BitPerLimb)
}

func recompose(limbs []*big.Int) *big.Int {
	r := new(big.Int)
	for i := len(limbs) - 1; i >= 0; i-- {
		r.Lsh(r, BitPerLimb)
		r.Add(r, limbs[i])
	}
	return r
}

func mustDecompose(v *big.Int, n int) []*big.Int {
	limbs := make([]*big.Int, n)
	rest := new(big.Int).Set(v)
	for i := 0; i < n; i++ {
		limbs[i] = new(big.Int).And(rest, limbMask)
		rest.Rsh(rest, BitPerLimb)
	}
	if rest.Sign() != 0 {
		panic("fieldsim: value exceeds limb capacity")
	}
	return limbs
}

// subPadLimbs returns a limb representation of a multiple of the modulus in
// which every limb below the top is at least units*2^BitPerLimb, so that a
// value whose limbs are bounded by units*2^BitPerLimb can be subtracted
// limb-wise without going negative. The top limb absorbs the remainder and
// may exceed BitPerLimb bits. The second return value bounds the resulting
// growth in units of 2^BitPerLimb.
func subPadLimbs(units uint64, n int) ([]*big.Int, uint64) {
	u := new(big.Int).SetUint64(units)
	need := new(big.Int).Lsh(u, BitPerLimb)

	min := new(big.Int).Lsh(new(big.Int).SetUint64(units+2), uint(BitPerLimb*n))
	mu := new(big.Int).Div(min, rSModulus)
	mu.Add(mu, bigOne)
	m := new(big.Int).Mul(mu, rSModulus)

	limbs := make([]*big.Int, n)
	rest := new(big.Int).Set(m)
	for i := 0; i < n-1; i++ {
		limbs[i] = new(big.Int).And(rest, limbMask)
		rest.Rsh(rest, BitPerLimb)
	}
	limbs[n-1] = rest

	uPlus := new(big.Int).SetUint64(units + 1)
	shift := new(big.Int).Lsh(uPlus, BitPerLimb)
	for i := 0; i < n-1; i++ {
		if limbs[i].Cmp(need) < 0 {
			limbs[i].Add(limbs[i], shift)
			limbs[i+1].Sub(limbs[i+1], uPlus)
		}
	}
	if limbs[n-1].Sign() < 0 {
		panic("fieldsim: pad borrow underflow")
	}

	var maxAdds uint64
	for _, l := range limbs {
		adds := new(big.Int).Rsh(l, BitPerLimb).Uint64() + 1
		if adds > maxAdds {
			maxAdds = adds
		}
	}
	return limbs, maxAdds
}
