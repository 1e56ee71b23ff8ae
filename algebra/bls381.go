package algebra

import (
	"io"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

type bls381Group struct {
	order *big.Int
	name  string
}

type bls381Point struct {
	curve *bls381Group
	val   bls12381.G1Affine
}

func (g *bls381Group) Name() string {
	return g.name
}

func (g *bls381Group) N() *big.Int {
	return new(big.Int).Set(g.order)
}

func (g *bls381Group) Generator() Element {
	_, _, g1Aff, _ := bls12381.Generators()
	return &bls381Point{curve: g, val: g1Aff}
}

func (g *bls381Group) Identity() Element {
	return &bls381Point{curve: g}
}

func (g *bls381Group) Element() Element {
	return &bls381Point{curve: g}
}

func (g *bls381Group) Random(rd io.Reader) Element {
	s, err := RandomScalar(rd, g.order)
	if err != nil {
		// The reader is broken beyond recovery; surface it loudly.
		panic(err)
	}
	e := &bls381Point{curve: g}
	e.val.ScalarMultiplicationBase(s)
	return e
}

func (g *bls381Group) HashToGroup(msg, dst []byte) Element {
	p, err := bls12381.HashToG1(msg, dst)
	if err != nil {
		panic(err)
	}
	return &bls381Point{curve: g, val: p}
}

func (e *bls381Point) check(a Element) *bls381Point {
	ca, ok := a.(*bls381Point)
	if !ok {
		panic("incompatible group element type")
	}
	return ca
}

func (e *bls381Point) Add(a, b Element) Element {
	ca := e.check(a)
	cb := e.check(b)
	var aj, bj bls12381.G1Jac
	aj.FromAffine(&ca.val)
	bj.FromAffine(&cb.val)
	aj.AddAssign(&bj)
	e.val.FromJacobian(&aj)
	return e
}

func (e *bls381Point) Subtract(a, b Element) Element {
	tmp := e.curve.Identity()
	tmp.Negate(b)
	e.Add(a, tmp)
	return e
}

func (e *bls381Point) Negate(a Element) Element {
	ca := e.check(a)
	e.val.Neg(&ca.val)
	return e
}

func (e *bls381Point) Double(a Element) Element {
	return e.Add(a, a)
}

func (e *bls381Point) Scale(a Element, s *big.Int) Element {
	ca := e.check(a)
	m := new(big.Int).Mod(s, e.curve.order)
	e.val.ScalarMultiplication(&ca.val, m)
	return e
}

func (e *bls381Point) BaseScale(s *big.Int) Element {
	m := new(big.Int).Mod(s, e.curve.order)
	e.val.ScalarMultiplicationBase(m)
	return e
}

func (e *bls381Point) Set(a Element) Element {
	ca := e.check(a)
	e.val = ca.val
	return e
}

func (e *bls381Point) Equal(b Element) bool {
	cb := e.check(b)
	return e.val.Equal(&cb.val)
}

func (e *bls381Point) IsIdentity() bool {
	return e.val.IsInfinity()
}

func (e *bls381Point) Bytes() []byte {
	b := e.val.Bytes()
	return b[:]
}

func (e *bls381Point) Decompress(b []byte) error {
	var p bls12381.G1Affine
	if _, err := p.SetBytes(b); err != nil {
		return ErrDecompressElement
	}
	e.val = p
	return nil
}

func (e *bls381Point) String() string {
	return e.val.String()
}

// BLS381G1 returns the G1 group of BLS12-381, the curve over whose scalar
// field the conversion circuit is expressed.
func BLS381G1() Group {
	G := new(bls381Group)
	G.order = fr.Modulus()
	G.name = "bls12381g1"
	return G
}
