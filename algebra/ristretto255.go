package algebra

import (
	"io"
	"math/big"

	"github.com/cloudflare/circl/group"
)

type r255Group struct {
	order *big.Int
	name  string
}

type r255Point struct {
	curve *r255Group
	val   group.Element
}

func (g *r255Group) Name() string {
	return g.name
}

func (g *r255Group) N() *big.Int {
	return new(big.Int).Set(g.order)
}

func (g *r255Group) Generator() Element {
	return &r255Point{
		curve: g,
		val:   group.Ristretto255.Generator(),
	}
}

func (g *r255Group) Identity() Element {
	return &r255Point{
		curve: g,
		val:   group.Ristretto255.Identity(),
	}
}

func (g *r255Group) Random(rd io.Reader) Element {
	return &r255Point{
		curve: g,
		val:   group.Ristretto255.RandomElement(rd),
	}
}

func (g *r255Group) Element() Element {
	return &r255Point{
		curve: g,
		val:   group.Ristretto255.Identity(),
	}
}

func (g *r255Group) HashToGroup(msg, dst []byte) Element {
	return &r255Point{
		curve: g,
		val:   group.Ristretto255.HashToElement(msg, dst),
	}
}

func (e *r255Point) check(a Element) *r255Point {
	ca, ok := a.(*r255Point)
	if !ok {
		panic("incompatible group element type")
	}
	return ca
}

func (e *r255Point) Add(a, b Element) Element {
	ca := e.check(a)
	cb := e.check(b)
	e.val = group.Ristretto255.NewElement().Add(ca.val, cb.val)
	return e
}

func (e *r255Point) Subtract(a, b Element) Element {
	tmp := e.curve.Identity()
	tmp.Negate(b)
	e.Add(a, tmp)
	return e
}

func (e *r255Point) Negate(a Element) Element {
	ca := e.check(a)
	e.val = group.Ristretto255.NewElement().Neg(ca.val)
	return e
}

func (e *r255Point) Double(a Element) Element {
	ca := e.check(a)
	e.val = group.Ristretto255.NewElement().Dbl(ca.val)
	return e
}

func (e *r255Point) Scale(a Element, s *big.Int) Element {
	ca := e.check(a)
	scalar := group.Ristretto255.NewScalar()
	scalar.SetBigInt(new(big.Int).Mod(s, e.curve.order))
	e.val = group.Ristretto255.NewElement().Mul(ca.val, scalar)
	return e
}

func (e *r255Point) BaseScale(s *big.Int) Element {
	scalar := group.Ristretto255.NewScalar()
	scalar.SetBigInt(new(big.Int).Mod(s, e.curve.order))
	e.val = group.Ristretto255.NewElement().MulGen(scalar)
	return e
}

func (e *r255Point) Set(a Element) Element {
	ca := e.check(a)
	e.val = group.Ristretto255.NewElement().Set(ca.val)
	return e
}

func (e *r255Point) Equal(b Element) bool {
	cb := e.check(b)
	return e.val.IsEqual(cb.val)
}

func (e *r255Point) IsIdentity() bool {
	return e.val.IsIdentity()
}

func (e *r255Point) Bytes() []byte {
	b, _ := e.val.MarshalBinary()
	return b
}

func (e *r255Point) Decompress(b []byte) error {
	val := group.Ristretto255.NewElement()
	if err := val.UnmarshalBinary(b); err != nil {
		return ErrDecompressElement
	}
	e.val = val
	return nil
}

func (e *r255Point) String() string {
	return string(e.Bytes())
}

// Ristretto255 returns the prime-order Ristretto group over Curve25519,
// the source curve of the conversion proof.
func Ristretto255() Group {
	n, _ := new(big.Int).SetString(
		"1000000000000000000000000000000014def9dea2f79cd65812631a5cf5d3ed", 16)

	G := new(r255Group)
	G.order = n
	G.name = "ristretto255"
	return G
}
