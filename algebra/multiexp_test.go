package algebra

import (
	"math/big"
	"testing"

	"github.com/takakv/bar2abar/testutils"
)

func TestMultiExpRistretto(t *testing.T) {
	runMultiExpTest(t, Ristretto255())
}

func TestMultiExpBLS381G1(t *testing.T) {
	runMultiExpTest(t, BLS381G1())
}

func runMultiExpTest(t *testing.T, g Group) {
	base := g.Generator()

	res := VartimeMultiExp(g, nil, nil)
	if !res.IsIdentity() {
		t.Error("empty input must yield the identity")
	}

	res = VartimeMultiExp(g, []*big.Int{big.NewInt(0)}, []Element{base})
	if !res.IsIdentity() {
		t.Error("0*G must be the identity")
	}

	res = VartimeMultiExp(g, []*big.Int{big.NewInt(1)}, []Element{base})
	if !res.Equal(base) {
		t.Error("1*G must be the base")
	}

	res = VartimeMultiExp(g,
		[]*big.Int{big.NewInt(1), big.NewInt(0)},
		[]Element{base, g.Generator()})
	if !res.Equal(base) {
		t.Error("1*G + 0*G must be the base")
	}

	g2 := g.Element().Add(base, base)
	g3 := g.Element().Scale(base, big.NewInt(500))
	res = VartimeMultiExp(g,
		[]*big.Int{big.NewInt(1000), big.NewInt(2), big.NewInt(3)},
		[]Element{base, g2, g3})
	expected := g.Element().BaseScale(big.NewInt(1000 + 4 + 1500))
	if !res.Equal(expected) {
		t.Error("weighted multi-exp mismatch")
	}
}

// Determinism against the naive fold, over a fixed scalar and point list.
func TestMultiExpMatchesNaive(t *testing.T) {
	rng := testutils.NewSeededReader([32]byte{})
	for _, g := range []Group{Ristretto255(), BLS381G1()} {
		for _, n := range []int{1, 3, 33, 150} {
			scalars := make([]*big.Int, n)
			points := make([]Element, n)
			for i := 0; i < n; i++ {
				s, err := RandomScalar(rng, g.N())
				if err != nil {
					t.Fatal(err)
				}
				scalars[i] = s
				points[i] = g.Random(rng)
			}
			fast := VartimeMultiExp(g, scalars, points)
			slow := NaiveMultiExp(g, scalars, points)
			if !fast.Equal(slow) {
				t.Errorf("%s: pippenger disagrees with naive at n=%d", g.Name(), n)
			}
		}
	}
}
