package fieldsim

import (
	"math/big"
	"testing"

	"github.com/takakv/bar2abar/algebra"
	"github.com/takakv/bar2abar/testutils"
)

func TestLimbCapacity(t *testing.T) {
	// The limb schedule must leave two spare bits above the modulus.
	if NumOfLimbs*BitPerLimb < rSModulus.BitLen()+2 {
		t.Fatal("limb schedule too small for the simulated modulus")
	}
}

func TestFromBigIntRoundtrip(t *testing.T) {
	rng := testutils.NewSeededReader([32]byte{})
	bound := new(big.Int).Lsh(big.NewInt(1), NumOfLimbs*BitPerLimb)

	for i := 0; i < 128; i++ {
		v, err := algebra.RandomScalar(rng, bound)
		if err != nil {
			t.Fatal(err)
		}
		s, err := FromBigInt(v)
		if err != nil {
			t.Fatal(err)
		}
		if s.ToBigInt().Cmp(v) != 0 {
			t.Fatal("roundtrip mismatch")
		}
		for _, limb := range s.Limbs {
			if limb.BitLen() > BitPerLimb {
				t.Fatal("normal-form limb exceeds the limb width")
			}
		}
	}

	if _, err := FromBigInt(bound); err != ErrDeserialization {
		t.Error("over-capacity value accepted")
	}
	if _, err := FromBigInt(big.NewInt(-1)); err != ErrDeserialization {
		t.Error("negative value accepted")
	}
}

func TestSimFrArithmetic(t *testing.T) {
	rng := testutils.NewSeededReader([32]byte{1})

	for i := 0; i < 64; i++ {
		a, _ := algebra.RandomScalar(rng, rSModulus)
		b, _ := algebra.RandomScalar(rng, rSModulus)
		sa, _ := FromBigInt(a)
		sb, _ := FromBigInt(b)

		sum := sa.Add(sb)
		if sum.ToBigInt().Cmp(new(big.Int).Add(a, b)) != 0 {
			t.Fatal("add mismatch")
		}

		diff := sa.Sub(sb)
		want := new(big.Int).Sub(a, b)
		want.Mod(want, rSModulus)
		got := new(big.Int).Mod(diff.ToBigInt(), rSModulus)
		if got.Cmp(want) != 0 {
			t.Fatal("sub mismatch modulo the order")
		}
		for _, limb := range diff.Limbs {
			if limb.Sign() < 0 {
				t.Fatal("sub produced a negative limb")
			}
		}

		prod := sa.Mul(sb)
		if prod.ToBigInt().Cmp(new(big.Int).Mul(a, b)) != 0 {
			t.Fatal("mul mismatch")
		}
		for _, limb := range prod.Limbs {
			if limb.Cmp(prod.LimbMax) >= 0 {
				t.Fatal("mul limb exceeds tracked bound")
			}
		}
	}
}

func TestSimFrMulSub(t *testing.T) {
	rng := testutils.NewSeededReader([32]byte{2})

	for i := 0; i < 32; i++ {
		a, _ := algebra.RandomScalar(rng, rSModulus)
		b, _ := algebra.RandomScalar(rng, rSModulus)
		c, _ := algebra.RandomScalar(rng, rSModulus)
		sa, _ := FromBigInt(a)
		sb, _ := FromBigInt(b)
		sc, _ := FromBigInt(c)

		res := sa.Mul(sb).SubSimFr(sc)
		want := new(big.Int).Mul(a, b)
		want.Sub(want, c)
		want.Mod(want, rSModulus)
		got := new(big.Int).Mod(res.ToBigInt(), rSModulus)
		if got.Cmp(want) != 0 {
			t.Fatal("mul-sub mismatch modulo the order")
		}
		for _, limb := range res.Limbs {
			if limb.Sign() < 0 {
				t.Fatal("mul-sub produced a negative limb")
			}
			if limb.Cmp(res.LimbMax) >= 0 {
				t.Fatal("mul-sub limb exceeds tracked bound")
			}
		}
	}
}

func TestCompress5(t *testing.T) {
	limbs := []*big.Int{
		big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(4), big.NewInt(5),
	}
	got := Compress5(limbs)
	want := new(big.Int)
	for i, l := range limbs {
		t2 := new(big.Int).Lsh(l, uint(BitPerLimb*i))
		want.Add(want, t2)
	}
	if got.Cmp(want) != 0 {
		t.Fatal("compress mismatch")
	}
}
