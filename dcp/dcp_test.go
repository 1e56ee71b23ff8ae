package dcp

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"

	"github.com/takakv/bar2abar/algebra"
	"github.com/takakv/bar2abar/testutils"
)

func proveFixture(t *testing.T) (*algebra.PedersenGens, algebra.Element,
	algebra.Element, fr.Element, *ZKPartProof, *NonZKState, *big.Int, *big.Int) {
	t.Helper()
	rng := testutils.NewSeededReader([32]byte{})
	gens := algebra.DefaultRistrettoGens()
	order := gens.Group().N()

	x := big.NewInt(71)
	y := big.NewInt(52)
	gamma, err := algebra.RandomScalar(rng, order)
	require.NoError(t, err)
	delta, err := algebra.RandomScalar(rng, order)
	require.NoError(t, err)

	pointP := gens.Commit(x, gamma)
	pointQ := gens.Commit(y, delta)

	var z fr.Element
	zInt, err := algebra.RandomScalar(rng, fr.Modulus())
	require.NoError(t, err)
	z.SetBigInt(zInt)

	proof, state, beta, lambda, err := Prove(rng, x, gamma, y, delta, gens, pointP, pointQ, z)
	require.NoError(t, err)
	return gens, pointP, pointQ, z, proof, state, beta, lambda
}

func TestProveVerify(t *testing.T) {
	gens, pointP, pointQ, z, proof, _, beta, lambda := proveFixture(t)

	gotBeta, gotLambda, err := Verify(gens, pointP, pointQ, z, proof)
	require.NoError(t, err)
	require.Zero(t, gotBeta.Cmp(beta), "verifier must re-derive beta")
	require.Zero(t, gotLambda.Cmp(lambda), "verifier must re-derive lambda")
}

func TestCircuitIdentityHolds(t *testing.T) {
	_, _, _, _, proof, state, beta, lambda := proveFixture(t)
	order := algebra.Ristretto255().N()

	// beta*x + beta*lambda*y + lambda*b - (s1 + lambda*s2 - a) = 0 mod n.
	lhs := new(big.Int).Mul(beta, state.X)
	t2 := new(big.Int).Mul(beta, lambda)
	t2.Mul(t2, state.Y)
	lhs.Add(lhs, t2)
	t3 := new(big.Int).Mul(lambda, state.B)
	lhs.Add(lhs, t3)

	rhs := new(big.Int).Mul(lambda, proof.S2)
	rhs.Add(rhs, proof.S1)
	rhs.Sub(rhs, state.A)

	diff := new(big.Int).Sub(lhs, rhs)
	diff.Mod(diff, order)
	require.Zero(t, diff.Sign(), "circuit-side identity must hold")
}

func TestVerifyRejectsTampering(t *testing.T) {
	gens, pointP, pointQ, z, proof, _, _, _ := proveFixture(t)
	order := gens.Group().N()

	tampered := *proof
	tampered.S1 = new(big.Int).Mod(new(big.Int).Add(proof.S1, big.NewInt(1)), order)
	_, _, err := Verify(gens, pointP, pointQ, z, &tampered)
	require.ErrorIs(t, err, ErrZKProofVerification)

	var zPlusOne fr.Element
	var one fr.Element
	one.SetOne()
	zPlusOne.Add(&z, &one)
	_, _, err = Verify(gens, pointP, pointQ, zPlusOne, proof)
	require.ErrorIs(t, err, ErrZKProofVerification)

	swapped := *proof
	swapped.PointR, swapped.PointS = proof.PointS, proof.PointR
	_, _, err = Verify(gens, pointP, pointQ, z, &swapped)
	require.Error(t, err)
}

func TestStateCommitmentBindsState(t *testing.T) {
	rng := testutils.NewSeededReader([32]byte{7})
	order := algebra.Ristretto255().N()

	x, _ := algebra.RandomScalar(rng, order)
	y, _ := algebra.RandomScalar(rng, order)
	a, _ := algebra.RandomScalar(rng, order)
	b, _ := algebra.RandomScalar(rng, order)
	var r fr.Element
	rInt, _ := algebra.RandomScalar(rng, fr.Modulus())
	r.SetBigInt(rInt)

	c1, err := StateCommitment(x, y, a, b, r)
	require.NoError(t, err)
	c2, err := StateCommitment(x, y, a, b, r)
	require.NoError(t, err)
	require.True(t, c1.Equal(&c2))

	c3, err := StateCommitment(y, x, a, b, r)
	require.NoError(t, err)
	require.False(t, c1.Equal(&c3), "commitment must depend on the state order")
}

func TestCompressedLimbsLayout(t *testing.T) {
	x := big.NewInt(1)
	zero := big.NewInt(0)
	groups, err := CompressedLimbs(x, zero, zero, zero)
	require.NoError(t, err)
	require.Zero(t, groups[0].Cmp(big.NewInt(1)), "limb 0 of x lands in group 0")
	for i := 1; i < 5; i++ {
		require.Zero(t, groups[i].Sign())
	}
}

func TestProofMarshalRoundtrip(t *testing.T) {
	_, _, _, _, proof, _, _, _ := proveFixture(t)

	data, err := proof.MarshalJSON()
	require.NoError(t, err)

	got, err := ProofUnmarshalJSON(data, algebra.Ristretto255())
	require.NoError(t, err)
	require.True(t, got.PointR.Equal(proof.PointR))
	require.True(t, got.PointS.Equal(proof.PointS))
	require.Zero(t, got.S1.Cmp(proof.S1))
	require.Zero(t, got.S2.Cmp(proof.S2))
	require.Zero(t, got.S3.Cmp(proof.S3))
	require.Zero(t, got.S4.Cmp(proof.S4))
	require.True(t, got.NonZKStateCommitment.Equal(&proof.NonZKStateCommitment))

	_, err = ProofUnmarshalJSON([]byte(`{"point_r":"AAAA"}`), algebra.Ristretto255())
	require.ErrorIs(t, err, algebra.ErrDecompressElement)
}

func TestTranscriptDomainSeparation(t *testing.T) {
	order := algebra.Ristretto255().N()

	t1 := NewTranscript(ProofTranscriptLabel)
	t1.Append("msg", []byte("payload"))
	c1 := t1.ChallengeScalar("c", order)

	t2 := NewTranscript(ProofTranscriptLabel)
	t2.Append("msg", []byte("payloae"))
	c2 := t2.ChallengeScalar("c", order)
	require.NotZero(t, c1.Cmp(c2), "different messages must give different challenges")

	t3 := NewTranscript([]byte("other label"))
	t3.Append("msg", []byte("payload"))
	c3 := t3.ChallengeScalar("c", order)
	require.NotZero(t, c1.Cmp(c3), "labels must domain-separate")

	c4 := t1.ChallengeScalar("c", order)
	require.NotZero(t, c1.Cmp(c4), "state must ratchet between challenges")
}
