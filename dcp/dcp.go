// Package dcp implements the delegated Chaum-Pedersen sigma protocol: it
// proves equality between the openings of two Ristretto Pedersen
// commitments and a committed pair whose binding to the anonymous record
// commitment is delegated to a SNARK circuit.
package dcp

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/takakv/bar2abar/algebra"
	"github.com/takakv/bar2abar/fieldsim"
	"github.com/takakv/bar2abar/rescue"
)

// ErrZKProofVerification is returned when the sigma-protocol group equation
// does not hold.
var ErrZKProofVerification = errors.New("dcp: proof verification failed")

// ProofTranscriptLabel initializes the Fiat-Shamir transcript of the
// conversion proof.
var ProofTranscriptLabel = []byte("BAR to ABAR proof")

// ZKPartProof is the public part of the sigma proof.
type ZKPartProof struct {
	PointR algebra.Element
	PointS algebra.Element
	S1     *big.Int
	S2     *big.Int
	S3     *big.Int
	S4     *big.Int

	// NonZKStateCommitment is the Rescue commitment to the witness state
	// (x, y, a, b) under the blind r; the circuit opens it.
	NonZKStateCommitment fr.Element
}

// NonZKState is the witness the circuit receives: the two committed values,
// the two sigma nonces, and the Rescue blind.
type NonZKState struct {
	X *big.Int
	Y *big.Int
	A *big.Int
	B *big.Int
	R fr.Element
}

// Prove runs the prover side of the delegated Chaum-Pedersen protocol for
// the statement P = Com(x, gamma), Q = Com(y, delta), with z the anonymous
// record commitment bound elsewhere. It returns the proof, the witness
// state for the circuit, and the two transcript challenges.
func Prove(rd io.Reader, x, gamma, y, delta *big.Int, gens *algebra.PedersenGens,
	P, Q algebra.Element, z fr.Element) (*ZKPartProof, *NonZKState, *big.Int, *big.Int, error) {
	order := gens.Group().N()

	a, err := algebra.RandomScalar(rd, order)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	b, err := algebra.RandomScalar(rd, order)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	rInt, err := algebra.RandomScalar(rd, fr.Modulus())
	if err != nil {
		return nil, nil, nil, nil, err
	}
	var r fr.Element
	r.SetBigInt(rInt)

	comm, err := StateCommitment(x, y, a, b, r)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("dcp: state commitment: %w", err)
	}

	transcript := newProofTranscript(gens, P, Q, z, comm)
	beta := transcript.ChallengeScalar("beta", order)

	c, err := algebra.RandomScalar(rd, order)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	d, err := algebra.RandomScalar(rd, order)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	pointR := gens.Commit(a, c)
	pointS := gens.Commit(b, d)

	transcript.Append("point-r", pointR.Bytes())
	transcript.Append("point-s", pointS.Bytes())
	lambda := transcript.ChallengeScalar("lambda", order)

	// s1 = a + beta*x, s2 = b + beta*y, s3 = d + beta*delta,
	// s4 = c + beta*gamma. The circuit-side identity
	// beta*x + beta*lambda*y + lambda*b - (s1 + lambda*s2 - a) = 0 (mod n)
	// then holds by substitution.
	s1 := respond(a, beta, x, order)
	s2 := respond(b, beta, y, order)
	s3 := respond(d, beta, delta, order)
	s4 := respond(c, beta, gamma, order)

	proof := &ZKPartProof{
		PointR:               pointR,
		PointS:               pointS,
		S1:                   s1,
		S2:                   s2,
		S3:                   s3,
		S4:                   s4,
		NonZKStateCommitment: comm,
	}
	state := &NonZKState{X: x, Y: y, A: a, B: b, R: r}
	return proof, state, beta, lambda, nil
}

// Verify checks the group side of the sigma equation and returns the
// re-derived challenges; the circuit side is the SNARK's job.
func Verify(gens *algebra.PedersenGens, P, Q algebra.Element, z fr.Element,
	proof *ZKPartProof) (*big.Int, *big.Int, error) {
	grp := gens.Group()
	order := grp.N()

	transcript := newProofTranscript(gens, P, Q, z, proof.NonZKStateCommitment)
	beta := transcript.ChallengeScalar("beta", order)
	transcript.Append("point-r", proof.PointR.Bytes())
	transcript.Append("point-s", proof.PointS.Bytes())
	lambda := transcript.ChallengeScalar("lambda", order)

	// Batched pair of Chaum-Pedersen checks:
	// beta*P + beta*lambda*Q + R + lambda*S
	//   - (s1 + lambda*s2)*G - (s4 + lambda*s3)*H == identity.
	betaLambda := mulMod(beta, lambda, order)
	sG := respond(proof.S1, lambda, proof.S2, order)
	sH := respond(proof.S4, lambda, proof.S3, order)

	scalars := []*big.Int{
		beta,
		betaLambda,
		big.NewInt(1),
		new(big.Int).Set(lambda),
		new(big.Int).Sub(order, sG),
		new(big.Int).Sub(order, sH),
	}
	points := []algebra.Element{P, Q, proof.PointR, proof.PointS, gens.G, gens.H}

	res := algebra.VartimeMultiExp(grp, scalars, points)
	if !res.IsIdentity() {
		return nil, nil, ErrZKProofVerification
	}
	return beta, lambda, nil
}

// StateCommitment computes the two-stage Rescue commitment over the five
// 5-limb packings of x||y||a||b and the blind r.
func StateCommitment(x, y, a, b *big.Int, r fr.Element) (fr.Element, error) {
	var zero fr.Element
	groups, err := CompressedLimbs(x, y, a, b)
	if err != nil {
		return zero, err
	}

	instance := rescue.NewInstance()
	var state [rescue.StateSize]fr.Element
	for i := 0; i < rescue.StateSize; i++ {
		state[i].SetBigInt(groups[i])
	}
	h1 := instance.Rescue(state)[0]

	var second [rescue.StateSize]fr.Element
	second[0] = h1
	second[1].SetBigInt(groups[4])
	second[2] = r
	return instance.Rescue(second)[0], nil
}

// CompressedLimbs splits x||y||a||b into 24 simulated-field limbs and packs
// them into five groups of at most five limbs each.
func CompressedLimbs(x, y, a, b *big.Int) ([5]*big.Int, error) {
	var groups [5]*big.Int
	limbs := make([]*big.Int, 0, 4*fieldsim.NumOfLimbs)
	for _, v := range []*big.Int{x, y, a, b} {
		s, err := fieldsim.FromBigInt(v)
		if err != nil {
			return groups, err
		}
		limbs = append(limbs, s.Limbs[:]...)
	}
	for i := 0; i < 5; i++ {
		lo := i * 5
		hi := lo + 5
		if hi > len(limbs) {
			hi = len(limbs)
		}
		groups[i] = fieldsim.Compress5(limbs[lo:hi])
	}
	return groups, nil
}

func newProofTranscript(gens *algebra.PedersenGens, P, Q algebra.Element,
	z, comm fr.Element) *Transcript {
	t := NewTranscript(ProofTranscriptLabel)
	t.Append("pc-gens-g", gens.G.Bytes())
	t.Append("pc-gens-h", gens.H.Bytes())
	t.Append("point-p", P.Bytes())
	t.Append("point-q", Q.Bytes())
	zBytes := z.Bytes()
	t.Append("hash-comm", zBytes[:])
	commBytes := comm.Bytes()
	t.Append("state-comm", commBytes[:])
	return t
}

// respond computes (base + ch*secret) mod order.
func respond(base, ch, secret, order *big.Int) *big.Int {
	r := new(big.Int).Mul(ch, secret)
	r.Add(r, base)
	return r.Mod(r, order)
}

func mulMod(a, b, order *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, order)
}
