package convert

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/frontend"

	"github.com/takakv/bar2abar/algebra"
	"github.com/takakv/bar2abar/dcp"
	"github.com/takakv/bar2abar/fieldsim"
	"github.com/takakv/bar2abar/xfr"
)

// ErrAXfrProof is returned when the PLONK prover fails on the conversion
// witness.
var ErrAXfrProof = errors.New("convert: conversion proof generation failed")

// ErrSerialization is returned when a note body cannot be encoded for
// signing.
var ErrSerialization = errors.New("convert: serialization failed")

// ConvertBarAbarProof proves that a blind asset record and an anonymous
// record commit to the same amount and asset type.
type ConvertBarAbarProof struct {
	CommitmentEqProof          *dcp.ZKPartProof
	PcRescueCommitmentsEqProof plonk.Proof
}

// BarToAbar converts an opened blind asset record into an anonymous record
// opening together with the conversion proof.
func BarToAbar(rd io.Reader, params *ProverParams, obar *xfr.OpenAssetRecord,
	abarPubkey *xfr.AXfrPublicKey, encKey *xfr.XPublicKey) (
	*xfr.OpenAnonBlindAssetRecord, *ConvertBarAbarProof, error) {
	gens := algebra.DefaultRistrettoGens()
	order := gens.Group().N()

	// 1. Construct the anonymous record opening.
	builder, err := xfr.NewOpenAnonBlindAssetRecordBuilder().
		Amount(obar.Amount).
		AssetType(obar.AssetType).
		PubKey(abarPubkey).
		Finalize(rd, encKey)
	if err != nil {
		return nil, nil, err
	}
	oabar, err := builder.Build()
	if err != nil {
		return nil, nil, err
	}

	// 2. Reconstruct the committed values and points.
	x := new(big.Int).SetUint64(obar.Amount)
	y := obar.AssetType.AsScalar()
	gamma := new(big.Int).Lsh(obar.AmountBlinds[1], 32)
	gamma.Add(gamma, obar.AmountBlinds[0])
	gamma.Mod(gamma, order)
	delta := new(big.Int).Mod(obar.TypeBlind, order)

	pointP := gens.Commit(x, gamma)
	pointQ := gens.Commit(y, delta)

	pubkeyX := abarPubkey.PubKeyX()
	z := xfr.AnonCommitment(oabar.Blind, obar.Amount, obar.AssetType, pubkeyX)

	// 3. The non-ZK part of the proof.
	sigmaProof, nonZKState, beta, lambda, err := dcp.Prove(
		rd, x, gamma, y, delta, gens, pointP, pointQ, z)
	if err != nil {
		return nil, nil, err
	}

	// 4. The circuit part.
	assignment, err := proverAssignment(nonZKState, sigmaProof, beta, lambda,
		z, obar.Amount, y, oabar.Blind, pubkeyX)
	if err != nil {
		return nil, nil, err
	}
	witness, err := frontend.NewWitness(assignment, ecc.BLS12_381.ScalarField())
	if err != nil {
		return nil, nil, fmt.Errorf("convert: witness: %w", err)
	}
	plonkProof, err := plonk.Prove(params.CS, params.PK, witness)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrAXfrProof, err)
	}

	return oabar, &ConvertBarAbarProof{
		CommitmentEqProof:          sigmaProof,
		PcRescueCommitmentsEqProof: plonkProof,
	}, nil
}

// VerifyBarToAbar verifies the conversion proof against the two records.
func VerifyBarToAbar(params *VerifierParams, bar *xfr.BlindAssetRecord,
	abar *xfr.AnonBlindAssetRecord, proof *ConvertBarAbarProof) error {
	gens := algebra.DefaultRistrettoGens()
	grp := gens.Group()

	// 1.1 Reconstruct the total amount commitment.
	var comLow, comHigh algebra.Element
	if bar.Amount.Confidential {
		comLow = grp.Element()
		if err := comLow.Decompress(bar.Amount.CommitmentLow); err != nil {
			return err
		}
		comHigh = grp.Element()
		if err := comHigh.Decompress(bar.Amount.CommitmentHigh); err != nil {
			return err
		}
	} else {
		lo, hi := xfr.U64ToU32Pair(bar.Amount.Amount)
		comLow = gens.Commit(new(big.Int).SetUint64(lo), big.NewInt(0))
		comHigh = gens.Commit(new(big.Int).SetUint64(hi), big.NewInt(0))
	}
	comAmount := grp.Element().Scale(comHigh, new(big.Int).SetUint64(xfr.TwoPow32))
	comAmount = comAmount.Add(comAmount, comLow)

	// 1.2 Reconstruct the asset type commitment.
	var comAssetType algebra.Element
	if bar.AssetType.Confidential {
		comAssetType = grp.Element()
		if err := comAssetType.Decompress(bar.AssetType.Commitment); err != nil {
			return err
		}
	} else {
		comAssetType = gens.Commit(bar.AssetType.AssetType.AsScalar(), big.NewInt(0))
	}

	// 2. The sigma part.
	beta, lambda, err := dcp.Verify(gens, comAmount, comAssetType,
		abar.Commitment, proof.CommitmentEqProof)
	if err != nil {
		return err
	}

	// 3. The circuit part, over the online inputs in their fixed order.
	public, err := publicAssignment(abar.Commitment, proof.CommitmentEqProof, beta, lambda)
	if err != nil {
		return err
	}
	witness, err := frontend.NewWitness(public, ecc.BLS12_381.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("convert: public witness: %w", err)
	}
	if err := plonk.Verify(proof.PcRescueCommitmentsEqProof, params.VK, witness); err != nil {
		return fmt.Errorf("%w: %v", dcp.ErrZKProofVerification, err)
	}
	return nil
}

// onlineScalars derives the two combined online scalars beta*lambda and
// s1 + lambda*s2 over the source scalar field.
func onlineScalars(proof *dcp.ZKPartProof, beta, lambda *big.Int) (*big.Int, *big.Int) {
	order := fieldsim.Modulus()
	betaLambda := new(big.Int).Mul(beta, lambda)
	betaLambda.Mod(betaLambda, order)
	s1PlusLambdaS2 := new(big.Int).Mul(lambda, proof.S2)
	s1PlusLambdaS2.Add(s1PlusLambdaS2, proof.S1)
	s1PlusLambdaS2.Mod(s1PlusLambdaS2, order)
	return betaLambda, s1PlusLambdaS2
}

func limbsOf(v *big.Int) ([fieldsim.NumOfLimbs]frontend.Variable, error) {
	var limbs [fieldsim.NumOfLimbs]frontend.Variable
	s, err := fieldsim.FromBigInt(v)
	if err != nil {
		return limbs, err
	}
	for i := range limbs {
		limbs[i] = s.Limbs[i]
	}
	return limbs, nil
}

func frToBig(e fr.Element) *big.Int {
	return e.BigInt(new(big.Int))
}

func proverAssignment(state *dcp.NonZKState, proof *dcp.ZKPartProof,
	beta, lambda *big.Int, z fr.Element, amount uint64, assetTypeScalar *big.Int,
	blindHash, pubkeyX fr.Element) (*ConvertCircuit, error) {
	assignment, err := publicAssignment(z, proof, beta, lambda)
	if err != nil {
		return nil, err
	}

	assignment.Amount = amount
	assignment.AssetTypeScalar = assetTypeScalar
	assignment.BlindHash = frToBig(blindHash)
	assignment.PubKeyX = frToBig(pubkeyX)
	assignment.R = frToBig(state.R)

	if assignment.X, err = limbsOf(state.X); err != nil {
		return nil, err
	}
	if assignment.Y, err = limbsOf(state.Y); err != nil {
		return nil, err
	}
	if assignment.A, err = limbsOf(state.A); err != nil {
		return nil, err
	}
	if assignment.B, err = limbsOf(state.B); err != nil {
		return nil, err
	}
	return assignment, nil
}

func publicAssignment(z fr.Element, proof *dcp.ZKPartProof,
	beta, lambda *big.Int) (*ConvertCircuit, error) {
	betaLambda, s1PlusLambdaS2 := onlineScalars(proof, beta, lambda)

	assignment := &ConvertCircuit{
		HashComm:       frToBig(z),
		NonZKStateComm: frToBig(proof.NonZKStateCommitment),
	}
	var err error
	if assignment.Beta, err = limbsOf(beta); err != nil {
		return nil, err
	}
	if assignment.Lambda, err = limbsOf(lambda); err != nil {
		return nil, err
	}
	if assignment.BetaLambda, err = limbsOf(betaLambda); err != nil {
		return nil, err
	}
	if assignment.S1PlusLambdaS2, err = limbsOf(s1PlusLambdaS2); err != nil {
		return nil, err
	}
	return assignment, nil
}
