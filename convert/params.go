package convert

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/test/unsafekzg"
)

// ProverParams carries the compiled conversion circuit and its proving key.
// They are large and read-only: load once per process and share across
// proofs.
type ProverParams struct {
	CS constraint.ConstraintSystem
	PK plonk.ProvingKey
	VK plonk.VerifyingKey
}

// VerifierParams is the verifying key of the conversion circuit.
type VerifierParams struct {
	VK plonk.VerifyingKey
}

// BarToAbarProverParams compiles the conversion circuit and runs the PLONK
// setup over a locally generated SRS. The SRS is not the product of a
// ceremony; swap it for ceremony parameters before any production use.
func BarToAbarProverParams() (*ProverParams, error) {
	ccs, err := frontend.Compile(ecc.BLS12_381.ScalarField(), scs.NewBuilder, &ConvertCircuit{})
	if err != nil {
		return nil, fmt.Errorf("convert: circuit compilation: %w", err)
	}
	srs, srsLagrange, err := unsafekzg.NewSRS(ccs)
	if err != nil {
		return nil, fmt.Errorf("convert: srs generation: %w", err)
	}
	pk, vk, err := plonk.Setup(ccs, srs, srsLagrange)
	if err != nil {
		return nil, fmt.Errorf("convert: plonk setup: %w", err)
	}
	return &ProverParams{CS: ccs, PK: pk, VK: vk}, nil
}

// VerifierParams derives the verifier half.
func (p *ProverParams) VerifierParams() *VerifierParams {
	return &VerifierParams{VK: p.VK}
}
