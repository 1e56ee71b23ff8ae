package convert

import (
	"bytes"
	"encoding/json"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/plonk"

	"github.com/takakv/bar2abar/algebra"
	"github.com/takakv/bar2abar/dcp"
)

type convertProofJSON struct {
	CommitmentEqProof          json.RawMessage `json:"commitment_eq_proof"`
	PcRescueCommitmentsEqProof []byte          `json:"pc_rescue_commitments_eq_proof"`
}

// MarshalJSON encodes the sigma part as JSON and the PLONK part as its
// binary blob.
func (p *ConvertBarAbarProof) MarshalJSON() ([]byte, error) {
	sigma, err := json.Marshal(p.CommitmentEqProof)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := p.PcRescueCommitmentsEqProof.WriteTo(&buf); err != nil {
		return nil, err
	}
	return json.Marshal(&convertProofJSON{
		CommitmentEqProof:          sigma,
		PcRescueCommitmentsEqProof: buf.Bytes(),
	})
}

// UnmarshalJSON decodes a conversion proof.
func (p *ConvertBarAbarProof) UnmarshalJSON(b []byte) error {
	var tmp convertProofJSON
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	sigma, err := dcp.ProofUnmarshalJSON(tmp.CommitmentEqProof, algebra.Ristretto255())
	if err != nil {
		return err
	}
	proof := plonk.NewProof(ecc.BLS12_381)
	if _, err := proof.ReadFrom(bytes.NewReader(tmp.PcRescueCommitmentsEqProof)); err != nil {
		return err
	}
	p.CommitmentEqProof = sigma
	p.PcRescueCommitmentsEqProof = proof
	return nil
}

// marshalCanonical is the byte encoding notes are signed over.
func (b *BarToAbarBody) marshalCanonical() ([]byte, error) {
	return json.Marshal(b)
}
