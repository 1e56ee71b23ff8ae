package dcp

import (
	"encoding/json"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/takakv/bar2abar/algebra"
)

type zkPartProofJSON struct {
	PointR               []byte `json:"point_r"`
	PointS               []byte `json:"point_s"`
	S1                   []byte `json:"s_1"`
	S2                   []byte `json:"s_2"`
	S3                   []byte `json:"s_3"`
	S4                   []byte `json:"s_4"`
	NonZKStateCommitment []byte `json:"non_zk_part_state_commitment"`
}

// MarshalJSON encodes the proof with compressed points and 32-byte
// little-endian scalars.
func (p *ZKPartProof) MarshalJSON() ([]byte, error) {
	comm := p.NonZKStateCommitment.Bytes()
	tmp := zkPartProofJSON{
		PointR:               p.PointR.Bytes(),
		PointS:               p.PointS.Bytes(),
		S1:                   algebra.ScalarToBytesLE(p.S1),
		S2:                   algebra.ScalarToBytesLE(p.S2),
		S3:                   algebra.ScalarToBytesLE(p.S3),
		S4:                   algebra.ScalarToBytesLE(p.S4),
		NonZKStateCommitment: comm[:],
	}
	return json.Marshal(&tmp)
}

// ProofUnmarshalJSON recovers a proof whose points live in grp.
func ProofUnmarshalJSON(b []byte, grp algebra.Group) (*ZKPartProof, error) {
	var tmp zkPartProofJSON
	if err := json.Unmarshal(b, &tmp); err != nil {
		return nil, err
	}

	proof := &ZKPartProof{
		PointR: grp.Element(),
		PointS: grp.Element(),
	}
	if err := proof.PointR.Decompress(tmp.PointR); err != nil {
		return nil, fmt.Errorf("dcp: point R: %w", err)
	}
	if err := proof.PointS.Decompress(tmp.PointS); err != nil {
		return nil, fmt.Errorf("dcp: point S: %w", err)
	}

	order := grp.N()
	var err error
	if proof.S1, err = algebra.ScalarFromBytesLE(tmp.S1, order); err != nil {
		return nil, err
	}
	if proof.S2, err = algebra.ScalarFromBytesLE(tmp.S2, order); err != nil {
		return nil, err
	}
	if proof.S3, err = algebra.ScalarFromBytesLE(tmp.S3, order); err != nil {
		return nil, err
	}
	if proof.S4, err = algebra.ScalarFromBytesLE(tmp.S4, order); err != nil {
		return nil, err
	}
	if len(tmp.NonZKStateCommitment) != fr.Bytes {
		return nil, fmt.Errorf("dcp: bad state commitment length")
	}
	proof.NonZKStateCommitment.SetBytes(tmp.NonZKStateCommitment)
	return proof, nil
}

// UnmarshalJSON always fails: decoding needs a group, use
// ProofUnmarshalJSON instead.
func (p *ZKPartProof) UnmarshalJSON([]byte) error {
	return fmt.Errorf("dcp: use ProofUnmarshalJSON")
}
