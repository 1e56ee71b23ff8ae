package convert

import (
	"fmt"
	"io"

	"github.com/takakv/bar2abar/xfr"
)

// BarToAbarBody is the unsigned content of a conversion note.
type BarToAbarBody struct {
	Input  xfr.BlindAssetRecord     `json:"input"`
	Output xfr.AnonBlindAssetRecord `json:"output"`
	Proof  *ConvertBarAbarProof     `json:"proof"`
	Memo   xfr.OwnerMemo            `json:"memo"`
}

// BarToAbarNote is a conversion note: body plus the source owner's
// signature over the serialized body.
type BarToAbarNote struct {
	Body      BarToAbarBody    `json:"body"`
	Signature xfr.XfrSignature `json:"signature"`
}

// GenBarToAbarBody builds the conversion body for an opened record.
func GenBarToAbarBody(rd io.Reader, params *ProverParams,
	record *xfr.OpenAssetRecord, abarPubkey *xfr.AXfrPublicKey,
	encKey *xfr.XPublicKey) (*BarToAbarBody, error) {
	oabar, proof, err := BarToAbar(rd, params, record, abarPubkey, encKey)
	if err != nil {
		return nil, err
	}
	return &BarToAbarBody{
		Input:  record.BlindAssetRecord,
		Output: *xfr.AnonRecordFromOpen(oabar),
		Proof:  proof,
		Memo:   *oabar.OwnerMemo,
	}, nil
}

// GenBarToAbarNote builds and signs a conversion note with the source
// owner's key.
func GenBarToAbarNote(rd io.Reader, params *ProverParams,
	record *xfr.OpenAssetRecord, barKeypair *xfr.XfrKeyPair,
	abarPubkey *xfr.AXfrPublicKey, encKey *xfr.XPublicKey) (*BarToAbarNote, error) {
	body, err := GenBarToAbarBody(rd, params, record, abarPubkey, encKey)
	if err != nil {
		return nil, err
	}
	msg, err := body.signMessage()
	if err != nil {
		return nil, err
	}
	return &BarToAbarNote{
		Body:      *body,
		Signature: barKeypair.Sign(msg),
	}, nil
}

// VerifyBarToAbarBody verifies the conversion proof of a body. It does not
// check that the input owner signed anything.
func VerifyBarToAbarBody(params *VerifierParams, body *BarToAbarBody) error {
	return VerifyBarToAbar(params, &body.Input, &body.Output, body.Proof)
}

// VerifyBarToAbarNote verifies the conversion proof and the input owner's
// signature over the body.
func VerifyBarToAbarNote(params *VerifierParams, note *BarToAbarNote,
	barPubkey *xfr.XfrPublicKey) error {
	if err := VerifyBarToAbarBody(params, &note.Body); err != nil {
		return err
	}
	msg, err := note.Body.signMessage()
	if err != nil {
		return err
	}
	return barPubkey.Verify(msg, note.Signature)
}

func (b *BarToAbarBody) signMessage() ([]byte, error) {
	msg, err := b.marshalCanonical()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return msg, nil
}
