package xfr

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/takakv/bar2abar/algebra"
	"github.com/takakv/bar2abar/rescue"
)

// ErrDeserialization is returned when record bytes cannot be reconstructed.
var ErrDeserialization = errors.New("xfr: deserialization failed")

// ErrCommitmentMismatch is returned when a memo opening does not match the
// published record commitment.
var ErrCommitmentMismatch = errors.New("xfr: record commitment mismatch")

// TwoPow32 splits 64-bit amounts into two 32-bit committed halves.
const TwoPow32 = uint64(1) << 32

// AssetTypeLength is the asset code width. 30 bytes keep codes below
// 2^240, the bound the conversion circuit enforces.
const AssetTypeLength = 30

// AssetType is an asset code.
type AssetType [AssetTypeLength]byte

// AssetTypeFromIdenticalByte fills an asset code with a single byte value.
func AssetTypeFromIdenticalByte(b byte) AssetType {
	var at AssetType
	for i := range at {
		at[i] = b
	}
	return at
}

// AsScalar interprets the code as a little-endian integer.
func (at AssetType) AsScalar() *big.Int {
	be := make([]byte, AssetTypeLength)
	for i, v := range at {
		be[AssetTypeLength-1-i] = v
	}
	return new(big.Int).SetBytes(be)
}

// MarshalText encodes the code as hex.
func (at AssetType) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(at[:])), nil
}

// UnmarshalText decodes a hex asset code.
func (at *AssetType) UnmarshalText(b []byte) error {
	raw, err := hex.DecodeString(string(b))
	if err != nil || len(raw) != AssetTypeLength {
		return ErrDeserialization
	}
	copy(at[:], raw)
	return nil
}

// XfrAmount is either a pair of Pedersen commitments to the 2^32-split
// amount halves, or the amount in the clear.
type XfrAmount struct {
	Confidential   bool   `json:"confidential"`
	CommitmentLow  []byte `json:"commitment_low,omitempty"`
	CommitmentHigh []byte `json:"commitment_high,omitempty"`
	Amount         uint64 `json:"amount,omitempty"`
}

// XfrAssetType is either a Pedersen commitment to the asset code scalar, or
// the code in the clear.
type XfrAssetType struct {
	Confidential bool      `json:"confidential"`
	Commitment   []byte    `json:"commitment,omitempty"`
	AssetType    AssetType `json:"asset_type,omitempty"`
}

// BlindAssetRecord is the transparent-but-hiding source record.
type BlindAssetRecord struct {
	Amount    XfrAmount    `json:"amount"`
	AssetType XfrAssetType `json:"asset_type"`
	PubKey    XfrPublicKey `json:"public_key"`
}

// OpenAssetRecord is a blind asset record together with its openings.
type OpenAssetRecord struct {
	BlindAssetRecord BlindAssetRecord
	Amount           uint64
	AssetType        AssetType
	AmountBlinds     [2]*big.Int
	TypeBlind        *big.Int
}

// AnonBlindAssetRecord is the anonymous record: a single Rescue commitment.
type AnonBlindAssetRecord struct {
	Commitment fr.Element
}

// OpenAnonBlindAssetRecord is an anonymous record opening held by its owner.
type OpenAnonBlindAssetRecord struct {
	Amount    uint64
	AssetType AssetType
	Blind     fr.Element
	PubKey    AXfrPublicKey
	OwnerMemo *OwnerMemo
}

// AnonCommitment computes the record commitment
// Rescue(Rescue(blind, amount, asset_type, 0)[0], pubkey_x, 0, 0)[0].
func AnonCommitment(blind fr.Element, amount uint64, assetType AssetType,
	pubkeyX fr.Element) fr.Element {
	instance := rescue.NewInstance()

	var first [rescue.StateSize]fr.Element
	first[0] = blind
	first[1].SetUint64(amount)
	first[2].SetBigInt(assetType.AsScalar())
	cur := instance.Rescue(first)[0]

	var second [rescue.StateSize]fr.Element
	second[0] = cur
	second[1] = pubkeyX
	return instance.Rescue(second)[0]
}

// AnonRecordFromOpen publishes the anonymous record of an opening.
func AnonRecordFromOpen(oabar *OpenAnonBlindAssetRecord) *AnonBlindAssetRecord {
	return &AnonBlindAssetRecord{
		Commitment: AnonCommitment(oabar.Blind, oabar.Amount, oabar.AssetType,
			oabar.PubKey.PubKeyX()),
	}
}

// MarshalJSON encodes the commitment bytes.
func (r *AnonBlindAssetRecord) MarshalJSON() ([]byte, error) {
	b := r.Commitment.Bytes()
	return []byte(`"` + hex.EncodeToString(b[:]) + `"`), nil
}

// UnmarshalJSON decodes the commitment bytes.
func (r *AnonBlindAssetRecord) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return ErrDeserialization
	}
	raw, err := hex.DecodeString(string(b[1 : len(b)-1]))
	if err != nil || len(raw) != fr.Bytes {
		return ErrDeserialization
	}
	r.Commitment.SetBytes(raw)
	return nil
}

// OpenAnonBlindAssetRecordBuilder assembles anonymous record openings.
type OpenAnonBlindAssetRecordBuilder struct {
	oabar OpenAnonBlindAssetRecord

	finalized bool
}

// NewOpenAnonBlindAssetRecordBuilder starts an empty builder.
func NewOpenAnonBlindAssetRecordBuilder() *OpenAnonBlindAssetRecordBuilder {
	return &OpenAnonBlindAssetRecordBuilder{}
}

// Amount sets the record amount.
func (b *OpenAnonBlindAssetRecordBuilder) Amount(v uint64) *OpenAnonBlindAssetRecordBuilder {
	b.oabar.Amount = v
	return b
}

// AssetType sets the record asset code.
func (b *OpenAnonBlindAssetRecordBuilder) AssetType(at AssetType) *OpenAnonBlindAssetRecordBuilder {
	b.oabar.AssetType = at
	return b
}

// PubKey sets the destination key.
func (b *OpenAnonBlindAssetRecordBuilder) PubKey(pk *AXfrPublicKey) *OpenAnonBlindAssetRecordBuilder {
	b.oabar.PubKey = *pk
	return b
}

// Finalize samples the commitment blind and seals the owner memo.
func (b *OpenAnonBlindAssetRecordBuilder) Finalize(rd io.Reader, encKey *XPublicKey) (*OpenAnonBlindAssetRecordBuilder, error) {
	blindInt, err := algebra.RandomScalar(rd, fr.Modulus())
	if err != nil {
		return nil, err
	}
	b.oabar.Blind.SetBigInt(blindInt)

	memo, err := NewOwnerMemo(rd, encKey, b.oabar.Amount, b.oabar.AssetType, b.oabar.Blind)
	if err != nil {
		return nil, err
	}
	b.oabar.OwnerMemo = memo
	b.finalized = true
	return b, nil
}

// FromABAR opens a published record with the owner's keys.
func (b *OpenAnonBlindAssetRecordBuilder) FromABAR(abar *AnonBlindAssetRecord,
	memo OwnerMemo, keypair *AXfrKeyPair, decKey *XSecretKey) (*OpenAnonBlindAssetRecordBuilder, error) {
	amount, at, blind, err := memo.Open(decKey)
	if err != nil {
		return nil, err
	}
	b.oabar.Amount = amount
	b.oabar.AssetType = at
	b.oabar.Blind = blind
	b.oabar.PubKey = keypair.pubKey
	b.oabar.OwnerMemo = &memo
	b.finalized = true

	expected := AnonCommitment(blind, amount, at, keypair.pubKey.PubKeyX())
	if !expected.Equal(&abar.Commitment) {
		return nil, ErrCommitmentMismatch
	}
	return b, nil
}

// Build returns the opening.
func (b *OpenAnonBlindAssetRecordBuilder) Build() (*OpenAnonBlindAssetRecord, error) {
	if !b.finalized {
		return nil, fmt.Errorf("xfr: builder not finalized")
	}
	oabar := b.oabar
	return &oabar, nil
}

// U64ToU32Pair splits an amount into its low and high 32-bit halves.
func U64ToU32Pair(v uint64) (uint64, uint64) {
	return v & (TwoPow32 - 1), v >> 32
}

// NewConfidentialRecord commits to amount and asset type under fresh blinds
// and returns the opened record.
func NewConfidentialRecord(rd io.Reader, gens *algebra.PedersenGens,
	amount uint64, assetType AssetType, pubkey XfrPublicKey) (*OpenAssetRecord, error) {
	order := gens.Group().N()
	blindLo, err := algebra.RandomScalar(rd, order)
	if err != nil {
		return nil, err
	}
	blindHi, err := algebra.RandomScalar(rd, order)
	if err != nil {
		return nil, err
	}
	typeBlind, err := algebra.RandomScalar(rd, order)
	if err != nil {
		return nil, err
	}

	lo, hi := U64ToU32Pair(amount)
	comLow := gens.Commit(new(big.Int).SetUint64(lo), blindLo)
	comHigh := gens.Commit(new(big.Int).SetUint64(hi), blindHi)
	comType := gens.Commit(assetType.AsScalar(), typeBlind)

	return &OpenAssetRecord{
		BlindAssetRecord: BlindAssetRecord{
			Amount: XfrAmount{
				Confidential:   true,
				CommitmentLow:  comLow.Bytes(),
				CommitmentHigh: comHigh.Bytes(),
			},
			AssetType: XfrAssetType{
				Confidential: true,
				Commitment:   comType.Bytes(),
			},
			PubKey: pubkey,
		},
		Amount:       amount,
		AssetType:    assetType,
		AmountBlinds: [2]*big.Int{blindLo, blindHi},
		TypeBlind:    typeBlind,
	}, nil
}

// NewNonConfidentialRecord returns an opened record with the amount and
// asset type in the clear and zero blinds.
func NewNonConfidentialRecord(amount uint64, assetType AssetType,
	pubkey XfrPublicKey) *OpenAssetRecord {
	return &OpenAssetRecord{
		BlindAssetRecord: BlindAssetRecord{
			Amount:    XfrAmount{Amount: amount},
			AssetType: XfrAssetType{AssetType: assetType},
			PubKey:    pubkey,
		},
		Amount:       amount,
		AssetType:    assetType,
		AmountBlinds: [2]*big.Int{big.NewInt(0), big.NewInt(0)},
		TypeBlind:    big.NewInt(0),
	}
}
