// Package xfr holds the transfer-layer records surrounding the conversion
// proof: blind asset records on the source curve, anonymous records on the
// circuit field, and the key material tying them to owners.
package xfr

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cloudflare/circl/hpke"
	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/twistededwards"

	"github.com/takakv/bar2abar/algebra"
)

// ErrSignature is returned when a note signature does not verify.
var ErrSignature = errors.New("xfr: signature verification failed")

// XfrSignature is an ed25519 signature over a serialized note body.
type XfrSignature []byte

// XfrPublicKey identifies the owner of a blind asset record.
type XfrPublicKey struct {
	Key ed25519.PublicKey `json:"key"`
}

// Verify checks sig over msg.
func (pk *XfrPublicKey) Verify(msg []byte, sig XfrSignature) error {
	if !ed25519.Verify(pk.Key, msg, sig) {
		return ErrSignature
	}
	return nil
}

// XfrKeyPair signs conversion notes on behalf of a record owner.
type XfrKeyPair struct {
	PubKey XfrPublicKey
	secKey ed25519.PrivateKey
}

// GenerateXfrKeyPair samples a signing key pair from rd.
func GenerateXfrKeyPair(rd io.Reader) (*XfrKeyPair, error) {
	pub, sec, err := ed25519.GenerateKey(rd)
	if err != nil {
		return nil, fmt.Errorf("xfr: keygen: %w", err)
	}
	return &XfrKeyPair{PubKey: XfrPublicKey{Key: pub}, secKey: sec}, nil
}

// Sign signs msg.
func (kp *XfrKeyPair) Sign(msg []byte) XfrSignature {
	return ed25519.Sign(kp.secKey, msg)
}

// AXfrPublicKey is the destination key of an anonymous record: a point on
// the Jubjub curve embedded in BLS12-381.
type AXfrPublicKey struct {
	point twistededwards.PointAffine
}

// PubKeyX returns the affine x-coordinate, the value absorbed by the
// record's Rescue commitment.
func (pk *AXfrPublicKey) PubKeyX() fr.Element {
	return pk.point.X
}

// Bytes returns the canonical point encoding.
func (pk *AXfrPublicKey) Bytes() []byte {
	b := pk.point.Bytes()
	return b[:]
}

// SetBytes recovers the key from its encoding.
func (pk *AXfrPublicKey) SetBytes(b []byte) error {
	if _, err := pk.point.SetBytes(b); err != nil {
		return algebra.ErrDecompressElement
	}
	return nil
}

// AXfrKeyPair owns anonymous records.
type AXfrKeyPair struct {
	pubKey AXfrPublicKey
	secret *big.Int
}

// GenerateAXfrKeyPair samples a Jubjub key pair from rd.
func GenerateAXfrKeyPair(rd io.Reader) (*AXfrKeyPair, error) {
	params := twistededwards.GetEdwardsCurve()
	s, err := algebra.RandomScalar(rd, &params.Order)
	if err != nil {
		return nil, err
	}
	kp := &AXfrKeyPair{secret: s}
	kp.pubKey.point.ScalarMultiplication(&params.Base, s)
	return kp, nil
}

// PubKey returns the public half.
func (kp *AXfrKeyPair) PubKey() *AXfrPublicKey {
	return &kp.pubKey
}

// HPKE suite for owner memos: X25519 KEM with ChaCha20-Poly1305.
var (
	memoKEM  = hpke.KEM_X25519_HKDF_SHA256
	memoKDF  = hpke.KDF_HKDF_SHA256
	memoAEAD = hpke.AEAD_ChaCha20Poly1305
)

// XPublicKey encrypts owner memos to the receiver.
type XPublicKey struct {
	key kem.PublicKey
}

// XSecretKey decrypts owner memos.
type XSecretKey struct {
	key kem.PrivateKey
}

// NewXSecretKey derives a memo key pair from rd.
func NewXSecretKey(rd io.Reader) (*XSecretKey, error) {
	scheme := memoKEM.Scheme()
	seed := make([]byte, scheme.SeedSize())
	if _, err := io.ReadFull(rd, seed); err != nil {
		return nil, fmt.Errorf("xfr: memo keygen: %w", err)
	}
	_, sk := scheme.DeriveKeyPair(seed)
	return &XSecretKey{key: sk}, nil
}

// PublicKey returns the encryption half.
func (sk *XSecretKey) PublicKey() *XPublicKey {
	return &XPublicKey{key: sk.key.Public()}
}
