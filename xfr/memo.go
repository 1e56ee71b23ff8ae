package xfr

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cloudflare/circl/hpke"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

var memoInfo = []byte("bar2abar owner memo")

// OwnerMemo carries the record opening to its owner: an HPKE encapsulation
// plus the sealed (amount, asset type, blind) triple.
type OwnerMemo struct {
	Enc        []byte `json:"enc"`
	Ciphertext []byte `json:"ciphertext"`
}

const memoPlaintextLen = 8 + AssetTypeLength + fr.Bytes

// NewOwnerMemo seals the opening of an anonymous record to encKey.
func NewOwnerMemo(rd io.Reader, encKey *XPublicKey, amount uint64,
	assetType AssetType, blind fr.Element) (*OwnerMemo, error) {
	suite := hpke.NewSuite(memoKEM, memoKDF, memoAEAD)
	sender, err := suite.NewSender(encKey.key, memoInfo)
	if err != nil {
		return nil, fmt.Errorf("xfr: memo sender: %w", err)
	}
	enc, sealer, err := sender.Setup(rd)
	if err != nil {
		return nil, fmt.Errorf("xfr: memo setup: %w", err)
	}

	pt := make([]byte, 0, memoPlaintextLen)
	pt = binary.LittleEndian.AppendUint64(pt, amount)
	pt = append(pt, assetType[:]...)
	blindBytes := blind.Bytes()
	pt = append(pt, blindBytes[:]...)

	ct, err := sealer.Seal(pt, nil)
	if err != nil {
		return nil, fmt.Errorf("xfr: memo seal: %w", err)
	}
	return &OwnerMemo{Enc: enc, Ciphertext: ct}, nil
}

// Open decrypts the memo and returns the record opening.
func (m *OwnerMemo) Open(decKey *XSecretKey) (uint64, AssetType, fr.Element, error) {
	var at AssetType
	var blind fr.Element

	suite := hpke.NewSuite(memoKEM, memoKDF, memoAEAD)
	receiver, err := suite.NewReceiver(decKey.key, memoInfo)
	if err != nil {
		return 0, at, blind, fmt.Errorf("xfr: memo receiver: %w", err)
	}
	opener, err := receiver.Setup(m.Enc)
	if err != nil {
		return 0, at, blind, fmt.Errorf("xfr: memo setup: %w", err)
	}
	pt, err := opener.Open(m.Ciphertext, nil)
	if err != nil {
		return 0, at, blind, fmt.Errorf("xfr: memo open: %w", err)
	}
	if len(pt) != memoPlaintextLen {
		return 0, at, blind, ErrDeserialization
	}

	amount := binary.LittleEndian.Uint64(pt[:8])
	copy(at[:], pt[8:8+AssetTypeLength])
	blind.SetBytes(pt[8+AssetTypeLength:])
	return amount, at, blind, nil
}
