package convert

import (
	"io"
	"math/big"
	"sync"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"github.com/takakv/bar2abar/algebra"
	"github.com/takakv/bar2abar/dcp"
	"github.com/takakv/bar2abar/testutils"
	"github.com/takakv/bar2abar/xfr"
)

var (
	paramsOnce   sync.Once
	cachedParams *ProverParams
	paramsErr    error
)

// The setup is expensive; share it across tests, it is read-only.
func testParams(t *testing.T) *ProverParams {
	t.Helper()
	paramsOnce.Do(func() {
		cachedParams, paramsErr = BarToAbarProverParams()
	})
	require.NoError(t, paramsErr)
	return cachedParams
}

type testKeys struct {
	barKeypair  *xfr.XfrKeyPair
	abarKeypair *xfr.AXfrKeyPair
	decKey      *xfr.XSecretKey
}

func newTestKeys(t *testing.T, rng io.Reader) *testKeys {
	t.Helper()
	barKeypair, err := xfr.GenerateXfrKeyPair(rng)
	require.NoError(t, err)
	abarKeypair, err := xfr.GenerateAXfrKeyPair(rng)
	require.NoError(t, err)
	decKey, err := xfr.NewXSecretKey(rng)
	require.NoError(t, err)
	return &testKeys{barKeypair: barKeypair, abarKeypair: abarKeypair, decKey: decKey}
}

func TestBarToAbar(t *testing.T) {
	rng := testutils.NewSeededReader([32]byte{})
	params := testParams(t)
	gens := algebra.DefaultRistrettoGens()
	keys := newTestKeys(t, rng)
	verifierParams := params.VerifierParams()

	assetType := xfr.AssetTypeFromIdenticalByte(1)

	// Confidential amount and asset type.
	obarConf, err := xfr.NewConfidentialRecord(rng, gens, 10, assetType, keys.barKeypair.PubKey)
	require.NoError(t, err)
	oabarConf, proofConf, err := BarToAbar(rng, params, obarConf,
		keys.abarKeypair.PubKey(), keys.decKey.PublicKey())
	require.NoError(t, err)
	abarConf := xfr.AnonRecordFromOpen(oabarConf)

	require.NoError(t, VerifyBarToAbar(verifierParams,
		&obarConf.BlindAssetRecord, abarConf, proofConf))

	// Amount and asset type in the clear.
	obarClear := xfr.NewNonConfidentialRecord(10, assetType, keys.barKeypair.PubKey)
	oabarClear, proofClear, err := BarToAbar(rng, params, obarClear,
		keys.abarKeypair.PubKey(), keys.decKey.PublicKey())
	require.NoError(t, err)
	abarClear := xfr.AnonRecordFromOpen(oabarClear)

	require.NoError(t, VerifyBarToAbar(verifierParams,
		&obarClear.BlindAssetRecord, abarClear, proofClear))

	// Corrupting the published record commitment must break verification.
	var corrupted xfr.AnonBlindAssetRecord
	var one fr.Element
	one.SetOne()
	corrupted.Commitment.Add(&abarConf.Commitment, &one)
	err = VerifyBarToAbar(verifierParams, &obarConf.BlindAssetRecord, &corrupted, proofConf)
	require.ErrorIs(t, err, dcp.ErrZKProofVerification)

	// Proofs are not interchangeable between records.
	err = VerifyBarToAbar(verifierParams, &obarConf.BlindAssetRecord, abarClear, proofConf)
	require.Error(t, err)
}

func TestBarToAbarBoundaryAmounts(t *testing.T) {
	rng := testutils.NewSeededReader([32]byte{})
	params := testParams(t)
	gens := algebra.DefaultRistrettoGens()
	keys := newTestKeys(t, rng)
	verifierParams := params.VerifierParams()

	for _, amount := range []uint64{0, ^uint64(0)} {
		obar, err := xfr.NewConfidentialRecord(rng, gens, amount,
			xfr.AssetTypeFromIdenticalByte(2), keys.barKeypair.PubKey)
		require.NoError(t, err)
		oabar, proof, err := BarToAbar(rng, params, obar,
			keys.abarKeypair.PubKey(), keys.decKey.PublicKey())
		require.NoError(t, err)
		require.NoError(t, VerifyBarToAbar(verifierParams,
			&obar.BlindAssetRecord, xfr.AnonRecordFromOpen(oabar), proof))
	}
}

func TestBarToAbarNote(t *testing.T) {
	rng := testutils.NewSeededReader([32]byte{})
	params := testParams(t)
	gens := algebra.DefaultRistrettoGens()
	keys := newTestKeys(t, rng)
	verifierParams := params.VerifierParams()

	amount := uint64(10)
	assetType := xfr.AssetTypeFromIdenticalByte(1)
	obar, err := xfr.NewConfidentialRecord(rng, gens, amount, assetType, keys.barKeypair.PubKey)
	require.NoError(t, err)

	note, err := GenBarToAbarNote(rng, params, obar, keys.barKeypair,
		keys.abarKeypair.PubKey(), keys.decKey.PublicKey())
	require.NoError(t, err)

	// The destination keypair opens the note output.
	opened, err := xfr.NewOpenAnonBlindAssetRecordBuilder().
		FromABAR(&note.Body.Output, note.Body.Memo, keys.abarKeypair, keys.decKey)
	require.NoError(t, err)
	oabar, err := opened.Build()
	require.NoError(t, err)
	require.Equal(t, amount, oabar.Amount)
	require.Equal(t, assetType, oabar.AssetType)

	require.NoError(t, VerifyBarToAbarNote(verifierParams, note, &keys.barKeypair.PubKey))

	// A signature over a different message must be rejected.
	badNote := *note
	badNote.Signature = keys.barKeypair.Sign([]byte("anymesage"))
	err = VerifyBarToAbarNote(verifierParams, &badNote, &keys.barKeypair.PubKey)
	require.ErrorIs(t, err, xfr.ErrSignature)
}

// Witness-level mirror of the full constraint system, without the PLONK
// backend in the loop.
func TestEqCommittedValsCS(t *testing.T) {
	rng := testutils.NewSeededReader([32]byte{})
	gens := algebra.DefaultRistrettoGens()
	order := gens.Group().N()

	amount := uint64(71)
	x := new(big.Int).SetUint64(amount)
	y := big.NewInt(52)

	gamma, err := algebra.RandomScalar(rng, order)
	require.NoError(t, err)
	delta, err := algebra.RandomScalar(rng, order)
	require.NoError(t, err)

	pointP := gens.Commit(x, gamma)
	pointQ := gens.Commit(y, delta)

	var blindHash, pubkeyX fr.Element
	blindInt, err := algebra.RandomScalar(rng, fr.Modulus())
	require.NoError(t, err)
	blindHash.SetBigInt(blindInt)
	pubkeyInt, err := algebra.RandomScalar(rng, fr.Modulus())
	require.NoError(t, err)
	pubkeyX.SetBigInt(pubkeyInt)

	var at xfr.AssetType
	at[0] = 52
	z := xfr.AnonCommitment(blindHash, amount, at, pubkeyX)

	proof, state, beta, lambda, err := dcp.Prove(rng, x, gamma, y, delta,
		gens, pointP, pointQ, z)
	require.NoError(t, err)

	assignment, err := proverAssignment(state, proof, beta, lambda, z,
		amount, y, blindHash, pubkeyX)
	require.NoError(t, err)

	field := ecc.BLS12_381.ScalarField()
	require.NoError(t, test.IsSolved(&ConvertCircuit{}, assignment, field))

	// Corrupting the first online input must break satisfiability.
	corrupted := *assignment
	corrupted.HashComm = new(big.Int).Add(frToBig(z), big.NewInt(1))
	require.Error(t, test.IsSolved(&ConvertCircuit{}, &corrupted, field))

	// So must corrupting the state commitment.
	corrupted = *assignment
	corrupted.NonZKStateComm = new(big.Int).Add(frToBig(proof.NonZKStateCommitment), big.NewInt(1))
	require.Error(t, test.IsSolved(&ConvertCircuit{}, &corrupted, field))
}

