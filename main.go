package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/takakv/bar2abar/algebra"
	"github.com/takakv/bar2abar/convert"
	"github.com/takakv/bar2abar/xfr"
)

func main() {
	fmt.Println("Setting up conversion proof parameters")
	params, err := convert.BarToAbarProverParams()
	if err != nil {
		fmt.Println("setup failed:", err)
		os.Exit(1)
	}

	barKeypair, err := xfr.GenerateXfrKeyPair(rand.Reader)
	if err != nil {
		fmt.Println("keygen failed:", err)
		os.Exit(1)
	}
	abarKeypair, err := xfr.GenerateAXfrKeyPair(rand.Reader)
	if err != nil {
		fmt.Println("keygen failed:", err)
		os.Exit(1)
	}
	decKey, err := xfr.NewXSecretKey(rand.Reader)
	if err != nil {
		fmt.Println("keygen failed:", err)
		os.Exit(1)
	}

	gens := algebra.DefaultRistrettoGens()
	record, err := xfr.NewConfidentialRecord(rand.Reader, gens, 10,
		xfr.AssetTypeFromIdenticalByte(1), barKeypair.PubKey)
	if err != nil {
		fmt.Println("record construction failed:", err)
		os.Exit(1)
	}

	fmt.Println("Generating conversion note")
	note, err := convert.GenBarToAbarNote(rand.Reader, params, record,
		barKeypair, abarKeypair.PubKey(), decKey.PublicKey())
	if err != nil {
		fmt.Println("proving failed:", err)
		os.Exit(1)
	}

	fmt.Println("Verifying conversion note")
	err = convert.VerifyBarToAbarNote(params.VerifierParams(), note, &barKeypair.PubKey)
	fmt.Println("Note is correctly formed:", err == nil)
}
