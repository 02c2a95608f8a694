// derive_key.go prints the keys and address derived from a mnemonic file.
// Usage: go run scripts/derive_key.go <mnemonicfile> [path] [flat|bip32] [testnet|mainnet]
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/electrowallet/electrowallet/internal/wallet"
	"github.com/electrowallet/electrowallet/pkg/crypto"
	"github.com/electrowallet/electrowallet/pkg/types"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: derive_key <mnemonicfile> [path] [flat|bip32] [testnet|mainnet]")
		os.Exit(1)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fail(err)
	}
	path := wallet.DefaultPath
	if len(os.Args) > 2 {
		path = os.Args[2]
	}
	scheme := wallet.SchemeFlat
	if len(os.Args) > 3 {
		scheme = os.Args[3]
	}
	network := types.Testnet
	if len(os.Args) > 4 {
		if network, err = types.ParseNetwork(os.Args[4]); err != nil {
			fail(err)
		}
	}

	phrase := wallet.NormalizeMnemonic(string(data))
	if !wallet.ValidateMnemonic(phrase) {
		fail(wallet.ErrInvalidMnemonic)
	}
	deriver, err := wallet.NewKeyDeriver(scheme)
	if err != nil {
		fail(err)
	}
	seed, err := wallet.SeedFromMnemonic(phrase, "")
	if err != nil {
		fail(err)
	}
	keys, err := wallet.DeriveKeyPair(deriver, seed, path)
	if err != nil {
		fail(err)
	}

	fmt.Printf("bip39=%t\n", wallet.CheckMnemonic(phrase))
	fmt.Printf("path=%s\n", path)
	fmt.Printf("pubkey=%s\n", hex.EncodeToString(keys.PublicKey))
	fmt.Printf("address=%s\n", crypto.AddressFromPubKey(keys.PublicKey, network))
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
