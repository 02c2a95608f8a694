package wallet

import (
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// SeedSize is the length of a derived seed in bytes (512 bits).
const SeedSize = 64

// SeedFromMnemonic derives a 512-bit seed from a mnemonic and optional passphrase
// using PBKDF2-HMAC-SHA512 (salt "mnemonic"+passphrase, 2048 rounds) as
// specified in BIP-39. The phrase is not validated.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	seed := bip39.NewSeed(NormalizeMnemonic(mnemonic), passphrase)
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: seed is %d bytes, want %d", ErrKeyDerivation, len(seed), SeedSize)
	}
	return seed, nil
}
