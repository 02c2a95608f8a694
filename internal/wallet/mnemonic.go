// Package wallet implements the key pipeline: entropy, mnemonic, seed, keys
// and the secret storage that holds them.
package wallet

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// Supported mnemonic strengths in bits.
const (
	Strength128 = 128 // 12 words
	Strength256 = 256 // 24 words
)

// DefaultStrength is used when no strength is configured.
const DefaultStrength = Strength128

// WordCount returns the number of words a mnemonic of the given strength has.
// Returns 0 for unsupported strengths.
func WordCount(strengthBits int) int {
	switch strengthBits {
	case Strength128, Strength256:
		// (ENT + ENT/32) / 11
		return (strengthBits + strengthBits/32) / 11
	default:
		return 0
	}
}

// GenerateMnemonic creates a new BIP-39 English mnemonic from src.
// strengthBits must be 128 (12 words) or 256 (24 words).
func GenerateMnemonic(src EntropySource, strengthBits int) (string, error) {
	want := WordCount(strengthBits)
	if want == 0 {
		return "", fmt.Errorf("unsupported mnemonic strength %d bits", strengthBits)
	}

	entropy, err := readEntropy(src, strengthBits/8)
	if err != nil {
		return "", err
	}
	defer zero(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	if got := len(strings.Fields(mnemonic)); got != want {
		return "", fmt.Errorf("generate mnemonic: got %d words, want %d", got, want)
	}
	return mnemonic, nil
}

// ValidateMnemonic reports whether phrase has exactly 12 or 24
// whitespace-separated words. Checksum and dictionary membership are not
// checked; use CheckMnemonic for that.
func ValidateMnemonic(phrase string) bool {
	n := len(strings.Fields(phrase))
	return n == WordCount(Strength128) || n == WordCount(Strength256)
}

// CheckMnemonic performs full BIP-39 validation
// (word count, dictionary words, checksum).
func CheckMnemonic(phrase string) bool {
	return bip39.IsMnemonicValid(NormalizeMnemonic(phrase))
}

// NormalizeMnemonic collapses runs of whitespace to single spaces.
func NormalizeMnemonic(phrase string) string {
	return strings.Join(strings.Fields(phrase), " ")
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
