// Package types defines core primitive types for ElectroWallet.
package types

import (
	"encoding/hex"
	"fmt"
	"io"
)

// HashSize is the length of a hash in bytes.
const HashSize = 32

// TxIDLength is the length of a transaction id in hex characters.
const TxIDLength = HashSize * 2

// Hash represents a 256-bit hash value.
type Hash [HashSize]byte

// IsZero returns true if the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String returns the hex-encoded hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// HexToHash converts a hex string to a Hash.
// Returns an error if the string is not exactly 64 hex characters.
func HexToHash(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(b))
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// NewTxID reads 32 bytes from r and returns them as a 64-character
// lowercase hex transaction id.
func NewTxID(r io.Reader) (string, error) {
	var h Hash
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return "", fmt.Errorf("read tx id bytes: %w", err)
	}
	return h.String(), nil
}

// IsTxID reports whether s is a 64-character hex transaction id.
func IsTxID(s string) bool {
	if len(s) != TxIDLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
