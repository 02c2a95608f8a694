// Package crypto provides the hashing and key helpers used by the wallet
// pipeline.
package crypto

import (
	"crypto/sha256"

	"github.com/electrowallet/electrowallet/pkg/types"
)

// Hash computes a SHA-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return sha256.Sum256(data)
}

// DoubleHash computes Hash(Hash(data)).
func DoubleHash(data []byte) types.Hash {
	first := Hash(data)
	return Hash(first[:])
}

// HashConcat hashes the concatenation of a and b without aliasing either.
func HashConcat(a, b []byte) types.Hash {
	buf := make([]byte, 0, len(a)+len(b))
	buf = append(buf, a...)
	buf = append(buf, b...)
	return Hash(buf)
}

// AddressDigestFromPubKey returns the first 20 bytes of SHA-256(pubKey).
// This is a truncated SHA-256, not a RIPEMD-160 hash-160.
func AddressDigestFromPubKey(pubKey []byte) types.AddressDigest {
	h := Hash(pubKey)
	var d types.AddressDigest
	copy(d[:], h[:types.AddressSize])
	return d
}

// AddressFromPubKey derives the Base58Check address for pubKey on network.
func AddressFromPubKey(pubKey []byte, network types.Network) string {
	return types.EncodeAddress(AddressDigestFromPubKey(pubKey), network)
}
