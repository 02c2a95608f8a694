package wallet

import (
	"fmt"
	"strings"

	"github.com/electrowallet/electrowallet/pkg/crypto"
)

// DefaultPath is the derivation path used for the single wallet account.
const DefaultPath = "m/84'/1'/0'/0/0"

// Derivation scheme names accepted by NewKeyDeriver.
const (
	SchemeFlat  = "flat"
	SchemeBIP32 = "bip32"
)

// KeyDeriver turns a seed and a derivation path into a keypair.
type KeyDeriver interface {
	DerivePrivateKey(seed []byte, path string) ([]byte, error)
	DerivePublicKey(privateKey []byte) ([]byte, error)
}

// NewKeyDeriver returns the deriver for a scheme name. An empty name
// selects the flat scheme.
func NewKeyDeriver(scheme string) (KeyDeriver, error) {
	switch strings.ToLower(scheme) {
	case "", SchemeFlat:
		return FlatDeriver{}, nil
	case SchemeBIP32:
		return HDDeriver{}, nil
	default:
		return nil, fmt.Errorf("unknown derivation scheme %q", scheme)
	}
}

// FlatDeriver is the simplified hash-based scheme:
//
//	private = SHA-256(seed || path)
//	public  = SHA-256(private)
//
// The public key is a fingerprint of the private key, not a curve point.
// Different paths yield unrelated keys.
type FlatDeriver struct{}

// DerivePrivateKey returns SHA-256(seed || path).
func (FlatDeriver) DerivePrivateKey(seed []byte, path string) ([]byte, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("%w: empty seed", ErrKeyDerivation)
	}
	h := crypto.HashConcat(seed, []byte(path))
	return h.Bytes(), nil
}

// DerivePublicKey returns SHA-256(privateKey).
func (FlatDeriver) DerivePublicKey(privateKey []byte) ([]byte, error) {
	if len(privateKey) == 0 {
		return nil, fmt.Errorf("%w: empty private key", ErrKeyDerivation)
	}
	h := crypto.Hash(privateKey)
	return h.Bytes(), nil
}

// KeyPair is a derived private/public key pair.
type KeyPair struct {
	PrivateKey []byte
	PublicKey  []byte
}

// DeriveKeyPair runs both derivation steps with d.
func DeriveKeyPair(d KeyDeriver, seed []byte, path string) (KeyPair, error) {
	priv, err := d.DerivePrivateKey(seed, path)
	if err != nil {
		return KeyPair{}, err
	}
	pub, err := d.DerivePublicKey(priv)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{PrivateKey: priv, PublicKey: pub}, nil
}
