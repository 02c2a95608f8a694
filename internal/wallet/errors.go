package wallet

import "errors"

var (
	// ErrRandomSource is returned when the entropy source cannot supply bytes.
	ErrRandomSource = errors.New("random source failure")

	// ErrKeyDerivation is returned when a seed or key cannot be derived.
	ErrKeyDerivation = errors.New("key derivation failed")

	// ErrInvalidMnemonic is returned when a recovery phrase is rejected.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")

	// ErrSecretNotFound is returned by a SecretStore for an unknown address.
	ErrSecretNotFound = errors.New("secret not found")
)
