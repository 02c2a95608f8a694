package types

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
)

// AddressSize is the length of the address digest in bytes.
const AddressSize = 20

// Network selects the address version byte.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)

// ParseNetwork converts a config string into a Network.
func ParseNetwork(s string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mainnet", "main":
		return Mainnet, nil
	case "testnet", "test", "":
		return Testnet, nil
	default:
		return "", fmt.Errorf("unknown network %q", s)
	}
}

// Version returns the pay-to-pubkey-hash version byte for the network:
// 0x00 on mainnet and 0x6F on testnet.
func (n Network) Version() byte {
	if n == Mainnet {
		return chaincfg.MainNetParams.PubKeyHashAddrID
	}
	return chaincfg.TestNet3Params.PubKeyHashAddrID
}

// NetworkForVersion maps a version byte back to its network.
func NetworkForVersion(v byte) (Network, bool) {
	switch v {
	case Mainnet.Version():
		return Mainnet, true
	case Testnet.Version():
		return Testnet, true
	default:
		return "", false
	}
}

// AddressDigest is the 20-byte body of an address.
type AddressDigest [AddressSize]byte

// EncodeAddress wraps a digest as version ‖ digest ‖ checksum and Base58
// encodes it. The checksum is the first four bytes of SHA256(SHA256(version ‖ digest)).
// Leading zero bytes become leading '1' characters.
func EncodeAddress(digest AddressDigest, network Network) string {
	return base58.CheckEncode(digest[:], network.Version())
}

// DecodeAddress reverses EncodeAddress and verifies the checksum.
func DecodeAddress(s string) (AddressDigest, Network, error) {
	if s == "" {
		return AddressDigest{}, "", fmt.Errorf("empty address")
	}
	payload, version, err := base58.CheckDecode(s)
	if err != nil {
		return AddressDigest{}, "", fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(payload) != AddressSize {
		return AddressDigest{}, "", fmt.Errorf("address must carry %d bytes, got %d", AddressSize, len(payload))
	}
	network, ok := NetworkForVersion(version)
	if !ok {
		return AddressDigest{}, "", fmt.Errorf("unknown address version 0x%02x", version)
	}
	var d AddressDigest
	copy(d[:], payload)
	return d, network, nil
}

// ValidateAddress checks that s decodes and belongs to the given network.
func ValidateAddress(s string, network Network) error {
	_, n, err := DecodeAddress(s)
	if err != nil {
		return err
	}
	if n != network {
		return fmt.Errorf("address %s is for %s, not %s", s, n, network)
	}
	return nil
}
