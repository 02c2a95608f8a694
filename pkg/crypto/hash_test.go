package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/electrowallet/electrowallet/pkg/types"
)

func hexToHash(t *testing.T, s string) types.Hash {
	t.Helper()
	h, err := types.HexToHash(s)
	if err != nil {
		t.Fatalf("bad hex: %v", err)
	}
	return h
}

func TestHash(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			name:  "empty input",
			input: []byte{},
			want:  "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:  "hello",
			input: []byte("hello"),
			want:  "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hash(tt.input)
			want := hexToHash(t, tt.want)
			if got != want {
				t.Errorf("Hash(%q) = %x, want %x", tt.input, got, want)
			}
		})
	}
}

func TestDoubleHash(t *testing.T) {
	data := []byte("double")
	first := Hash(data)
	want := Hash(first[:])
	if got := DoubleHash(data); got != want {
		t.Errorf("DoubleHash() = %x, want %x", got, want)
	}
}

func TestHashConcat(t *testing.T) {
	a := []byte("seed")
	b := []byte("m/0")
	if got, want := HashConcat(a, b), Hash([]byte("seedm/0")); got != want {
		t.Errorf("HashConcat() = %x, want %x", got, want)
	}
	if !bytes.Equal(a, []byte("seed")) {
		t.Error("HashConcat must not modify its inputs")
	}
}

func TestAddressDigestFromPubKey(t *testing.T) {
	pub := []byte("public key bytes")
	full := Hash(pub)
	d := AddressDigestFromPubKey(pub)
	if !bytes.Equal(d[:], full[:types.AddressSize]) {
		t.Errorf("digest = %x, want %x", d, full[:types.AddressSize])
	}
}

func TestAddressFromPubKey(t *testing.T) {
	pub := []byte("public key bytes")
	addr := AddressFromPubKey(pub, types.Testnet)
	d, n, err := types.DecodeAddress(addr)
	if err != nil {
		t.Fatalf("DecodeAddress() error: %v", err)
	}
	if n != types.Testnet || d != AddressDigestFromPubKey(pub) {
		t.Errorf("AddressFromPubKey() decoded to (%x, %s)", d, n)
	}
}

func TestCompressedPubKey(t *testing.T) {
	// Private key 1 maps to the generator point G.
	priv := make([]byte, 32)
	priv[31] = 1
	pub, err := CompressedPubKey(priv)
	if err != nil {
		t.Fatalf("CompressedPubKey() error: %v", err)
	}
	want := "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	if hex.EncodeToString(pub) != want {
		t.Errorf("CompressedPubKey(1) = %x, want %s", pub, want)
	}
	if priv[31] != 1 {
		t.Error("CompressedPubKey must not zero the caller's slice")
	}

	if _, err := CompressedPubKey([]byte{1, 2}); err == nil {
		t.Error("CompressedPubKey() should reject short keys")
	}
}
