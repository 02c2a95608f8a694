package types

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestHash_IsZero(t *testing.T) {
	var zero Hash
	if !zero.IsZero() {
		t.Error("zero-value Hash should be zero")
	}

	nonZero := Hash{0x01}
	if nonZero.IsZero() {
		t.Error("non-zero Hash should not be zero")
	}
}

func TestHash_String(t *testing.T) {
	var h Hash
	s := h.String()
	if len(s) != 64 {
		t.Errorf("String() length = %d, want 64", len(s))
	}
	if s != strings.Repeat("0", 64) {
		t.Errorf("zero hash String() = %s, want all zeros", s)
	}

	h[0] = 0xab
	h[31] = 0xcd
	s = h.String()
	if !strings.HasPrefix(s, "ab") {
		t.Errorf("String() should start with 'ab', got %s", s[:2])
	}
	if !strings.HasSuffix(s, "cd") {
		t.Errorf("String() should end with 'cd', got %s", s[62:])
	}
}

func TestHexToHash(t *testing.T) {
	want := Hash{0xde, 0xad}
	got, err := HexToHash(want.String())
	if err != nil {
		t.Fatalf("HexToHash() error: %v", err)
	}
	if got != want {
		t.Errorf("HexToHash() = %x, want %x", got, want)
	}

	if _, err := HexToHash("abcd"); err == nil {
		t.Error("HexToHash() should reject short input")
	}
	if _, err := HexToHash(strings.Repeat("zz", 32)); err == nil {
		t.Error("HexToHash() should reject non-hex input")
	}
}

func TestNewTxID(t *testing.T) {
	src := bytes.NewReader(bytes.Repeat([]byte{0x0f}, HashSize))
	id, err := NewTxID(src)
	if err != nil {
		t.Fatalf("NewTxID() error: %v", err)
	}
	if id != strings.Repeat("0f", HashSize) {
		t.Errorf("NewTxID() = %s", id)
	}
	if !IsTxID(id) {
		t.Errorf("IsTxID(%s) = false", id)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestNewTxID_ReaderError(t *testing.T) {
	if _, err := NewTxID(failingReader{}); err == nil {
		t.Error("NewTxID() should fail when the reader fails")
	}
	if _, err := NewTxID(bytes.NewReader([]byte{1, 2, 3})); err == nil {
		t.Error("NewTxID() should fail on a short read")
	}
}

func TestIsTxID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{strings.Repeat("a", 64), true},
		{strings.Repeat("a", 63), false},
		{strings.Repeat("g", 64), false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsTxID(tt.in); got != tt.want {
			t.Errorf("IsTxID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
