package wallet

import (
	"crypto/rand"
	"fmt"
	"io"
)

// EntropySource supplies random bytes for mnemonic generation.
// Any io.Reader satisfies it, which keeps tests deterministic.
type EntropySource interface {
	Read(p []byte) (int, error)
}

// SystemEntropy reads from the operating system CSPRNG.
type SystemEntropy struct{}

// Read fills p from crypto/rand.
func (SystemEntropy) Read(p []byte) (int, error) {
	return rand.Read(p)
}

// readEntropy pulls exactly n bytes from src.
func readEntropy(src EntropySource, n int) ([]byte, error) {
	if src == nil {
		src = SystemEntropy{}
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomSource, err)
	}
	return buf, nil
}
