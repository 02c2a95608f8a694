package wallet

import "sync"

// Secret is the sensitive material stored per wallet address.
type Secret struct {
	PrivateKey []byte `json:"private_key"`
	Mnemonic   string `json:"mnemonic"`
}

// SecretStore is an opaque key-value store for wallet secrets keyed by address.
// Load returns ErrSecretNotFound for unknown addresses. Delete of an unknown
// address is not an error.
type SecretStore interface {
	Save(address string, secret Secret) error
	Load(address string) (Secret, error)
	Delete(address string) error
}

// MemorySecretStore keeps secrets in process memory. Used by tests and the
// ephemeral CLI mode.
type MemorySecretStore struct {
	mu      sync.RWMutex
	secrets map[string]Secret
}

// NewMemorySecretStore returns an empty in-memory store.
func NewMemorySecretStore() *MemorySecretStore {
	return &MemorySecretStore{secrets: make(map[string]Secret)}
}

// Save stores a copy of secret under address, replacing any previous entry.
func (m *MemorySecretStore) Save(address string, secret Secret) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[address] = copySecret(secret)
	return nil
}

// Load returns a copy of the secret for address.
func (m *MemorySecretStore) Load(address string) (Secret, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.secrets[address]
	if !ok {
		return Secret{}, ErrSecretNotFound
	}
	return copySecret(s), nil
}

// Delete removes the secret for address.
func (m *MemorySecretStore) Delete(address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.secrets[address]; ok {
		zero(s.PrivateKey)
		delete(m.secrets, address)
	}
	return nil
}

func copySecret(s Secret) Secret {
	out := Secret{Mnemonic: s.Mnemonic}
	if s.PrivateKey != nil {
		out.PrivateKey = append([]byte(nil), s.PrivateKey...)
	}
	return out
}
