package coordinator

import (
	"errors"
	"fmt"

	"github.com/electrowallet/electrowallet/internal/storage"
)

// WalletKey is the storage key of the persisted wallet record.
const WalletKey = "currentWallet"

// WalletStore persists the single active wallet record.
type WalletStore struct {
	db storage.DB
}

// NewWalletStore wraps db.
func NewWalletStore(db storage.DB) *WalletStore {
	return &WalletStore{db: db}
}

// Load returns the persisted wallet, or nil when none is stored.
func (s *WalletStore) Load() (*Wallet, error) {
	var w Wallet
	err := storage.GetJSON(s.db, WalletKey, &w)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load wallet: %w", err)
	}
	return &w, nil
}

// Save replaces the persisted wallet with a single Put.
func (s *WalletStore) Save(w Wallet) error {
	if err := storage.PutJSON(s.db, WalletKey, w); err != nil {
		return fmt.Errorf("save wallet: %w", err)
	}
	return nil
}

// Delete removes the persisted wallet.
func (s *WalletStore) Delete() error {
	if err := s.db.Delete([]byte(WalletKey)); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete wallet: %w", err)
	}
	return nil
}
