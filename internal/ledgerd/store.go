package ledgerd

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/electrowallet/electrowallet/internal/ledger"
	"github.com/electrowallet/electrowallet/internal/storage"
)

// Store holds the shared ledger log in append order.
type Store interface {
	All() ([]ledger.Entry, error)
	Append(e ledger.Entry) error
	Reset() error
}

// DBStore persists entries under sequential keys in a storage.DB,
// so appends never rewrite the whole log.
type DBStore struct {
	mu   sync.Mutex
	db   *storage.Bucket
	next uint64
}

// NewDBStore opens a store over db and resumes the sequence counter.
func NewDBStore(db storage.DB) (*DBStore, error) {
	s := &DBStore{db: storage.NewBucket(db, storage.EntryBucket)}
	err := s.db.ForEach(nil, func(key, _ []byte) error {
		if len(key) != 8 {
			return fmt.Errorf("unexpected ledger key %x", key)
		}
		if seq := binary.BigEndian.Uint64(key); seq >= s.next {
			s.next = seq + 1
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan ledger: %w", err)
	}
	return s, nil
}

// All returns every entry in append order.
func (s *DBStore) All() ([]ledger.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]ledger.Entry, 0)
	err := s.db.ForEach(nil, func(_, value []byte) error {
		var e ledger.Entry
		if err := json.Unmarshal(value, &e); err != nil {
			return fmt.Errorf("decode entry: %w", err)
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Append stores e after every existing entry.
func (s *DBStore) Append(e ledger.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var key [8]byte
	binary.BigEndian.PutUint64(key[:], s.next)
	if err := s.db.Put(key[:], data); err != nil {
		return fmt.Errorf("store entry: %w", err)
	}
	s.next++
	return nil
}

// Reset removes every entry.
func (s *DBStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Clear(); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	s.next = 0
	return nil
}
