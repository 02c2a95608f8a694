package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/electrowallet/electrowallet/internal/log"
	"github.com/rs/zerolog"
)

// BadgerDB is the on-disk store used for wallet data and the ledger server.
type BadgerDB struct {
	db   *badger.DB
	path string
}

// NewBadger opens (or creates) a badger directory at path. Badger's own
// messages go to the storage logger.
func NewBadger(path string) (*BadgerDB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(badgerLogger{log.Storage.With().Str("path", path).Logger()})

	db, err := badger.Open(opts)
	if err != nil {
		if isLockError(err) {
			return nil, fmt.Errorf("wallet data at %s is in use by another ewallet or ledgerd process: %w", path, err)
		}
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	log.Storage.Debug().Str("path", path).Msg("Badger opened")
	return &BadgerDB{db: db, path: path}, nil
}

func isLockError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Cannot acquire directory lock") ||
		strings.Contains(msg, "resource temporarily unavailable")
}

// Path returns the directory the database lives in.
func (b *BadgerDB) Path() string { return b.path }

// Get returns a copy of the value at key, or ErrNotFound.
func (b *BadgerDB) Get(key []byte) ([]byte, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("badger get %q: %w", key, err)
	}
	return val, nil
}

func (b *BadgerDB) Put(key, value []byte) error {
	if err := b.db.Update(func(txn *badger.Txn) error { return txn.Set(key, value) }); err != nil {
		return fmt.Errorf("badger put %q: %w", key, err)
	}
	return nil
}

func (b *BadgerDB) Delete(key []byte) error {
	if err := b.db.Update(func(txn *badger.Txn) error { return txn.Delete(key) }); err != nil {
		return fmt.Errorf("badger delete %q: %w", key, err)
	}
	return nil
}

func (b *BadgerDB) Has(key []byte) (bool, error) {
	_, err := b.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ForEach visits keys under prefix in key order. Pairs are copied out of the
// read transaction before fn runs, so fn may write.
func (b *BadgerDB) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	var keys, vals [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			keys = append(keys, item.KeyCopy(nil))
			vals = append(vals, v)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger iterate: %w", err)
	}
	for i := range keys {
		if err := fn(keys[i], vals[i]); err != nil {
			return err
		}
	}
	return nil
}

// DropPrefix deletes every key under prefix. An empty prefix is refused;
// it would wipe every bucket in the directory.
func (b *BadgerDB) DropPrefix(prefix []byte) error {
	if len(prefix) == 0 {
		return errors.New("badger drop: empty prefix")
	}
	if err := b.db.DropPrefix(prefix); err != nil {
		return fmt.Errorf("badger drop %q: %w", prefix, err)
	}
	return nil
}

func (b *BadgerDB) Close() error {
	return b.db.Close()
}

// badgerLogger routes badger's printf-style logging into zerolog. Badger is
// chatty at info level, so info is demoted to debug.
type badgerLogger struct {
	l zerolog.Logger
}

func (b badgerLogger) Errorf(f string, v ...interface{}) {
	b.l.Error().Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (b badgerLogger) Warningf(f string, v ...interface{}) {
	b.l.Warn().Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (b badgerLogger) Infof(f string, v ...interface{}) {
	b.l.Debug().Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (b badgerLogger) Debugf(f string, v ...interface{}) {
	b.l.Debug().Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}
