package storage

import "strings"

// Bucket names inside one database.
const (
	WalletBucket = "wallet" // coordinator wallet record
	LedgerBucket = "ledger" // local ledger log
	EntryBucket  = "entry"  // ledger server entries
)

// Bucket is a named keyspace inside a DB. Keys are stored as "<name>/<key>"
// so the wallet record and the local ledger log can share one badger
// directory. A Bucket is itself a DB and may be nested.
type Bucket struct {
	db     DB
	name   string
	prefix []byte
}

// NewBucket returns the keyspace called name inside db.
func NewBucket(db DB, name string) *Bucket {
	name = strings.Trim(name, "/")
	return &Bucket{db: db, name: name, prefix: []byte(name + "/")}
}

// Name returns the bucket name without the separator.
func (b *Bucket) Name() string { return b.name }

func (b *Bucket) key(k []byte) []byte {
	out := make([]byte, 0, len(b.prefix)+len(k))
	out = append(out, b.prefix...)
	return append(out, k...)
}

func (b *Bucket) Get(key []byte) ([]byte, error) { return b.db.Get(b.key(key)) }

func (b *Bucket) Put(key, value []byte) error { return b.db.Put(b.key(key), value) }

func (b *Bucket) Delete(key []byte) error { return b.db.Delete(b.key(key)) }

func (b *Bucket) Has(key []byte) (bool, error) { return b.db.Has(b.key(key)) }

// ForEach visits the keys under prefix inside the bucket. Keys passed to fn
// have the bucket name stripped.
func (b *Bucket) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	n := len(b.prefix)
	return b.db.ForEach(b.key(prefix), func(key, value []byte) error {
		return fn(key[n:], value)
	})
}

// DropPrefix removes every key under prefix inside the bucket.
func (b *Bucket) DropPrefix(prefix []byte) error {
	return dropPrefix(b.db, b.key(prefix))
}

// Clear removes every key in the bucket and leaves other buckets alone.
func (b *Bucket) Clear() error {
	return b.DropPrefix(nil)
}

// Count returns the number of keys in the bucket.
func (b *Bucket) Count() (int, error) {
	var n int
	err := b.ForEach(nil, func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}

// Close does nothing; the owner of the underlying DB closes it.
func (b *Bucket) Close() error {
	return nil
}

// prefixDropper is implemented by stores that can delete a key range at once.
type prefixDropper interface {
	DropPrefix(prefix []byte) error
}

func dropPrefix(db DB, prefix []byte) error {
	if d, ok := db.(prefixDropper); ok {
		return d.DropPrefix(prefix)
	}
	var keys [][]byte
	err := db.ForEach(prefix, func(key, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := db.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
