package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/electrowallet/electrowallet/internal/log"
	"github.com/electrowallet/electrowallet/internal/storage"
	"github.com/rs/zerolog"
)

// LocalKey is the storage key holding the JSON-encoded entry log.
const LocalKey = "ledger_v1"

// Local keeps the ledger log on the device as a single JSON array.
type Local struct {
	mu      sync.Mutex
	db      storage.DB
	latency time.Duration
	factory entryFactory
	logger  zerolog.Logger
}

// NewLocal creates a local ledger over db. A zero latency selects
// DefaultLatency; pass a negative value to disable it.
func NewLocal(db storage.DB, latency time.Duration) *Local {
	if latency == 0 {
		latency = DefaultLatency
	}
	return &Local{
		db:      db,
		latency: latency,
		factory: defaultFactory(),
		logger:  log.WithBackend(ModeLocal),
	}
}

// Name returns "local".
func (l *Local) Name() string { return ModeLocal }

// GetBalance sums the log for address.
func (l *Local) GetBalance(ctx context.Context, address string) (int64, error) {
	entries, err := l.Entries()
	if err != nil {
		return 0, err
	}
	return Balance(entries, address), nil
}

// GetTransactions maps the log for address, most recent first.
func (l *Local) GetTransactions(ctx context.Context, address string) ([]Transaction, error) {
	entries, err := l.Entries()
	if err != nil {
		return nil, err
	}
	return MapEntries(entries, address), nil
}

// SendTransaction waits the simulated latency, then appends an unconfirmed
// entry with the standard fee. The private key is not used by this ledger.
func (l *Local) SendTransaction(ctx context.Context, from, to string, amount int64, privateKey []byte) (string, error) {
	entry, err := l.factory.transfer(from, to, amount)
	if err != nil {
		return "", err
	}
	if err := simulateLatency(ctx, l.latency); err != nil {
		return "", err
	}
	if err := l.append(entry); err != nil {
		return "", err
	}
	l.logger.Info().Str("id", entry.ID).Str("from", from).Str("to", to).
		Int64("amount", amount).Int64("fee", entry.Fee).Msg("Transfer recorded")
	return entry.ID, nil
}

// CreditFunds appends a confirmed zero-fee entry from the faucet.
func (l *Local) CreditFunds(ctx context.Context, to string, amount int64) (string, error) {
	entry, err := l.factory.credit(to, amount)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := l.append(entry); err != nil {
		return "", err
	}
	l.logger.Info().Str("id", entry.ID).Str("to", to).Int64("amount", amount).Msg("Funds credited")
	return entry.ID, nil
}

// Entries returns the full log in append order. A missing log is empty;
// an unreadable one is logged and treated as empty.
func (l *Local) Entries() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

func (l *Local) load() ([]Entry, error) {
	var entries []Entry
	err := storage.GetJSON(l.db, LocalKey, &entries)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return []Entry{}, nil
	case errors.Is(err, storage.ErrCorrupt):
		l.logger.Warn().Err(err).Msg("Stored ledger is corrupt, treating as empty")
		return []Entry{}, nil
	case err != nil:
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// append adds entry with a single Put of the whole log.
func (l *Local) append(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	if err := storage.PutJSON(l.db, LocalKey, entries); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}
