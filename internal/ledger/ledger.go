// Package ledger computes balances and transaction history for an address
// over interchangeable backends: an on-device log (Local), a shared ledger
// service (Remote) and a read-only public chain index (Index).
package ledger

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/electrowallet/electrowallet/internal/storage"
	"github.com/electrowallet/electrowallet/pkg/types"
)

// Backend is a source of balances and history and, for writable ledgers,
// a sink for transfers and credits.
type Backend interface {
	// Name identifies the backend in logs ("local", "remote", "index").
	Name() string

	// GetBalance returns the address balance in satoshis.
	GetBalance(ctx context.Context, address string) (int64, error)

	// GetTransactions returns the address history, most recent first.
	GetTransactions(ctx context.Context, address string) ([]Transaction, error)

	// SendTransaction records a transfer and returns its id.
	SendTransaction(ctx context.Context, from, to string, amount int64, privateKey []byte) (string, error)

	// CreditFunds records a faucet credit to an address and returns its id.
	CreditFunds(ctx context.Context, to string, amount int64) (string, error)
}

// Backend modes.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
	ModeIndex  = "index"
)

// Defaults.
const (
	DefaultLatency  = 200 * time.Millisecond
	DefaultIndexURL = "https://blockstream.info/testnet/api"
)

// Config selects and configures a backend.
type Config struct {
	Mode      string
	DB        storage.DB // Local log store
	RemoteURL string
	IndexURL  string
	Latency   time.Duration // simulated latency on sends
	Timeout   time.Duration // HTTP timeout for Remote and Index
}

// New builds the backend named by cfg.Mode. An empty mode selects Local.
func New(cfg Config) (Backend, error) {
	switch strings.ToLower(cfg.Mode) {
	case "", ModeLocal:
		if cfg.DB == nil {
			return nil, fmt.Errorf("local ledger requires a database")
		}
		return NewLocal(cfg.DB, cfg.Latency), nil
	case ModeRemote:
		if cfg.RemoteURL == "" {
			return nil, fmt.Errorf("remote ledger requires a URL")
		}
		return NewRemote(cfg.RemoteURL, cfg.Timeout, cfg.Latency), nil
	case ModeIndex:
		url := cfg.IndexURL
		if url == "" {
			url = DefaultIndexURL
		}
		return NewIndex(url, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown ledger mode %q", cfg.Mode)
	}
}

// entryFactory builds new ledger entries. Shared by the writable backends.
type entryFactory struct {
	rand io.Reader
	now  func() time.Time
}

func defaultFactory() entryFactory {
	return entryFactory{rand: rand.Reader, now: time.Now}
}

// transfer builds an unconfirmed send with the standard fee.
func (f entryFactory) transfer(from, to string, amount int64) (Entry, error) {
	return f.build(from, to, amount, Fee(amount), false)
}

// credit builds a confirmed, zero-fee faucet entry.
func (f entryFactory) credit(to string, amount int64) (Entry, error) {
	return f.build(FaucetAddress, to, amount, 0, true)
}

func (f entryFactory) build(from, to string, amount, fee int64, confirmed bool) (Entry, error) {
	if amount <= 0 {
		return Entry{}, fmt.Errorf("%w: amount must be positive, got %d", ErrInsufficientFunds, amount)
	}
	id, err := types.NewTxID(f.rand)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:        id,
		From:      from,
		To:        to,
		Amount:    amount,
		Fee:       fee,
		Timestamp: unixSeconds(f.now()),
		Confirmed: confirmed,
	}, nil
}

// simulateLatency blocks for d or until ctx is done.
func simulateLatency(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
