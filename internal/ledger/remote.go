package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/electrowallet/electrowallet/internal/httpclient"
	"github.com/electrowallet/electrowallet/internal/log"
	"github.com/rs/zerolog"
)

// Remote talks to a shared ledger service (see internal/ledgerd).
// Reads fail soft: any failure yields an empty ledger. Writes fail loud
// with ErrRemoteUnavailable.
type Remote struct {
	client  *httpclient.Client
	latency time.Duration
	factory entryFactory
	logger  zerolog.Logger
}

// NewRemote creates a remote ledger client for baseURL. A zero latency
// selects DefaultLatency; pass a negative value to disable it.
func NewRemote(baseURL string, timeout, latency time.Duration) *Remote {
	if latency == 0 {
		latency = DefaultLatency
	}
	return &Remote{
		client:  httpclient.NewWithTimeout(baseURL, timeout),
		latency: latency,
		factory: defaultFactory(),
		logger:  log.WithBackend(ModeRemote),
	}
}

// Name returns "remote".
func (r *Remote) Name() string { return ModeRemote }

// GetBalance fetches the whole log and sums it for address.
func (r *Remote) GetBalance(ctx context.Context, address string) (int64, error) {
	entries, err := r.Entries(ctx)
	if err != nil {
		return 0, err
	}
	return Balance(entries, address), nil
}

// GetTransactions fetches the whole log and maps it for address.
func (r *Remote) GetTransactions(ctx context.Context, address string) ([]Transaction, error) {
	entries, err := r.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return MapEntries(entries, address), nil
}

// Entries fetches the remote log. Network, status and decode failures are
// logged and reported as an empty log. Only a done ctx is returned as an error.
func (r *Remote) Entries(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := r.client.GetJSON(ctx, "ledger", &entries); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn().Err(err).Str("url", r.client.Base()).Msg("Remote ledger read failed, using empty ledger")
		return []Entry{}, nil
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// SendTransaction waits the simulated latency, then posts an unconfirmed entry.
func (r *Remote) SendTransaction(ctx context.Context, from, to string, amount int64, privateKey []byte) (string, error) {
	entry, err := r.factory.transfer(from, to, amount)
	if err != nil {
		return "", err
	}
	if err := simulateLatency(ctx, r.latency); err != nil {
		return "", err
	}
	if err := r.post(ctx, entry); err != nil {
		return "", err
	}
	r.logger.Info().Str("id", entry.ID).Str("from", from).Str("to", to).
		Int64("amount", amount).Int64("fee", entry.Fee).Msg("Transfer posted")
	return entry.ID, nil
}

// CreditFunds posts a confirmed zero-fee faucet entry.
func (r *Remote) CreditFunds(ctx context.Context, to string, amount int64) (string, error) {
	entry, err := r.factory.credit(to, amount)
	if err != nil {
		return "", err
	}
	if err := r.post(ctx, entry); err != nil {
		return "", err
	}
	r.logger.Info().Str("id", entry.ID).Str("to", to).Int64("amount", amount).Msg("Credit posted")
	return entry.ID, nil
}

// Reset clears the remote ledger.
func (r *Remote) Reset(ctx context.Context) error {
	if err := r.client.PostJSON(ctx, "reset", nil, nil); err != nil {
		return fmt.Errorf("%w: reset: %w", ErrRemoteUnavailable, err)
	}
	r.logger.Info().Msg("Remote ledger reset")
	return nil
}

func (r *Remote) post(ctx context.Context, entry Entry) error {
	if err := r.client.PostJSON(ctx, "tx", entry, nil); err != nil {
		return fmt.Errorf("%w: post tx: %w", ErrRemoteUnavailable, err)
	}
	return nil
}
