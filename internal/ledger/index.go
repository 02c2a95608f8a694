package ledger

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/electrowallet/electrowallet/internal/httpclient"
	"github.com/electrowallet/electrowallet/internal/log"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Index request rate limits.
const (
	DefaultIndexRate  = 5 // requests per second
	DefaultIndexBurst = 5
)

// Index reads balances and history from an Esplora-compatible public chain
// index. It cannot write: sends and credits always fail with
// ErrUnsupportedOperation. Read failures yield empty results.
type Index struct {
	client  *httpclient.Client
	limiter *rate.Limiter
	now     func() time.Time
	logger  zerolog.Logger
}

// NewIndex creates an index client for baseURL.
func NewIndex(baseURL string, timeout time.Duration) *Index {
	return &Index{
		client:  httpclient.NewWithTimeout(baseURL, timeout),
		limiter: rate.NewLimiter(rate.Limit(DefaultIndexRate), DefaultIndexBurst),
		now:     time.Now,
		logger:  log.Index,
	}
}

// Name returns "index".
func (ix *Index) Name() string { return ModeIndex }

type chainStats struct {
	FundedTxoSum int64 `json:"funded_txo_sum"`
	SpentTxoSum  int64 `json:"spent_txo_sum"`
}

type addressInfo struct {
	Address      string     `json:"address"`
	ChainStats   chainStats `json:"chain_stats"`
	MempoolStats chainStats `json:"mempool_stats"`
}

type txStatus struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight *int64 `json:"block_height"`
	BlockTime   *int64 `json:"block_time"`
}

type txOutput struct {
	Address *string `json:"scriptpubkey_address"`
	Value   *int64  `json:"value"`
}

type txInput struct {
	Prevout *txOutput `json:"prevout"`
}

type indexTx struct {
	TxID   string     `json:"txid"`
	Fee    *int64     `json:"fee"`
	Status txStatus   `json:"status"`
	Vin    []txInput  `json:"vin"`
	Vout   []txOutput `json:"vout"`
}

// GetBalance returns confirmed plus mempool funded−spent sums.
func (ix *Index) GetBalance(ctx context.Context, address string) (int64, error) {
	var info addressInfo
	if err := ix.get(ctx, "address/"+url.PathEscape(address), &info); err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		ix.logger.Warn().Err(err).Str("address", address).Msg("Index balance read failed")
		return 0, nil
	}
	chain := info.ChainStats.FundedTxoSum - info.ChainStats.SpentTxoSum
	mempool := info.MempoolStats.FundedTxoSum - info.MempoolStats.SpentTxoSum
	return chain + mempool, nil
}

// GetTransactions maps the index's address history in the order the index
// returns it (mempool first, then newest confirmed).
func (ix *Index) GetTransactions(ctx context.Context, address string) ([]Transaction, error) {
	var raw []indexTx
	if err := ix.get(ctx, "address/"+url.PathEscape(address)+"/txs", &raw); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		ix.logger.Warn().Err(err).Str("address", address).Msg("Index history read failed")
		return []Transaction{}, nil
	}

	var tip int64
	for _, tx := range raw {
		if tx.Status.Confirmed {
			tip = ix.tipHeight(ctx)
			break
		}
	}

	txs := make([]Transaction, 0, len(raw))
	for _, tx := range raw {
		txs = append(txs, ix.view(tx, address, tip))
	}
	return txs, nil
}

// SendTransaction always fails: the index is read-only.
func (ix *Index) SendTransaction(ctx context.Context, from, to string, amount int64, privateKey []byte) (string, error) {
	return "", readOnlyError(amount)
}

// CreditFunds always fails: the index is read-only.
func (ix *Index) CreditFunds(ctx context.Context, to string, amount int64) (string, error) {
	return "", readOnlyError(amount)
}

// readOnlyError reports ErrUnsupportedOperation, joined with
// ErrInsufficientFunds for non-positive amounts.
func readOnlyError(amount int64) error {
	if amount <= 0 {
		return errors.Join(ErrUnsupportedOperation,
			fmt.Errorf("%w: amount must be positive, got %d", ErrInsufficientFunds, amount))
	}
	return ErrUnsupportedOperation
}

func (ix *Index) view(tx indexTx, address string, tip int64) Transaction {
	var received, sent int64
	for _, out := range tx.Vout {
		if out.Address != nil && *out.Address == address && out.Value != nil {
			received += *out.Value
		}
	}
	for _, in := range tx.Vin {
		if p := in.Prevout; p != nil && p.Address != nil && *p.Address == address && p.Value != nil {
			sent += *p.Value
		}
	}
	net := received - sent

	v := Transaction{
		ID:           tx.TxID,
		Direction:    Received,
		Amount:       net,
		Counterparty: address,
		Status:       StatusPending,
	}
	if net < 0 {
		v.Direction = Sent
		v.Amount = -net
	}
	if tx.Fee != nil {
		v.Fee = *tx.Fee
	}

	if v.Direction == Sent {
		for _, out := range tx.Vout {
			if out.Address != nil && *out.Address != address {
				v.Counterparty = *out.Address
				break
			}
		}
	} else {
		for _, in := range tx.Vin {
			if p := in.Prevout; p != nil && p.Address != nil && *p.Address != address {
				v.Counterparty = *p.Address
				break
			}
		}
	}

	if tx.Status.BlockTime != nil {
		v.Timestamp = time.Unix(*tx.Status.BlockTime, 0).UTC()
	} else {
		v.Timestamp = ix.now().UTC()
	}

	if tx.Status.Confirmed {
		v.Status = StatusConfirmed
		v.Confirmations = 1
		if tip > 0 && tx.Status.BlockHeight != nil && *tx.Status.BlockHeight > 0 {
			if c := tip - *tx.Status.BlockHeight + 1; c > 1 {
				v.Confirmations = c
			}
		}
	}
	return v
}

// tipHeight returns the current chain height, or 0 when unknown.
func (ix *Index) tipHeight(ctx context.Context) int64 {
	if err := ix.limiter.Wait(ctx); err != nil {
		return 0
	}
	text, err := ix.client.GetText(ctx, "blocks/tip/height")
	if err != nil {
		ix.logger.Debug().Err(err).Msg("Tip height unavailable")
		return 0
	}
	h, err := strconv.ParseInt(text, 10, 64)
	if err != nil || h < 0 {
		return 0
	}
	return h
}

func (ix *Index) get(ctx context.Context, path string, result any) error {
	if err := ix.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return ix.client.GetJSON(ctx, path, result)
}
