// Package coordinator owns the single active wallet: it runs the key
// pipeline on creation, keeps secrets in a SecretStore, persists the wallet
// record and projects balance and history from a ledger backend.
package coordinator

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/electrowallet/electrowallet/internal/ledger"
	"github.com/electrowallet/electrowallet/internal/log"
	"github.com/electrowallet/electrowallet/internal/wallet"
	"github.com/electrowallet/electrowallet/pkg/crypto"
	"github.com/electrowallet/electrowallet/pkg/types"
)

// Coordinator errors.
var (
	ErrNoWallet           = errors.New("no wallet")
	ErrPrivateKeyNotFound = errors.New("private key not found")
)

// DefaultLabel is given to wallets created without a label.
const DefaultLabel = "My Wallet"

// State is the coordinator lifecycle state.
type State int

const (
	StateNoWallet State = iota
	StateActive
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	default:
		return "no-wallet"
	}
}

// Wallet is the persisted wallet record. Balance is a cached projection of
// the ledger and is overwritten on every refresh.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	Address   string    `json:"address"`
	PublicKey string    `json:"public_key"` // hex
	CreatedAt time.Time `json:"created_at"`
	Balance   int64     `json:"balance"` // satoshis
	Label     string    `json:"label"`
}

// Options configures a Coordinator. Zero values select defaults.
type Options struct {
	Network    types.Network
	Path       string // derivation path (default wallet.DefaultPath)
	Strength   int    // mnemonic bits for generated phrases (default 128)
	Passphrase string // BIP-39 passphrase
	Label      string
	Entropy    wallet.EntropySource
	Logger     *zerolog.Logger
	Now        func() time.Time
}

// Coordinator is the wallet state machine. It is safe for concurrent use.
type Coordinator struct {
	backend ledger.Backend
	secrets wallet.SecretStore
	store   *WalletStore
	deriver wallet.KeyDeriver

	network    types.Network
	path       string
	strength   int
	passphrase string
	label      string
	entropy    wallet.EntropySource
	now        func() time.Time
	logger     zerolog.Logger

	mu     sync.RWMutex
	active *Wallet
	txs    []ledger.Transaction
}

// New creates a coordinator in the NoWallet state. Call Open to load a
// persisted wallet.
func New(backend ledger.Backend, secrets wallet.SecretStore, store *WalletStore, deriver wallet.KeyDeriver, opts Options) *Coordinator {
	c := &Coordinator{
		backend:    backend,
		secrets:    secrets,
		store:      store,
		deriver:    deriver,
		network:    opts.Network,
		path:       opts.Path,
		strength:   opts.Strength,
		passphrase: opts.Passphrase,
		label:      opts.Label,
		entropy:    opts.Entropy,
		now:        opts.Now,
		logger:     log.Wallet,
	}
	if c.network == "" {
		c.network = types.Testnet
	}
	if c.path == "" {
		c.path = wallet.DefaultPath
	}
	if c.strength == 0 {
		c.strength = wallet.DefaultStrength
	}
	if c.label == "" {
		c.label = DefaultLabel
	}
	if c.deriver == nil {
		c.deriver = wallet.FlatDeriver{}
	}
	if c.entropy == nil {
		c.entropy = wallet.SystemEntropy{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if opts.Logger != nil {
		c.logger = *opts.Logger
	}
	return c
}

// Open loads the persisted wallet, if any, and refreshes it. A failed
// refresh is logged and leaves the stored projection in place.
func (c *Coordinator) Open(ctx context.Context) error {
	w, err := c.store.Load()
	if err != nil {
		return err
	}
	if w == nil {
		c.logger.Debug().Msg("No persisted wallet")
		return nil
	}

	c.mu.Lock()
	c.active = w
	c.txs = nil
	c.mu.Unlock()

	c.logger.Info().Str("address", w.Address).Msg("Wallet loaded")
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("Initial refresh failed")
	}
	return nil
}

// CreateWallet derives a wallet from phrase, or from a freshly generated
// mnemonic when phrase is empty, and makes it the active wallet. An
// existing active wallet is replaced; its secrets stay in the SecretStore.
func (c *Coordinator) CreateWallet(ctx context.Context, phrase string) (Wallet, error) {
	if phrase == "" {
		generated, err := wallet.GenerateMnemonic(c.entropy, c.strength)
		if err != nil {
			return Wallet{}, err
		}
		phrase = generated
	} else {
		phrase = wallet.NormalizeMnemonic(phrase)
		if !wallet.CheckMnemonic(phrase) {
			c.logger.Warn().Msg("Mnemonic fails the BIP-39 checksum or word list check")
		}
	}

	seed, err := wallet.SeedFromMnemonic(phrase, c.passphrase)
	if err != nil {
		return Wallet{}, err
	}
	keys, err := wallet.DeriveKeyPair(c.deriver, seed, c.path)
	clear(seed)
	if err != nil {
		return Wallet{}, err
	}
	address := crypto.AddressFromPubKey(keys.PublicKey, c.network)

	if err := c.secrets.Save(address, wallet.Secret{PrivateKey: keys.PrivateKey, Mnemonic: phrase}); err != nil {
		clear(keys.PrivateKey)
		return Wallet{}, fmt.Errorf("store secrets: %w", err)
	}
	clear(keys.PrivateKey)

	w := Wallet{
		ID:        uuid.New(),
		Address:   address,
		PublicKey: hex.EncodeToString(keys.PublicKey),
		CreatedAt: c.now().UTC(),
		Label:     c.label,
	}
	// The record and the active pointer change together so a concurrent
	// Refresh cannot persist the previous wallet over this one.
	c.mu.Lock()
	if err := c.store.Save(w); err != nil {
		c.mu.Unlock()
		return Wallet{}, err
	}
	c.active = &w
	c.txs = nil
	c.mu.Unlock()

	c.logger.Info().Str("address", address).Str("path", c.path).Msg("Wallet created")

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("Refresh after create failed")
	}
	out, _ := c.Wallet()
	return out, nil
}

// RestoreWallet recreates a wallet from an existing phrase. Only the word
// count is checked; other phrases fail with wallet.ErrInvalidMnemonic.
func (c *Coordinator) RestoreWallet(ctx context.Context, phrase string) (Wallet, error) {
	if !wallet.ValidateMnemonic(phrase) {
		return Wallet{}, fmt.Errorf("%w: expected 12 or 24 words", wallet.ErrInvalidMnemonic)
	}
	return c.CreateWallet(ctx, phrase)
}

// Refresh re-reads balance and history from the backend and overwrites the
// cached projection. Overlapping calls race; the last to finish wins.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.RLock()
	if c.active == nil {
		c.mu.RUnlock()
		return ErrNoWallet
	}
	address := c.active.Address
	c.mu.RUnlock()

	balance, err := c.backend.GetBalance(ctx, address)
	if err != nil {
		return fmt.Errorf("get balance: %w", err)
	}
	txs, err := c.backend.GetTransactions(ctx, address)
	if err != nil {
		return fmt.Errorf("get transactions: %w", err)
	}

	c.mu.Lock()
	// The wallet may have been deleted or replaced while we were waiting.
	// The save stays under the lock so it cannot land after DeleteWallet.
	if c.active == nil || c.active.Address != address {
		c.mu.Unlock()
		return nil
	}
	snapshot := *c.active
	snapshot.Balance = balance
	if err := c.store.Save(snapshot); err != nil {
		c.mu.Unlock()
		return err
	}
	c.active.Balance = balance
	c.txs = txs
	c.mu.Unlock()

	c.logger.Debug().
		Str("address", address).
		Str("backend", c.backend.Name()).
		Int64("balance", balance).
		Int("txs", len(txs)).
		Msg("Wallet refreshed")
	return nil
}

// Send transfers amount satoshis to the recipient and returns the
// transaction id. The projection is refreshed afterwards; a failed refresh
// is logged and does not fail the send.
func (c *Coordinator) Send(ctx context.Context, to string, amount int64) (string, error) {
	address, err := c.activeAddress()
	if err != nil {
		return "", err
	}

	secret, err := c.secrets.Load(address)
	if errors.Is(err, wallet.ErrSecretNotFound) || (err == nil && len(secret.PrivateKey) == 0) {
		return "", ErrPrivateKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load private key: %w", err)
	}
	defer clear(secret.PrivateKey)

	txID, err := c.backend.SendTransaction(ctx, address, to, amount, secret.PrivateKey)
	if err != nil {
		return "", err
	}
	c.logger.Info().Str("tx", txID).Str("to", to).Int64("amount", amount).Msg("Transaction sent")

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("Refresh after send failed")
	}
	return txID, nil
}

// AddFunds credits the active wallet through the backend faucet and
// refreshes the projection.
func (c *Coordinator) AddFunds(ctx context.Context, amount int64) (string, error) {
	address, err := c.activeAddress()
	if err != nil {
		return "", err
	}

	txID, err := c.backend.CreditFunds(ctx, address, amount)
	if err != nil {
		return "", err
	}
	c.logger.Info().Str("tx", txID).Int64("amount", amount).Msg("Funds added")

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("Refresh after credit failed")
	}
	return txID, nil
}

// DeleteWallet removes the active wallet's secrets and record and returns
// to the NoWallet state. It is a no-op when there is no wallet.
func (c *Coordinator) DeleteWallet() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return nil
	}
	address := c.active.Address

	if err := c.secrets.Delete(address); err != nil {
		return fmt.Errorf("delete secrets: %w", err)
	}
	if err := c.store.Delete(); err != nil {
		return err
	}

	c.active = nil
	c.txs = nil
	c.logger.Info().Str("address", address).Msg("Wallet deleted")
	return nil
}

// Wallet returns a copy of the active wallet.
func (c *Coordinator) Wallet() (Wallet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.active == nil {
		return Wallet{}, false
	}
	return *c.active, true
}

// Transactions returns a copy of the cached history, most recent first.
func (c *Coordinator) Transactions() []ledger.Transaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ledger.Transaction, len(c.txs))
	copy(out, c.txs)
	return out
}

// State reports whether a wallet is active.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.active == nil {
		return StateNoWallet
	}
	return StateActive
}

// Mnemonic returns the recovery phrase of the active wallet.
func (c *Coordinator) Mnemonic() (string, error) {
	address, err := c.activeAddress()
	if err != nil {
		return "", err
	}
	secret, err := c.secrets.Load(address)
	clear(secret.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("load mnemonic: %w", err)
	}
	return secret.Mnemonic, nil
}

// Backend returns the ledger backend in use.
func (c *Coordinator) Backend() ledger.Backend {
	return c.backend
}

func (c *Coordinator) activeAddress() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.active == nil {
		return "", ErrNoWallet
	}
	return c.active.Address, nil
}
