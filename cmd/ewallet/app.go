package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/electrowallet/electrowallet/config"
	"github.com/electrowallet/electrowallet/internal/coordinator"
	"github.com/electrowallet/electrowallet/internal/ledger"
	"github.com/electrowallet/electrowallet/internal/storage"
	"github.com/electrowallet/electrowallet/internal/wallet"
	"github.com/electrowallet/electrowallet/pkg/types"
	"github.com/electrowallet/electrowallet/pkg/units"
)

// defaultFundAmount is credited by "fund" without --amount.
const defaultFundAmount = 100_000

// app wires the coordinator for one CLI invocation.
type app struct {
	cfg     *config.Config
	db      storage.DB
	backend ledger.Backend
	coord   *coordinator.Coordinator
	out     io.Writer
	in      *bufio.Reader
}

// newApp opens the wallet database, builds the ledger backend and loads
// the persisted wallet. An empty DB directory in cfg selects memory storage.
func newApp(ctx context.Context, cfg *config.Config, out io.Writer, secrets wallet.SecretStore) (*app, error) {
	dbPath := ""
	if cfg.DataDir != "" {
		dbPath = cfg.DBDir()
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open wallet database: %w", err)
	}

	backend, err := ledger.New(ledger.Config{
		Mode:      cfg.Ledger.Mode,
		DB:        storage.NewBucket(db, storage.LedgerBucket),
		RemoteURL: cfg.Ledger.Remote,
		IndexURL:  cfg.Ledger.Index,
		Latency:   cfg.Ledger.Latency,
		Timeout:   cfg.Ledger.Timeout,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	deriver, err := wallet.NewKeyDeriver(cfg.Wallet.Derivation)
	if err != nil {
		db.Close()
		return nil, err
	}

	coord := coordinator.New(backend, secrets, coordinator.NewWalletStore(storage.NewBucket(db, storage.WalletBucket)), deriver, coordinator.Options{
		Network:  cfg.Network.AddressNetwork(),
		Strength: cfg.Wallet.Strength,
		Label:    cfg.Wallet.Label,
	})
	if err := coord.Open(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		db:      db,
		backend: backend,
		coord:   coord,
		out:     out,
		in:      stdin,
	}, nil
}

// Close releases the wallet database.
func (a *app) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// run dispatches one command.
func (a *app) run(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "wallet":
		return a.cmdWallet(ctx, rest)
	case "balance":
		return a.cmdBalance()
	case "history":
		return a.cmdHistory(rest)
	case "send":
		return a.cmdSend(ctx, rest)
	case "fund":
		return a.cmdFund(ctx, rest)
	case "receive":
		return a.cmdReceive(rest)
	case "ledger":
		return a.cmdLedger(ctx, rest)
	default:
		return fmt.Errorf("unknown command: %s (see ewallet --help)", cmd)
	}
}

// ── wallet ──────────────────────────────────────────────────────────────

func (a *app) cmdWallet(ctx context.Context, args []string) error {
	const walletUsage = "usage: ewallet wallet <create|restore|show|mnemonic|delete>"
	if len(args) < 1 {
		return errors.New(walletUsage)
	}

	switch args[0] {
	case "create":
		return a.cmdWalletCreate(ctx)
	case "restore":
		return a.cmdWalletRestore(ctx, args[1:])
	case "show":
		return a.cmdWalletShow()
	case "mnemonic":
		return a.cmdWalletMnemonic()
	case "delete":
		return a.cmdWalletDelete(args[1:])
	default:
		return fmt.Errorf("unknown wallet command: %s\n%s", args[0], walletUsage)
	}
}

func (a *app) cmdWalletCreate(ctx context.Context) error {
	if w, ok := a.coord.Wallet(); ok {
		return fmt.Errorf("wallet %s already exists (delete it first)", w.Address)
	}
	w, err := a.coord.CreateWallet(ctx, "")
	if err != nil {
		return err
	}
	phrase, err := a.coord.Mnemonic()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Mnemonic (write this down!):")
	fmt.Fprintf(a.out, "  %s\n\n", phrase)
	fmt.Fprintf(a.out, "Wallet created: %s\n", w.Label)
	fmt.Fprintf(a.out, "Address: %s\n", w.Address)
	return nil
}

func (a *app) cmdWalletRestore(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("wallet restore", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic (12 or 24 words)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if w, ok := a.coord.Wallet(); ok {
		return fmt.Errorf("wallet %s already exists (delete it first)", w.Address)
	}

	phrase := *mnemonic
	if phrase == "" {
		fmt.Fprint(os.Stderr, "Enter mnemonic: ")
		line, err := a.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read mnemonic: %w", err)
		}
		phrase = line
	}

	w, err := a.coord.RestoreWallet(ctx, phrase)
	if err != nil {
		return err
	}
	if !wallet.CheckMnemonic(phrase) {
		fmt.Fprintln(a.out, "Warning: phrase is not a valid BIP-39 mnemonic (checksum or word list)")
	}
	fmt.Fprintf(a.out, "Wallet restored: %s\n", w.Label)
	fmt.Fprintf(a.out, "Address: %s\n", w.Address)
	fmt.Fprintf(a.out, "Balance: %s BTC\n", units.FormatBTC(w.Balance))
	return nil
}

func (a *app) cmdWalletShow() error {
	w, ok := a.coord.Wallet()
	if !ok {
		return coordinator.ErrNoWallet
	}
	fmt.Fprintf(a.out, "Label:      %s\n", w.Label)
	fmt.Fprintf(a.out, "ID:         %s\n", w.ID)
	fmt.Fprintf(a.out, "Address:    %s\n", w.Address)
	fmt.Fprintf(a.out, "Public key: %s\n", w.PublicKey)
	fmt.Fprintf(a.out, "Created:    %s\n", w.CreatedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(a.out, "Network:    %s\n", a.cfg.Network)
	fmt.Fprintf(a.out, "Ledger:     %s\n", a.backend.Name())
	fmt.Fprintf(a.out, "Balance:    %s BTC\n", units.FormatBTC(w.Balance))
	return nil
}

func (a *app) cmdWalletMnemonic() error {
	phrase, err := a.coord.Mnemonic()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, phrase)
	return nil
}

func (a *app) cmdWalletDelete(args []string) error {
	fs := flag.NewFlagSet("wallet delete", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	w, ok := a.coord.Wallet()
	if !ok {
		return coordinator.ErrNoWallet
	}
	if !*yes {
		fmt.Fprintf(os.Stderr, "Delete wallet %s? Make sure the mnemonic is backed up. [y/N]: ", w.Address)
		line, _ := a.in.ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			return errors.New("aborted")
		}
	}
	if err := a.coord.DeleteWallet(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wallet deleted: %s\n", w.Address)
	return nil
}

// ── balance / history ───────────────────────────────────────────────────

func (a *app) cmdBalance() error {
	w, ok := a.coord.Wallet()
	if !ok {
		return coordinator.ErrNoWallet
	}
	fmt.Fprintf(a.out, "Address: %s\n", w.Address)
	fmt.Fprintf(a.out, "Balance: %s BTC (%d sats)\n", units.FormatBTC(w.Balance), w.Balance)
	return nil
}

func (a *app) cmdHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	limit := fs.Int("limit", 0, "Show at most n transactions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if a.coord.State() != coordinator.StateActive {
		return coordinator.ErrNoWallet
	}
	txs := a.coord.Transactions()
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "No transactions")
		return nil
	}
	if *limit > 0 && len(txs) > *limit {
		txs = txs[:*limit]
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tDIRECTION\tAMOUNT (BTC)\tFEE\tSTATUS\tCONF\tCOUNTERPARTY\tID")
	for _, tx := range txs {
		sign := "+"
		if tx.Direction == ledger.Sent {
			sign = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s%s\t%d\t%s\t%d\t%s\t%s\n",
			tx.Timestamp.Local().Format("2006-01-02 15:04:05"),
			tx.Direction,
			sign, units.FormatBTC(tx.Amount),
			tx.Fee,
			tx.Status,
			tx.Confirmations,
			tx.Counterparty,
			shortID(tx.ID),
		)
	}
	return tw.Flush()
}

// ── send / fund ─────────────────────────────────────────────────────────

func (a *app) cmdSend(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	to := fs.String("to", "", "Recipient address")
	amountStr := fs.String("amount", "", "Amount in BTC, or sats with a \"sats\" suffix")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *to == "" || *amountStr == "" {
		return errors.New("usage: ewallet send --to <address> --amount <amount>")
	}

	if err := types.ValidateAddress(*to, a.cfg.Network.AddressNetwork()); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	amount, err := units.ParseAmount(*amountStr)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	txID, err := a.coord.Send(ctx, *to, amount)
	if err != nil {
		return err
	}
	w, _ := a.coord.Wallet()
	fmt.Fprintf(a.out, "Transaction: %s\n", txID)
	fmt.Fprintf(a.out, "Amount:      %s BTC\n", units.FormatBTC(amount))
	fmt.Fprintf(a.out, "Fee:         %s BTC\n", units.FormatBTC(ledger.Fee(amount)))
	fmt.Fprintf(a.out, "Balance:     %s BTC\n", units.FormatBTC(w.Balance))
	return nil
}

func (a *app) cmdFund(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fund", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	amountStr := fs.String("amount", "", "Amount in BTC, or sats with a \"sats\" suffix")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amount := int64(defaultFundAmount)
	if *amountStr != "" {
		var err error
		if amount, err = units.ParseAmount(*amountStr); err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
	}

	txID, err := a.coord.AddFunds(ctx, amount)
	if err != nil {
		return err
	}
	w, _ := a.coord.Wallet()
	fmt.Fprintf(a.out, "Transaction: %s\n", txID)
	fmt.Fprintf(a.out, "Credited:    %s BTC\n", units.FormatBTC(amount))
	fmt.Fprintf(a.out, "Balance:     %s BTC\n", units.FormatBTC(w.Balance))
	return nil
}

// ── receive ─────────────────────────────────────────────────────────────

func (a *app) cmdReceive(args []string) error {
	fs := flag.NewFlagSet("receive", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	pngPath := fs.String("png", "", "Also write the QR code as a PNG file")
	size := fs.Int("size", 256, "PNG size in pixels")
	if err := fs.Parse(args); err != nil {
		return err
	}

	w, ok := a.coord.Wallet()
	if !ok {
		return coordinator.ErrNoWallet
	}

	qr, err := qrcode.New(w.Address, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("failed to create QR code: %w", err)
	}
	fmt.Fprintf(a.out, "Your %s address:\n\n", a.cfg.Network)
	fmt.Fprint(a.out, qr.ToSmallString(false))
	fmt.Fprintf(a.out, "\n%s\n", w.Address)

	if *pngPath != "" {
		if err := qr.WriteFile(*size, *pngPath); err != nil {
			return fmt.Errorf("failed to write PNG: %w", err)
		}
		fmt.Fprintf(a.out, "QR code written to %s\n", *pngPath)
	}
	return nil
}

// ── ledger ──────────────────────────────────────────────────────────────

func (a *app) cmdLedger(ctx context.Context, args []string) error {
	if len(args) < 1 || args[0] != "reset" {
		return errors.New("usage: ewallet ledger reset")
	}
	remote, ok := a.backend.(*ledger.Remote)
	if !ok {
		return fmt.Errorf("ledger reset needs the remote backend (current: %s)", a.backend.Name())
	}
	if err := remote.Reset(ctx); err != nil {
		return err
	}
	if a.coord.State() == coordinator.StateActive {
		if err := a.coord.Refresh(ctx); err != nil {
			return err
		}
	}
	fmt.Fprintln(a.out, "Ledger cleared")
	return nil
}

func shortID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "…" + id[len(id)-8:]
}
