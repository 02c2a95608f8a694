// ewallet is a command-line Bitcoin testnet wallet.
//
// Usage:
//
//	ewallet [global flags] <command> [flags]
//	ewallet --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/electrowallet/electrowallet/config"
	"github.com/electrowallet/electrowallet/internal/log"
)

const version = "0.1.0"

func main() {
	cfg, flags, err := config.Load("ewallet", os.Args[1:])
	if err != nil {
		fatal("%v", err)
	}
	if flags.Version {
		fmt.Printf("ewallet version %s\n", version)
		return
	}
	if flags.Help || len(flags.Args) == 0 || flags.Args[0] == "help" {
		usage()
		return
	}

	// Logs go to stderr so command output stays clean. The CLI is quiet
	// unless --log-level is given.
	level := "warn"
	if flags.LogLevel != "" {
		level = flags.LogLevel
	}
	if err := log.InitWriter(os.Stderr, level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("initializing logger: %v", err)
	}
	defer log.Close()
	log.SetNetwork(string(cfg.Network))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, os.Stdout, newKeystoreSecrets(cfg.KeystoreDir()))
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()

	if err := a.run(ctx, flags.Args); err != nil {
		a.Close()
		fatal("%v", err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: ewallet [global flags] <command> [flags]

Commands:
  wallet create                   Create a wallet from a new mnemonic
  wallet restore [--mnemonic "..."]
                                  Restore a wallet from a 12 or 24 word phrase
  wallet show                     Show the active wallet
  wallet mnemonic                 Reveal the recovery phrase
  wallet delete [--yes]           Delete the active wallet and its secrets

  balance                         Show the wallet balance
  history [--limit n]             Show transaction history, newest first
  send --to <addr> --amount <amt> Send funds (amount in BTC, or "1500sats")
  fund [--amount <amt>]           Credit the wallet from the faucet (default 0.001)
  receive [--png <file>]          Show the receive address as a QR code
  ledger reset                    Clear the shared ledger (remote backend only)

%s`, config.FlagUsage)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
