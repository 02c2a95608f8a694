// ledgerd serves the shared ledger used by ewallet's remote backend.
//
// Usage:
//
//	ledgerd [--port=8645 --storage=badger]  Run the ledger server
//	ledgerd --help                          Show help
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/electrowallet/electrowallet/config"
	"github.com/electrowallet/electrowallet/internal/ledgerd"
	"github.com/electrowallet/electrowallet/internal/log"
	"github.com/electrowallet/electrowallet/internal/storage"
)

const version = "0.1.0"

func main() {
	cfg, flags, err := config.Load("ledgerd", os.Args[1:])
	if err != nil {
		fatal("%v", err)
	}
	if flags.Version {
		fmt.Printf("ledgerd version %s\n", version)
		return
	}
	if flags.Help {
		fmt.Fprintf(os.Stderr, "Usage: ledgerd [options]\n\n%s", config.FlagUsage)
		return
	}
	if len(flags.Args) > 0 {
		fatal("unexpected argument %q", flags.Args[0])
	}

	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("initializing logger: %v", err)
	}
	defer log.Close()
	log.SetNetwork(string(cfg.Network))
	logger := log.Server

	dbPath := ""
	if cfg.Server.Storage == "badger" {
		dbPath = cfg.ServerDir()
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		fatal("open database at %s: %v", dbPath, err)
	}

	store, err := ledgerd.NewDBStore(db)
	if err != nil {
		db.Close()
		fatal("%v", err)
	}

	addr := net.JoinHostPort(cfg.Server.Addr, strconv.Itoa(cfg.Server.Port))
	srv := ledgerd.New(addr, store, cfg.Server)
	if err := srv.Start(); err != nil {
		db.Close()
		fatal("%v", err)
	}
	logger.Info().
		Str("network", string(cfg.Network)).
		Str("storage", cfg.Server.Storage).
		Str("datadir", cfg.DataDir).
		Msg("ledgerd started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("Shutting down")
	if err := srv.Stop(); err != nil {
		logger.Error().Err(err).Msg("Server shutdown")
	}
	if err := db.Close(); err != nil {
		logger.Error().Err(err).Msg("Database close")
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
