package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// Validate checks runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir is empty")
	}

	switch cfg.Ledger.Mode {
	case "local":
	case "remote":
		if err := validateURL(cfg.Ledger.Remote, "ledger.remote"); err != nil {
			return err
		}
	case "index":
		if err := validateURL(cfg.Ledger.Index, "ledger.index"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("ledger.mode must be local, remote or index")
	}
	if cfg.Ledger.Timeout < 0 {
		return fmt.Errorf("ledger.timeout must not be negative")
	}

	if cfg.Wallet.Strength != 128 && cfg.Wallet.Strength != 256 {
		return fmt.Errorf("wallet.strength must be 128 or 256")
	}
	if cfg.Wallet.Derivation != "flat" && cfg.Wallet.Derivation != "bip32" {
		return fmt.Errorf("wallet.derivation must be flat or bip32")
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in range [0, 65535]")
	}
	if cfg.Server.Storage != "memory" && cfg.Server.Storage != "badger" {
		return fmt.Errorf("server.storage must be memory or badger")
	}

	if lvl := strings.ToLower(cfg.Log.Level); lvl != "" && lvl != "off" {
		if _, err := zerolog.ParseLevel(lvl); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}

	return nil
}

func validateURL(raw, field string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL", field)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host", field)
	}
	return nil
}
