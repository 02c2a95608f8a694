package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "EWALLET"

// envValues mirrors the config file keys. Empty fields are left unset.
type envValues struct {
	Network string `envconfig:"NETWORK"`
	DataDir string `envconfig:"DATADIR"`

	LedgerMode    string `envconfig:"LEDGER_MODE"`
	LedgerRemote  string `envconfig:"LEDGER_REMOTE"`
	LedgerIndex   string `envconfig:"LEDGER_INDEX"`
	LedgerLatency string `envconfig:"LEDGER_LATENCY"`
	LedgerTimeout string `envconfig:"LEDGER_TIMEOUT"`

	WalletPath       string `envconfig:"WALLET_PATH"`
	WalletStrength   string `envconfig:"WALLET_STRENGTH"`
	WalletDerivation string `envconfig:"WALLET_DERIVATION"`
	WalletLabel      string `envconfig:"WALLET_LABEL"`

	ServerAddr    string `envconfig:"SERVER_ADDR"`
	ServerPort    string `envconfig:"SERVER_PORT"`
	ServerAllowed string `envconfig:"SERVER_ALLOWED"`
	ServerCORS    string `envconfig:"SERVER_CORS"`
	ServerStorage string `envconfig:"SERVER_STORAGE"`

	LogLevel string `envconfig:"LOG_LEVEL"`
	LogFile  string `envconfig:"LOG_FILE"`
	LogJSON  string `envconfig:"LOG_JSON"`
}

// LoadEnv reads EWALLET_* variables into a key/value map using the same keys
// as the config file.
func LoadEnv() (map[string]string, error) {
	var e envValues
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	values := make(map[string]string)
	set := func(key, value string) {
		if value != "" {
			values[key] = value
		}
	}
	set("network", e.Network)
	set("datadir", e.DataDir)
	set("ledger.mode", e.LedgerMode)
	set("ledger.remote", e.LedgerRemote)
	set("ledger.index", e.LedgerIndex)
	set("ledger.latency", e.LedgerLatency)
	set("ledger.timeout", e.LedgerTimeout)
	set("wallet.path", e.WalletPath)
	set("wallet.strength", e.WalletStrength)
	set("wallet.derivation", e.WalletDerivation)
	set("wallet.label", e.WalletLabel)
	set("server.addr", e.ServerAddr)
	set("server.port", e.ServerPort)
	set("server.allowed", e.ServerAllowed)
	set("server.cors", e.ServerCORS)
	set("server.storage", e.ServerStorage)
	set("log.level", e.LogLevel)
	set("log.file", e.LogFile)
	set("log.json", e.LogJSON)
	return values, nil
}

// ApplyEnv applies EWALLET_* overrides to cfg.
func ApplyEnv(cfg *Config) error {
	values, err := LoadEnv()
	if err != nil {
		return err
	}
	if err := ApplyFileConfig(cfg, values); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}
