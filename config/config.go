// Package config handles application configuration.
//
// Settings are resolved in layers: per-network defaults, the ewallet.conf
// file in the data directory, EWALLET_* environment variables and finally
// command-line flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/electrowallet/electrowallet/pkg/types"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// AddressNetwork returns the address network matching n.
func (n NetworkType) AddressNetwork() types.Network {
	if n == Mainnet {
		return types.Mainnet
	}
	return types.Testnet
}

// ConfigFileName is the name of the config file inside the data directory.
const ConfigFileName = "ewallet.conf"

// Config holds runtime configuration shared by ewallet and ledgerd.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Ledger backend
	Ledger LedgerConfig

	// Wallet
	Wallet WalletConfig

	// Ledger server (ledgerd)
	Server ServerConfig

	// Logging
	Log LogConfig
}

// LedgerConfig selects the ledger backend.
type LedgerConfig struct {
	Mode    string        `conf:"ledger.mode"`   // local, remote or index
	Remote  string        `conf:"ledger.remote"` // ledgerd base URL
	Index   string        `conf:"ledger.index"`  // Esplora base URL
	Latency time.Duration `conf:"ledger.latency"` // simulated send latency, negative disables
	Timeout time.Duration `conf:"ledger.timeout"` // HTTP timeout
}

// WalletConfig holds wallet settings.
type WalletConfig struct {
	Path       string `conf:"wallet.path"`       // keystore directory override
	Strength   int    `conf:"wallet.strength"`   // mnemonic entropy bits
	Derivation string `conf:"wallet.derivation"` // flat or bip32
	Label      string `conf:"wallet.label"`
}

// ServerConfig holds ledger server settings.
type ServerConfig struct {
	Addr        string   `conf:"server.addr"`
	Port        int      `conf:"server.port"`
	AllowedIPs  []string `conf:"server.allowed"`
	CORSOrigins []string `conf:"server.cors"` // Allowed CORS origins ("*" = all).
	Storage     string   `conf:"server.storage"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.electrowallet
//	macOS:   ~/Library/Application Support/ElectroWallet
//	Windows: %APPDATA%\ElectroWallet
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".electrowallet"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "ElectroWallet")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "ElectroWallet")
		}
		return filepath.Join(home, "AppData", "Roaming", "ElectroWallet")
	default:
		return filepath.Join(home, ".electrowallet")
	}
}

// NetworkDir returns the network-specific data directory.
func (c *Config) NetworkDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// DBDir returns the wallet database directory (wallet record and local ledger).
func (c *Config) DBDir() string {
	return filepath.Join(c.NetworkDir(), "db")
}

// KeystoreDir returns the keystore directory.
func (c *Config) KeystoreDir() string {
	if c.Wallet.Path != "" {
		return c.Wallet.Path
	}
	return filepath.Join(c.NetworkDir(), "keystore")
}

// ServerDir returns the ledgerd database directory.
func (c *Config) ServerDir() string {
	return filepath.Join(c.NetworkDir(), "server")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, ConfigFileName)
}
