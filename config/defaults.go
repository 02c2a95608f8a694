package config

import "time"

// Default values shared by both networks.
const (
	DefaultLedgerMode = "local"
	DefaultLatency    = 200 * time.Millisecond
	DefaultTimeout    = 10 * time.Second
	DefaultIndexURL   = "https://blockstream.info/testnet/api"
	DefaultStrength   = 128
	DefaultDerivation = "flat"
	DefaultLabel      = "My Wallet"
)

// DefaultMainnet returns the default configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Ledger: LedgerConfig{
			Mode:    DefaultLedgerMode,
			Remote:  "http://127.0.0.1:8545",
			Index:   "https://blockstream.info/api",
			Latency: DefaultLatency,
			Timeout: DefaultTimeout,
		},
		Wallet: WalletConfig{
			Strength:   DefaultStrength,
			Derivation: DefaultDerivation,
			Label:      DefaultLabel,
		},
		Server: ServerConfig{
			Addr:       "127.0.0.1",
			Port:       8545,
			AllowedIPs: []string{"127.0.0.1"},
			Storage:    "memory",
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.Ledger.Remote = "http://127.0.0.1:8645"
	cfg.Ledger.Index = DefaultIndexURL
	cfg.Server.Port = 8645
	return cfg
}

// Default returns the default configuration for the given network.
// Anything other than mainnet gets the testnet defaults.
func Default(network NetworkType) *Config {
	switch network {
	case Mainnet:
		return DefaultMainnet()
	default:
		return DefaultTestnet()
	}
}
