package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	Network string
	Testnet bool
	DataDir string
	Config  string

	// Ledger
	Ledger  string
	Remote  string
	Index   string
	Latency string
	Timeout string

	// Wallet
	WalletPath string
	Strength   int
	Derivation string
	Label      string

	// Server
	ServerAddr    string
	ServerPort    int
	ServerAllowed string
	ServerCORS    string
	ServerStorage string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args (subcommand and its arguments)
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetLogJSON bool
}

// ParseFlags parses the global flags in args. Parsing stops at the first
// positional argument; it and everything after it end up in Flags.Args.
func ParseFlags(name string, args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	// Core
	fs.StringVar(&f.Network, "network", "", "Network type (mainnet or testnet)")
	fs.BoolVar(&f.Testnet, "testnet", false, "Shorthand for --network=testnet")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	// Ledger
	fs.StringVar(&f.Ledger, "ledger", "", "Ledger backend (local, remote, index)")
	fs.StringVar(&f.Remote, "remote", "", "Remote ledger base URL")
	fs.StringVar(&f.Index, "index", "", "Esplora index base URL")
	fs.StringVar(&f.Latency, "latency", "", "Simulated send latency")
	fs.StringVar(&f.Timeout, "timeout", "", "HTTP timeout")

	// Wallet
	fs.StringVar(&f.WalletPath, "wallet-path", "", "Keystore directory")
	fs.IntVar(&f.Strength, "strength", 0, "Mnemonic strength in bits (128 or 256)")
	fs.StringVar(&f.Derivation, "derivation", "", "Key derivation (flat or bip32)")
	fs.StringVar(&f.Label, "label", "", "Wallet label")

	// Server
	fs.StringVar(&f.ServerAddr, "addr", "", "Ledger server listen address")
	fs.IntVar(&f.ServerPort, "port", 0, "Ledger server listen port")
	fs.StringVar(&f.ServerAllowed, "allowed", "", "Allowed IPs for the ledger server (comma-separated)")
	fs.StringVar(&f.ServerCORS, "cors", "", "Allowed CORS origins (comma-separated)")
	fs.StringVar(&f.ServerStorage, "storage", "", "Ledger server storage (memory or badger)")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			f.Help = true
			return f, nil
		}
		return nil, err
	}

	if f.Testnet {
		f.Network = string(Testnet)
	}
	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.Args = fs.Args()

	return f, nil
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) error {
	// Core
	if f.Network != "" {
		cfg.Network = NetworkType(strings.ToLower(f.Network))
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// Ledger
	if f.Ledger != "" {
		cfg.Ledger.Mode = strings.ToLower(f.Ledger)
	}
	if f.Remote != "" {
		cfg.Ledger.Remote = f.Remote
	}
	if f.Index != "" {
		cfg.Ledger.Index = f.Index
	}
	if f.Latency != "" {
		d, err := parseDuration(f.Latency)
		if err != nil {
			return fmt.Errorf("--latency: %w", err)
		}
		cfg.Ledger.Latency = d
	}
	if f.Timeout != "" {
		d, err := parseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("--timeout: %w", err)
		}
		cfg.Ledger.Timeout = d
	}

	// Wallet
	if f.WalletPath != "" {
		cfg.Wallet.Path = f.WalletPath
	}
	if f.Strength != 0 {
		cfg.Wallet.Strength = f.Strength
	}
	if f.Derivation != "" {
		cfg.Wallet.Derivation = strings.ToLower(f.Derivation)
	}
	if f.Label != "" {
		cfg.Wallet.Label = f.Label
	}

	// Server
	if f.ServerAddr != "" {
		cfg.Server.Addr = f.ServerAddr
	}
	if f.ServerPort != 0 {
		cfg.Server.Port = f.ServerPort
	}
	if f.ServerAllowed != "" {
		cfg.Server.AllowedIPs = parseStringList(f.ServerAllowed)
	}
	if f.ServerCORS != "" {
		cfg.Server.CORSOrigins = parseStringList(f.ServerCORS)
	}
	if f.ServerStorage != "" {
		cfg.Server.Storage = strings.ToLower(f.ServerStorage)
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
	return nil
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// FlagUsage describes the global flags understood by every binary.
const FlagUsage = `Core Options:
  --network       Network type: testnet (default) or mainnet
  --testnet       Shorthand for --network=testnet
  --datadir       Data directory (default: ~/.electrowallet)
  --config, -c    Config file path (default: <datadir>/ewallet.conf)

Ledger Options:
  --ledger        Ledger backend: local (default), remote or index
  --remote        Remote ledger URL (mainnet: http://127.0.0.1:8545, testnet: :8645)
  --index         Esplora index URL (default: blockstream.info)
  --latency       Simulated send latency, e.g. 200ms (negative disables)
  --timeout       HTTP timeout, e.g. 10s

Wallet Options:
  --wallet-path   Keystore directory (default: <datadir>/<network>/keystore)
  --strength      Mnemonic strength: 128 (default) or 256
  --derivation    Key derivation: flat (default) or bip32
  --label         Wallet label (default: "My Wallet")

Server Options (ledgerd):
  --addr          Listen address (default: 127.0.0.1)
  --port          Listen port (mainnet: 8545, testnet: 8645)
  --allowed       Allowed client IPs (comma-separated)
  --cors          Allowed CORS origins (comma-separated)
  --storage       memory (default) or badger

Logging Options:
  --log-level     Log level: debug, info, warn, error (default: info)
  --log-file      Log file path (default: stdout)
  --log-json      Output logs as JSON

Every option can also be set in the config file or through an EWALLET_*
environment variable (for example EWALLET_LEDGER_MODE=remote).
`

// Load loads configuration with the following precedence:
// 1. Default values
// 2. Auto-create data dirs + default config (idempotent)
// 3. Config file
// 4. Environment (EWALLET_*)
// 5. Command-line flags
//
// When --help or --version is given, Load returns a nil Config and the
// parsed flags so the caller can print what was asked for.
func Load(name string, args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(name, args)
	if err != nil {
		return nil, nil, err
	}
	if flags.Help || flags.Version {
		return nil, flags, nil
	}

	env, err := LoadEnv()
	if err != nil {
		return nil, nil, err
	}

	// Determine network first (needed for defaults)
	network := Testnet
	switch {
	case flags.Network != "":
		network = NetworkType(strings.ToLower(flags.Network))
	case env["network"] != "":
		network = NetworkType(strings.ToLower(env["network"]))
	}

	cfg := Default(network)

	// Data directory: flag, then environment.
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	} else if dir := env["datadir"]; dir != "" {
		cfg.DataDir = dir
	}

	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	if err := ApplyFileConfig(cfg, env); err != nil {
		return nil, nil, fmt.Errorf("applying environment: %w", err)
	}

	// Apply flags (highest precedence)
	if err := ApplyFlags(cfg, flags); err != nil {
		return nil, nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	// A network switched by the file or environment has its own directories.
	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	return cfg, flags, nil
}

// EnsureDataDirs creates the data directory structure and a default config
// file if they don't already exist. Safe to call on every startup.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.NetworkDir(),
		cfg.DBDir(),
		cfg.KeystoreDir(),
		cfg.ServerDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath, cfg.Network); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}

	return nil
}
