package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFile reads an ewallet.conf file into a key/value map. A missing file
// yields an empty map.
//
// Lines are "key = value". A "[ledger]" header prefixes the following keys
// with "ledger.", so "mode = remote" under it is "ledger.mode". "#" starts a
// comment, also after an unquoted value. Values may be single or double quoted.
func LoadFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values := make(map[string]string)
	section := ""
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		if line[0] == '[' {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("%s:%d: unterminated section header", path, n)
			}
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%s:%d: expected key = value", path, n)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return nil, fmt.Errorf("%s:%d: empty key", path, n)
		}
		if section != "" && !strings.Contains(key, ".") {
			key = section + "." + key
		}
		values[key] = unquote(strings.TrimSpace(value))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return values, nil
}

// unquote strips matching quotes, or a trailing comment from a bare value.
func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	if i := strings.Index(v, " #"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	return v
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a config value by key. Unknown keys are ignored.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Core
	case "network":
		cfg.Network = NetworkType(strings.ToLower(value))
	case "datadir":
		cfg.DataDir = value

	// Ledger
	case "ledger.mode", "ledger":
		cfg.Ledger.Mode = strings.ToLower(value)
	case "ledger.remote":
		cfg.Ledger.Remote = value
	case "ledger.index":
		cfg.Ledger.Index = value
	case "ledger.latency":
		d, err := parseDuration(value)
		if err != nil {
			return err
		}
		cfg.Ledger.Latency = d
	case "ledger.timeout":
		d, err := parseDuration(value)
		if err != nil {
			return err
		}
		cfg.Ledger.Timeout = d

	// Wallet
	case "wallet.path":
		cfg.Wallet.Path = value
	case "wallet.strength":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Wallet.Strength = n
	case "wallet.derivation":
		cfg.Wallet.Derivation = strings.ToLower(value)
	case "wallet.label":
		cfg.Wallet.Label = value

	// Server
	case "server.addr":
		cfg.Server.Addr = value
	case "server.port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Server.Port = port
	case "server.allowed":
		cfg.Server.AllowedIPs = parseStringList(value)
	case "server.cors":
		cfg.Server.CORSOrigins = parseStringList(value)
	case "server.storage":
		cfg.Server.Storage = strings.ToLower(value)

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
	}
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// parseDuration accepts Go duration syntax ("250ms", "2s") or a bare
// integer number of milliseconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}

// parseStringList parses a comma-separated list.
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// WriteDefaultConfig writes a default configuration file.
func WriteDefaultConfig(path string, network NetworkType) error {
	cfg := Default(network)
	content := `# ElectroWallet Configuration
#
# Shared by ewallet and ledgerd. Every key can also be set through an
# EWALLET_* environment variable (ledger.mode -> EWALLET_LEDGER_MODE) or a
# command-line flag.

# Network: mainnet or testnet
network = ` + string(network) + `

# Data directory (default: ~/.electrowallet)
# datadir = ~/.electrowallet

# ============================================================================
# Ledger
# ============================================================================

# Backend: local (on-device log), remote (ledgerd) or index (read-only Esplora)
ledger.mode = ` + cfg.Ledger.Mode + `
ledger.remote = ` + cfg.Ledger.Remote + `
ledger.index = ` + cfg.Ledger.Index + `

# Simulated send latency (negative disables) and HTTP timeout
ledger.latency = ` + cfg.Ledger.Latency.String() + `
ledger.timeout = ` + cfg.Ledger.Timeout.String() + `

# ============================================================================
# Wallet
# ============================================================================

# Mnemonic strength in bits: 128 (12 words) or 256 (24 words)
wallet.strength = ` + strconv.Itoa(cfg.Wallet.Strength) + `

# Key derivation: flat or bip32
wallet.derivation = ` + cfg.Wallet.Derivation + `
wallet.label = ` + cfg.Wallet.Label + `

# Keystore directory (default: <datadir>/<network>/keystore)
# wallet.path =

# ============================================================================
# Ledger server (ledgerd)
# ============================================================================

server.addr = ` + cfg.Server.Addr + `
server.port = ` + strconv.Itoa(cfg.Server.Port) + `
server.allowed = ` + strings.Join(cfg.Server.AllowedIPs, ",") + `
# CORS allowed origins ("*" for all)
# server.cors = http://localhost:3000

# Persistence: memory or badger
server.storage = ` + cfg.Server.Storage + `

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
