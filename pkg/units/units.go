// Package units converts between satoshis and decimal BTC amounts.
package units

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Denominations.
const (
	Decimals = 8
	Coin     = 100_000_000 // satoshis per BTC
)

var maxSats = decimal.NewFromInt(math.MaxInt64)

// FormatBTC renders satoshis as a BTC amount with all eight decimals.
func FormatBTC(sats int64) string {
	return decimal.New(sats, -Decimals).StringFixed(Decimals)
}

// ParseBTC converts a decimal BTC string to satoshis.
func ParseBTC(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative amount")
	}
	sats := d.Shift(Decimals)
	if !sats.IsInteger() {
		return 0, fmt.Errorf("too many decimal places (max %d)", Decimals)
	}
	if sats.GreaterThan(maxSats) {
		return 0, fmt.Errorf("amount too large")
	}
	return sats.IntPart(), nil
}

// ParseAmount accepts either a BTC amount ("0.5") or a satoshi amount with
// a "sat" or "sats" suffix ("1500sats").
func ParseAmount(s string) (int64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, suffix := range []string{"sats", "sat"} {
		if raw, ok := strings.CutSuffix(s, suffix); ok {
			d, err := decimal.NewFromString(strings.TrimSpace(raw))
			if err != nil {
				return 0, fmt.Errorf("invalid amount %q: %w", s, err)
			}
			if d.IsNegative() {
				return 0, fmt.Errorf("negative amount")
			}
			if !d.IsInteger() {
				return 0, fmt.Errorf("satoshi amount must be whole")
			}
			if d.GreaterThan(maxSats) {
				return 0, fmt.Errorf("amount too large")
			}
			return d.IntPart(), nil
		}
	}
	return ParseBTC(s)
}
