package ledgerd

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/electrowallet/electrowallet/internal/ledger"
)

// txPayload mirrors ledger.Entry with every field optional so that type
// and presence can be checked before accepting an entry.
type txPayload struct {
	ID        any `json:"id"`
	From      any `json:"from"`
	To        any `json:"to"`
	Amount    any `json:"amount"`
	Fee       any `json:"fee"`
	Timestamp any `json:"timestamp"`
	Confirmed any `json:"confirmed"`
}

// parseEntry validates a POST /tx body. id, from and to must be non-empty
// strings; amount and fee must be non-negative integral numbers. A missing
// timestamp defaults to now and confirmed defaults to false.
func parseEntry(body []byte, now time.Time) (ledger.Entry, error) {
	var p txPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return ledger.Entry{}, fmt.Errorf("decode: %w", err)
	}

	var e ledger.Entry
	var ok bool
	if e.ID, ok = nonEmptyString(p.ID); !ok {
		return ledger.Entry{}, fmt.Errorf("id missing")
	}
	if e.From, ok = nonEmptyString(p.From); !ok {
		return ledger.Entry{}, fmt.Errorf("from missing")
	}
	if e.To, ok = nonEmptyString(p.To); !ok {
		return ledger.Entry{}, fmt.Errorf("to missing")
	}
	if e.Amount, ok = amount(p.Amount); !ok {
		return ledger.Entry{}, fmt.Errorf("amount is not a non-negative integer")
	}
	if e.Fee, ok = amount(p.Fee); !ok {
		return ledger.Entry{}, fmt.Errorf("fee is not a non-negative integer")
	}

	switch ts := p.Timestamp.(type) {
	case nil:
		e.Timestamp = float64(now.UnixNano()) / 1e9
	case float64:
		e.Timestamp = ts
	default:
		return ledger.Entry{}, fmt.Errorf("timestamp is not a number")
	}

	e.Confirmed = truthy(p.Confirmed)
	return e, nil
}

func nonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok && s != ""
}

func amount(v any) (int64, bool) {
	f, ok := v.(float64)
	if !ok || f < 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// truthy follows loose boolean coercion: false, 0, "", null and a missing
// field are false; everything else is true.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}
