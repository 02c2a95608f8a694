package ledger

import (
	"math"
	"sort"
	"time"
)

// FaucetAddress is the sender recorded on credited funds.
const FaucetAddress = "faucet"

// Entry is one record of the append-only ledger log. Only Confirmed may
// change after an entry is written.
type Entry struct {
	ID        string  `json:"id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    int64   `json:"amount"`
	Fee       int64   `json:"fee"`
	Timestamp float64 `json:"timestamp"` // unix seconds
	Confirmed bool    `json:"confirmed"`
}

// Direction is the side of a transaction relative to the viewing address.
type Direction string

const (
	Sent     Direction = "sent"
	Received Direction = "received"
)

// Status is the settlement state of a transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Transaction is a per-address view of a ledger entry or chain transaction.
type Transaction struct {
	ID            string    `json:"id"`
	Amount        int64     `json:"amount"`
	Fee           int64     `json:"fee"`
	Timestamp     time.Time `json:"timestamp"`
	Confirmations int64     `json:"confirmations"`
	Direction     Direction `json:"direction"`
	Counterparty  string    `json:"counterparty"`
	Status        Status    `json:"status"`
}

// Balance returns Σ amount(to=address) − Σ (amount+fee)(from=address).
// A self-transfer counts on both sides and nets to −fee.
func Balance(entries []Entry, address string) int64 {
	var bal int64
	for _, e := range entries {
		if e.To == address {
			bal += e.Amount
		}
		if e.From == address {
			bal -= e.Amount + e.Fee
		}
	}
	return bal
}

// MapEntries converts the entries touching address into transactions,
// most recent first. Entries with equal timestamps keep the most recently
// appended one first.
func MapEntries(entries []Entry, address string) []Transaction {
	txs := make([]Transaction, 0)
	// Walk backwards so the stable sort leaves later appends in front.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.From != address && e.To != address {
			continue
		}
		txs = append(txs, entryView(e, address))
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})
	return txs
}

func entryView(e Entry, address string) Transaction {
	tx := Transaction{
		ID:        e.ID,
		Amount:    e.Amount,
		Fee:       e.Fee,
		Timestamp: unixTime(e.Timestamp),
		Status:    StatusPending,
	}
	if e.From == address {
		tx.Direction = Sent
		tx.Counterparty = e.To
	} else {
		tx.Direction = Received
		tx.Counterparty = e.From
	}
	if e.Confirmed {
		tx.Status = StatusConfirmed
		tx.Confirmations = 1
	}
	return tx
}

// unixTime converts fractional unix seconds to a time.Time.
func unixTime(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

// unixSeconds is the inverse of unixTime.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
