package models

import "time"

// Donation is one append-only ledger entry pushed by the tipping platform's
// webhook. Amount is quantity * unit price in fiat units.
type Donation struct {
	TransactionID string
	SupporterName string
	Amount        int64
	CreatedAt     time.Time
}
