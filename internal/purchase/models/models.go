package models

import (
	"time"

	id "eshmarket/pkg/domain"
)

// Status is the purchase request lifecycle state. Terminal states
// (granted, rejected) are immutable.
type Status string

const (
	StatusPendingReview Status = "pending_review"
	StatusGranted       Status = "granted"
	StatusRejected      Status = "rejected"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusGranted || s == StatusRejected
}

// Path is the verification path chosen by the buyer.
type Path string

const (
	// PathProofReview verifies the purchase via submitted proof media
	// (reviewer approval or the keyword heuristic).
	PathProofReview Path = "proof_review"
	// PathDonation verifies the purchase against the account balance or a
	// recent donation-ledger entry.
	PathDonation Path = "donation"
)

// Request is one attempt to acquire one product by one account.
type Request struct {
	ID        id.PurchaseID
	AccountID id.AccountID
	ProductID id.ProductID
	Path      Path
	Status    Status

	// ProofFilename names the uploaded artifact, proof-review path only.
	ProofFilename string
	// MessageID is the reviewer-channel message carrying the approval link.
	// Stored before the request is considered pending so the message can
	// always be superseded later.
	MessageID string

	CreatedAt time.Time
	// ResolvedAt is set exactly once, when the request reaches a terminal
	// status.
	ResolvedAt *time.Time
}

// ReviewToken ties an outstanding reviewer notification back to its
// originating request. Consumed at most once; a token with no matching
// request is treated as not found.
type ReviewToken struct {
	Value      string
	RequestID  id.PurchaseID
	CreatedAt  time.Time
	ExpiresAt  time.Time
	ConsumedAt time.Time
}

// Consumed reports whether the token was already spent.
func (t *ReviewToken) Consumed() bool {
	return !t.ConsumedAt.IsZero()
}

// Expired reports whether the token is past its expiry at the given time.
func (t *ReviewToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
