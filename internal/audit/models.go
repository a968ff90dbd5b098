package audit

import (
	"time"

	id "eshmarket/pkg/domain"
)

// Event is emitted from domain logic to capture key purchase actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	AccountID id.AccountID
	ProductID id.ProductID
	RequestID id.PurchaseID
	Path      string
	Action    Action
	Detail    string
}

type Action string

const (
	ActionReviewSubmitted  Action = "review_submitted"
	ActionPurchaseGranted  Action = "purchase_granted"
	ActionPurchaseRejected Action = "purchase_rejected"
	ActionReviewExpired    Action = "review_expired"
)
