package service

import (
	"context"
	"time"

	accountmodels "eshmarket/internal/account/models"
	catalogmodels "eshmarket/internal/catalog/models"
	donationmodels "eshmarket/internal/donation/models"
	"eshmarket/internal/purchase/models"
	id "eshmarket/pkg/domain"
)

//go:generate mockgen -source=contracts.go -destination=mocks/mocks.go -package=mocks
//go:generate mockgen -source=../../notify/notify.go -destination=mocks/notify_mock.go -package=mocks Channel

// Store persists purchase requests and review tokens. ConsumeToken and
// TransitionStatus must be atomic check-then-act operations; the coordinator
// relies on that for its at-most-once grant guarantee.
type Store interface {
	CreateRequest(ctx context.Context, r *models.Request, token *models.ReviewToken) error
	FindRequest(ctx context.Context, requestID id.PurchaseID) (*models.Request, error)
	ConsumeToken(ctx context.Context, value string, now time.Time) (*models.ReviewToken, error)
	ReleaseToken(ctx context.Context, value string) error
	TransitionStatus(ctx context.Context, requestID id.PurchaseID, from, to models.Status, now time.Time) error
	ExpireTokens(ctx context.Context, now time.Time) ([]*models.ReviewToken, error)
	ListRequests(ctx context.Context) ([]*models.Request, error)
}

// AccountStore is the entitlement-store boundary. Grant must be atomic:
// ownership check, optional debit, and append happen as one operation.
type AccountStore interface {
	FindByID(ctx context.Context, accountID id.AccountID) (*accountmodels.Account, error)
	Grant(ctx context.Context, accountID id.AccountID, productID id.ProductID, debit int64) error
	Credit(ctx context.Context, username string, amount int64) (*accountmodels.Account, error)
}

// ProductStore resolves goods records.
type ProductStore interface {
	FindByID(ctx context.Context, productID id.ProductID) (*catalogmodels.Product, error)
}

// DonationLedger is the read-only projection queried during the
// donation-match path.
type DonationLedger interface {
	FindMatch(ctx context.Context, supporterName string, amount int64, since time.Time) (*donationmodels.Donation, error)
}

// ProofVerifier is the keyword-heuristic variant of proof verification.
// When configured, it replaces human review on the proof path entirely.
type ProofVerifier interface {
	Verify(ctx context.Context, image []byte) (bool, error)
}
