package models

import (
	"time"

	id "eshmarket/pkg/domain"
)

// Balance mirrors the dual price denominations: premium currency and fiat.
type Balance struct {
	DiamondLocks int64 `json:"dl"`
	Money        int64 `json:"money"`
}

// Account is a storefront user. ExternalID is the identity-provider user id
// (the OAuth exchange itself lives outside this service).
type Account struct {
	ID                  id.AccountID
	ExternalID          string
	Username            string
	AvatarURL           string
	IsAdmin             bool
	Balance             Balance
	PurchasedProductIDs []id.ProductID
	CreatedAt           time.Time
}

// Owns reports whether the account already holds an entitlement for the product.
func (a *Account) Owns(productID id.ProductID) bool {
	for _, owned := range a.PurchasedProductIDs {
		if owned == productID {
			return true
		}
	}
	return false
}
