// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "eshmarket/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing AccountID where ProductID is expected.
type (
	AccountID  uuid.UUID
	ProductID  uuid.UUID
	PurchaseID uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseAccountID(s string) (AccountID, error) {
	id, err := parseUUID(s, "account ID")
	return AccountID(id), err
}

func ParseProductID(s string) (ProductID, error) {
	id, err := parseUUID(s, "product ID")
	return ProductID(id), err
}

func ParsePurchaseID(s string) (PurchaseID, error) {
	id, err := parseUUID(s, "purchase ID")
	return PurchaseID(id), err
}

// New functions - for fresh identifiers.

func NewAccountID() AccountID   { return AccountID(uuid.New()) }
func NewProductID() ProductID   { return ProductID(uuid.New()) }
func NewPurchaseID() PurchaseID { return PurchaseID(uuid.New()) }

// String methods - for logging and debugging.

func (id AccountID) String() string  { return uuid.UUID(id).String() }
func (id ProductID) String() string  { return uuid.UUID(id).String() }
func (id PurchaseID) String() string { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id AccountID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ProductID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id PurchaseID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}
