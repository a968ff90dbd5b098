package models

import (
	"strings"
	"time"

	id "eshmarket/pkg/domain"
	dErrors "eshmarket/pkg/domain-errors"
)

// Price is the dual-denomination price of a product: an in-game
// premium-currency amount (diamond locks) and a fiat amount.
type Price struct {
	DiamondLocks int64 `json:"dl"`
	Money        int64 `json:"money"`
}

// Product is a purchasable digital item. Content is the deliverable script
// body; it is sent to the buyer as the fulfillment payload and must never
// appear in public catalog responses.
type Product struct {
	ID           id.ProductID
	Title        string
	Description  string
	Price        Price
	ShowcaseLink string
	Content      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewProduct validates and constructs a product.
func NewProduct(productID id.ProductID, title, description string, price Price, showcaseLink, content string, now time.Time) (*Product, error) {
	p := &Product{
		ID:           productID,
		Title:        strings.TrimSpace(title),
		Description:  strings.TrimSpace(description),
		Price:        price,
		ShowcaseLink: strings.TrimSpace(showcaseLink),
		Content:      content,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate enforces product invariants.
func (p *Product) Validate() error {
	if p.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "product title is required")
	}
	if len(p.Title) > 128 {
		return dErrors.New(dErrors.CodeValidation, "product title is too long")
	}
	if p.Price.DiamondLocks <= 0 || p.Price.Money <= 0 {
		return dErrors.New(dErrors.CodeValidation, "both price denominations must be positive")
	}
	return nil
}

// Filename is the name the deliverable is shipped under.
func (p *Product) Filename() string {
	return p.Title + ".lua"
}
