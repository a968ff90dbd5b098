package handler

import (
	"strings"

	"eshmarket/internal/catalog/models"
	dErrors "eshmarket/pkg/domain-errors"
)

// ProductRequest is the admin payload for creating or updating a product.
type ProductRequest struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Price        models.Price `json:"price"`
	ShowcaseLink string       `json:"showcase_link,omitempty"`
	Content      string       `json:"content,omitempty"`
}

func (r *ProductRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.ShowcaseLink = strings.TrimSpace(r.ShowcaseLink)
}

func (r *ProductRequest) Validate() error {
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if r.Price.DiamondLocks <= 0 || r.Price.Money <= 0 {
		return dErrors.New(dErrors.CodeValidation, "price.dl and price.money must be positive")
	}
	return nil
}
