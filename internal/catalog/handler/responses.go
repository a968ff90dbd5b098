package handler

import (
	"time"

	"eshmarket/internal/catalog/models"
)

// ProductResponse is the public catalog view. It deliberately omits the
// deliverable content; buyers receive that only through fulfillment.
type ProductResponse struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Price        models.Price `json:"price"`
	ShowcaseLink string       `json:"showcase_link,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// AdminProductResponse additionally exposes the deliverable to admins.
type AdminProductResponse struct {
	ProductResponse
	Content string `json:"content"`
}

func toProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID.String(),
		Title:        p.Title,
		Description:  p.Description,
		Price:        p.Price,
		ShowcaseLink: p.ShowcaseLink,
		CreatedAt:    p.CreatedAt,
	}
}

func toAdminProductResponse(p *models.Product) AdminProductResponse {
	return AdminProductResponse{
		ProductResponse: toProductResponse(p),
		Content:         p.Content,
	}
}
