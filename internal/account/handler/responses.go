package handler

import (
	"time"

	"eshmarket/internal/account/models"
)

// AccountResponse is the API view of an account.
type AccountResponse struct {
	ID                  string         `json:"id"`
	ExternalID          string         `json:"external_id"`
	Username            string         `json:"username"`
	AvatarURL           string         `json:"avatar_url,omitempty"`
	IsAdmin             bool           `json:"is_admin"`
	Balance             models.Balance `json:"balance"`
	PurchasedProductIDs []string       `json:"purchased_product_ids"`
	CreatedAt           time.Time      `json:"created_at"`
}

func toAccountResponse(a *models.Account) AccountResponse {
	purchased := make([]string, 0, len(a.PurchasedProductIDs))
	for _, p := range a.PurchasedProductIDs {
		purchased = append(purchased, p.String())
	}
	return AccountResponse{
		ID:                  a.ID.String(),
		ExternalID:          a.ExternalID,
		Username:            a.Username,
		AvatarURL:           a.AvatarURL,
		IsAdmin:             a.IsAdmin,
		Balance:             a.Balance,
		PurchasedProductIDs: purchased,
		CreatedAt:           a.CreatedAt,
	}
}
