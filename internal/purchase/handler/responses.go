package handler

import (
	"time"

	"eshmarket/internal/audit"
	"eshmarket/internal/purchase/models"
)

// RequestResponse is the wire shape of a purchase request.
type RequestResponse struct {
	ID         string     `json:"id"`
	AccountID  string     `json:"account_id"`
	ProductID  string     `json:"product_id"`
	Path       string     `json:"path"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

func toResponse(req *models.Request) RequestResponse {
	return RequestResponse{
		ID:         req.ID.String(),
		AccountID:  req.AccountID.String(),
		ProductID:  req.ProductID.String(),
		Path:       string(req.Path),
		Status:     string(req.Status),
		CreatedAt:  req.CreatedAt,
		ResolvedAt: req.ResolvedAt,
	}
}

func toResponses(reqs []*models.Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, toResponse(req))
	}
	return out
}

// DonationResponse is the wire shape of a donation-path outcome. The game
// client only needs a verdict and a line it can show in chat.
type DonationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AuditEventResponse is the wire shape of one audit trail entry.
type AuditEventResponse struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	ProductID string    `json:"product_id"`
	Path      string    `json:"path"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
}

func toAuditResponses(events []audit.Event) []AuditEventResponse {
	out := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, AuditEventResponse{
			Timestamp: e.Timestamp,
			RequestID: e.RequestID.String(),
			ProductID: e.ProductID.String(),
			Path:      e.Path,
			Action:    string(e.Action),
			Detail:    e.Detail,
		})
	}
	return out
}
