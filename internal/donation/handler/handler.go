package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"eshmarket/internal/donation/models"
	"eshmarket/internal/donation/service"
	dErrors "eshmarket/pkg/domain-errors"
	"eshmarket/pkg/platform/httputil"
	request "eshmarket/pkg/platform/middleware/request"
	"eshmarket/pkg/secrets"
)

// Service defines the interface for donation operations.
type Service interface {
	Ingest(ctx context.Context, cmd *service.IngestCommand) (*models.Donation, error)
	List(ctx context.Context) ([]*models.Donation, error)
}

// Handler receives the tipping platform's webhook pushes and serves the
// admin transaction history.
type Handler struct {
	service Service
	// Shared secret the platform sends in x-webhook-token. When secretHash
	// is set it takes precedence and is verified with bcrypt; otherwise the
	// plaintext secret is compared in constant time.
	secret     string
	secretHash string
	logger     *slog.Logger
}

func New(service Service, secret, secretHash string, logger *slog.Logger) *Handler {
	return &Handler{service: service, secret: secret, secretHash: secretHash, logger: logger}
}

// Register mounts the externally reachable webhook route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/donation-webhook", h.HandleWebhook)
}

// RegisterAdmin mounts the transaction history; callers wrap it with the
// admin-token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/transactions", h.HandleTransactions)
}

// WebhookRequest is the tipping platform's push payload.
type WebhookRequest struct {
	SupporterName string `json:"supporter_message"`
	Quantity      int64  `json:"quantity"`
	UnitPrice     int64  `json:"price"`
	TransactionID string `json:"transaction_id"`
}

// HandleWebhook validates the shared secret and ingests the donation.
// Fails closed: a missing or wrong secret is logged as a potential abuse
// signal and rejected with 401.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	if !h.authorized(r.Header.Get("x-webhook-token")) {
		h.logger.WarnContext(ctx, "donation webhook rejected: bad shared secret",
			"request_id", requestID,
			"remote_addr", r.RemoteAddr,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "unauthorized origin"))
		return
	}

	req, ok := httputil.DecodeJSON[WebhookRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	d, err := h.service.Ingest(ctx, &service.IngestCommand{
		TransactionID: req.TransactionID,
		SupporterName: req.SupporterName,
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "donation ingest failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "donation received and processed successfully",
		"data":    toDonationResponse(d),
	})
}

func (h *Handler) authorized(token string) bool {
	if token == "" {
		return false
	}
	if h.secretHash != "" {
		return secrets.Verify(token, h.secretHash) == nil
	}
	if h.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}

// HandleTransactions returns the donation history, newest first.
func (h *Handler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	donations, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list transactions failed", "error", err, "request_id", request.GetRequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	out := make([]DonationResponse, 0, len(donations))
	for _, d := range donations {
		out = append(out, toDonationResponse(d))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// DonationResponse is the API view of a ledger entry.
type DonationResponse struct {
	TransactionID string    `json:"transaction_id"`
	SupporterName string    `json:"supporter_name"`
	Amount        int64     `json:"amount"`
	CreatedAt     time.Time `json:"created_at"`
}

func toDonationResponse(d *models.Donation) DonationResponse {
	return DonationResponse{
		TransactionID: d.TransactionID,
		SupporterName: d.SupporterName,
		Amount:        d.Amount,
		CreatedAt:     d.CreatedAt,
	}
}
