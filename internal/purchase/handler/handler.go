package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eshmarket/internal/audit"
	"eshmarket/internal/auth/session"
	"eshmarket/internal/purchase/models"
	id "eshmarket/pkg/domain"
	dErrors "eshmarket/pkg/domain-errors"
	"eshmarket/pkg/platform/httputil"
	request "eshmarket/pkg/platform/middleware/request"
)

// Service defines the purchase operations the transport layer depends on.
type Service interface {
	InitiateProofReview(ctx context.Context, accountID id.AccountID, productID id.ProductID, proof []byte, proofFilename string) (*models.Request, error)
	InitiateDonation(ctx context.Context, accountID id.AccountID, productID id.ProductID) (*models.Request, error)
	Approve(ctx context.Context, tokenValue string) (*models.Request, error)
	ListRequests(ctx context.Context) ([]*models.Request, error)
	AuditTrail(ctx context.Context, accountID id.AccountID) ([]audit.Event, error)
}

// Handler exposes the two purchase paths over HTTP.
type Handler struct {
	service       Service
	maxProofBytes int64
	logger        *slog.Logger
}

func New(service Service, maxProofBytes int64, logger *slog.Logger) *Handler {
	return &Handler{service: service, maxProofBytes: maxProofBytes, logger: logger}
}

// Register mounts the session-gated purchase routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/purchase/path-a", h.HandleSubmitProof)
	// GET with a side effect, kept for compatibility with the published
	// storefront API the game client already speaks.
	r.Get("/purchase/path-b", h.HandleDonationMatch)
}

// RegisterPublic mounts the approval route. It carries no session: the
// review token in the query string is the credential, minted for the
// reviewer channel only.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/purchase/path-a/approve", h.HandleApprove)
}

// RegisterAdmin mounts the purchase history; callers wrap it with the
// admin-token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/purchases", h.HandleList)
	r.Get("/admin/purchases/audit/{accountID}", h.HandleAuditTrail)
}

// HandleSubmitProof accepts a multipart form with a `proof` image and a
// `goodsId` field and starts the proof-review path.
func (h *Handler) HandleSubmitProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := session.GetAccountID(ctx)

	if err := r.ParseMultipartForm(h.maxProofBytes); err != nil {
		if errors.As(err, new(*http.MaxBytesError)) {
			httputil.WriteError(w, dErrors.New(dErrors.CodePayloadTooLarge, "proof image is too large"))
			return
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "expected a multipart form"))
		return
	}

	productID, err := id.ParseProductID(r.FormValue("goodsId"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "goodsId must be a valid product id"))
		return
	}

	file, header, err := r.FormFile("proof")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "a proof file is required"))
		return
	}
	defer file.Close()

	proof, err := io.ReadAll(io.LimitReader(file, h.maxProofBytes+1))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "failed to read the proof file"))
		return
	}

	req, err := h.service.InitiateProofReview(ctx, accountID, productID, proof, header.Filename)
	if err != nil {
		h.logger.WarnContext(ctx, "proof submission failed",
			"request_id", request.GetRequestID(ctx),
			"account_id", accountID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	status := http.StatusAccepted
	if req.Status == models.StatusGranted {
		status = http.StatusOK
	}
	httputil.WriteJSON(w, status, toResponse(req))
}

// HandleApprove resolves a pending request from the review token carried in
// the query string.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tokenValue := r.URL.Query().Get("token")
	if tokenValue == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "token query parameter is required"))
		return
	}

	req, err := h.service.Approve(ctx, tokenValue)
	if err != nil {
		h.logger.WarnContext(ctx, "approval failed",
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(req))
}

// HandleDonationMatch runs the donation path for the product in `goodsId`.
func (h *Handler) HandleDonationMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := session.GetAccountID(ctx)

	productID, err := id.ParseProductID(r.URL.Query().Get("goodsId"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "goodsId must be a valid product id"))
		return
	}

	req, err := h.service.InitiateDonation(ctx, accountID, productID)
	if err != nil {
		h.logger.InfoContext(ctx, "donation match declined",
			"request_id", request.GetRequestID(ctx),
			"account_id", accountID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DonationResponse{
		Success: req.Status == models.StatusGranted,
		Message: "purchase granted, check your direct messages for the delivery",
	})
}

// HandleList returns the full purchase history, newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.service.ListRequests(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(reqs))
}

// HandleAuditTrail returns the audit events recorded for one account.
func (h *Handler) HandleAuditTrail(w http.ResponseWriter, r *http.Request) {
	accountID, err := id.ParseAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "accountID must be a valid account id"))
		return
	}
	events, err := h.service.AuditTrail(r.Context(), accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAuditResponses(events))
}
