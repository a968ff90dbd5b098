package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eshmarket/internal/account/models"
	"eshmarket/internal/auth/session"
	id "eshmarket/pkg/domain"
	dErrors "eshmarket/pkg/domain-errors"
	"eshmarket/pkg/platform/httputil"
	request "eshmarket/pkg/platform/middleware/request"
)

// Service defines the interface for account operations.
type Service interface {
	Get(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	Delete(ctx context.Context, accountID id.AccountID) error
}

type Handler struct {
	service  Service
	sessions *session.Manager
	logger   *slog.Logger
}

func New(service Service, sessions *session.Manager, logger *slog.Logger) *Handler {
	return &Handler{service: service, sessions: sessions, logger: logger}
}

// Register mounts session-scoped routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/me", h.HandleMe)
	r.Post("/logout", h.HandleLogout)
}

// RegisterAdmin mounts user-management routes; callers wrap them with the
// admin-token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/users", h.HandleList)
	r.Get("/admin/users/{id}", h.HandleGet)
	r.Delete("/admin/users/{id}", h.HandleDelete)
	r.Post("/admin/sessions", h.HandleMintSession)
}

// HandleMe returns the authenticated account.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := session.GetAccountID(ctx)
	if accountID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "user not authenticated"))
		return
	}
	a, err := h.service.Get(ctx, accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAccountResponse(a))
}

// HandleLogout clears the session cookie.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleList returns all accounts.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accounts, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list accounts failed", "error", err, "request_id", request.GetRequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleGet returns one account.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, err := id.ParseAccountID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid account id"))
		return
	}
	a, err := h.service.Get(ctx, accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAccountResponse(a))
}

// HandleDelete removes an account.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, err := id.ParseAccountID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid account id"))
		return
	}
	if err := h.service.Delete(ctx, accountID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

// MintSessionRequest identifies the account an operator mints a session for.
type MintSessionRequest struct {
	AccountID string `json:"account_id"`
}

// HandleMintSession issues a session cookie for an account. Admin-guarded;
// used by operators and integration tooling since the OAuth exchange itself
// is external to this service.
func (h *Handler) HandleMintSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeJSON[MintSessionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	accountID, err := id.ParseAccountID(req.AccountID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid account id"))
		return
	}
	a, err := h.service.Get(ctx, accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	token, err := h.sessions.Issue(a.ID, a.IsAdmin)
	if err != nil {
		h.logger.ErrorContext(ctx, "mint session failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	h.sessions.SetCookie(w, token)
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"token": token})
}
