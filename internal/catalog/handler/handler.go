package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eshmarket/internal/catalog/models"
	"eshmarket/internal/catalog/service"
	id "eshmarket/pkg/domain"
	dErrors "eshmarket/pkg/domain-errors"
	"eshmarket/pkg/platform/httputil"
	request "eshmarket/pkg/platform/middleware/request"
)

// Service defines the interface for catalog operations.
type Service interface {
	Create(ctx context.Context, cmd *service.CreateCommand) (*models.Product, error)
	Update(ctx context.Context, productID id.ProductID, cmd *service.CreateCommand) (*models.Product, error)
	Delete(ctx context.Context, productID id.ProductID) error
	Get(ctx context.Context, productID id.ProductID) (*models.Product, error)
	List(ctx context.Context) ([]*models.Product, error)
	Search(ctx context.Context, query string) ([]*models.Product, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts public catalog routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/products", h.HandleList)
	r.Get("/products/search", h.HandleSearch)
	r.Get("/products/{id}", h.HandleGet)
}

// RegisterAdmin mounts inventory-management routes; callers wrap them with
// the admin-token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/products", h.HandleCreate)
	r.Put("/admin/products/{id}", h.HandleUpdate)
	r.Delete("/admin/products/{id}", h.HandleDelete)
	r.Get("/admin/products/{id}", h.HandleAdminGet)
}

// HandleList returns the public catalog.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	products, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list products failed", "error", err, "request_id", request.GetRequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleSearch filters the public catalog by a case-insensitive title or
// description match on the `q` query parameter.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	products, err := h.service.Search(ctx, r.URL.Query().Get("q"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleGet returns one product without its deliverable content.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, err := id.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid product id"))
		return
	}
	p, err := h.service.Get(ctx, productID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProductResponse(p))
}

// HandleAdminGet returns one product including its deliverable content.
func (h *Handler) HandleAdminGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, err := id.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid product id"))
		return
	}
	p, err := h.service.Get(ctx, productID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAdminProductResponse(p))
}

// HandleCreate adds a product to the inventory.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ProductRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.service.Create(ctx, &service.CreateCommand{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		ShowcaseLink: req.ShowcaseLink,
		Content:      req.Content,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "create product failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toAdminProductResponse(p))
}

// HandleUpdate replaces product fields.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	productID, err := id.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid product id"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[ProductRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.service.Update(ctx, productID, &service.CreateCommand{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		ShowcaseLink: req.ShowcaseLink,
		Content:      req.Content,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "update product failed", "error", err, "request_id", requestID, "product_id", productID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAdminProductResponse(p))
}

// HandleDelete removes a product.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, err := id.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid product id"))
		return
	}
	if err := h.service.Delete(ctx, productID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}
