// Package service orchestrates catalog reads and admin inventory management.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"eshmarket/internal/catalog/models"
	"eshmarket/internal/sentinel"
	id "eshmarket/pkg/domain"
	dErrors "eshmarket/pkg/domain-errors"
)

// Store defines product persistence.
type Store interface {
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, productID id.ProductID) error
	FindByID(ctx context.Context, productID id.ProductID) (*models.Product, error)
	List(ctx context.Context) ([]*models.Product, error)
	Search(ctx context.Context, query string) ([]*models.Product, error)
}

// Service exposes catalog operations.
type Service struct {
	products Store
	now      func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a catalog service.
func New(products Store, opts ...Option) *Service {
	s := &Service{products: products, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCommand carries admin input for creating or updating a product.
type CreateCommand struct {
	Title        string
	Description  string
	Price        models.Price
	ShowcaseLink string
	Content      string
}

// Create validates and persists a new product.
func (s *Service) Create(ctx context.Context, cmd *CreateCommand) (*models.Product, error) {
	p, err := models.NewProduct(id.NewProductID(), cmd.Title, cmd.Description, cmd.Price, cmd.ShowcaseLink, cmd.Content, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create product")
	}
	return p, nil
}

// Update applies admin changes to an existing product.
func (s *Service) Update(ctx context.Context, productID id.ProductID, cmd *CreateCommand) (*models.Product, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	p.Title = cmd.Title
	p.Description = cmd.Description
	p.Price = cmd.Price
	p.ShowcaseLink = cmd.ShowcaseLink
	if cmd.Content != "" {
		p.Content = cmd.Content
	}
	p.UpdatedAt = s.now()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, wrapStoreErr(err)
	}
	return p, nil
}

// Delete removes a product from the catalog.
func (s *Service) Delete(ctx context.Context, productID id.ProductID) error {
	if err := s.products.Delete(ctx, productID); err != nil {
		return wrapStoreErr(err)
	}
	return nil
}

// Get retrieves one product.
func (s *Service) Get(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	if productID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "product id is required")
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return p, nil
}

// List returns the catalog, newest first.
func (s *Service) List(ctx context.Context) ([]*models.Product, error) {
	out, err := s.products.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list products")
	}
	return out, nil
}

// Search finds products by a case-insensitive title or description match.
func (s *Service) Search(ctx context.Context, query string) ([]*models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "search query is required")
	}
	out, err := s.products.Search(ctx, query)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search products")
	}
	return out, nil
}

func wrapStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "product not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "product store failure")
}
