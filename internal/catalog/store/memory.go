package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"eshmarket/internal/catalog/models"
	"eshmarket/internal/sentinel"
	id "eshmarket/pkg/domain"
)

// searchLimit caps search results, matching the public storefront API.
const searchLimit = 10

// ErrNotFound is returned when a product is not found.
var ErrNotFound = sentinel.ErrNotFound

// InMemory stores products in memory.
type InMemory struct {
	mu       sync.RWMutex
	products map[id.ProductID]*models.Product
}

// NewInMemory creates an in-memory product store.
func NewInMemory() *InMemory {
	return &InMemory{products: make(map[id.ProductID]*models.Product)}
}

// Create inserts a product.
func (s *InMemory) Create(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

// Update replaces an existing product.
func (s *InMemory) Update(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

// Delete removes a product.
func (s *InMemory) Delete(_ context.Context, productID id.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[productID]; !ok {
		return ErrNotFound
	}
	delete(s.products, productID)
	return nil
}

// FindByID retrieves a product by id.
func (s *InMemory) FindByID(_ context.Context, productID id.ProductID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// List returns all products sorted by creation time, newest first.
func (s *InMemory) List(_ context.Context) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Product, 0, len(s.products))
	for _, p := range s.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Search returns products whose title or description contains the query,
// case-insensitively. Newest first, at most searchLimit entries.
func (s *InMemory) Search(_ context.Context, query string) ([]*models.Product, error) {
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Product, 0)
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > searchLimit {
		out = out[:searchLimit]
	}
	return out, nil
}
