package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"eshmarket/internal/donation/models"
	"eshmarket/internal/sentinel"
)

// InMemory is an append-only in-memory donation ledger.
type InMemory struct {
	mu        sync.RWMutex
	donations []*models.Donation
	txIdx     map[string]struct{}
}

// NewInMemory creates an in-memory donation ledger.
func NewInMemory() *InMemory {
	return &InMemory{txIdx: make(map[string]struct{})}
}

// Append records a donation. Duplicate transaction ids (webhook redelivery)
// return sentinel.ErrAlreadyUsed so the caller can skip double-crediting.
func (s *InMemory) Append(_ context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.txIdx[d.TransactionID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	cp := *d
	s.donations = append(s.donations, &cp)
	s.txIdx[d.TransactionID] = struct{}{}
	return nil
}

// FindMatch returns the most recent donation with the exact supporter name
// (case-insensitive), the exact amount, and a timestamp at or after since.
// Exact-amount matching has no tolerance for platform fees or rounding;
// that limitation is deliberate.
func (s *InMemory) FindMatch(_ context.Context, supporterName string, amount int64, since time.Time) (*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *models.Donation
	for _, d := range s.donations {
		if !strings.EqualFold(d.SupporterName, supporterName) || d.Amount != amount {
			continue
		}
		if d.CreatedAt.Before(since) {
			continue
		}
		if best == nil || d.CreatedAt.After(best.CreatedAt) {
			best = d
		}
	}
	if best == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

// List returns the ledger sorted by timestamp, newest first.
func (s *InMemory) List(_ context.Context) ([]*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Donation, 0, len(s.donations))
	for _, d := range s.donations {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
