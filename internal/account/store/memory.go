package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"eshmarket/internal/account/models"
	"eshmarket/internal/sentinel"
	id "eshmarket/pkg/domain"
)

// ErrNotFound is returned when an account is not found.
var ErrNotFound = sentinel.ErrNotFound

// InMemory stores accounts in memory. Compound mutations (Grant, Credit)
// run under a single lock so entitlement and balance changes are atomic.
type InMemory struct {
	mu          sync.RWMutex
	accounts    map[id.AccountID]*models.Account
	externalIdx map[string]id.AccountID
	usernameIdx map[string]id.AccountID
}

// NewInMemory creates an in-memory account store.
func NewInMemory() *InMemory {
	return &InMemory{
		accounts:    make(map[id.AccountID]*models.Account),
		externalIdx: make(map[string]id.AccountID),
		usernameIdx: make(map[string]id.AccountID),
	}
}

// Upsert inserts or replaces an account and refreshes the lookup indexes.
func (s *InMemory) Upsert(_ context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneAccount(a)
	s.accounts[a.ID] = cp
	if a.ExternalID != "" {
		s.externalIdx[a.ExternalID] = a.ID
	}
	if a.Username != "" {
		s.usernameIdx[strings.ToLower(a.Username)] = a.ID
	}
	return nil
}

// FindByID retrieves an account by id.
func (s *InMemory) FindByID(_ context.Context, accountID id.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAccount(a), nil
}

// FindByExternalID retrieves an account by its identity-provider id.
func (s *InMemory) FindByExternalID(_ context.Context, externalID string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accountID, ok := s.externalIdx[externalID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAccount(s.accounts[accountID]), nil
}

// FindByUsername retrieves an account by display name (case-insensitive).
func (s *InMemory) FindByUsername(_ context.Context, username string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accountID, ok := s.usernameIdx[strings.ToLower(username)]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAccount(s.accounts[accountID]), nil
}

// List returns all accounts sorted by creation time, newest first.
func (s *InMemory) List(_ context.Context) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete removes an account and its index entries.
func (s *InMemory) Delete(_ context.Context, accountID id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	delete(s.externalIdx, a.ExternalID)
	delete(s.usernameIdx, strings.ToLower(a.Username))
	delete(s.accounts, accountID)
	return nil
}

// Grant appends a product entitlement, optionally debiting the fiat balance,
// as one atomic operation. Returns sentinel.ErrAlreadyOwned if the account
// already holds the entitlement and sentinel.ErrInsufficientBalance when a
// debit would overdraw.
func (s *InMemory) Grant(_ context.Context, accountID id.AccountID, productID id.ProductID, debit int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	if a.Owns(productID) {
		return sentinel.ErrAlreadyOwned
	}
	if debit > 0 && a.Balance.Money < debit {
		return sentinel.ErrInsufficientBalance
	}
	a.Balance.Money -= debit
	a.PurchasedProductIDs = append(a.PurchasedProductIDs, productID)
	return nil
}

// Credit adds fiat balance to the account with the given username
// (case-insensitive) and returns the updated account.
func (s *InMemory) Credit(_ context.Context, username string, amount int64) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accountID, ok := s.usernameIdx[strings.ToLower(username)]
	if !ok {
		return nil, ErrNotFound
	}
	a := s.accounts[accountID]
	a.Balance.Money += amount
	return cloneAccount(a), nil
}

func cloneAccount(a *models.Account) *models.Account {
	cp := *a
	cp.PurchasedProductIDs = append([]id.ProductID(nil), a.PurchasedProductIDs...)
	return &cp
}
