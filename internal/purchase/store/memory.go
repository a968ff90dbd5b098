package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"eshmarket/internal/purchase/models"
	"eshmarket/internal/sentinel"
	id "eshmarket/pkg/domain"
)

// InMemory holds purchase requests and review tokens under one lock so
// token consumption and status transitions are atomic check-then-act
// operations, never a read followed by a separate write.
type InMemory struct {
	mu       sync.Mutex
	requests map[id.PurchaseID]*models.Request
	tokens   map[string]*models.ReviewToken
}

// NewInMemory creates an in-memory purchase store.
func NewInMemory() *InMemory {
	return &InMemory{
		requests: make(map[id.PurchaseID]*models.Request),
		tokens:   make(map[string]*models.ReviewToken),
	}
}

// CreateRequest persists a request, and atomically its review token when
// one exists. The token becomes consumable the instant the request does.
func (s *InMemory) CreateRequest(_ context.Context, r *models.Request, token *models.ReviewToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cr := *r
	s.requests[r.ID] = &cr
	if token != nil {
		ct := *token
		s.tokens[token.Value] = &ct
	}
	return nil
}

// FindRequest retrieves a request by id.
func (s *InMemory) FindRequest(_ context.Context, requestID id.PurchaseID) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cr := *r
	return &cr, nil
}

// ConsumeToken atomically spends a review token. Exactly one caller can
// succeed per token:
//   - unknown value           -> sentinel.ErrNotFound
//   - already consumed        -> sentinel.ErrAlreadyUsed
//   - past expiry             -> sentinel.ErrExpired (token left intact for the sweeper)
//   - otherwise it is marked consumed and returned
func (s *InMemory) ConsumeToken(_ context.Context, value string, now time.Time) (*models.ReviewToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[value]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if t.Consumed() {
		return nil, sentinel.ErrAlreadyUsed
	}
	if t.Expired(now) {
		return nil, sentinel.ErrExpired
	}
	t.ConsumedAt = now
	ct := *t
	return &ct, nil
}

// ReleaseToken undoes a consume, making the token spendable again. Used
// when the approval that consumed it could not complete, so the request
// stays pending and a later approval (or the expiry sweep) can resolve it.
func (s *InMemory) ReleaseToken(_ context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[value]
	if !ok {
		return sentinel.ErrNotFound
	}
	t.ConsumedAt = time.Time{}
	return nil
}

// TransitionStatus moves a request from one status to another atomically.
// Returns sentinel.ErrInvalidState when the request is not in the expected
// state, which callers treat as "already resolved".
func (s *InMemory) TransitionStatus(_ context.Context, requestID id.PurchaseID, from, to models.Status, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if r.Status != from {
		return sentinel.ErrInvalidState
	}
	r.Status = to
	if to.Terminal() {
		r.ResolvedAt = &now
	}
	return nil
}

// ExpireTokens consumes every unconsumed token past its expiry and returns
// them so the caller can reject the owning requests. Atomic per token.
func (s *InMemory) ExpireTokens(_ context.Context, now time.Time) ([]*models.ReviewToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []*models.ReviewToken
	for _, t := range s.tokens {
		if !t.Consumed() && t.Expired(now) {
			t.ConsumedAt = now
			ct := *t
			expired = append(expired, &ct)
		}
	}
	return expired, nil
}

// ListRequests returns all requests, newest first.
func (s *InMemory) ListRequests(_ context.Context) ([]*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Request, 0, len(s.requests))
	for _, r := range s.requests {
		cr := *r
		out = append(out, &cr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
