// Package service orchestrates account lookups and admin user management.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"eshmarket/internal/account/models"
	"eshmarket/internal/sentinel"
	id "eshmarket/pkg/domain"
	dErrors "eshmarket/pkg/domain-errors"
)

// Store defines account persistence.
type Store interface {
	Upsert(ctx context.Context, a *models.Account) error
	FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	Delete(ctx context.Context, accountID id.AccountID) error
}

// Service exposes account operations.
type Service struct {
	accounts Store
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

// New constructs an account service.
func New(accounts Store, opts ...Option) *Service {
	s := &Service{accounts: accounts, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterCommand carries the identity asserted by the upstream provider.
type RegisterCommand struct {
	ExternalID string
	Username   string
	AvatarURL  string
	IsAdmin    bool
}

// Register creates an account for a provider identity, or returns the
// existing one. Called after the external OAuth exchange has completed.
func (s *Service) Register(ctx context.Context, cmd *RegisterCommand) (*models.Account, error) {
	cmd.ExternalID = strings.TrimSpace(cmd.ExternalID)
	cmd.Username = strings.TrimSpace(cmd.Username)
	if cmd.ExternalID == "" || cmd.Username == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "external id and username are required")
	}

	if existing, err := s.accounts.FindByExternalID(ctx, cmd.ExternalID); err == nil {
		return existing, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "account lookup failed")
	}

	a := &models.Account{
		ID:         id.NewAccountID(),
		ExternalID: cmd.ExternalID,
		Username:   cmd.Username,
		AvatarURL:  cmd.AvatarURL,
		IsAdmin:    cmd.IsAdmin,
		CreatedAt:  s.now(),
	}
	if err := s.accounts.Upsert(ctx, a); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}
	return a, nil
}

// Get retrieves one account.
func (s *Service) Get(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	if accountID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "account id is required")
	}
	a, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return a, nil
}

// List returns all accounts, newest first.
func (s *Service) List(ctx context.Context) ([]*models.Account, error) {
	out, err := s.accounts.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list accounts")
	}
	return out, nil
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, accountID id.AccountID) error {
	if accountID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "account id is required")
	}
	if err := s.accounts.Delete(ctx, accountID); err != nil {
		return wrapStoreErr(err)
	}
	return nil
}

func wrapStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "account not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "account store failure")
}
