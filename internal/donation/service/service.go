// Package service ingests donation webhooks and exposes the transaction
// history. Ingestion is the producer side of the fiat balance that the
// purchase coordinator's fast path later consumes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	accountmodels "eshmarket/internal/account/models"
	"eshmarket/internal/donation/models"
	"eshmarket/internal/sentinel"
	dErrors "eshmarket/pkg/domain-errors"
)

// Store defines donation ledger persistence.
type Store interface {
	Append(ctx context.Context, d *models.Donation) error
	List(ctx context.Context) ([]*models.Donation, error)
}

// AccountCreditor credits an account's fiat balance by supporter name.
type AccountCreditor interface {
	Credit(ctx context.Context, username string, amount int64) (*accountmodels.Account, error)
}

// Service processes webhook pushes from the tipping platform.
type Service struct {
	ledger   Store
	accounts AccountCreditor
	logger   *slog.Logger
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

// New constructs a donation service.
func New(ledger Store, accounts AccountCreditor, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{ledger: ledger, accounts: accounts, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestCommand is one validated webhook push.
type IngestCommand struct {
	TransactionID string
	SupporterName string
	Quantity      int64
	UnitPrice     int64
}

// Ingest appends the donation to the ledger and credits the matching
// account's fiat balance by quantity * unit price. A supporter name with no
// matching account still lands in the ledger; the later purchase-path match
// can pick it up.
func (s *Service) Ingest(ctx context.Context, cmd *IngestCommand) (*models.Donation, error) {
	cmd.TransactionID = strings.TrimSpace(cmd.TransactionID)
	cmd.SupporterName = strings.TrimSpace(cmd.SupporterName)
	if cmd.TransactionID == "" || cmd.SupporterName == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "transaction id and supporter name are required")
	}
	if cmd.Quantity <= 0 || cmd.UnitPrice <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "quantity and unit price must be positive")
	}

	d := &models.Donation{
		TransactionID: cmd.TransactionID,
		SupporterName: cmd.SupporterName,
		Amount:        cmd.Quantity * cmd.UnitPrice,
		CreatedAt:     s.now(),
	}
	if err := s.ledger.Append(ctx, d); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			// Webhook redelivery; the first delivery already credited.
			return nil, dErrors.New(dErrors.CodeConflict, "transaction already recorded")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record donation")
	}

	if _, err := s.accounts.Credit(ctx, d.SupporterName, d.Amount); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "donation supporter has no account, balance not credited",
				"supporter", d.SupporterName,
				"transaction_id", d.TransactionID,
			)
			return d, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit balance")
	}
	return d, nil
}

// List returns the transaction history, newest first.
func (s *Service) List(ctx context.Context) ([]*models.Donation, error) {
	out, err := s.ledger.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donations")
	}
	return out, nil
}
