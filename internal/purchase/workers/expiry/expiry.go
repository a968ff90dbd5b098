package expiry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Sweeper expires stale review tokens and rejects the pending requests
// behind them.
type Sweeper interface {
	ExpireStale(ctx context.Context) (int, error)
}

// Service periodically sweeps review tokens past their TTL. Expiry is the
// only way a pending request resolves without a reviewer, so the sweeper
// must run for the review workflow to be live.
type Service struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *slog.Logger
}

// Option configures Service.
type Option func(*Service)

// WithInterval overrides the sweep interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithLogger overrides the logger used for sweep errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a Service with the required sweeper and options applied.
func New(sweeper Sweeper, opts ...Option) (*Service, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("sweeper is required")
	}
	svc := &Service{
		sweeper:  sweeper,
		interval: 5 * time.Minute,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Start runs the sweep periodically until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "review token sweep failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs a single sweep and returns the number of requests
// rejected by expiry.
func (s *Service) RunOnce(ctx context.Context) (int, error) {
	expired, err := s.sweeper.ExpireStale(ctx)
	if err != nil {
		return 0, fmt.Errorf("expire stale requests: %w", err)
	}
	return expired, nil
}
