package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	accountmodels "eshmarket/internal/account/models"
	"eshmarket/internal/audit"
	catalogmodels "eshmarket/internal/catalog/models"
	"eshmarket/internal/notify"
	"eshmarket/internal/purchase/metrics"
	"eshmarket/internal/purchase/models"
	"eshmarket/internal/purchase/tracer"
	"eshmarket/internal/sentinel"
	dErrors "eshmarket/pkg/domain-errors"
	id "eshmarket/pkg/domain"
	"eshmarket/pkg/requestcontext"
	"eshmarket/pkg/secrets"
)

// MatchField selects which account identifier is compared against donation
// supporter names when the ledger is queried.
type MatchField string

const (
	MatchByDisplayName MatchField = "display_name"
	MatchByExternalID  MatchField = "external_id"
)

// Service coordinates the two purchase paths: proof review (human or
// keyword-verified) and donation matching. It owns the purchase request
// lifecycle; entitlements themselves live in the account store.
type Service struct {
	store     Store
	accounts  AccountStore
	products  ProductStore
	donations DonationLedger
	notifier  notify.Channel
	verifier  ProofVerifier

	publicBaseURL string
	maxProofBytes int64
	tokenTTL      time.Duration
	matchWindow   time.Duration
	matchField    MatchField
	creditOnMatch bool

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	auditor *audit.Publisher
	clock   func() time.Time
}

type Option func(*Service)

// WithProofVerifier switches the proof path from human review to the
// keyword heuristic. Review tokens are never minted in this mode.
func WithProofVerifier(v ProofVerifier) Option {
	return func(s *Service) { s.verifier = v }
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) { s.tokenTTL = ttl }
}

func WithMaxProofBytes(n int64) Option {
	return func(s *Service) { s.maxProofBytes = n }
}

func WithMatchWindow(d time.Duration) Option {
	return func(s *Service) { s.matchWindow = d }
}

func WithMatchField(f MatchField) Option {
	return func(s *Service) { s.matchField = f }
}

// WithCreditOnMatch makes a ledger match credit the donated amount to the
// account balance before debiting the price, so the transaction shows up in
// the account's balance history instead of being granted at zero cost.
func WithCreditOnMatch(enabled bool) Option {
	return func(s *Service) { s.creditOnMatch = enabled }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithAudit records an audit event for every submission and resolution.
func WithAudit(p *audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

func New(
	store Store,
	accounts AccountStore,
	products ProductStore,
	donations DonationLedger,
	notifier notify.Channel,
	publicBaseURL string,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		store:         store,
		accounts:      accounts,
		products:      products,
		donations:     donations,
		notifier:      notifier,
		publicBaseURL: publicBaseURL,
		maxProofBytes: 25 << 20,
		tokenTTL:      24 * time.Hour,
		matchWindow:   10 * time.Minute,
		matchField:    MatchByDisplayName,
		logger:        logger,
		tracer:        tracer.NewNoop(),
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitiateProofReview starts the proof path for the given account and
// product. In human-review mode the proof is forwarded to the review channel
// and the request is persisted as pending only after the notification (and
// its message id) are confirmed sent. In keyword mode the request resolves
// synchronously to granted or rejected.
func (s *Service) InitiateProofReview(
	ctx context.Context,
	accountID id.AccountID,
	productID id.ProductID,
	proof []byte,
	proofFilename string,
) (req *models.Request, err error) {
	start := s.clock()
	ctx, span := s.tracer.Start(ctx, tracer.SpanInitiate,
		tracer.String(tracer.AttrAccountID, accountID.String()),
		tracer.String(tracer.AttrProductID, productID.String()),
		tracer.String(tracer.AttrPath, string(models.PathProofReview)),
	)
	defer func() { span.End(err) }()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveInitiate(start)
		}
	}()

	if len(proof) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "a proof image is required")
	}
	if int64(len(proof)) > s.maxProofBytes {
		return nil, dErrors.New(dErrors.CodePayloadTooLarge,
			fmt.Sprintf("proof image exceeds the %d byte limit", s.maxProofBytes))
	}

	account, product, err := s.fetchParties(ctx, accountID, productID)
	if err != nil {
		return nil, err
	}
	if account.Owns(product.ID) {
		return nil, dErrors.New(dErrors.CodeConflict, "product already owned")
	}

	if s.verifier != nil {
		return s.resolveByKeyword(ctx, account, product, proof, proofFilename)
	}
	return s.submitForReview(ctx, account, product, proof, proofFilename)
}

func (s *Service) resolveByKeyword(
	ctx context.Context,
	account *accountmodels.Account,
	product *catalogmodels.Product,
	proof []byte,
	proofFilename string,
) (*models.Request, error) {
	now := s.clock()
	ok, err := s.verifier.Verify(ctx, proof)
	if err != nil {
		// Extraction failures leave no trace: the buyer retries with the
		// same proof once the extractor recovers.
		return nil, dErrors.Wrap(err, dErrors.CodeExtraction, "proof text extraction failed")
	}

	req := &models.Request{
		ID:            id.NewPurchaseID(),
		AccountID:     account.ID,
		ProductID:     product.ID,
		Path:          models.PathProofReview,
		ProofFilename: proofFilename,
		CreatedAt:     now,
	}
	if !ok {
		req.Status = models.StatusRejected
		req.ResolvedAt = &now
		if storeErr := s.store.CreateRequest(ctx, req, nil); storeErr != nil {
			return nil, dErrors.Wrap(storeErr, dErrors.CodeInternal, "failed to record purchase request")
		}
		if s.metrics != nil {
			s.metrics.Rejected.WithLabelValues(string(models.PathProofReview), "proof_not_recognized").Inc()
		}
		s.emitAudit(ctx, req, audit.ActionPurchaseRejected, "proof_not_recognized")
		return req, dErrors.New(dErrors.CodeBadRequest, "proof image does not show the expected payment")
	}

	if err := s.grant(ctx, account.ID, product.ID, 0); err != nil {
		return nil, err
	}
	req.Status = models.StatusGranted
	req.ResolvedAt = &now
	if err := s.store.CreateRequest(ctx, req, nil); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record purchase request")
	}
	if s.metrics != nil {
		s.metrics.Granted.WithLabelValues(string(models.PathProofReview)).Inc()
	}
	s.sendFulfillment(ctx, account, product)
	return req, nil
}

func (s *Service) submitForReview(
	ctx context.Context,
	account *accountmodels.Account,
	product *catalogmodels.Product,
	proof []byte,
	proofFilename string,
) (*models.Request, error) {
	now := s.clock()
	tokenValue, err := secrets.Generate()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint review token")
	}

	req := &models.Request{
		ID:            id.NewPurchaseID(),
		AccountID:     account.ID,
		ProductID:     product.ID,
		Path:          models.PathProofReview,
		Status:        models.StatusPendingReview,
		ProofFilename: proofFilename,
		CreatedAt:     now,
	}
	token := &models.ReviewToken{
		Value:     tokenValue,
		RequestID: req.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenTTL),
	}

	embed := reviewEmbed(account, product, s.approveURL(tokenValue))
	file := notify.File{Name: proofFilename, ContentType: "image/png", Data: proof}

	// The notification goes out before the request exists. A pending request
	// no reviewer can see would be unresolvable, so a send failure aborts
	// the whole operation.
	messageID, err := s.notifier.PostReview(ctx, embed, file)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to notify the review channel")
	}
	tracer.FromContext(ctx).AddEvent(tracer.EventNotificationSent)
	req.MessageID = messageID

	if err := s.store.CreateRequest(ctx, req, token); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record purchase request")
	}
	s.logger.InfoContext(ctx, "purchase submitted for review",
		slog.String("request_id", req.ID.String()),
		slog.String("account_id", account.ID.String()),
		slog.String("product_id", product.ID.String()),
		slog.String("device", requestcontext.Device(ctx)),
	)
	s.emitAudit(ctx, req, audit.ActionReviewSubmitted, requestcontext.Device(ctx))
	return req, nil
}

// Approve resolves a pending proof-review request identified by its review
// token. Token consumption is atomic: of any number of concurrent calls with
// the same token, exactly one proceeds to grant and the rest observe an
// already-resolved error.
func (s *Service) Approve(ctx context.Context, tokenValue string) (req *models.Request, err error) {
	start := s.clock()
	ctx, span := s.tracer.Start(ctx, tracer.SpanApprove)
	defer func() { span.End(err) }()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveApprove(start)
		}
	}()

	now := s.clock()
	token, err := s.store.ConsumeToken(ctx, tokenValue, now)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.New(dErrors.CodeNotFound, "review token not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		if s.metrics != nil {
			s.metrics.ApprovalReplays.Inc()
		}
		return nil, dErrors.New(dErrors.CodeAlreadyResolved, "purchase request already resolved")
	case errors.Is(err, sentinel.ErrExpired):
		return nil, dErrors.New(dErrors.CodeAlreadyResolved, "review window has expired")
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume review token")
	}

	req, err = s.store.FindRequest(ctx, token.RequestID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "pending request vanished")
	}

	// Resolve both parties before committing the transition. If the account
	// or product was deleted while review was pending, the token is put back
	// so the request stays pending instead of being stranded as granted with
	// nothing to grant.
	account, product, err := s.fetchParties(ctx, req.AccountID, req.ProductID)
	if err != nil {
		if releaseErr := s.store.ReleaseToken(ctx, tokenValue); releaseErr != nil {
			s.logger.ErrorContext(ctx, "failed to release review token",
				slog.String("request_id", req.ID.String()), slog.Any("error", releaseErr))
		}
		return nil, err
	}

	if err := s.store.TransitionStatus(ctx, token.RequestID, models.StatusPendingReview, models.StatusGranted, now); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return nil, dErrors.New(dErrors.CodeAlreadyResolved, "purchase request already resolved")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve purchase request")
	}

	if err := s.accounts.Grant(ctx, account.ID, product.ID, 0); err != nil {
		if !errors.Is(err, sentinel.ErrAlreadyOwned) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant entitlement")
		}
		// The buyer acquired the product through another path while review
		// was pending. The approval stands; there is nothing left to grant.
		s.logger.InfoContext(ctx, "approved request for already-owned product",
			slog.String("request_id", req.ID.String()))
	}
	span.SetAttributes(tracer.String(tracer.AttrStatus, string(models.StatusGranted)))
	if s.metrics != nil {
		s.metrics.Granted.WithLabelValues(string(models.PathProofReview)).Inc()
	}

	if req.MessageID != "" {
		if err := s.notifier.UpdateReview(ctx, req.MessageID, approvedEmbed(account, product, now)); err != nil {
			s.logger.WarnContext(ctx, "failed to edit review notification",
				slog.String("request_id", req.ID.String()), slog.Any("error", err))
		} else {
			span.AddEvent(tracer.EventNotificationEdited)
		}
	}
	s.sendFulfillment(ctx, account, product)

	s.logger.InfoContext(ctx, "purchase approved",
		slog.String("request_id", req.ID.String()),
		slog.String("account_id", account.ID.String()),
		slog.String("product_id", product.ID.String()),
	)
	s.emitAudit(ctx, req, audit.ActionPurchaseGranted, "approved_by_reviewer")
	return s.store.FindRequest(ctx, token.RequestID)
}

// InitiateDonation runs the donation path: pay from the account balance when
// it covers the price, otherwise look for a matching recent entry in the
// donation ledger. Both outcomes are terminal; the path never waits.
func (s *Service) InitiateDonation(
	ctx context.Context,
	accountID id.AccountID,
	productID id.ProductID,
) (req *models.Request, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanDonationMatch,
		tracer.String(tracer.AttrAccountID, accountID.String()),
		tracer.String(tracer.AttrProductID, productID.String()),
		tracer.String(tracer.AttrPath, string(models.PathDonation)),
	)
	defer func() { span.End(err) }()

	account, product, err := s.fetchParties(ctx, accountID, productID)
	if err != nil {
		return nil, err
	}
	if account.Owns(product.ID) {
		return nil, dErrors.New(dErrors.CodeConflict, "product already owned")
	}

	now := s.clock()
	req = &models.Request{
		ID:         id.NewPurchaseID(),
		AccountID:  account.ID,
		ProductID:  product.ID,
		Path:       models.PathDonation,
		CreatedAt:  now,
		ResolvedAt: &now,
	}

	price := product.Price.Money
	if account.Balance.Money >= price {
		span.SetAttributes(tracer.Bool(tracer.AttrFastPath, true))
		if err := s.grant(ctx, account.ID, product.ID, price); err != nil {
			return nil, err
		}
		return s.recordGranted(ctx, req, account, product)
	}
	span.SetAttributes(tracer.Bool(tracer.AttrFastPath, false))

	supporter := account.Username
	if s.matchField == MatchByExternalID {
		supporter = account.ExternalID
	}
	donation, err := s.donations.FindMatch(ctx, supporter, price, now.Add(-s.matchWindow))
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "donation ledger lookup failed")
	}
	if donation == nil {
		req.Status = models.StatusRejected
		if storeErr := s.store.CreateRequest(ctx, req, nil); storeErr != nil {
			return nil, dErrors.Wrap(storeErr, dErrors.CodeInternal, "failed to record purchase request")
		}
		if s.metrics != nil {
			s.metrics.Rejected.WithLabelValues(string(models.PathDonation), "no_matching_payment").Inc()
		}
		s.emitAudit(ctx, req, audit.ActionPurchaseRejected, "no_matching_payment")
		return req, dErrors.New(dErrors.CodeNoMatchingPayment,
			"no recent donation matches this purchase; the amount must equal the price exactly")
	}

	debit := int64(0)
	if s.creditOnMatch {
		if _, err := s.accounts.Credit(ctx, account.Username, donation.Amount); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit matched donation")
		}
		debit = price
	}
	if err := s.grant(ctx, account.ID, product.ID, debit); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "donation matched",
		slog.String("account_id", account.ID.String()),
		slog.String("transaction_id", donation.TransactionID),
		slog.Int64("amount", donation.Amount),
	)
	return s.recordGranted(ctx, req, account, product)
}

// ExpireStale sweeps review tokens past their TTL and rejects the pending
// requests behind them. Expiry is the only path out of pending besides an
// approval, so the sweeper has to keep running for the state machine to be
// live.
func (s *Service) ExpireStale(ctx context.Context) (expired int, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanExpireSweep)
	defer func() { span.End(err) }()

	now := s.clock()
	tokens, err := s.store.ExpireTokens(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("expiring review tokens: %w", err)
	}

	for _, token := range tokens {
		err := s.store.TransitionStatus(ctx, token.RequestID, models.StatusPendingReview, models.StatusRejected, now)
		if errors.Is(err, sentinel.ErrInvalidState) {
			continue // resolved between the sweep and the transition
		}
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to reject expired request",
				slog.String("request_id", token.RequestID.String()), slog.Any("error", err))
			continue
		}
		expired++
		if s.metrics != nil {
			s.metrics.TokensExpired.Inc()
			s.metrics.Rejected.WithLabelValues(string(models.PathProofReview), "review_expired").Inc()
		}
		if s.auditor != nil {
			if req, findErr := s.store.FindRequest(ctx, token.RequestID); findErr == nil {
				s.emitAudit(ctx, req, audit.ActionReviewExpired, "")
			}
		}
		s.markExpiredNotification(ctx, token.RequestID, now)
	}
	if expired > 0 {
		s.logger.InfoContext(ctx, "expired stale purchase requests", slog.Int("count", expired))
	}
	return expired, nil
}

func (s *Service) markExpiredNotification(ctx context.Context, requestID id.PurchaseID, now time.Time) {
	req, err := s.store.FindRequest(ctx, requestID)
	if err != nil || req.MessageID == "" {
		return
	}
	account, product, err := s.fetchParties(ctx, req.AccountID, req.ProductID)
	if err != nil {
		return
	}
	if err := s.notifier.UpdateReview(ctx, req.MessageID, expiredEmbed(account, product, now)); err != nil {
		s.logger.WarnContext(ctx, "failed to mark review notification expired",
			slog.String("request_id", requestID.String()), slog.Any("error", err))
	}
}

// ListRequests returns the full purchase history, newest first.
func (s *Service) ListRequests(ctx context.Context) ([]*models.Request, error) {
	return s.store.ListRequests(ctx)
}

func (s *Service) fetchParties(
	ctx context.Context,
	accountID id.AccountID,
	productID id.ProductID,
) (*accountmodels.Account, *catalogmodels.Product, error) {
	var (
		account *accountmodels.Account
		product *catalogmodels.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		account, err = s.accounts.FindByID(gctx, accountID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return err
	})
	g.Go(func() error {
		var err error
		product, err = s.products.FindByID(gctx, productID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "product not found")
		}
		return err
	})
	if err := g.Wait(); err != nil {
		var dErr *dErrors.Error
		if errors.As(err, &dErr) {
			return nil, nil, err
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load purchase parties")
	}
	return account, product, nil
}

func (s *Service) grant(ctx context.Context, accountID id.AccountID, productID id.ProductID, debit int64) error {
	err := s.accounts.Grant(ctx, accountID, productID, debit)
	switch {
	case errors.Is(err, sentinel.ErrAlreadyOwned):
		return dErrors.New(dErrors.CodeConflict, "product already owned")
	case errors.Is(err, sentinel.ErrInsufficientBalance):
		return dErrors.New(dErrors.CodeNoMatchingPayment, "account balance no longer covers the price")
	case err != nil:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant entitlement")
	}
	return nil
}

func (s *Service) recordGranted(
	ctx context.Context,
	req *models.Request,
	account *accountmodels.Account,
	product *catalogmodels.Product,
) (*models.Request, error) {
	req.Status = models.StatusGranted
	if err := s.store.CreateRequest(ctx, req, nil); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record purchase request")
	}
	if s.metrics != nil {
		s.metrics.Granted.WithLabelValues(string(req.Path)).Inc()
	}
	s.emitAudit(ctx, req, audit.ActionPurchaseGranted, "")
	s.sendFulfillment(ctx, account, product)
	return req, nil
}

// sendFulfillment delivers the product content as a direct message. Delivery
// is best effort: the entitlement is already persisted and the buyer can
// re-download from their library.
func (s *Service) sendFulfillment(ctx context.Context, account *accountmodels.Account, product *catalogmodels.Product) {
	file := notify.File{
		Name:        product.Filename(),
		ContentType: "text/plain",
		Data:        []byte(product.Content),
	}
	if err := s.notifier.DirectMessage(ctx, account.ExternalID, fulfillmentEmbed(account, product), file); err != nil {
		s.logger.WarnContext(ctx, "failed to deliver product content",
			slog.String("account_id", account.ID.String()),
			slog.String("product_id", product.ID.String()),
			slog.Any("error", err))
		return
	}
	tracer.FromContext(ctx).AddEvent(tracer.EventFulfillmentSent)
}

func (s *Service) emitAudit(ctx context.Context, req *models.Request, action audit.Action, detail string) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		Timestamp: s.clock(),
		AccountID: req.AccountID,
		ProductID: req.ProductID,
		RequestID: req.ID,
		Path:      string(req.Path),
		Action:    action,
		Detail:    detail,
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			slog.String("action", string(action)), slog.Any("error", err))
	}
}

// AuditTrail returns the audit events recorded for an account, oldest first.
func (s *Service) AuditTrail(ctx context.Context, accountID id.AccountID) ([]audit.Event, error) {
	if s.auditor == nil {
		return nil, nil
	}
	return s.auditor.List(ctx, accountID)
}

func (s *Service) approveURL(tokenValue string) string {
	return fmt.Sprintf("%s/purchase/path-a/approve?token=%s", s.publicBaseURL, tokenValue)
}
