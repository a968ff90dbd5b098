package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	accounthandler "eshmarket/internal/account/handler"
	accountservice "eshmarket/internal/account/service"
	accountstore "eshmarket/internal/account/store"
	"eshmarket/internal/audit"
	"eshmarket/internal/auth/session"
	cataloghandler "eshmarket/internal/catalog/handler"
	catalogservice "eshmarket/internal/catalog/service"
	catalogstore "eshmarket/internal/catalog/store"
	donationhandler "eshmarket/internal/donation/handler"
	donationservice "eshmarket/internal/donation/service"
	donationstore "eshmarket/internal/donation/store"
	"eshmarket/internal/notify"
	"eshmarket/internal/platform/config"
	"eshmarket/internal/platform/health"
	"eshmarket/internal/platform/httpserver"
	"eshmarket/internal/platform/logger"
	platformmetrics "eshmarket/internal/platform/metrics"
	"eshmarket/internal/proof"
	purchasehandler "eshmarket/internal/purchase/handler"
	purchasemetrics "eshmarket/internal/purchase/metrics"
	purchaseservice "eshmarket/internal/purchase/service"
	purchasestore "eshmarket/internal/purchase/store"
	"eshmarket/internal/purchase/tracer"
	"eshmarket/internal/purchase/workers/expiry"
	"eshmarket/internal/seeder"
	httptransport "eshmarket/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Environment)

	log.Info("initializing eshmarket",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"proof_verifier", string(cfg.ProofVerifier),
	)

	accounts := accountstore.NewInMemory()
	products := catalogstore.NewInMemory()
	donations := donationstore.NewInMemory()
	purchases := purchasestore.NewInMemory()

	sessions := session.NewManager(cfg.SessionSigningKey, cfg.SessionTTL)
	notifier := notify.NewWebhookClient(cfg.ReviewWebhookURL, cfg.BotToken, nil)

	auditor := audit.NewPublisher(audit.NewInMemoryStore(),
		audit.WithAsyncBuffer(256),
		audit.WithPublisherLogger(log),
	)
	defer auditor.Close()

	if cfg.SeedDemo {
		if err := seeder.New(products, accounts, donations, log).SeedAll(context.Background()); err != nil {
			log.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
	}

	catalogSvc := catalogservice.New(products)
	accountSvc := accountservice.New(accounts)
	donationSvc := donationservice.New(donations, accounts, log)

	purchaseOpts := []purchaseservice.Option{
		purchaseservice.WithMaxProofBytes(cfg.MaxProofBytes),
		purchaseservice.WithTokenTTL(cfg.ReviewTokenTTL),
		purchaseservice.WithMatchWindow(cfg.DonationMatchWindow),
		purchaseservice.WithMatchField(purchaseservice.MatchField(cfg.DonationMatchField)),
		purchaseservice.WithCreditOnMatch(cfg.CreditOnMatch),
		purchaseservice.WithMetrics(purchasemetrics.New()),
		purchaseservice.WithTracer(tracer.NewOTel()),
		purchaseservice.WithAudit(auditor),
	}
	if cfg.ProofVerifier == config.VerifierKeyword {
		extractor := proof.NewHTTPExtractor(cfg.OCREndpoint, nil)
		purchaseOpts = append(purchaseOpts,
			purchaseservice.WithProofVerifier(proof.NewKeywordVerifier(extractor, cfg.RequiredPhrases)))
	}
	purchaseSvc := purchaseservice.New(
		purchases, accounts, products, donations, notifier,
		cfg.PublicBaseURL, log, purchaseOpts...,
	)

	healthHandler := health.New(cfg.Environment)

	router := httptransport.NewRouter(httptransport.Deps{
		Catalog:      cataloghandler.New(catalogSvc, log),
		Accounts:     accounthandler.New(accountSvc, sessions, log),
		Donations:    donationhandler.New(donationSvc, cfg.WebhookToken, cfg.WebhookTokenHash, log),
		Purchases:    purchasehandler.New(purchaseSvc, cfg.MaxProofBytes, log),
		Sessions:     sessions,
		Health:       healthHandler,
		Metrics:      platformmetrics.New(),
		AdminToken:   cfg.AdminToken,
		MaxBodyBytes: cfg.MaxProofBytes + 1<<20,
		Logger:       log,
	})

	srv := httpserver.New(cfg.Addr, router)

	sweeper, err := expiry.New(purchaseSvc,
		expiry.WithInterval(cfg.SweepInterval),
		expiry.WithLogger(log),
	)
	if err != nil {
		log.Error("failed to build expiry sweeper", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := sweeper.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
