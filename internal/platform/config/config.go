package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// VerifierMode selects how path-A proof artifacts are verified.
type VerifierMode string

const (
	// VerifierHumanReview routes the proof to a reviewer channel and waits
	// for an out-of-band approval.
	VerifierHumanReview VerifierMode = "human_review"
	// VerifierKeyword matches extracted proof text against required phrases.
	// Weak heuristic; kept selectable, never the silent default.
	VerifierKeyword VerifierMode = "keyword"
)

// MatchField selects which account attribute donation supporter names are
// matched against.
type MatchField string

const (
	MatchDisplayName MatchField = "display_name"
	MatchExternalID  MatchField = "external_id"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	Environment string

	AdminToken        string
	SessionSigningKey string
	SessionTTL        time.Duration

	// Reviewer notification channel (webhook URL + bot token for DMs).
	ReviewWebhookURL string
	BotToken         string
	PublicBaseURL    string

	// Donation ledger webhook shared secret. When WebhookTokenHash is set it
	// takes precedence and the plaintext is never kept in memory.
	WebhookToken     string
	WebhookTokenHash string

	// Purchase verification knobs.
	MaxProofBytes       int64
	DonationMatchWindow time.Duration
	DonationMatchField  MatchField
	CreditOnMatch       bool
	ReviewTokenTTL      time.Duration
	SweepInterval       time.Duration
	ProofVerifier       VerifierMode
	RequiredPhrases     []string
	OCREndpoint         string

	// SeedDemo populates the in-memory stores with demo data on boot.
	SeedDemo bool
}

const (
	defaultMaxProofBytes = 25 << 20 // 25 MiB ceiling on uploaded proof media
	defaultMatchWindow   = 10 * time.Minute
	defaultTokenTTL      = 24 * time.Hour
	defaultSweepInterval = 5 * time.Minute
	defaultSessionTTL    = 7 * 24 * time.Hour
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:                envOr("ESHMARKET_ADDR", ":8080"),
		Environment:         envOr("ESHMARKET_ENV", "development"),
		AdminToken:          os.Getenv("ADMIN_TOKEN"),
		SessionSigningKey:   envOr("SESSION_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SessionTTL:          envDuration("SESSION_TTL", defaultSessionTTL),
		ReviewWebhookURL:    os.Getenv("REVIEW_WEBHOOK_URL"),
		BotToken:            os.Getenv("BOT_TOKEN"),
		PublicBaseURL:       envOr("PUBLIC_BASE_URL", "http://localhost:8080"),
		WebhookToken:        os.Getenv("WEBHOOK_TOKEN"),
		WebhookTokenHash:    os.Getenv("WEBHOOK_TOKEN_HASH"),
		MaxProofBytes:       envInt64("MAX_PROOF_BYTES", defaultMaxProofBytes),
		DonationMatchWindow: envDuration("DONATION_MATCH_WINDOW", defaultMatchWindow),
		DonationMatchField:  MatchDisplayName,
		CreditOnMatch:       os.Getenv("DONATION_CREDIT_ON_MATCH") == "true",
		ReviewTokenTTL:      envDuration("REVIEW_TOKEN_TTL", defaultTokenTTL),
		SweepInterval:       envDuration("REVIEW_SWEEP_INTERVAL", defaultSweepInterval),
		ProofVerifier:       VerifierHumanReview,
		OCREndpoint:         os.Getenv("OCR_ENDPOINT"),
		SeedDemo:            os.Getenv("ESHMARKET_SEED_DEMO") == "true",
	}

	if os.Getenv("DONATION_MATCH_FIELD") == string(MatchExternalID) {
		cfg.DonationMatchField = MatchExternalID
	}
	if os.Getenv("PROOF_VERIFIER") == string(VerifierKeyword) {
		cfg.ProofVerifier = VerifierKeyword
	}
	if phrases := os.Getenv("PROOF_REQUIRED_PHRASES"); phrases != "" {
		for _, p := range strings.Split(phrases, "|") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.RequiredPhrases = append(cfg.RequiredPhrases, p)
			}
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
