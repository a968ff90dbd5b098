package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	accountmodels "eshmarket/internal/account/models"
	accountstore "eshmarket/internal/account/store"
	donationstore "eshmarket/internal/donation/store"
	"eshmarket/internal/donation/service"
	id "eshmarket/pkg/domain"
	"eshmarket/pkg/secrets"
)

func newWebhookRig(t *testing.T, secret, secretHash string) (*chi.Mux, *accountstore.InMemory, *donationstore.InMemory) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	accounts := accountstore.NewInMemory()
	ledger := donationstore.NewInMemory()
	svc := service.New(ledger, accounts, logger)
	h := New(svc, secret, secretHash, logger)

	r := chi.NewRouter()
	h.Register(r)
	return r, accounts, ledger
}

func postWebhook(router http.Handler, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/donation-webhook", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("x-webhook-token", token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const validPayload = `{"supporter_message":"rivka","quantity":2,"price":25000,"transaction_id":"trx-1"}`

func TestHandleWebhook_RejectsBadSecret(t *testing.T) {
	router, _, _ := newWebhookRig(t, "shared-secret", "")

	require.Equal(t, http.StatusUnauthorized, postWebhook(router, "", validPayload).Code)
	require.Equal(t, http.StatusUnauthorized, postWebhook(router, "wrong", validPayload).Code)
}

func TestHandleWebhook_IngestsAndCreditsBalance(t *testing.T) {
	router, accounts, ledger := newWebhookRig(t, "shared-secret", "")

	account := &accountmodels.Account{
		ID:         id.NewAccountID(),
		ExternalID: "300000000000000003",
		Username:   "rivka",
		CreatedAt:  time.Now(),
	}
	require.NoError(t, accounts.Upsert(context.Background(), account))

	rec := postWebhook(router, "shared-secret", validPayload)
	require.Equal(t, http.StatusOK, rec.Code)

	credited, err := accounts.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	require.Equal(t, int64(50000), credited.Balance.Money)

	entries, err := ledger.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, int64(50000), entries[0].Amount)
}

func TestHandleWebhook_RedeliveryIsConflict(t *testing.T) {
	router, _, ledger := newWebhookRig(t, "shared-secret", "")

	require.Equal(t, http.StatusOK, postWebhook(router, "shared-secret", validPayload).Code)
	require.Equal(t, http.StatusConflict, postWebhook(router, "shared-secret", validPayload).Code)

	entries, err := ledger.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestHandleWebhook_UnknownSupporterStillRecorded(t *testing.T) {
	router, _, ledger := newWebhookRig(t, "shared-secret", "")

	rec := postWebhook(router, "shared-secret", validPayload)
	require.Equal(t, http.StatusOK, rec.Code)

	entries, err := ledger.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestHandleWebhook_HashedSecretTakesPrecedence(t *testing.T) {
	hash, err := secrets.Hash("hashed-secret")
	require.NoError(t, err)

	// The plaintext secret on the handler is deliberately different; the
	// hash wins.
	router, _, _ := newWebhookRig(t, "other-secret", hash)

	require.Equal(t, http.StatusOK, postWebhook(router, "hashed-secret", validPayload).Code)
	require.Equal(t, http.StatusUnauthorized, postWebhook(router, "other-secret", validPayload).Code)
}

func TestHandleWebhook_RejectsMalformedPayload(t *testing.T) {
	router, _, _ := newWebhookRig(t, "shared-secret", "")

	rec := postWebhook(router, "shared-secret", `{"supporter_message":"","quantity":0,"price":0,"transaction_id":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
