package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	id "eshmarket/pkg/domain"
)

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	m := NewManager("signing-key", time.Hour)
	accountID := id.NewAccountID()

	token, err := m.Issue(accountID, true)
	require.NoError(t, err)

	gotID, admin, err := m.Verify(token)
	require.NoError(t, err)
	require.Equal(t, accountID, gotID)
	require.True(t, admin)
}

func TestVerify_RejectsWrongKey(t *testing.T) {
	token, err := NewManager("key-a", time.Hour).Issue(id.NewAccountID(), false)
	require.NoError(t, err)

	_, _, err = NewManager("key-b", time.Hour).Verify(token)
	require.Error(t, err)
}

func TestVerify_RejectsExpired(t *testing.T) {
	issued := time.Now()
	m := NewManager("signing-key", time.Minute, WithClock(func() time.Time { return issued }))

	token, err := m.Issue(id.NewAccountID(), false)
	require.NoError(t, err)

	late := NewManager("signing-key", time.Minute, WithClock(func() time.Time {
		return issued.Add(2 * time.Minute)
	}))
	_, _, err = late.Verify(token)
	require.Error(t, err)
}

func TestMiddleware_InjectsIdentity(t *testing.T) {
	m := NewManager("signing-key", time.Hour)
	accountID := id.NewAccountID()
	token, err := m.Issue(accountID, false)
	require.NoError(t, err)

	var gotID id.AccountID
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotID = GetAccountID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	m.Middleware(next).ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, accountID, gotID)
}

func TestMiddleware_IgnoresGarbageCookie(t *testing.T) {
	m := NewManager("signing-key", time.Hour)

	var gotID id.AccountID
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotID = GetAccountID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-jwt"})
	m.Middleware(next).ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, gotID.IsNil())
}

func TestRequireSession_Blocks(t *testing.T) {
	handler := RequireSession(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
