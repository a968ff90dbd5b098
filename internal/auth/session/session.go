// Package session issues and verifies the signed cookie that identifies a
// logged-in account. The identity-provider OAuth exchange happens upstream;
// this package only carries the resulting identity between requests.
package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "eshmarket/pkg/domain"
	dErrors "eshmarket/pkg/domain-errors"
)

// CookieName is the session cookie identifier.
const CookieName = "eshmarket_session"

// Claims are the JWT claims carried by the session cookie.
type Claims struct {
	AccountID string `json:"account_id"`
	Admin     bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens.
type Manager struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager constructs a session manager. ttl bounds how long an issued
// session stays valid.
func NewManager(signingKey string, ttl time.Duration, opts ...ManagerOption) *Manager {
	m := &Manager{signingKey: []byte(signingKey), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue mints a signed session token for the account.
func (m *Manager) Issue(accountID id.AccountID, admin bool) (string, error) {
	now := m.now()
	claims := Claims{
		AccountID: accountID.String(),
		Admin:     admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign session token")
	}
	return signed, nil
}

// Verify parses and validates a session token, returning the account identity.
func (m *Manager) Verify(tokenString string) (id.AccountID, bool, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing method")
		}
		return m.signingKey, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return id.AccountID{}, false, dErrors.New(dErrors.CodeUnauthorized, "invalid session")
	}
	accountID, err := id.ParseAccountID(claims.AccountID)
	if err != nil {
		return id.AccountID{}, false, dErrors.New(dErrors.CodeUnauthorized, "invalid session subject")
	}
	return accountID, claims.Admin, nil
}

// SetCookie writes the session cookie on the response.
func (m *Manager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
