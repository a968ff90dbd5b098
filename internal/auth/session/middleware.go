package session

import (
	"context"
	"net/http"

	id "eshmarket/pkg/domain"
	dErrors "eshmarket/pkg/domain-errors"
	"eshmarket/pkg/platform/httputil"
)

type contextKeyAccountID struct{}
type contextKeyAdmin struct{}

// GetAccountID retrieves the authenticated account id from the context.
// Returns a nil id when the request carries no valid session.
func GetAccountID(ctx context.Context) id.AccountID {
	if accountID, ok := ctx.Value(contextKeyAccountID{}).(id.AccountID); ok {
		return accountID
	}
	return id.AccountID{}
}

// IsAdmin reports whether the session belongs to an admin account.
func IsAdmin(ctx context.Context) bool {
	admin, _ := ctx.Value(contextKeyAdmin{}).(bool)
	return admin
}

// withIdentity stores the verified identity on the context.
func withIdentity(ctx context.Context, accountID id.AccountID, admin bool) context.Context {
	ctx = context.WithValue(ctx, contextKeyAccountID{}, accountID)
	return context.WithValue(ctx, contextKeyAdmin{}, admin)
}

// Middleware verifies the session cookie when present and injects the
// identity into the context. Requests without a cookie pass through
// unauthenticated; use RequireSession on routes that need an identity.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err == nil && cookie.Value != "" {
			if accountID, admin, verr := m.Verify(cookie.Value); verr == nil {
				r = r.WithContext(withIdentity(r.Context(), accountID, admin))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSession rejects requests that did not present a valid session cookie.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetAccountID(r.Context()).IsNil() {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "user not authenticated"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
