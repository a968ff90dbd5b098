// Package httptransport assembles the HTTP surface: routers, middleware
// ordering, and the split between public, session-gated, and admin routes.
// Handlers stay in their domain packages; this package only wires them.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	accounthandler "eshmarket/internal/account/handler"
	"eshmarket/internal/auth/session"
	cataloghandler "eshmarket/internal/catalog/handler"
	donationhandler "eshmarket/internal/donation/handler"
	"eshmarket/internal/platform/health"
	platformmetrics "eshmarket/internal/platform/metrics"
	purchasehandler "eshmarket/internal/purchase/handler"
	adminmw "eshmarket/pkg/platform/middleware/admin"
	"eshmarket/pkg/platform/middleware/device"
	request "eshmarket/pkg/platform/middleware/request"
)

// Deps carries everything the router needs. All fields are required except
// AdminToken; when it is empty the admin routes are not mounted.
type Deps struct {
	Catalog   *cataloghandler.Handler
	Accounts  *accounthandler.Handler
	Donations *donationhandler.Handler
	Purchases *purchasehandler.Handler
	Sessions  *session.Manager
	Health    *health.Handler
	Metrics   *platformmetrics.Metrics

	AdminToken   string
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// NewRouter wires all endpoints with the shared middleware stack.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(request.ClientMetadata)
	r.Use(device.Metadata)
	r.Use(request.Logger(d.Logger))
	r.Use(d.Metrics.Middleware)
	r.Use(request.BodyLimit(d.MaxBodyBytes))
	r.Use(d.Sessions.Middleware)

	d.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", platformmetrics.Handler())

	// Public: browsable catalog, the webhook ingress, and the reviewer
	// approval link (its token is the credential).
	d.Catalog.Register(r)
	d.Donations.Register(r)
	d.Purchases.RegisterPublic(r)

	// Session-gated buyer surface.
	r.Group(func(r chi.Router) {
		r.Use(session.RequireSession)
		d.Accounts.Register(r)
		d.Purchases.Register(r)
	})

	if d.AdminToken != "" {
		r.Group(func(r chi.Router) {
			r.Use(adminmw.RequireAdminToken(d.AdminToken, d.Logger))
			d.Catalog.RegisterAdmin(r)
			d.Accounts.RegisterAdmin(r)
			d.Donations.RegisterAdmin(r)
			d.Purchases.RegisterAdmin(r)
		})
	}

	return r
}
