// Package device summarizes the client User-Agent into a short
// "browser on OS" label so purchase audit logs can record what kind of
// client initiated a request without storing the raw header.
package device

import (
	"net/http"

	"github.com/mssola/useragent"

	"eshmarket/pkg/requestcontext"
)

// Metadata parses the User-Agent captured by request.ClientMetadata and
// injects a device summary into the context. Register it after
// request.ClientMetadata in the middleware chain.
func Metadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if ua := requestcontext.UserAgent(ctx); ua != "" {
			ctx = requestcontext.WithDevice(ctx, Summarize(ua))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Summarize converts a raw User-Agent into "Browser x.y on OS".
// Unknown agents come back as "unknown".
func Summarize(rawUA string) string {
	ua := useragent.New(rawUA)
	name, version := ua.Browser()
	os := ua.OS()
	if name == "" && os == "" {
		return "unknown"
	}
	summary := name
	if version != "" {
		summary += " " + version
	}
	if os != "" {
		if summary != "" {
			summary += " on "
		}
		summary += os
	}
	return summary
}
