// Package httpserver builds the standard http.Server used by cmd/server so
// timeouts live in one place.
package httpserver

import (
	"net/http"
	"time"
)

// New returns an http.Server with sane production timeouts.
// ReadHeaderTimeout guards against slow-loris; the generous ReadTimeout
// accommodates proof media uploads up to the configured body limit.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
}
