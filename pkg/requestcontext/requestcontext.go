// Package requestcontext carries per-request metadata through context values
// so middleware, handlers, and services can share it without plumbing extra
// parameters.
package requestcontext

import "context"

type contextKey int

const (
	keyRequestID contextKey = iota
	keyUserAgent
	keyClientIP
	keyDevice
)

// WithRequestID returns a context carrying the request identifier.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// RequestID returns the request identifier, or empty string if unset.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(keyRequestID).(string)
	return v
}

// WithUserAgent returns a context carrying the raw User-Agent header.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, keyUserAgent, ua)
}

// UserAgent returns the raw User-Agent header, or empty string if unset.
func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(keyUserAgent).(string)
	return v
}

// WithClientIP returns a context carrying the client address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, keyClientIP, ip)
}

// ClientIP returns the client address, or empty string if unset.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(keyClientIP).(string)
	return v
}

// WithDevice returns a context carrying a human-readable device summary
// (browser and OS) derived from the User-Agent.
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, keyDevice, device)
}

// Device returns the device summary, or empty string if unset.
func Device(ctx context.Context) string {
	v, _ := ctx.Value(keyDevice).(string)
	return v
}
