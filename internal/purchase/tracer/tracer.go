// Package tracer provides a lightweight tracing abstraction for the
// purchase coordinator. The coordinator emits spans for the verification
// paths without depending directly on OpenTelemetry APIs.
//
// Implementations:
//   - NoopTracer: for tests (zero overhead)
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans for distributed tracing.
// Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	// The returned context contains the new span and should be passed to
	// child operations. The span must be ended by calling Span.End().
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

type spanContextKey struct{}

// ContextWithSpan returns a context carrying the given span. Tracer
// implementations call this from Start so child operations can reach the
// active span through FromContext.
func ContextWithSpan(ctx context.Context, span Span) context.Context {
	return context.WithValue(ctx, spanContextKey{}, span)
}

// FromContext returns the active span, or a no-op span when the context
// carries none.
func FromContext(ctx context.Context) Span {
	if span, ok := ctx.Value(spanContextKey{}).(Span); ok {
		return span
	}
	return &noopSpan{}
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names used by the purchase coordinator.
const (
	SpanInitiate      = "purchase.initiate"
	SpanApprove       = "purchase.approve"
	SpanDonationMatch = "purchase.donation_match"
	SpanExpireSweep   = "purchase.expire_sweep"
)

// Attribute keys used by the purchase coordinator.
const (
	AttrAccountID = "account_id"
	AttrProductID = "product_id"
	AttrPath      = "path"
	AttrStatus    = "status"
	AttrFastPath  = "balance_fast_path"
)

// Event names used by the purchase coordinator.
const (
	EventNotificationSent   = "notification.sent"
	EventNotificationEdited = "notification.edited"
	EventFulfillmentSent    = "fulfillment.sent"
)
