// Package tracer provides a small tracing abstraction for ledger calls.
//
// The ledger starts one span per contract call without importing
// OpenTelemetry directly. Implementations:
//   - NoopTracer: for tests
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording err when non-nil.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span; the returned context carries it.
	//
	//   ctx, span := t.Start(ctx, "ledger.identity_registry.register_identity",
	//       tracer.Uint64(tracer.AttrAppID, uint64(app)),
	//   )
	//   defer span.End(err)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Uint64 records value as a string when it does not fit in an int64.
func Uint64(key string, value uint64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Attribute keys used by the ledger.
const (
	AttrAppID     = "ledger.app_id"
	AttrKind      = "ledger.kind"
	AttrMethod    = "ledger.method"
	AttrCallID    = "ledger.call_id"
	AttrCaller    = "ledger.caller"
	AttrErrorKind = "ledger.error_kind"
	AttrEvents    = "ledger.events"
)

// Event names used by the ledger.
const (
	EventCommitted = "ledger.committed"
)
