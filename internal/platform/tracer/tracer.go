// Package tracer is a small tracing abstraction used by the token services.
//
// Services depend on Tracer and Span only. NoopTracer serves tests and
// deployments without a collector; OTelTracer forwards to OpenTelemetry.
package tracer

import "context"

// Span represents an active trace span.
type Span interface {
	// End completes the span, marking it failed when err is non-nil.
	// It must be called exactly once.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute    { return Attribute{Key: key, Value: value} }
func Bool(key string, value bool) Attribute { return Attribute{Key: key, Value: value} }
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Uint64 records an unsigned amount. Values above MaxInt64 are clamped since
// OpenTelemetry attributes are signed.
func Uint64(key string, value uint64) Attribute {
	const maxInt64 = 1<<63 - 1
	if value > maxInt64 {
		value = maxInt64
	}
	return Attribute{Key: key, Value: int64(value)}
}
