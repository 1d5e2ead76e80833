// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; services read them without importing net/http.
//
//	signer := requestcontext.Signer(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject them directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithSigner(ctx, addr)
package requestcontext

import (
	"context"
	"time"

	id "aurum/pkg/domain"
)

type (
	signerKey         struct{}
	requestIDKey      struct{}
	requestTimeKey    struct{}
	idempotencyKeyKey struct{}
	clientIPKey       struct{}
)

// Signer returns the address that authenticated the current request.
// The zero address means no signer was established.
func Signer(ctx context.Context) id.Address {
	if addr, ok := ctx.Value(signerKey{}).(id.Address); ok {
		return addr
	}
	return id.Address{}
}

// WithSigner injects the authenticated signer address.
func WithSigner(ctx context.Context, signer id.Address) context.Context {
	return context.WithValue(ctx, signerKey{}, signer)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// IdempotencyKey returns the client supplied Idempotency-Key, if any.
func IdempotencyKey(ctx context.Context) string {
	if key, ok := ctx.Value(idempotencyKeyKey{}).(string); ok {
		return key
	}
	return ""
}

// WithIdempotencyKey injects the client supplied Idempotency-Key.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyKey{}, key)
}

// ClientIP returns the caller's address as resolved by the metadata
// middleware, or "" outside a request.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// WithClientIP injects the caller's address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
