// Package idempotency replays the stored response of a mutating request when
// a client retries it with the same Idempotency-Key.
package idempotency

import (
	"context"
	"encoding/json"
	"time"
)

// CachedResponse is a completed response kept for replay. A zero StatusCode
// marks a key whose first request is still running.
type CachedResponse struct {
	StatusCode  int             `json:"status_code"`
	Body        json.RawMessage `json:"body,omitempty"`
	RequestHash string          `json:"request_hash"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// InFlight reports whether the first request for the key has not finished.
func (c *CachedResponse) InFlight() bool {
	return c.StatusCode == 0
}

// Store persists idempotency records.
type Store interface {
	// Get returns the record for key, or nil when there is none.
	Get(ctx context.Context, key string) (*CachedResponse, error)

	// Claim atomically reserves key for a new request. It returns false
	// when a record already exists.
	Claim(ctx context.Context, key, requestHash string, ttl time.Duration) (bool, error)

	// Save replaces the reservation with the final response.
	Save(ctx context.Context, key string, response *CachedResponse, ttl time.Duration) error

	// Release drops a reservation so the request can be retried.
	Release(ctx context.Context, key string) error
}
