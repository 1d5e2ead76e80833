package idempotency

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	dErrors "aurum/pkg/domain-errors"
	"aurum/pkg/platform/httputil"
	"aurum/pkg/requestcontext"
)

const (
	HeaderKey      = "Idempotency-Key"
	HeaderReplayed = "Idempotent-Replayed"
	maxKeyLength   = 255
)

// Middleware replays responses for retried mutating requests. Records are
// scoped to the signer, method and path, so two signers may reuse a key.
// Responses with status 5xx are not stored and the request may be retried.
func Middleware(store Store, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(HeaderKey))
			if key == "" || r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			if len(key) > maxKeyLength {
				httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Idempotency-Key too long"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			hash := hashOf(body)
			scoped := requestcontext.Signer(ctx).String() + ":" + r.Method + ":" + r.URL.Path + ":" + key

			claimed, err := store.Claim(ctx, scoped, hash, ttl)
			if err != nil {
				logger.ErrorContext(ctx, "idempotency claim failed", "error", err, "request_id", requestcontext.RequestID(ctx))
				httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "idempotency store unavailable"))
				return
			}
			if !claimed {
				replay(w, r, store, scoped, hash, logger)
				return
			}

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(requestcontext.WithIdempotencyKey(ctx, key)))

			if rec.status >= http.StatusInternalServerError {
				if err := store.Release(ctx, scoped); err != nil {
					logger.WarnContext(ctx, "idempotency release failed", "error", err)
				}
				return
			}
			resp := &CachedResponse{StatusCode: rec.status, Body: bytes.TrimSpace(rec.body.Bytes()), RequestHash: hash}
			if err := store.Save(ctx, scoped, resp, ttl); err != nil {
				logger.WarnContext(ctx, "idempotency save failed", "error", err, "request_id", requestcontext.RequestID(ctx))
			}
		})
	}
}

func replay(w http.ResponseWriter, r *http.Request, store Store, scoped, hash string, logger *slog.Logger) {
	ctx := r.Context()
	cached, err := store.Get(ctx, scoped)
	if err != nil {
		logger.ErrorContext(ctx, "idempotency lookup failed", "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "idempotency store unavailable"))
		return
	}
	switch {
	case cached == nil:
		// Expired between Claim and Get; the client should retry.
		httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "request in progress"))
	case cached.RequestHash != hash:
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, httputil.ErrorResponse{
			Error:            "idempotency_key_reused",
			ErrorDescription: "Idempotency-Key was already used with a different request body",
		})
	case cached.InFlight():
		httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "request in progress"))
	default:
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set(HeaderReplayed, "true")
		w.WriteHeader(cached.StatusCode)
		_, _ = w.Write(cached.Body) //nolint:errcheck // headers already sent
	}
}

type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func hashOf(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
