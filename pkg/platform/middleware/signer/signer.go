// Package signer authenticates callers by a short-lived EdDSA JWT signed with
// the ed25519 key behind their address. The token subject is the address in
// hex, so verifying the signature proves the caller holds that key.
package signer

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "aurum/pkg/domain"
	"aurum/pkg/platform/httputil"
	"aurum/pkg/requestcontext"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrTokenTTL     = errors.New("token lifetime exceeds maximum")
)

// Verifier checks signer assertions.
type Verifier struct {
	audience  string
	maxTTL    time.Duration
	clockSkew time.Duration
	now       func() time.Time
}

// NewVerifier creates a verifier accepting tokens for audience whose
// lifetime is at most maxTTL.
func NewVerifier(audience string, maxTTL, clockSkew time.Duration) *Verifier {
	return &Verifier{audience: audience, maxTTL: maxTTL, clockSkew: clockSkew, now: time.Now}
}

// Verify validates tokenString and returns the signer address.
func (v *Verifier) Verify(tokenString string) (id.Address, error) {
	var signer id.Address
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			addr, err := id.ParseAddress(claims.Subject)
			if err != nil {
				return nil, fmt.Errorf("invalid subject: %w", err)
			}
			signer = addr
			return addr.PublicKey(), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithAudience(v.audience),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return id.Address{}, err
	}
	if claims.IssuedAt == nil || claims.ExpiresAt.Sub(claims.IssuedAt.Time) > v.maxTTL {
		return id.Address{}, ErrTokenTTL
	}
	return signer, nil
}

// Issue signs a token for the address behind key. Clients and tests use it
// to build Authorization headers.
func Issue(key ed25519.PrivateKey, audience string, ttl time.Duration, now time.Time) (string, error) {
	addr, err := id.AddressFromPublicKey(key.Public().(ed25519.PublicKey))
	if err != nil {
		return "", err
	}
	claims := jwt.RegisteredClaims{
		Subject:   addr.String(),
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// RequireSigner rejects requests without a valid signer token and puts the
// signer address in the request context.
func RequireSigner(v *Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthenticated request - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthenticated(w, "Missing or invalid Authorization header")
				return
			}

			addr, err := v.Verify(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthenticated request - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthenticated(w, "Invalid or expired signer token")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithSigner(ctx, addr)))
		})
	}
}

func writeUnauthenticated(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="aurum"`)
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{
		Error:            "unauthenticated",
		ErrorDescription: desc,
	})
}
