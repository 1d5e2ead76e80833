package signer

import (
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	id "aurum/pkg/domain"
	"aurum/pkg/requestcontext"
)

type SignerSuite struct {
	suite.Suite
	key      ed25519.PrivateKey
	addr     id.Address
	now      time.Time
	verifier *Verifier
}

func TestSignerSuite(t *testing.T) {
	suite.Run(t, new(SignerSuite))
}

func (s *SignerSuite) SetupTest() {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	s.Require().NoError(err)
	s.key = priv
	s.addr, err = id.AddressFromPublicKey(pub)
	s.Require().NoError(err)

	s.now = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	s.verifier = NewVerifier("aurum", 5*time.Minute, 0)
	s.verifier.now = func() time.Time { return s.now }
}

func (s *SignerSuite) issue(audience string, ttl time.Duration) string {
	token, err := Issue(s.key, audience, ttl, s.now)
	s.Require().NoError(err)
	return token
}

func (s *SignerSuite) TestVerify() {
	s.Run("valid token yields signer", func() {
		addr, err := s.verifier.Verify(s.issue("aurum", time.Minute))
		s.Require().NoError(err)
		s.Equal(s.addr, addr)
	})

	s.Run("wrong audience", func() {
		_, err := s.verifier.Verify(s.issue("other", time.Minute))
		s.ErrorIs(err, jwt.ErrTokenInvalidAudience)
	})

	s.Run("lifetime above maximum", func() {
		_, err := s.verifier.Verify(s.issue("aurum", time.Hour))
		s.ErrorIs(err, ErrTokenTTL)
	})

	s.Run("expired", func() {
		token := s.issue("aurum", time.Minute)
		s.now = s.now.Add(2 * time.Minute)
		_, err := s.verifier.Verify(token)
		s.ErrorIs(err, jwt.ErrTokenExpired)
	})

	s.Run("subject does not match signing key", func() {
		_, other, err := ed25519.GenerateKey(rand.Reader)
		s.Require().NoError(err)
		claims := jwt.RegisteredClaims{
			Subject:   s.addr.String(),
			Audience:  jwt.ClaimStrings{"aurum"},
			IssuedAt:  jwt.NewNumericDate(s.now),
			ExpiresAt: jwt.NewNumericDate(s.now.Add(time.Minute)),
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(other)
		s.Require().NoError(err)

		_, err = s.verifier.Verify(forged)
		s.ErrorIs(err, jwt.ErrTokenSignatureInvalid)
	})

	s.Run("hmac tokens refused", func() {
		claims := jwt.RegisteredClaims{Subject: s.addr.String(), ExpiresAt: jwt.NewNumericDate(s.now.Add(time.Minute))}
		hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		s.Require().NoError(err)
		_, err = s.verifier.Verify(hs)
		s.Error(err)
	})
}

func (s *SignerSuite) TestRequireSigner() {
	var seen id.Address
	handler := RequireSigner(s.verifier, slog.New(slog.NewTextHandler(io.Discard, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.Signer(r.Context())
		}))

	s.Run("missing header", func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.True(strings.Contains(rec.Body.String(), "unauthenticated"))
	})

	s.Run("valid token", func() {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+s.issue("aurum", time.Minute))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		s.Equal(http.StatusOK, rec.Code)
		s.Equal(s.addr, seen)
	})
}
