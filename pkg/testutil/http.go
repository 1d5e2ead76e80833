package testutil

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"

	"aurum/pkg/platform/middleware/signer"
)

// Audience is the signer token audience used by handler tests.
const Audience = "aurum-test"

// NewSignedRouter returns a router that authenticates callers the way the
// server does.
func NewSignedRouter(logger *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(signer.RequireSigner(signer.NewVerifier(Audience, 5*time.Minute, 30*time.Second), logger))
	return r
}

// Bearer returns an Authorization header value signed by kp.
func (kp Keypair) Bearer() string {
	token, err := signer.Issue(kp.Private, Audience, time.Minute, time.Now())
	if err != nil {
		panic(err)
	}
	return "Bearer " + token
}

// DoJSON sends body as JSON to h, signed by as, and returns the recorder.
func DoJSON(h http.Handler, method, path string, as Keypair, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", as.Bearer())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
