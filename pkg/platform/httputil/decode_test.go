package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "aurum/pkg/domain-errors"
)

type amountRequest struct {
	Amount uint64 `json:"amount"`
	Memo   string `json:"memo"`
}

func (r *amountRequest) Normalize() { r.Memo = strings.TrimSpace(r.Memo) }

func (r *amountRequest) Validate() error {
	if r.Amount == 0 {
		return dErrors.InvalidAmount()
	}
	if len(r.Memo) > 8 {
		return errors.New("memo too long")
	}
	return nil
}

func decode(body string, limit int64) (*httptest.ResponseRecorder, *amountRequest, bool) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	req, ok := DecodeAndPrepare[amountRequest](w, r, logger)
	return w, req, ok
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("normalizes before validating", func(t *testing.T) {
		_, req, ok := decode(`{"amount":5,"memo":"   hi   "}`, 0)
		require.True(t, ok)
		assert.Equal(t, uint64(5), req.Amount)
		assert.Equal(t, "hi", req.Memo)
	})

	t.Run("malformed json", func(t *testing.T) {
		w, req, ok := decode(`{amount}`, 0)
		assert.False(t, ok)
		assert.Nil(t, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", errorBody(t, w).Error)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		w, _, ok := decode(`{"amount":5,"extra":true}`, 0)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("domain error keeps its code", func(t *testing.T) {
		w, _, ok := decode(`{"amount":0}`, 0)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "invalid_amount", errorBody(t, w).Error)
	})

	t.Run("plain error becomes validation error", func(t *testing.T) {
		w, _, ok := decode(`{"amount":1,"memo":"far too long"}`, 0)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := errorBody(t, w)
		assert.Equal(t, "validation_error", body.Error)
		assert.Equal(t, "memo too long", body.ErrorDescription)
	})

	t.Run("oversized body", func(t *testing.T) {
		w, _, ok := decode(`{"amount":1,"memo":"`+strings.Repeat("x", 64)+`"}`, 16)
		assert.False(t, ok)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestPrepare_PlainTypes(t *testing.T) {
	assert.NoError(t, Prepare(&struct{ Name string }{}))
}
