package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
)

var (
	program = id.Address{7}
	user    = id.Address{1}
	now     = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
)

func pending(t *testing.T) *Request {
	t.Helper()
	r, err := NewRequest(program, user, 1, 100, now)
	require.NoError(t, err)
	return r
}

func TestNewRequest(t *testing.T) {
	r := pending(t)
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, id.CustodyDelegate(program, user, 1), r.Delegate)
	assert.True(t, r.CompletedAt.IsZero())

	_, err := NewRequest(program, user, 1, 0, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidAmount))
}

func TestTransitions(t *testing.T) {
	later := now.Add(time.Hour)

	tests := []struct {
		name  string
		setup func(*Request)
		apply func(*Request) error
		want  Status
		ok    bool
	}{
		{"pending to processing", nil, (*Request).StartProcessing, StatusProcessing, true},
		{"processing to processing", func(r *Request) { r.Status = StatusProcessing }, (*Request).StartProcessing, StatusProcessing, false},
		{"pending to fulfilled", nil, func(r *Request) error { return r.Fulfill(later) }, StatusFulfilled, true},
		{"processing to fulfilled", func(r *Request) { r.Status = StatusProcessing }, func(r *Request) error { return r.Fulfill(later) }, StatusFulfilled, true},
		{"fulfilled to fulfilled", func(r *Request) { r.Status = StatusFulfilled }, func(r *Request) error { return r.Fulfill(later) }, StatusFulfilled, false},
		{"cancelled to fulfilled", func(r *Request) { r.Status = StatusCancelled }, func(r *Request) error { return r.Fulfill(later) }, StatusCancelled, false},
		{"pending to cancelled", nil, func(r *Request) error { return r.Cancel(later) }, StatusCancelled, true},
		{"processing to cancelled", func(r *Request) { r.Status = StatusProcessing }, func(r *Request) error { return r.Cancel(later) }, StatusProcessing, false},
		{"fulfilled to cancelled", func(r *Request) { r.Status = StatusFulfilled }, func(r *Request) error { return r.Cancel(later) }, StatusFulfilled, false},
		{"cancelled to cancelled", func(r *Request) { r.Status = StatusCancelled }, func(r *Request) error { return r.Cancel(later) }, StatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := pending(t)
			if tt.setup != nil {
				tt.setup(r)
			}
			err := tt.apply(r)
			if tt.ok {
				require.NoError(t, err)
			} else {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidRequestStatus))
			}
			assert.Equal(t, tt.want, r.Status)
			assert.Equal(t, uint64(100), r.Amount)
			if tt.ok && tt.want.IsTerminal() {
				assert.Equal(t, later, r.CompletedAt)
			}
		})
	}
}
