// Package models holds the redemption request and its lifecycle:
// Pending to Processing to Fulfilled, or Pending to Cancelled.
package models

import (
	"time"

	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
)

// Status is the lifecycle state of a redemption request.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusFulfilled  Status = "fulfilled"
	StatusCancelled  Status = "cancelled"
)

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusFulfilled || s == StatusCancelled
}

// Request is one redemption. Amount is fixed at creation and never
// re-read from the live balance.
type Request struct {
	User        id.Address   `json:"user"`
	RequestID   id.RequestID `json:"request_id"`
	Amount      uint64       `json:"amount"`
	Status      Status       `json:"status"`
	Delegate    id.Address   `json:"custody_delegate"`
	RequestedAt time.Time    `json:"requested_at"`
	CompletedAt time.Time    `json:"completed_at"`
}

// Key identifies a request.
type Key struct {
	User      id.Address
	RequestID id.RequestID
}

func (r *Request) Key() Key { return Key{User: r.User, RequestID: r.RequestID} }

// NewRequest creates a Pending request whose hold is placed with the
// custody delegate derived from program, user and requestID.
func NewRequest(program, user id.Address, requestID id.RequestID, amount uint64, now time.Time) (*Request, error) {
	if amount == 0 {
		return nil, dErrors.InvalidAmount()
	}
	return &Request{
		User:        user,
		RequestID:   requestID,
		Amount:      amount,
		Status:      StatusPending,
		Delegate:    id.CustodyDelegate(program, user, requestID),
		RequestedAt: now,
	}, nil
}

// StartProcessing moves Pending to Processing.
func (r *Request) StartProcessing() error {
	if r.Status != StatusPending {
		return dErrors.InvalidRequestStatus()
	}
	r.Status = StatusProcessing
	return nil
}

// Fulfill moves Pending or Processing to Fulfilled.
func (r *Request) Fulfill(now time.Time) error {
	if r.Status != StatusPending && r.Status != StatusProcessing {
		return dErrors.InvalidRequestStatus()
	}
	r.Status = StatusFulfilled
	r.CompletedAt = now
	return nil
}

// Cancel moves Pending to Cancelled. A request already being processed
// can no longer be cancelled.
func (r *Request) Cancel(now time.Time) error {
	if r.Status != StatusPending {
		return dErrors.InvalidRequestStatus()
	}
	r.Status = StatusCancelled
	r.CompletedAt = now
	return nil
}
