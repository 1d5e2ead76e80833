package models

import (
	"time"

	id "aurum/pkg/domain"
	"aurum/pkg/platform/audit"
)

// AggregateRedemption is the aggregate type of lifecycle events.
const AggregateRedemption = "redemption"

func aggregateID(user id.Address, requestID id.RequestID) string {
	return user.String() + "/" + requestID.String()
}

type RedemptionRequested struct {
	User      id.Address   `json:"user"`
	RequestID id.RequestID `json:"request_id"`
	Amount    uint64       `json:"amount"`
	Delegate  id.Address   `json:"custody_delegate"`
	Timestamp time.Time    `json:"timestamp"`
}

func (e RedemptionRequested) EventType() string     { return audit.EventRedemptionRequested }
func (e RedemptionRequested) AggregateType() string { return AggregateRedemption }
func (e RedemptionRequested) AggregateID() string   { return aggregateID(e.User, e.RequestID) }

type RedemptionStatusUpdated struct {
	User      id.Address   `json:"user"`
	RequestID id.RequestID `json:"request_id"`
	OldStatus Status       `json:"old_status"`
	NewStatus Status       `json:"new_status"`
}

func (e RedemptionStatusUpdated) EventType() string     { return audit.EventRedemptionStatusUpdated }
func (e RedemptionStatusUpdated) AggregateType() string { return AggregateRedemption }
func (e RedemptionStatusUpdated) AggregateID() string   { return aggregateID(e.User, e.RequestID) }

type RedemptionFulfilled struct {
	User      id.Address   `json:"user"`
	RequestID id.RequestID `json:"request_id"`
	Amount    uint64       `json:"amount"`
	Timestamp time.Time    `json:"timestamp"`
}

func (e RedemptionFulfilled) EventType() string     { return audit.EventRedemptionFulfilled }
func (e RedemptionFulfilled) AggregateType() string { return AggregateRedemption }
func (e RedemptionFulfilled) AggregateID() string   { return aggregateID(e.User, e.RequestID) }

type RedemptionCancelled struct {
	User      id.Address   `json:"user"`
	RequestID id.RequestID `json:"request_id"`
	Amount    uint64       `json:"amount"`
	Timestamp time.Time    `json:"timestamp"`
}

func (e RedemptionCancelled) EventType() string     { return audit.EventRedemptionCancelled }
func (e RedemptionCancelled) AggregateType() string { return AggregateRedemption }
func (e RedemptionCancelled) AggregateID() string   { return aggregateID(e.User, e.RequestID) }
