package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one event waiting in the transactional outbox. It is written in
// the same transaction as the state change it describes and relayed to the
// event stream afterwards.
type Entry struct {
	ID            uuid.UUID
	AggregateType string // e.g. "redemption", "blacklist", "config"
	AggregateID   string // e.g. "<user>/<request_id>", an address
	EventType     string // e.g. "RedemptionRequested"
	Payload       []byte // JSON-encoded event body
	CreatedAt     time.Time
	ProcessedAt   *time.Time // nil until published
}

// IsPending returns true if this entry has not been processed yet.
func (e *Entry) IsPending() bool {
	return e.ProcessedAt == nil
}

// NewEntry creates a new outbox entry with a generated UUID.
func NewEntry(aggregateType, aggregateID, eventType string, payload []byte, now time.Time) *Entry {
	return &Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}
}
