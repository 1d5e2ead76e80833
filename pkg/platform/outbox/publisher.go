package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"aurum/pkg/requestcontext"
)

// Event is a domain event that knows where it belongs in the stream.
type Event interface {
	EventType() string
	AggregateType() string
	AggregateID() string
}

// Publisher turns domain events into outbox entries.
type Publisher struct {
	store Store
}

// NewPublisher creates a publisher appending to store.
func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

// Publish serializes event and appends it to the outbox. It joins the
// transaction carried by ctx, if any.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.EventType(), err)
	}
	entry := NewEntry(event.AggregateType(), event.AggregateID(), event.EventType(), payload, requestcontext.Now(ctx))
	if err := p.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("append %s: %w", event.EventType(), err)
	}
	return nil
}
