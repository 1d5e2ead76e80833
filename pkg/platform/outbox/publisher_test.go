package outbox_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurum/pkg/platform/outbox"
	"aurum/pkg/platform/outbox/store"
	"aurum/pkg/requestcontext"
)

type sampleEvent struct {
	User   string `json:"user"`
	Amount uint64 `json:"amount"`
}

func (sampleEvent) EventType() string     { return "RedemptionRequested" }
func (sampleEvent) AggregateType() string { return "redemption" }
func (e sampleEvent) AggregateID() string { return e.User }

func TestPublisher_Publish(t *testing.T) {
	s := store.NewInMemory()
	p := outbox.NewPublisher(s)
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)

	require.NoError(t, p.Publish(ctx, sampleEvent{User: "abc", Amount: 100}))

	entries := s.All()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "RedemptionRequested", e.EventType)
	assert.Equal(t, "redemption", e.AggregateType)
	assert.Equal(t, "abc", e.AggregateID)
	assert.Equal(t, at, e.CreatedAt)
	assert.True(t, e.IsPending())

	var body sampleEvent
	require.NoError(t, json.Unmarshal(e.Payload, &body))
	assert.Equal(t, uint64(100), body.Amount)
}
