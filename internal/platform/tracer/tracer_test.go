package tracer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"aurum/internal/platform/tracer"
)

func TestNoopTracer_Start(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, "gatekeeper.evaluate",
		tracer.String("source", "abc"),
		tracer.Bool("allowed", true),
	)

	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)
	span.SetAttributes(tracer.Uint64("amount", 42))
	span.AddEvent("blacklist.checked")
	span.End(errors.New("denied"))
}

func TestOTelTracer_Start(t *testing.T) {
	tr := tracer.NewOTel(tracer.WithOTelTracer(noop.NewTracerProvider().Tracer("test")))

	_, span := tr.Start(context.Background(), "redemption.fulfill", tracer.Int64("request_id", 1))
	require.NotNil(t, span)
	span.SetAttributes(tracer.String("status", "fulfilled"))
	span.End(nil)
}

func TestUint64_Clamps(t *testing.T) {
	attr := tracer.Uint64("amount", ^uint64(0))
	assert.Equal(t, int64(1<<63-1), attr.Value)
}
