// Package audit records domain events: one structured audit log line and one
// outbox entry per event, inside the caller's transaction.
package audit

import (
	"context"
	"log/slog"

	"aurum/pkg/platform/outbox"
	"aurum/pkg/requestcontext"
)

// Publisher appends events to the outbox. Satisfied by *outbox.Publisher.
type Publisher interface {
	Publish(ctx context.Context, event outbox.Event) error
}

// Logger records audit events.
type Logger struct {
	textLogger *slog.Logger
	publisher  Publisher
}

// NewLogger creates an audit logger. Either argument may be nil.
func NewLogger(textLogger *slog.Logger, publisher Publisher) *Logger {
	return &Logger{textLogger: textLogger, publisher: publisher}
}

// Record publishes event and logs it with attributes. The publish error is
// returned so the surrounding transaction rolls back with it; an operation
// never commits without its event.
//
//	if err := s.audit.Record(ctx, evt, "amount", amount); err != nil {
//	    return err
//	}
func (l *Logger) Record(ctx context.Context, event outbox.Event, attributes ...any) error {
	if l == nil {
		return nil
	}
	if l.publisher != nil {
		if err := l.publisher.Publish(ctx, event); err != nil {
			return err
		}
	}
	l.log(ctx, event.EventType(), event.AggregateID(), attributes)
	return nil
}

func (l *Logger) log(ctx context.Context, eventType, aggregateID string, attributes []any) {
	if l.textLogger == nil {
		return
	}
	args := append(attributes,
		"event", eventType,
		"aggregate_id", aggregateID,
		"category", string(CategoryOf(eventType)),
		"log_type", "audit",
	)
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	if signer := requestcontext.Signer(ctx); !signer.IsZero() {
		args = append(args, "signer", signer.String())
	}
	l.textLogger.InfoContext(ctx, eventType, args...)
}
