package messaging

import (
	"context"
	"log/slog"

	"github.com/bibbank/origination/internal/domain/event"
)

// LogPublisher writes domain events to the structured log. Used in
// development and as the fallback when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a log-backed publisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs each event at INFO.
func (p *LogPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	for _, e := range events {
		p.logger.InfoContext(ctx, "domain event",
			slog.String("event_type", e.EventType()),
			slog.String("event_id", e.EventID()),
			slog.String("aggregate_id", e.AggregateID()),
			slog.String("aggregate_type", e.AggregateType()),
		)
	}
	return nil
}
