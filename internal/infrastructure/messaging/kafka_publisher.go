// Package messaging provides the event publisher adapters.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bibbank/origination/internal/domain/event"
	"github.com/bibbank/origination/pkg/kafka"
)

const topicPrefix = "origination.events"

// KafkaPublisher publishes domain events to Kafka, one topic per aggregate
// type, keyed by aggregate ID so per-session ordering is preserved.
type KafkaPublisher struct {
	producer *kafka.Producer
}

// NewKafkaPublisher creates a publisher over the given producer.
func NewKafkaPublisher(producer *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// Publish serialises and sends the events.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", e.EventType(), err)
		}

		msg := kafka.Message{
			Key:   []byte(e.AggregateID()),
			Value: payload,
			Headers: map[string]string{
				"event_type": e.EventType(),
				"event_id":   e.EventID(),
			},
		}

		if err := p.producer.Publish(ctx, topicFor(e), msg); err != nil {
			return err
		}
	}
	return nil
}

func topicFor(e event.DomainEvent) string {
	return topicPrefix + "." + strings.ToLower(e.AggregateType())
}
