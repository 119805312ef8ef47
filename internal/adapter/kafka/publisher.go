// Package kafka publishes import events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/maplist-import/internal/domain"
)

// EventTypeImported is the event_type header of every message this package writes.
const EventTypeImported = "location.imported"

// Publisher produces imported-location events.
// It implements pipeline.EventPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishImported writes one message per event in a single WriteMessages call.
// Messages are keyed by collection so a collection's events stay ordered.
func (p *Publisher) PublishImported(ctx context.Context, events []domain.ImportedLocation) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d imported events: %w", len(msgs), err)
	}
	p.logger.Debug("imported events published", "count", len(msgs), "topic", p.writer.Topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func serializeToMessage(event domain.ImportedLocation) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize imported location: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.CollectionID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(EventTypeImported)},
			{Key: "approval", Value: []byte(event.Approval)},
			{Key: "imported_at", Value: []byte(event.ImportedAt.Format(time.RFC3339))},
		},
	}, nil
}
