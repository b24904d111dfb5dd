// Package kafka provides a Kafka-backed eventstream publisher.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/aupherehq/recall/pkg/eventstream"
)

// Config holds connection settings for the Kafka publisher.
type Config struct {
	// Brokers is the list of broker addresses.
	Brokers []string

	// Topic is the topic turn events are written to.
	Topic string
}

// Publisher implements eventstream.Publisher on Kafka. Messages are keyed
// by session so a session's events land on one partition in order.
type Publisher struct {
	writer *kafkago.Writer
}

// NewPublisher creates a Kafka publisher. The connection is lazy; the first
// publish dials the brokers.
func NewPublisher(config Config) (*Publisher, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if config.Topic == "" {
		return nil, fmt.Errorf("kafka publisher requires a topic")
	}

	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
	}

	return &Publisher{writer: writer}, nil
}

// PublishTurnAppended writes the event to the configured topic.
func (p *Publisher) PublishTurnAppended(ctx context.Context, event *eventstream.TurnAppendedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal turn event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.SessionID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("write turn event: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
