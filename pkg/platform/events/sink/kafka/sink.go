// Package kafka delivers events to a Kafka topic for downstream indexers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"foodshare/pkg/platform/events"
)

const defaultTopic = "foodshare.events"

// partitionKey pins every record to one partition. Ordering across the whole
// trail matters more than parallelism at this volume.
var partitionKey = []byte("ledger")

// Sink produces each event synchronously so a delivered event is durable on
// the broker before the next one is sent.
type Sink struct {
	client *kgo.Client
	topic  string
}

type Option func(*Sink)

// WithTopic overrides the destination topic.
func WithTopic(topic string) Option {
	return func(s *Sink) {
		if topic != "" {
			s.topic = topic
		}
	}
}

func New(client *kgo.Client, opts ...Option) *Sink {
	s := &Sink{client: client, topic: defaultTopic}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) Deliver(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   partitionKey,
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying client.
func (s *Sink) Close() {
	s.client.Close()
}
