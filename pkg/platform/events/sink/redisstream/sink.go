// Package redisstream delivers events onto a Redis stream so off-system
// observers can consume the ledger trail with consumer groups.
package redisstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"foodshare/pkg/platform/events"
)

const defaultStream = "foodshare:events"

// Sink appends each event to a Redis stream. XADD preserves insertion order,
// so consumers observe events in the same order mutations were applied.
type Sink struct {
	client *redis.Client
	stream string
}

type Option func(*Sink)

// WithStream overrides the stream key.
func WithStream(stream string) Option {
	return func(s *Sink) {
		if stream != "" {
			s.stream = stream
		}
	}
}

func New(client *redis.Client, opts ...Option) *Sink {
	s := &Sink{client: client, stream: defaultStream}
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
	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"seq":     event.Seq,
			"kind":    string(event.Kind),
			"payload": payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd event: %w", err)
	}
	return nil
}
