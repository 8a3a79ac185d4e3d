// Package publisher serializes event emission so the trail stays gap-free and
// ordered even when mutations race on different entities.
package publisher

import (
	"context"
	"log/slog"
	"sync"

	"foodshare/pkg/platform/events"
	"foodshare/pkg/requestcontext"
)

// Publisher assigns sequence numbers and fans events out to the store and any
// configured sinks. Emit holds a mutex for the full append, so events reach
// the store exactly once, in emission order.
type Publisher struct {
	mu     sync.Mutex
	seq    uint64
	store  events.Store
	sinks  []events.Sink
	logger *slog.Logger
}

type Option func(*Publisher)

// WithSink adds a best-effort delivery target (Redis stream, Kafka topic).
func WithSink(sink events.Sink) Option {
	return func(p *Publisher) {
		if sink != nil {
			p.sinks = append(p.sinks, sink)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithStartSeq resumes numbering after the given sequence. Used with durable
// stores so a restarted process continues the trail instead of reusing
// sequence numbers.
func WithStartSeq(seq uint64) Option {
	return func(p *Publisher) {
		p.seq = seq
	}
}

func NewPublisher(store events.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Emit records one event. The sequence number is only consumed when the store
// append succeeds, so a failed append leaves no gap.
func (p *Publisher) Emit(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	event.Seq = p.seq + 1
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	p.seq = event.Seq

	for _, sink := range p.sinks {
		if err := sink.Deliver(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "event sink delivery failed",
				"kind", string(event.Kind),
				"seq", event.Seq,
				"error", err.Error(),
			)
		}
	}
	return nil
}

// List exposes the stored trail for observers that poll instead of consuming
// a sink.
func (p *Publisher) List(ctx context.Context) ([]events.Event, error) {
	return p.store.List(ctx)
}
