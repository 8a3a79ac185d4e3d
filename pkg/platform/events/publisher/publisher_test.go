package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodshare/pkg/platform/events"
	"foodshare/pkg/platform/events/store/memory"
	"foodshare/pkg/requestcontext"
)

func TestPublisher_AssignsSequentialSeq(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	for range 5 {
		err := pub.Emit(context.Background(), events.Event{Kind: events.KindDonationCreated, Actor: "donor-1"})
		require.NoError(t, err)
	}

	listed, err := pub.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 5)
	for i, event := range listed {
		assert.Equal(t, uint64(i+1), event.Seq, "seq must be gap-free and ordered")
	}
}

func TestPublisher_UsesRequestScopedTime(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), fixed)

	require.NoError(t, pub.Emit(ctx, events.Event{Kind: events.KindDonorRegistered, Actor: "donor-1"}))

	listed, err := pub.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, fixed, listed[0].Timestamp)
}

func TestPublisher_FailedAppendLeavesNoGap(t *testing.T) {
	store := &flakyStore{failFirst: true, InMemoryStore: memory.NewInMemoryStore()}
	pub := NewPublisher(store)

	err := pub.Emit(context.Background(), events.Event{Kind: events.KindDonationCreated})
	require.Error(t, err)

	require.NoError(t, pub.Emit(context.Background(), events.Event{Kind: events.KindDonationCreated}))

	listed, err := pub.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, uint64(1), listed[0].Seq)
}

func TestPublisher_SinkFailureDoesNotFailEmit(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithSink(sinkFunc(func(context.Context, events.Event) error {
		return errors.New("broker down")
	})))

	require.NoError(t, pub.Emit(context.Background(), events.Event{Kind: events.KindDonationClaimed}))

	listed, err := pub.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestPublisher_ConcurrentEmitsStayOrdered(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pub.Emit(context.Background(), events.Event{Kind: events.KindDonationCreated})
		}()
	}
	wg.Wait()

	listed, err := pub.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 50)
	for i, event := range listed {
		assert.Equal(t, uint64(i+1), event.Seq)
	}
}

type flakyStore struct {
	*memory.InMemoryStore
	failFirst bool
}

func (s *flakyStore) Append(ctx context.Context, event events.Event) error {
	if s.failFirst {
		s.failFirst = false
		return errors.New("append failed")
	}
	return s.InMemoryStore.Append(ctx, event)
}

type sinkFunc func(context.Context, events.Event) error

func (f sinkFunc) Deliver(ctx context.Context, event events.Event) error {
	return f(ctx, event)
}
