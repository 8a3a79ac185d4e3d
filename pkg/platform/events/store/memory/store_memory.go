package memory

import (
	"context"
	"sync"

	id "foodshare/pkg/domain"
	"foodshare/pkg/platform/events"
)

// InMemoryStore keeps the event trail in an append-only slice. Order of
// appends is the order of reads, which is all the notification contract needs.
type InMemoryStore struct {
	mu         sync.RWMutex
	all        []events.Event
	byDonation map[id.DonationID][]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byDonation: make(map[id.DonationID][]int)}
}

func (s *InMemoryStore) Append(_ context.Context, event events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = append(s.all, event)
	if !event.DonationID.IsZero() {
		s.byDonation[event.DonationID] = append(s.byDonation[event.DonationID], len(s.all)-1)
	}
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]events.Event{}, s.all...), nil
}

func (s *InMemoryStore) ListByDonation(_ context.Context, donationID id.DonationID) ([]events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	positions := s.byDonation[donationID]
	out := make([]events.Event, 0, len(positions))
	for _, pos := range positions {
		out = append(out, s.all[pos])
	}
	return out, nil
}

// Clear resets the store. Test helper.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = nil
	s.byDonation = make(map[id.DonationID][]int)
}
