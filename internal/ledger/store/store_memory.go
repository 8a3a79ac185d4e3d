package store

import (
	"context"
	"sync"

	"foodshare/internal/ledger/models"
	id "foodshare/pkg/domain"
	"foodshare/pkg/platform/sentinel"
)

// InMemory is the canonical donation ledger: a primary map plus three
// append-only indexes (by donor, by recipient, creation order). Indexes are
// maintained at the point of state change, never by rescanning, and entries
// are never removed, so every indexed id always resolves in the primary map.
//
// All compound updates happen under one mutex; callers observe either the
// full prior state or the full new state, never a half-applied mutation.
type InMemory struct {
	mu          sync.RWMutex
	donations   map[id.DonationID]*models.Donation
	byDonor     map[id.Identity][]id.DonationID
	byRecipient map[id.Identity][]id.DonationID
	recency     []id.DonationID
	lastID      uint64
}

func NewInMemory() *InMemory {
	return &InMemory{
		donations:   make(map[id.DonationID]*models.Donation),
		byDonor:     make(map[id.Identity][]id.DonationID),
		byRecipient: make(map[id.Identity][]id.DonationID),
	}
}

// Create assigns the next sequential id, stores the donation, and appends to
// the donor and recency indexes in the same critical section.
func (s *InMemory) Create(_ context.Context, donation *models.Donation) (id.DonationID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	donation.ID = id.DonationID(s.lastID)

	stored := *donation
	s.donations[stored.ID] = &stored
	s.byDonor[stored.Donor] = append(s.byDonor[stored.Donor], stored.ID)
	s.recency = append(s.recency, stored.ID)
	return stored.ID, nil
}

// FindByID returns a copy of the donation or sentinel.ErrNotFound. The zero
// id never resolves.
func (s *InMemory) FindByID(_ context.Context, donationID id.DonationID) (*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(donationID)
}

func (s *InMemory) find(donationID id.DonationID) (*models.Donation, error) {
	if donationID.IsZero() {
		return nil, sentinel.ErrNotFound
	}
	donation, ok := s.donations[donationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *donation
	return &copied, nil
}

// Execute runs validate then mutate on the donation while holding the store
// lock, so a transition is checked and applied against the same state. When
// validate fails nothing changes. A mutation that sets the recipient for the
// first time is appended to the recipient index inside the same critical
// section. Returns a copy of the donation after mutation.
func (s *InMemory) Execute(
	_ context.Context,
	donationID id.DonationID,
	validate func(*models.Donation) error,
	mutate func(*models.Donation),
) (*models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if donationID.IsZero() {
		return nil, sentinel.ErrNotFound
	}
	donation, ok := s.donations[donationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	if validate != nil {
		if err := validate(donation); err != nil {
			return nil, err
		}
	}

	hadRecipient := !donation.Recipient.IsZero()
	mutate(donation)
	if !hadRecipient && !donation.Recipient.IsZero() {
		s.byRecipient[donation.Recipient] = append(s.byRecipient[donation.Recipient], donation.ID)
	}

	copied := *donation
	return &copied, nil
}

// Latest returns donations most-recently-created first. limit 0 means all;
// otherwise the result holds min(limit, total) entries. Pure function of
// current ledger state.
func (s *InMemory) Latest(_ context.Context, limit int) ([]*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.recency)
	n := total
	if limit > 0 && limit < total {
		n = limit
	}
	out := make([]*models.Donation, 0, n)
	for i := total - 1; i >= total-n; i-- {
		copied := *s.donations[s.recency[i]]
		out = append(out, &copied)
	}
	return out, nil
}

// ListByDonor returns the donor's donations in insertion order, including
// entries whose donor has since left the registry.
func (s *InMemory) ListByDonor(_ context.Context, donor id.Identity) ([]*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byDonor[donor]), nil
}

// ListByRecipient returns the recipient's claimed donations in claim order.
func (s *InMemory) ListByRecipient(_ context.Context, recipient id.Identity) ([]*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byRecipient[recipient]), nil
}

func (s *InMemory) collect(ids []id.DonationID) []*models.Donation {
	out := make([]*models.Donation, 0, len(ids))
	for _, donationID := range ids {
		copied := *s.donations[donationID]
		out = append(out, &copied)
	}
	return out
}

// Count returns the total number of donations ever created. Monotonic, since
// the ledger never deletes.
func (s *InMemory) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastID, nil
}
