package service

import (
	"context"
	"errors"

	"foodshare/internal/ledger/models"
	id "foodshare/pkg/domain"
	dErrors "foodshare/pkg/domain-errors"
	"foodshare/pkg/platform/sentinel"
)

// Read-only queries. These answer from the incrementally maintained indexes,
// never by rescanning the ledger, and may run concurrently with each other.

// GetDonation returns a single donation by id.
func (s *Service) GetDonation(ctx context.Context, donationID id.DonationID) (*models.Donation, error) {
	donation, err := s.store.FindByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ErrDonationNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donation")
	}
	return donation, nil
}

// LatestDonations returns donations most-recently-created first. limit 0
// means all. The result is a snapshot, not a stateful cursor.
func (s *Service) LatestDonations(ctx context.Context, limit int) ([]*models.Donation, error) {
	if limit < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "limit cannot be negative")
	}
	latest, err := s.store.Latest(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donations")
	}
	return latest, nil
}

// DonationsForDonor returns the identity's donations in creation order.
// Historical entries remain visible after the donor leaves the registry.
func (s *Service) DonationsForDonor(ctx context.Context, donor id.Identity) ([]*models.Donation, error) {
	listed, err := s.store.ListByDonor(ctx, donor)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donor donations")
	}
	return listed, nil
}

// DonationsForRecipient returns the identity's claimed donations in claim order.
func (s *Service) DonationsForRecipient(ctx context.Context, recipient id.Identity) ([]*models.Donation, error) {
	listed, err := s.store.ListByRecipient(ctx, recipient)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list recipient donations")
	}
	return listed, nil
}

// DonationCount returns the total number of donations ever created.
func (s *Service) DonationCount(ctx context.Context) (uint64, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count donations")
	}
	return count, nil
}
