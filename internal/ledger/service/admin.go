package service

import (
	"context"

	"foodshare/internal/ledger/models"
	id "foodshare/pkg/domain"
	dErrors "foodshare/pkg/domain-errors"
	"foodshare/pkg/platform/events"
	"foodshare/pkg/requestcontext"
)

// Administrative override: exactly one identity at a time may force-resolve
// donations outside the normal transition rules (disputes, abuse, stuck
// state). Force transitions carry no status precondition.

// Admin returns the current administrative authority.
func (s *Service) Admin() id.Identity {
	s.adminMu.RLock()
	defer s.adminMu.RUnlock()
	return s.admin
}

func (s *Service) isAdmin(caller id.Identity) bool {
	s.adminMu.RLock()
	defer s.adminMu.RUnlock()
	return !caller.IsZero() && caller == s.admin
}

// TransferAdministration hands the authority to a new identity. Only the
// current administrator may transfer, and the target must be non-zero.
func (s *Service) TransferAdministration(ctx context.Context, caller, newAdmin id.Identity) error {
	if newAdmin.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "new administrator identity is required")
	}

	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	s.adminMu.Lock()
	if caller.IsZero() || caller != s.admin {
		s.adminMu.Unlock()
		return models.ErrUnauthorized
	}
	s.admin = newAdmin
	s.adminMu.Unlock()

	s.emit(ctx, events.Event{Kind: events.KindAdministrationTransferred, Actor: caller, Subject: newAdmin})
	return nil
}

// ForceComplete unconditionally sets the Completed terminal state.
func (s *Service) ForceComplete(ctx context.Context, caller id.Identity, donationID id.DonationID) (*models.Donation, error) {
	if !s.isAdmin(caller) {
		return nil, models.ErrUnauthorized
	}

	now := requestcontext.Now(ctx)
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()
	donation, err := s.store.Execute(ctx, donationID, nil,
		func(d *models.Donation) {
			d.ForceComplete(now)
		},
	)
	if err != nil {
		return nil, s.translate(err)
	}

	s.emit(ctx, events.Event{Kind: events.KindDonationCompleted, Actor: caller, DonationID: donation.ID})
	if s.metrics != nil {
		s.metrics.DonationsCompleted.Inc()
		s.metrics.AdminOverrides.Inc()
	}
	return donation, nil
}

// ForceCancel unconditionally sets the Cancelled terminal state, recording
// the reason on the emitted event.
func (s *Service) ForceCancel(ctx context.Context, caller id.Identity, donationID id.DonationID, reason string) (*models.Donation, error) {
	if !s.isAdmin(caller) {
		return nil, models.ErrUnauthorized
	}

	now := requestcontext.Now(ctx)
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()
	donation, err := s.store.Execute(ctx, donationID, nil,
		func(d *models.Donation) {
			d.ForceCancel(now)
		},
	)
	if err != nil {
		return nil, s.translate(err)
	}

	s.emit(ctx, events.Event{Kind: events.KindDonationCancelled, Actor: caller, DonationID: donation.ID, Reason: reason})
	if s.metrics != nil {
		s.metrics.DonationsCancelled.Inc()
		s.metrics.AdminOverrides.Inc()
	}
	return donation, nil
}
