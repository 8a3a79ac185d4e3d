// Package service owns the canonical donation lifecycle: it enforces
// transition legality and authorization atomically, emits one event per
// successful mutation, and never mutates on a failed precondition.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	ledgermetrics "foodshare/internal/ledger/metrics"
	"foodshare/internal/ledger/models"
	id "foodshare/pkg/domain"
	dErrors "foodshare/pkg/domain-errors"
	"foodshare/pkg/platform/events"
	"foodshare/pkg/platform/sentinel"
	"foodshare/pkg/requestcontext"
)

// DonationStore is the ledger persistence boundary. Execute must hold its
// write lock across validate and mutate so compound invariants (recipient and
// status changing together) are never observed half-applied.
type DonationStore interface {
	Create(ctx context.Context, donation *models.Donation) (id.DonationID, error)
	FindByID(ctx context.Context, donationID id.DonationID) (*models.Donation, error)
	Execute(ctx context.Context, donationID id.DonationID, validate func(*models.Donation) error, mutate func(*models.Donation)) (*models.Donation, error)
	Latest(ctx context.Context, limit int) ([]*models.Donation, error)
	ListByDonor(ctx context.Context, donor id.Identity) ([]*models.Donation, error)
	ListByRecipient(ctx context.Context, recipient id.Identity) ([]*models.Donation, error)
	Count(ctx context.Context) (uint64, error)
}

// RoleChecker is the registry lookup the ledger consumes for authorization.
type RoleChecker interface {
	IsRegisteredDonor(ctx context.Context, identity id.Identity) (bool, error)
	IsRegisteredRecipient(ctx context.Context, identity id.Identity) (bool, error)
}

// EventPublisher receives one event per successful mutation, in order.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event) error
}

// Service orchestrates the donation lifecycle.
type Service struct {
	store     DonationStore
	roles     RoleChecker
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *ledgermetrics.Metrics

	// admin is the single administrative authority. Guarded separately from
	// the store: admin checks and transfers are independent of ledger state.
	adminMu sync.RWMutex
	admin   id.Identity

	// mutationMu is held across apply and emit together, so the emitted
	// trail's order always matches the order mutations commit.
	mutationMu sync.Mutex
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithPublisher(publisher EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithMetrics(m *ledgermetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service with the initial administrative authority.
func New(store DonationStore, roles RoleChecker, admin id.Identity, opts ...Option) *Service {
	s := &Service{store: store, roles: roles, admin: admin}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// CreateDonation records a new Available donation for a registered donor.
func (s *Service) CreateDonation(ctx context.Context, caller id.Identity, req *models.CreateDonationRequest) (*models.Donation, error) {
	start := time.Now()
	if caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}

	registered, err := s.roles.IsRegisteredDonor(ctx, caller)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check donor registration")
	}
	if !registered {
		return nil, models.ErrNotRegisteredDonor
	}

	donation, err := models.NewDonation(
		caller,
		req.Title,
		req.Description,
		req.Quantity,
		req.AvailableFrom,
		req.AvailableUntil,
		req.LocationNote,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()
	if _, err := s.store.Create(ctx, donation); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store donation")
	}

	s.emit(ctx, events.Event{Kind: events.KindDonationCreated, Actor: caller, DonationID: donation.ID})
	if s.metrics != nil {
		s.metrics.DonationsCreated.Inc()
		s.metrics.ObserveCreate(start)
	}
	return donation, nil
}

// ClaimDonation lets a registered recipient claim an Available donation
// inside its availability window. Recipient and status change together.
func (s *Service) ClaimDonation(ctx context.Context, caller id.Identity, donationID id.DonationID) (*models.Donation, error) {
	start := time.Now()
	if caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}

	registered, err := s.roles.IsRegisteredRecipient(ctx, caller)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check recipient registration")
	}
	if !registered {
		return nil, models.ErrNotRegisteredRecipient
	}

	now := requestcontext.Now(ctx)
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()
	donation, err := s.store.Execute(ctx, donationID,
		func(d *models.Donation) error {
			return d.CanClaim(now)
		},
		func(d *models.Donation) {
			d.ApplyClaim(caller, now)
		},
	)
	if err != nil {
		return nil, s.translate(err)
	}

	s.emit(ctx, events.Event{Kind: events.KindDonationClaimed, Actor: caller, DonationID: donation.ID})
	if s.metrics != nil {
		s.metrics.DonationsClaimed.Inc()
		s.metrics.ObserveTransition(start)
	}
	return donation, nil
}

// MarkPickedUp records the hand-off of a Claimed donation. Either
// counterparty (or the administrator) may report it.
func (s *Service) MarkPickedUp(ctx context.Context, caller id.Identity, donationID id.DonationID) (*models.Donation, error) {
	start := time.Now()
	now := requestcontext.Now(ctx)
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()
	donation, err := s.store.Execute(ctx, donationID,
		func(d *models.Donation) error {
			if err := d.CanMarkPickedUp(); err != nil {
				return err
			}
			if !d.IsParty(caller) && !s.isAdmin(caller) {
				return models.ErrUnauthorized
			}
			return nil
		},
		func(d *models.Donation) {
			d.ApplyPickup(now)
		},
	)
	if err != nil {
		return nil, s.translate(err)
	}

	s.emit(ctx, events.Event{Kind: events.KindDonationPickedUp, Actor: caller, DonationID: donation.ID})
	if s.metrics != nil {
		s.metrics.ObserveTransition(start)
	}
	return donation, nil
}

// CompleteDonation closes out a Claimed or PickedUp donation. Pickup and
// completion may be reported together by a caller with one round trip.
func (s *Service) CompleteDonation(ctx context.Context, caller id.Identity, donationID id.DonationID) (*models.Donation, error) {
	start := time.Now()
	now := requestcontext.Now(ctx)
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()
	donation, err := s.store.Execute(ctx, donationID,
		func(d *models.Donation) error {
			if err := d.CanComplete(); err != nil {
				return err
			}
			if !d.IsParty(caller) && !s.isAdmin(caller) {
				return models.ErrUnauthorized
			}
			return nil
		},
		func(d *models.Donation) {
			d.ApplyComplete(now)
		},
	)
	if err != nil {
		return nil, s.translate(err)
	}

	s.emit(ctx, events.Event{Kind: events.KindDonationCompleted, Actor: caller, DonationID: donation.ID})
	if s.metrics != nil {
		s.metrics.DonationsCompleted.Inc()
		s.metrics.ObserveTransition(start)
	}
	return donation, nil
}

// CancelDonation withdraws an Available or Claimed donation. Only the donor
// (or the administrator) may cancel. The reason is carried on the emitted
// event only.
func (s *Service) CancelDonation(ctx context.Context, caller id.Identity, donationID id.DonationID, reason string) (*models.Donation, error) {
	start := time.Now()
	now := requestcontext.Now(ctx)
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()
	donation, err := s.store.Execute(ctx, donationID,
		func(d *models.Donation) error {
			if !d.IsDonor(caller) && !s.isAdmin(caller) {
				return models.ErrUnauthorized
			}
			return d.CanCancel()
		},
		func(d *models.Donation) {
			d.ApplyCancel(now)
		},
	)
	if err != nil {
		return nil, s.translate(err)
	}

	s.emit(ctx, events.Event{Kind: events.KindDonationCancelled, Actor: caller, DonationID: donation.ID, Reason: reason})
	if s.metrics != nil {
		s.metrics.DonationsCancelled.Inc()
		s.metrics.ObserveTransition(start)
	}
	return donation, nil
}

// translate maps store sentinels onto the ledger taxonomy. Domain errors from
// validate callbacks pass through untouched.
func (s *Service) translate(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.ErrDonationNotFound
	}
	return err
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit ledger event",
			"kind", string(event.Kind),
			"donation_id", event.DonationID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
}
