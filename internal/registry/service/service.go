// Package service gates participation: donors may create donations,
// recipients may claim them. Profiles carry no authorization logic of their
// own; the ledger consumes the IsRegistered lookups.
package service

import (
	"context"
	"errors"
	"log/slog"

	"foodshare/internal/registry/models"
	id "foodshare/pkg/domain"
	dErrors "foodshare/pkg/domain-errors"
	"foodshare/pkg/platform/events"
	"foodshare/pkg/platform/sentinel"
	"foodshare/pkg/requestcontext"
)

// ProfileStore persists one role's registry.
type ProfileStore interface {
	Upsert(ctx context.Context, profile *models.Profile) error
	Delete(ctx context.Context, identity id.Identity) error
	Find(ctx context.Context, identity id.Identity) (*models.Profile, error)
	Exists(ctx context.Context, identity id.Identity) (bool, error)
}

// EventPublisher receives one event per successful mutation.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event) error
}

// Service owns the donor and recipient registries independently.
type Service struct {
	donors     ProfileStore
	recipients ProfileStore
	publisher  EventPublisher
	logger     *slog.Logger
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

func New(donors, recipients ProfileStore, opts ...Option) *Service {
	s := &Service{donors: donors, recipients: recipients}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// RegisterDonor upserts the caller's donor profile. Idempotent: a repeat call
// overwrites name/contact and keeps the original registration time.
func (s *Service) RegisterDonor(ctx context.Context, caller id.Identity, name, contact string) (*models.Profile, error) {
	return s.register(ctx, s.donors, caller, name, contact, events.KindDonorRegistered)
}

// RegisterRecipient upserts the caller's recipient profile.
func (s *Service) RegisterRecipient(ctx context.Context, caller id.Identity, name, contact string) (*models.Profile, error) {
	return s.register(ctx, s.recipients, caller, name, contact, events.KindRecipientRegistered)
}

func (s *Service) register(ctx context.Context, profiles ProfileStore, caller id.Identity, name, contact string, kind events.Kind) (*models.Profile, error) {
	profile, err := models.NewProfile(caller, name, contact, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
		}
		return nil, err
	}

	if existing, err := profiles.Find(ctx, caller); err == nil {
		profile.RegisteredAt = existing.RegisteredAt
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}

	if err := profiles.Upsert(ctx, profile); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store profile")
	}

	s.emit(ctx, events.Event{Kind: kind, Actor: caller, Subject: caller})
	return profile, nil
}

// UnregisterDonor removes the caller's donor profile. Donations already
// linked to the identity are untouched.
func (s *Service) UnregisterDonor(ctx context.Context, caller id.Identity) error {
	return s.unregister(ctx, s.donors, caller, events.KindDonorUnregistered)
}

// UnregisterRecipient removes the caller's recipient profile.
func (s *Service) UnregisterRecipient(ctx context.Context, caller id.Identity) error {
	return s.unregister(ctx, s.recipients, caller, events.KindRecipientUnregistered)
}

func (s *Service) unregister(ctx context.Context, profiles ProfileStore, caller id.Identity, kind events.Kind) error {
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if err := profiles.Delete(ctx, caller); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.ErrNotRegistered
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove profile")
	}
	s.emit(ctx, events.Event{Kind: kind, Actor: caller, Subject: caller})
	return nil
}

// IsRegisteredDonor is a pure lookup consumed by the ledger's authorization
// checks.
func (s *Service) IsRegisteredDonor(ctx context.Context, identity id.Identity) (bool, error) {
	return s.donors.Exists(ctx, identity)
}

// IsRegisteredRecipient is a pure lookup.
func (s *Service) IsRegisteredRecipient(ctx context.Context, identity id.Identity) (bool, error) {
	return s.recipients.Exists(ctx, identity)
}

// GetDonor returns the donor profile for an identity.
func (s *Service) GetDonor(ctx context.Context, identity id.Identity) (*models.Profile, error) {
	return s.find(ctx, s.donors, identity)
}

// GetRecipient returns the recipient profile for an identity.
func (s *Service) GetRecipient(ctx context.Context, identity id.Identity) (*models.Profile, error) {
	return s.find(ctx, s.recipients, identity)
}

func (s *Service) find(ctx context.Context, profiles ProfileStore, identity id.Identity) (*models.Profile, error) {
	profile, err := profiles.Find(ctx, identity)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ErrNotRegistered
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return profile, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit registry event",
			"kind", string(event.Kind),
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
}
