package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"foodshare/internal/registry/models"
	"foodshare/internal/registry/store"
	id "foodshare/pkg/domain"
	dErrors "foodshare/pkg/domain-errors"
	"foodshare/pkg/platform/events"
	"foodshare/pkg/requestcontext"
)

const identity = id.Identity("bakery@example.org")

type capturePublisher struct {
	emitted []events.Event
}

func (p *capturePublisher) Emit(_ context.Context, event events.Event) error {
	p.emitted = append(p.emitted, event)
	return nil
}

type RegistrySuite struct {
	suite.Suite
	service   *Service
	publisher *capturePublisher
	now       time.Time
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.publisher = &capturePublisher{}
	s.service = New(store.NewInMemory(), store.NewInMemory(), WithPublisher(s.publisher))
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
}

func (s *RegistrySuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *RegistrySuite) TestRegisterDonor() {
	s.Run("creates the profile and emits an event", func() {
		profile, err := s.service.RegisterDonor(s.ctx(), identity, "Corner Bakery", "+31 6 1234")
		s.Require().NoError(err)
		s.Equal(identity, profile.Identity)
		s.Equal(s.now, profile.RegisteredAt)

		registered, err := s.service.IsRegisteredDonor(s.ctx(), identity)
		s.NoError(err)
		s.True(registered)

		s.Require().Len(s.publisher.emitted, 1)
		s.Equal(events.KindDonorRegistered, s.publisher.emitted[0].Kind)
	})

	s.Run("re-registering updates details but keeps the registration time", func() {
		_, err := s.service.RegisterDonor(s.ctx(), identity, "Corner Bakery", "+31 6 1234")
		s.Require().NoError(err)

		laterCtx := requestcontext.WithTime(context.Background(), s.now.Add(48*time.Hour))
		updated, err := s.service.RegisterDonor(laterCtx, identity, "Corner Bakery & Deli", "+31 6 5678")
		s.Require().NoError(err)

		s.Equal("Corner Bakery & Deli", updated.Name)
		s.Equal(s.now, updated.RegisteredAt)
		s.Equal(s.now.Add(48*time.Hour), updated.UpdatedAt)
	})

	s.Run("anonymous caller is rejected", func() {
		_, err := s.service.RegisterDonor(s.ctx(), "", "x", "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("donor registration does not make a recipient", func() {
		_, err := s.service.RegisterDonor(s.ctx(), identity, "Corner Bakery", "")
		s.Require().NoError(err)

		registered, err := s.service.IsRegisteredRecipient(s.ctx(), identity)
		s.NoError(err)
		s.False(registered)
	})
}

func (s *RegistrySuite) TestRegisterRecipient() {
	profile, err := s.service.RegisterRecipient(s.ctx(), identity, "Night Shelter", "")
	s.Require().NoError(err)
	s.Equal(identity, profile.Identity)

	registered, err := s.service.IsRegisteredRecipient(s.ctx(), identity)
	s.NoError(err)
	s.True(registered)

	// The same identity may hold both roles independently.
	_, err = s.service.RegisterDonor(s.ctx(), identity, "Night Shelter", "")
	s.Require().NoError(err)
	asDonor, err := s.service.IsRegisteredDonor(s.ctx(), identity)
	s.NoError(err)
	s.True(asDonor)
}

func (s *RegistrySuite) TestUnregister() {
	s.Run("removes the profile and emits an event", func() {
		_, err := s.service.RegisterDonor(s.ctx(), identity, "Corner Bakery", "")
		s.Require().NoError(err)

		s.Require().NoError(s.service.UnregisterDonor(s.ctx(), identity))

		registered, err := s.service.IsRegisteredDonor(s.ctx(), identity)
		s.NoError(err)
		s.False(registered)

		last := s.publisher.emitted[len(s.publisher.emitted)-1]
		s.Equal(events.KindDonorUnregistered, last.Kind)
	})

	s.Run("unregistering an unknown identity fails", func() {
		err := s.service.UnregisterRecipient(s.ctx(), "nobody@example.org")
		s.ErrorIs(err, models.ErrNotRegistered)
	})

	s.Run("unregistering one role leaves the other", func() {
		_, err := s.service.RegisterDonor(s.ctx(), identity, "Corner Bakery", "")
		s.Require().NoError(err)
		_, err = s.service.RegisterRecipient(s.ctx(), identity, "Corner Bakery", "")
		s.Require().NoError(err)

		s.Require().NoError(s.service.UnregisterDonor(s.ctx(), identity))

		stillRecipient, err := s.service.IsRegisteredRecipient(s.ctx(), identity)
		s.NoError(err)
		s.True(stillRecipient)
	})

	s.Run("registering again after unregistering starts fresh", func() {
		_, err := s.service.RegisterDonor(s.ctx(), identity, "Corner Bakery", "")
		s.Require().NoError(err)
		s.Require().NoError(s.service.UnregisterDonor(s.ctx(), identity))

		laterCtx := requestcontext.WithTime(context.Background(), s.now.Add(time.Hour))
		profile, err := s.service.RegisterDonor(laterCtx, identity, "Corner Bakery", "")
		s.Require().NoError(err)
		s.Equal(s.now.Add(time.Hour), profile.RegisteredAt)
	})
}

func (s *RegistrySuite) TestGetProfiles() {
	s.Run("returns the stored profile", func() {
		_, err := s.service.RegisterDonor(s.ctx(), identity, "Corner Bakery", "+31 6 1234")
		s.Require().NoError(err)

		profile, err := s.service.GetDonor(s.ctx(), identity)
		s.Require().NoError(err)
		s.Equal("Corner Bakery", profile.Name)
	})

	s.Run("unknown identity", func() {
		_, err := s.service.GetRecipient(s.ctx(), identity)
		s.ErrorIs(err, models.ErrNotRegistered)
	})
}
