//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"foodshare/internal/registry/models"
	"foodshare/internal/registry/store"
	id "foodshare/pkg/domain"
	"foodshare/pkg/platform/sentinel"
	"foodshare/pkg/testutil/containers"
)

const profilesSchema = `
CREATE TABLE IF NOT EXISTS profiles (
    identity      TEXT        NOT NULL,
    role          TEXT        NOT NULL,
    name          TEXT        NOT NULL DEFAULT '',
    contact       TEXT        NOT NULL DEFAULT '',
    registered_at TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (identity, role)
)`

type PostgresStoreSuite struct {
	suite.Suite
	postgres   *containers.PostgresContainer
	donors     *store.Postgres
	recipients *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.Require().NoError(s.postgres.ExecSchema(context.Background(), profilesSchema))
	s.donors = store.NewPostgres(s.postgres.DB, store.RoleDonor)
	s.recipients = store.NewPostgres(s.postgres.DB, store.RoleRecipient)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "profiles"))
}

func (s *PostgresStoreSuite) profile(identity, name string) *models.Profile {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	profile, err := models.NewProfile(id.Identity(identity), name, "+31 6 1234", now)
	s.Require().NoError(err)
	return profile
}

func (s *PostgresStoreSuite) TestUpsertAndFind() {
	ctx := context.Background()

	s.Run("round trips a profile", func() {
		profile := s.profile("bakery@example.org", "Corner Bakery")
		s.Require().NoError(s.donors.Upsert(ctx, profile))

		found, err := s.donors.Find(ctx, profile.Identity)
		s.Require().NoError(err)
		s.Equal(profile.Identity, found.Identity)
		s.Equal("Corner Bakery", found.Name)
		s.WithinDuration(profile.RegisteredAt, found.RegisteredAt, time.Millisecond)
	})

	s.Run("upsert keeps the original registration time", func() {
		profile := s.profile("bakery@example.org", "Corner Bakery")
		s.Require().NoError(s.donors.Upsert(ctx, profile))

		updated := *profile
		updated.Name = "Corner Bakery & Deli"
		updated.UpdatedAt = profile.UpdatedAt.Add(time.Hour)
		s.Require().NoError(s.donors.Upsert(ctx, &updated))

		found, err := s.donors.Find(ctx, profile.Identity)
		s.Require().NoError(err)
		s.Equal("Corner Bakery & Deli", found.Name)
		s.WithinDuration(profile.RegisteredAt, found.RegisteredAt, time.Millisecond)
		s.WithinDuration(updated.UpdatedAt, found.UpdatedAt, time.Millisecond)
	})

	s.Run("missing profile", func() {
		_, err := s.donors.Find(ctx, "nobody@example.org")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreSuite) TestRolesAreIndependent() {
	ctx := context.Background()

	profile := s.profile("dual@example.org", "Dual Role")
	s.Require().NoError(s.donors.Upsert(ctx, profile))

	asDonor, err := s.donors.Exists(ctx, profile.Identity)
	s.NoError(err)
	s.True(asDonor)

	asRecipient, err := s.recipients.Exists(ctx, profile.Identity)
	s.NoError(err)
	s.False(asRecipient)

	s.Require().NoError(s.recipients.Upsert(ctx, profile))
	s.Require().NoError(s.donors.Delete(ctx, profile.Identity))

	asRecipient, err = s.recipients.Exists(ctx, profile.Identity)
	s.NoError(err)
	s.True(asRecipient)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()

	profile := s.profile("bakery@example.org", "Corner Bakery")
	s.Require().NoError(s.donors.Upsert(ctx, profile))

	s.NoError(s.donors.Delete(ctx, profile.Identity))
	s.ErrorIs(s.donors.Delete(ctx, profile.Identity), sentinel.ErrNotFound)
}
