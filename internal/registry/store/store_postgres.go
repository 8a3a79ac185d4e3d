package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"foodshare/internal/registry/models"
	id "foodshare/pkg/domain"
	"foodshare/pkg/platform/sentinel"
)

// Role scopes a Postgres store instance to one registry.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleRecipient Role = "recipient"
)

// Postgres persists profiles in a single table partitioned by role:
//
//	CREATE TABLE profiles (
//	    identity      TEXT        NOT NULL,
//	    role          TEXT        NOT NULL,
//	    name          TEXT        NOT NULL DEFAULT '',
//	    contact       TEXT        NOT NULL DEFAULT '',
//	    registered_at TIMESTAMPTZ NOT NULL,
//	    updated_at    TIMESTAMPTZ NOT NULL,
//	    PRIMARY KEY (identity, role)
//	);
type Postgres struct {
	db   *sql.DB
	role Role
}

func NewPostgres(db *sql.DB, role Role) *Postgres {
	return &Postgres{db: db, role: role}
}

func (s *Postgres) Upsert(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (identity, role, name, contact, registered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (identity, role) DO UPDATE SET
			name       = EXCLUDED.name,
			contact    = EXCLUDED.contact,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		profile.Identity.String(), string(s.role),
		profile.Name, profile.Contact,
		profile.RegisteredAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, identity id.Identity) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM profiles WHERE identity = $1 AND role = $2`,
		identity.String(), string(s.role),
	)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete profile rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Find(ctx context.Context, identity id.Identity) (*models.Profile, error) {
	var profile models.Profile
	var rawIdentity string
	err := s.db.QueryRowContext(ctx,
		`SELECT identity, name, contact, registered_at, updated_at
		 FROM profiles WHERE identity = $1 AND role = $2`,
		identity.String(), string(s.role),
	).Scan(&rawIdentity, &profile.Name, &profile.Contact, &profile.RegisteredAt, &profile.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	profile.Identity = id.Identity(rawIdentity)
	return &profile, nil
}

func (s *Postgres) Exists(ctx context.Context, identity id.Identity) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE identity = $1 AND role = $2)`,
		identity.String(), string(s.role),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check profile exists: %w", err)
	}
	return exists, nil
}
