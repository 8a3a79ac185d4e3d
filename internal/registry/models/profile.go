package models

import (
	"strings"
	"time"

	id "foodshare/pkg/domain"
	dErrors "foodshare/pkg/domain-errors"
)

// Shared registry errors. Callers distinguish cases with errors.Is.
var (
	// ErrNotRegistered is returned by unregister operations when no profile
	// exists for the identity.
	ErrNotRegistered = dErrors.New(dErrors.CodeNotFound, "identity is not registered")
)

// Profile is a lightweight donor or recipient record.
//
// Invariants:
//   - Identity is non-zero and immutable after construction
//   - Registering again overwrites name/contact but keeps RegisteredAt
//   - Removal never touches the donation ledger: historical entries keep
//     referring to the identity even after the profile is gone
type Profile struct {
	Identity     id.Identity `json:"identity"`
	Name         string      `json:"name"`
	Contact      string      `json:"contact"`
	RegisteredAt time.Time   `json:"registered_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// NewProfile builds a profile record. Name and contact are free text; only
// the identity itself is required.
func NewProfile(identity id.Identity, name, contact string, now time.Time) (*Profile, error) {
	if identity.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "profile identity cannot be empty")
	}
	return &Profile{
		Identity:     identity,
		Name:         strings.TrimSpace(name),
		Contact:      strings.TrimSpace(contact),
		RegisteredAt: now,
		UpdatedAt:    now,
	}, nil
}
