package models

import (
	"strings"
	"time"

	id "foodshare/pkg/domain"
	dErrors "foodshare/pkg/domain-errors"
)

// Ledger error taxonomy. Every failure is a caller-correctable precondition;
// none leaves partial state behind. Callers branch with errors.Is.
var (
	ErrNotRegisteredDonor        = dErrors.New(dErrors.CodeForbidden, "caller is not a registered donor")
	ErrNotRegisteredRecipient    = dErrors.New(dErrors.CodeForbidden, "caller is not a registered recipient")
	ErrInvalidAvailabilityWindow = dErrors.New(dErrors.CodeValidation, "availability window must end after it starts")
	ErrInvalidQuantity           = dErrors.New(dErrors.CodeValidation, "quantity cannot be negative")
	ErrDonationNotFound          = dErrors.New(dErrors.CodeNotFound, "donation not found")
	ErrNotAvailable              = dErrors.New(dErrors.CodeConflict, "donation is not available")
	ErrNotYetAvailable           = dErrors.New(dErrors.CodeConflict, "donation is not yet available")
	ErrOfferExpired              = dErrors.New(dErrors.CodeConflict, "donation offer has expired")
	ErrInvalidTransition         = dErrors.New(dErrors.CodeConflict, "donation status does not allow this transition")
	ErrUnauthorized              = dErrors.New(dErrors.CodeForbidden, "caller may not perform this operation on the donation")
)

// Donation is a single donation offer and its lifecycle record.
//
// Invariants:
//   - ID and Donor never change after creation
//   - Recipient is set exactly once, by a claim, and never reverts
//   - Status moves only along the allowed-predecessor table in status.go,
//     except for administrative force transitions
//   - Records are never deleted; the ledger keeps full history
type Donation struct {
	ID          id.DonationID `json:"id"`
	Donor       id.Identity   `json:"donor"`
	Recipient   id.Identity   `json:"recipient,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	// Quantity is an abstract non-negative count; the ledger attaches no unit.
	Quantity int `json:"quantity"`
	// AvailableFrom/AvailableUntil bound the claim window. The zero time
	// means unbounded on that side.
	AvailableFrom  time.Time `json:"available_from,omitzero"`
	AvailableUntil time.Time `json:"available_until,omitzero"`
	LocationNote   string    `json:"location_note"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewDonation builds an Available donation. The store assigns the ID.
func NewDonation(donor id.Identity, title, description string, quantity int, availableFrom, availableUntil time.Time, locationNote string, now time.Time) (*Donation, error) {
	if donor.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "donation donor cannot be empty")
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if !availableUntil.IsZero() && !availableFrom.IsZero() && !availableUntil.After(availableFrom) {
		return nil, ErrInvalidAvailabilityWindow
	}
	return &Donation{
		Donor:          donor,
		Title:          strings.TrimSpace(title),
		Description:    description,
		Quantity:       quantity,
		AvailableFrom:  availableFrom,
		AvailableUntil: availableUntil,
		LocationNote:   locationNote,
		Status:         StatusAvailable,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IsDonor reports whether the identity created this donation.
func (d *Donation) IsDonor(caller id.Identity) bool {
	return !caller.IsZero() && caller == d.Donor
}

// IsRecipient reports whether the identity claimed this donation.
func (d *Donation) IsRecipient(caller id.Identity) bool {
	return !caller.IsZero() && caller == d.Recipient
}

// IsParty reports whether the identity is either counterparty.
func (d *Donation) IsParty(caller id.Identity) bool {
	return d.IsDonor(caller) || d.IsRecipient(caller)
}

// CanClaim checks status and the availability window against now.
// Use with ApplyClaim in Execute callbacks so validation and mutation happen
// under the same store lock.
func (d *Donation) CanClaim(now time.Time) error {
	if !d.Status.CanTransitionTo(StatusClaimed) {
		return ErrNotAvailable
	}
	if !d.AvailableFrom.IsZero() && now.Before(d.AvailableFrom) {
		return ErrNotYetAvailable
	}
	if !d.AvailableUntil.IsZero() && now.After(d.AvailableUntil) {
		return ErrOfferExpired
	}
	return nil
}

// ApplyClaim records the recipient and advances to Claimed.
// Call CanClaim first to validate the transition.
func (d *Donation) ApplyClaim(recipient id.Identity, now time.Time) {
	d.Recipient = recipient
	d.Status = StatusClaimed
	d.UpdatedAt = now
}

// CanMarkPickedUp checks the transition to PickedUp.
func (d *Donation) CanMarkPickedUp() error {
	if !d.Status.CanTransitionTo(StatusPickedUp) {
		return ErrInvalidTransition
	}
	return nil
}

// ApplyPickup advances to PickedUp.
func (d *Donation) ApplyPickup(now time.Time) {
	d.Status = StatusPickedUp
	d.UpdatedAt = now
}

// CanComplete checks the transition to Completed. Both Claimed and PickedUp
// are valid predecessors.
func (d *Donation) CanComplete() error {
	if !d.Status.CanTransitionTo(StatusCompleted) {
		return ErrInvalidTransition
	}
	return nil
}

// ApplyComplete advances to the Completed terminal state.
func (d *Donation) ApplyComplete(now time.Time) {
	d.Status = StatusCompleted
	d.UpdatedAt = now
}

// CanCancel checks the transition to Cancelled. Only Available and Claimed
// donations are cancellable through the normal path.
func (d *Donation) CanCancel() error {
	if !d.Status.CanTransitionTo(StatusCancelled) {
		return ErrInvalidTransition
	}
	return nil
}

// ApplyCancel advances to the Cancelled terminal state. The cancellation
// reason travels on the emitted event, not the record.
func (d *Donation) ApplyCancel(now time.Time) {
	d.Status = StatusCancelled
	d.UpdatedAt = now
}

// ForceComplete sets the Completed state regardless of current status.
// Administrative override only.
func (d *Donation) ForceComplete(now time.Time) {
	d.Status = StatusCompleted
	d.UpdatedAt = now
}

// ForceCancel sets the Cancelled state regardless of current status.
// Administrative override only.
func (d *Donation) ForceCancel(now time.Time) {
	d.Status = StatusCancelled
	d.UpdatedAt = now
}
