// Package events defines the notification contract emitted on every
// successful mutation. External observers (indexers, dashboards, dispute
// tooling) may have no other way to reconstruct ledger history, so delivery
// to the store is exactly-once and in mutation order.
package events

import (
	"context"
	"time"

	id "foodshare/pkg/domain"
)

// Kind names the mutation that produced an event.
type Kind string

const (
	// Registry events
	KindDonorRegistered       Kind = "donor_registered"
	KindDonorUnregistered     Kind = "donor_unregistered"
	KindRecipientRegistered   Kind = "recipient_registered"
	KindRecipientUnregistered Kind = "recipient_unregistered"

	// Ledger events
	KindDonationCreated   Kind = "donation_created"
	KindDonationClaimed   Kind = "donation_claimed"
	KindDonationPickedUp  Kind = "donation_picked_up"
	KindDonationCompleted Kind = "donation_completed"
	KindDonationCancelled Kind = "donation_cancelled"

	// Administration events
	KindAdministrationTransferred Kind = "administration_transferred"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	// Seq is assigned by the publisher: gap-free, strictly increasing, and
	// matching the order mutations were applied.
	Seq       uint64      `json:"seq"`
	Kind      Kind        `json:"kind"`
	Timestamp time.Time   `json:"timestamp"`
	Actor     id.Identity `json:"actor"`
	// Subject is the identity affected by the mutation when it differs from
	// the actor (registration target, new administrator).
	Subject    id.Identity   `json:"subject,omitempty"`
	DonationID id.DonationID `json:"donation_id,omitempty"`
	// Reason carries the cancellation reason. It lives only on the event,
	// not on the donation record.
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Store is the canonical, ordered event trail.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
	ListByDonation(ctx context.Context, donationID id.DonationID) ([]Event, error)
}

// Sink receives a copy of each event for off-system observers. Delivery to
// sinks is best effort; the Store is the source of truth.
type Sink interface {
	Deliver(ctx context.Context, event Event) error
}
