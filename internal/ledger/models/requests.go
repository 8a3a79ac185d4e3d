package models

import "time"

// CreateDonationRequest carries the caller-supplied fields for a new
// donation. Validation happens in NewDonation so the rules live in one place.
type CreateDonationRequest struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Quantity       int       `json:"quantity"`
	AvailableFrom  time.Time `json:"available_from,omitzero"`
	AvailableUntil time.Time `json:"available_until,omitzero"`
	LocationNote   string    `json:"location_note"`
}
