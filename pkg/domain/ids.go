// Package domain defines the typed identifiers shared across features.
//
// Using distinct types instead of raw strings/integers prevents accidental
// cross-assignment (e.g. passing a donation id where an identity is expected)
// and gives each identifier a single place for parsing and zero-value checks.
package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Identity is the stable caller identifier supplied by the surrounding
// identity-resolution layer (JWT subject in the HTTP transport). The core
// treats it as opaque. The zero value means "no identity".
type Identity string

// ParseIdentity validates an externally supplied identity string.
func ParseIdentity(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("identity cannot be empty")
	}
	return Identity(s), nil
}

func (i Identity) String() string {
	return string(i)
}

// IsZero reports whether the identity is absent.
func (i Identity) IsZero() bool {
	return i == ""
}

// DonationID is the sequential ledger identifier for a donation.
// IDs start at 1 and are never reused; zero is the "not found" sentinel.
type DonationID uint64

// ParseDonationID parses a donation id from its decimal string form.
func ParseDonationID(s string) (DonationID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid donation id %q", s)
	}
	if n == 0 {
		return 0, fmt.Errorf("donation id cannot be zero")
	}
	return DonationID(n), nil
}

func (d DonationID) String() string {
	return strconv.FormatUint(uint64(d), 10)
}

// IsZero reports whether the id is the not-found sentinel.
func (d DonationID) IsZero() bool {
	return d == 0
}
