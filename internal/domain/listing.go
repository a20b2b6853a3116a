// Package domain contains the core data types for the trade board.
// This package has zero external dependencies and is imported by every other
// internal package (repo, service, handler).
package domain

import "time"

// Status is the lifecycle state of a listing.
type Status string

// Listing lifecycle states. A listing starts active and moves forward only:
// traded, closed, and expired are terminal.
const (
	StatusActive  Status = "active"
	StatusTraded  Status = "traded"
	StatusClosed  Status = "closed"
	StatusExpired Status = "expired"
)

// ParseStatus converts a raw string into a Status.
// Returns ErrValidation for anything outside the four known states.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusTraded, StatusClosed, StatusExpired:
		return Status(s), nil
	}
	return "", ErrValidation
}

// Terminal reports whether no further transition is permitted out of s.
func (s Status) Terminal() bool {
	return s == StatusTraded || s == StatusClosed || s == StatusExpired
}

// UserClosable reports whether s is a state an owner or moderator may move
// an active listing into. Expiry is reserved for the sweep.
func (s Status) UserClosable() bool {
	return s == StatusTraded || s == StatusClosed
}

// Listing represents a single trade offer: what the owner has and what they
// want in return. Have/Want and the optional free-text fields are immutable
// after creation; only Status and ExternalRef change afterwards.
type Listing struct {
	ID          int64      `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Have        string     `json:"have"`
	Want        string     `json:"want"`
	Price       string     `json:"price,omitempty"`
	Platform    string     `json:"platform,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"` // nil means the listing never auto-expires
	ExternalRef string     `json:"external_ref,omitempty"`
}

// NewListing carries the caller-supplied fields for creating a listing.
// ExpiresHours of zero means the listing never auto-expires.
type NewListing struct {
	OwnerID      string
	Have         string
	Want         string
	Price        string
	Platform     string
	Notes        string
	ExpiresHours int
}

// ExpiredBy reports whether the listing is logically expired at now:
// still recorded as active but with a deadline that has passed.
// The sweep may not have materialized the transition yet; readers must
// treat such a listing as expired regardless.
func (l Listing) ExpiredBy(now time.Time) bool {
	return l.Status == StatusActive && l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}
