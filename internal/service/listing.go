// Package service contains the business logic for the trade board.
// Services validate inputs, enforce the listing state machine, and
// orchestrate repo calls. No SQL lives here — services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neelesh-roxban/arc/internal/domain"
	"github.com/neelesh-roxban/arc/internal/repo"
)

// Clock returns the current time. Injected so tests can pin the clock and
// exercise expiry behavior deterministically.
type Clock func() time.Time

// ListingService implements business logic for listing operations.
// All permission and state-machine checks live here, in one place, so no
// caller can reach a transition without going through them.
type ListingService struct {
	listings repo.ListingRepo
	clock    Clock
}

// NewListingService constructs a ListingService backed by the provided repo.
// Pass time.Now as the clock in production.
func NewListingService(r repo.ListingRepo, clock Clock) *ListingService {
	return &ListingService{listings: r, clock: clock}
}

// Create validates and persists a new listing with status=active.
// Returns domain.ErrValidation if have or want is empty after trimming,
// or if ExpiresHours is negative.
func (s *ListingService) Create(ctx context.Context, in domain.NewListing) (domain.Listing, error) {
	have := strings.TrimSpace(in.Have)
	want := strings.TrimSpace(in.Want)
	if have == "" {
		return domain.Listing{}, fmt.Errorf("%w: have is required", domain.ErrValidation)
	}
	if want == "" {
		return domain.Listing{}, fmt.Errorf("%w: want is required", domain.ErrValidation)
	}
	if strings.TrimSpace(in.OwnerID) == "" {
		return domain.Listing{}, fmt.Errorf("%w: owner id is required", domain.ErrValidation)
	}
	if in.ExpiresHours < 0 {
		return domain.Listing{}, fmt.Errorf("%w: expires_hours must not be negative", domain.ErrValidation)
	}

	now := s.clock().UTC()
	listing := domain.Listing{
		OwnerID:   in.OwnerID,
		Have:      have,
		Want:      want,
		Price:     strings.TrimSpace(in.Price),
		Platform:  strings.TrimSpace(in.Platform),
		Notes:     strings.TrimSpace(in.Notes),
		Status:    domain.StatusActive,
		CreatedAt: now,
	}
	if in.ExpiresHours > 0 {
		deadline := now.Add(time.Duration(in.ExpiresHours) * time.Hour)
		listing.ExpiresAt = &deadline
	}

	result, err := s.listings.Create(ctx, listing)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("service.ListingService.Create: %w", err)
	}
	return result, nil
}

// Get returns a single listing by ID.
// A listing whose deadline has passed but which the sweep has not yet
// written is presented as expired, without mutating the stored row.
// Returns domain.ErrNotFound if the ID is unknown.
func (s *ListingService) Get(ctx context.Context, id int64) (domain.Listing, error) {
	result, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("service.ListingService.Get: %w", err)
	}
	if result.ExpiredBy(s.clock()) {
		result.Status = domain.StatusExpired
	}
	return result, nil
}

// AttachExternalRef stores the platform-side message reference on a listing.
// Idempotent — last write wins. Returns domain.ErrValidation for an empty
// ref and domain.ErrNotFound for an unknown ID.
func (s *ListingService) AttachExternalRef(ctx context.Context, id int64, ref string) error {
	if strings.TrimSpace(ref) == "" {
		return fmt.Errorf("%w: ref is required", domain.ErrValidation)
	}
	if err := s.listings.AttachExternalRef(ctx, id, ref); err != nil {
		return fmt.Errorf("service.ListingService.AttachExternalRef: %w", err)
	}
	return nil
}

// ListActive returns one page of live listings, newest first, with the
// total live count. Always returns a non-nil slice.
func (s *ListingService) ListActive(ctx context.Context, p domain.PaginationParams) ([]domain.Listing, int64, error) {
	listings, total, err := s.listings.ListActive(ctx, p, s.clock())
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListingService.ListActive: %w", err)
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	return listings, total, nil
}

// ListByOwner returns up to limit live listings for ownerID, newest first.
// Always returns a non-nil slice.
func (s *ListingService) ListByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Listing, error) {
	listings, err := s.listings.ListByOwner(ctx, ownerID, clampLimit(limit), s.clock())
	if err != nil {
		return nil, fmt.Errorf("service.ListingService.ListByOwner: %w", err)
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	return listings, nil
}

// Search returns up to limit live listings whose have or want contains
// keyword, case-insensitively, newest first. Always returns a non-nil slice.
// Returns domain.ErrValidation for an empty keyword.
func (s *ListingService) Search(ctx context.Context, keyword string, limit int) ([]domain.Listing, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: search keyword is required", domain.ErrValidation)
	}

	listings, err := s.listings.Search(ctx, keyword, clampLimit(limit), s.clock())
	if err != nil {
		return nil, fmt.Errorf("service.ListingService.Search: %w", err)
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	return listings, nil
}

// SetStatus transitions a listing from active to traded or closed on behalf
// of actorID. Only the owner or a privileged actor may transition; expiry is
// never a valid target here.
//
// Returns domain.ErrValidation for an illegal target state,
// domain.ErrNotFound for an unknown ID, domain.ErrForbidden when the actor
// lacks rights, and domain.ErrPreconditionFailed when the listing has
// already left the active state — including losing a race with a concurrent
// transition or with expiry.
func (s *ListingService) SetStatus(ctx context.Context, id int64, actorID string, privileged bool, target domain.Status) (domain.Listing, error) {
	if !target.UserClosable() {
		return domain.Listing{}, fmt.Errorf("%w: status must be traded or closed", domain.ErrValidation)
	}

	current, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("service.ListingService.SetStatus: %w", err)
	}
	// OwnerID is immutable, so checking it before the conditional update is
	// race-free even though the status may still change underneath us.
	if actorID != current.OwnerID && !privileged {
		return domain.Listing{}, fmt.Errorf("service.ListingService.SetStatus: %w", domain.ErrForbidden)
	}

	result, err := s.listings.SetStatus(ctx, id, target, s.clock())
	if err != nil {
		return domain.Listing{}, fmt.Errorf("service.ListingService.SetStatus: %w", err)
	}
	return result, nil
}

// SweepExpired transitions every active listing whose deadline has passed to
// expired and returns the number of listings transitioned. Idempotent.
func (s *ListingService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.listings.SweepExpired(ctx, s.clock())
	if err != nil {
		return 0, fmt.Errorf("service.ListingService.SweepExpired: %w", err)
	}
	return n, nil
}

// clampLimit applies the default page size and the hard cap shared by all
// bounded list operations.
func clampLimit(limit int) int {
	if limit < 1 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
