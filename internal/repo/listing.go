// Package repo contains all database access logic for the trade board.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/neelesh-roxban/arc/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ListingRepo defines the persistence operations for trade listings.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
//
// Read operations take an explicit now so that listings whose deadline has
// passed are excluded even when the expiry sweep has not run yet.
type ListingRepo interface {
	// Create inserts a new listing with status=active and returns the
	// persisted record (with the DB-generated id populated).
	Create(ctx context.Context, listing domain.Listing) (domain.Listing, error)

	// GetByID retrieves a single listing by its primary key.
	// Returns domain.ErrNotFound if no listing with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Listing, error)

	// AttachExternalRef stores the platform-side reference (e.g. a rendered
	// message locator) on an existing listing. Last write wins.
	// Returns domain.ErrNotFound if no listing with that ID exists.
	AttachExternalRef(ctx context.Context, id int64, ref string) error

	// ListActive returns one page of live listings, newest first, together
	// with the total live count.
	ListActive(ctx context.Context, p domain.PaginationParams, now time.Time) ([]domain.Listing, int64, error)

	// ListByOwner returns up to limit live listings belonging to ownerID,
	// newest first.
	ListByOwner(ctx context.Context, ownerID string, limit int, now time.Time) ([]domain.Listing, error)

	// Search returns up to limit live listings whose have or want field
	// contains keyword (case-insensitive), newest first.
	Search(ctx context.Context, keyword string, limit int, now time.Time) ([]domain.Listing, error)

	// SetStatus transitions a listing out of active into target and returns
	// the updated record. The transition is conditional on the row still
	// being live, so of two racing calls exactly one succeeds.
	// Returns domain.ErrNotFound if the ID is unknown and
	// domain.ErrPreconditionFailed if the listing is no longer live.
	SetStatus(ctx context.Context, id int64, target domain.Status, now time.Time) (domain.Listing, error)

	// SweepExpired transitions every active listing whose deadline has
	// passed to expired and returns the number of rows changed.
	// Idempotent for non-decreasing now.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)

	// ListAll returns every listing regardless of status, oldest first.
	// Terminal listings are retained for audit, so this is the export feed.
	ListAll(ctx context.Context) ([]domain.Listing, error)
}

// listingCols is the column list every SELECT and RETURNING clause uses,
// in the order scanListing expects.
const listingCols = `id, owner_id, have, want, price, platform, notes, status, created_at, expires_at, external_ref`

// liveCond restricts a query to listings that are active and not logically
// expired at @now. Kept in one place so no read path can forget the filter.
const liveCond = `status = 'active' AND (expires_at IS NULL OR expires_at > @now)`

// pgListingRepo is the Postgres implementation of ListingRepo.
type pgListingRepo struct {
	db db
}

// NewListingRepo constructs a ListingRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewListingRepo(db db) ListingRepo {
	return &pgListingRepo{db: db}
}

func (r *pgListingRepo) Create(ctx context.Context, listing domain.Listing) (domain.Listing, error) {
	const q = `
		INSERT INTO listings (owner_id, have, want, price, platform, notes, status, created_at, expires_at)
		VALUES (@owner_id, @have, @want, @price, @platform, @notes, 'active', @created_at, @expires_at)
		RETURNING ` + listingCols

	args := pgx.NamedArgs{
		"owner_id":   listing.OwnerID,
		"have":       listing.Have,
		"want":       listing.Want,
		"price":      textOrNull(listing.Price),
		"platform":   textOrNull(listing.Platform),
		"notes":      textOrNull(listing.Notes),
		"created_at": listing.CreatedAt,
		"expires_at": listing.ExpiresAt, // nil becomes NULL
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanListing(row)
	if err != nil {
		return domain.Listing{}, wrap("repo.ListingRepo.Create", err)
	}
	return result, nil
}

func (r *pgListingRepo) GetByID(ctx context.Context, id int64) (domain.Listing, error) {
	const q = `SELECT ` + listingCols + ` FROM listings WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanListing(row)
	if err != nil {
		return domain.Listing{}, wrap("repo.ListingRepo.GetByID", err)
	}
	return result, nil
}

func (r *pgListingRepo) AttachExternalRef(ctx context.Context, id int64, ref string) error {
	const q = `UPDATE listings SET external_ref = @ref WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "ref": ref})
	if err != nil {
		return wrap("repo.ListingRepo.AttachExternalRef", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ListingRepo.AttachExternalRef: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgListingRepo) ListActive(ctx context.Context, p domain.PaginationParams, now time.Time) ([]domain.Listing, int64, error) {
	const q = `
		SELECT ` + listingCols + `
		FROM listings
		WHERE ` + liveCond + `
		ORDER BY created_at DESC, id DESC
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{"now": now, "limit": p.Limit, "offset": p.Offset()}
	listings, err := r.queryListings(ctx, q, args)
	if err != nil {
		return nil, 0, wrap("repo.ListingRepo.ListActive", err)
	}

	const countQ = `SELECT COUNT(*) FROM listings WHERE ` + liveCond

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"now": now}).Scan(&total); err != nil {
		return nil, 0, wrap("repo.ListingRepo.ListActive: count", err)
	}
	return listings, total, nil
}

func (r *pgListingRepo) ListByOwner(ctx context.Context, ownerID string, limit int, now time.Time) ([]domain.Listing, error) {
	const q = `
		SELECT ` + listingCols + `
		FROM listings
		WHERE owner_id = @owner_id AND ` + liveCond + `
		ORDER BY created_at DESC, id DESC
		LIMIT @limit`

	args := pgx.NamedArgs{"owner_id": ownerID, "now": now, "limit": limit}
	listings, err := r.queryListings(ctx, q, args)
	if err != nil {
		return nil, wrap("repo.ListingRepo.ListByOwner", err)
	}
	return listings, nil
}

func (r *pgListingRepo) Search(ctx context.Context, keyword string, limit int, now time.Time) ([]domain.Listing, error) {
	const q = `
		SELECT ` + listingCols + `
		FROM listings
		WHERE ` + liveCond + ` AND (have ILIKE @pattern OR want ILIKE @pattern)
		ORDER BY created_at DESC, id DESC
		LIMIT @limit`

	args := pgx.NamedArgs{"pattern": "%" + keyword + "%", "now": now, "limit": limit}
	listings, err := r.queryListings(ctx, q, args)
	if err != nil {
		return nil, wrap("repo.ListingRepo.Search", err)
	}
	return listings, nil
}

func (r *pgListingRepo) SetStatus(ctx context.Context, id int64, target domain.Status, now time.Time) (domain.Listing, error) {
	// The WHERE clause is the whole concurrency story: only a live row
	// matches, so of two racing transitions exactly one updates a row and
	// the other falls through to the precondition check below.
	const q = `
		UPDATE listings
		SET status = @status
		WHERE id = @id AND ` + liveCond + `
		RETURNING ` + listingCols

	args := pgx.NamedArgs{"id": id, "status": string(target), "now": now}
	row := r.db.QueryRow(ctx, q, args)
	result, err := scanListing(row)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Listing{}, wrap("repo.ListingRepo.SetStatus", err)
	}

	// No live row matched. Distinguish a missing listing from one that has
	// already left the active state (or expired out from under the caller).
	if _, err := r.GetByID(ctx, id); err != nil {
		return domain.Listing{}, fmt.Errorf("repo.ListingRepo.SetStatus: %w", err)
	}
	return domain.Listing{}, fmt.Errorf("repo.ListingRepo.SetStatus: %w", domain.ErrPreconditionFailed)
}

func (r *pgListingRepo) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `
		UPDATE listings
		SET status = 'expired'
		WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at <= @now`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"now": now})
	if err != nil {
		return 0, wrap("repo.ListingRepo.SweepExpired", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgListingRepo) ListAll(ctx context.Context) ([]domain.Listing, error) {
	const q = `SELECT ` + listingCols + ` FROM listings ORDER BY id`

	listings, err := r.queryListings(ctx, q, nil)
	if err != nil {
		return nil, wrap("repo.ListingRepo.ListAll", err)
	}
	return listings, nil
}

// queryListings runs a multi-row query and scans every row.
func (r *pgListingRepo) queryListings(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Listing, error) {
	var rows pgx.Rows
	var err error
	if args == nil {
		rows, err = r.db.Query(ctx, q)
	} else {
		rows, err = r.db.Query(ctx, q, args)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return listings, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanListing to
// be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanListing maps a single database row into a domain.Listing.
// It handles the nullable text and timestamp conversions.
func scanListing(s scanner) (domain.Listing, error) {
	var (
		l           domain.Listing
		status      string
		price       pgtype.Text
		platform    pgtype.Text
		notes       pgtype.Text
		expiresAt   pgtype.Timestamptz
		externalRef pgtype.Text
	)

	err := s.Scan(&l.ID, &l.OwnerID, &l.Have, &l.Want, &price, &platform, &notes,
		&status, &l.CreatedAt, &expiresAt, &externalRef)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Listing{}, domain.ErrNotFound
		}
		return domain.Listing{}, err
	}

	l.Status = domain.Status(status)
	l.Price = price.String
	l.Platform = platform.String
	l.Notes = notes.String
	l.ExternalRef = externalRef.String
	if expiresAt.Valid {
		ea := expiresAt.Time
		l.ExpiresAt = &ea
	}

	return l, nil
}

// textOrNull maps the empty string to NULL so optional fields stay absent
// rather than empty in the table.
func textOrNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// wrap adds operation context to err. Sentinel domain errors pass through so
// errors.Is keeps working; everything else is an infrastructure fault and is
// tagged domain.ErrStorageUnavailable for the handler layer.
func wrap(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrPreconditionFailed) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorageUnavailable, err)
}
