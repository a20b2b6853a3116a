// Package handler implements the HTTP dispatch surface of the trade board.
// The chat-platform adapter is the only intended caller: it resolves user
// identity and permissions on its side and hands them over as ambient
// headers (X-Actor-ID, X-Actor-Privileged). Handlers are split into
// resource-specific files but all share the same Server struct.
package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/neelesh-roxban/arc/internal/domain"
)

// ListingServicer defines the business operations the listing handlers
// depend on. Defining the interface here (in the consumer package) follows
// the Go convention: "accept interfaces, return concrete types". It lets
// handler tests inject a mock without touching the database or service layer.
type ListingServicer interface {
	Create(ctx context.Context, in domain.NewListing) (domain.Listing, error)
	Get(ctx context.Context, id int64) (domain.Listing, error)
	AttachExternalRef(ctx context.Context, id int64, ref string) error
	ListActive(ctx context.Context, p domain.PaginationParams) ([]domain.Listing, int64, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Listing, error)
	Search(ctx context.Context, keyword string, limit int) ([]domain.Listing, error)
	SetStatus(ctx context.Context, id int64, actorID string, privileged bool, target domain.Status) (domain.Listing, error)
}

// ExportServicer defines the audit-export operation the export handler
// depends on.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Limiter is the cooldown gate consulted before write actions.
type Limiter interface {
	TryAcquire(actorID string, now time.Time, window time.Duration) bool
}

// Server holds the dependencies shared by every handler.
type Server struct {
	listings ListingServicer
	export   ExportServicer
	limiter  Limiter
	cooldown time.Duration
	clock    func() time.Time
}

// NewServer constructs the Server with all its dependencies.
// Pass time.Now as the clock in production.
func NewServer(listings ListingServicer, export ExportServicer, limiter Limiter, cooldown time.Duration, clock func() time.Time) *Server {
	return &Server{
		listings: listings,
		export:   export,
		limiter:  limiter,
		cooldown: cooldown,
		clock:    clock,
	}
}

// Routes returns the full route table. Cross-cutting middleware (request id,
// logging, CORS, body limits) is wired by main around this router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/export", s.ExportListings)

	r.Route("/listings", func(r chi.Router) {
		r.Post("/", s.CreateListing)
		r.Get("/", s.ListListings)
		r.Get("/search", s.SearchListings)
		r.Get("/{id}", s.GetListing)
		r.Post("/{id}/status", s.SetListingStatus)
		r.Put("/{id}/ref", s.AttachListingRef)
	})

	r.Get("/owners/{ownerID}/listings", s.ListOwnerListings)

	return r
}
