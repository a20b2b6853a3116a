package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/neelesh-roxban/arc/internal/domain"
)

// actorHeader and privilegedHeader carry the ambient identity the adapter
// resolved from the platform's permission model. The adapter is trusted;
// this service does not authenticate.
const (
	actorHeader      = "X-Actor-ID"
	privilegedHeader = "X-Actor-Privileged"
)

func actorID(r *http.Request) string {
	return r.Header.Get(actorHeader)
}

func privileged(r *http.Request) bool {
	return r.Header.Get(privilegedHeader) == "true"
}

// checkCooldown enforces the per-actor write cooldown. Returns false after
// writing the 429 response when the actor must wait.
func (s *Server) checkCooldown(w http.ResponseWriter, actor string) bool {
	if s.limiter.TryAcquire(actor, s.clock(), s.cooldown) {
		return true
	}
	msg := fmt.Sprintf("slow down a bit — you can do this again in ~%ds", int(s.cooldown.Seconds()))
	writeError(w, http.StatusTooManyRequests, "rate_limited", msg)
	return false
}

// createListingRequest is the body for POST /listings.
type createListingRequest struct {
	Have         string `json:"have"`
	Want         string `json:"want"`
	Price        string `json:"price"`
	Platform     string `json:"platform"`
	Notes        string `json:"notes"`
	ExpiresHours int    `json:"expires_hours"`
}

// CreateListing handles POST /listings.
func (s *Server) CreateListing(w http.ResponseWriter, r *http.Request) {
	actor := actorID(r)
	if actor == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "X-Actor-ID header is required")
		return
	}
	if !s.checkCooldown(w, actor) {
		return
	}

	var body createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "malformed request body")
		return
	}

	created, err := s.listings.Create(r.Context(), domain.NewListing{
		OwnerID:      actor,
		Have:         body.Have,
		Want:         body.Want,
		Price:        body.Price,
		Platform:     body.Platform,
		Notes:        body.Notes,
		ExpiresHours: body.ExpiresHours,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// GetListing handles GET /listings/{id}.
func (s *Server) GetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(w, r)
	if !ok {
		return
	}

	listing, err := s.listings.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// listListingsResponse is the body for GET /listings.
type listListingsResponse struct {
	Data       []domain.Listing `json:"data"`
	Pagination pagination       `json:"pagination"`
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// ListListings handles GET /listings.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20,
// max=100).
func (s *Server) ListListings(w http.ResponseWriter, r *http.Request) {
	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))

	listings, total, err := s.listings.ListActive(r.Context(), params)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listListingsResponse{
		Data: listings,
		Pagination: pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// SearchListings handles GET /listings/search?q=keyword.
func (s *Server) SearchListings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := queryInt(r, "limit"); v != nil {
		limit = *v
	}

	listings, err := s.listings.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]domain.Listing{"data": listings})
}

// ListOwnerListings handles GET /owners/{ownerID}/listings.
func (s *Server) ListOwnerListings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := queryInt(r, "limit"); v != nil {
		limit = *v
	}

	listings, err := s.listings.ListByOwner(r.Context(), chi.URLParam(r, "ownerID"), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]domain.Listing{"data": listings})
}

// setStatusRequest is the body for POST /listings/{id}/status.
type setStatusRequest struct {
	Status string `json:"status"`
}

// SetListingStatus handles POST /listings/{id}/status.
// The target status must be traded or closed; the caller must be the owner
// or privileged.
func (s *Server) SetListingStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(w, r)
	if !ok {
		return
	}

	actor := actorID(r)
	if actor == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "X-Actor-ID header is required")
		return
	}
	if !s.checkCooldown(w, actor) {
		return
	}

	var body setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "malformed request body")
		return
	}
	target, err := domain.ParseStatus(body.Status)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "status must be traded or closed")
		return
	}

	updated, err := s.listings.SetStatus(r.Context(), id, actor, privileged(r), target)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// attachRefRequest is the body for PUT /listings/{id}/ref.
type attachRefRequest struct {
	Ref string `json:"ref"`
}

// AttachListingRef handles PUT /listings/{id}/ref. The adapter calls this
// after rendering a listing to store the message locator; repeated calls
// overwrite.
func (s *Server) AttachListingRef(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(w, r)
	if !ok {
		return
	}

	var body attachRefRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "malformed request body")
		return
	}

	if err := s.listings.AttachExternalRef(r.Context(), id, body.Ref); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listingID parses the {id} path parameter. A non-numeric id cannot name any
// listing, so it reports not found rather than a validation error.
func listingID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusNotFound, "not_found", "listing not found")
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter, returning nil when
// absent or malformed.
func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
