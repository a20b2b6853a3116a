package domain

// ExportRow is a single row in the full-data audit export.
// It is a flat, string-only view of a listing so callers can write it
// straight into a CSV record. Terminal listings are included: rows are
// retained for history rather than deleted, and the export is how that
// history gets out.
type ExportRow struct {
	ID          string
	OwnerID     string
	Have        string
	Want        string
	Price       string
	Platform    string
	Notes       string
	Status      string
	CreatedAt   string // RFC 3339
	ExpiresAt   string // RFC 3339, empty when the listing never expires
	ExternalRef string
}
