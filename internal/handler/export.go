package handler

import (
	"encoding/csv"
	"log/slog"
	"net/http"
)

// exportHeader is the CSV column order, matching domain.ExportRow.
var exportHeader = []string{
	"id", "owner_id", "have", "want", "price", "platform", "notes",
	"status", "created_at", "expires_at", "external_ref",
}

// ExportListings handles GET /export.
// It streams every listing — terminal states included — as CSV, so the full
// trade history can be pulled for audit without touching the database.
func (s *Server) ExportListings(w http.ResponseWriter, r *http.Request) {
	rows, err := s.export.Export(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="listings.csv"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		slog.Error("write export header", "error", err)
		return
	}
	for _, row := range rows {
		record := []string{
			row.ID, row.OwnerID, row.Have, row.Want, row.Price, row.Platform,
			row.Notes, row.Status, row.CreatedAt, row.ExpiresAt, row.ExternalRef,
		}
		if err := cw.Write(record); err != nil {
			slog.Error("write export row", "error", err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("flush export", "error", err)
	}
}
