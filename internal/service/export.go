package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/neelesh-roxban/arc/internal/domain"
	"github.com/neelesh-roxban/arc/internal/repo"
)

// ExportService assembles a full flat export of every listing, including
// traded, closed, and expired ones.
type ExportService struct {
	listings repo.ListingRepo
}

// NewExportService constructs an ExportService backed by the provided repo.
func NewExportService(r repo.ListingRepo) *ExportService {
	return &ExportService{listings: r}
}

// Export returns one ExportRow per listing, oldest first.
// Always returns a non-nil slice.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	listings, err := s.listings.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(listings))
	for _, l := range listings {
		row := domain.ExportRow{
			ID:          strconv.FormatInt(l.ID, 10),
			OwnerID:     l.OwnerID,
			Have:        l.Have,
			Want:        l.Want,
			Price:       l.Price,
			Platform:    l.Platform,
			Notes:       l.Notes,
			Status:      string(l.Status),
			CreatedAt:   l.CreatedAt.UTC().Format(time.RFC3339),
			ExternalRef: l.ExternalRef,
		}
		if l.ExpiresAt != nil {
			row.ExpiresAt = l.ExpiresAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
