package handler_test

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neelesh-roxban/arc/internal/domain"
	"github.com/neelesh-roxban/arc/internal/handler"
	"github.com/neelesh-roxban/arc/internal/ratelimit"
)

// mockExportServicer is a test double for handler.ExportServicer.
type mockExportServicer struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

func newExportHandler(svc handler.ExportServicer) http.Handler {
	srv := handler.NewServer(nil, svc, ratelimit.New(), 45*time.Second, time.Now)
	return srv.Routes()
}

func TestExportListings_200_CSV(t *testing.T) {
	svc := &mockExportServicer{
		export: func(_ context.Context) ([]domain.ExportRow, error) {
			return []domain.ExportRow{
				{
					ID: "1", OwnerID: "owner-1", Have: "Ferro blueprint", Want: "Anvil receiver",
					Status: "closed", CreatedAt: "2025-11-01T12:00:00Z",
				},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	rec := httptest.NewRecorder()

	newExportHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2, "header plus one row")
	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, []string{
		"1", "owner-1", "Ferro blueprint", "Anvil receiver", "", "", "",
		"closed", "2025-11-01T12:00:00Z", "", "",
	}, records[1])
}

func TestExportListings_200_Empty(t *testing.T) {
	svc := &mockExportServicer{
		export: func(_ context.Context) ([]domain.ExportRow, error) {
			return []domain.ExportRow{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	rec := httptest.NewRecorder()

	newExportHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1, "header only")
}
