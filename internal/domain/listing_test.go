package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neelesh-roxban/arc/internal/domain"
)

func TestParseStatus_Known(t *testing.T) {
	for _, raw := range []string{"active", "traded", "closed", "expired"} {
		got, err := domain.ParseStatus(raw)
		require.NoError(t, err, "ParseStatus(%q)", raw)
		assert.Equal(t, domain.Status(raw), got)
	}
}

func TestParseStatus_Unknown(t *testing.T) {
	for _, raw := range []string{"", "ACTIVE", "deleted", "sold"} {
		_, err := domain.ParseStatus(raw)
		assert.ErrorIs(t, err, domain.ErrValidation, "ParseStatus(%q)", raw)
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, domain.StatusActive.Terminal())
	assert.True(t, domain.StatusTraded.Terminal())
	assert.True(t, domain.StatusClosed.Terminal())
	assert.True(t, domain.StatusExpired.Terminal())
}

func TestStatus_UserClosable(t *testing.T) {
	assert.True(t, domain.StatusTraded.UserClosable())
	assert.True(t, domain.StatusClosed.UserClosable())
	// Active is not a target state, and expiry belongs to the sweep alone.
	assert.False(t, domain.StatusActive.UserClosable())
	assert.False(t, domain.StatusExpired.UserClosable())
}

func TestListing_ExpiredBy(t *testing.T) {
	deadline := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

	l := domain.Listing{Status: domain.StatusActive, ExpiresAt: &deadline}

	assert.False(t, l.ExpiredBy(deadline.Add(-time.Second)), "before the deadline")
	assert.True(t, l.ExpiredBy(deadline), "exactly at the deadline")
	assert.True(t, l.ExpiredBy(deadline.Add(time.Second)), "after the deadline")
}

func TestListing_ExpiredBy_NoDeadline(t *testing.T) {
	l := domain.Listing{Status: domain.StatusActive}
	assert.False(t, l.ExpiredBy(time.Now()), "no deadline, never expires")
}

func TestListing_ExpiredBy_TerminalStates(t *testing.T) {
	deadline := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	for _, st := range []domain.Status{domain.StatusTraded, domain.StatusClosed, domain.StatusExpired} {
		l := domain.Listing{Status: st, ExpiresAt: &deadline}
		assert.False(t, l.ExpiredBy(deadline.Add(time.Hour)), "status %s is already settled", st)
	}
}
