package session

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("TRIPSCALE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TRIPSCALE_TEST_POSTGRES_DSN not set; skipping PostgreSQL tests")
	}
	s, err := NewPostgresStoreFromDSN(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = s.pool.Exec(context.Background(), `DELETE FROM sessions`)
		s.Close()
	})
	return s
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()

	data := New(NewID(), "user-1")
	require.NoError(t, s.Create(ctx, data))
	assert.ErrorIs(t, s.Create(ctx, data), ErrExists)

	got, err := s.Get(ctx, data.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)

	_, err = s.Get(ctx, "sess_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_UpdateIfStatus(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()

	data := New(NewID(), "user-1")
	require.NoError(t, s.Create(ctx, data))

	updated, err := s.UpdateIfStatus(ctx, data.SessionID, StatusInitiated, func(d *Data) {
		d.SelectedDestination = "Rome, Italy"
		d.Status = StatusDestinationConfirmed
	})
	require.NoError(t, err)
	assert.Equal(t, StatusDestinationConfirmed, updated.Status)

	_, err = s.UpdateIfStatus(ctx, data.SessionID, StatusInitiated, func(*Data) {})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = s.UpdateIfStatus(ctx, "sess_missing", StatusInitiated, func(*Data) {})
	assert.ErrorIs(t, err, ErrNotFound)
}
