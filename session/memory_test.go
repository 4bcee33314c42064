package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	data := New(NewID(), "user-1")
	require.NoError(t, s.Create(ctx, data))

	got, err := s.Get(ctx, data.SessionID)
	require.NoError(t, err)
	assert.Equal(t, data.SessionID, got.SessionID)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, StatusInitiated, got.Status)
}

func TestMemoryStore_CreateDuplicate(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	data := New("sess_dup", "user-1")
	require.NoError(t, s.Create(ctx, data))
	assert.ErrorIs(t, s.Create(ctx, data), ErrExists)
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	s := NewMemoryStore(0)

	_, err := s.Get(context.Background(), "sess_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_UpdateIfStatus(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	data := New("sess_1", "user-1")
	require.NoError(t, s.Create(ctx, data))

	updated, err := s.UpdateIfStatus(ctx, "sess_1", StatusInitiated, func(d *Data) {
		d.SelectedDestination = "Kyoto, Japan"
		d.Status = StatusDestinationConfirmed
	})
	require.NoError(t, err)
	assert.Equal(t, StatusDestinationConfirmed, updated.Status)
	assert.Equal(t, "Kyoto, Japan", updated.SelectedDestination)
	assert.True(t, updated.LastAccessedAt.After(data.LastAccessedAt) ||
		updated.LastAccessedAt.Equal(data.LastAccessedAt))

	// A second transition from the same predecessor must fail.
	_, err = s.UpdateIfStatus(ctx, "sess_1", StatusInitiated, func(d *Data) {
		d.Status = StatusDestinationConfirmed
	})
	assert.ErrorIs(t, err, ErrInvalidState)

	// The failed attempt must not have changed anything.
	got, err := s.Get(ctx, "sess_1")
	require.NoError(t, err)
	assert.Equal(t, StatusDestinationConfirmed, got.Status)
	assert.Equal(t, "Kyoto, Japan", got.SelectedDestination)
}

func TestMemoryStore_Touch(t *testing.T) {
	s := NewMemoryStore(0)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	data := New("sess_touch", "user-1")
	require.NoError(t, s.Create(ctx, data))

	touched, err := s.Touch(ctx, "sess_touch", StatusInitiated)
	require.NoError(t, err)
	assert.Equal(t, StatusInitiated, touched.Status)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), touched.LastAccessedAt)

	_, err = s.Touch(ctx, "sess_touch", StatusRoutesFound)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestMemoryStore_UpdateUnknown(t *testing.T) {
	s := NewMemoryStore(0)

	_, err := s.UpdateIfStatus(context.Background(), "sess_missing", StatusInitiated, func(*Data) {})
	assert.ErrorIs(t, err, ErrNotFound,
		"unknown session must be not-found, not invalid-state")
}

func TestMemoryStore_ConcurrentCASExactlyOneWinner(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, New("sess_race", "user-1")))

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, losses := 0, 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdateIfStatus(ctx, "sess_race", StatusInitiated, func(d *Data) {
				d.Status = StatusDestinationConfirmed
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if assert.ErrorIs(t, err, ErrInvalidState) {
				losses++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one concurrent transition may win")
	assert.Equal(t, workers-1, losses)
}

func TestMemoryStore_SessionsAreIndependent(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, New("sess_a", "user-1")))
	require.NoError(t, s.Create(ctx, New("sess_b", "user-2")))

	_, err := s.UpdateIfStatus(ctx, "sess_a", StatusInitiated, func(d *Data) {
		d.Status = StatusDestinationConfirmed
	})
	require.NoError(t, err)

	other, err := s.Get(ctx, "sess_b")
	require.NoError(t, err)
	assert.Equal(t, StatusInitiated, other.Status,
		"advancing one session must not touch another")
}

func TestMemoryStore_SweepRemovesIdleSessions(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	current := time.Now()
	s.now = func() time.Time { return current }
	ctx := context.Background()

	stale := New("sess_stale", "user-1")
	stale.LastAccessedAt = current.Add(-2 * time.Hour)
	require.NoError(t, s.Create(ctx, stale))
	require.NoError(t, s.Create(ctx, New("sess_fresh", "user-2")))

	s.Sweep()

	_, err := s.Get(ctx, "sess_stale")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "sess_fresh")
	assert.NoError(t, err)
}

func TestNewID_OpaqueAndUnique(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "sess_")
}
