package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-manager/api"
	"github.com/warp/leave-manager/generic"
	"github.com/warp/leave-manager/store/sqlite"
)

func seedSessions(t *testing.T, store *sqlite.Store, now time.Time) {
	t.Helper()
	ctx := context.Background()
	u := &sqlite.User{Username: "admin", PasswordHash: "x", CreatedAt: now}
	require.NoError(t, store.CreateUser(ctx, u))

	require.NoError(t, store.CreateSession(ctx, sqlite.Session{ID: "live", UserID: u.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.CreateSession(ctx, sqlite.Session{ID: "expired", UserID: u.ID, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, store.CreateSession(ctx, sqlite.Session{ID: "revoked", UserID: u.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.RevokeSession(ctx, "revoked", now))
}

func TestSessionPurgeScheduler_RunNow(t *testing.T) {
	// GIVEN: One live, one expired and one revoked session
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	seedSessions(t, store, now)

	s := api.NewSessionPurgeScheduler(store, nil)
	s.Now = func() time.Time { return now }

	// WHEN: Purging
	n, err := s.RunNow(context.Background())
	require.NoError(t, err)

	// THEN: Only the live session survives
	assert.Equal(t, int64(2), n)
	_, err = store.GetActiveSession(context.Background(), "live", now)
	assert.NoError(t, err)
	_, err = store.GetActiveSession(context.Background(), "expired", now.Add(-90*time.Minute))
	assert.ErrorIs(t, err, generic.ErrSessionNotFound)

	n, err = s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

type countingPurger struct{ calls chan struct{} }

func (c *countingPurger) PurgeSessions(context.Context, time.Time) (int64, error) {
	select {
	case c.calls <- struct{}{}:
	default:
	}
	return 0, nil
}

func TestSessionPurgeScheduler_StartStop(t *testing.T) {
	purger := &countingPurger{calls: make(chan struct{}, 1)}
	s := api.NewSessionPurgeScheduler(purger, nil)
	s.Interval = time.Hour

	s.Start()
	select {
	case <-purger.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not purge on start")
	}
	s.Stop()
	s.Stop() // second stop is a no-op
}

func TestSessionPurgeScheduler_Disabled(t *testing.T) {
	purger := &countingPurger{calls: make(chan struct{}, 1)}
	s := api.NewSessionPurgeScheduler(purger, nil)
	s.Enabled = false

	s.Start()
	s.Stop()

	select {
	case <-purger.calls:
		t.Fatal("disabled scheduler purged")
	default:
	}
}
