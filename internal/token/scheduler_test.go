package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-bridge/internal/common/errors"
)

// fakeRefresher records the refresh tokens it received and returns a canned
// result or error.
type fakeRefresher struct {
	received []string
	result   *Token
	err      error
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	f.received = append(f.received, refreshToken)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestSchedulerTickRefreshesAndPersists(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Write(ctx, &Token{AccessToken: "old", RefreshToken: "old-refresh", ExpiresIn: 10}))

	refresher := &fakeRefresher{
		result: &Token{AccessToken: "new", RefreshToken: "new-refresh", ExpiresIn: 3600},
	}

	scheduler := NewScheduler(store, refresher, time.Second)
	scheduler.Tick()

	require.Equal(t, []string{"old-refresh"}, refresher.received)

	loaded, err := store.Read(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "new", loaded.AccessToken)
	assert.Equal(t, "new-refresh", loaded.RefreshToken)
}

func TestSchedulerTickWithEmptyStore(t *testing.T) {
	store := NewMemoryStore()
	refresher := &fakeRefresher{
		err: errors.OAuthExchangeError("token endpoint returned 400", 400),
	}

	scheduler := NewScheduler(store, refresher, time.Second)
	scheduler.Tick()

	// The refresh was still attempted, with an empty refresh token
	require.Equal(t, []string{""}, refresher.received)

	// Nothing was written: the store stays empty, no partial record
	loaded, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSchedulerTickKeepsOldTokenOnFailure(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	existing := &Token{AccessToken: "still-valid", RefreshToken: "r", ExpiresIn: 3600}
	require.NoError(t, store.Write(ctx, existing))

	refresher := &fakeRefresher{err: errors.OAuthExchangeError("token endpoint returned 500", 500)}

	scheduler := NewScheduler(store, refresher, time.Second)
	scheduler.Tick()

	loaded, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, existing, loaded)
}

func TestSchedulerStartStop(t *testing.T) {
	store := NewMemoryStore()
	refresher := &fakeRefresher{result: &Token{AccessToken: "a", RefreshToken: "r", ExpiresIn: 1}}

	scheduler := NewScheduler(store, refresher, time.Hour)
	scheduler.Start()
	scheduler.Stop()
}
