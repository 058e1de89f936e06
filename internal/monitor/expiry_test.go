package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wms/internal/model"
	"wms/internal/session"
	"wms/internal/token"
)

func activeStore(t *testing.T) *session.Store {
	t.Helper()
	s := session.New()
	require.NoError(t, s.Populate("tok", token.Identity{
		SubjectID: 1, Username: "root", Role: model.RoleAdmin, ExpiresAt: time.Now().Add(time.Hour),
	}))
	return s
}

func TestExpiryClearsSessionOnce(t *testing.T) {
	store := activeStore(t)
	var clears atomic.Int32
	store.OnClear(func() { clears.Add(1) })

	var mu sync.Mutex
	var ticks []time.Duration
	e := NewExpiry(store,
		WithCountdown(50*time.Millisecond, 10*time.Millisecond),
		OnTick(func(r time.Duration) {
			mu.Lock()
			ticks = append(ticks, r)
			mu.Unlock()
		}),
	)

	assert.Equal(t, StateActive, e.State())
	require.True(t, e.Trigger(context.Background()))
	assert.Equal(t, StateCountingDown, e.State())
	assert.False(t, e.Trigger(context.Background()), "already counting down")

	select {
	case <-e.Expired():
	case <-time.After(2 * time.Second):
		t.Fatal("countdown never expired")
	}

	assert.Equal(t, StateExpired, e.State())
	assert.False(t, store.Active())
	assert.Equal(t, int32(1), clears.Load())

	mu.Lock()
	assert.Equal(t, []time.Duration{
		50 * time.Millisecond, 40 * time.Millisecond, 30 * time.Millisecond,
		20 * time.Millisecond, 10 * time.Millisecond, 0,
	}, ticks)
	mu.Unlock()

	e.Stop()
	assert.False(t, e.Trigger(context.Background()), "expired monitor needs Reset")
	assert.Equal(t, int32(1), clears.Load())
}

func TestExpiryStopPreventsClear(t *testing.T) {
	store := activeStore(t)
	var expired atomic.Bool
	e := NewExpiry(store,
		WithCountdown(200*time.Millisecond, 20*time.Millisecond),
		OnExpire(func() { expired.Store(true) }),
	)

	require.True(t, e.Trigger(context.Background()))
	time.Sleep(30 * time.Millisecond)
	e.Stop()

	assert.Equal(t, StateActive, e.State())
	time.Sleep(300 * time.Millisecond)
	assert.True(t, store.Active())
	assert.False(t, expired.Load())
}

func TestExpiryParentCancelPreventsClear(t *testing.T) {
	store := activeStore(t)
	e := NewExpiry(store, WithCountdown(100*time.Millisecond, 10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	require.True(t, e.Trigger(ctx))
	cancel()
	e.Stop()

	time.Sleep(150 * time.Millisecond)
	assert.True(t, store.Active())
	assert.Equal(t, StateActive, e.State())
}

func TestExpirySkipsClearForReplacedSession(t *testing.T) {
	store := activeStore(t)
	e := NewExpiry(store, WithCountdown(40*time.Millisecond, 10*time.Millisecond))
	require.True(t, e.Trigger(context.Background()))

	store.Clear()
	require.NoError(t, store.Populate("new", nextIdentity()))

	<-e.Expired()
	assert.True(t, store.Active())
	assert.Equal(t, "new", store.Token())
}

func nextIdentity() token.Identity {
	return token.Identity{
		SubjectID: 2, Username: "next", Role: model.RoleManager, ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestExpiryKeepsSessionPopulatedDuringCountdown(t *testing.T) {
	store := session.New()
	e := NewExpiry(store, WithCountdown(40*time.Millisecond, 10*time.Millisecond))
	require.True(t, e.TriggerIfInactive(context.Background()))

	require.NoError(t, store.Populate("fresh", nextIdentity()))

	select {
	case <-e.Expired():
	case <-time.After(2 * time.Second):
		t.Fatal("countdown never expired")
	}
	assert.True(t, store.Active())
	assert.Equal(t, "fresh", store.Token())
}

func TestExpiryKeepsReloginOverActiveSession(t *testing.T) {
	store := activeStore(t)
	var clears atomic.Int32
	store.OnClear(func() { clears.Add(1) })
	e := NewExpiry(store, WithCountdown(40*time.Millisecond, 10*time.Millisecond))
	require.True(t, e.Trigger(context.Background()))

	require.NoError(t, store.Populate("relogin", nextIdentity()))

	<-e.Expired()
	assert.True(t, store.Active())
	assert.Equal(t, "relogin", store.Token())
	assert.Zero(t, clears.Load())
}

func TestTriggerIfInactive(t *testing.T) {
	store := activeStore(t)
	e := NewExpiry(store, WithCountdown(20*time.Millisecond, 10*time.Millisecond))

	assert.False(t, e.TriggerIfInactive(context.Background()))
	store.Clear()
	assert.True(t, e.TriggerIfInactive(context.Background()))
	<-e.Expired()

	e.Reset()
	assert.Equal(t, StateActive, e.State())
}
