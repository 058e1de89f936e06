package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wms/internal/model"
	"wms/internal/token"
)

func identity(id int64, role model.RoleTag) token.Identity {
	return token.Identity{
		SubjectID: id,
		Username:  "user",
		Role:      role,
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestNewStoreIsEmpty(t *testing.T) {
	s := New()
	snap := s.Snapshot()
	assert.False(t, snap.Active)
	assert.Empty(t, snap.Token)
	assert.Zero(t, snap.Identity)
	assert.Zero(t, snap.Epoch)
}

func TestPopulateAndClear(t *testing.T) {
	s := New()
	require.NoError(t, s.Populate("tok", identity(3, model.RoleManager)))

	assert.True(t, s.Active())
	assert.Equal(t, "tok", s.Token())
	assert.Equal(t, int64(3), s.SubjectID())
	assert.Equal(t, model.RoleManager, s.Role())
	assert.Equal(t, "user", s.Username())

	assert.True(t, s.Clear())
	assert.False(t, s.Active())
	assert.Empty(t, s.Token())
	assert.Zero(t, s.Role())
	assert.Equal(t, uint64(2), s.Epoch(), "populate and clear both advance the epoch")

	assert.False(t, s.Clear(), "second clear finds nothing to clear")
}

func TestPopulateRejectsPartialState(t *testing.T) {
	s := New()
	require.ErrorIs(t, s.Populate("", identity(1, model.RoleAdmin)), ErrIncomplete)
	require.ErrorIs(t, s.Populate("tok", token.Identity{}), ErrIncomplete)
	assert.False(t, s.Active())
	assert.Empty(t, s.Token())
}

func TestPopulateRejectsExpiredIdentity(t *testing.T) {
	s := New()
	stale := identity(1, model.RoleAdmin)
	stale.ExpiresAt = time.Now().Add(-time.Minute)

	require.ErrorIs(t, s.Populate("tok", stale), ErrExpired)
	require.ErrorIs(t, s.PopulateAt(s.Epoch(), "tok", stale), ErrExpired)
	require.ErrorIs(t, s.Populate("tok", token.Identity{SubjectID: 1, Username: "user"}), ErrExpired)
	assert.False(t, s.Active())
	assert.Zero(t, s.Epoch())
}

func TestPopulateAtRefusesAfterReplace(t *testing.T) {
	s := New()
	epoch := s.Epoch()
	require.NoError(t, s.Populate("first", identity(1, model.RoleAdmin)))

	err := s.PopulateAt(epoch, "late", identity(2, model.RoleCustomer))
	require.ErrorIs(t, err, ErrStaleEpoch)
	assert.Equal(t, "first", s.Token())
}

func TestClearAtOnlyClearsMatchingEpoch(t *testing.T) {
	s := New()
	var hooks atomic.Int32
	s.OnClear(func() { hooks.Add(1) })

	require.NoError(t, s.Populate("old", identity(1, model.RoleAdmin)))
	old := s.Epoch()
	require.NoError(t, s.Populate("new", identity(2, model.RoleManager)))

	assert.False(t, s.ClearAt(old))
	assert.True(t, s.Active())
	assert.Equal(t, "new", s.Token())
	assert.Zero(t, hooks.Load())

	assert.True(t, s.ClearAt(s.Epoch()))
	assert.False(t, s.Active())
	assert.Equal(t, int32(1), hooks.Load())
}

func TestClearAtOnEmptyStoreSkipsHooks(t *testing.T) {
	s := New()
	var hooks atomic.Int32
	s.OnClear(func() { hooks.Add(1) })

	assert.True(t, s.ClearAt(0))
	assert.Equal(t, uint64(1), s.Epoch())
	assert.Zero(t, hooks.Load())
}

func TestPopulateAtRefusesAfterClear(t *testing.T) {
	s := New()
	epoch := s.Epoch()
	s.Clear()

	err := s.PopulateAt(epoch, "late", identity(1, model.RoleAdmin))
	require.ErrorIs(t, err, ErrStaleEpoch)
	assert.False(t, s.Active())

	require.NoError(t, s.PopulateAt(s.Epoch(), "fresh", identity(1, model.RoleAdmin)))
	assert.Equal(t, "fresh", s.Token())
}

func TestOnClearRunsOnlyForPopulatedSession(t *testing.T) {
	s := New()
	var calls int32
	s.OnClear(func() { atomic.AddInt32(&calls, 1) })

	s.Clear()
	require.NoError(t, s.Populate("tok", identity(1, model.RoleAdmin)))
	s.Clear()
	s.Clear()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestObserversNeverSeeHalfPopulatedSession(t *testing.T) {
	s := New()
	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				_ = s.Populate("tok", identity(5, model.RoleEmployee))
			} else {
				s.Clear()
			}
		}
	}()

	for i := 0; i < 10000; i++ {
		snap := s.Snapshot()
		if snap.Active {
			require.NotEmpty(t, snap.Token)
			require.Equal(t, int64(5), snap.Identity.SubjectID)
		} else {
			require.Empty(t, snap.Token)
			require.Zero(t, snap.Identity)
		}
	}
	close(stop)
	wg.Wait()
}

func TestErrorStateFirstWins(t *testing.T) {
	s := New()
	s.RaiseError("Network error", "connection refused")
	s.RaiseError("Other", "ignored")

	st := s.Error()
	assert.True(t, st.Active)
	assert.Equal(t, "Network error", st.Header)

	s.ResetError()
	assert.False(t, s.Error().Active)
}
