// Package session holds the process-wide authentication state.
//
// A Store is the single source of truth for the current token and identity.
// Every mutation is one critical section, so readers observe either the empty
// session or a fully populated one.
package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"wms/internal/model"
	"wms/internal/token"
)

var (
	// ErrStaleEpoch means the session was cleared or replaced after the caller captured its epoch.
	ErrStaleEpoch = errors.New("session changed while login was in flight")
	// ErrIncomplete is returned when populate is called without a token or identity.
	ErrIncomplete = errors.New("session requires both token and identity")
	// ErrExpired is returned when populate is called with an identity already past its expiry.
	ErrExpired = errors.New("identity already expired")
)

// Snapshot is a consistent copy of the session.
type Snapshot struct {
	Token    string
	Identity token.Identity
	Active   bool
	Epoch    uint64
}

// ErrorState is the global error flag a presentation layer routes on.
type ErrorState struct {
	Header  string
	Message string
	Active  bool
}

// Store is safe for concurrent use. The zero value is an empty session.
type Store struct {
	mu       sync.RWMutex
	token    string
	identity token.Identity
	active   bool
	epoch    uint64

	errState ErrorState
	onClear  []func()
}

func New() *Store { return &Store{} }

// Populate sets token, identity and the active flag together.
func (s *Store) Populate(raw string, ident token.Identity) error {
	if err := validate(raw, ident); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(raw, ident)
	return nil
}

// PopulateAt behaves like Populate but refuses if the session was cleared or
// replaced since epoch was read.
func (s *Store) PopulateAt(epoch uint64, raw string, ident token.Identity) error {
	if err := validate(raw, ident); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return ErrStaleEpoch
	}
	s.set(raw, ident)
	return nil
}

// set installs a new session. Every populate advances the epoch so a holder of
// the previous epoch can tell the session was replaced.
func (s *Store) set(raw string, ident token.Identity) {
	s.token = raw
	s.identity = ident
	s.active = true
	s.epoch++
}

func validate(raw string, ident token.Identity) error {
	if strings.TrimSpace(raw) == "" || ident.SubjectID == 0 || ident.Username == "" {
		return ErrIncomplete
	}
	if ident.Expired(time.Now()) {
		return ErrExpired
	}
	return nil
}

// Clear resets the session and advances the epoch. It reports whether a populated
// session was actually cleared.
func (s *Store) Clear() bool {
	s.mu.Lock()
	wasActive, hooks := s.reset()
	s.mu.Unlock()

	s.runHooks(wasActive, hooks)
	return wasActive
}

// ClearAt clears the session only if the epoch still equals epoch, in one
// critical section. It reports whether the clear happened.
func (s *Store) ClearAt(epoch uint64) bool {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return false
	}
	wasActive, hooks := s.reset()
	s.mu.Unlock()

	s.runHooks(wasActive, hooks)
	return true
}

// reset must be called with mu held.
func (s *Store) reset() (bool, []func()) {
	wasActive := s.active
	s.token = ""
	s.identity = token.Identity{}
	s.active = false
	s.epoch++
	return wasActive, append([]func(){}, s.onClear...)
}

func (s *Store) runHooks(wasActive bool, hooks []func()) {
	if !wasActive {
		return
	}
	for _, fn := range hooks {
		fn()
	}
}

// OnClear registers fn to run after a populated session is cleared.
func (s *Store) OnClear(fn func()) {
	s.mu.Lock()
	s.onClear = append(s.onClear, fn)
	s.mu.Unlock()
}

func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Identity returns the current identity and whether the session is active.
func (s *Store) Identity() (token.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.active
}

func (s *Store) SubjectID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.SubjectID
}

func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.Username
}

func (s *Store) Role() model.RoleTag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.Role
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Token: s.token, Identity: s.identity, Active: s.active, Epoch: s.epoch}
}

// RaiseError sets the global error state. The first raised error wins until ResetError.
func (s *Store) RaiseError(header, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errState.Active {
		return
	}
	s.errState = ErrorState{Header: header, Message: message, Active: true}
}

func (s *Store) ResetError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errState = ErrorState{}
}

func (s *Store) Error() ErrorState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errState
}
