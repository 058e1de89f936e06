// Package monitor runs the session expiry countdown and the health poller.
package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"wms/internal/logger"
	"wms/internal/session"
)

const (
	DefaultCountdown = 5 * time.Second
	DefaultTick      = time.Second
)

type State int

const (
	StateActive State = iota
	StateCountingDown
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	case StateCountingDown:
		return "COUNTING_DOWN"
	case StateExpired:
		return "EXPIRED"
	}
	return "UNKNOWN"
}

// Expiry clears a session once a countdown started by Trigger elapses.
// Stop cancels a running countdown; a cancelled countdown never clears.
type Expiry struct {
	store  *session.Store
	window time.Duration
	tick   time.Duration
	log    *zap.Logger

	onTick   func(remaining time.Duration)
	onExpire func()

	mu      sync.Mutex
	state   State
	cancel  context.CancelFunc
	done    chan struct{}
	expired chan struct{}
}

type ExpiryOption func(*Expiry)

// WithCountdown sets the window and the tick granularity.
func WithCountdown(window, tick time.Duration) ExpiryOption {
	return func(e *Expiry) {
		if tick > 0 && window >= tick {
			e.window, e.tick = window, tick
		}
	}
}

// OnTick is called with the remaining time at the start and after every tick.
func OnTick(fn func(remaining time.Duration)) ExpiryOption {
	return func(e *Expiry) { e.onTick = fn }
}

// OnExpire is called once after the session has been cleared.
func OnExpire(fn func()) ExpiryOption {
	return func(e *Expiry) { e.onExpire = fn }
}

func WithExpiryLogger(l *zap.Logger) ExpiryOption {
	return func(e *Expiry) { e.log = l }
}

func NewExpiry(store *session.Store, opts ...ExpiryOption) *Expiry {
	e := &Expiry{
		store:   store,
		window:  DefaultCountdown,
		tick:    DefaultTick,
		log:     zap.NewNop(),
		expired: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(logger.Component("expiry"))
	return e
}

func (e *Expiry) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Expired is closed when the countdown has cleared the session.
func (e *Expiry) Expired() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.expired
}

// Trigger starts the countdown. It returns false unless the monitor was ACTIVE.
func (e *Expiry) Trigger(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive {
		return false
	}

	cctx, cancel := context.WithCancel(ctx)
	e.state = StateCountingDown
	e.cancel = cancel
	e.done = make(chan struct{})
	epoch := e.store.Epoch()

	e.log.Info("logout countdown started", zap.Duration("window", e.window))
	go e.countdown(cctx, epoch, e.done)
	return true
}

// TriggerIfInactive starts the countdown when the session is not active.
func (e *Expiry) TriggerIfInactive(ctx context.Context) bool {
	if e.store.Active() {
		return false
	}
	return e.Trigger(ctx)
}

// Stop cancels a running countdown and waits for it to exit. The monitor
// returns to ACTIVE unless the countdown already expired.
func (e *Expiry) Stop() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done

	e.mu.Lock()
	if e.state == StateCountingDown {
		e.state = StateActive
		e.log.Info("logout countdown cancelled")
	}
	e.cancel, e.done = nil, nil
	e.mu.Unlock()
}

// Reset re-arms an expired monitor for the next session.
func (e *Expiry) Reset() {
	e.Stop()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateExpired {
		e.state = StateActive
		e.expired = make(chan struct{})
	}
}

func (e *Expiry) countdown(ctx context.Context, epoch uint64, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	remaining := e.window
	e.notify(remaining)
	for remaining > 0 {
		select {
		case <-ctx.Done():
			e.mu.Lock()
			if e.state == StateCountingDown {
				e.state = StateActive
			}
			e.mu.Unlock()
			return
		case <-ticker.C:
			remaining -= e.tick
			if remaining < 0 {
				remaining = 0
			}
			e.notify(remaining)
		}
	}

	e.mu.Lock()
	if ctx.Err() != nil || e.state != StateCountingDown {
		if e.state == StateCountingDown {
			e.state = StateActive
		}
		e.mu.Unlock()
		return
	}
	e.state = StateExpired
	expired := e.expired
	e.mu.Unlock()

	if e.store.ClearAt(epoch) {
		e.log.Info("session expired and cleared")
	} else {
		e.log.Info("session already replaced, skipping clear")
	}
	close(expired)
	if e.onExpire != nil {
		e.onExpire()
	}
}

func (e *Expiry) notify(remaining time.Duration) {
	if e.onTick != nil {
		e.onTick(remaining)
	}
}
