// Package autolock tracks user input and decides when the application
// should re-ask for the password.
package autolock

import (
	"sync"
	"time"
)

const (
	DefaultIdle  = 10 * time.Minute
	DefaultCheck = 60 * time.Second
)

type Tracker struct {
	idle time.Duration

	mu           sync.Mutex
	lastActivity time.Time
	minimized    bool
	locked       bool
}

func New(idle time.Duration, now time.Time) *Tracker {
	if idle <= 0 {
		idle = DefaultIdle
	}
	return &Tracker{idle: idle, lastActivity: now}
}

// Threshold returns the configured idle limit
func (t *Tracker) Threshold() time.Duration {
	return t.idle
}

// Touch records input. Ignored while minimized.
func (t *Tracker) Touch(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.minimized {
		return
	}
	t.lastActivity = now
}

// SetMinimized marks the window hidden or visible. Restoring counts as
// activity so the user is not locked out the moment they come back.
func (t *Tracker) SetMinimized(minimized bool, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.minimized = minimized
	if !minimized {
		t.lastActivity = now
	}
}

func (t *Tracker) Minimized() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.minimized
}

// Idle returns the time since the last recorded input
func (t *Tracker) Idle(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return now.Sub(t.lastActivity)
}

// Check reports whether the app should lock now. Locking only happens
// while visible and not already locked. A positive result marks the
// tracker locked and resets the idle timer.
func (t *Tracker) Check(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.minimized || t.locked {
		return false
	}
	if now.Sub(t.lastActivity) < t.idle {
		return false
	}
	t.locked = true
	t.lastActivity = now
	return true
}

// Lock forces the locked state, e.g. from a "lock now" key
func (t *Tracker) Lock(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.locked = true
	t.lastActivity = now
}

// Unlock clears the locked state after a successful password check
func (t *Tracker) Unlock(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.locked = false
	t.lastActivity = now
}

func (t *Tracker) Locked() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.locked
}
