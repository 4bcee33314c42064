// Package ratelimit implements a fixed-window request limiter keyed by
// (service, user). Each downstream service carries its own per-minute
// ceiling so a chatty user cannot exhaust one collaborator by hammering
// another.
package ratelimit

import (
	"sync"
	"time"
)

// Service identifiers for the downstream collaborators.
const (
	ServiceDify      = "dify"
	ServiceMemory    = "memory"
	ServiceKnowledge = "trip-knowledge"
)

const (
	// Window is the fixed counting window. Counts reset at window
	// boundaries, not continuously: a burst at the end of one window
	// followed by a burst at the start of the next is permitted. This
	// is a deliberate property of fixed-window limiting, not a bug.
	Window = 60 * time.Second

	difyPerWindow      = 30
	memoryPerWindow    = 60
	knowledgePerWindow = 100
	// defaultPerWindow is the conservative ceiling applied to any
	// service identifier without an explicit configuration.
	defaultPerWindow = 10

	// idleExpiry is how long after the last request before a window
	// record is eligible for sweeping.
	idleExpiry = 5 * time.Minute
)

// Limiter tracks request counts per (service, user) key. Keys are
// created lazily; Sweep removes records that have gone idle so the map
// stays bounded in long-running deployments.
type Limiter struct {
	windows sync.Map // key string -> *window
	now     func() time.Time
}

// window holds the counting state for one key. Each window carries its
// own mutex so checks for different keys never contend.
type window struct {
	mu       sync.Mutex
	start    time.Time // zero until the first request
	count    int
	lastSeen time.Time
}

// New creates a Limiter with the built-in per-service ceilings.
func New() *Limiter {
	return &Limiter{now: time.Now}
}

// Allow reports whether a request for the given service and user fits in
// the current window, incrementing the count when it does. The
// check-and-increment is serialized per key, so concurrent callers can
// never overshoot the ceiling together.
func (l *Limiter) Allow(service, user string) bool {
	w := l.window(service, user)
	max := ceilingFor(service)

	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	w.lastSeen = now

	if w.start.IsZero() || now.Sub(w.start) >= Window {
		w.start = now
		w.count = 0
	}

	if w.count < max {
		w.count++
		return true
	}
	return false
}

// SecondsUntilReset returns the whole seconds remaining until the
// current window for the key expires, rounded up, or 0 when no window is
// active. Immediately after Allow returns false this is always positive,
// making it suitable for a Retry-After value.
func (l *Limiter) SecondsUntilReset(service, user string) int {
	v, ok := l.windows.Load(key(service, user))
	if !ok {
		return 0
	}
	w := v.(*window)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.start.IsZero() {
		return 0
	}
	remaining := w.start.Add(Window).Sub(l.now())
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

// Remaining returns how many requests the key has left in its current
// window, or the full ceiling when no window is active.
func (l *Limiter) Remaining(service, user string) int {
	max := ceilingFor(service)
	v, ok := l.windows.Load(key(service, user))
	if !ok {
		return max
	}
	w := v.(*window)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.start.IsZero() || l.now().Sub(w.start) >= Window {
		return max
	}
	if w.count > max {
		return 0
	}
	return max - w.count
}

// Sweep removes window records that have been idle longer than
// idleExpiry. Call periodically from a background goroutine.
func (l *Limiter) Sweep() {
	now := l.now()
	l.windows.Range(func(k, v any) bool {
		w := v.(*window)
		w.mu.Lock()
		idle := now.Sub(w.lastSeen) > idleExpiry
		w.mu.Unlock()
		if idle {
			l.windows.Delete(k)
		}
		return true
	})
}

func (l *Limiter) window(service, user string) *window {
	v, _ := l.windows.LoadOrStore(key(service, user), &window{})
	return v.(*window)
}

func key(service, user string) string {
	return service + ":" + user
}

func ceilingFor(service string) int {
	switch service {
	case ServiceDify:
		return difyPerWindow
	case ServiceMemory:
		return memoryPerWindow
	case ServiceKnowledge:
		return knowledgePerWindow
	default:
		return defaultPerWindow
	}
}
