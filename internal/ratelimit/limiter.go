// Package ratelimit implements a per-client sliding-window admission gate.
// State is process-local and volatile; nothing survives a restart.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	mu       sync.Mutex
	stamps   []time.Time
	lastSeen time.Time
}

// Limiter tracks request timestamps per client identity over a trailing
// window. The check-then-append for one identity runs under that identity's
// own mutex, so two concurrent requests at the boundary can never both be
// admitted past the limit, and distinct identities do not contend.
type Limiter struct {
	mu      sync.RWMutex
	clients map[string]*window

	limit      int
	windowSize time.Duration

	now func() time.Time
}

func New(limit int, windowSize time.Duration) *Limiter {
	return &Limiter{
		clients:    make(map[string]*window),
		limit:      limit,
		windowSize: windowSize,
		now:        time.Now,
	}
}

// Limit returns the configured maximum number of requests per window.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the sliding window duration.
func (l *Limiter) Window() time.Duration { return l.windowSize }

// Allow records an admission attempt for identity. It returns true when the
// request is admitted. On rejection it returns the duration after which the
// oldest in-window request expires, suitable for a Retry-After header.
func (l *Limiter) Allow(identity string) (bool, time.Duration) {
	w := l.getWindow(identity)
	now := l.now()
	cutoff := now.Add(-l.windowSize)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastSeen = now

	// Drop timestamps that have slid out of the window.
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[i:]...)
	}

	if len(w.stamps) >= l.limit {
		retryAfter := l.windowSize - now.Sub(w.stamps[0])
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, retryAfter
	}

	w.stamps = append(w.stamps, now)
	return true, 0
}

func (l *Limiter) getWindow(identity string) *window {
	l.mu.RLock()
	w, ok := l.clients[identity]
	l.mu.RUnlock()
	if ok {
		return w
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok = l.clients[identity]; ok {
		return w
	}
	w = &window{}
	l.clients[identity] = w
	return w
}

// StartEviction launches a background goroutine that removes identities idle
// for longer than three windows, bounding memory for churny client sets. It
// stops when ctx is cancelled.
func (l *Limiter) StartEviction(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.evictIdle()
			}
		}
	}()
}

func (l *Limiter) evictIdle() {
	cutoff := l.now().Add(-3 * l.windowSize)
	l.mu.Lock()
	defer l.mu.Unlock()
	for identity, w := range l.clients {
		w.mu.Lock()
		idle := w.lastSeen.Before(cutoff)
		w.mu.Unlock()
		if idle {
			delete(l.clients, identity)
		}
	}
}

func (l *Limiter) size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.clients)
}
