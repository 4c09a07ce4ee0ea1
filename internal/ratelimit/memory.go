package ratelimit

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = time.Minute

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is the in-process counterpart of RedisLimiter: a fixed
// window per rule and client that starts on the first request and admits
// at most Limit requests until it expires.
type MemoryLimiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, rule Rule, key string) (Result, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweep(now)
		l.lastSweep = now
	}

	id := rule.Name + ":" + key
	w, ok := l.windows[id]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(rule.Window)}
		l.windows[id] = w
	}
	w.count++

	if w.count > rule.Limit {
		return Result{Allowed: false, RetryAfter: w.resetAt.Sub(now)}, nil
	}
	return Result{Allowed: true, Remaining: rule.Limit - w.count}, nil
}

// sweep drops expired windows.
func (l *MemoryLimiter) sweep(now time.Time) {
	for id, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, id)
		}
	}
}
