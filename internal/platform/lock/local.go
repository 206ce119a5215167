package lock

import (
	"context"
	"sync"
	"time"
)

// Local is an in-process Locker for single-instance deployments.
type Local struct {
	mu   sync.Mutex
	held map[string]localEntry
	now  func() time.Time
	seq  uint64
}

type localEntry struct {
	id        uint64
	expiresAt time.Time
}

func NewLocal() *Local {
	return &Local{held: map[string]localEntry{}, now: time.Now}
}

func (l *Local) Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if entry, ok := l.held[key]; ok && (entry.expiresAt.IsZero() || now.Before(entry.expiresAt)) {
		return nil, ErrHeld
	}
	l.seq++
	entry := localEntry{id: l.seq}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	l.held[key] = entry

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if current, ok := l.held[key]; ok && current.id == entry.id {
			delete(l.held, key)
		}
		return nil
	}, nil
}
