package lock

import (
	"context"
	"errors"
	"time"
)

var ErrHeld = errors.New("lock already held")

// Release gives a lock back. It is safe to call after the lock expired.
type Release func(ctx context.Context) error

// Locker grants exclusive, expiring ownership of a key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}
