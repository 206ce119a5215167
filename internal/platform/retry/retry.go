package retry

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	goretry "github.com/sethvargo/go-retry"
)

// Policy bounds how often a transient failure is retried.
type Policy struct {
	MaxRetries uint64
	Base       time.Duration
}

// Do runs fn, retrying with exponential backoff while it fails with a
// transient error. Other errors are returned immediately.
func Do(ctx context.Context, policy Policy, fn func(context.Context) error) error {
	if policy.MaxRetries == 0 {
		return fn(ctx)
	}
	base := policy.Base
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	backoff := goretry.WithMaxRetries(policy.MaxRetries, goretry.NewExponential(base))
	return goretry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && IsTransient(err) {
			return goretry.RetryableError(err)
		}
		return err
	})
}

// IsTransient reports whether err is a connection or contention failure that
// may succeed on a later attempt. Context cancellation never is.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.TooManyConnections,
			pgerrcode.AdminShutdown, pgerrcode.CrashShutdown, pgerrcode.CannotConnectNow:
			return true
		}
		return pgerrcode.IsConnectionException(pgErr.Code)
	}
	if pgconn.SafeToRetry(err) {
		return true
	}
	var transient interface{ Temporary() bool }
	if errors.As(err, &transient) {
		return transient.Temporary()
	}
	return false
}
