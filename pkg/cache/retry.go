package cache

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// transientError marks a backend failure that may succeed when repeated.
type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

// classifyRedis marks network failures as transient. redis.Nil (a miss)
// and command errors are returned as they are.
func classifyRedis(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return transientError{err}
	}
	return err
}

// backoff repeats transient failures with a doubling delay.
type backoff struct {
	attempts int
	delay    time.Duration
}

var defaultBackoff = backoff{attempts: 3, delay: 100 * time.Millisecond}

// do runs fn until it succeeds, returns a non-transient error, or the
// attempts run out. The last error is returned with its transient mark
// removed.
func (b backoff) do(ctx context.Context, fn func() error) error {
	delay := b.delay
	for i := 1; ; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		var t transientError
		if !errors.As(err, &t) {
			return err
		}
		if i >= b.attempts {
			return t.err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
}
