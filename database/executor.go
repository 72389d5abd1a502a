package database

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ConnectionManager is the slice of Manager the Executor depends on.
// Tests inject a fake so the retry loop runs without a live store.
type ConnectionManager interface {
	Ready(ctx context.Context) error
	ForceReconnect(ctx context.Context) error
}

// Executor wraps a single store operation with bounded retries and
// exponential backoff. It is the uniform resilience boundary between
// business logic and the network-dependent store: every repository
// operation runs through Do.
type Executor struct {
	conn         ConnectionManager
	maxRetries   int
	initialDelay time.Duration
	logger       *zap.Logger

	// sleep is swapped for a recorder in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor builds an Executor. maxRetries is the number of retries
// after the first attempt and is clamped to 3..5; initialDelay defaults
// to one second and doubles on each retry.
func NewExecutor(conn ConnectionManager, maxRetries int, initialDelay time.Duration, logger *zap.Logger) *Executor {
	if maxRetries < 3 {
		maxRetries = 3
	}
	if maxRetries > 5 {
		maxRetries = 5
	}
	if initialDelay <= 0 {
		initialDelay = time.Second
	}
	return &Executor{
		conn:         conn,
		maxRetries:   maxRetries,
		initialDelay: initialDelay,
		logger:       logger,
		sleep:        sleepContext,
	}
}

// Do runs fn, retrying connection-shaped failures with doubling backoff
// until the retry budget is spent. The connection is verified before
// each attempt. Non-retryable errors (not found, validation, conflict,
// invalid id) surface immediately; after exhaustion the last observed
// error is returned, never swallowed.
func (e *Executor) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	delay := e.initialDelay
	var lastErr error

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			e.logger.Warn("retrying store operation",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", delay),
				zap.Error(lastErr))
			if err := e.sleep(ctx, delay); err != nil {
				return err
			}
			delay *= 2
		}

		if err := e.conn.Ready(ctx); err != nil {
			lastErr = err
			continue
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err

		if needsReconnect(err) {
			if rerr := e.conn.ForceReconnect(ctx); rerr != nil {
				e.logger.Warn("forced reconnect failed",
					zap.String("op", op), zap.Error(rerr))
			}
		}
	}
	return lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
