// Package retry waits out transient failures with capped exponential
// backoff. It runs at startup only; request handlers fail fast instead.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"reviewhub/pkg/config"
)

// ErrExhausted wraps the last error once every attempt has failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy describes how often and how patiently to retry.
type Policy struct {
	Attempts int           // total calls, first one included
	Base     time.Duration // wait before the second call
	Cap      time.Duration // upper bound on any single wait
	Factor   float64       // growth of the wait per attempt
	Jitter   float64       // extra random wait, as a fraction of the wait
}

// DBStartupPolicy waits up to roughly a minute for the database to accept
// connections. DB_STARTUP_ATTEMPTS overrides the attempt count.
func DBStartupPolicy() Policy {
	return Policy{
		Attempts: max(1, config.GetEnvInt("DB_STARTUP_ATTEMPTS", 10)),
		Base:     500 * time.Millisecond,
		Cap:      10 * time.Second,
		Factor:   2,
		Jitter:   0.1,
	}
}

// wait returns the pause after the given failed attempt, counted from 1.
func (p Policy) wait(attempt int) time.Duration {
	d := float64(p.Base)
	for i := 1; i < attempt; i++ {
		d *= p.Factor
		if d >= float64(p.Cap) {
			d = float64(p.Cap)
			break
		}
	}
	return withJitter(time.Duration(d), p.Jitter)
}

// Do calls fn until it succeeds, fails permanently or the policy runs out.
// Permanent errors and context cancellation are returned unwrapped.
func Do[T any](ctx context.Context, p Policy, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 1; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				slog.Info("retry succeeded", slog.String("op", op), slog.Int("attempt", attempt))
			}
			return v, nil
		}
		if !IsTransient(err) {
			return zero, err
		}
		if attempt >= p.Attempts {
			return zero, fmt.Errorf("%s: %w after %d attempts: %w", op, ErrExhausted, attempt, err)
		}

		pause := p.wait(attempt)
		slog.Warn("transient failure, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Duration("pause", pause),
			slog.Any("error", err))

		t := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, ctx.Err()
		case <-t.C:
		}
	}
}

// sqlstate 57P03: the server is starting up or shutting down
const pgCannotConnectNow = "57P03"

// IsTransient reports whether err looks like a dependency that is not up
// yet: refused or reset connections, network timeouts, or Postgres still
// starting. Context errors are never transient.
func IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ETIMEDOUT), errors.Is(err, syscall.ENETUNREACH):
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCannotConnectNow
}

func withJitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 || d <= 0 {
		return d
	}
	fraction = min(fraction, 1)
	// #nosec G404 -- backoff jitter needs no cryptographic randomness
	return d + time.Duration(rand.Float64()*fraction*float64(d))
}
