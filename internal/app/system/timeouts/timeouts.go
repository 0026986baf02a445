// Package timeouts holds the deadlines DexterHub handlers put on MongoDB
// work. Pick the class by the heaviest thing the handler does:
//
//   - Ping: the /health database ping
//   - Short: loading one user, cohort, course or review record
//   - Medium: review queues, audit log pages, dashboards, single-document writes
//   - Long: reviews and grading, which decide a record, apply side effects
//     and write an audit entry in one transaction
//
// Startup applies the timeout_* config keys through Configure.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

// Config holds deadline overrides. A zero field keeps the current value.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

func defaults() Config {
	return Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}
}

var (
	mu      sync.RWMutex
	current = defaults()
)

// Configure applies the non-zero fields of cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	current.Ping = orKeep(cfg.Ping, current.Ping)
	current.Short = orKeep(cfg.Short, current.Short)
	current.Medium = orKeep(cfg.Medium, current.Medium)
	current.Long = orKeep(cfg.Long, current.Long)
}

func orKeep(d, keep time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return keep
}

// Reset restores the defaults. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults()
}

func snapshot() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func Ping() time.Duration   { return snapshot().Ping }
func Short() time.Duration  { return snapshot().Short }
func Medium() time.Duration { return snapshot().Medium }
func Long() time.Duration   { return snapshot().Long }

// WithTimeout bounds parent by timeout. When the deadline fired, the
// returned cancel logs which operation ran out of time.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "review appeal")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if log != nil && ctx.Err() == context.DeadlineExceeded {
			log.Warn("deadline exceeded",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout))
		}
		cancel()
	}
}
