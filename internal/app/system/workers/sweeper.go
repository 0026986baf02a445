// internal/app/system/workers/sweeper.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweepable drops expired in-memory state. The login limiter implements it.
type Sweepable interface {
	Sweep()
}

// Sweeper is a background worker that calls Sweep on an interval.
type Sweeper struct {
	name     string
	target   Sweepable
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSweeper creates a worker named name that sweeps target every interval.
func NewSweeper(name string, target Sweepable, logger *zap.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		name:     name,
		target:   target,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background loop.
func (w *Sweeper) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("sweeper started", zap.String("worker", w.name), zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call
// more than once.
func (w *Sweeper) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("sweeper stopped", zap.String("worker", w.name))
	})
}

func (w *Sweeper) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.target.Sweep()
		}
	}
}
