package staging

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweepable is anything that can drop its expired entries.
type Sweepable interface {
	Sweep() int
}

// Sweeper periodically evicts expired entries from the registered stores.
type Sweeper struct {
	stores   map[string]Sweepable
	interval time.Duration
	log      *zap.Logger
	onSwept  func(n int)
}

func NewSweeper(interval time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		stores:   make(map[string]Sweepable),
		interval: interval,
		log:      log,
	}
}

// OnSwept installs a callback invoked after each sweep with the number of removed entries.
func (s *Sweeper) OnSwept(fn func(n int)) {
	s.onSwept = fn
}

func (s *Sweeper) Register(name string, store Sweepable) {
	s.stores[name] = store
}

func (s *Sweeper) RunOnce() int {
	total := 0
	for name, store := range s.stores {
		removed := store.Sweep()
		if removed > 0 {
			s.log.Debug("staged entries expired", zap.String("store", name), zap.Int("removed", removed))
		}
		total += removed
	}
	if s.onSwept != nil {
		s.onSwept(total)
	}
	return total
}

// Start runs the sweep loop in a goroutine until ctx is cancelled or the returned
// channel is closed.
func (s *Sweeper) Start(ctx context.Context) chan struct{} {
	stopCh := make(chan struct{})

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunOnce()
			case <-stopCh:
				s.log.Info("staging sweeper stopped")
				return
			case <-ctx.Done():
				s.log.Info("staging sweeper stopped (context done)")
				return
			}
		}
	}()

	s.log.Info("staging sweeper started", zap.Duration("interval", s.interval))
	return stopCh
}
