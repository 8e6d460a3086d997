package postgres

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// pruneTimeout bounds a single purge query.
const pruneTimeout = time.Minute

// PurgeStore deletes entries older than a cutoff and reports how many were
// removed. ChatLogRepository implements it.
type PurgeStore interface {
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// Pruner trims the chat log on a fixed schedule: every interval, entries
// older than the retention window are deleted. It implements the
// server.Service contract so it runs under the application lifecycle.
type Pruner struct {
	store     PurgeStore
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewPruner creates a Pruner over the given store.
//
// Precondition: store and logger must be non-nil; interval and retention
// must be positive.
func NewPruner(store PurgeStore, interval, retention time.Duration, logger *zap.Logger) *Pruner {
	return &Pruner{
		store:     store,
		interval:  interval,
		retention: retention,
		logger:    logger,
		stop:      make(chan struct{}),
	}
}

// Start runs the prune loop until Stop is called. Purge failures are logged
// and retried on the next tick.
func (p *Pruner) Start() error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.prune()
		case <-p.stop:
			return nil
		}
	}
}

// Stop terminates the prune loop. Idempotent.
func (p *Pruner) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

func (p *Pruner) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	removed, err := p.store.Purge(ctx, time.Now().Add(-p.retention))
	if err != nil {
		p.logger.Warn("pruning chat log", zap.Error(err))
		return
	}
	if removed > 0 {
		p.logger.Info("chat log pruned", zap.Int64("removed", removed))
	}
}
