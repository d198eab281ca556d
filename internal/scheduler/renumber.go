package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linemark/internal/index"
	"github.com/MrSnakeDoc/linemark/internal/logger"
)

// DefaultMinOrderGap is the narrowest order gap tolerated before renumbering.
// float64 keeps about 15 significant digits, so halving a unit gap ~50 times
// exhausts it; renumbering well before that keeps midpoints distinct.
const DefaultMinOrderGap = 1e-9

// Renumberer periodically resets order keys to integers once repeated
// moves into the same gap have made it too narrow.
type Renumberer struct {
	index    *index.MemoryIndex
	logger   logger.Logger
	interval time.Duration
	minGap   float64
	stopCh   chan struct{}
}

// NewRenumberer creates a new renumberer
func NewRenumberer(idx *index.MemoryIndex, log logger.Logger, interval time.Duration, minGap float64) *Renumberer {
	if minGap <= 0 {
		minGap = DefaultMinOrderGap
	}
	return &Renumberer{
		index:    idx,
		logger:   log,
		interval: interval,
		minGap:   minGap,
		stopCh:   make(chan struct{}),
	}
}

// Start checks once, then on every interval tick.
func (r *Renumberer) Start(ctx context.Context) error {
	r.Check()

	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Check()
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the renumberer
func (r *Renumberer) Stop() {
	close(r.stopCh)
}

// Check renumbers when the narrowest gap is below the threshold and reports
// whether it did.
func (r *Renumberer) Check() bool {
	gap := r.index.MinOrderGap()
	if gap >= r.minGap {
		r.logger.Debug("order keys healthy", logger.Float64("min_gap", gap))
		return false
	}

	changed := r.index.Renumber()
	r.logger.Info("renumbered order keys",
		logger.Float64("min_gap", gap),
		logger.Float64("threshold", r.minGap),
		logger.Bool("changed", changed))
	return changed
}
