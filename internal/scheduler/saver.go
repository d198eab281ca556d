package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linemark/internal/index"
	"github.com/MrSnakeDoc/linemark/internal/logger"
	redisstore "github.com/MrSnakeDoc/linemark/internal/store/redis"
)

// DefaultSaveTimeout bounds a single save round-trip.
const DefaultSaveTimeout = 5 * time.Second

// Persister writes the full bookmark state.
type Persister interface {
	Save(ctx context.Context, snap redisstore.Snapshot) error
}

// SaveStatus reports the outcome of the most recent saves.
type SaveStatus struct {
	LastSave    time.Time // last successful save
	LastAttempt time.Time
	LastError   string // empty after a successful save
	Failures    int    // consecutive failures
}

// Saver mirrors the memory index to Redis after every change.
//
// The change listener only signals a one-slot trigger channel, so bursts of
// mutations coalesce into one save of the latest state and the mutating
// caller never waits on Redis. A failed save is logged and recorded in
// Status; memory stays authoritative and the next change retries.
type Saver struct {
	store   Persister
	index   *index.MemoryIndex
	logger  logger.Logger
	timeout time.Duration
	trigger chan struct{}
	stopCh  chan struct{}
	done    chan struct{}
	cancel  func()

	mu     sync.Mutex
	status SaveStatus
}

// NewSaver creates a new saver
func NewSaver(store Persister, idx *index.MemoryIndex, log logger.Logger, timeout time.Duration) *Saver {
	if timeout <= 0 {
		timeout = DefaultSaveTimeout
	}
	return &Saver{
		store:   store,
		index:   idx,
		logger:  log,
		timeout: timeout,
		trigger: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start subscribes to index changes and runs the save loop.
func (s *Saver) Start(ctx context.Context) error {
	s.cancel = s.index.Subscribe(s.notify)
	// An in-flight save finishes even when ctx is cancelled mid-write.
	saveCtx := context.WithoutCancel(ctx)

	go func() {
		defer close(s.done)
		for {
			select {
			case <-s.trigger:
				_ = s.Save(saveCtx)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop unsubscribes, waits for the loop and flushes a pending or failed save.
func (s *Saver) Stop(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
	}
	close(s.stopCh)
	<-s.done

	pending := false
	select {
	case <-s.trigger:
		pending = true
	default:
	}
	if !pending && s.Status().Failures == 0 {
		return
	}
	s.logger.Info("flushing pending bookmark save")
	_ = s.Save(ctx)
}

func (s *Saver) notify() {
	select {
	case s.trigger <- struct{}{}:
	default:
		// a save is already pending and will read the latest state
	}
}

// Save writes the current index state synchronously.
func (s *Saver) Save(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snap := redisstore.Snapshot{
		Bookmarks:   s.index.ListBookmarks(),
		Directories: s.index.ListDirectories(),
	}

	err := s.store.Save(ctx, snap)
	s.record(err)
	if err != nil {
		s.logger.Warn("failed to save bookmarks to redis, in-memory state kept",
			logger.Error(err))
		return fmt.Errorf("save bookmarks: %w", err)
	}

	s.logger.Debug("bookmarks saved to redis",
		logger.Int("bookmarks", len(snap.Bookmarks)),
		logger.Int("directories", len(snap.Directories)))
	return nil
}

func (s *Saver) record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.status.LastAttempt = now
	if err != nil {
		s.status.LastError = err.Error()
		s.status.Failures++
		return
	}
	s.status.LastSave = now
	s.status.LastError = ""
	s.status.Failures = 0
}

// Status returns the latest save outcome.
func (s *Saver) Status() SaveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}
