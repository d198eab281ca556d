package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/linemark/internal/domain"
	"github.com/MrSnakeDoc/linemark/internal/index"
	"github.com/MrSnakeDoc/linemark/internal/logger"
	redisstore "github.com/MrSnakeDoc/linemark/internal/store/redis"
)

// Loader reads the persisted bookmark state.
type Loader interface {
	Load(ctx context.Context) (redisstore.Snapshot, error)
}

// RedisSyncer restores persisted bookmarks into the memory index on startup
type RedisSyncer struct {
	store  Loader
	index  *index.MemoryIndex
	logger logger.Logger
}

// NewRedisSyncer creates a new Redis syncer
func NewRedisSyncer(store Loader, idx *index.MemoryIndex, log logger.Logger) *RedisSyncer {
	return &RedisSyncer{
		store:  store,
		index:  idx,
		logger: log,
	}
}

// Sync loads the persisted state and bulk-loads it, keeping ids and orders.
// Bookmarks pointing at a directory that did not load are moved to root.
func (rs *RedisSyncer) Sync(ctx context.Context) error {
	rs.logger.Info("restoring bookmarks from redis")

	snap, err := rs.store.Load(ctx)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(snap.Directories))
	for _, d := range snap.Directories {
		known[d.ID] = true
	}

	orphans := 0
	bookmarks := make([]domain.Bookmark, len(snap.Bookmarks))
	for i, b := range snap.Bookmarks {
		if b.DirectoryID != nil && !known[*b.DirectoryID] {
			rs.logger.Warn("bookmark references unknown directory, moving to root",
				logger.String("bookmark_id", b.ID),
				logger.String("directory_id", *b.DirectoryID))
			b.DirectoryID = nil
			orphans++
		}
		bookmarks[i] = b
	}

	rs.index.BulkLoad(bookmarks, snap.Directories)

	rs.logger.Info("restored bookmarks from redis",
		logger.Int("bookmarks", len(bookmarks)),
		logger.Int("directories", len(snap.Directories)),
		logger.Int("orphans", orphans))

	return nil
}
