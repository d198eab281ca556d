package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linemark/internal/domain"
	"github.com/MrSnakeDoc/linemark/internal/logger"
)

// Snapshot is the full persisted bookmark state.
type Snapshot struct {
	Bookmarks   []domain.Bookmark  `json:"bookmarks" yaml:"bookmarks"`
	Directories []domain.Directory `json:"directories" yaml:"directories"`
}

// Store persists bookmark state in Redis under two keys.
type Store struct {
	client redis.UniversalClient
	keys   Keys
	logger logger.Logger
}

// NewStore creates a new Redis store
func NewStore(client redis.UniversalClient, keyPrefix string, log logger.Logger) *Store {
	return &Store{
		client: client,
		keys:   NewKeys(keyPrefix),
		logger: log,
	}
}

// Keys returns the keys this store writes to.
func (s *Store) Keys() Keys {
	return s.keys
}

// Ping checks that Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Save overwrites both collections in a single MULTI/EXEC.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	bookmarks := snap.Bookmarks
	if bookmarks == nil {
		bookmarks = []domain.Bookmark{}
	}
	directories := snap.Directories
	if directories == nil {
		directories = []domain.Directory{}
	}

	bData, err := json.Marshal(bookmarks)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmarks: %w", err)
	}
	dData, err := json.Marshal(directories)
	if err != nil {
		return fmt.Errorf("failed to marshal directories: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.keys.Bookmarks, bData, 0)
		pipe.Set(ctx, s.keys.Directories, dData, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save bookmarks: %w", err)
	}
	return nil
}

// Load reads both collections. A key that is missing loads as empty; a key
// that holds malformed JSON is logged and loads as empty without affecting
// the other key. Invalid records are logged and skipped.
// Only Redis errors are returned.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	dData, err := s.get(ctx, s.keys.Directories)
	if err != nil {
		return Snapshot{}, err
	}
	if dData != nil {
		dirs, skipped, err := DecodeDirectories(dData)
		s.logDecode(s.keys.Directories, skipped, err)
		snap.Directories = dirs
	}

	bData, err := s.get(ctx, s.keys.Bookmarks)
	if err != nil {
		return Snapshot{}, err
	}
	if bData != nil {
		marks, skipped, err := DecodeBookmarks(bData)
		s.logDecode(s.keys.Bookmarks, skipped, err)
		snap.Bookmarks = marks
	}

	return snap, nil
}

// Delete removes both keys.
func (s *Store) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.keys.Bookmarks, s.keys.Directories).Err(); err != nil {
		return fmt.Errorf("failed to delete bookmark keys: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) logDecode(key string, skipped []RecordError, err error) {
	if err != nil {
		s.logger.Error("ignoring malformed persisted collection",
			logger.String("key", key),
			logger.Error(err))
		return
	}
	for _, rec := range skipped {
		s.logger.Warn("skipping invalid persisted record",
			logger.String("key", key),
			logger.Int("index", rec.Index),
			logger.Error(rec.Err))
	}
}
