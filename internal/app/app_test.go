package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linemark/internal/config"
	"github.com/MrSnakeDoc/linemark/internal/index"
	"github.com/MrSnakeDoc/linemark/internal/logger"
)

func testConfig(mr *miniredis.Miniredis) *config.Config {
	cfg := config.Load()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.RedisAddr = mr.Addr()
	cfg.RedisConnectTimeout = time.Second
	cfg.RedisRetryInterval = 10 * time.Millisecond
	cfg.RedisMaxWait = 50 * time.Millisecond
	cfg.RedisPingTimeout = 200 * time.Millisecond
	cfg.KeyPrefix = "apptest"
	cfg.RenumberInterval = 0
	return cfg
}

func TestRunRestoresAndFlushes(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.Set("apptest:directories", `[{"id":"dir_1","name":"Work","order":0}]`)
	mr.Set("apptest:bookmarks", `[{"id":"/a.go:1","filePath":"/a.go","fileName":"a.go","lineNumber":1,"lineText":"a","fullText":"","order":5,"directoryId":"dir_1"}]`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := New(ctx, testConfig(mr), logger.NewNop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, a.ready.Load, 2*time.Second, 5*time.Millisecond)

	restored, ok := a.memIndex.Bookmark("/a.go:1")
	require.True(t, ok)
	require.NotNil(t, restored.Order)
	assert.Equal(t, 5.0, *restored.Order)

	_, err = a.memIndex.CreateBookmark(index.NewBookmark{FilePath: "/b.go", LineNumber: 2, LineText: "b"})
	require.NoError(t, err)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	raw, err := mr.Get("apptest:bookmarks")
	require.NoError(t, err)
	assert.Contains(t, raw, `"/b.go:2"`)
	assert.Contains(t, raw, `"order":6`)
}

func TestRunKeepsStoredStateWhenRestoreFails(t *testing.T) {
	mr := miniredis.RunT(t)
	stored := `[{"id":"/a.go:1","filePath":"/a.go","fileName":"a.go","lineNumber":1,"lineText":"a","fullText":"","order":0}]`
	mr.Set("apptest:bookmarks", stored)
	mr.Set("apptest:directories", `[]`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := New(ctx, testConfig(mr), logger.NewNop())
	require.NoError(t, err)

	mr.SetError("ERR injected read failure")
	err = a.Run(ctx)
	require.Error(t, err)
	assert.ErrorContains(t, err, "injected read failure")
	assert.False(t, a.ready.Load())
	mr.SetError("")

	// A change after the failed start must not reach Redis.
	_, err = a.memIndex.CreateBookmark(index.NewBookmark{FilePath: "/b.go", LineNumber: 3, LineText: "b"})
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	raw, err := mr.Get("apptest:bookmarks")
	require.NoError(t, err)
	assert.JSONEq(t, stored, raw)
}

func TestNewFailsWithoutRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	cfg := testConfig(mr)
	mr.Close()
	cfg.RedisConnectTimeout = 200 * time.Millisecond

	_, err = New(context.Background(), cfg, logger.NewNop())
	assert.Error(t, err)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(mr)
	cfg.KeyPrefix = ""

	_, err := New(context.Background(), cfg, logger.NewNop())
	assert.Error(t, err)
}
