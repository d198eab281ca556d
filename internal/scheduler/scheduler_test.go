package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linemark/internal/domain"
	"github.com/MrSnakeDoc/linemark/internal/index"
	"github.com/MrSnakeDoc/linemark/internal/logger"
	redisstore "github.com/MrSnakeDoc/linemark/internal/store/redis"
)

func newRedisStore(t *testing.T) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisstore.NewStore(client, "test", logger.NewNop()), mr
}

// recordingStore counts saves and can be told to fail.
type recordingStore struct {
	mu    sync.Mutex
	saves []redisstore.Snapshot
	err   error
}

func (s *recordingStore) Save(_ context.Context, snap redisstore.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saves = append(s.saves, snap)
	return nil
}

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

func (s *recordingStore) last() redisstore.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves[len(s.saves)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestRedisSyncer_Sync(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Set("test:directories", `[{"id":"dir_1","name":"Work","order":0}]`)
	mr.Set("test:bookmarks", `[
		{"id":"/a.go:1","filePath":"/a.go","fileName":"a.go","lineNumber":1,"lineText":"a","fullText":"","order":2,"directoryId":"dir_1"},
		{"id":"/a.go:2","filePath":"/a.go","fileName":"a.go","lineNumber":2,"lineText":"b","fullText":"","order":0.5,"directoryId":"dir_gone"},
		{"id":"/a.go:3","filePath":"/a.go","fileName":"a.go","lineNumber":3,"fullText":""}
	]`)

	idx := index.NewMemoryIndex(logger.NewNop())
	signals := 0
	idx.Subscribe(func() { signals++ })

	if err := NewRedisSyncer(store, idx, logger.NewNop()).Sync(context.Background()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	all := idx.ListBookmarks()
	if len(all) != 2 {
		t.Fatalf("Expected 2 bookmarks after sync, got %d", len(all))
	}
	if all[0].ID != "/a.go:2" || all[1].ID != "/a.go:1" {
		t.Errorf("Stored orders not kept: %s, %s", all[0].ID, all[1].ID)
	}
	if all[0].DirectoryID != nil {
		t.Errorf("Orphaned bookmark should be at root, got %q", *all[0].DirectoryID)
	}
	if all[1].DirectoryID == nil || *all[1].DirectoryID != "dir_1" {
		t.Error("Bookmark in a known directory lost its directory")
	}
	if _, ok := idx.Directory("dir_1"); !ok {
		t.Error("Directory not restored")
	}
	if signals != 0 {
		t.Errorf("Sync should not signal listeners, got %d signals", signals)
	}
}

func TestRedisSyncer_SyncError(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.SetError("LOADING")

	idx := index.NewMemoryIndex(logger.NewNop())
	if err := NewRedisSyncer(store, idx, logger.NewNop()).Sync(context.Background()); err == nil {
		t.Fatal("Expected error when redis fails")
	}
	if n, _ := idx.Count(); n != 0 {
		t.Errorf("Index should stay empty, got %d bookmarks", n)
	}
}

func TestSaver_SavesAfterMutation(t *testing.T) {
	idx := index.NewMemoryIndex(logger.NewNop())
	store := &recordingStore{}
	saver := NewSaver(store, idx, logger.NewNop(), time.Second)

	ctx := context.Background()
	if err := saver.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer saver.Stop(ctx)

	if _, err := idx.CreateBookmark(index.NewBookmark{FilePath: "/a.go", LineNumber: 3, LineText: "x"}); err != nil {
		t.Fatalf("CreateBookmark failed: %v", err)
	}

	waitFor(t, func() bool { return store.count() > 0 })

	snap := store.last()
	if len(snap.Bookmarks) != 1 || snap.Bookmarks[0].ID != "/a.go:3" {
		t.Errorf("Unexpected saved snapshot: %+v", snap)
	}
	if st := saver.Status(); st.LastSave.IsZero() || st.LastError != "" {
		t.Errorf("Unexpected status after save: %+v", st)
	}
}

// gatedStore blocks its first save until released.
type gatedStore struct {
	recordingStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *gatedStore) Save(ctx context.Context, snap redisstore.Snapshot) error {
	s.once.Do(func() {
		close(s.entered)
		<-s.release
	})
	return s.recordingStore.Save(ctx, snap)
}

func TestSaver_CoalescesBursts(t *testing.T) {
	idx := index.NewMemoryIndex(logger.NewNop())
	store := &gatedStore{entered: make(chan struct{}), release: make(chan struct{})}
	saver := NewSaver(store, idx, logger.NewNop(), time.Second)

	ctx := context.Background()
	if err := saver.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	idx.CreateDirectory("d")
	<-store.entered

	// The first save is in flight; this burst must collapse into one more.
	for i := 0; i < 19; i++ {
		idx.CreateDirectory("d")
	}
	close(store.release)

	waitFor(t, func() bool { return store.count() == 2 })
	saver.Stop(ctx)

	if store.count() != 2 {
		t.Fatalf("Expected 2 saves, got %d", store.count())
	}
	if got := len(store.last().Directories); got != 20 {
		t.Errorf("Saved snapshot should hold the latest state, got %d directories", got)
	}
}

func TestSaver_StopFlushesPending(t *testing.T) {
	idx := index.NewMemoryIndex(logger.NewNop())
	store := &gatedStore{entered: make(chan struct{}), release: make(chan struct{})}
	saver := NewSaver(store, idx, logger.NewNop(), time.Second)

	ctx := context.Background()
	if err := saver.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	idx.CreateDirectory("a")
	<-store.entered
	idx.CreateDirectory("b")

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(store.release)
	}()
	saver.Stop(ctx)

	if store.count() != 2 {
		t.Fatalf("Expected the pending change to be flushed, got %d saves", store.count())
	}
	if got := len(store.last().Directories); got != 2 {
		t.Errorf("Flushed snapshot has %d directories, want 2", got)
	}
}

func TestSaver_FailureKeepsMemory(t *testing.T) {
	idx := index.NewMemoryIndex(logger.NewNop())
	store := &recordingStore{err: errors.New("connection refused")}
	saver := NewSaver(store, idx, logger.NewNop(), time.Second)

	idx.CreateDirectory("Work")

	if err := saver.Save(context.Background()); err == nil {
		t.Fatal("Expected save error")
	}
	st := saver.Status()
	if st.Failures != 1 || st.LastError == "" {
		t.Errorf("Failure not recorded: %+v", st)
	}
	if _, n := idx.Count(); n != 1 {
		t.Errorf("Memory state should be kept, got %d directories", n)
	}

	store.err = nil
	if err := saver.Save(context.Background()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if st := saver.Status(); st.Failures != 0 || st.LastError != "" {
		t.Errorf("Status not reset after success: %+v", st)
	}
}

func TestSaver_RoundTripThroughRedis(t *testing.T) {
	store, _ := newRedisStore(t)
	idx := index.NewMemoryIndex(logger.NewNop())

	dir, _ := idx.CreateDirectory("Work")
	b, err := idx.CreateBookmark(index.NewBookmark{FilePath: "/a.go", LineNumber: 1, LineText: "one", CustomName: "first"})
	if err != nil {
		t.Fatalf("CreateBookmark failed: %v", err)
	}
	idx.MoveToDirectory(b.ID, &dir.ID)
	if _, err := idx.CreateBookmark(index.NewBookmark{FilePath: "/a.go", LineNumber: 2, LineText: "two"}); err != nil {
		t.Fatalf("CreateBookmark failed: %v", err)
	}

	ctx := context.Background()
	if err := NewSaver(store, idx, logger.NewNop(), time.Second).Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	restored := index.NewMemoryIndex(logger.NewNop())
	if err := NewRedisSyncer(store, restored, logger.NewNop()).Sync(ctx); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	want, got := idx.ListBookmarks(), restored.ListBookmarks()
	if len(got) != len(want) {
		t.Fatalf("Expected %d bookmarks, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || domain.SortKey(got[i].Order) != domain.SortKey(want[i].Order) {
			t.Errorf("bookmark[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	if got[0].DirectoryID == nil || *got[0].DirectoryID != dir.ID {
		t.Error("Directory membership lost in round trip")
	}
	if got[0].CustomName == nil || *got[0].CustomName != "first" {
		t.Error("Custom name lost in round trip")
	}
}

func TestRenumberer_Check(t *testing.T) {
	idx := index.NewMemoryIndex(logger.NewNop())
	for i := 1; i <= 3; i++ {
		if _, err := idx.CreateBookmark(index.NewBookmark{FilePath: "/a.go", LineNumber: i}); err != nil {
			t.Fatalf("CreateBookmark failed: %v", err)
		}
	}

	r := NewRenumberer(idx, logger.NewNop(), time.Hour, 0.01)
	if r.Check() {
		t.Fatal("Healthy keys should not be renumbered")
	}

	// Bounce the last two around until their gap collapses.
	for i := 0; i < 10; i++ {
		idx.ReorderBookmarks("/a.go:3", "/a.go:2")
		idx.ReorderBookmarks("/a.go:2", "/a.go:3")
	}
	if idx.MinOrderGap() >= 0.01 {
		t.Fatalf("Expected a narrow gap, got %v", idx.MinOrderGap())
	}

	before := idx.ListBookmarks()
	if !r.Check() {
		t.Fatal("Expected renumber")
	}
	after := idx.ListBookmarks()
	for i := range before {
		if before[i].ID != after[i].ID {
			t.Errorf("Renumber changed order at %d: %s vs %s", i, before[i].ID, after[i].ID)
		}
	}
	if idx.MinOrderGap() != 1 {
		t.Errorf("Expected unit gaps after renumber, got %v", idx.MinOrderGap())
	}
}
