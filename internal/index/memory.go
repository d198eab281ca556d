package index

import (
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/linemark/internal/domain"
	"github.com/MrSnakeDoc/linemark/internal/logger"
)

// ErrBookmarkExists is returned when a bookmark already marks the same
// file and line. It is a conflict, not a failure: nothing was changed.
var ErrBookmarkExists = errors.New("bookmark already exists")

// NewBookmark carries the resolved input for CreateBookmark.
type NewBookmark struct {
	FilePath    string
	LineNumber  int
	LineText    string
	FullText    string
	CustomName  string  // empty = no custom name
	DirectoryID *string // nil = root level
}

// MemoryIndex is the in-memory bookmark store and the single source of truth.
//
// Every mutation holds the write lock for its whole read-compute-write
// sequence, then fires one change signal after the lock is released.
// Operations that reference an unknown id are silent no-ops.
type MemoryIndex struct {
	mu          sync.RWMutex
	bookmarks   *orderedSet[domain.Bookmark]
	directories *orderedSet[domain.Directory]
	lastChange  time.Time
	newDirID    func() string
	changes     *broadcaster
}

// Option customises a MemoryIndex.
type Option func(*MemoryIndex)

// WithDirectoryIDs overrides the directory id generator.
func WithDirectoryIDs(fn func() string) Option {
	return func(idx *MemoryIndex) { idx.newDirID = fn }
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex(log logger.Logger, opts ...Option) *MemoryIndex {
	idx := &MemoryIndex{
		bookmarks: newOrderedSet(
			func(b *domain.Bookmark) string { return b.ID },
			func(b *domain.Bookmark) **float64 { return &b.Order },
		),
		directories: newOrderedSet(
			func(d *domain.Directory) string { return d.ID },
			func(d *domain.Directory) **float64 { return &d.Order },
		),
		newDirID: NewDirectoryID,
		changes:  &broadcaster{logger: log},
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// NewDirectoryID returns a time-ordered directory id (UUIDv7).
func NewDirectoryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "dir_" + id.String()
}

// Subscribe registers fn for change signals and returns its cancel func.
func (idx *MemoryIndex) Subscribe(fn Listener) func() {
	return idx.changes.subscribe(fn)
}

// mutate runs fn under the write lock and signals listeners if it reports
// a change.
func (idx *MemoryIndex) mutate(fn func() bool) {
	idx.mu.Lock()
	changed := fn()
	if changed {
		idx.lastChange = time.Now()
	}
	idx.mu.Unlock()

	if changed {
		idx.changes.fire()
	}
}

// ─────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────

// ListBookmarks returns all bookmarks sorted by order, ties by insertion.
func (idx *MemoryIndex) ListBookmarks() []domain.Bookmark {
	return idx.filterBookmarks(func(domain.Bookmark) bool { return true })
}

// BookmarksIn returns the bookmarks whose directory is exactly dirID.
// A nil dirID selects root-level bookmarks.
func (idx *MemoryIndex) BookmarksIn(dirID *string) []domain.Bookmark {
	return idx.filterBookmarks(func(b domain.Bookmark) bool { return b.InDirectory(dirID) })
}

// BookmarksInFile returns the bookmarks placed in filePath.
func (idx *MemoryIndex) BookmarksInFile(filePath string) []domain.Bookmark {
	return idx.filterBookmarks(func(b domain.Bookmark) bool { return b.FilePath == filePath })
}

func (idx *MemoryIndex) filterBookmarks(keep func(domain.Bookmark) bool) []domain.Bookmark {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	sorted := idx.bookmarks.sorted()
	out := make([]domain.Bookmark, 0, len(sorted))
	for _, e := range sorted {
		if keep(e.item) {
			out = append(out, e.item.Clone())
		}
	}
	return out
}

// ListDirectories returns all directories sorted by order.
func (idx *MemoryIndex) ListDirectories() []domain.Directory {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	sorted := idx.directories.sorted()
	out := make([]domain.Directory, len(sorted))
	for i, e := range sorted {
		out[i] = e.item.Clone()
	}
	return out
}

// Bookmark returns the bookmark with id.
func (idx *MemoryIndex) Bookmark(id string) (domain.Bookmark, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	b, ok := idx.bookmarks.get(id)
	if !ok {
		return domain.Bookmark{}, false
	}
	return b.Clone(), true
}

// Directory returns the directory with id.
func (idx *MemoryIndex) Directory(id string) (domain.Directory, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	d, ok := idx.directories.get(id)
	if !ok {
		return domain.Directory{}, false
	}
	return d.Clone(), true
}

// Count returns the number of bookmarks and directories.
func (idx *MemoryIndex) Count() (bookmarks, directories int) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.bookmarks.len(), idx.directories.len()
}

// LastChange returns the time of the last committed mutation.
func (idx *MemoryIndex) LastChange() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastChange
}

// MinOrderGap returns the narrowest gap between adjacent order keys in
// either collection, +Inf when there is nothing to compare.
func (idx *MemoryIndex) MinOrderGap() float64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return math.Min(idx.bookmarks.minGap(), idx.directories.minGap())
}

// ─────────────────────────────────────────────────────────────────
// Directory mutations
// ─────────────────────────────────────────────────────────────────

// CreateDirectory adds a directory after the last one. An empty name is a
// cancelled prompt: nothing happens and ok is false.
func (idx *MemoryIndex) CreateDirectory(name string) (dir domain.Directory, ok bool) {
	if name == "" {
		return domain.Directory{}, false
	}

	idx.mutate(func() bool {
		dir = domain.Directory{
			ID:    idx.newDirID(),
			Name:  name,
			Order: domain.Ptr(idx.directories.nextOrder()),
		}
		idx.directories.put(dir.ID, dir)
		return true
	})
	return dir.Clone(), true
}

// RenameDirectory sets the name of id. A nil name is a cancelled prompt.
// The empty string is a valid name.
func (idx *MemoryIndex) RenameDirectory(id string, name *string) {
	if name == nil {
		return
	}
	idx.mutate(func() bool {
		d, ok := idx.directories.get(id)
		if !ok {
			return false
		}
		d.Name = *name
		return true
	})
}

// RemoveDirectory deletes id and moves its bookmarks to the root level.
func (idx *MemoryIndex) RemoveDirectory(id string) {
	idx.mutate(func() bool {
		if !idx.directories.remove(id) {
			return false
		}
		for _, e := range idx.bookmarks.items {
			if e.item.DirectoryID != nil && *e.item.DirectoryID == id {
				e.item.DirectoryID = nil
			}
		}
		return true
	})
}

// ReorderDirectories moves srcID next to dstID.
func (idx *MemoryIndex) ReorderDirectories(srcID, dstID string) {
	idx.mutate(func() bool {
		key, ok := idx.directories.reorderKey(srcID, dstID)
		if !ok {
			return false
		}
		d, _ := idx.directories.get(srcID)
		d.Order = domain.Ptr(key)
		return true
	})
}

// ─────────────────────────────────────────────────────────────────
// Bookmark mutations
// ─────────────────────────────────────────────────────────────────

// CreateBookmark marks a line. It returns ErrBookmarkExists, and changes
// nothing, if the same file and line is already marked.
func (idx *MemoryIndex) CreateBookmark(in NewBookmark) (domain.Bookmark, error) {
	var (
		created domain.Bookmark
		err     error
	)

	idx.mutate(func() bool {
		id := domain.BookmarkID(in.FilePath, in.LineNumber)
		if _, exists := idx.bookmarks.get(id); exists || idx.markedLocked(in.FilePath, in.LineNumber) {
			err = ErrBookmarkExists
			return false
		}

		created = domain.Bookmark{
			ID:          id,
			FilePath:    in.FilePath,
			FileName:    domain.FileName(in.FilePath),
			LineNumber:  in.LineNumber,
			LineText:    strings.TrimSpace(in.LineText),
			FullText:    in.FullText,
			Order:       domain.Ptr(idx.bookmarks.nextOrder()),
			DirectoryID: in.DirectoryID,
		}
		if in.CustomName != "" {
			created.CustomName = domain.Ptr(in.CustomName)
		}
		created = created.Clone()
		idx.bookmarks.put(id, created)
		return true
	})

	if err != nil {
		return domain.Bookmark{}, err
	}
	return created.Clone(), nil
}

// markedLocked reports whether any bookmark sits at filePath:line.
// Loaded bookmarks may carry ids in another format, so fields are compared.
func (idx *MemoryIndex) markedLocked(filePath string, line int) bool {
	for _, e := range idx.bookmarks.items {
		if e.item.FilePath == filePath && e.item.LineNumber == line {
			return true
		}
	}
	return false
}

// RemoveBookmark deletes id.
func (idx *MemoryIndex) RemoveBookmark(id string) {
	idx.mutate(func() bool {
		return idx.bookmarks.remove(id)
	})
}

// RenameBookmark sets the custom name of id. A nil name is a cancelled
// prompt; the empty string clears the custom name.
func (idx *MemoryIndex) RenameBookmark(id string, name *string) {
	if name == nil {
		return
	}
	idx.mutate(func() bool {
		b, ok := idx.bookmarks.get(id)
		if !ok {
			return false
		}
		if *name == "" {
			b.CustomName = nil
		} else {
			b.CustomName = domain.Ptr(*name)
		}
		return true
	})
}

// MoveToDirectory assigns id to dirID (nil = root). The target directory is
// not checked. Listeners are signalled even when the value is unchanged.
func (idx *MemoryIndex) MoveToDirectory(id string, dirID *string) {
	idx.mutate(func() bool {
		b, ok := idx.bookmarks.get(id)
		if !ok {
			return false
		}
		if dirID == nil {
			b.DirectoryID = nil
		} else {
			b.DirectoryID = domain.Ptr(*dirID)
		}
		return true
	})
}

// ReorderBookmarks moves srcID next to dstID across the full bookmark list.
func (idx *MemoryIndex) ReorderBookmarks(srcID, dstID string) {
	idx.mutate(func() bool {
		key, ok := idx.bookmarks.reorderKey(srcID, dstID)
		if !ok {
			return false
		}
		b, _ := idx.bookmarks.get(srcID)
		b.Order = domain.Ptr(key)
		return true
	})
}

// ─────────────────────────────────────────────────────────────────
// Whole-store operations
// ─────────────────────────────────────────────────────────────────

// ClearAll removes every bookmark and directory.
func (idx *MemoryIndex) ClearAll() {
	idx.mutate(func() bool {
		idx.bookmarks.clear()
		idx.directories.clear()
		return true
	})
}

// BulkLoad inserts records exactly as given, keeping their ids and orders.
// It skips duplicate detection and order assignment and does not signal
// listeners. It is meant for restoring persisted state at startup.
func (idx *MemoryIndex) BulkLoad(bookmarks []domain.Bookmark, directories []domain.Directory) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, d := range directories {
		idx.directories.put(d.ID, d.Clone())
	}
	for _, b := range bookmarks {
		idx.bookmarks.put(b.ID, b.Clone())
	}
}

// Renumber rewrites every order key to 0..n-1, keeping the current sort
// order. It reports whether anything changed.
func (idx *MemoryIndex) Renumber() bool {
	var changed bool
	idx.mutate(func() bool {
		b := idx.bookmarks.renumber()
		d := idx.directories.renumber()
		changed = b || d
		return changed
	})
	return changed
}
