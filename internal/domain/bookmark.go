package domain

import (
	"fmt"
	"strings"
)

// Bookmark represents a saved reference to one line in one file.
//
// Bookmarks are snapshots: path, line and text are captured at creation
// time and are never re-synced when the file is edited or moved.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is derived from FilePath and LineNumber.
	// Example: /src/app.go:41
	ID string `json:"id" yaml:"id"`

	// FilePath is the absolute path of the marked file.
	FilePath string `json:"filePath" yaml:"filePath"`

	// FileName is the basename of FilePath.
	FileName string `json:"fileName" yaml:"fileName"`

	// LineNumber is the zero-based line index.
	LineNumber int `json:"lineNumber" yaml:"lineNumber"`

	// ─────────────────────────────
	// Snapshot
	// ─────────────────────────────

	// LineText is the trimmed text of the marked line.
	LineText string `json:"lineText" yaml:"lineText"`

	// FullText is the annotated context window around the line.
	FullText string `json:"fullText" yaml:"fullText"`

	// ─────────────────────────────
	// Organisation (mutable)
	// ─────────────────────────────

	// Order is the relative sort key among bookmarks.
	// nil sorts last.
	Order *float64 `json:"order,omitempty" yaml:"order,omitempty"`

	// CustomName overrides LineText for display.
	CustomName *string `json:"customName,omitempty" yaml:"customName,omitempty"`

	// DirectoryID is the owning directory, nil means root level.
	DirectoryID *string `json:"directoryId,omitempty" yaml:"directoryId,omitempty"`
}

// Directory is a flat, user-defined group of bookmarks.
type Directory struct {
	ID    string   `json:"id" yaml:"id"`
	Name  string   `json:"name" yaml:"name"`
	Order *float64 `json:"order,omitempty" yaml:"order,omitempty"`
}

// BookmarkID returns the stable identity of a bookmark at filePath:lineNumber.
func BookmarkID(filePath string, lineNumber int) string {
	return fmt.Sprintf("%s:%d", filePath, lineNumber)
}

// FileName returns the last path element, splitting on both / and \.
func FileName(filePath string) string {
	if i := strings.LastIndexAny(filePath, `/\`); i >= 0 {
		return filePath[i+1:]
	}
	return filePath
}

// DisplayName returns the label shown for a bookmark.
func (b Bookmark) DisplayName() string {
	if b.CustomName != nil && *b.CustomName != "" {
		return *b.CustomName
	}
	return b.LineText
}

// InDirectory reports whether the bookmark belongs to dirID (nil = root).
func (b Bookmark) InDirectory(dirID *string) bool {
	return SameDirectory(b.DirectoryID, dirID)
}

// Clone returns a deep copy so callers cannot write through shared pointers.
func (b Bookmark) Clone() Bookmark {
	b.Order = clonePtr(b.Order)
	b.CustomName = clonePtr(b.CustomName)
	b.DirectoryID = clonePtr(b.DirectoryID)
	return b
}

// Clone returns a deep copy of the directory.
func (d Directory) Clone() Directory {
	d.Order = clonePtr(d.Order)
	return d
}

// SameDirectory compares two optional directory ids.
func SameDirectory(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
