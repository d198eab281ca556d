// Package tree shapes the bookmark store into a sidebar tree and applies
// drag-and-drop gestures back to it.
package tree

import (
	"fmt"

	"github.com/MrSnakeDoc/linemark/internal/domain"
	"github.com/MrSnakeDoc/linemark/internal/logger"
)

// EmptyLineLabel labels a bookmark on a blank line with no custom name.
const EmptyLineLabel = "[empty line]"

// Kind tells directories and bookmarks apart.
type Kind string

const (
	KindDirectory Kind = "directory"
	KindBookmark  Kind = "bookmark"
)

// Node is one row of the tree.
type Node struct {
	Kind        Kind   `json:"kind" yaml:"kind"`
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Tooltip     string `json:"tooltip,omitempty" yaml:"tooltip,omitempty"`
	Expanded    bool   `json:"expanded,omitempty" yaml:"expanded,omitempty"`
	FilePath    string `json:"filePath,omitempty" yaml:"filePath,omitempty"`
	LineNumber  int    `json:"lineNumber" yaml:"lineNumber"`
	Children    []Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Ref points at a dragged or targeted node.
type Ref struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// Store is the part of the bookmark store the tree reads and edits.
type Store interface {
	ListDirectories() []domain.Directory
	BookmarksIn(dirID *string) []domain.Bookmark
	Bookmark(id string) (domain.Bookmark, bool)
	Directory(id string) (domain.Directory, bool)
	MoveToDirectory(id string, dirID *string)
	ReorderBookmarks(srcID, dstID string)
	ReorderDirectories(srcID, dstID string)
}

// Tree builds nodes from a Store and applies drops to it.
type Tree struct {
	store  Store
	logger logger.Logger
}

// New creates a tree over store.
func New(store Store, log logger.Logger) *Tree {
	return &Tree{store: store, logger: log}
}

// Roots returns every directory, expanded and in order, followed by the
// root-level bookmarks.
func (t *Tree) Roots() []Node {
	dirs := t.store.ListDirectories()
	root := t.store.BookmarksIn(nil)

	nodes := make([]Node, 0, len(dirs)+len(root))
	for _, d := range dirs {
		nodes = append(nodes, Node{
			Kind:     KindDirectory,
			ID:       d.ID,
			Label:    d.Name,
			Expanded: true,
			Children: t.Children(d.ID),
		})
	}
	for _, b := range root {
		nodes = append(nodes, bookmarkNode(b))
	}
	return nodes
}

// Children returns the bookmarks inside dirID.
func (t *Tree) Children(dirID string) []Node {
	bookmarks := t.store.BookmarksIn(&dirID)
	nodes := make([]Node, 0, len(bookmarks))
	for _, b := range bookmarks {
		nodes = append(nodes, bookmarkNode(b))
	}
	return nodes
}

func bookmarkNode(b domain.Bookmark) Node {
	label := b.DisplayName()
	if label == "" {
		label = EmptyLineLabel
	}
	return Node{
		Kind:        KindBookmark,
		ID:          b.ID,
		Label:       label,
		Description: fmt.Sprintf("%s:%d", b.FileName, b.LineNumber+1),
		Tooltip:     b.FullText,
		FilePath:    b.FilePath,
		LineNumber:  b.LineNumber,
	}
}

// Drop applies a drag-and-drop gesture. Only the first dragged node is
// used; a nil target means empty space. It reports whether the gesture
// changed anything.
//
//   - bookmark on directory: move into it
//   - bookmark on empty space: move to root
//   - bookmark on bookmark: join the target's directory, then take its place
//   - directory on directory: reorder directories
//
// Every other combination, unknown ids and a node dropped on itself are
// ignored.
func (t *Tree) Drop(dragged []Ref, target *Ref) bool {
	if len(dragged) == 0 {
		return false
	}
	src := dragged[0]
	if target != nil && *target == src {
		return t.ignore(src, target)
	}

	switch src.Kind {
	case KindBookmark:
		if _, ok := t.store.Bookmark(src.ID); !ok {
			return t.ignore(src, target)
		}
		return t.dropBookmark(src.ID, target)

	case KindDirectory:
		if target == nil || target.Kind != KindDirectory {
			return t.ignore(src, target)
		}
		_, srcOK := t.store.Directory(src.ID)
		_, dstOK := t.store.Directory(target.ID)
		if !srcOK || !dstOK {
			return t.ignore(src, target)
		}
		t.store.ReorderDirectories(src.ID, target.ID)
		return true
	}

	return t.ignore(src, target)
}

func (t *Tree) dropBookmark(id string, target *Ref) bool {
	if target == nil {
		t.store.MoveToDirectory(id, nil)
		return true
	}

	switch target.Kind {
	case KindDirectory:
		if _, ok := t.store.Directory(target.ID); !ok {
			break
		}
		t.store.MoveToDirectory(id, &target.ID)
		return true

	case KindBookmark:
		dst, ok := t.store.Bookmark(target.ID)
		if !ok {
			break
		}
		t.store.MoveToDirectory(id, dst.DirectoryID)
		t.store.ReorderBookmarks(id, dst.ID)
		return true
	}

	return t.ignore(Ref{Kind: KindBookmark, ID: id}, target)
}

func (t *Tree) ignore(src Ref, target *Ref) bool {
	fields := []logger.Field{
		logger.String("kind", string(src.Kind)),
		logger.String("id", src.ID),
	}
	if target != nil {
		fields = append(fields,
			logger.String("target_kind", string(target.Kind)),
			logger.String("target_id", target.ID))
	}
	t.logger.Debug("drop ignored", fields...)
	return false
}
