package decoration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linemark/internal/index"
	"github.com/MrSnakeDoc/linemark/internal/logger"
)

func TestMarkers(t *testing.T) {
	idx := index.NewMemoryIndex(logger.NewNop())
	p := NewProvider(idx, logger.NewNop())
	defer p.Close()

	_, err := idx.CreateBookmark(index.NewBookmark{FilePath: "/a.go", LineNumber: 4, LineText: "  x := 1 "})
	require.NoError(t, err)
	_, err = idx.CreateBookmark(index.NewBookmark{FilePath: "/b.go", LineNumber: 1, LineText: "y"})
	require.NoError(t, err)

	assert.Equal(t, []Marker{{Line: 4, Hover: "Bookmark: x := 1"}}, p.Markers("/a.go"))
	assert.Empty(t, p.Markers("/nothing.go"))
}

func TestMarkersRefreshOnChange(t *testing.T) {
	idx := index.NewMemoryIndex(logger.NewNop())
	p := NewProvider(idx, logger.NewNop())
	defer p.Close()

	assert.Empty(t, p.Markers("/a.go"))

	b, err := idx.CreateBookmark(index.NewBookmark{FilePath: "/a.go", LineNumber: 2, LineText: "z"})
	require.NoError(t, err)
	assert.Len(t, p.Markers("/a.go"), 1)

	idx.RemoveBookmark(b.ID)
	assert.Empty(t, p.Markers("/a.go"))
}

func TestCloseStopsInvalidation(t *testing.T) {
	idx := index.NewMemoryIndex(logger.NewNop())
	p := NewProvider(idx, logger.NewNop())

	assert.Empty(t, p.Markers("/a.go"))
	p.Close()

	_, err := idx.CreateBookmark(index.NewBookmark{FilePath: "/a.go", LineNumber: 0, LineText: "w"})
	require.NoError(t, err)
	assert.Empty(t, p.Markers("/a.go"), "closed provider keeps serving its cache")
}
