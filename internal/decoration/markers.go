// Package decoration turns bookmarks into gutter markers for one file.
package decoration

import (
	"sync"

	"github.com/MrSnakeDoc/linemark/internal/domain"
	"github.com/MrSnakeDoc/linemark/internal/logger"
)

// HoverPrefix starts every marker hover text.
const HoverPrefix = "Bookmark: "

// Marker is a gutter icon on one zero-based line.
type Marker struct {
	Line  int    `json:"line"`
	Hover string `json:"hover"`
}

// Source is the part of the bookmark store markers are built from.
type Source interface {
	BookmarksInFile(filePath string) []domain.Bookmark
	Subscribe(fn func()) func()
}

// Provider serves markers per file and drops its cache on every store change.
type Provider struct {
	source Source
	logger logger.Logger

	mu    sync.RWMutex
	cache map[string][]Marker
	gen   uint64

	unsubscribe func()
}

// NewProvider creates a provider subscribed to source.
func NewProvider(source Source, log logger.Logger) *Provider {
	p := &Provider{
		source: source,
		logger: log,
		cache:  make(map[string][]Marker),
	}
	p.unsubscribe = source.Subscribe(p.invalidate)
	return p
}

// Markers returns the markers for filePath in bookmark order.
func (p *Provider) Markers(filePath string) []Marker {
	p.mu.RLock()
	cached, ok := p.cache[filePath]
	gen := p.gen
	p.mu.RUnlock()
	if ok {
		return cached
	}

	bookmarks := p.source.BookmarksInFile(filePath)
	markers := make([]Marker, 0, len(bookmarks))
	for _, b := range bookmarks {
		markers = append(markers, Marker{
			Line:  b.LineNumber,
			Hover: HoverPrefix + b.LineText,
		})
	}

	// a change that landed while building makes these markers stale
	p.mu.Lock()
	if p.gen == gen {
		p.cache[filePath] = markers
	}
	p.mu.Unlock()
	return markers
}

func (p *Provider) invalidate() {
	p.mu.Lock()
	n := len(p.cache)
	clear(p.cache)
	p.gen++
	p.mu.Unlock()

	if n > 0 {
		p.logger.Debug("decoration cache invalidated", logger.Int("files", n))
	}
}

// Close stops listening for store changes.
func (p *Provider) Close() {
	p.unsubscribe()
}
