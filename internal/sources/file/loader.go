package file

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/MrSnakeDoc/linemark/internal/domain"
	"github.com/MrSnakeDoc/linemark/internal/index"
)

// DefaultMaxSize caps the files read for line snapshots.
const DefaultMaxSize = 10 << 20

var (
	ErrLineOutOfRange = errors.New("line out of range")
	ErrFileTooLarge   = errors.New("file too large")
)

// Snapshot is the text of a marked line and its surrounding context.
type Snapshot struct {
	LineText string
	FullText string
}

// Loader reads line snapshots from source files on disk
type Loader struct {
	maxSize int64
}

// NewLoader creates a new file loader
func NewLoader(maxSize int64) *Loader {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Loader{
		maxSize: maxSize,
	}
}

// Load reads filePath and returns the snapshot for the zero-based lineNumber.
func (l *Loader) Load(filePath string, lineNumber int) (Snapshot, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to stat source file: %w", err)
	}
	if info.Size() > l.maxSize {
		return Snapshot{}, fmt.Errorf("%s: %w (%d bytes)", filePath, ErrFileTooLarge, info.Size())
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read source file: %w", err)
	}

	lines := splitLines(string(data))
	if lineNumber < 0 || lineNumber >= len(lines) {
		return Snapshot{}, fmt.Errorf("%s:%d: %w", filePath, lineNumber, ErrLineOutOfRange)
	}

	return Snapshot{
		LineText: lines[lineNumber],
		FullText: domain.ContextWindow(lines, lineNumber),
	}, nil
}

// Fill completes a bookmark request that arrived without line text.
// Requests that already carry text are left untouched.
func (l *Loader) Fill(nb *index.NewBookmark) error {
	if nb.LineText != "" || nb.FullText != "" {
		return nil
	}

	snap, err := l.Load(nb.FilePath, nb.LineNumber)
	if err != nil {
		return err
	}
	nb.LineText = snap.LineText
	nb.FullText = snap.FullText
	return nil
}

// splitLines splits on \n and drops a trailing \r, matching editor line
// numbering. A trailing newline does not start an extra line.
func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
