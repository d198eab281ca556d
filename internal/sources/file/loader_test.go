package file

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/linemark/internal/index"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.go")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test source file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	path := writeSource(t, "package main\r\n\r\nfunc main() {\r\n\trun()\r\n}\r\n")

	snap, err := NewLoader(0).Load(path, 3)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if snap.LineText != "\trun()" {
		t.Errorf("LineText = %q", snap.LineText)
	}
	want := "  2: \n  3: func main() {\n→ 4: \trun()\n  5: }\n"
	if snap.FullText != want {
		t.Errorf("FullText = %q, want %q", snap.FullText, want)
	}
}

func TestLoaderLoadErrors(t *testing.T) {
	path := writeSource(t, "one\ntwo\n")

	tests := []struct {
		name    string
		loader  *Loader
		path    string
		line    int
		wantErr error
	}{
		{name: "past last line", loader: NewLoader(0), path: path, line: 2, wantErr: ErrLineOutOfRange},
		{name: "negative line", loader: NewLoader(0), path: path, line: -1, wantErr: ErrLineOutOfRange},
		{name: "too large", loader: NewLoader(4), path: path, line: 0, wantErr: ErrFileTooLarge},
		{name: "missing file", loader: NewLoader(0), path: filepath.Join(t.TempDir(), "nope"), line: 0, wantErr: os.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.loader.Load(tt.path, tt.line)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoaderFill(t *testing.T) {
	path := writeSource(t, "a\nb\nc\n")
	loader := NewLoader(0)

	nb := index.NewBookmark{FilePath: path, LineNumber: 1}
	if err := loader.Fill(&nb); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if nb.LineText != "b" || nb.FullText != "  1: a\n→ 2: b\n  3: c\n" {
		t.Errorf("Fill() = %+v", nb)
	}

	given := index.NewBookmark{FilePath: "/does/not/exist", LineNumber: 9, LineText: "kept"}
	if err := loader.Fill(&given); err != nil {
		t.Fatalf("Fill() should not read when text is given: %v", err)
	}
	if given.LineText != "kept" {
		t.Errorf("LineText = %q, want kept", given.LineText)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 1},
		{"a", 1},
		{"a\n", 1},
		{"a\n\n", 2},
		{"a\r\nb", 2},
	}
	for _, tt := range tests {
		if got := len(splitLines(tt.in)); got != tt.want {
			t.Errorf("splitLines(%q) = %d lines, want %d", tt.in, got, tt.want)
		}
	}
}
