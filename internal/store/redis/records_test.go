package redis

import (
	"errors"
	"testing"
)

func TestDecodeBookmarks(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		wantIDs     []string
		wantSkipped int
		wantErr     bool
	}{
		{
			name:    "empty array",
			payload: `[]`,
			wantIDs: []string{},
		},
		{
			name: "missing lineText is skipped",
			payload: `[
				{"id":"/a.ts:1","filePath":"/a.ts","fileName":"a.ts","lineNumber":1,"lineText":"x","fullText":"→ 2: x\n"},
				{"id":"/a.ts:2","filePath":"/a.ts","fileName":"a.ts","lineNumber":2,"fullText":""},
				{"id":"/a.ts:3","filePath":"/a.ts","fileName":"a.ts","lineNumber":3,"lineText":"z","fullText":"","order":2.5}
			]`,
			wantIDs:     []string{"/a.ts:1", "/a.ts:3"},
			wantSkipped: 1,
		},
		{
			name: "mistyped fields are skipped",
			payload: `[
				{"id":"a","filePath":"/a","fileName":"a","lineNumber":"1","lineText":"","fullText":""},
				{"id":"b","filePath":"/b","fileName":"b","lineNumber":1.5,"lineText":"","fullText":""},
				{"id":"c","filePath":"/c","fileName":"c","lineNumber":1,"lineText":"","fullText":"","order":"first"},
				{"id":"d","filePath":"/d","fileName":"d","lineNumber":1,"lineText":"","fullText":"","directoryId":7},
				"not an object",
				{"id":"e","filePath":"/e","fileName":"e","lineNumber":1,"lineText":"","fullText":""}
			]`,
			wantIDs:     []string{"e"},
			wantSkipped: 5,
		},
		{
			name:    "unknown fields and null optionals are accepted",
			payload: `[{"id":"a","filePath":"/a","fileName":"a","lineNumber":0,"lineText":"","fullText":"","color":"red","customName":null}]`,
			wantIDs: []string{"a"},
		},
		{
			name:    "invalid json",
			payload: `[{"id":`,
			wantErr: true,
		},
		{
			name:    "not an array",
			payload: `{"id":"a"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, skipped, err := DecodeBookmarks([]byte(tt.payload))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Fatalf("DecodeBookmarks() error = %v, want ErrMalformed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeBookmarks() error = %v", err)
			}
			if len(skipped) != tt.wantSkipped {
				t.Errorf("skipped %d records, want %d: %v", len(skipped), tt.wantSkipped, skipped)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("decoded %d bookmarks, want %d", len(got), len(tt.wantIDs))
			}
			for i, b := range got {
				if b.ID != tt.wantIDs[i] {
					t.Errorf("bookmark[%d].ID = %q, want %q", i, b.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestDecodeBookmarkFields(t *testing.T) {
	payload := `[{"id":"/a.go:4","filePath":"/a.go","fileName":"a.go","lineNumber":4,"lineText":"x := 1","fullText":"→ 5: x := 1\n","order":0.5,"customName":"init","directoryId":"dir_1"}]`

	got, _, err := DecodeBookmarks([]byte(payload))
	if err != nil || len(got) != 1 {
		t.Fatalf("DecodeBookmarks() = %v, %v", got, err)
	}
	b := got[0]
	if b.LineNumber != 4 || b.LineText != "x := 1" || b.FileName != "a.go" {
		t.Errorf("unexpected core fields: %+v", b)
	}
	if b.Order == nil || *b.Order != 0.5 {
		t.Errorf("Order = %v, want 0.5", b.Order)
	}
	if b.CustomName == nil || *b.CustomName != "init" {
		t.Errorf("CustomName = %v, want init", b.CustomName)
	}
	if b.DirectoryID == nil || *b.DirectoryID != "dir_1" {
		t.Errorf("DirectoryID = %v, want dir_1", b.DirectoryID)
	}
}

func TestDecodeDirectories(t *testing.T) {
	payload := `[
		{"id":"dir_1","name":"Work","order":0},
		{"id":"dir_2","name":"Home"},
		{"id":"dir_3"},
		{"id":"dir_4","name":"Bad","order":"x"},
		{"name":"NoID"}
	]`

	got, skipped, err := DecodeDirectories([]byte(payload))
	if err != nil {
		t.Fatalf("DecodeDirectories() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "dir_1" || got[1].ID != "dir_2" {
		t.Errorf("DecodeDirectories() = %+v", got)
	}
	if got[1].Order != nil {
		t.Errorf("missing order should decode as nil, got %v", *got[1].Order)
	}
	if len(skipped) != 3 {
		t.Errorf("skipped %d, want 3", len(skipped))
	}
	if skipped[0].Index != 2 {
		t.Errorf("first skipped index = %d, want 2", skipped[0].Index)
	}
}

func TestNewKeys(t *testing.T) {
	k := NewKeys("")
	if k.Bookmarks != "linemark:bookmarks" || k.Directories != "linemark:directories" {
		t.Errorf("NewKeys(\"\") = %+v", k)
	}
	k = NewKeys("test")
	if k.Bookmarks != "test:bookmarks" {
		t.Errorf("NewKeys(test).Bookmarks = %q", k.Bookmarks)
	}
}
