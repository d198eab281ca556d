package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/linemark/internal/tree"
)

func TestEncodeYAML(t *testing.T) {
	nodes := []tree.Node{{
		Kind:  tree.KindDirectory,
		ID:    "dir_1",
		Label: "Work",
		Children: []tree.Node{
			{Kind: tree.KindBookmark, ID: "/a.go:0", Label: "main", FilePath: "/a.go"},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, encode(&buf, "yaml", nodes))

	var back []tree.Node
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	require.Len(t, back, 1)
	assert.Equal(t, "Work", back[0].Label)
	require.Len(t, back[0].Children, 1)
	assert.Equal(t, tree.KindBookmark, back[0].Children[0].Kind)
	assert.Contains(t, buf.String(), "lineNumber: 0")
}

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, "json", []tree.Node{{Kind: tree.KindBookmark, ID: "x", Label: "x"}}))
	assert.Contains(t, buf.String(), `"kind": "bookmark"`)
}

func TestDumpRejectsUnknownFormat(t *testing.T) {
	dumpFormat = "toml"
	t.Cleanup(func() { dumpFormat = "yaml" })

	err := runDump(dumpCmd, nil)
	assert.ErrorContains(t, err, "unknown format")
}
