// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docsnip/pkg/types"
)

func TestRenderReplaceTable(t *testing.T) {
	pterm.DisableColor()
	root := t.TempDir()
	doc := filepath.Join(root, "docs", "README.md")

	results := []types.ReplaceResult{
		{Path: doc, Status: types.Replaced("adding_numbers", "full text", "fn add() {}")},
		{Path: doc, Status: types.Equal("greeting")},
		{Path: doc, Status: types.NotFound("missing_id")},
		{Path: doc, Status: types.Failed("broken", "boom")},
	}

	var buf bytes.Buffer
	rows, err := renderReplaceTable(&buf, root, results)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	out := buf.String()
	assert.Contains(t, out, "adding_numbers")
	assert.Contains(t, out, "replaced")
	assert.Contains(t, out, "greeting")
	assert.Contains(t, out, "equal")
	assert.Contains(t, out, filepath.Join("docs", "README.md"))
	assert.Contains(t, out, "fn add() {}")
	assert.NotContains(t, out, "missing_id")
	assert.NotContains(t, out, "broken")
}

func TestRenderReplaceTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	rows, err := renderReplaceTable(&buf, "", []types.ReplaceResult{
		{Path: "a.md", Status: types.NotFound("x")},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rows)
	assert.Empty(t, buf.String())
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "one line", preview("one line"))
	assert.Equal(t, "first ...", preview("first\nsecond"))

	long := strings.Repeat("x", 100)
	got := preview(long)
	assert.Len(t, []rune(got), blockPreviewLen)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestDisplayPath(t *testing.T) {
	root := t.TempDir()

	assert.Equal(t, filepath.Join("a", "b.md"), displayPath(root, filepath.Join(root, "a", "b.md")))
	assert.Equal(t, "b.md", displayPath(filepath.Join(root, "b.md"), filepath.Join(root, "b.md")))
	assert.Equal(t, "/elsewhere/c.md", displayPath(root, "/elsewhere/c.md"))
	assert.Equal(t, "x.md", displayPath("", "x.md"))
}
