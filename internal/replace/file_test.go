// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package replace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docsnip/pkg/types"
)

func writeDoc(t *testing.T, dir, name, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	return path
}

func readDoc(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

var addResults = []types.ContentResult{{ID: "adding_numbers", Data: "fn add(a,b){a+b}"}}

// --- Replace / Stats ---

func TestReplace_DoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	before := "<!--📖adding_numbers-->old<!--adding_numbers📖-->\n"
	path := writeDoc(t, dir, "README.md", before, 0o644)

	text, out, err := Default().Replace(path, addResults)
	require.NoError(t, err)

	assert.Equal(t, "<!--📖adding_numbers-->\nfn add(a,b){a+b}\n<!--adding_numbers📖-->\n", text)
	require.Len(t, out, 1)
	assert.Equal(t, path, out[0].Path)
	assert.Equal(t, types.ReplaceReplaced, out[0].Status.Kind)
	assert.Equal(t, before, readDoc(t, path))
}

func TestStats_DoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	before := "<!--📖adding_numbers-->old<!--adding_numbers📖-->\n"
	path := writeDoc(t, dir, "README.md", before, 0o644)

	out, err := Default().Stats(path, addResults)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, types.ReplaceReplaced, out[0].Status.Kind)
	assert.Equal(t, before, readDoc(t, path))
}

func TestReplace_MissingFile(t *testing.T) {
	_, _, err := Default().Replace(filepath.Join(t.TempDir(), "nope.md"), addResults)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

// --- ReplaceWithSave ---

func TestReplaceWithSave_WritesWhenReplaced(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.md", "# Doc\n<!-- 📖adding_numbers -->\n<!-- adding_numbers📖 -->\n", 0o600)

	out, err := Default().ReplaceWithSave(path, addResults)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, types.ReplaceReplaced, out[0].Status.Kind)

	assert.Equal(t, "# Doc\n<!-- 📖adding_numbers -->\nfn add(a,b){a+b}\n<!-- adding_numbers📖 -->\n", readDoc(t, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestReplaceWithSave_NoWriteWhenEqual(t *testing.T) {
	dir := t.TempDir()
	content := "<!--📖adding_numbers-->\nfn add(a,b){a+b}\n<!--adding_numbers📖-->\n"
	path := writeDoc(t, dir, "doc.md", content, 0o644)

	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, past, past))

	out, err := Default().ReplaceWithSave(path, addResults)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, types.ReplaceEqual, out[0].Status.Kind)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past), "equal content must not touch the file")
	assert.Equal(t, content, readDoc(t, path))
}

func TestReplaceWithSave_NoWriteWhenNotFound(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.md", "nothing to see\n", 0o644)

	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, past, past))

	out, err := Default().ReplaceWithSave(path, addResults)
	require.NoError(t, err)
	assert.Equal(t, types.ReplaceNotFound, out[0].Status.Kind)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past))
}

func TestReplaceWithSave_SecondRunIsEqual(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.md", "<!-- 📖adding_numbers -->\nstale\n<!-- adding_numbers📖 -->\n", 0o644)
	r := Default()

	first, err := r.ReplaceWithSave(path, addResults)
	require.NoError(t, err)
	assert.Equal(t, types.ReplaceReplaced, first[0].Status.Kind)

	second, err := r.ReplaceWithSave(path, addResults)
	require.NoError(t, err)
	assert.Equal(t, types.ReplaceEqual, second[0].Status.Kind)
}

// --- ReplaceAll / StatsAll ---

func TestReplaceAll(t *testing.T) {
	dir := t.TempDir()
	changed := writeDoc(t, dir, "a.md", "<!--📖adding_numbers-->old<!--adding_numbers📖-->", 0o644)
	same := writeDoc(t, dir, "b.md", "<!--📖adding_numbers-->fn add(a,b){a+b}<!--adding_numbers📖-->", 0o644)
	missing := filepath.Join(dir, "c.md")

	var seen atomic.Int32
	out, err := Default().ReplaceAll(context.Background(), []string{changed, same, missing}, addResults,
		Options{Workers: 2, OnFile: func(string) { seen.Add(1) }})
	require.NoError(t, err)

	assert.Equal(t, int32(3), seen.Load())
	require.Len(t, out, 3)

	assert.Equal(t, changed, out[0].Path)
	assert.Equal(t, types.ReplaceReplaced, out[0].Status.Kind)
	assert.Equal(t, same, out[1].Path)
	assert.Equal(t, types.ReplaceEqual, out[1].Status.Kind)
	assert.Equal(t, missing, out[2].Path)
	assert.Equal(t, types.ReplaceError, out[2].Status.Kind)
	assert.Empty(t, out[2].Status.ID)
	assert.NotEmpty(t, out[2].Status.Message)

	assert.Equal(t, "<!--📖adding_numbers-->\nfn add(a,b){a+b}\n<!--adding_numbers📖-->", readDoc(t, changed))
}

func TestStatsAll_NeverWrites(t *testing.T) {
	dir := t.TempDir()
	before := "<!--📖adding_numbers-->old<!--adding_numbers📖-->"
	path := writeDoc(t, dir, "a.md", before, 0o644)

	out, err := Default().StatsAll(context.Background(), []string{path}, addResults, Options{})
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, types.ReplaceReplaced, out[0].Status.Kind)
	assert.Equal(t, before, readDoc(t, path))
}

func TestReplaceAll_Cancelled(t *testing.T) {
	dir := t.TempDir()
	before := "<!--📖adding_numbers-->old<!--adding_numbers📖-->"
	path := writeDoc(t, dir, "a.md", before, 0o644)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := Default().ReplaceAll(ctx, []string{path}, addResults, Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out)
	assert.Equal(t, before, readDoc(t, path))
}

func failWrites(t *testing.T) {
	t.Helper()
	writeFile = func(string, []byte, os.FileMode) error {
		return errors.New("operation not permitted")
	}
	t.Cleanup(func() { writeFile = writeFileAtomic })
}

func TestReplaceWithSave_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	before := "<!--📖adding_numbers-->old<!--adding_numbers📖-->"
	path := writeDoc(t, dir, "a.md", before, 0o644)
	failWrites(t)

	out, err := Default().ReplaceWithSave(path, addResults)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operation not permitted")
	assert.Nil(t, out)
	assert.Equal(t, before, readDoc(t, path))
}

func TestReplaceAll_WriteFailureReportsOnlyError(t *testing.T) {
	dir := t.TempDir()
	before := "<!--📖adding_numbers-->old<!--adding_numbers📖-->"
	path := writeDoc(t, dir, "a.md", before, 0o644)
	failWrites(t)

	out, err := Default().ReplaceAll(context.Background(), []string{path}, addResults, Options{Workers: 1})
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, path, out[0].Path)
	assert.Equal(t, types.ReplaceError, out[0].Status.Kind)
	assert.Empty(t, out[0].Status.ID)
	assert.Contains(t, out[0].Status.Message, "operation not permitted")
	assert.Equal(t, before, readDoc(t, path))
}
