// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docsnip/internal/pattern"
	"github.com/pdiddy/docsnip/pkg/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractAll(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "a.rs", "// 📖 #START <id:intro>\n//! Hello\n// 📖 #END\n")
	plain := writeFile(t, dir, "b.rs", "fn main() {}\n")
	bad := writeFile(t, dir, "c.rs", "// 📖 #START <id:broken>\nno end\n")
	missing := filepath.Join(dir, "gone.rs")
	more := writeFile(t, dir, "d.rs", "// 📖 #START <id:outro>\n//! Bye\n// 📖 #END\n")

	var seen atomic.Int32
	batch, err := ExtractAll(context.Background(),
		[]string{good, plain, bad, missing, more},
		[]*pattern.Pattern{pattern.Default()},
		Options{Workers: 2, OnFile: func(string) { seen.Add(1) }},
	)
	require.NoError(t, err)

	assert.Equal(t, int32(5), seen.Load())
	assert.Equal(t, 2, batch.Extracted)
	assert.Equal(t, 1, batch.Skipped)
	require.Len(t, batch.Failures, 2)
	assert.True(t, batch.HasFailures())
	assert.Equal(t, 5, batch.Total())

	failed := []string{batch.Failures[0].Path, batch.Failures[1].Path}
	assert.ElementsMatch(t, []string{bad, missing}, failed)

	assert.Equal(t, []types.ContentResult{
		{ID: "intro", Data: "Hello", Source: good},
		{ID: "outro", Data: "Bye", Source: more},
	}, batch.Results)
}

func TestExtractAll_FailureIsolated(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.rs", "// 📖 #START <id:x>\n")
	good := writeFile(t, dir, "good.rs", "// 📖 #START <id:y>\n//! ok\n// 📖 #END\n")

	batch, err := ExtractAll(context.Background(), []string{bad, good}, []*pattern.Pattern{pattern.Default()}, Options{})
	require.NoError(t, err)

	require.Len(t, batch.Results, 1)
	assert.Equal(t, "y", batch.Results[0].ID)
	require.Len(t, batch.Failures, 1)
	assert.Equal(t, bad, batch.Failures[0].Path)
}

func TestExtractAll_Cancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.rs", "// 📖 #START <id:a>\n//! a\n// 📖 #END\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := ExtractAll(ctx, []string{path}, []*pattern.Pattern{pattern.Default()}, Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, batch.Total())
}

func TestExtractAll_Empty(t *testing.T) {
	batch, err := ExtractAll(context.Background(), nil, []*pattern.Pattern{pattern.Default()}, Options{})
	require.NoError(t, err)
	assert.Empty(t, batch.Results)
	assert.False(t, batch.HasFailures())
}

func TestMerge_LastWins(t *testing.T) {
	first := []types.ContentResult{
		{ID: "a", Data: "a1", Source: "one.rs"},
		{ID: "b", Data: "b1", Source: "one.rs"},
	}
	second := []types.ContentResult{
		{ID: "c", Data: "c2", Source: "two.rs"},
		{ID: "a", Data: "a2", Source: "two.rs"},
	}

	got := Merge(first, second)

	assert.Equal(t, []types.ContentResult{
		{ID: "a", Data: "a2", Source: "two.rs"},
		{ID: "b", Data: "b1", Source: "one.rs"},
		{ID: "c", Data: "c2", Source: "two.rs"},
	}, got)
}

func TestMerge_Empty(t *testing.T) {
	assert.Nil(t, Merge())
	assert.Nil(t, Merge(nil, nil))
}
