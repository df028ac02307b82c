// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root string, opts ...Option) <-chan []string {
	t.Helper()
	opts = append([]Option{WithDebounce(50 * time.Millisecond)}, opts...)
	w, err := New(root, opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []string, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, paths []string) {
			batches <- paths
		})
	}()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return batches
}

func waitFor(t *testing.T, batches <-chan []string, want string) []string {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case paths := <-batches:
			for _, p := range paths {
				if p == want {
					return paths
				}
			}
		case <-deadline:
			t.Fatalf("no change reported for %s", want)
			return nil
		}
	}
}

func TestRun_ReportsWrites(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root)

	path := filepath.Join(root, "lib.rs")
	require.NoError(t, os.WriteFile(path, []byte("fn main() {}"), 0o644))

	waitFor(t, batches, path)
}

func TestRun_DebouncesBurst(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root, WithDebounce(200*time.Millisecond))

	a := filepath.Join(root, "a.rs")
	b := filepath.Join(root, "b.rs")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("b"), 0o644))

	paths := waitFor(t, batches, a)
	assert.Contains(t, paths, b)
}

func TestRun_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root)

	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	waitFor(t, batches, sub)

	path := filepath.Join(sub, "nested.rs")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	waitFor(t, batches, path)
}

func TestRun_SkipsFilteredAndTempFiles(t *testing.T) {
	root := t.TempDir()
	skipped := filepath.Join(root, "ignored")
	require.NoError(t, os.Mkdir(skipped, 0o755))

	batches := startWatcher(t, root, WithSkip(func(p string) bool {
		return strings.HasSuffix(p, ".tmp") || p == skipped
	}))

	require.NoError(t, os.WriteFile(filepath.Join(root, "scratch.tmp"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, tempPrefix+"123"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(skipped, "inside.rs"), []byte("x"), 0o644))
	marker := filepath.Join(root, "marker.rs")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o644))

	paths := waitFor(t, batches, marker)
	for _, p := range paths {
		assert.False(t, strings.HasSuffix(p, ".tmp"), p)
		assert.NotContains(t, p, tempPrefix)
		assert.NotContains(t, p, "inside.rs")
	}
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
