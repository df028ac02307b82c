// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package replace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/docsnip/pkg/types"
)

// Replace reads path and applies results to its text. It returns the new text
// and one result per snippet. It never writes.
func (r *Replacer) Replace(path string, results []types.ContentResult) (string, []types.ReplaceResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", path, err)
	}

	text, statuses := r.Apply(string(data), results)
	return text, withPath(path, statuses), nil
}

// Stats reports what Replace would do to path without writing.
func (r *Replacer) Stats(path string, results []types.ContentResult) ([]types.ReplaceResult, error) {
	_, out, err := r.Replace(path, results)
	return out, err
}

// writeFile is swapped in tests to simulate a failed write-back.
var writeFile = writeFileAtomic

// ReplaceWithSave applies results to path and writes the new text back only
// when at least one snippet was replaced. The file keeps its permissions.
// When the write fails no statuses are returned, since nothing was replaced.
func (r *Replacer) ReplaceWithSave(path string, results []types.ContentResult) ([]types.ReplaceResult, error) {
	text, out, err := r.Replace(path, results)
	if err != nil {
		return nil, err
	}
	if !anyReplaced(out) {
		return out, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if err := writeFile(path, []byte(text), info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	return out, nil
}

func withPath(path string, statuses []types.ReplaceStatus) []types.ReplaceResult {
	out := make([]types.ReplaceResult, len(statuses))
	for i, s := range statuses {
		out[i] = types.ReplaceResult{Path: path, Status: s}
	}
	return out
}

func anyReplaced(results []types.ReplaceResult) bool {
	for _, r := range results {
		if r.Status.Kind == types.ReplaceReplaced {
			return true
		}
	}
	return false
}

// writeFileAtomic writes data to a temporary file in the same directory and
// renames it over path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".docsnip-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
