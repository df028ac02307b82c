// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/docsnip/internal/logging"
	"github.com/pdiddy/docsnip/internal/pattern"
	"github.com/pdiddy/docsnip/pkg/types"
)

// Options controls a batch extraction run.
type Options struct {
	// Workers bounds concurrent files. Zero uses runtime.NumCPU().
	Workers int

	// OnFile, if set, is called once per file after it has been processed.
	// It may be called from several goroutines at once.
	OnFile func(path string)
}

// Failure records a file whose extraction failed.
type Failure struct {
	Path string
	Err  error
}

// Batch holds the outcome of a batch extraction run.
type Batch struct {
	// Results are the merged snippets, unique by ID.
	Results []types.ContentResult

	// Extracted counts files that produced at least one snippet.
	Extracted int
	// Skipped counts files without snippets.
	Skipped int
	// Failures lists files that could not be read or had unbalanced markers.
	Failures []Failure
}

// Total returns the number of files processed.
func (b Batch) Total() int {
	return b.Extracted + b.Skipped + len(b.Failures)
}

// HasFailures reports whether any file failed extraction.
func (b Batch) HasFailures() bool {
	return len(b.Failures) > 0
}

type fileOutcome struct {
	results []types.ContentResult
	err     error
	done    bool
}

// ExtractAll extracts snippets from every path using a bounded worker pool.
// A failing file is recorded in Batch.Failures and does not stop the run.
// Per-file results are merged in path order with Merge. Cancelling ctx stops
// scheduling new files; the returned error is then ctx.Err().
func ExtractAll(ctx context.Context, paths []string, patterns []*pattern.Pattern, opts Options) (Batch, error) {
	log := logging.Get("extract")
	defer logging.OperationStart(log, "extract_all")()

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	outcomes := make([]fileOutcome, len(paths))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		i, path := i, path // per-iteration copies; go directive is below 1.22
		g.Go(func() error {
			results, err := ExtractFile(path, patterns)
			outcomes[i] = fileOutcome{results: results, err: err, done: true}
			if opts.OnFile != nil {
				opts.OnFile(path)
			}
			return nil
		})
	}
	_ = g.Wait()

	var batch Batch
	perFile := make([][]types.ContentResult, 0, len(paths))
	for i, o := range outcomes {
		if !o.done {
			continue
		}
		switch {
		case o.err != nil:
			log.Error().Err(o.err).Str("path", paths[i]).Msg("could not extract file content")
			batch.Failures = append(batch.Failures, Failure{Path: paths[i], Err: o.err})
		case len(o.results) == 0:
			log.Trace().Str("path", paths[i]).Msg("no snippets in file")
			batch.Skipped++
		default:
			log.Debug().Str("path", paths[i]).Int("snippets", len(o.results)).Msg("extracted")
			batch.Extracted++
			perFile = append(perFile, o.results)
		}
	}
	batch.Results = Merge(perFile...)

	return batch, ctx.Err()
}

// Merge concatenates snippet lists, keeping one snippet per ID. When an ID
// repeats, the later snippet replaces the earlier one in place.
func Merge(lists ...[]types.ContentResult) []types.ContentResult {
	log := logging.Get("extract")

	var merged []types.ContentResult
	index := make(map[string]int)
	for _, list := range lists {
		for _, r := range list {
			if i, ok := index[r.ID]; ok {
				log.Warn().
					Str("id", r.ID).
					Str("previous", merged[i].Source).
					Str("source", r.Source).
					Msg("duplicate snippet id, keeping the last one")
				merged[i] = r
				continue
			}
			index[r.ID] = len(merged)
			merged = append(merged, r)
		}
	}
	return merged
}
