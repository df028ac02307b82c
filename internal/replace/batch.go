// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package replace

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/docsnip/internal/logging"
	"github.com/pdiddy/docsnip/pkg/types"
)

// Options controls a batch replacement run.
type Options struct {
	// Workers bounds concurrent files. Zero uses runtime.NumCPU().
	Workers int

	// OnFile, if set, is called once per file after it has been processed.
	// It may be called from several goroutines at once.
	OnFile func(path string)
}

// ReplaceAll rewrites every path with ReplaceWithSave. A file that cannot be
// read or written contributes one error result with an empty ID and does not
// stop the run. Results are grouped by path in input order.
func (r *Replacer) ReplaceAll(ctx context.Context, paths []string, results []types.ContentResult, opts Options) ([]types.ReplaceResult, error) {
	log := logging.Get("replace")
	defer logging.OperationStart(log, "replace_all")()

	return r.fanOut(ctx, paths, opts, func(path string) ([]types.ReplaceResult, error) {
		return r.ReplaceWithSave(path, results)
	})
}

// StatsAll reports what ReplaceAll would do without writing any file.
func (r *Replacer) StatsAll(ctx context.Context, paths []string, results []types.ContentResult, opts Options) ([]types.ReplaceResult, error) {
	log := logging.Get("replace")
	defer logging.OperationStart(log, "stats_all")()

	return r.fanOut(ctx, paths, opts, func(path string) ([]types.ReplaceResult, error) {
		return r.Stats(path, results)
	})
}

func (r *Replacer) fanOut(ctx context.Context, paths []string, opts Options, fn func(string) ([]types.ReplaceResult, error)) ([]types.ReplaceResult, error) {
	log := logging.Get("replace")

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	perFile := make([][]types.ReplaceResult, len(paths))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		i, path := i, path // per-iteration copies; go directive is below 1.22
		g.Go(func() error {
			out, err := fn(path)
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("could not replace file content")
				out = []types.ReplaceResult{{Path: path, Status: types.Failed("", err.Error())}}
			}
			perFile[i] = out
			if opts.OnFile != nil {
				opts.OnFile(path)
			}
			return nil
		})
	}
	_ = g.Wait()

	var all []types.ReplaceResult
	for _, out := range perFile {
		all = append(all, out...)
	}
	return all, ctx.Err()
}
