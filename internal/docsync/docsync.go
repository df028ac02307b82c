// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docsync runs the collect and replace pipeline: discover source
// files, extract their snippets, discover target documents and rewrite the
// snippets into them.
package docsync

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/pdiddy/docsnip/internal/discover"
	"github.com/pdiddy/docsnip/internal/extract"
	"github.com/pdiddy/docsnip/internal/logging"
	"github.com/pdiddy/docsnip/internal/pattern"
	"github.com/pdiddy/docsnip/internal/replace"
	"github.com/pdiddy/docsnip/pkg/types"
)

// Stage names passed to Progress.
const (
	StageExtract = "extract"
	StageReplace = "replace"
)

// Progress receives per-file progress for each stage.
type Progress interface {
	Start(stage string, total int)
	Advance(path string)
	Finish()
}

// Options configures a pipeline run.
type Options struct {
	// Source is the file or directory snippets are extracted from.
	Source string
	// Target is the file or directory rewritten. Empty uses Source.
	Target string
	// DryRun reports statuses without writing any file.
	DryRun bool

	Config   types.Config
	Progress Progress
}

// Report is the outcome of a pipeline run.
type Report struct {
	// Extract is the extraction batch; Extract.Results are the snippets.
	Extract extract.Batch
	// Results holds one entry per snippet per target file, sorted by file
	// name and then by path.
	Results []types.ReplaceResult
	// Targets is the number of target files examined.
	Targets int
}

// Count returns the number of results of the given kind.
func (r Report) Count(kind types.ReplaceKind) int {
	n := 0
	for _, res := range r.Results {
		if res.Status.Kind == kind {
			n++
		}
	}
	return n
}

// HasErrors reports whether any source failed extraction or any replacement
// ended in an error.
func (r Report) HasErrors() bool {
	return r.Extract.HasFailures() || r.Count(types.ReplaceError) > 0
}

// Collect discovers the files under root and extracts their snippets.
func Collect(ctx context.Context, root string, cfg types.Config, progress Progress) (extract.Batch, error) {
	log := logging.Get("docsync")

	patterns, err := pattern.Compile(cfg.Parser.Patterns)
	if err != nil {
		return extract.Batch{}, err
	}
	paths, err := collectPaths(ctx, root, cfg.Collector)
	if err != nil {
		return extract.Batch{}, err
	}
	log.Debug().Str("root", root).Int("files", len(paths)).Msg("source files")

	progress = orNop(progress)
	progress.Start(StageExtract, len(paths))
	batch, err := extract.ExtractAll(ctx, paths, patterns, extract.Options{
		Workers: cfg.Workers,
		OnFile:  progress.Advance,
	})
	progress.Finish()
	return batch, err
}

// Run extracts snippets from opts.Source and rewrites them into the
// documents under opts.Target.
func Run(ctx context.Context, opts Options) (Report, error) {
	log := logging.Get("docsync")
	defer logging.OperationStart(log, "run")()

	replacer, err := replace.FromConfig(opts.Config.Replacer)
	if err != nil {
		return Report{}, err
	}

	batch, err := Collect(ctx, opts.Source, opts.Config, opts.Progress)
	if err != nil {
		return Report{Extract: batch}, err
	}
	report := Report{Extract: batch}

	target := opts.Target
	if target == "" {
		target = opts.Source
	}
	targets, err := collectPaths(ctx, target, opts.Config.Collector)
	if err != nil {
		return report, err
	}
	report.Targets = len(targets)

	progress := orNop(opts.Progress)
	progress.Start(StageReplace, len(targets))
	ropts := replace.Options{Workers: opts.Config.Workers, OnFile: progress.Advance}
	if opts.DryRun {
		report.Results, err = replacer.StatsAll(ctx, targets, batch.Results, ropts)
	} else {
		report.Results, err = replacer.ReplaceAll(ctx, targets, batch.Results, ropts)
	}
	progress.Finish()

	SortResults(report.Results)

	log.Info().
		Int("snippets", len(batch.Results)).
		Int("targets", report.Targets).
		Int("replaced", report.Count(types.ReplaceReplaced)).
		Int("equal", report.Count(types.ReplaceEqual)).
		Int("errors", report.Count(types.ReplaceError)).
		Bool("dry_run", opts.DryRun).
		Msg("replace finished")
	return report, err
}

// SortResults orders results by file name, then by full path. Results for
// the same file keep their relative order.
func SortResults(results []types.ReplaceResult) {
	sort.SliceStable(results, func(i, j int) bool {
		bi, bj := filepath.Base(results[i].Path), filepath.Base(results[j].Path)
		if bi != bj {
			return bi < bj
		}
		return results[i].Path < results[j].Path
	})
}

func collectPaths(ctx context.Context, root string, cfg types.CollectorConfig) ([]string, error) {
	c, err := discover.New(root, cfg)
	if err != nil {
		return nil, fmt.Errorf("configuring collector: %w", err)
	}
	return c.Collect(ctx)
}

type nopProgress struct{}

func (nopProgress) Start(string, int) {}
func (nopProgress) Advance(string)    {}
func (nopProgress) Finish()           {}

func orNop(p Progress) Progress {
	if p == nil {
		return nopProgress{}
	}
	return p
}
