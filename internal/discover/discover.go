// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover walks a directory tree and selects the files to scan or
// rewrite.
//
// Ignore globs prune whole directories before they are walked. Includes and
// excludes are regular expressions matched against the slash-separated path
// relative to the root; an empty include list selects every file.
package discover

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/pdiddy/docsnip/internal/logging"
	"github.com/pdiddy/docsnip/pkg/types"
)

// DefaultIgnore is used when the collector config has no ignore globs.
var DefaultIgnore = []string{".git/**", "node_modules/**"}

type compiledGlob struct {
	pattern string
	glob    glob.Glob
	// bare matches root-level paths for patterns starting with **/.
	bare glob.Glob
}

// Collector selects files under a root directory.
type Collector struct {
	root     string
	includes []*regexp.Regexp
	excludes []*regexp.Regexp
	ignore   []compiledGlob
}

// New compiles cfg for root. root may be a directory or a single file.
func New(root string, cfg types.CollectorConfig) (*Collector, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}

	c := &Collector{root: abs}
	if c.includes, err = compileAll("include", cfg.Includes); err != nil {
		return nil, err
	}
	if c.excludes, err = compileAll("exclude", cfg.Excludes); err != nil {
		return nil, err
	}

	ignore := cfg.Ignore
	if ignore == nil {
		ignore = DefaultIgnore
	}
	for _, p := range ignore {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compiling ignore glob %q: %w", p, err)
		}
		cg := compiledGlob{pattern: p, glob: g}
		if rest, ok := strings.CutPrefix(p, "**/"); ok {
			if bare, err := glob.Compile(rest, '/'); err == nil {
				cg.bare = bare
			}
		}
		c.ignore = append(c.ignore, cg)
	}
	return c, nil
}

func compileAll(kind string, exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compiling %s %q: %w", kind, expr, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Root returns the absolute root the collector walks.
func (c *Collector) Root() string {
	return c.root
}

// Collect returns the absolute paths of every selected regular file, sorted.
// When the root is a file it is returned as is, without filtering.
func (c *Collector) Collect(ctx context.Context) ([]string, error) {
	log := logging.Get("discover")
	defer logging.OperationStart(log, "collect")()

	info, err := os.Stat(c.root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.root, err)
	}
	if !info.IsDir() {
		return []string{c.root}, nil
	}

	var files []string
	err = filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == c.root {
			return nil
		}

		rel, err := filepath.Rel(c.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if c.ignored(rel + "/**") {
				log.Trace().Str("dir", rel).Msg("skipping ignored directory")
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if c.ignored(rel) || !c.Match(rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", c.root, err)
	}

	sort.Strings(files)
	log.Debug().Str("root", c.root).Int("files", len(files)).Msg("collected files")
	return files, nil
}

// Match reports whether a slash-separated root-relative path passes the
// include and exclude expressions.
func (c *Collector) Match(rel string) bool {
	if len(c.includes) > 0 && !anyMatch(c.includes, rel) {
		return false
	}
	return !anyMatch(c.excludes, rel)
}

// Ignored reports whether an absolute or root-relative path, or one of its
// parent directories, falls under an ignore glob.
func (c *Collector) Ignored(path string) bool {
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(c.root, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			return false
		}
		path = rel
	}
	rel := filepath.ToSlash(path)
	if c.ignored(rel) {
		return true
	}
	dir := rel
	for {
		if c.ignored(dir + "/**") {
			return true
		}
		i := strings.LastIndex(dir, "/")
		if i < 0 {
			return false
		}
		dir = dir[:i]
	}
}

func (c *Collector) ignored(rel string) bool {
	for _, g := range c.ignore {
		if g.glob.Match(rel) {
			return true
		}
		if g.bare != nil && !strings.Contains(strings.TrimSuffix(rel, "/**"), "/") && g.bare.Match(rel) {
			return true
		}
	}
	return false
}

func anyMatch(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
