// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pattern defines the marker patterns that delimit snippets in
// source files.
package pattern

import (
	"fmt"
	"regexp"

	"github.com/pdiddy/docsnip/pkg/types"
)

// Default marker expressions, used when no pattern is configured.
const (
	DefaultStart   = `//\s*📖\s*#START`
	DefaultEnd     = `//\s*📖\s*#END`
	DefaultCleanup = `//!`
)

// Pattern is an immutable start/end marker pair plus the cleanup rules
// applied to the text captured between them.
type Pattern struct {
	Start    *regexp.Regexp
	End      *regexp.Regexp
	Cleanups []*regexp.Regexp
}

// CompileError reports a pattern expression that failed to compile.
type CompileError struct {
	// Index is the position of the pattern in the configured list.
	Index int
	// Field is "start", "end" or "cleanups[N]".
	Field string
	Expr  string
	Err   error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("pattern %d %s %q: %v", e.Index, e.Field, e.Expr, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Default returns the built-in pattern: "// 📖 #START" / "// 📖 #END" markers
// with the "//!" doc comment prefix stripped from the body.
func Default() *Pattern {
	return &Pattern{
		Start:    regexp.MustCompile(DefaultStart),
		End:      regexp.MustCompile(DefaultEnd),
		Cleanups: []*regexp.Regexp{regexp.MustCompile(DefaultCleanup)},
	}
}

// New compiles a single pattern configuration. index is used only for error
// reporting.
func New(index int, cfg types.PatternConfig) (*Pattern, error) {
	start, err := regexp.Compile(cfg.Start)
	if err != nil {
		return nil, &CompileError{Index: index, Field: "start", Expr: cfg.Start, Err: err}
	}
	end, err := regexp.Compile(cfg.End)
	if err != nil {
		return nil, &CompileError{Index: index, Field: "end", Expr: cfg.End, Err: err}
	}

	p := &Pattern{Start: start, End: end}
	for i, expr := range cfg.Cleanups {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, &CompileError{Index: index, Field: fmt.Sprintf("cleanups[%d]", i), Expr: expr, Err: err}
		}
		p.Cleanups = append(p.Cleanups, re)
	}
	return p, nil
}

// Compile compiles every configured pattern in order. An empty list yields
// the default pattern.
func Compile(cfgs []types.PatternConfig) ([]*Pattern, error) {
	if len(cfgs) == 0 {
		return []*Pattern{Default()}, nil
	}
	patterns := make([]*Pattern, 0, len(cfgs))
	for i, cfg := range cfgs {
		p, err := New(i, cfg)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// StartsWith reports whether line matches the start marker.
func (p *Pattern) StartsWith(line string) bool {
	return p.Start.MatchString(line)
}

// EndsWith reports whether line matches the end marker.
func (p *Pattern) EndsWith(line string) bool {
	return p.End.MatchString(line)
}

// Cleanup removes every match of each cleanup rule from text, in order.
func (p *Pattern) Cleanup(text string) string {
	for _, re := range p.Cleanups {
		text = re.ReplaceAllLiteralString(text, "")
	}
	return text
}
