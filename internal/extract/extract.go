// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract scans source text for marker-delimited snippets.
//
// Every configured pattern is tracked independently over a single pass of
// the file. A pattern whose start marker appears again while a block is
// already open starts a new block: the outer block keeps only the lines
// seen before the nested start, and lines after the nested end marker are
// not attributed to any block until the next start. Nesting the same
// pattern is therefore not supported.
package extract

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/docsnip/internal/logging"
	"github.com/pdiddy/docsnip/internal/pattern"
	"github.com/pdiddy/docsnip/pkg/types"
)

// idRe finds the identifier token on a start marker line.
var idRe = regexp.MustCompile(`<id:(.*?)>`)

// UnbalancedMarkersError reports a pattern whose start and end marker counts
// differ within one file. No snippets are returned for that file.
type UnbalancedMarkersError struct {
	PatternStart string
	PatternEnd   string
	StartCount   int
	EndCount     int
}

func (e *UnbalancedMarkersError) Error() string {
	return fmt.Sprintf("unbalanced markers: start %q found %d times, end %q found %d times",
		e.PatternStart, e.StartCount, e.PatternEnd, e.EndCount)
}

// ParseID returns the trimmed identifier from an <id:NAME> token in line.
// It reports false when the token is missing or its value is blank.
func ParseID(line string) (string, bool) {
	m := idRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	id := strings.TrimSpace(m[1])
	if id == "" {
		return "", false
	}
	return id, true
}

// CountStarts checks that every pattern has as many end markers as start
// markers in text and returns the total number of start markers.
func CountStarts(text string, patterns []*pattern.Pattern) (int, error) {
	total := 0
	for _, p := range patterns {
		starts := len(p.Start.FindAllStringIndex(text, -1))
		ends := len(p.End.FindAllStringIndex(text, -1))
		if starts != ends {
			return 0, &UnbalancedMarkersError{
				PatternStart: p.Start.String(),
				PatternEnd:   p.End.String(),
				StartCount:   starts,
				EndCount:     ends,
			}
		}
		total += starts
	}
	return total, nil
}

// blockKey orders blocks by pattern position, then by occurrence.
type blockKey struct {
	pattern    int
	occurrence int
}

type block struct {
	id    string
	lines []string
}

// patternState is the scan state of one pattern within one file.
type patternState struct {
	occurrence int
	open       bool
	openLine   int
}

// Extract returns the snippets found in text, ordered by pattern and then by
// occurrence within each pattern. A file without any start marker yields no
// snippets and no error.
func Extract(text string, patterns []*pattern.Pattern) ([]types.ContentResult, error) {
	log := logging.Get("extract")

	total, err := CountStarts(text, patterns)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		log.Trace().Msg("no start markers found")
		return nil, nil
	}

	states := make([]patternState, len(patterns))
	blocks := make(map[blockKey]*block)

	for lineIndex, line := range splitLines(text) {
		for pi, p := range patterns {
			st := &states[pi]
			switch {
			case p.StartsWith(line):
				id, ok := ParseID(line)
				if !ok {
					log.Warn().
						Str("line_content", line).
						Int("line_index", lineIndex).
						Msg("start marker has no <id:NAME> token, skipping")
					continue
				}
				st.occurrence++
				st.open = true
				st.openLine = lineIndex
				key := blockKey{pattern: pi, occurrence: st.occurrence}
				if _, exists := blocks[key]; !exists {
					blocks[key] = &block{id: id}
				}
			case p.EndsWith(line):
				st.open = false
			case st.open:
				if b, ok := blocks[blockKey{pattern: pi, occurrence: st.occurrence}]; ok {
					b.lines = append(b.lines, line)
				}
			}
		}
	}

	for pi, st := range states {
		if st.open {
			log.Debug().Int("pattern", pi).Int("open_line", st.openLine).Msg("block still open at end of file")
		}
	}

	keys := make([]blockKey, 0, len(blocks))
	for k := range blocks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].pattern != keys[j].pattern {
			return keys[i].pattern < keys[j].pattern
		}
		return keys[i].occurrence < keys[j].occurrence
	})

	results := make([]types.ContentResult, 0, len(keys))
	for _, k := range keys {
		b := blocks[k]
		data := patterns[k.pattern].Cleanup(strings.Join(b.lines, "\n"))
		results = append(results, types.ContentResult{
			ID:   b.id,
			Data: strings.TrimSpace(data),
		})
	}
	return results, nil
}

// ExtractFile reads path and extracts its snippets, recording path as their
// source.
func ExtractFile(path string, patterns []*pattern.Pattern) ([]types.ContentResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	results, err := Extract(string(data), patterns)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}
	for i := range results {
		results[i].Source = path
	}
	return results, nil
}

// splitLines splits text into lines without their terminators. A trailing
// newline does not produce an extra empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
