// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package replace rewrites snippet bodies into target documents between
// per-identifier marker pairs.
//
// A marker template is a regular expression with exactly one {id}
// placeholder. The identifier is quoted before it is inserted, so
// identifiers containing expression metacharacters match literally. Every
// marker pair for an identifier is rewritten, and a rewritten pair keeps both
// markers byte for byte so a later run finds them again.
package replace

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/docsnip/internal/logging"
	"github.com/pdiddy/docsnip/pkg/types"
)

// Placeholder marks where the identifier goes in a marker template.
const Placeholder = "{id}"

// Default marker templates: <!-- 📖NAME --> ... <!-- NAME📖 -->.
const (
	DefaultStart = `<!--\s*📖{id}\s*-->`
	DefaultEnd   = `<!--\s*{id}📖\s*-->`
)

// Capture group names in a compiled matcher.
const (
	groupStart = "marker_start"
	groupBody  = "marker_body"
	groupEnd   = "marker_end"
)

// ErrTemplatePlaceholder is returned when a marker template does not contain
// exactly one placeholder.
var ErrTemplatePlaceholder = errors.New("marker template must contain exactly one " + Placeholder + " placeholder")

// MatcherError reports a marker-pair expression that failed to compile for
// an identifier.
type MatcherError struct {
	ID  string
	Err error
}

func (e *MatcherError) Error() string {
	return fmt.Sprintf("building matcher for %q: %v", e.ID, e.Err)
}

func (e *MatcherError) Unwrap() error { return e.Err }

// CaptureNotFoundError reports a match that lacks one of the expected named
// groups.
type CaptureNotFoundError struct {
	Group string
}

func (e *CaptureNotFoundError) Error() string {
	return fmt.Sprintf("capture group %q not found in match", e.Group)
}

// template is a marker template split around its placeholder.
type template struct {
	raw    string
	prefix string
	suffix string
}

func parseTemplate(raw string) (template, error) {
	if strings.Count(raw, Placeholder) != 1 {
		return template{}, fmt.Errorf("%q: %w", raw, ErrTemplatePlaceholder)
	}
	prefix, suffix, _ := strings.Cut(raw, Placeholder)
	return template{raw: raw, prefix: prefix, suffix: suffix}, nil
}

func (t template) expr(id string) string {
	return t.prefix + regexp.QuoteMeta(id) + t.suffix
}

// Replacer builds marker-pair matchers from a start and end template. It is
// immutable and safe for concurrent use.
type Replacer struct {
	start template
	end   template
}

// New returns a Replacer for the given start and end marker templates. Both
// must contain exactly one {id} and compile once an identifier is inserted.
func New(startTemplate, endTemplate string) (*Replacer, error) {
	start, err := parseTemplate(startTemplate)
	if err != nil {
		return nil, fmt.Errorf("start %w", err)
	}
	end, err := parseTemplate(endTemplate)
	if err != nil {
		return nil, fmt.Errorf("end %w", err)
	}

	r := &Replacer{start: start, end: end}
	if _, err := r.Matcher("id"); err != nil {
		return nil, err
	}
	return r, nil
}

// Default returns a Replacer using DefaultStart and DefaultEnd.
func Default() *Replacer {
	r, err := New(DefaultStart, DefaultEnd)
	if err != nil {
		panic(err)
	}
	return r
}

// FromConfig returns a Replacer for cfg, falling back to the default template
// for any empty field.
func FromConfig(cfg types.ReplacerConfig) (*Replacer, error) {
	start, end := cfg.Start, cfg.End
	if start == "" {
		start = DefaultStart
	}
	if end == "" {
		end = DefaultEnd
	}
	return New(start, end)
}

// Templates returns the start and end marker templates.
func (r *Replacer) Templates() (start, end string) {
	return r.start.raw, r.end.raw
}

// Matcher compiles the marker-pair expression for id. The expression spans
// line breaks and captures the start marker, the body and the end marker as
// marker_start, marker_body and marker_end.
func (r *Replacer) Matcher(id string) (*regexp.Regexp, error) {
	expr := fmt.Sprintf(`(?s)(?P<%s>%s)(?P<%s>.*?)(?P<%s>%s)`,
		groupStart, r.start.expr(id),
		groupBody,
		groupEnd, r.end.expr(id),
	)
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &MatcherError{ID: id, Err: err}
	}
	return re, nil
}

// Apply replaces the body of every marker pair for each result in text, in
// result order. Replacements accumulate: each result sees the text left by
// the previous one. It returns the final text and one status per result.
//
// Data is trimmed before it is compared or written, so the body written for a
// result always reads back as equal on the next run. The Block of a replaced
// status holds the trimmed data.
func (r *Replacer) Apply(text string, results []types.ContentResult) (string, []types.ReplaceStatus) {
	log := logging.Get("replace")

	statuses := make([]types.ReplaceStatus, 0, len(results))
	for _, res := range results {
		updated, status := r.applyOne(text, res)
		switch status.Kind {
		case types.ReplaceReplaced:
			text = updated
		case types.ReplaceError:
			log.Warn().Str("id", res.ID).Str("reason", status.Message).Msg("could not replace snippet")
		}
		statuses = append(statuses, status)
	}
	return text, statuses
}

func (r *Replacer) applyOne(text string, res types.ContentResult) (string, types.ReplaceStatus) {
	re, err := r.Matcher(res.ID)
	if err != nil {
		return text, types.Failed(res.ID, err.Error())
	}

	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, types.NotFound(res.ID)
	}

	groups, err := groupIndexes(re)
	if err != nil {
		return text, types.Failed(res.ID, err.Error())
	}

	data := strings.TrimSpace(res.Data)
	equal := true
	for _, m := range matches {
		body, err := capture(text, m, groups.body, groupBody)
		if err != nil {
			return text, types.Failed(res.ID, err.Error())
		}
		if strings.TrimSpace(body) != data {
			equal = false
		}
	}
	if equal {
		return text, types.Equal(res.ID)
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, err := capture(text, m, groups.start, groupStart)
		if err != nil {
			return text, types.Failed(res.ID, err.Error())
		}
		end, err := capture(text, m, groups.end, groupEnd)
		if err != nil {
			return text, types.Failed(res.ID, err.Error())
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(start)
		b.WriteString("\n")
		b.WriteString(data)
		b.WriteString("\n")
		b.WriteString(end)
		last = m[1]
	}
	b.WriteString(text[last:])

	return b.String(), types.Replaced(res.ID, b.String(), data)
}

type groupSet struct {
	start, body, end int
}

func groupIndexes(re *regexp.Regexp) (groupSet, error) {
	var g groupSet
	for _, item := range []struct {
		name string
		dst  *int
	}{
		{groupStart, &g.start},
		{groupBody, &g.body},
		{groupEnd, &g.end},
	} {
		i := re.SubexpIndex(item.name)
		if i < 0 {
			return groupSet{}, &CaptureNotFoundError{Group: item.name}
		}
		*item.dst = i
	}
	return g, nil
}

// capture returns the text of group i from a submatch index slice.
func capture(text string, m []int, i int, name string) (string, error) {
	if 2*i+1 >= len(m) || m[2*i] < 0 {
		return "", &CaptureNotFoundError{Group: name}
	}
	return text[m[2*i]:m[2*i+1]], nil
}
