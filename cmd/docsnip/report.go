// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"

	"github.com/pdiddy/docsnip/internal/logging"
	"github.com/pdiddy/docsnip/pkg/types"
)

var (
	errNothingToReplace = errors.New("no marker pairs to replace")
	errFinishedWithErrs = errors.New("finished with errors")
)

// blockPreviewLen caps the block column width.
const blockPreviewLen = 60

// renderReplaceTable writes one row per equal or replaced result. Not-found
// results are omitted and errors are logged instead of shown. It returns the
// number of rows written.
func renderReplaceTable(w io.Writer, root string, results []types.ReplaceResult) (int, error) {
	log := logging.Get("report")

	data := pterm.TableData{{"ID", "STATUS", "PATH", "BLOCK"}}
	for _, r := range results {
		switch r.Status.Kind {
		case types.ReplaceNotFound:
			continue
		case types.ReplaceError:
			log.Error().Str("path", r.Path).Str("id", r.Status.ID).Msg(r.Status.Message)
			continue
		}
		data = append(data, []string{
			r.Status.ID,
			statusStyle(r.Status.Kind).Sprint(r.Status.String()),
			displayPath(root, r.Path),
			preview(r.Status.Block),
		})
	}

	rows := len(data) - 1
	if rows == 0 {
		return 0, nil
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return 0, fmt.Errorf("rendering table: %w", err)
	}
	_, err = fmt.Fprintln(w, table)
	return rows, err
}

func statusStyle(kind types.ReplaceKind) *pterm.Style {
	switch kind {
	case types.ReplaceReplaced:
		return pterm.NewStyle(pterm.FgGreen)
	case types.ReplaceEqual:
		return pterm.NewStyle(pterm.FgGray)
	default:
		return pterm.NewStyle(pterm.FgRed)
	}
}

// displayPath shows path relative to root when it lies below it.
func displayPath(root, path string) string {
	if root == "" {
		return path
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(abs, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	if rel == "." {
		return filepath.Base(path)
	}
	return rel
}

// preview returns the first line of block, shortened to blockPreviewLen runes.
func preview(block string) string {
	line, _, more := strings.Cut(block, "\n")
	r := []rune(line)
	if len(r) > blockPreviewLen {
		return string(r[:blockPreviewLen-3]) + "..."
	}
	if more {
		return line + " ..."
	}
	return line
}
