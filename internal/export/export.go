// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes extracted snippets to standard output, to plain
// files, to a serialized document or to the snippet database.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docsnip/internal/logging"
	"github.com/pdiddy/docsnip/internal/store"
	"github.com/pdiddy/docsnip/pkg/types"
)

// baseName is the file name, without extension, used when Output is a
// directory.
const baseName = "docsnip"

// Exporter writes snippets according to Output and Format.
//
// With no format each snippet body is written on its own: to Stdout followed
// by a newline, or to a file named after its ID inside the Output directory.
// With a format the whole list is serialized once: to Stdout when Output is
// empty, else to Output, or to Output/docsnip.<ext> when Output has no
// extension. The sqlite format always writes a database file.
type Exporter struct {
	Output string
	Format types.Format
	Stdout io.Writer
}

// tomlDocument wraps the snippet list; TOML has no top-level arrays.
type tomlDocument struct {
	Snippets []types.ContentResult `toml:"snippets"`
}

// Export writes results.
func (e Exporter) Export(ctx context.Context, results []types.ContentResult) error {
	log := logging.Get("export")
	defer logging.OperationStart(log, "export")()

	if !e.Format.Valid() {
		return fmt.Errorf("unknown export format %q", e.Format)
	}

	switch e.Format {
	case types.FormatNone:
		return e.exportBodies(results)
	case types.FormatSQLite:
		return e.exportSQLite(ctx, results)
	}

	data, err := Marshal(e.Format, results)
	if err != nil {
		return err
	}
	if e.Output == "" {
		_, err := e.stdout().Write(data)
		return err
	}

	path := e.documentPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("snippets", len(results)).Msg("exported snippets")
	return nil
}

// Marshal serializes results in the given document format.
func Marshal(format types.Format, results []types.ContentResult) ([]byte, error) {
	if results == nil {
		results = []types.ContentResult{}
	}
	switch format {
	case types.FormatJSON:
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling JSON: %w", err)
		}
		return append(data, '\n'), nil
	case types.FormatYAML:
		data, err := yaml.Marshal(results)
		if err != nil {
			return nil, fmt.Errorf("marshaling YAML: %w", err)
		}
		return data, nil
	case types.FormatTOML:
		data, err := toml.Marshal(tomlDocument{Snippets: results})
		if err != nil {
			return nil, fmt.Errorf("marshaling TOML: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("format %q is not a document format", format)
	}
}

func (e Exporter) exportBodies(results []types.ContentResult) error {
	if e.Output == "" {
		w := e.stdout()
		for _, r := range results {
			if _, err := fmt.Fprintln(w, r.Data); err != nil {
				return err
			}
		}
		return nil
	}

	if err := os.MkdirAll(e.Output, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for _, r := range results {
		rel := filepath.FromSlash(r.ID)
		if !filepath.IsLocal(rel) {
			return fmt.Errorf("snippet id %q escapes the output directory", r.ID)
		}
		path := filepath.Join(e.Output, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(r.Data), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

func (e Exporter) exportSQLite(ctx context.Context, results []types.ContentResult) error {
	log := logging.Get("export")

	path := e.documentPath()
	if e.Output == "" {
		path = store.DefaultFile
	}

	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Save(ctx, results)
	if err != nil {
		return err
	}
	log.Info().
		Str("path", path).
		Int("inserted", summary.Inserted).
		Int("updated", summary.Updated).
		Int("unchanged", summary.Unchanged).
		Msg("saved snippets")
	return nil
}

// documentPath returns Output, or Output/docsnip.<ext> when Output has no
// extension.
func (e Exporter) documentPath() string {
	if filepath.Ext(e.Output) != "" {
		return e.Output
	}
	return filepath.Join(e.Output, baseName+"."+e.Format.Extension())
}

func (e Exporter) stdout() io.Writer {
	if e.Stdout != nil {
		return e.Stdout
	}
	return os.Stdout
}
