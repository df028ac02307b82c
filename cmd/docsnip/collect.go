// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docsnip/internal/docsync"
	"github.com/pdiddy/docsnip/internal/export"
	"github.com/pdiddy/docsnip/pkg/types"
)

var collectCmd = &cobra.Command{
	Use:   "collect [path]",
	Short: "Extract snippets from source files and export them",
	Long: `Collect scans every file under path (default: the current directory) for
marker-delimited snippets and exports them.

Without --format each snippet body is printed, or written to a file named
after its ID inside the --output directory. With --format the snippets are
serialized as json, yaml or toml to stdout or --output, or saved to a SQLite
database (sqlite).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().StringP("output", "o", "", "output file or directory (default: stdout)")
	collectCmd.Flags().StringP("format", "f", "", "export format: json, yaml, toml or sqlite")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")

	exporter := export.Exporter{
		Output: output,
		Format: types.Format(format),
		Stdout: cmd.OutOrStdout(),
	}
	if !exporter.Format.Valid() {
		return fmt.Errorf("unknown format %q: use json, yaml, toml or sqlite", format)
	}

	batch, err := docsync.Collect(cmd.Context(), root, *cfg, newProgress())
	if err != nil {
		return err
	}
	if len(batch.Results) == 0 {
		return fmt.Errorf("no snippets found in %s", root)
	}

	if err := exporter.Export(cmd.Context(), batch.Results); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "extracted: %d, skipped: %d, failed: %d, snippets: %d\n",
		batch.Extracted, batch.Skipped, len(batch.Failures), len(batch.Results))
	if batch.HasFailures() {
		return errFinishedWithErrs
	}
	return nil
}
