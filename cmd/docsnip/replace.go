// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docsnip/internal/discover"
	"github.com/pdiddy/docsnip/internal/docsync"
	"github.com/pdiddy/docsnip/internal/logging"
	"github.com/pdiddy/docsnip/internal/watch"
)

var replaceCmd = &cobra.Command{
	Use:   "replace [path] [target]",
	Short: "Write extracted snippets into documents between markers",
	Long: `Replace extracts snippets from path (default: the current directory) and
rewrites every document under target (default: path) that contains a marker
pair for a snippet ID. A document is written only when its content changes.

Use --dry-run to report what would change without writing, and --watch to
keep running and replace again whenever a file under path changes.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runReplace,
}

func init() {
	replaceCmd.Flags().Bool("dry-run", false, "report changes without writing files")
	replaceCmd.Flags().Bool("watch", false, "watch path and replace on every change")

	rootCmd.AddCommand(replaceCmd)
}

func runReplace(cmd *cobra.Command, args []string) error {
	opts := docsync.Options{Source: ".", Config: *cfg}
	if len(args) > 0 {
		opts.Source = args[0]
	}
	if len(args) > 1 {
		opts.Target = args[1]
	}
	opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
	watchMode, _ := cmd.Flags().GetBool("watch")

	out := cmd.OutOrStdout()
	if !watchMode {
		opts.Progress = newProgress()
		return replaceOnce(cmd.Context(), out, opts)
	}
	return replaceWatch(cmd.Context(), out, opts)
}

func replaceOnce(ctx context.Context, out io.Writer, opts docsync.Options) error {
	report, err := docsync.Run(ctx, opts)
	if err != nil {
		return err
	}

	target := opts.Target
	if target == "" {
		target = opts.Source
	}
	rows, err := renderReplaceTable(out, target, report.Results)
	if err != nil {
		return err
	}
	if report.HasErrors() {
		return errFinishedWithErrs
	}
	if rows == 0 {
		return errNothingToReplace
	}
	return nil
}

func replaceWatch(ctx context.Context, out io.Writer, opts docsync.Options) error {
	log := logging.Get("replace")

	collector, err := discover.New(opts.Source, opts.Config.Collector)
	if err != nil {
		return err
	}
	w, err := watch.New(collector.Root(), watch.WithSkip(collector.Ignored))
	if err != nil {
		return fmt.Errorf("watching %s: %w", opts.Source, err)
	}

	if err := replaceOnce(ctx, out, opts); err != nil {
		log.Warn().Err(err).Msg("replace run finished")
	}
	log.Info().Str("path", collector.Root()).Msg("watching for changes, press Ctrl+C to stop")

	return w.Run(ctx, func(ctx context.Context, paths []string) {
		log.Info().Int("changed", len(paths)).Msg("files changed, replacing")
		if err := replaceOnce(ctx, out, opts); err != nil {
			log.Warn().Err(err).Msg("replace run finished")
		}
	})
}
