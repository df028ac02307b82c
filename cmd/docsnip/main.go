// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docsnip CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docsnip/internal/config"
	"github.com/pdiddy/docsnip/internal/logging"
	"github.com/pdiddy/docsnip/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is loaded before any subcommand runs.
var cfg *types.Config

// rootCmd is the base command for the docsnip CLI.
var rootCmd = &cobra.Command{
	Use:   "docsnip",
	Short: "Keep documentation snippets in sync with source code",
	Long: `docsnip extracts labeled snippets from source files and writes them into
documents between matching markers.

Mark a snippet in code:

    // 📖 #START <id:adding_numbers>
    //! fn add(a: i32, b: i32) -> i32 { a + b }
    // 📖 #END

and its destination in a document:

    <!-- 📖adding_numbers -->
    <!-- adding_numbers📖 -->

Then run "docsnip replace" to copy the snippet in, or "docsnip collect" to
export every snippet.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docsnip.yaml or $XDG_CONFIG_HOME/docsnip/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", logging.DefaultLevel, "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().Int("workers", 0, "files processed concurrently (0 uses the number of CPUs)")

	bindFlags()
}

func bindFlags() {
	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
}

func initConfig(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	if err := logging.Setup(level, os.Stderr); err != nil {
		return err
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	loaded, err := config.Load(viper.GetViper(), cfgFile, wd)
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
