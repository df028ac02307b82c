// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pdiddy/docsnip/internal/store"
	"github.com/pdiddy/docsnip/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [term]",
	Short: "Look up snippets saved by collect --format sqlite",
	Long: `Query reads the snippet database written by "collect --format sqlite".
With a term it lists snippets whose ID or body contains the term; without one
it lists every snippet. Use --id to print a single snippet body.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().String("db", store.DefaultFile, "snippet database file")
	queryCmd.Flags().String("id", "", "print the body of the snippet with this ID")
	queryCmd.Flags().Int("limit", 0, "maximum results (0 for all)")
	queryCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	id, _ := cmd.Flags().GetString("id")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no snippet database at %s: run collect --format sqlite first", dbPath)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	if id != "" {
		r, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, r.Data)
		return nil
	}

	var results []types.ContentResult
	if len(args) > 0 {
		results, err = s.Search(ctx, args[0], limit)
	} else {
		results, err = s.All(ctx)
	}
	if err != nil {
		return err
	}
	return formatQueryOutput(out, results, jsonOutput)
}

func formatQueryOutput(w io.Writer, results []types.ContentResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No snippets found.")
		return nil
	}

	data := pterm.TableData{{"ID", "SOURCE", "BLOCK"}}
	for _, r := range results {
		data = append(data, []string{r.ID, r.Source, preview(r.Data)})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	fmt.Fprintln(w, table)
	fmt.Fprintf(w, "\n%d snippets\n", len(results))
	return nil
}
