package commands

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/saltboot/saltboot/pkg/journal"
)

func newHistoryCommand(f *rootFlags) *cobra.Command {
	var (
		limit      int
		runID      string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded bootstrap runs",
		Long: `List the runs recorded in the journal under the data directory,
newest first. With --run, show the per-phase results of one run.`,
		Example: `  # The last 20 runs
  saltboot history

  # Phase results for one run
  saltboot history --run 2f1c9a7e-... --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			jnl, err := journal.Open(ctx, filepath.Join(f.dataDir, "saltboot.db"))
			if err != nil {
				return fmt.Errorf("failed to open run journal: %w", err)
			}
			defer jnl.Close()

			out := cmd.OutOrStdout()

			if runID != "" {
				results, err := jnl.PhaseResults(ctx, runID)
				if err != nil {
					return fmt.Errorf("failed to read phase results: %w", err)
				}
				if jsonOutput {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(results)
				}
				for _, r := range results {
					fmt.Fprintf(out, "%-16s %-10s %-40s %6dms", r.Phase, r.Status, r.Handler, r.DurationMS)
					if r.Error != nil {
						fmt.Fprintf(out, "  %s", *r.Error)
					}
					fmt.Fprintln(out)
				}
				return nil
			}

			runs, err := jnl.ListRuns(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			for _, run := range runs {
				target := run.Distro
				if run.Version != "" {
					target += " " + run.Version
				}
				mode := run.Channel
				if run.Rev != "" {
					mode += " " + run.Rev
				}
				fmt.Fprintf(out, "%s  %-9s  exit=%d  %-22s  %-14s  %s\n",
					run.StartedAt.Format(time.RFC3339), run.Status, run.ExitCode, target, mode, run.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "show phase results for one run id")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	return cmd
}
