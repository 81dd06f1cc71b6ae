package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sift/internal/apperr"
	"sift/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded transfer runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openLedger(cmd, ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No transfer runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortRunID(run.ID),
					humanize.Time(run.StartedAt),
					runModeLabel(run),
					strconv.Itoa(run.Copied + run.Moved),
					strconv.Itoa(run.Skipped),
					strconv.Itoa(run.Failed),
					humanize.IBytes(uint64(run.Bytes)),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Mode", "Done", "Skipped", "Failed", "Bytes"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the per-item outcome of one run (id prefixes work)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openLedger(cmd, ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			details, err := store.Details(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, map[string]any{"run": run, "details": details})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderKeyValues([][2]string{
				{"Run", run.ID},
				{"Started", run.StartedAt.Local().Format(time.DateTime)},
				{"Duration", run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()},
				{"Mode", runModeLabel(run)},
				{"Incoming", run.IncomingRoot},
				{"Outgoing root", run.OutgoingRoot},
				{"Counts", fmt.Sprintf("copied=%d moved=%d skipped=%d failed=%d", run.Copied, run.Moved, run.Skipped, run.Failed)},
				{"Bytes", humanize.IBytes(uint64(run.Bytes))},
			}))
			fmt.Fprintln(out, renderDetailTable(details))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run as JSON")
	return cmd
}

func openLedger(cmd *cobra.Command, ctx *commandContext) (*ledger.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Reporting.HistoryDB == "" {
		return nil, apperr.Wrap(apperr.ErrConfiguration, "history", "", "reporting.history_db is not set", nil)
	}
	return ledger.Open(cmd.Context(), cfg.Reporting.HistoryDB)
}

func runModeLabel(run ledger.Run) string {
	if run.DryRun {
		return run.Mode + " (dry run)"
	}
	return run.Mode
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
