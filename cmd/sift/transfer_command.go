package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sift/internal/apperr"
	"sift/internal/config"
	"sift/internal/ledger"
	"sift/internal/logging"
	"sift/internal/report"
	"sift/internal/runlock"
	"sift/internal/transfer"
)

func newTransferCommand(ctx *commandContext) *cobra.Command {
	var flags inventoryFlags
	var apply, dryRun, onlyOK, list, asJSON bool
	var reportPath, mode string

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Copy or move inventoried files into the tiered library",
		Long: "Builds (or reuses) the inventory and routes every item into\n" +
			"outgoing_root/<movies|tv>/<tier folder>. Nothing is written unless\n" +
			"--apply is given; --apply wins over --dry-run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			effectiveMode, err := transfer.ResolveMode(cfg.IO.Mode, mode)
			if err != nil {
				return err
			}
			effectiveDryRun := !apply

			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			if apply && dryRun {
				logger.Info("--apply overrides --dry-run")
			}

			if !effectiveDryRun {
				lock, err := runlock.Acquire(cfg.Paths.OutgoingRoot)
				if err != nil {
					return err
				}
				defer lock.Release()
				if cfg.IO.Mkdirs {
					if err := cfg.EnsureDirectories(); err != nil {
						return apperr.Wrap(apperr.ErrConfiguration, "transfer", "create folders", "", err)
					}
				}
			}

			_, inv, err := buildInventory(cmd.Context(), ctx, cfg, flags.options())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !asJSON {
				printInventoryLine(out, cfg, inv)
				switch {
				case effectiveDryRun && dryRun:
					fmt.Fprintln(out, "Transfer: DRY RUN (no filesystem changes)")
				case effectiveDryRun:
					fmt.Fprintln(out, "Transfer: DRY RUN (no filesystem changes; pass --apply to write)")
				}
			}

			runID := uuid.NewString()
			runCtx := logging.WithRunID(cmd.Context(), runID)
			started := time.Now()
			engine := transfer.NewEngine(cfg, logger)
			result, runErr := engine.Run(runCtx, inv.Items, transfer.Options{
				DryRun:      effectiveDryRun,
				OnlyOKProbe: onlyOK,
				Mode:        effectiveMode,
			})
			finished := time.Now()

			rep := report.New(runID, started, result)
			if err := writeArtifacts(runCtx, cfg, logger, rep, result, reportPath, finished); err != nil {
				return err
			}

			if asJSON {
				if err := writeJSON(cmd, rep); err != nil {
					return err
				}
			} else {
				printTransferSummary(out, result, finished.Sub(started))
				if list {
					fmt.Fprintln(out, renderDetailTable(result.Details))
				} else {
					printDetailLines(out, failedDetails(result.Details), shouldColorize(out))
				}
				if reportPath != "" {
					fmt.Fprintf(out, "Wrote transfer report: %s\n", reportPath)
				}
			}

			if runErr != nil {
				return runErr
			}
			if result.Failed > 0 {
				return apperr.Wrap(apperr.ErrTransferFailures, "transfer", "", fmt.Sprintf("%d item(s) failed (run %s)", result.Failed, runID), nil)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&apply, "apply", false, "Perform the copy or move")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan the transfer without touching the filesystem (the default; ignored with --apply)")
	cmd.Flags().BoolVar(&onlyOK, "only-ok-ffprobe", false, "Only transfer files whose probe succeeded")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a JSON transfer report to this path")
	cmd.Flags().StringVar(&mode, "mode", "", "Override io.mode (copy or move)")
	cmd.Flags().BoolVar(&list, "list", false, "List every item's outcome")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the transfer report as JSON")
	return cmd
}

// writeArtifacts writes the requested report, the JSONL log, and the history
// row. History failures are logged, never fatal.
func writeArtifacts(ctx context.Context, cfg *config.Config, logger *slog.Logger, rep report.Report, result transfer.Result, reportPath string, finished time.Time) error {
	if reportPath != "" {
		expanded, err := config.ExpandPath(reportPath)
		if err != nil {
			return fmt.Errorf("resolve report path: %w", err)
		}
		if err := report.WriteJSON(expanded, rep); err != nil {
			return err
		}
	}
	if cfg.Reporting.WriteJSONLReport {
		if err := report.AppendJSONL(cfg.Reporting.ReportPath, rep); err != nil {
			return err
		}
	}
	if cfg.Reporting.HistoryDB == "" {
		return nil
	}
	store, err := ledger.Open(ctx, cfg.Reporting.HistoryDB)
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete reporting.history_db if it was created by another version"),
			logging.String(logging.FieldImpact, "this run is missing from sift history"))
		return nil
	}
	defer store.Close()
	run := ledger.NewRun(rep.RunID, rep.StartedAt, finished, cfg.Paths.Incoming, cfg.Paths.OutgoingRoot, result)
	if err := store.Record(ctx, run, rep.Details); err != nil {
		logging.WarnWithContext(logger, "history write failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run is missing from sift history"))
	}
	return nil
}

func renderDetailTable(details []transfer.Detail) string {
	rows := make([][]string, 0, len(details))
	for _, d := range details {
		rows = append(rows, []string{
			d.RelPath,
			d.Action,
			orDash(d.TierID),
			orDash(d.ProposedName),
			orDash(d.Reason),
		})
	}
	return renderTable([]string{"File", "Action", "Tier", "Destination name", "Reason"}, rows, nil)
}

func failedDetails(details []transfer.Detail) []transfer.Detail {
	var failed []transfer.Detail
	for _, d := range details {
		if d.Action == transfer.ActionFail {
			failed = append(failed, d)
		}
	}
	return failed
}

func printDetailLines(out io.Writer, details []transfer.Detail, colorize bool) {
	for _, d := range details {
		message := orDash(d.Dst)
		if d.Reason != "" {
			message = d.Reason
		}
		fmt.Fprintln(out, renderStatusLine(d.Action, actionKind(d.Action), d.RelPath+": "+message, colorize))
	}
}
