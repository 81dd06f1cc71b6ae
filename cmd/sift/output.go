package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sift/internal/transfer"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTransferSummary(out io.Writer, result transfer.Result, elapsed time.Duration) {
	if result.DryRun {
		fmt.Fprintf(out, "Transfer summary (dry run, %s): planned=%d skipped=%d failed=%d\n",
			result.Mode, result.Planned(), result.Skipped, result.Failed)
		return
	}
	fmt.Fprintf(out, "Transfer summary: copied=%d moved=%d skipped=%d failed=%d (%s in %s)\n",
		result.Copied, result.Moved, result.Skipped, result.Failed,
		humanize.IBytes(uint64(result.Bytes())), elapsed.Round(time.Second))
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
