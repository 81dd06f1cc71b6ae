package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sift/internal/apperr"
	"sift/internal/config"
	"sift/internal/inventory"
)

type inventoryFlags struct {
	rescan  bool
	onlyExt []string
	limit   int
}

func (f *inventoryFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.rescan, "rescan", false, "Force a fresh scan and probe, replacing the cache")
	cmd.Flags().StringSliceVar(&f.onlyExt, "only-ext", nil, "Restrict scanning to these extensions (repeatable)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Cap how many files are probed (0 means no cap)")
}

func (f *inventoryFlags) options() inventory.BuildOptions {
	return inventory.BuildOptions{Rescan: f.rescan, OnlyExt: f.onlyExt, Limit: f.limit}
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var flags inventoryFlags
	var list bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Probe the incoming directory and refresh the scan cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.IO.Mkdirs {
				if err := cfg.EnsureDirectories(); err != nil {
					return apperr.Wrap(apperr.ErrConfiguration, "scan", "create folders", "", err)
				}
			}
			builder, inv, err := buildInventory(cmd.Context(), ctx, cfg, flags.options())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, inv)
			}
			out := cmd.OutOrStdout()
			printInventoryLine(out, cfg, inv)
			if list {
				fmt.Fprintln(out, renderInventoryTable(builder.Router(), inv))
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&list, "list", false, "List every item with its route and proposed name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the inventory as JSON")
	return cmd
}

func buildInventory(ctx context.Context, cc *commandContext, cfg *config.Config, opts inventory.BuildOptions) (*inventory.Builder, *inventory.Inventory, error) {
	logger, err := cc.logger()
	if err != nil {
		return nil, nil, err
	}
	builder := inventory.NewBuilder(cfg, nil, logger)
	inv, err := builder.Build(ctx, opts)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.ErrInventory, "inventory", "build", "", err)
	}
	return builder, inv, nil
}

func printInventoryLine(out io.Writer, cfg *config.Config, inv *inventory.Inventory) {
	source := "scanned"
	if inv.FromCache {
		source = "cached"
	}
	fmt.Fprintf(out, "Inventory: %d files (errors=%d, %s) -> %s\n", inv.Count, inv.Errors, source, cfg.ScanCachePath())
}

func renderInventoryTable(router *inventory.Router, inv *inventory.Inventory) string {
	rows := make([][]string, 0, len(inv.Items))
	for _, item := range inv.Items {
		route := router.Route(item)
		probe := "ok"
		if !item.FFprobe.OK {
			probe = "failed"
		}
		rows = append(rows, []string{
			item.RelPath,
			probe,
			string(route.MediaType),
			route.Tier.ID,
			route.Facts.Res,
			orDash(item.ProposedName),
			orDash(item.SkipReason),
		})
	}
	return renderTable(
		[]string{"File", "Probe", "Type", "Tier", "Res", "Proposed name", "Skip"},
		rows,
		nil,
	)
}
