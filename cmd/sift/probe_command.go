package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"sift/internal/apperr"
	"sift/internal/config"
	"sift/internal/facts"
	"sift/internal/inventory"
	"sift/internal/media/ffprobe"
	"sift/internal/mediatype"
	"sift/internal/naming"
)

type probeOutput struct {
	Path         string          `json:"path"`
	RelPath      string          `json:"relpath"`
	Summary      ffprobe.Summary `json:"ffprobe"`
	Facts        facts.Facts     `json:"facts"`
	MediaType    mediatype.Kind  `json:"media_type"`
	TierID       string          `json:"tier_id"`
	TierFolder   string          `json:"tier_folder"`
	ProposedName string          `json:"proposed_name,omitempty"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Probe one file and show how it would be routed and named",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			summary, probeErr := inventory.ProbeSummary(cmd.Context(), cfg.FFprobe, path)
			item := inventory.Item{
				RelPath: probeRelPath(cfg.Paths.Incoming, path),
				Path:    path,
				FFprobe: summary,
			}
			route := inventory.NewRouter(cfg, logger).Route(item)
			output := probeOutput{
				Path:       path,
				RelPath:    item.RelPath,
				Summary:    summary,
				Facts:      route.Facts,
				MediaType:  route.MediaType,
				TierID:     route.Tier.ID,
				TierFolder: route.Tier.Folder,
			}
			name, err := naming.NewRenderer(cfg.Naming, cfg.Flags).Render(naming.Input{
				RelPath: item.RelPath,
				Summary: &item.FFprobe,
				Facts:   route.Facts,
				Tier:    route.Tier,
			})
			if err != nil && !errors.Is(err, naming.ErrMissingRelPath) {
				return apperr.Wrap(apperr.ErrProbe, "probe", "name", path, err)
			}
			output.ProposedName = name

			if err := writeJSON(cmd, output); err != nil {
				return err
			}
			return probeErr
		},
	}
}

// probeRelPath names the file relative to incoming when it lives there so
// folder-based classification sees the same path a scan would.
func probeRelPath(incoming, path string) string {
	if rel, err := filepath.Rel(incoming, path); err == nil && filepath.IsLocal(rel) {
		return filepath.ToSlash(rel)
	}
	return filepath.Base(path)
}

