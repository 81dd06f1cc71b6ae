package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sift/internal/config"
	"sift/internal/tiers"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand(ctx))
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigFoldersCommand(ctx))

	return configCmd
}

func newConfigInitCommand(ctx *commandContext) *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" && ctx.configFlag != nil {
				target = strings.TrimSpace(*ctx.configFlag)
			}
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if _, err := os.Stat(target); err == nil {
				if !overwrite {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				}
				if err := os.Remove(target); err != nil {
					return fmt.Errorf("replace config: %w", err)
				}
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("check config path: %w", err)
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit [paths] incoming and outgoing_root, then run 'sift doctor'.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if !ctx.configExists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Tiers: %d (fallback %s)\n", len(cfg.Tiers().Defs()), cfg.Tiers().Fallback().ID)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, cfg)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderKeyValues([][2]string{
				{"Config", orDash(ctx.configPath)},
				{"Incoming", cfg.Paths.Incoming},
				{"Outgoing root", cfg.Paths.OutgoingRoot},
				{"Metadata cache", cfg.Paths.MetadataCache},
				{"Log dir", orDash(cfg.Paths.LogDir)},
				{"Mode", cfg.IO.Mode},
				{"Create folders", yesNo(cfg.IO.Mkdirs)},
				{"Dedupe on collision", yesNo(cfg.IO.DedupeOnCollision)},
				{"Strict existing scan", yesNo(cfg.IO.StrictExistingScan)},
				{"ffprobe", cfg.FFprobe.Bin},
				{"Media type strategy", cfg.Classification.MediaTypeStrategy},
				{"Sample detection", yesNo(cfg.SampleDetection.Enabled)},
				{"JSONL report", jsonlLabel(cfg)},
				{"History", orDash(cfg.Reporting.HistoryDB)},
			}))
			fmt.Fprintln(out, renderTierTable(cfg.Tiers()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the configuration as JSON")
	return cmd
}

func newConfigFoldersCommand(ctx *commandContext) *cobra.Command {
	var create bool
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "List (or create) the outgoing folder tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if create {
				if err := cfg.EnsureDirectories(); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			for _, dir := range cfg.PlannedFolders() {
				fmt.Fprintln(out, dir)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "Create the folders")
	return cmd
}

func jsonlLabel(cfg *config.Config) string {
	if !cfg.Reporting.WriteJSONLReport {
		return "disabled"
	}
	return cfg.Reporting.ReportPath
}

func renderTierTable(table tiers.Table) string {
	fallback := table.Fallback().ID
	rows := make([][]string, 0, len(table.Defs()))
	for i, def := range table.Defs() {
		id := def.ID
		if id == fallback {
			id += " (fallback)"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			id,
			def.Folder,
			orDash(describeRequires(def)),
			orDash(strings.Join(def.Flags, ", ")),
		})
	}
	return renderTable([]string{"#", "Tier", "Folder", "Requires", "Flags"}, rows, nil)
}

func describeRequires(def tiers.Def) string {
	parts := make([]string, 0, len(def.Requires))
	for _, req := range def.Requires {
		parts = append(parts, req.Key+"="+req.Rule.String())
	}
	return strings.Join(parts, " ")
}
