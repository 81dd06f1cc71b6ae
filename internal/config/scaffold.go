package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// MediaTypeDirs are the top-level directories under the outgoing root.
var MediaTypeDirs = []string{"movies", "tv"}

// PlannedFolders lists every directory EnsureDirectories creates, sorted.
func (c *Config) PlannedFolders() []string {
	set := map[string]struct{}{
		c.Paths.OutgoingRoot:  {},
		c.Paths.MetadataCache: {},
	}
	if c.Reporting.WriteJSONLReport && c.Reporting.ReportPath != "" {
		set[filepath.Dir(c.Reporting.ReportPath)] = struct{}{}
	}
	for _, mediaType := range MediaTypeDirs {
		base := filepath.Join(c.Paths.OutgoingRoot, mediaType)
		set[base] = struct{}{}
		for _, tier := range c.TierModel.Tiers {
			set[filepath.Join(base, tier.Folder)] = struct{}{}
		}
	}

	folders := make([]string, 0, len(set))
	for dir := range set {
		folders = append(folders, dir)
	}
	sort.Strings(folders)
	return folders
}

// EnsureDirectories creates the outgoing tree, cache, and report directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range c.PlannedFolders() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}
