package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIO()
	c.normalizeFFprobe()
	c.normalizeClassification()
	c.normalizeNaming()
	c.normalizeTierModel()
	c.normalizeFlags()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.Incoming, err = expandPath(c.Paths.Incoming); err != nil {
		return fmt.Errorf("paths.incoming: %w", err)
	}
	if c.Paths.OutgoingRoot, err = expandPath(c.Paths.OutgoingRoot); err != nil {
		return fmt.Errorf("paths.outgoing_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.MetadataCache) == "" {
		c.Paths.MetadataCache = defaultMetadataCache
	}
	if c.Paths.MetadataCache, err = expandPath(c.Paths.MetadataCache); err != nil {
		return fmt.Errorf("paths.metadata_cache: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Reporting.ReportPath, err = expandPath(c.Reporting.ReportPath); err != nil {
		return fmt.Errorf("reporting.report_path: %w", err)
	}
	if c.Reporting.HistoryDB, err = expandPath(c.Reporting.HistoryDB); err != nil {
		return fmt.Errorf("reporting.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeIO() {
	c.IO.Mode = strings.ToLower(strings.TrimSpace(c.IO.Mode))
	if c.IO.Mode == "" {
		c.IO.Mode = defaultIOMode
	}
	if c.IO.ChunkSizeBytes == 0 {
		c.IO.ChunkSizeBytes = defaultChunkSizeBytes
	}
}

func (c *Config) normalizeFFprobe() {
	c.FFprobe.Bin = strings.TrimSpace(c.FFprobe.Bin)
	if c.FFprobe.Bin == "" {
		c.FFprobe.Bin = defaultFFprobeBin
	}
	if c.FFprobe.Args == nil {
		c.FFprobe.Args = defaultFFprobeArgs()
	}
}

func (c *Config) normalizeClassification() {
	cls := &c.Classification
	cls.MediaTypeStrategy = strings.ToLower(strings.TrimSpace(cls.MediaTypeStrategy))
	if cls.MediaTypeStrategy == "" {
		cls.MediaTypeStrategy = defaultMediaTypeStrategy
	}
	if strings.TrimSpace(cls.TVSxERegex) == "" {
		cls.TVSxERegex = defaultTVSxERegex
	}
	if strings.TrimSpace(cls.TVSeasonEpisodeRegex) == "" {
		cls.TVSeasonEpisodeRegex = defaultTVSeasonEpisodeRe
	}
	if cls.SeriesFolders == nil {
		cls.SeriesFolders = defaultSeriesFolders()
	}
	if cls.MovieFolders == nil {
		cls.MovieFolders = defaultMovieFolders()
	}
	cls.SeriesFolders = lowerAll(cls.SeriesFolders)
	cls.MovieFolders = lowerAll(cls.MovieFolders)
	if cls.ProblemAudioCodecs == nil {
		cls.ProblemAudioCodecs = defaultProblemAudioCodecs()
	}
	if cls.ProblemAudioProfileRegex == nil {
		cls.ProblemAudioProfileRegex = defaultProblemAudioProfileRegex()
	}
	if cls.HDRColorTransfer == nil {
		cls.HDRColorTransfer = defaultHDRColorTransfer()
	}
	if cls.HDRSideDataRegex == nil {
		cls.HDRSideDataRegex = defaultHDRSideDataRegex()
	}
	if cls.Horizontal4KThreshold == 0 {
		cls.Horizontal4KThreshold = defaultHorizontal4K
	}
	defaults := defaultVerticalThresholds()
	if cls.VerticalThresholds == nil {
		cls.VerticalThresholds = defaults
	}
	for bucket, value := range defaults {
		if _, ok := cls.VerticalThresholds[bucket]; !ok {
			cls.VerticalThresholds[bucket] = value
		}
	}
}

func (c *Config) normalizeNaming() {
	if c.Naming.VCodecMap == nil {
		c.Naming.VCodecMap = defaultVCodecMap()
	}
	if c.Naming.ACodecMap == nil {
		c.Naming.ACodecMap = defaultACodecMap()
	}
	c.Naming.VCodecMap = lowerKeys(c.Naming.VCodecMap)
	c.Naming.ACodecMap = lowerKeys(c.Naming.ACodecMap)
}

func (c *Config) normalizeTierModel() {
	if len(c.TierModel.Tiers) == 0 {
		c.TierModel.Tiers = defaultTiers()
	}
	c.TierModel.FallbackTier = strings.TrimSpace(c.TierModel.FallbackTier)
	for i := range c.TierModel.Tiers {
		tier := &c.TierModel.Tiers[i]
		tier.ID = strings.TrimSpace(tier.ID)
		tier.Folder = strings.TrimSpace(tier.Folder)
		tier.Description = strings.TrimSpace(tier.Description)
	}
}

func (c *Config) normalizeFlags() {
	if strings.TrimSpace(c.Flags.HFRFlagName) == "" {
		c.Flags.HFRFlagName = defaultHFRFlagName
	}
	if strings.TrimSpace(c.Flags.LowBitrateFlagName) == "" {
		c.Flags.LowBitrateFlagName = defaultLowBitrateFlagName
	}
	if c.Flags.LowBitrateThresholds == nil {
		c.Flags.LowBitrateThresholds = defaultLowBitrateThresholds()
	}
	if c.Flags.JudgementFlags == nil {
		c.Flags.JudgementFlags = defaultJudgementFlags()
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}
