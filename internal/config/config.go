package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"sift/internal/apperr"
	"sift/internal/tiers"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directory roots sift reads from and writes to.
type Paths struct {
	Incoming      string `toml:"incoming"`
	OutgoingRoot  string `toml:"outgoing_root"`
	MetadataCache string `toml:"metadata_cache"`
	LogDir        string `toml:"log_dir"`
}

// IO controls how files reach the outgoing root.
type IO struct {
	Mode              string `toml:"mode"`
	Mkdirs            bool   `toml:"mkdirs"`
	DedupeOnCollision bool   `toml:"dedupe_on_collision"`
	// StrictExistingScan searches the whole tier subtree, not just the
	// destination directory, for an already processed copy.
	StrictExistingScan bool `toml:"strict_existing_scan"`
	ChunkSizeBytes     int  `toml:"chunk_size_bytes"`
}

// FFprobe describes the probe command. The media path is appended to Args.
type FFprobe struct {
	Bin            string   `toml:"bin"`
	Args           []string `toml:"args"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Classification holds the thresholds and patterns used to derive facts and
// media types.
type Classification struct {
	MediaTypeStrategy        string         `toml:"media_type_strategy"`
	TVSxERegex               string         `toml:"tv_sxe_regex"`
	EnableSeasonEpisodeWords bool           `toml:"enable_season_episode_words"`
	TVSeasonEpisodeRegex     string         `toml:"tv_season_episode_regex"`
	SeriesFolders            []string       `toml:"series_folders"`
	MovieFolders             []string       `toml:"movie_folders"`
	ProblemAudioCodecs       []string       `toml:"problem_audio_codecs"`
	ProblemAudioProfileRegex []string       `toml:"problem_audio_profile_regex"`
	HDRColorTransfer         []string       `toml:"hdr_color_transfer"`
	HDRSideDataRegex         []string       `toml:"hdr_side_data_regex"`
	Horizontal4KThreshold    int            `toml:"horizontal_4k_threshold"`
	VerticalThresholds       map[string]int `toml:"vertical_thresholds"`
}

// Naming configures rendered file names.
type Naming struct {
	MovieTemplate  string            `toml:"movie_template"`
	TVTemplate     string            `toml:"tv_template"`
	HDRSep         string            `toml:"hdr_sep"`
	FlagsSep       string            `toml:"flags_sep"`
	FallbackToStem bool              `toml:"fallback_to_stem"`
	VCodecMap      map[string]string `toml:"vcodec_map"`
	ACodecMap      map[string]string `toml:"acodec_map"`
	Sanitize       bool              `toml:"sanitize"`
	MaxFilenameLen int               `toml:"max_filename_len"`
}

// Tier is one [[tier_model.tier]] table as written in the config file.
type Tier struct {
	ID          string         `toml:"id"`
	Folder      string         `toml:"folder"`
	Description string         `toml:"description"`
	Requires    map[string]any `toml:"requires"`
	Flags       []string       `toml:"flags"`
}

// TierModel lists tiers in evaluation order.
type TierModel struct {
	FallbackTier string `toml:"fallback_tier"`
	Tiers        []Tier `toml:"tier"`
}

// Flags configures presentational flags added to rendered names.
type Flags struct {
	EnableHFRFlag        bool             `toml:"enable_hfr_flag"`
	HFRFPSThreshold      float64          `toml:"hfr_fps_threshold"`
	HFRFlagName          string           `toml:"hfr_flag_name"`
	EnableLowBitrateFlag bool             `toml:"enable_low_bitrate_flag"`
	LowBitrateThresholds map[string]int64 `toml:"low_bitrate_thresholds"`
	LowBitrateFlagName   string           `toml:"low_bitrate_flag_name"`
	// JudgementFlags are tier flags kept out of file names.
	JudgementFlags []string `toml:"judgement_flags"`
}

// SampleDetection configures the variant grouper.
type SampleDetection struct {
	Enabled              bool    `toml:"enabled"`
	MinDurationSeconds   float64 `toml:"min_duration_s"`
	PreferLongestVariant bool    `toml:"prefer_longest_variant"`
	MinVideoStreams      int     `toml:"min_video_streams"`
}

// Reporting configures transfer report artifacts.
type Reporting struct {
	WriteJSONLReport bool   `toml:"write_jsonl_report"`
	ReportPath       string `toml:"report_path"`
	HistoryDB        string `toml:"history_db"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Config encapsulates all configuration values for sift.
type Config struct {
	Paths           Paths           `toml:"paths"`
	IO              IO              `toml:"io"`
	FFprobe         FFprobe         `toml:"ffprobe"`
	Classification  Classification  `toml:"classification"`
	Naming          Naming          `toml:"naming"`
	TierModel       TierModel       `toml:"tier_model"`
	Flags           Flags           `toml:"flags"`
	SampleDetection SampleDetection `toml:"sample_detection"`
	Reporting       Reporting       `toml:"reporting"`
	Logging         Logging         `toml:"logging"`

	tierTable tiers.Table
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sift/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and its tier rules parsed. Every failure is an
// apperr.ErrConfiguration.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, apperr.Wrap(apperr.ErrConfiguration, "config", "resolve", "", err)
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, apperr.Wrap(apperr.ErrConfiguration, "config", "open", resolvedPath, err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, apperr.Wrap(apperr.ErrConfiguration, "config", "parse", resolvedPath, err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, resolvedPath, exists, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Finalize normalizes and validates a config assembled in code, then parses
// its tier rules. Load calls it after decoding.
func (c *Config) Finalize() error {
	if err := c.normalize(); err != nil {
		return apperr.Wrap(apperr.ErrConfiguration, "config", "normalize", "", err)
	}
	if err := c.Validate(); err != nil {
		if errors.Is(err, errInvalidMode) {
			return apperr.Wrap(apperr.ErrInvalidMode, "config", "validate", "", err)
		}
		return apperr.Wrap(apperr.ErrConfiguration, "config", "validate", "", err)
	}
	table, err := buildTierTable(c.TierModel)
	if err != nil {
		return apperr.Wrap(apperr.ErrConfiguration, "config", "tier_model", "", err)
	}
	c.tierTable = table
	c.TierModel.FallbackTier = table.Fallback().ID
	return nil
}

// Tiers returns the parsed tier table. It is empty until Finalize succeeds.
func (c *Config) Tiers() tiers.Table {
	return c.tierTable
}

// ScanCachePath returns the location of the scan cache file.
func (c *Config) ScanCachePath() string {
	return filepath.Join(c.Paths.MetadataCache, ScanCacheFileName)
}

// ScanCacheFileName is the scan cache file inside paths.metadata_cache.
const ScanCacheFileName = "scan.json"

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sift.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return pathValue, nil
	}
	pathValue = os.ExpandEnv(pathValue)
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
// An existing file is never overwritten.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	if _, err := file.WriteString(sampleConfig); err != nil {
		file.Close()
		return fmt.Errorf("write sample config: %w", err)
	}
	return file.Close()
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}
