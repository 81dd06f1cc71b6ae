package config

const (
	defaultMetadataCache      = "~/.cache/sift"
	defaultIOMode             = "copy"
	defaultChunkSizeBytes     = 1024 * 1024
	defaultFFprobeBin         = "ffprobe"
	defaultFFprobeTimeout     = 120
	defaultMediaTypeStrategy  = "sxe"
	defaultTVSxERegex         = `(?i)\bs\s*\d{1,2}\s*[._ -]?\s*e\s*\d{1,3}\b`
	defaultTVSeasonEpisodeRe  = `(?i)\bseason\s*\d{1,2}\b.*\bepisode\s*\d{1,3}\b`
	defaultHorizontal4K       = 3800
	defaultMovieTemplate      = "{title} ({year}) [{res}{hdr_sep}{hdr} {vcodec_tag} {audio_tag}{flags_sep}{flags}].{ext}"
	defaultTVTemplate         = "{show} - S{season2}E{episode2} [{res}{hdr_sep}{hdr} {vcodec_tag} {audio_tag}{flags_sep}{flags}].{ext}"
	defaultMaxFilenameLen     = 200
	defaultHFRThreshold       = 30.0
	defaultHFRFlagName        = "HFR"
	defaultLowBitrateFlagName = "LOW_BR"
	defaultMinDurationSeconds = 300
	defaultMinVideoStreams    = 1
	defaultReportPath         = "~/.local/share/sift/reports/transfer.jsonl"
	defaultHistoryDB          = "~/.local/share/sift/history.db"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogMaxSizeMB       = 50
	defaultLogMaxBackups      = 5
	mediaTypeStrategyFolder   = "folder"
	mediaTypeStrategySxE      = "sxe"
	mediaTypeStrategyGuess    = "guess"
	ioModeCopy                = "copy"
	ioModeMove                = "move"
	resolution2160p           = "2160p"
	resolution1080p           = "1080p"
	resolution720p            = "720p"
	defaultVertical2160p      = 2000
	defaultVertical1080p      = 1000
	defaultVertical720p       = 700
	defaultLowBitrate2160pBps = 15_000_000
	defaultLowBitrate1080pBps = 5_000_000
	defaultLowBitrate720pBps  = 2_500_000
	minimumChunkSizeBytes     = 4096
	minimumMaxFilenameLen     = 16
)

// Default returns a Config populated with repository defaults. Lists, maps,
// and the tier model are filled in by normalization when the config file
// leaves them unset, so decoding never merges into them.
func Default() Config {
	return Config{
		Paths: Paths{
			MetadataCache: defaultMetadataCache,
		},
		IO: IO{
			Mode:              defaultIOMode,
			Mkdirs:            true,
			DedupeOnCollision: true,
			ChunkSizeBytes:    defaultChunkSizeBytes,
		},
		FFprobe: FFprobe{
			Bin:            defaultFFprobeBin,
			TimeoutSeconds: defaultFFprobeTimeout,
		},
		Classification: Classification{
			MediaTypeStrategy:     defaultMediaTypeStrategy,
			TVSxERegex:            defaultTVSxERegex,
			TVSeasonEpisodeRegex:  defaultTVSeasonEpisodeRe,
			Horizontal4KThreshold: defaultHorizontal4K,
		},
		Naming: Naming{
			MovieTemplate:  defaultMovieTemplate,
			TVTemplate:     defaultTVTemplate,
			HDRSep:         " ",
			FlagsSep:       " ",
			FallbackToStem: true,
			Sanitize:       true,
			MaxFilenameLen: defaultMaxFilenameLen,
		},
		Flags: Flags{
			EnableHFRFlag:      true,
			HFRFPSThreshold:    defaultHFRThreshold,
			HFRFlagName:        defaultHFRFlagName,
			LowBitrateFlagName: defaultLowBitrateFlagName,
		},
		SampleDetection: SampleDetection{
			MinDurationSeconds:   defaultMinDurationSeconds,
			PreferLongestVariant: true,
			MinVideoStreams:      defaultMinVideoStreams,
		},
		Reporting: Reporting{
			ReportPath: defaultReportPath,
			HistoryDB:  defaultHistoryDB,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
		},
	}
}

func defaultFFprobeArgs() []string {
	return []string{"-v", "error", "-print_format", "json", "-show_format", "-show_streams"}
}

func defaultSeriesFolders() []string { return []string{"tv", "shows", "series"} }

func defaultMovieFolders() []string { return []string{"movie", "movies", "film", "films"} }

func defaultProblemAudioCodecs() []string { return []string{"truehd"} }

func defaultProblemAudioProfileRegex() []string { return []string{`dts-hd ma`, `\bdts:x\b`} }

func defaultHDRColorTransfer() []string { return []string{"smpte2084", "arib-std-b67"} }

func defaultHDRSideDataRegex() []string {
	return []string{`dolby vision`, `dovi`, `mastering display`, `content light level`, `hdr10`}
}

func defaultVerticalThresholds() map[string]int {
	return map[string]int{
		resolution2160p: defaultVertical2160p,
		resolution1080p: defaultVertical1080p,
		resolution720p:  defaultVertical720p,
	}
}

func defaultVCodecMap() map[string]string {
	return map[string]string{
		"hevc":       "HEVC",
		"h264":       "H264",
		"av1":        "AV1",
		"vp9":        "VP9",
		"mpeg2video": "MPEG2",
		"vc1":        "VC1",
	}
}

func defaultACodecMap() map[string]string {
	return map[string]string{
		"aac":    "AAC",
		"ac3":    "AC3",
		"eac3":   "EAC3",
		"dts":    "DTS",
		"truehd": "TrueHD",
		"flac":   "FLAC",
		"opus":   "Opus",
		"mp3":    "MP3",
	}
}

func defaultLowBitrateThresholds() map[string]int64 {
	return map[string]int64{
		resolution2160p: defaultLowBitrate2160pBps,
		resolution1080p: defaultLowBitrate1080pBps,
		resolution720p:  defaultLowBitrate720pBps,
	}
}

func defaultJudgementFlags() []string {
	return []string{"REPLACE_SOON", "REPLACE", "INCOMPATIBLE", "REVIEW", "OK", "KEEP"}
}

func defaultTiers() []Tier {
	return []Tier{
		{
			ID:          "T1",
			Folder:      "T1_Reference",
			Description: "UHD HDR reference copies",
			Requires:    map[string]any{"res": resolution2160p, "hdr": true},
			Flags:       []string{"REF", "KEEP"},
		},
		{
			ID:          "T2",
			Folder:      "T2_Premium",
			Description: "UHD or HD with surround audio",
			Requires: map[string]any{
				"res":                []any{resolution2160p, resolution1080p},
				"min_audio_channels": map[string]any{"min": int64(6)},
				"problem_audio":      false,
			},
			Flags: []string{"OK"},
		},
		{
			ID:          "T3",
			Folder:      "T3_Standard",
			Description: "HD with compatible audio",
			Requires: map[string]any{
				"res":           []any{resolution1080p, resolution720p},
				"problem_audio": false,
			},
		},
		{
			ID:          "T4",
			Folder:      "T4_Replace",
			Description: "Low quality; fallback tier",
			Requires:    map[string]any{"res": "SD"},
			Flags:       []string{"REPLACE_SOON"},
		},
		{
			ID:          "T5",
			Folder:      "T5_Problem",
			Description: "Audio that needs conversion before playback",
			Requires:    map[string]any{"problem_audio": true},
			Flags:       []string{"INCOMPATIBLE"},
		},
	}
}
