package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func init() {
	// Report violations by their TOML key.
	validation.ErrorTag = "toml"
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	sections := []struct {
		name string
		fn   func() error
	}{
		{"paths", c.Paths.validate},
		{"io", c.IO.validate},
		{"ffprobe", c.FFprobe.validate},
		{"classification", c.Classification.validate},
		{"naming", c.Naming.validate},
		{"tier_model", c.TierModel.validate},
		{"flags", c.Flags.validate},
		{"sample_detection", c.SampleDetection.validate},
		{"reporting", c.Reporting.validate},
		{"logging", c.Logging.validate},
	}
	for _, section := range sections {
		if err := section.fn(); err != nil {
			return fmt.Errorf("%s: %w", section.name, err)
		}
	}
	return nil
}

func (p *Paths) validate() error {
	if err := validation.ValidateStruct(p,
		validation.Field(&p.Incoming, validation.Required.Error("is required (create a config with 'sift config init')")),
		validation.Field(&p.OutgoingRoot, validation.Required),
		validation.Field(&p.MetadataCache, validation.Required),
	); err != nil {
		return err
	}
	if p.Incoming == p.OutgoingRoot {
		return errors.New("incoming and outgoing_root must differ")
	}
	return nil
}

// errInvalidMode lets Finalize report a bad io.mode with its own exit code.
var errInvalidMode = errors.New("must be 'copy' or 'move'")

func (o *IO) validate() error {
	if o.Mode != ioModeCopy && o.Mode != ioModeMove {
		return fmt.Errorf("mode: %q %w", o.Mode, errInvalidMode)
	}
	return validation.ValidateStruct(o,
		validation.Field(&o.ChunkSizeBytes, validation.Min(minimumChunkSizeBytes)),
	)
}

func (f *FFprobe) validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Bin, validation.Required),
		validation.Field(&f.TimeoutSeconds, validation.Min(0)),
	)
}

func (c *Classification) validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MediaTypeStrategy, validation.Required,
			validation.In(mediaTypeStrategyFolder, mediaTypeStrategySxE, mediaTypeStrategyGuess).Error("must be 'folder', 'sxe', or 'guess'")),
		validation.Field(&c.TVSxERegex, validation.By(compiles)),
		validation.Field(&c.TVSeasonEpisodeRegex, validation.By(compiles)),
		validation.Field(&c.Horizontal4KThreshold, validation.Min(1)),
		validation.Field(&c.VerticalThresholds, validation.By(validVerticalThresholds)),
	)
}

func (n *Naming) validate() error {
	return validation.ValidateStruct(n,
		validation.Field(&n.MovieTemplate, validation.Required),
		validation.Field(&n.TVTemplate, validation.Required),
		validation.Field(&n.MaxFilenameLen, validation.When(n.MaxFilenameLen != 0, validation.Min(minimumMaxFilenameLen))),
	)
}

func (t *TierModel) validate() error {
	if len(t.Tiers) == 0 {
		return errors.New("at least one [[tier_model.tier]] is required")
	}
	for i := range t.Tiers {
		tier := &t.Tiers[i]
		err := validation.ValidateStruct(tier,
			validation.Field(&tier.ID, validation.Required),
			validation.Field(&tier.Folder, validation.Required, validation.By(singleSegment)),
		)
		if err != nil {
			return fmt.Errorf("tier %d: %w", i+1, err)
		}
	}
	return nil
}

func (f *Flags) validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.HFRFPSThreshold, validation.When(f.EnableHFRFlag, validation.Min(0.0))),
		validation.Field(&f.HFRFlagName, validation.When(f.EnableHFRFlag, validation.Required)),
		validation.Field(&f.LowBitrateFlagName, validation.When(f.EnableLowBitrateFlag, validation.Required)),
		validation.Field(&f.LowBitrateThresholds, validation.Each(validation.Min(int64(0)))),
	)
}

func (s *SampleDetection) validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.MinDurationSeconds, validation.Min(0.0)),
		validation.Field(&s.MinVideoStreams, validation.Min(0)),
	)
}

func (r *Reporting) validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ReportPath, validation.When(r.WriteJSONLReport, validation.Required)),
	)
}

func (l *Logging) validate() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.Format, validation.In("console", "json")),
		validation.Field(&l.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&l.MaxSizeMB, validation.Min(0)),
		validation.Field(&l.MaxBackups, validation.Min(0)),
	)
}

func compiles(value any) error {
	expr, _ := value.(string)
	if _, err := regexp.Compile(expr); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	return nil
}

func validVerticalThresholds(value any) error {
	thresholds, _ := value.(map[string]int)
	for bucket, height := range thresholds {
		switch bucket {
		case resolution2160p, resolution1080p, resolution720p:
		default:
			return fmt.Errorf("unknown bucket %q (use 2160p, 1080p, 720p)", bucket)
		}
		if height <= 0 {
			return fmt.Errorf("%s must be positive", bucket)
		}
	}
	if thresholds[resolution2160p] < thresholds[resolution1080p] || thresholds[resolution1080p] < thresholds[resolution720p] {
		return errors.New("thresholds must descend from 2160p to 720p")
	}
	return nil
}

func singleSegment(value any) error {
	folder, _ := value.(string)
	if folder == "." || folder == ".." || strings.ContainsAny(folder, `/\`) || filepath.Base(folder) != folder {
		return errors.New("must be a single directory name")
	}
	return nil
}
