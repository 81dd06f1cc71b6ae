package testsupport

import (
	"path/filepath"
	"testing"

	"sift/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a finalized config seeded with unique temp directories
// per test. Options run before normalization and validation.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Incoming = filepath.Join(base, "incoming")
	cfgVal.Paths.OutgoingRoot = filepath.Join(base, "library")
	cfgVal.Paths.MetadataCache = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Reporting.ReportPath = filepath.Join(base, "reports", "transfer.jsonl")
	cfgVal.Reporting.HistoryDB = filepath.Join(base, "history.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Finalize(); err != nil {
		t.Fatalf("finalize test config: %v", err)
	}
	return builder.cfg
}

// WithConfig applies an arbitrary mutation to the test config.
func WithConfig(fn func(*config.Config)) ConfigOption {
	return func(b *configBuilder) {
		fn(b.cfg)
	}
}

// WithMode sets io.mode.
func WithMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.IO.Mode = mode
	}
}

// WithTiers replaces the tier model.
func WithTiers(fallback string, tiers ...config.Tier) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TierModel = config.TierModel{FallbackTier: fallback, Tiers: tiers}
	}
}

// WithSampleDetection enables the variant grouper with the given thresholds.
func WithSampleDetection(minDuration float64, preferLongest bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SampleDetection.Enabled = true
		b.cfg.SampleDetection.MinDurationSeconds = minDuration
		b.cfg.SampleDetection.PreferLongestVariant = preferLongest
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.Incoming)
}
