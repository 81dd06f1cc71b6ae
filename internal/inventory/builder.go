package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"sift/internal/apperr"
	"sift/internal/config"
	"sift/internal/logging"
	"sift/internal/media/ffprobe"
	"sift/internal/naming"
	"sift/internal/scancache"
	"sift/internal/variants"
)

// BuildOptions selects which files a build considers.
type BuildOptions struct {
	// Rescan ignores any cached inventory.
	Rescan bool
	// OnlyExt restricts the scan to these extensions.
	OnlyExt []string
	// Limit caps the number of scanned files; zero means no cap.
	Limit int
}

// Builder scans the incoming root and produces a cached inventory.
type Builder struct {
	cfg      *config.Config
	store    *scancache.Store
	prober   Prober
	router   *Router
	renderer *naming.Renderer
	logger   *slog.Logger
}

// NewBuilder wires a builder from a finalized config. A nil prober runs the
// configured ffprobe binary.
func NewBuilder(cfg *config.Config, prober Prober, logger *slog.Logger) *Builder {
	if prober == nil {
		prober = NewFFprobeRunner(cfg.FFprobe)
	}
	logger = logging.NewComponentLogger(logger, "inventory")
	return &Builder{
		cfg:      cfg,
		store:    scancache.New(cfg.ScanCachePath(), cfg.Paths.Incoming, logger),
		prober:   prober,
		router:   NewRouter(cfg, logger),
		renderer: naming.NewRenderer(cfg.Naming, cfg.Flags),
		logger:   logger,
	}
}

// Router exposes the routing rules used for proposed names.
func (b *Builder) Router() *Router {
	return b.router
}

// Build returns the cached inventory when one exists and opts.Rescan is not
// set. Otherwise it scans, probes, groups variants, proposes names, writes
// the cache, and returns what was written.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) (*Inventory, error) {
	if !opts.Rescan {
		inv, err := b.Load()
		if err == nil {
			b.logger.Info("using cached inventory",
				logging.String("path", b.store.Path()),
				logging.Int("item_count", inv.Count))
			return inv, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		b.logger.Debug("no scan cache; scanning", logging.String("path", b.store.Path()))
	}

	paths, err := ScanFiles(b.cfg.Paths.Incoming, opts.OnlyExt, opts.Limit)
	if err != nil {
		return nil, err
	}
	b.logger.Info("scan started",
		logging.String("incoming", b.cfg.Paths.Incoming),
		logging.Int("file_count", len(paths)))

	items := make([]Item, 0, len(paths))
	probeErrors := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item, ok := b.describe(ctx, path)
		if !ok {
			continue
		}
		if !item.FFprobe.OK {
			probeErrors++
			logging.WarnWithContext(b.logger, "probe failed", "probe_failed",
				logging.String(logging.FieldRelPath, item.RelPath),
				logging.String("reason", item.FFprobe.Error),
				logging.String(logging.FieldErrorHint, "check the file is complete media and ffprobe.bin is correct"),
				logging.String(logging.FieldImpact, "item is routed as unknown quality"))
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].RelPath < items[j].RelPath })
	b.markVariants(items)
	b.proposeNames(items)

	if err := b.store.Write(items, len(items), probeErrors); err != nil {
		return nil, err
	}
	b.logger.Info("scan complete",
		logging.Int("item_count", len(items)),
		logging.Int("probe_errors", probeErrors),
		logging.String("cache", b.store.Path()))
	return b.Load()
}

// Load reads the cached inventory without scanning.
func (b *Builder) Load() (*Inventory, error) {
	doc, err := b.store.Read()
	if err != nil {
		return nil, err
	}
	var items []Item
	if err := json.Unmarshal(doc.Items, &items); err != nil {
		return nil, &scancache.Error{Kind: scancache.KindCorrupt, Path: b.store.Path(), Err: err}
	}
	if items == nil {
		items = []Item{}
	}
	return &Inventory{
		GeneratedAtUTC: doc.GeneratedAtUTC,
		IncomingRoot:   doc.IncomingRoot,
		Count:          doc.Count,
		Errors:         doc.Errors,
		Items:          items,
		FromCache:      true,
	}, nil
}

func (b *Builder) describe(ctx context.Context, path string) (Item, bool) {
	info, err := os.Stat(path)
	if err != nil {
		b.logger.Debug("skipping unreadable file", logging.String("path", path), logging.Error(err))
		return Item{}, false
	}
	rel, err := filepath.Rel(b.cfg.Paths.Incoming, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return Item{
		RelPath: filepath.ToSlash(rel),
		Path:    path,
		Size:    info.Size(),
		MtimeNS: info.ModTime().UnixNano(),
		FFprobe: b.prober.Probe(ctx, path),
	}, true
}

func (b *Builder) markVariants(items []Item) {
	candidates := make([]variants.Candidate, len(items))
	for i := range items {
		candidates[i] = variants.Candidate{
			RelPath:    items[i].RelPath,
			Summary:    &items[i].FFprobe,
			SkipReason: items[i].SkipReason,
		}
	}
	for i, reason := range variants.Mark(b.cfg.SampleDetection, candidates) {
		if reason != "" && reason != items[i].SkipReason {
			b.logger.Info("variant skipped",
				logging.String(logging.FieldRelPath, items[i].RelPath),
				logging.String("skip_reason", reason))
		}
		items[i].SkipReason = reason
	}
}

func (b *Builder) proposeNames(items []Item) {
	for i := range items {
		item := &items[i]
		route := b.router.Route(*item)
		name, err := b.renderer.Render(naming.Input{
			RelPath: item.RelPath,
			Summary: &item.FFprobe,
			Facts:   route.Facts,
			Tier:    route.Tier,
		})
		if err != nil {
			b.logger.Debug("no proposed name",
				logging.String(logging.FieldRelPath, item.RelPath),
				logging.Error(err))
			continue
		}
		item.ProposedName = name
	}
}

// ProbeSummary is a convenience for callers that only need one summary.
func ProbeSummary(ctx context.Context, cfg config.FFprobe, path string) (ffprobe.Summary, error) {
	summary := NewFFprobeRunner(cfg).Probe(ctx, path)
	if !summary.OK {
		return summary, apperr.Wrap(apperr.ErrProbe, "inventory", "probe", path, errors.New(summary.Error))
	}
	return summary, nil
}
