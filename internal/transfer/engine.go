package transfer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"sift/internal/apperr"
	"sift/internal/config"
	"sift/internal/fileutil"
	"sift/internal/inventory"
	"sift/internal/logging"
)

// Modes accepted for io.mode.
const (
	ModeCopy = "copy"
	ModeMove = "move"
)

// Options adjust a single run.
type Options struct {
	DryRun bool
	// OnlyOKProbe skips items whose probe failed.
	OnlyOKProbe bool
	// Mode overrides io.mode when set.
	Mode string
}

var moveFile = fileutil.Move

// Engine routes inventory items into the outgoing tree.
type Engine struct {
	cfg    *config.Config
	router *inventory.Router
	logger *slog.Logger

	indexes map[string]*nameIndex
}

// NewEngine builds an engine from a finalized config.
func NewEngine(cfg *config.Config, logger *slog.Logger) *Engine {
	logger = logging.NewComponentLogger(logger, "transfer")
	return &Engine{
		cfg:    cfg,
		router: inventory.NewRouter(cfg, logger),
		logger: logger,
	}
}

// ResolveMode returns the effective mode or an apperr.ErrInvalidMode error.
func ResolveMode(configured, override string) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(configured))
	if o := strings.ToLower(strings.TrimSpace(override)); o != "" {
		mode = o
	}
	if mode != ModeCopy && mode != ModeMove {
		return "", apperr.Wrap(apperr.ErrInvalidMode, "transfer", "resolve mode", fmt.Sprintf("%q (use copy or move)", mode), nil)
	}
	return mode, nil
}

// Run processes items in order. A failing item is recorded and the run
// continues. The returned error is non-nil only for an invalid mode or a
// cancelled context; in the latter case the result holds the items
// processed so far.
func (e *Engine) Run(ctx context.Context, items []inventory.Item, opts Options) (Result, error) {
	mode, err := ResolveMode(e.cfg.IO.Mode, opts.Mode)
	if err != nil {
		return Result{}, err
	}
	logger := logging.WithContext(ctx, e.logger)
	e.indexes = make(map[string]*nameIndex)

	result := Result{Mode: mode, DryRun: opts.DryRun, Details: []Detail{}}
	logger.Info("transfer started",
		logging.String("mode", mode),
		logging.Bool("dry_run", opts.DryRun),
		logging.Int("item_count", len(items)))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		detail := e.process(ctx, logger, item, mode, opts)
		e.logDetail(logger, detail)
		result.add(detail)
	}

	logger.Info("transfer complete",
		logging.Int("copied", result.Copied),
		logging.Int("moved", result.Moved),
		logging.Int("skipped", result.Skipped),
		logging.Int("failed", result.Failed),
		logging.Bytes("transferred", result.Bytes()))
	return result, ctx.Err()
}

func (e *Engine) process(ctx context.Context, logger *slog.Logger, item inventory.Item, mode string, opts Options) Detail {
	detail := Detail{RelPath: item.RelPath, Src: item.Path}
	if item.SkipReason != "" {
		return skip(detail, item.SkipReason)
	}
	if opts.OnlyOKProbe && !item.FFprobe.OK {
		return skip(detail, ReasonFFprobeNotOK)
	}

	route := e.router.Route(item)
	dst, err := e.destination(route, item)
	if err != nil {
		detail.Action = ActionFail
		detail.Reason = "destination_error: " + err.Error()
		return detail
	}
	snapshot := route.Facts
	detail.Dst = dst
	detail.ProposedName = filepath.Base(dst)
	detail.MediaType = string(route.MediaType)
	detail.TierID = route.Tier.ID
	detail.Facts = &snapshot

	if err := e.transfer(ctx, logger, &detail, route, mode, opts.DryRun); err != nil {
		detail.Action = ActionFail
		detail.Reason = "exception: " + errorKind(err) + ": " + err.Error()
	}
	return detail
}

// destination joins the outgoing root, media type, tier folder, and the
// proposed name or, lacking one, the relative path.
func (e *Engine) destination(route inventory.Route, item inventory.Item) (string, error) {
	rel := item.ProposedName
	if rel == "" {
		rel = item.RelPath
	}
	rel = filepath.Clean(filepath.FromSlash(rel))
	if rel == "." || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%q does not stay inside the tier folder", rel)
	}
	return filepath.Join(e.tierRoot(route), rel), nil
}

func (e *Engine) tierRoot(route inventory.Route) string {
	return filepath.Join(e.cfg.Paths.OutgoingRoot, string(route.MediaType), route.Tier.Folder)
}

func (e *Engine) transfer(ctx context.Context, logger *slog.Logger, detail *Detail, route inventory.Route, mode string, dryRun bool) error {
	existing, found, err := e.findExisting(detail.Dst, e.tierRoot(route))
	if err != nil {
		return err
	}
	if found {
		detail.ExistingPath = existing
		*detail = skip(*detail, ReasonAlreadyProcessed)
		return nil
	}

	if _, err := os.Stat(detail.Src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			*detail = skip(*detail, ReasonSourceMissing)
			return nil
		}
		return err
	}

	if _, err := os.Lstat(detail.Dst); err == nil {
		same, err := fileutil.SameFile(detail.Src, detail.Dst)
		if err == nil && same {
			*detail = skip(*detail, ReasonSameFile)
			return nil
		}
		if !e.cfg.IO.DedupeOnCollision {
			*detail = skip(*detail, ReasonCollision)
			return nil
		}
		deduped, err := dedupePath(detail.Dst)
		if err != nil {
			return err
		}
		detail.Dst = deduped
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if dryRun {
		detail.Action = dryRunAction(mode)
		e.recordWritten(detail.Dst)
		return nil
	}

	if e.cfg.IO.Mkdirs {
		if err := os.MkdirAll(filepath.Dir(detail.Dst), 0o755); err != nil {
			return err
		}
	}

	progress := e.progressLogger(logger, detail.RelPath)
	switch mode {
	case ModeMove:
		copied, err := moveFile(ctx, detail.Src, detail.Dst, e.cfg.IO.ChunkSizeBytes, progress)
		if err != nil {
			return err
		}
		if copied {
			detail.Bytes = sizeOf(detail.Dst)
		}
		detail.Action = ActionMoved
	default:
		n, err := fileutil.CopyWithProgress(ctx, detail.Src, detail.Dst, e.cfg.IO.ChunkSizeBytes, progress)
		if err != nil {
			return err
		}
		detail.Bytes = n
		detail.Action = ActionCopied
	}
	e.recordWritten(detail.Dst)
	return nil
}

// findExisting looks for the destination name, or a numbered duplicate of
// it, in the destination directory or, in strict mode, anywhere below the
// tier folder. Directory listings are taken once per run.
func (e *Engine) findExisting(dst, tierRoot string) (string, bool, error) {
	root, recursive := filepath.Dir(dst), false
	if e.cfg.IO.StrictExistingScan {
		root, recursive = tierRoot, true
	}
	key := root
	if recursive {
		key = "**" + root
	}
	idx, ok := e.indexes[key]
	if !ok {
		var err error
		idx, err = newNameIndex(root, recursive)
		if err != nil {
			return "", false, err
		}
		e.indexes[key] = idx
	}
	path, found := idx.find(filepath.Base(dst))
	return path, found, nil
}

func (e *Engine) recordWritten(path string) {
	for _, idx := range e.indexes {
		if idx.covers(path) {
			idx.add(path)
		}
	}
}

func (e *Engine) progressLogger(logger *slog.Logger, relPath string) fileutil.ProgressFunc {
	sampler := logging.NewProgressSampler(10)
	return func(p fileutil.Progress) {
		if !sampler.ShouldLog(p.Copied, p.Total) {
			return
		}
		logger.Info("copy progress",
			logging.String(logging.FieldRelPath, relPath),
			logging.Int("percent", int(p.Percent())),
			logging.Bytes("copied", p.Copied),
			logging.Bytes("total", p.Total),
			logging.String("rate", humanize.IBytes(uint64(p.BytesPerSecond()))+"/s"),
			logging.Duration("eta", p.Remaining().Round(time.Second)))
	}
}

func (e *Engine) logDetail(logger *slog.Logger, d Detail) {
	attrs := []logging.Attr{
		logging.String(logging.FieldRelPath, d.RelPath),
		logging.String("action", d.Action),
	}
	if d.Reason != "" {
		attrs = append(attrs, logging.String("reason", d.Reason))
	}
	if d.Dst != "" {
		attrs = append(attrs, logging.String("dst", d.Dst))
	}
	if d.Bytes > 0 {
		attrs = append(attrs, logging.Bytes("written", d.Bytes))
	}
	if d.TierID != "" {
		attrs = append(attrs,
			logging.String(logging.FieldTierID, d.TierID),
			logging.String(logging.FieldMediaType, d.MediaType))
	}
	switch d.Action {
	case ActionFail:
		logging.WarnWithContext(logger, "transfer failed", "transfer_failed",
			append(attrs,
				logging.String(logging.FieldErrorHint, "check permissions and free space on outgoing_root"),
				logging.String(logging.FieldImpact, "item was not transferred"))...)
	case ActionSkip:
		logger.Debug("item skipped", logging.Args(attrs...)...)
	default:
		logger.Info("item transferred", logging.Args(attrs...)...)
	}
}

func skip(d Detail, reason string) Detail {
	d.Action = ActionSkip
	d.Reason = reason
	return d
}

// dedupePath returns the first "name (n).ext" next to dst that does not exist.
func dedupePath(dst string) (string, error) {
	dir := filepath.Dir(dst)
	base := filepath.Base(dst)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		if _, err := os.Lstat(candidate); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return candidate, nil
			}
			return "", err
		}
	}
}

func sizeOf(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// errorKind names the failure class recorded in fail reasons.
func errorKind(err error) string {
	var pathErr *fs.PathError
	var linkErr *os.LinkError
	var syscallErr *os.SyscallError
	switch {
	case errors.Is(err, context.Canceled):
		return "Canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "DeadlineExceeded"
	case errors.As(err, &linkErr):
		return "LinkError"
	case errors.As(err, &pathErr):
		return "PathError"
	case errors.As(err, &syscallErr):
		return "SyscallError"
	default:
		return "Error"
	}
}
