package scancache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sift/internal/apperr"
	"sift/internal/logging"
)

// SchemaVersion is bumped whenever the item layout changes incompatibly.
const SchemaVersion = 2

// Document is the on-disk scan cache. Items stay raw so the inventory
// package owns their shape.
type Document struct {
	SchemaVersion  int             `json:"schema_version"`
	GeneratedAtUTC string          `json:"generated_at_utc"`
	IncomingRoot   string          `json:"incoming_root"`
	Count          int             `json:"count"`
	Errors         int             `json:"errors"`
	Items          json.RawMessage `json:"items"`
}

// Store reads and writes the scan cache for one incoming root.
type Store struct {
	path         string
	incomingRoot string
	logger       *slog.Logger
	now          func() time.Time
}

// New returns a store for the cache file at path.
func New(path, incomingRoot string, logger *slog.Logger) *Store {
	return &Store{
		path:         path,
		incomingRoot: incomingRoot,
		logger:       logging.NewComponentLogger(logger, "scancache"),
		now:          time.Now,
	}
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

// Write replaces the cache atomically with items. count is the number of
// items and errors the number that failed to probe.
func (s *Store) Write(items any, count, errCount int) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return apperr.Wrap(apperr.ErrCache, "scancache", "encode items", "", err)
	}
	doc := Document{
		SchemaVersion:  SchemaVersion,
		GeneratedAtUTC: s.now().UTC().Format(time.RFC3339),
		IncomingRoot:   s.incomingRoot,
		Count:          count,
		Errors:         errCount,
		Items:          raw,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperr.Wrap(apperr.ErrCache, "scancache", "encode document", "", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return apperr.Wrap(apperr.ErrCache, "scancache", "create directory", s.path, err)
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return apperr.Wrap(apperr.ErrCache, "scancache", "write temp file", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return apperr.Wrap(apperr.ErrCache, "scancache", "rename temp file", s.path, err)
	}

	s.logger.Debug("wrote scan cache",
		logging.String("path", s.path),
		logging.Int("item_count", count),
		logging.Int("error_count", errCount))
	return nil
}

// Read loads and checks the cache. A missing file returns an error matching
// fs.ErrNotExist; any contract violation returns an *Error.
func (s *Store) Read() (Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, fmt.Errorf("scan cache %s: %w", s.path, fs.ErrNotExist)
		}
		return Document{}, apperr.Wrap(apperr.ErrCache, "scancache", "read", s.path, err)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Document{}, &Error{Kind: KindCorrupt, Path: s.path, Err: err}
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, &Error{Kind: KindCorrupt, Path: s.path, Err: err}
	}
	if _, ok := probe["schema_version"]; !ok || doc.SchemaVersion != SchemaVersion {
		found := "missing"
		if ok {
			found = fmt.Sprint(doc.SchemaVersion)
		}
		return Document{}, &Error{
			Kind:     KindSchemaMismatch,
			Path:     s.path,
			Found:    found,
			Expected: fmt.Sprint(SchemaVersion),
		}
	}
	if doc.IncomingRoot != "" && doc.IncomingRoot != s.incomingRoot {
		return Document{}, &Error{
			Kind:     KindRootMismatch,
			Path:     s.path,
			Found:    doc.IncomingRoot,
			Expected: s.incomingRoot,
		}
	}
	if len(doc.Items) == 0 || string(doc.Items) == "null" {
		doc.Items = json.RawMessage("[]")
	}
	return doc, nil
}
