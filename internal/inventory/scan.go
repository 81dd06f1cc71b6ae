package inventory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sift/internal/apperr"
)

// ScanFiles lists regular files under root sorted by relative path. onlyExt
// keeps files whose extension matches case-insensitively, with or without a
// leading dot. A positive limit truncates the sorted list.
func ScanFiles(root string, onlyExt []string, limit int) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.Wrap(apperr.ErrConfiguration, "scan", "paths.incoming does not exist", root, nil)
		}
		return nil, apperr.Wrap(apperr.ErrConfiguration, "scan", "stat paths.incoming", root, err)
	}
	if !info.IsDir() {
		return nil, apperr.Wrap(apperr.ErrConfiguration, "scan", "paths.incoming is not a directory", root, nil)
	}

	exts := make(map[string]struct{}, len(onlyExt))
	for _, ext := range onlyExt {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts[ext] = struct{}{}
		}
	}

	var rels []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			// Unreadable subdirectories are skipped.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isFile(path, d) {
			return nil
		}
		if len(exts) > 0 {
			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
			if _, ok := exts[ext]; !ok {
				return nil
			}
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rels = append(rels, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(rels)
	if limit > 0 && len(rels) > limit {
		rels = rels[:limit]
	}
	paths := make([]string, len(rels))
	for i, rel := range rels {
		paths[i] = filepath.Join(root, rel)
	}
	return paths, nil
}

// isFile follows symlinks so linked media is picked up like regular files.
func isFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
