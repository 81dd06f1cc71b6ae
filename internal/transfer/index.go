package transfer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var numberedSuffix = regexp.MustCompile(`^(.*) \(\d+\)$`)

// nameIndex records the regular files under one directory, either its
// direct children or its whole subtree. Names map to the first path found
// in lexical order.
type nameIndex struct {
	root      string
	recursive bool
	exact     map[string]string
	numbered  map[string]string
}

func newNameIndex(root string, recursive bool) (*nameIndex, error) {
	idx := &nameIndex{
		root:      root,
		recursive: recursive,
		exact:     make(map[string]string),
		numbered:  make(map[string]string),
	}
	var paths []string
	if recursive {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root && errors.Is(err, fs.ErrNotExist) {
					return fs.SkipAll
				}
				return err
			}
			if d.Type().IsRegular() {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				paths = append(paths, filepath.Join(root, entry.Name()))
			}
		}
	}
	sort.Strings(paths)
	for _, path := range paths {
		idx.add(path)
	}
	return idx, nil
}

// covers reports whether path would have been indexed.
func (idx *nameIndex) covers(path string) bool {
	dir := filepath.Dir(path)
	if !idx.recursive {
		return dir == idx.root
	}
	rel, err := filepath.Rel(idx.root, dir)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (idx *nameIndex) add(path string) {
	name := filepath.Base(path)
	if _, ok := idx.exact[name]; !ok {
		idx.exact[name] = path
	}
	ext := filepath.Ext(name)
	if m := numberedSuffix.FindStringSubmatch(strings.TrimSuffix(name, ext)); m != nil {
		key := m[1] + ext
		if _, ok := idx.numbered[key]; !ok {
			idx.numbered[key] = path
		}
	}
}

// find returns a file named name or a numbered duplicate of it such as
// "name (2).ext". Exact matches win.
func (idx *nameIndex) find(name string) (string, bool) {
	if path, ok := idx.exact[name]; ok {
		return path, true
	}
	path, ok := idx.numbered[name]
	return path, ok
}
