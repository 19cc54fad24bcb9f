// Package scan enumerates the files a search orders.
//
// [Walk] visits a source tree in lexical order and returns every regular
// file with its directory, size and modification time. Identifiers are
// slash-separated paths relative to the root, the same identifiers the cost
// oracle and the search tree use.
package scan

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"time"

	"github.com/matzehuels/tarper/pkg/errors"
)

// File is one regular file below the scanned root.
type File struct {
	Dir     string // slash-separated directory relative to the root, "." at the top
	Name    string // base name
	Path    string // slash-separated path relative to the root
	Size    int64
	ModTime time.Time
}

// Walk lists the regular files below root in lexical order. Directories are
// visited depth first, so all files of a directory come before those of its
// subdirectories that sort after them. Symlinks and other special files are
// skipped.
func Walk(root string) ([]File, error) {
	if err := errors.ValidatePath(root); err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "source %s", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "source %s is not a directory", root)
	}

	var files []File
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		files = append(files, File{
			Dir:     path.Dir(rel),
			Name:    path.Base(rel),
			Path:    rel,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "walk %s", root)
	}
	return files, nil
}

// Paths returns the identifiers of files in order.
func Paths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

// Index maps identifiers to their files.
func Index(files []File) map[string]File {
	m := make(map[string]File, len(files))
	for _, f := range files {
		m[f.Path] = f
	}
	return m
}

// GroupByDir splits files into runs of consecutive entries that share a
// directory, keeping the scan order of both groups and members.
func GroupByDir(files []File) [][]File {
	var groups [][]File
	for i, f := range files {
		if i == 0 || files[i-1].Dir != f.Dir {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], f)
	}
	return groups
}

// BySize returns the files ordered by ascending size. Equal sizes keep their
// scan order.
func BySize(files []File) []File {
	out := slices.Clone(files)
	slices.SortStableFunc(out, func(a, b File) int {
		switch {
		case a.Size < b.Size:
			return -1
		case a.Size > b.Size:
			return 1
		}
		return 0
	})
	return out
}
