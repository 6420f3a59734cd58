// Package store implements the tile sources and the output sinks used by a packing run.
//
// Sources turn files, URLs or in-memory images into an ordered list of tiles.
// Sinks persist the atlas image and its coordinate map. Neither side knows
// anything about the placement logic.
package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/esimov/sdfatlas/utils"
	"github.com/pkg/errors"
)

// ErrNoInput is returned when a directory holds no file with a recognized extension.
var ErrNoInput = errors.New("no input files found")

// ImageExtensions lists the file extensions DirSource decodes by default.
var ImageExtensions = []string{".png", ".bmp", ".tif", ".tiff", ".webp", ".gif", ".jpg", ".jpeg"}

// Entry is a file discovered by Scan.
type Entry struct {
	ID   string // base name without extension
	Path string
}

// Scan lists the regular files of dir whose extension is one of exts.
// The match is case insensitive and the result is sorted by file name,
// so a given directory always yields the same order.
func Scan(dir string, exts []string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read the input directory %q", dir)
	}

	var entries []Entry
	for _, f := range files {
		if !f.Type().IsRegular() {
			continue
		}
		name := f.Name()
		ext := filepath.Ext(name)
		if !utils.Contains(exts, strings.ToLower(ext)) {
			continue
		}
		entries = append(entries, Entry{
			ID:   IdentifierOf(name),
			Path: filepath.Join(dir, name),
		})
	}
	if len(entries) == 0 {
		return nil, errors.Wrapf(ErrNoInput, "%q", dir)
	}

	sort.Slice(entries, func(i, j int) bool {
		return filepath.Base(entries[i].Path) < filepath.Base(entries[j].Path)
	})
	return entries, nil
}

// IdentifierOf derives a tile identifier from a file name or path.
func IdentifierOf(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
