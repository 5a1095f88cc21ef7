package ingest

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// entry is one file discovered in a Source, with its normalized relative
// path and a lazy opener.
type entry struct {
	normPath string // lowercase, forward-slash separated (spec §4.4/§6)
	open     func() ([]byte, error)
}

// Source abstracts over "a zip file" and "an already-extracted folder"
// (spec §4.4 "Inputs"). No third-party zip reader appears anywhere in the
// retrieved pack, so archive/zip is used directly (see DESIGN.md).
type Source interface {
	// Entries returns every file in the source, sorted by normalized path
	// for deterministic pass ordering.
	Entries() ([]entry, error)
	Close() error
}

func normalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	return strings.ToLower(p)
}

// zipSource reads entries from a zip archive.
type zipSource struct {
	r *zip.ReadCloser
}

// OpenZip opens path as a package zip archive.
func OpenZip(path string) (Source, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open zip %s: %w", path, err)
	}
	return &zipSource{r: r}, nil
}

func (z *zipSource) Entries() ([]entry, error) {
	entries := make([]entry, 0, len(z.r.File))
	for _, f := range z.r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		f := f
		entries = append(entries, entry{
			normPath: normalizePath(f.Name),
			open: func() ([]byte, error) {
				rc, err := f.Open()
				if err != nil {
					return nil, err
				}
				defer rc.Close()
				return io.ReadAll(rc)
			},
		})
	}
	sortEntries(entries)
	return entries, nil
}

func (z *zipSource) Close() error { return z.r.Close() }

// folderSource reads entries from an already-extracted directory tree.
type folderSource struct {
	root string
}

// OpenFolder opens root as a package folder.
func OpenFolder(root string) (Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("ingest: stat folder %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("ingest: %s is not a directory", root)
	}
	return &folderSource{root: root}, nil
}

func (f *folderSource) Entries() ([]entry, error) {
	var entries []entry
	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			return err
		}
		entries = append(entries, entry{
			normPath: normalizePath(rel),
			open: func() ([]byte, error) {
				return os.ReadFile(path)
			},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ingest: walk folder %s: %w", f.root, err)
	}
	sortEntries(entries)
	return entries, nil
}

func (f *folderSource) Close() error { return nil }

func sortEntries(entries []entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].normPath < entries[j].normPath })
}

func hasExt(path, ext string) bool {
	return strings.HasSuffix(path, ext)
}
