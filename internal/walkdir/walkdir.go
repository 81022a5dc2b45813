// Package walkdir discovers the ordered file list a torrent build hashes:
// a single file, or every regular file beneath a directory, normalized to
// the path-component slices internal/meta.BuildFileRecords expects. It
// mirrors the teacher's internal/scanner walker (filepath.Walk plus
// log.Printf progress lines) adapted to the BEP-52 file-tree ordering
// contract instead of DCP package discovery.
package walkdir

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/torrentgen/torrentgen/internal/meta"
)

// Walk resolves root to a list of meta.InputFile, sorted by the byte order
// of their path components (spec.md's BEP-52 file-tree ordering). Dotfiles
// and dot-directories are skipped, except when root itself is a dotfile.
// Symlinks to regular files are followed; symlinks to directories are not,
// matching the teacher's discovery walker's refusal to recurse through
// links it didn't expect.
func Walk(root string) ([]meta.InputFile, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", root, err)
	}
	abs = filepath.Clean(abs)

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", abs, err)
	}

	var files []meta.InputFile
	if !info.IsDir() {
		files = append(files, meta.InputFile{
			Components: []string{filepath.Base(abs)},
			Length:     info.Size(),
			Path:       abs,
		})
		return files, nil
	}

	base := filepath.Dir(abs)
	log.Printf("walkdir: scanning %s", abs)

	err = filepath.Walk(abs, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walk %q: %w", path, err)
		}
		if path == abs {
			return nil
		}
		if strings.HasPrefix(fi.Name(), ".") {
			if fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if fi.Mode()&os.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				log.Printf("walkdir: skipping broken symlink %s: %v", path, err)
				return nil
			}
			if target.IsDir() {
				// symlinks to directories are not followed/recursed into.
				return nil
			}
			fi = target
		}

		if fi.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(base, path)
		if err != nil {
			return fmt.Errorf("relativize %q: %w", path, err)
		}
		comp := strings.Split(rel, string(filepath.Separator))

		files = append(files, meta.InputFile{
			Components: comp,
			Length:     fi.Size(),
			Path:       path,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("walkdir: found %d files", len(files))
	sortByComponents(files)
	return files, nil
}

// OverrideRootName rewrites every file's first path component — the
// torrent's root/name component, per spec.md §3's FileRecord.components —
// to name. Used when the caller supplies an explicit torrent name instead
// of the default basename-of-input-path Walk produces.
func OverrideRootName(files []meta.InputFile, name string) {
	for i := range files {
		files[i].Components[0] = name
	}
}

// TotalSize sums the length of every file Walk returned.
func TotalSize(files []meta.InputFile) int64 {
	var total int64
	for _, f := range files {
		total += f.Length
	}
	return total
}

// sortByComponents orders files the way the v2 file tree is serialized:
// lexicographically over the raw component byte sequence, not locale
// collation (spec.md §4.7, mirroring original_source/src/dirwalker.rs's
// sort_by_cached_key over component byte vectors).
func sortByComponents(files []meta.InputFile) {
	sort.Slice(files, func(i, j int) bool {
		a, b := files[i].Components, files[j].Components
		for k := 0; k < len(a) && k < len(b); k++ {
			if c := bytes.Compare([]byte(a[k]), []byte(b[k])); c != 0 {
				return c < 0
			}
		}
		return len(a) < len(b)
	})
}
