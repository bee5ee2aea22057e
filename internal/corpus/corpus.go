// Package corpus lists the files a catalogue build walks, the §6
// "directory listing input" contract: a thin wrapper over filepath.WalkDir
// in the style of the teacher's small, focused internal/collect helpers.
package corpus

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/happyhackingspace/veclust/internal/errs"
)

// File is one corpus member: its path and byte size.
type File struct {
	Path string
	Size int64
}

// List walks root and returns every non-directory entry beneath it, sorted
// by path for deterministic catalogue-build ordering. Symbolic links are
// listed as entries (with the link's own size) and never followed.
// Unreadable entries surface as an Io error, matching the disposition the
// cataloguer itself uses for read failures.
func List(root string) ([]File, error) {
	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errs.Wrap(errs.Io, err, "corpus: walking %s", path)
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return errs.Wrap(errs.Io, err, "corpus: stat %s", path)
		}
		files = append(files, File{Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// TotalSize sums the byte size of every file in files.
func TotalSize(files []File) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}

// Paths extracts just the path component, in the same order as files —
// the slice the cataloguer's Build expects.
func Paths(files []File) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}
