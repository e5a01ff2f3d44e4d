package ioutils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem is the set of file system primitives the pipeline relies on.
//
// Mkdir must return an error matching fs.ErrExist when the path already
// exists, so callers can treat that case as success.
type FileSystem interface {
	// Exists reports whether anything exists at path.
	Exists(path string) bool

	// Mkdir creates a single directory.
	Mkdir(path string) error

	// Link creates dst as a hard link to src.
	Link(src, dst string) error

	// ReadFile returns the whole content of path.
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces the content of path with data in one write.
	WriteFile(path string, data []byte) error

	// ReadDir lists the directory at path, sorted by file name.
	ReadDir(path string) ([]fs.DirEntry, error)
}

// OS implements FileSystem on top of package os.
type OS struct{}

// Exists reports whether anything exists at path. Symlinks are not followed,
// so a dangling link still counts as existing.
func (OS) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Mkdir creates path with mode 0755.
func (OS) Mkdir(path string) error {
	return os.Mkdir(path, 0755)
}

// Link creates dst as a hard link to src.
func (OS) Link(src, dst string) error {
	return os.Link(src, dst)
}

// ReadFile returns the content of path.
func (OS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to path with mode 0644, truncating existing content.
func (OS) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

// ReadDir lists path sorted by file name.
func (OS) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// Existence adapts a FileSystem to the model.Exister contract used by
// playlist tables. Empty paths never exist.
type Existence struct {
	FS FileSystem
}

// Exists reports whether path is non-empty and present on the file system.
func (e Existence) Exists(path string) bool {
	return path != "" && e.FS.Exists(path)
}

// reservedChars are the characters replaced by Sanitize.
const reservedChars = `?:\/<>*|"`

// Sanitize replaces every character that is invalid in a Windows path
// segment with a single space.
//
// The replacement is a single left-to-right pass; consecutive spaces are not
// collapsed and the result has the same byte length as the input:
//
//	Sanitize("AC/DC")          // "AC DC"
//	Sanitize(`What? "Why":`)   // "What   Why  "
//
// Only apply it to individual segments (artist, album, title), never to a
// full path or a file extension.
func Sanitize(name string) string {
	if !strings.ContainsAny(name, reservedChars) {
		return name
	}
	b := []byte(name)
	for i, c := range b {
		if strings.IndexByte(reservedChars, c) >= 0 {
			b[i] = ' '
		}
	}
	return string(b)
}

// EnsureParents creates every missing directory on the way to path's parent,
// from the outermost to the innermost.
//
// Directories that already exist are skipped. The first other failure is
// returned.
//
// Example:
//
//	err := EnsureParents(OS{}, "/out/Files/Artist/Album/Title.flac")
//	// Creates /out, /out/Files, /out/Files/Artist and
//	// /out/Files/Artist/Album as needed
func EnsureParents(fsys FileSystem, path string) error {
	dir := filepath.Dir(path)
	vol := filepath.VolumeName(dir)
	current := vol

	for _, part := range strings.Split(dir[len(vol):], string(filepath.Separator)) {
		if part == "" {
			if current == vol {
				current += string(filepath.Separator)
			}
			continue
		}
		current = filepath.Join(current, part)
		if err := fsys.Mkdir(current); err != nil && !errors.Is(err, fs.ErrExist) {
			return err
		}
	}
	return nil
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
