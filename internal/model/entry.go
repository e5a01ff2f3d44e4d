package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/cases"
)

var (
	// ErrMissingFile is returned by PathTable.InsertIfAbsent when the path
	// does not name an existing file.
	ErrMissingFile = errors.New("file does not exist")

	// ErrNoExtension means the file name has no extension after its last
	// path separator.
	ErrNoExtension = errors.New("no file extension")

	// ErrNoSeparator means the path has no directory component.
	ErrNoSeparator = errors.New("no path separator")
)

// Exister reports whether a path names an existing file.
type Exister interface {
	Exists(path string) bool
}

// PathEntry is one distinct media file referenced by a playlist.
//
// Metadata starts empty and is populated by the extractor. Extension and
// BaseName are derived from Path on first use.
type PathEntry struct {
	// Path is the absolute source path as inserted into the table.
	Path string

	// Metadata holds the tags extracted from the file.
	Metadata MetadataRecord

	split   bool
	base    string
	ext     string
	nameErr error
}

// Extension returns the file extension without the leading dot.
func (e *PathEntry) Extension() (string, error) {
	e.resolveName()
	return e.ext, e.nameErr
}

// BaseName returns the file name without directory and extension.
func (e *PathEntry) BaseName() (string, error) {
	e.resolveName()
	return e.base, e.nameErr
}

func (e *PathEntry) resolveName() {
	if e.split {
		return
	}
	e.base, e.ext, e.nameErr = SplitName(e.Path)
	e.split = true
}

// SplitName derives the base name and extension of path by scanning from
// the end for the last '.' and the last path separator.
//
// Both must be present, and the dot must belong to the final path element:
//
//	SplitName("/music/a.flac")   // "a", "flac", nil
//	SplitName("/music/README")   // ErrNoExtension
//	SplitName("a.flac")          // ErrNoSeparator
//	SplitName("/music.d/README") // ErrNoExtension
func SplitName(path string) (base, ext string, err error) {
	dot, sep := -1, -1
	for i := len(path) - 1; i >= 0; i-- {
		if os.IsPathSeparator(path[i]) {
			sep = i
			break
		}
		if dot < 0 && path[i] == '.' {
			dot = i
		}
	}
	if sep < 0 {
		return "", "", fmt.Errorf("%w: %q", ErrNoSeparator, path)
	}
	if dot < 0 || dot == len(path)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrNoExtension, path)
	}
	return path[sep+1 : dot], path[dot+1:], nil
}

// PathTable is a deduplicating set of playlist entries keyed by normalized
// path. Entries keep the order of their first insertion.
//
// A table lives for a single playlist pass.
type PathTable struct {
	exists  Exister
	fold    bool
	caser   cases.Caser
	index   map[string]*PathEntry
	entries []*PathEntry
}

// NewPathTable creates an empty table.
//
// exists is consulted before every insertion. When caseInsensitive is true,
// paths differing only in letter case collapse into one entry.
func NewPathTable(exists Exister, caseInsensitive bool) *PathTable {
	return &PathTable{
		exists: exists,
		fold:   caseInsensitive,
		caser:  cases.Fold(),
		index:  make(map[string]*PathEntry),
	}
}

// InsertIfAbsent returns the entry for path, creating it if needed.
//
// inserted is false when an entry for the same normalized path already
// existed. If the path does not exist on disk the table is left unchanged
// and an error wrapping ErrMissingFile is returned.
func (t *PathTable) InsertIfAbsent(path string) (entry *PathEntry, inserted bool, err error) {
	key := t.key(path)
	if existing, ok := t.index[key]; ok {
		return existing, false, nil
	}
	if !t.exists.Exists(path) {
		return nil, false, fmt.Errorf("%w: %s", ErrMissingFile, path)
	}

	entry = &PathEntry{Path: filepath.Clean(path)}
	t.index[key] = entry
	t.entries = append(t.entries, entry)
	return entry, true, nil
}

// Lookup returns the entry stored for path, if any.
func (t *PathTable) Lookup(path string) (*PathEntry, bool) {
	entry, ok := t.index[t.key(path)]
	return entry, ok
}

// Len returns the number of distinct entries.
func (t *PathTable) Len() int {
	return len(t.entries)
}

// Entries returns the entries in first-insertion order.
func (t *PathTable) Entries() []*PathEntry {
	out := make([]*PathEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *PathTable) key(path string) string {
	key := filepath.Clean(path)
	if t.fold {
		key = t.caser.String(key)
	}
	return key
}
