package audio

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/playlist-organizer/internal/io"
	"github.com/handiism/playlist-organizer/internal/model"
)

// utf8BOM is stripped from the start of playlist files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadResult is the outcome of reading one playlist.
type ReadResult struct {
	// Table holds one entry per distinct existing file, in playlist order.
	Table *model.PathTable

	// Missing lists the lines whose file does not exist, verbatim.
	Missing []string

	// Duplicates counts lines that resolved to an entry already in Table.
	Duplicates int
}

// PlaylistReader parses M3U/M3U8 playlists into path tables.
//
// Supported input:
//
//	#EXTM3U
//	#EXTINF:180,Artist - Title
//	/music/Artist/track.flac
//	relative/to/playlist.mp3
//
// Lines starting with '#' are comments, blank lines are ignored, and every
// other line is a media path. Relative paths resolve against the
// playlist's directory.
type PlaylistReader struct {
	fs              ioutils.FileSystem
	caseInsensitive bool
}

// NewPlaylistReader creates a reader backed by fsys.
//
// caseInsensitive controls whether paths differing only in case are
// considered the same file.
func NewPlaylistReader(fsys ioutils.FileSystem, caseInsensitive bool) *PlaylistReader {
	return &PlaylistReader{fs: fsys, caseInsensitive: caseInsensitive}
}

// Read parses the playlist at path.
//
// Missing files are reported in the result and never cause an error. An
// empty table is a valid result. The error is non-nil only when the
// playlist itself cannot be read.
func (r *PlaylistReader) Read(path string) (*ReadResult, error) {
	data, err := r.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read playlist: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	baseDir := filepath.Dir(path)
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}

	result := &ReadResult{
		Table: model.NewPathTable(ioutils.Existence{FS: r.fs}, r.caseInsensitive),
	}

	for _, raw := range bytes.Split(data, []byte("\n")) {
		line := string(bytes.TrimSuffix(raw, []byte("\r")))
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}

		target := line
		if !filepath.IsAbs(target) {
			target = filepath.Join(baseDir, target)
		}

		_, inserted, err := result.Table.InsertIfAbsent(target)
		switch {
		case errors.Is(err, model.ErrMissingFile):
			result.Missing = append(result.Missing, line)
		case err != nil:
			return nil, err
		case !inserted:
			result.Duplicates++
		}
	}
	return result, nil
}

// PlaylistWriter writes regenerated playlists.
//
// The output is plain M3U: one relative path per line, each followed by
// '\n', UTF-8 without BOM and without an #EXTM3U header:
//
//	Files/Boards of Canada/Geogaddi/Alpha and Omega.flac
//	Files/_/_/Untitled Demo.mp3
type PlaylistWriter struct {
	fs ioutils.FileSystem
}

// NewPlaylistWriter creates a writer backed by fsys.
func NewPlaylistWriter(fsys ioutils.FileSystem) *PlaylistWriter {
	return &PlaylistWriter{fs: fsys}
}

// Write renders relativePaths and stores them at path in a single write.
func (w *PlaylistWriter) Write(path string, relativePaths []string) error {
	if err := w.fs.WriteFile(path, RenderPlaylist(relativePaths)); err != nil {
		return fmt.Errorf("write playlist: %w", err)
	}
	return nil
}

// RenderPlaylist returns the playlist content for relativePaths, in order.
func RenderPlaylist(relativePaths []string) []byte {
	var sb strings.Builder
	for _, p := range relativePaths {
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	return []byte(sb.String())
}
