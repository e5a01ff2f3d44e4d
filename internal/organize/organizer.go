package organize

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/playlist-organizer/internal/io"
	"github.com/handiism/playlist-organizer/internal/metasource"
	"github.com/handiism/playlist-organizer/internal/model"
	"golang.org/x/text/cases"
)

// placeholder replaces an unset artist or album.
const placeholder = "_"

// Organizer places media files into the library tree as hard links.
//
// An Organizer remembers the destinations it produced during a run so it
// can report two different sources competing for the same path.
type Organizer struct {
	fs       ioutils.FileSystem
	cfg      *model.OrganizeConfig
	images   *ioutils.ImageService
	pictures func(path string) ([]byte, error)
	fold     cases.Caser

	placed map[string]string
	covers map[string]bool
}

// NewOrganizer creates an Organizer writing through fsys.
func NewOrganizer(fsys ioutils.FileSystem, cfg *model.OrganizeConfig) *Organizer {
	return &Organizer{
		fs:       fsys,
		cfg:      cfg,
		images:   ioutils.NewImageService(),
		pictures: metasource.EmbeddedPicture,
		fold:     cases.Fold(),
		placed:   make(map[string]string),
		covers:   make(map[string]bool),
	}
}

// RelativePath returns <filesDir>/<artist>/<album>/<title>.<ext> for rec.
//
// Unset artist and album become "_", an unset title becomes base. Each of
// the three segments is sanitized; ext is used as is. Segments are joined
// without cleaning so the sanitized names are kept verbatim. An artist or
// album of "." or ".." also becomes "_".
func RelativePath(filesDir string, rec model.MetadataRecord, base, ext string) string {
	artist := directorySegment(rec.Artist)
	album := directorySegment(rec.Album)
	title := rec.Title
	if title == "" {
		title = base
	}

	sep := string(filepath.Separator)
	return strings.Join([]string{
		filesDir,
		artist,
		album,
		ioutils.Sanitize(title) + "." + ext,
	}, sep)
}

// directorySegment sanitizes an artist or album name for use as a directory.
func directorySegment(name string) string {
	name = ioutils.Sanitize(name)
	switch name {
	case "", ".", "..":
		return placeholder
	}
	return name
}

// Organize places entry under outputRoot.
//
// When anything already exists at the destination the file counts as
// organized and nothing is written. Otherwise the missing directories are
// created and the destination is hard linked to the source. In dry run
// mode the destination is only computed.
//
// An error means the file must be left out of the regenerated playlist.
func (o *Organizer) Organize(ctx context.Context, entry *model.PathEntry, outputRoot string) (model.OrganizedFile, error) {
	if err := ctx.Err(); err != nil {
		return model.OrganizedFile{}, err
	}

	ext, err := entry.Extension()
	if err != nil {
		return model.OrganizedFile{}, fmt.Errorf("resolve file name of %s: %w", entry.Path, err)
	}
	base, _ := entry.BaseName()

	relative := RelativePath(o.cfg.FilesDir, entry.Metadata, base, ext)
	file := model.OrganizedFile{
		Source:      entry.Path,
		Destination: filepath.Clean(outputRoot) + string(filepath.Separator) + relative,
		Relative:    relative,
	}

	key := o.key(file.Destination)
	previous, claimed := o.placed[key]

	switch {
	case o.fs.Exists(file.Destination):
		file.Status = model.StatusExisting
	case claimed && o.cfg.DryRun:
		file.Status = model.StatusExisting
	case o.cfg.DryRun:
		file.Status = model.StatusPlanned
	default:
		if err := ioutils.EnsureParents(o.fs, file.Destination); err != nil {
			return model.OrganizedFile{}, fmt.Errorf("create directories for %s: %w", file.Destination, err)
		}
		if err := o.fs.Link(entry.Path, file.Destination); err != nil {
			if ioutils.IsCrossDevice(err) {
				return model.OrganizedFile{}, fmt.Errorf("link %s: output is on a different file system than the source: %w", file.Destination, err)
			}
			return model.OrganizedFile{}, fmt.Errorf("link %s: %w", file.Destination, err)
		}
		file.Status = model.StatusLinked
	}

	if !claimed {
		o.placed[key] = entry.Path
	} else if o.key(previous) != o.key(entry.Path) {
		file.ConflictsWith = previous
	}

	return file, nil
}

// ExportCover writes the picture embedded in file.Source next to
// file.Destination, once per album directory.
//
// It returns the path written, or an empty string when the directory was
// already handled, a picture already exists there, or the source has no
// embedded picture.
func (o *Organizer) ExportCover(ctx context.Context, file model.OrganizedFile) (string, error) {
	dir := filepath.Dir(file.Destination)
	if o.covers[o.key(dir)] {
		return "", nil
	}
	o.covers[o.key(dir)] = true

	target := filepath.Join(dir, o.cfg.CoverArtFileName)
	if o.fs.Exists(target) {
		return "", nil
	}

	data, err := o.pictures(file.Source)
	if err != nil {
		return "", fmt.Errorf("read embedded picture of %s: %w", file.Source, err)
	}
	if len(data) == 0 {
		return "", nil
	}

	cover, err := o.images.PrepareCover(ctx, data, o.cfg.CoverArtMaxSize)
	if err != nil {
		return "", fmt.Errorf("prepare cover for %s: %w", dir, err)
	}
	if err := o.fs.WriteFile(target, cover); err != nil {
		return "", fmt.Errorf("write cover: %w", err)
	}
	return target, nil
}

func (o *Organizer) key(path string) string {
	path = filepath.Clean(path)
	if o.cfg.CaseInsensitivePaths {
		return o.fold.String(path)
	}
	return path
}
