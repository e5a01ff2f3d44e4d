package organize

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/handiism/playlist-organizer/internal/audio"
	"github.com/handiism/playlist-organizer/internal/config"
	ioutils "github.com/handiism/playlist-organizer/internal/io"
	"github.com/handiism/playlist-organizer/internal/metasource"
	"github.com/handiism/playlist-organizer/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// String returns the lowercase name of the level.
func (l ProgressLevel) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// ProgressEvent represents an organization progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Stats counts what happened to one playlist.
type Stats struct {
	Playlist   string
	Entries    int
	Missing    int
	Duplicates int
	Linked     int
	Existing   int
	Planned    int
	Skipped    int
	Failed     int
	Written    bool
}

// Placed returns the number of files listed in the regenerated playlist.
func (s Stats) Placed() int {
	return s.Linked + s.Existing + s.Planned
}

// Manager coordinates the organization of every playlist in the input
// directory.
type Manager struct {
	cfg       *model.OrganizeConfig
	fs        ioutils.FileSystem
	reader    *audio.PlaylistReader
	extractor *audio.Extractor
	organizer *Organizer
	writer    *audio.PlaylistWriter

	playlists      []string
	stats          []Stats
	totalFiles     int32
	processedFiles int32

	onProgress func(ProgressEvent)
	mu         sync.RWMutex
}

// NewManager creates a new Manager from settings.
//
// The metadata source chain is built from settings.MetadataSources.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent)) (*Manager, error) {
	chain, err := metasource.New(settings.MetadataSources, settings.SourceOptions())
	if err != nil {
		return nil, fmt.Errorf("metadata sources: %w", err)
	}
	return newManager(settings.ToOrganizeConfig(), ioutils.OS{}, chain, onProgress), nil
}

func newManager(cfg *model.OrganizeConfig, fsys ioutils.FileSystem, source metasource.Source, onProgress func(ProgressEvent)) *Manager {
	return &Manager{
		cfg:        cfg,
		fs:         fsys,
		reader:     audio.NewPlaylistReader(fsys, cfg.CaseInsensitivePaths),
		extractor:  audio.NewExtractor(source),
		organizer:  NewOrganizer(fsys, cfg),
		writer:     audio.NewPlaylistWriter(fsys),
		onProgress: onProgress,
	}
}

// Initialize lists the playlists of the input directory.
//
// Playlists are matched by extension, ignoring case, and processed in file
// name order.
func (m *Manager) Initialize(ctx context.Context) error {
	entries, err := m.fs.ReadDir(m.cfg.InputDir)
	if err != nil {
		return fmt.Errorf("list input directory: %w", err)
	}

	var playlists []string
	for _, entry := range entries {
		if entry.IsDir() || !m.isPlaylist(entry.Name()) {
			continue
		}
		playlists = append(playlists, filepath.Join(m.cfg.InputDir, entry.Name()))
	}

	m.mu.Lock()
	m.playlists = playlists
	m.mu.Unlock()

	if len(playlists) == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("No playlists found in %s", m.cfg.InputDir), Level: LevelWarning})
		return nil
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Found %d playlist(s) in %s", len(playlists), m.cfg.InputDir), Level: LevelInfo})
	return ctx.Err()
}

// Start processes the initialized playlists one at a time.
//
// Failures of single files or playlists are reported as events and never
// stop the run. The returned error is non-nil only when ctx is cancelled.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.RLock()
	playlists := append([]string(nil), m.playlists...)
	m.mu.RUnlock()

	for _, playlist := range playlists {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats, err := m.processPlaylist(ctx, playlist)

		m.mu.Lock()
		m.stats = append(m.stats, stats)
		m.mu.Unlock()

		if err != nil {
			return err
		}
	}
	return nil
}

// Run calls Initialize and then Start.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.Initialize(ctx); err != nil {
		return err
	}
	return m.Start(ctx)
}

// GetProgress returns the number of processed and known media files.
//
// The total grows as playlists are read.
func (m *Manager) GetProgress() (processed, total int32) {
	return atomic.LoadInt32(&m.processedFiles), atomic.LoadInt32(&m.totalFiles)
}

// GetPlaylistNames returns the file names of the initialized playlists.
func (m *Manager) GetPlaylistNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.playlists))
	for i, p := range m.playlists {
		names[i] = filepath.Base(p)
	}
	return names
}

// Stats returns the statistics of the playlists processed so far.
func (m *Manager) Stats() []Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Stats(nil), m.stats...)
}

func (m *Manager) isPlaylist(name string) bool {
	ext := filepath.Ext(name)
	for _, want := range m.cfg.PlaylistExtensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

func (m *Manager) processPlaylist(ctx context.Context, path string) (Stats, error) {
	name := filepath.Base(path)
	stats := Stats{Playlist: name}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Processing playlist: %s", name), Level: LevelInfo})

	result, err := m.reader.Read(path)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error reading %s: %v", name, err), Level: LevelError})
		return stats, nil
	}

	stats.Missing = len(result.Missing)
	stats.Duplicates = result.Duplicates
	for _, line := range result.Missing {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Missing file in %s: %s", name, line), Level: LevelWarning})
	}

	entries := result.Table.Entries()
	stats.Entries = len(entries)
	if len(entries) == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("No media files in %s, skipping", name), Level: LevelInfo})
		return stats, nil
	}
	atomic.AddInt32(&m.totalFiles, int32(len(entries)))

	relatives := make([]string, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if file, ok := m.placeEntry(ctx, entry, &stats); ok {
			relatives = append(relatives, file.Relative)
		}
		atomic.AddInt32(&m.processedFiles, 1)
	}

	outPath := filepath.Join(m.cfg.OutputDir, name)
	if m.cfg.DryRun {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Would write %s with %d entries", outPath, len(relatives)), Level: LevelSuccess})
		return stats, nil
	}

	if err := ioutils.EnsureParents(m.fs, outPath); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating output directory for %s: %v", name, err), Level: LevelError})
		return stats, nil
	}
	if err := m.writer.Write(outPath, relatives); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error writing %s: %v", outPath, err), Level: LevelError})
		return stats, nil
	}
	stats.Written = true

	if stats.Skipped == 0 && stats.Failed == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Organized playlist %s (%d files)", name, len(relatives)), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished %s, %d of %d files organized", name, len(relatives), len(entries)), Level: LevelInfo})
	}
	return stats, nil
}

// placeEntry extracts metadata for entry and organizes it. ok is false when
// the file must be left out of the playlist.
func (m *Manager) placeEntry(ctx context.Context, entry *model.PathEntry, stats *Stats) (model.OrganizedFile, bool) {
	rec, usable, err := m.extractor.Extract(ctx, entry.Path)
	if err != nil {
		stats.Skipped++
		m.progress(ProgressEvent{Message: fmt.Sprintf("Cannot read metadata of %s: %v", entry.Path, err), Level: LevelError})
		return model.OrganizedFile{}, false
	}
	if !usable {
		stats.Skipped++
		m.progress(ProgressEvent{Message: fmt.Sprintf("No usable metadata in %s, skipping", entry.Path), Level: LevelWarning})
		return model.OrganizedFile{}, false
	}
	entry.Metadata = rec

	file, err := m.organizer.Organize(ctx, entry, m.cfg.OutputDir)
	if err != nil {
		stats.Failed++
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error organizing %s: %v", entry.Path, err), Level: LevelError})
		return model.OrganizedFile{}, false
	}

	switch file.Status {
	case model.StatusLinked:
		stats.Linked++
		m.progress(ProgressEvent{Message: fmt.Sprintf("Linked: %s", file.Relative), Level: LevelVerbose})
	case model.StatusExisting:
		stats.Existing++
		m.progress(ProgressEvent{Message: fmt.Sprintf("Already organized: %s", file.Relative), Level: LevelVerbose})
	case model.StatusPlanned:
		stats.Planned++
		m.progress(ProgressEvent{Message: fmt.Sprintf("Would link: %s", file.Relative), Level: LevelVerbose})
	}

	if file.ConflictsWith != "" {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("%s and %s share the destination %s, keeping the first", file.ConflictsWith, file.Source, file.Relative),
			Level:   LevelWarning,
		})
	}

	if m.cfg.SaveCoverArt && file.Status == model.StatusLinked {
		cover, err := m.organizer.ExportCover(ctx, file)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error exporting cover art: %v", err), Level: LevelWarning})
		} else if cover != "" {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Saved cover art: %s", cover), Level: LevelVerbose})
		}
	}

	return file, true
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
