package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/handiism/playlist-organizer/internal/metasource"
	"github.com/handiism/playlist-organizer/internal/model"
	"github.com/pelletier/go-toml/v2"
)

// Settings holds all configuration options.
type Settings struct {
	// Directories
	InputDir           string   `json:"input_dir" toml:"input_dir"`
	OutputDir          string   `json:"output_dir" toml:"output_dir"`
	FilesDir           string   `json:"files_dir" toml:"files_dir"`
	PlaylistExtensions []string `json:"playlist_extensions" toml:"playlist_extensions"`

	// Path matching
	CaseInsensitivePaths bool `json:"case_insensitive_paths" toml:"case_insensitive_paths"`

	// Metadata sources, tried in order
	MetadataSources       []string `json:"metadata_sources" toml:"metadata_sources"`
	FFprobeBinary         string   `json:"ffprobe_binary" toml:"ffprobe_binary"`
	FFprobeTimeoutSeconds int      `json:"ffprobe_timeout_seconds" toml:"ffprobe_timeout_seconds"`

	// Cover art settings
	SaveCoverArt     bool   `json:"save_cover_art" toml:"save_cover_art"`
	CoverArtFileName string `json:"cover_art_file_name" toml:"cover_art_file_name"`
	CoverArtMaxSize  int    `json:"cover_art_max_size" toml:"cover_art_max_size"`

	// Run settings
	DryRun     bool `json:"dry_run" toml:"dry_run"`
	LockOutput bool `json:"lock_output" toml:"lock_output"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		InputDir:           "Input",
		OutputDir:          "Output",
		FilesDir:           "Files",
		PlaylistExtensions: []string{".m3u", ".m3u8"},

		CaseInsensitivePaths: runtime.GOOS == "windows" || runtime.GOOS == "darwin",

		MetadataSources:       metasource.Names(),
		FFprobeBinary:         "ffprobe",
		FFprobeTimeoutSeconds: 30,

		SaveCoverArt:     false,
		CoverArtFileName: "cover.jpg",
		CoverArtMaxSize:  1000,

		DryRun:     false,
		LockOutput: true,
	}
}

// Load reads settings from a JSON or TOML file, chosen by extension.
//
// A missing file yields the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (*Settings, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	settings := DefaultSettings()
	if isTOML(path) {
		err = toml.NewDecoder(file).Decode(settings)
	} else {
		err = json.NewDecoder(file).Decode(settings)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := settings.normalize(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes settings to a JSON or TOML file, chosen by extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate ensures the settings are usable.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.InputDir) == "" {
		return errors.New("input_dir must be set")
	}
	if strings.TrimSpace(s.OutputDir) == "" {
		return errors.New("output_dir must be set")
	}
	if strings.TrimSpace(s.FilesDir) == "" {
		return errors.New("files_dir must be set")
	}
	if strings.ContainsAny(s.FilesDir, `/\`) {
		return fmt.Errorf("files_dir must be a single directory name, got %q", s.FilesDir)
	}
	if sameDir(s.InputDir, s.OutputDir) {
		return errors.New("output_dir must differ from input_dir, regenerated playlists would replace the originals")
	}
	if len(s.PlaylistExtensions) == 0 {
		return errors.New("playlist_extensions must not be empty")
	}
	for _, ext := range s.PlaylistExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("playlist extension %q must start with a dot", ext)
		}
	}
	if err := s.validateSources(); err != nil {
		return err
	}
	if s.FFprobeTimeoutSeconds <= 0 {
		return errors.New("ffprobe_timeout_seconds must be positive")
	}
	if s.SaveCoverArt {
		if strings.TrimSpace(s.CoverArtFileName) == "" {
			return errors.New("cover_art_file_name must be set when save_cover_art is true")
		}
		if s.CoverArtMaxSize <= 0 {
			return errors.New("cover_art_max_size must be positive")
		}
	}
	return nil
}

func (s *Settings) validateSources() error {
	if len(s.MetadataSources) == 0 {
		return errors.New("metadata_sources must not be empty")
	}
	known := metasource.Names()
	for _, name := range s.MetadataSources {
		found := false
		for _, k := range known {
			if name == k {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown metadata source %q (known: %s)", name, strings.Join(known, ", "))
		}
	}
	return nil
}

// ToOrganizeConfig converts settings to OrganizeConfig.
func (s *Settings) ToOrganizeConfig() *model.OrganizeConfig {
	return &model.OrganizeConfig{
		InputDir:             s.InputDir,
		OutputDir:            s.OutputDir,
		FilesDir:             s.FilesDir,
		PlaylistExtensions:   append([]string(nil), s.PlaylistExtensions...),
		CaseInsensitivePaths: s.CaseInsensitivePaths,
		DryRun:               s.DryRun,
		SaveCoverArt:         s.SaveCoverArt,
		CoverArtFileName:     s.CoverArtFileName,
		CoverArtMaxSize:      s.CoverArtMaxSize,
	}
}

// SourceOptions converts settings to metadata source options.
func (s *Settings) SourceOptions() metasource.Options {
	return metasource.Options{
		FFprobeBinary:  s.FFprobeBinary,
		FFprobeTimeout: time.Duration(s.FFprobeTimeoutSeconds) * time.Second,
	}
}

func (s *Settings) normalize() error {
	var err error
	if s.InputDir, err = expandHome(s.InputDir); err != nil {
		return err
	}
	if s.OutputDir, err = expandHome(s.OutputDir); err != nil {
		return err
	}
	for i, ext := range s.PlaylistExtensions {
		s.PlaylistExtensions[i] = strings.ToLower(strings.TrimSpace(ext))
	}
	for i, name := range s.MetadataSources {
		s.MetadataSources[i] = strings.ToLower(strings.TrimSpace(name))
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
