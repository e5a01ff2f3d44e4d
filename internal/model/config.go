package model

// OrganizeConfig holds the settings consumed by the organizer.
type OrganizeConfig struct {
	// InputDir contains the playlists to process.
	InputDir string

	// OutputDir receives the library tree and the regenerated playlists.
	OutputDir string

	// FilesDir is the library directory name under OutputDir ("Files").
	FilesDir string

	// PlaylistExtensions selects playlist files in InputDir, including the
	// leading dot. Matching ignores case.
	PlaylistExtensions []string

	// CaseInsensitivePaths treats paths differing only in case as equal.
	CaseInsensitivePaths bool

	// DryRun computes destinations without touching the filesystem.
	DryRun bool

	// SaveCoverArt exports embedded pictures next to newly linked files.
	SaveCoverArt bool

	// CoverArtFileName is the name of the exported picture ("cover.jpg").
	CoverArtFileName string

	// CoverArtMaxSize bounds the exported picture's width and height.
	CoverArtMaxSize int
}
