package model

// PlacementStatus describes what happened to a file during organization.
type PlacementStatus int

const (
	// StatusLinked means a new hard link was created.
	StatusLinked PlacementStatus = iota

	// StatusExisting means something already existed at the destination
	// and the file is treated as organized.
	StatusExisting

	// StatusPlanned means the destination was computed but nothing was
	// written (dry run).
	StatusPlanned
)

// String returns a short lowercase label for the status.
func (s PlacementStatus) String() string {
	switch s {
	case StatusLinked:
		return "linked"
	case StatusExisting:
		return "existing"
	case StatusPlanned:
		return "planned"
	default:
		return "unknown"
	}
}

// OrganizedFile is a PathEntry placed into the library tree.
//
// Example, for an output root of /out:
//
//	file.Source      // /music/a.flac
//	file.Destination // /out/Files/Boards of Canada/Geogaddi/Alpha and Omega.flac
//	file.Relative    // Files/Boards of Canada/Geogaddi/Alpha and Omega.flac
type OrganizedFile struct {
	// Source is the original media file.
	Source string

	// Destination is the absolute path of the link in the library tree.
	Destination string

	// Relative is Destination relative to the output root. It is the line
	// written to the regenerated playlist.
	Relative string

	// Status records whether the link was created or already present.
	Status PlacementStatus

	// ConflictsWith is the source of an earlier file that was placed at the
	// same destination during this run, or empty.
	ConflictsWith string
}
