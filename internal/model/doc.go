// Package model defines the core data structures used throughout
// the playlist-organizer application.
//
// # MetadataRecord
//
// MetadataRecord holds the nine recognized tag fields of a media file.
// Values are filled with a first-match-wins policy:
//
//	var rec model.MetadataRecord
//	rec.Fill("ARTIST", "Boards of Canada") // true, field was empty
//	rec.Fill("artist", "Someone Else")     // false, artist already set
//
// # PathTable
//
// PathTable collapses duplicate playlist entries into one PathEntry per
// normalized path, in first-occurrence order:
//
//	table := model.NewPathTable(fsys, runtime.GOOS == "windows")
//	entry, err := table.InsertIfAbsent("/music/a.flac")
//
// # OrganizedFile
//
// OrganizedFile is the result of placing a PathEntry into the library tree:
//
//	fmt.Println(file.Destination) // /out/Files/Artist/Album/Title.flac
//	fmt.Println(file.Relative)    // Files/Artist/Album/Title.flac
package model
