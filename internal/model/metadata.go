package model

import "strings"

// Field names a recognized metadata key.
//
// The names follow the dictionary keys reported by ffmpeg-style metadata
// sources. Matching against source keys is case-insensitive.
type Field string

const (
	FieldAlbum       Field = "album"
	FieldAlbumArtist Field = "album_artist"
	FieldArtist      Field = "artist"
	FieldDate        Field = "date"
	FieldDisc        Field = "disc"
	FieldGenre       Field = "genre"
	FieldTitle       Field = "title"
	FieldTrack       Field = "track"
	FieldTrackTotal  Field = "tracktotal"
)

// Fields lists every recognized field in a stable order.
var Fields = []Field{
	FieldAlbum,
	FieldAlbumArtist,
	FieldArtist,
	FieldDate,
	FieldDisc,
	FieldGenre,
	FieldTitle,
	FieldTrack,
	FieldTrackTotal,
}

// LookupField maps a source key to a recognized field.
//
// The match is an exact, case-insensitive comparison: "ARTIST" and "Artist"
// resolve to FieldArtist, "artist_sort" resolves to nothing.
func LookupField(key string) (Field, bool) {
	for _, f := range Fields {
		if strings.EqualFold(key, string(f)) {
			return f, true
		}
	}
	return "", false
}

// MetadataRecord holds the tag values extracted from one media file.
//
// Every field is either empty (unset) or holds the first non-empty value
// offered to Fill for that field. A value is never overwritten once set.
type MetadataRecord struct {
	Album       string
	AlbumArtist string
	Artist      string
	Date        string
	Disc        string
	Genre       string
	Title       string
	Track       string
	TrackTotal  string
}

// Fill assigns value to the field named by key if the key is recognized,
// the value is non-empty, and the field is still unset.
//
// Returns true if the record changed.
func (r *MetadataRecord) Fill(key, value string) bool {
	f, ok := LookupField(key)
	if !ok || value == "" {
		return false
	}
	slot := r.slot(f)
	if *slot != "" {
		return false
	}
	*slot = value
	return true
}

// Get returns the value of a field, or "" when unset.
func (r *MetadataRecord) Get(f Field) string {
	if slot := r.slot(f); slot != nil {
		return *slot
	}
	return ""
}

// IsUsable reports whether at least one field is set.
//
// Files whose record is not usable are never organized.
func (r *MetadataRecord) IsUsable() bool {
	for _, f := range Fields {
		if r.Get(f) != "" {
			return true
		}
	}
	return false
}

func (r *MetadataRecord) slot(f Field) *string {
	switch f {
	case FieldAlbum:
		return &r.Album
	case FieldAlbumArtist:
		return &r.AlbumArtist
	case FieldArtist:
		return &r.Artist
	case FieldDate:
		return &r.Date
	case FieldDisc:
		return &r.Disc
	case FieldGenre:
		return &r.Genre
	case FieldTitle:
		return &r.Title
	case FieldTrack:
		return &r.Track
	case FieldTrackTotal:
		return &r.TrackTotal
	}
	return nil
}
