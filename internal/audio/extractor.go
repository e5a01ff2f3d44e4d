package audio

import (
	"context"

	"github.com/handiism/playlist-organizer/internal/metasource"
	"github.com/handiism/playlist-organizer/internal/model"
)

// Extractor builds a MetadataRecord from the dictionaries of a media
// container.
//
// The container dictionary is scanned first, then every stream dictionary
// in ascending index order. For each recognized key the first non-empty
// value wins; later occurrences never overwrite it, whichever section they
// come from.
//
// Example:
//
//	extractor := NewExtractor(chain)
//	rec, usable, err := extractor.Extract(ctx, "/music/a.flac")
//	if err != nil {
//	    // container could not be opened
//	}
//	if !usable {
//	    // no recognized tag was found, skip the file
//	}
type Extractor struct {
	source metasource.Source
}

// NewExtractor creates an Extractor reading from source.
func NewExtractor(source metasource.Source) *Extractor {
	return &Extractor{source: source}
}

// Extract opens path and merges its metadata.
//
// usable is false when no recognized field received a value. The error is
// non-nil only when the source could not open the file.
func (e *Extractor) Extract(ctx context.Context, path string) (rec model.MetadataRecord, usable bool, err error) {
	h, err := e.source.Open(ctx, path)
	if err != nil {
		return model.MetadataRecord{}, false, err
	}
	defer h.Close()

	usable = mergeDictionary(&rec, h.ContainerMetadata())
	for i := 0; i < h.StreamCount(); i++ {
		if mergeDictionary(&rec, h.StreamMetadata(i)) {
			usable = true
		}
	}
	return rec, usable, nil
}

// mergeDictionary fills rec from d and reports whether any field was set.
func mergeDictionary(rec *model.MetadataRecord, d metasource.Dictionary) bool {
	filled := false
	for _, entry := range d {
		if rec.Fill(entry.Key, entry.Value) {
			filled = true
		}
	}
	return filled
}
