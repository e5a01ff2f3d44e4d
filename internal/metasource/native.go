package metasource

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/dhowden/tag"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"go.senan.xyz/taglib"
)

// Sniff identifies the container of path from its leading bytes.
//
// Only audio and video containers are accepted; anything else fails with
// an error wrapping ErrUnrecognized.
func Sniff(path string) (types.Type, error) {
	kind, err := filetype.MatchFile(path)
	if err != nil {
		return filetype.Unknown, err
	}
	if kind == filetype.Unknown {
		return kind, fmt.Errorf("%w: %s", ErrUnrecognized, path)
	}
	if kind.MIME.Type != "audio" && kind.MIME.Type != "video" {
		return kind, fmt.Errorf("%w: %s is %s", ErrUnrecognized, path, kind.MIME.Value)
	}
	return kind, nil
}

// TagLib reads tags through TagLib (WebAssembly build, no cgo).
//
// TagLib exposes a single property map per file, reported as container
// metadata with no streams.
type TagLib struct{}

// Name implements Source.
func (TagLib) Name() string { return NameTagLib }

// Open implements Source.
func (TagLib) Open(ctx context.Context, path string) (Handle, error) {
	if _, err := Sniff(path); err != nil {
		return nil, err
	}
	tags, err := taglib.ReadTags(path)
	if err != nil {
		return nil, fmt.Errorf("taglib read: %w", err)
	}
	return &StaticHandle{Container: fromTagLib(tags)}, nil
}

// taglibKeys maps TagLib property names onto dictionary keys where they
// differ by more than letter case.
var taglibKeys = map[string]string{
	taglib.AlbumArtist: "album_artist",
	taglib.TrackNumber: "track",
	taglib.DiscNumber:  "disc",
	"TRACKTOTAL":       "tracktotal",
	"TOTALTRACKS":      "tracktotal",
}

func fromTagLib(tags map[string][]string) Dictionary {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := make(Dictionary, 0, len(keys))
	for _, k := range keys {
		value := firstNonEmpty(tags[k])
		if value == "" {
			continue
		}
		key, ok := taglibKeys[k]
		if !ok {
			key = strings.ToLower(k)
		}
		d = append(d, Entry{Key: key, Value: value})
	}
	return d
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Tag reads ID3, MP4, FLAC and OGG tags with the pure Go dhowden/tag
// reader.
type Tag struct{}

// Name implements Source.
func (Tag) Name() string { return NameTag }

// Open implements Source.
func (Tag) Open(ctx context.Context, path string) (Handle, error) {
	if _, err := Sniff(path); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	m, err := tag.ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("tag read: %w", err)
	}
	return &StaticHandle{Container: fromTagMetadata(m)}, nil
}

func fromTagMetadata(m tag.Metadata) Dictionary {
	var d Dictionary
	add := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			d = append(d, Entry{Key: key, Value: value})
		}
	}

	add("title", m.Title())
	add("artist", m.Artist())
	add("album", m.Album())
	add("album_artist", m.AlbumArtist())
	add("genre", m.Genre())
	if year := m.Year(); year > 0 {
		add("date", strconv.Itoa(year))
	}
	track, total := m.Track()
	if track > 0 {
		add("track", strconv.Itoa(track))
	}
	if total > 0 {
		add("tracktotal", strconv.Itoa(total))
	}
	if disc, _ := m.Disc(); disc > 0 {
		add("disc", strconv.Itoa(disc))
	}
	return d
}

// EmbeddedPicture returns the raw bytes of the picture embedded in the tags
// of path, or nil when there is none.
func EmbeddedPicture(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	m, err := tag.ReadFrom(file)
	if err != nil {
		return nil, err
	}
	if pic := m.Picture(); pic != nil {
		return pic.Data, nil
	}
	return nil, nil
}

// ID3 reads ID3v2 text frames with bogem/id3v2. Files without an ID3v2 tag
// are rejected so a chain can fall through to the next source.
type ID3 struct{}

// id3Frames lists the frames read by ID3, in dictionary order.
var id3Frames = []struct {
	id  string
	key string
}{
	{"TIT2", "title"},
	{"TPE1", "artist"},
	{"TALB", "album"},
	{"TPE2", "album_artist"},
	{"TCON", "genre"},
	{"TDRC", "date"},
	{"TYER", "date"},
	{"TRCK", "track"},
	{"TPOS", "disc"},
}

// Name implements Source.
func (ID3) Name() string { return NameID3 }

// Open implements Source.
func (ID3) Open(ctx context.Context, path string) (Handle, error) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("id3v2 read: %w", err)
	}
	defer t.Close()

	if !t.HasFrames() {
		return nil, fmt.Errorf("%w: no ID3v2 tag in %s", ErrUnrecognized, path)
	}

	var d Dictionary
	for _, frame := range id3Frames {
		if text := strings.TrimSpace(t.GetTextFrame(frame.id).Text); text != "" {
			d = append(d, Entry{Key: frame.key, Value: text})
		}
	}
	return &StaticHandle{Container: d}, nil
}
