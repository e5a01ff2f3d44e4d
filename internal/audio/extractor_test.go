package audio

import (
	"context"
	"errors"
	"testing"

	"github.com/handiism/playlist-organizer/internal/metasource"
)

type fakeSource struct {
	handle *metasource.StaticHandle
	err    error
}

func (f fakeSource) Name() string { return "fake" }

func (f fakeSource) Open(ctx context.Context, path string) (metasource.Handle, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.handle, nil
}

func TestExtractor_ContainerThenStreams(t *testing.T) {
	src := fakeSource{handle: &metasource.StaticHandle{
		Container: metasource.Dictionary{
			{Key: "ARTIST", Value: "Boards of Canada"},
			{Key: "artist", Value: "ignored"},
			{Key: "title", Value: ""},
			{Key: "encoder", Value: "Lavf"},
		},
		Streams: []metasource.Dictionary{
			{{Key: "title", Value: "Alpha and Omega"}, {Key: "album", Value: "Geogaddi"}},
			{{Key: "album", Value: "Cover Stream"}, {Key: "genre", Value: "Electronic"}},
		},
	}}

	rec, usable, err := NewExtractor(src).Extract(context.Background(), "/music/a.flac")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !usable {
		t.Fatal("record should be usable")
	}

	checks := map[string]string{
		"artist": rec.Artist,
		"title":  rec.Title,
		"album":  rec.Album,
		"genre":  rec.Genre,
	}
	want := map[string]string{
		"artist": "Boards of Canada",
		"title":  "Alpha and Omega",
		"album":  "Geogaddi",
		"genre":  "Electronic",
	}
	for k, v := range want {
		if checks[k] != v {
			t.Errorf("%s = %q, want %q", k, checks[k], v)
		}
	}
}

func TestExtractor_NoRecognizedTags(t *testing.T) {
	src := fakeSource{handle: &metasource.StaticHandle{
		Container: metasource.Dictionary{{Key: "encoder", Value: "Lavf"}},
		Streams:   []metasource.Dictionary{{{Key: "language", Value: "eng"}}},
	}}

	_, usable, err := NewExtractor(src).Extract(context.Background(), "/music/track07.mp3")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if usable {
		t.Error("record without recognized tags should not be usable")
	}
}

func TestExtractor_OpenFailure(t *testing.T) {
	src := fakeSource{err: metasource.ErrUnrecognized}

	_, usable, err := NewExtractor(src).Extract(context.Background(), "/music/notes.txt")
	if !errors.Is(err, metasource.ErrUnrecognized) {
		t.Errorf("error = %v, want ErrUnrecognized", err)
	}
	if usable {
		t.Error("failed open should not be usable")
	}
}
