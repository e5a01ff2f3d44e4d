package model

import (
	"errors"
	"path/filepath"
	"testing"
)

type fakeExister map[string]bool

func (f fakeExister) Exists(path string) bool {
	return f[path]
}

func TestMetadataRecord_FirstMatchWins(t *testing.T) {
	var rec MetadataRecord

	if !rec.Fill("ARTIST", "Boards of Canada") {
		t.Fatal("first artist value should fill the record")
	}
	if rec.Fill("artist", "Someone Else") {
		t.Error("second artist value should be ignored")
	}
	if rec.Artist != "Boards of Canada" {
		t.Errorf("Artist = %q, want %q", rec.Artist, "Boards of Canada")
	}
}

func TestMetadataRecord_IgnoresEmptyAndUnknown(t *testing.T) {
	var rec MetadataRecord

	if rec.Fill("title", "") {
		t.Error("empty value should not fill")
	}
	if rec.Fill("artist_sort", "Canada, Boards of") {
		t.Error("unrecognized key should not fill")
	}
	if rec.IsUsable() {
		t.Error("record with no fields should not be usable")
	}

	rec.Fill("Title", "Alpha and Omega")
	if !rec.IsUsable() {
		t.Error("record with a title should be usable")
	}
}

func TestLookupField(t *testing.T) {
	tests := []struct {
		key  string
		want Field
		ok   bool
	}{
		{"album", FieldAlbum, true},
		{"ALBUM_ARTIST", FieldAlbumArtist, true},
		{"TrackTotal", FieldTrackTotal, true},
		{"disc", FieldDisc, true},
		{"album artist", "", false},
		{"tracknumber", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := LookupField(tt.key)
			if got != tt.want || ok != tt.ok {
				t.Errorf("LookupField(%q) = %q, %v, want %q, %v", tt.key, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSplitName(t *testing.T) {
	sep := string(filepath.Separator)
	tests := []struct {
		name     string
		path     string
		wantBase string
		wantExt  string
		wantErr  error
	}{
		{"simple", sep + "music" + sep + "a.flac", "a", "flac", nil},
		{"multiple dots", sep + "music" + sep + "01. Intro.live.mp3", "01. Intro.live", "mp3", nil},
		{"no extension", sep + "music" + sep + "README", "", "", ErrNoExtension},
		{"dot in directory only", sep + "music.d" + sep + "README", "", "", ErrNoExtension},
		{"trailing dot", sep + "music" + sep + "track.", "", "", ErrNoExtension},
		{"no separator", "a.flac", "", "", ErrNoSeparator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, ext, err := SplitName(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SplitName(%q) error = %v, want %v", tt.path, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SplitName(%q) unexpected error: %v", tt.path, err)
			}
			if base != tt.wantBase || ext != tt.wantExt {
				t.Errorf("SplitName(%q) = %q, %q, want %q, %q", tt.path, base, ext, tt.wantBase, tt.wantExt)
			}
		})
	}
}

func TestPathEntry_LazyName(t *testing.T) {
	entry := &PathEntry{Path: filepath.Join(string(filepath.Separator)+"music", "track07.mp3")}

	base, err := entry.BaseName()
	if err != nil || base != "track07" {
		t.Errorf("BaseName() = %q, %v, want %q", base, err, "track07")
	}
	ext, err := entry.Extension()
	if err != nil || ext != "mp3" {
		t.Errorf("Extension() = %q, %v, want %q", ext, err, "mp3")
	}
}

func TestPathTable_Deduplicates(t *testing.T) {
	a := filepath.Join(string(filepath.Separator)+"music", "a.flac")
	b := filepath.Join(string(filepath.Separator)+"music", "b.flac")
	table := NewPathTable(fakeExister{a: true, b: true}, false)

	first, inserted, err := table.InsertIfAbsent(a)
	if err != nil || !inserted {
		t.Fatalf("first insert = %v, %v", inserted, err)
	}
	if _, _, err := table.InsertIfAbsent(b); err != nil {
		t.Fatalf("insert b: %v", err)
	}
	again, inserted, err := table.InsertIfAbsent(a)
	if err != nil || inserted {
		t.Fatalf("duplicate insert = %v, %v", inserted, err)
	}
	if again != first {
		t.Error("duplicate insert should return the existing entry")
	}

	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	entries := table.Entries()
	if entries[0].Path != a || entries[1].Path != b {
		t.Errorf("Entries() order = [%s %s], want [%s %s]", entries[0].Path, entries[1].Path, a, b)
	}
}

func TestPathTable_Missing(t *testing.T) {
	table := NewPathTable(fakeExister{}, false)

	entry, inserted, err := table.InsertIfAbsent("/music/missing.mp3")
	if !errors.Is(err, ErrMissingFile) {
		t.Fatalf("error = %v, want ErrMissingFile", err)
	}
	if entry != nil || inserted {
		t.Error("missing file should not produce an entry")
	}
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", table.Len())
	}
}

func TestPathTable_CaseFolding(t *testing.T) {
	upper := filepath.Join(string(filepath.Separator)+"Music", "A.flac")
	lower := filepath.Join(string(filepath.Separator)+"music", "a.flac")
	exists := fakeExister{upper: true, lower: true}

	folded := NewPathTable(exists, true)
	folded.InsertIfAbsent(upper)
	folded.InsertIfAbsent(lower)
	if folded.Len() != 1 {
		t.Errorf("case-insensitive table Len() = %d, want 1", folded.Len())
	}
	if _, ok := folded.Lookup(lower); !ok {
		t.Error("Lookup should match regardless of case")
	}

	exact := NewPathTable(exists, false)
	exact.InsertIfAbsent(upper)
	exact.InsertIfAbsent(lower)
	if exact.Len() != 2 {
		t.Errorf("case-sensitive table Len() = %d, want 2", exact.Len())
	}
}

func TestPlacementStatus_String(t *testing.T) {
	tests := []struct {
		status PlacementStatus
		want   string
	}{
		{StatusLinked, "linked"},
		{StatusExisting, "existing"},
		{StatusPlanned, "planned"},
		{PlacementStatus(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
