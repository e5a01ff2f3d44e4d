package audio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	ioutils "github.com/handiism/playlist-organizer/internal/io"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestPlaylistReader_Read(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "music", "a.flac")
	b := filepath.Join(dir, "music", "b.mp3")
	touch(t, a)
	touch(t, b)

	content := "\xEF\xBB\xBF#EXTM3U\r\n" +
		"#EXTINF:180,Artist - A\r\n" +
		a + "\r\n" +
		"\r\n" +
		"   \n" +
		"music/b.mp3\n" +
		"./music/a.flac\n" +
		"missing.ogg\n"
	playlist := filepath.Join(dir, "Mix.m3u8")
	if err := os.WriteFile(playlist, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := NewPlaylistReader(ioutils.OS{}, false).Read(playlist)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	entries := result.Table.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Path != a || entries[1].Path != b {
		t.Errorf("entries = %q, %q; want %q, %q", entries[0].Path, entries[1].Path, a, b)
	}
	if result.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", result.Duplicates)
	}
	if len(result.Missing) != 1 || result.Missing[0] != "missing.ogg" {
		t.Errorf("Missing = %v, want [missing.ogg]", result.Missing)
	}
}

func TestPlaylistReader_LongLines(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.flac")
	b := filepath.Join(dir, "b.flac")
	touch(t, a)
	touch(t, b)

	comment := "#EXTINF:-1," + strings.Repeat("x", 2<<20)
	content := a + "\n" + comment + "\r\n" + b
	playlist := filepath.Join(dir, "Long.m3u")
	if err := os.WriteFile(playlist, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := NewPlaylistReader(ioutils.OS{}, false).Read(playlist)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	entries := result.Table.Entries()
	if len(entries) != 2 || entries[0].Path != a || entries[1].Path != b {
		t.Fatalf("entries = %v, want %q and %q", entries, a, b)
	}
	if len(result.Missing) != 0 {
		t.Errorf("Missing = %d lines, want none", len(result.Missing))
	}
}

func TestPlaylistReader_EmptyPlaylist(t *testing.T) {
	playlist := filepath.Join(t.TempDir(), "Empty.m3u")
	if err := os.WriteFile(playlist, []byte("#EXTM3U\n# nothing here\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := NewPlaylistReader(ioutils.OS{}, false).Read(playlist)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if result.Table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", result.Table.Len())
	}
}

func TestPlaylistReader_Unreadable(t *testing.T) {
	reader := NewPlaylistReader(ioutils.OS{}, false)
	if _, err := reader.Read(filepath.Join(t.TempDir(), "nope.m3u")); err == nil {
		t.Error("Read() should fail for a missing playlist")
	}
}

func TestRenderPlaylist(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  string
	}{
		{"empty", nil, ""},
		{"single", []string{"Files/A/B/C.flac"}, "Files/A/B/C.flac\n"},
		{"ordered", []string{"Files/_/_/Untitled Demo.mp3", "Files/A/B/C.flac"}, "Files/_/_/Untitled Demo.mp3\nFiles/A/B/C.flac\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(RenderPlaylist(tt.paths)); got != tt.want {
				t.Errorf("RenderPlaylist() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlaylistWriter_Write(t *testing.T) {
	out := filepath.Join(t.TempDir(), "Mix.m3u8")
	if err := os.WriteFile(out, []byte("stale content that is longer than the new one\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := NewPlaylistWriter(ioutils.OS{}).Write(out, []string{"Files/A/B/C.flac"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Files/A/B/C.flac\n" {
		t.Errorf("content = %q", data)
	}
}
