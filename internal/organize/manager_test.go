package organize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/playlist-organizer/internal/config"
	ioutils "github.com/handiism/playlist-organizer/internal/io"
	"github.com/handiism/playlist-organizer/internal/metasource"
)

type fakeSource map[string]*metasource.StaticHandle

func (f fakeSource) Name() string { return "fake" }

func (f fakeSource) Open(ctx context.Context, path string) (metasource.Handle, error) {
	h, ok := f[path]
	if !ok {
		return nil, metasource.ErrUnrecognized
	}
	return h, nil
}

func tagged(artist, album, title string) *metasource.StaticHandle {
	return &metasource.StaticHandle{
		Container: metasource.Dictionary{
			{Key: "ARTIST", Value: artist},
			{Key: "ALBUM", Value: album},
		},
		Streams: []metasource.Dictionary{
			{{Key: "title", Value: title}},
		},
	}
}

type recorder struct {
	events []ProgressEvent
}

func (r *recorder) record(e ProgressEvent) {
	r.events = append(r.events, e)
}

func (r *recorder) count(level ProgressLevel, substr string) int {
	n := 0
	for _, e := range r.events {
		if e.Level == level && strings.Contains(e.Message, substr) {
			n++
		}
	}
	return n
}

type fixture struct {
	cfgRoot  string
	music    string
	source   fakeSource
	playlist string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	music := filepath.Join(root, "music")

	a := filepath.Join(music, "a.flac")
	track07 := filepath.Join(music, "track07.mp3")
	writeMedia(t, a)
	writeMedia(t, track07)

	source := fakeSource{
		a: tagged("Boards of Canada", "Geogaddi", "Alpha and Omega"),
		track07: {
			Container: metasource.Dictionary{{Key: "encoder", Value: "LAME3.100"}},
		},
	}

	content := "#comment\n" + a + "\n" + filepath.Join(music, "missing.mp3") + "\n" + track07 + "\n"
	playlist := filepath.Join(root, "Input", "test.m3u8")
	writeMedia(t, playlist)
	if err := os.WriteFile(playlist, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	return &fixture{cfgRoot: root, music: music, source: source, playlist: playlist}
}

func TestManager_Run(t *testing.T) {
	fx := newFixture(t)
	cfg := testConfig(fx.cfgRoot)
	rec := &recorder{}

	m := newManager(cfg, ioutils.OS{}, fx.source, rec.record)
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	dest := filepath.Join(cfg.OutputDir, "Files", "Boards of Canada", "Geogaddi", "Alpha and Omega.flac")
	srcInfo, err := os.Stat(filepath.Join(fx.music, "a.flac"))
	if err != nil {
		t.Fatal(err)
	}
	dstInfo, err := os.Stat(dest)
	if err != nil || !os.SameFile(srcInfo, dstInfo) {
		t.Fatalf("expected hard link at %s: %v", dest, err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "test.m3u8"))
	if err != nil {
		t.Fatalf("playlist not written: %v", err)
	}
	want := sep("Files", "Boards of Canada", "Geogaddi", "Alpha and Omega.flac") + "\n"
	if string(data) != want {
		t.Errorf("playlist = %q, want %q", data, want)
	}

	if n := rec.count(LevelWarning, "track07.mp3"); n != 1 {
		t.Errorf("got %d warnings for track07.mp3, want 1", n)
	}
	if n := rec.count(LevelWarning, "missing.mp3"); n != 1 {
		t.Errorf("got %d warnings for missing.mp3, want 1", n)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "Files", "_", "_", "track07.mp3")); !os.IsNotExist(err) {
		t.Error("file without metadata should not be linked")
	}

	stats := m.Stats()
	if len(stats) != 1 {
		t.Fatalf("got %d stats, want 1", len(stats))
	}
	s := stats[0]
	if s.Entries != 2 || s.Missing != 1 || s.Linked != 1 || s.Skipped != 1 || !s.Written {
		t.Errorf("stats = %+v", s)
	}
	if processed, total := m.GetProgress(); processed != 2 || total != 2 {
		t.Errorf("GetProgress() = %d/%d, want 2/2", processed, total)
	}
}

func TestManager_Idempotent(t *testing.T) {
	fx := newFixture(t)
	cfg := testConfig(fx.cfgRoot)

	first := newManager(cfg, ioutils.OS{}, fx.source, nil)
	if err := first.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(cfg.OutputDir, "test.m3u8")
	before, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	second := newManager(cfg, ioutils.OS{}, fx.source, nil)
	if err := second.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	after, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	if string(before) != string(after) {
		t.Errorf("playlist changed between runs:\n%q\n%q", before, after)
	}
	s := second.Stats()[0]
	if s.Linked != 0 || s.Existing != 1 {
		t.Errorf("second run stats = %+v, want 0 linked and 1 existing", s)
	}
}

func TestManager_DryRun(t *testing.T) {
	fx := newFixture(t)
	cfg := testConfig(fx.cfgRoot)
	cfg.DryRun = true

	m := newManager(cfg, ioutils.OS{}, fx.source, nil)
	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cfg.OutputDir); !os.IsNotExist(err) {
		t.Error("dry run should not create the output directory")
	}
	if s := m.Stats()[0]; s.Planned != 1 || s.Written {
		t.Errorf("stats = %+v", s)
	}
}

func TestManager_EmptyPlaylistIsNotWritten(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	playlist := filepath.Join(cfg.InputDir, "Empty.m3u")
	writeMedia(t, playlist)
	if err := os.WriteFile(playlist, []byte("#EXTM3U\n/nowhere/gone.mp3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m := newManager(cfg, ioutils.OS{}, fakeSource{}, nil)
	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "Empty.m3u")); !os.IsNotExist(err) {
		t.Error("playlist without existing files should not be written")
	}
}

func TestManager_UnopenableContainer(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	a := filepath.Join(root, "music", "a.flac")
	broken := filepath.Join(root, "music", "broken.mp3")
	writeMedia(t, a)
	writeMedia(t, broken)

	playlist := filepath.Join(cfg.InputDir, "Mixed.m3u")
	writeMedia(t, playlist)
	if err := os.WriteFile(playlist, []byte(broken+"\n"+a+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	source := fakeSource{a: tagged("X", "Y", "Z")}
	rec := &recorder{}
	m := newManager(cfg, ioutils.OS{}, source, rec.record)
	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "Mixed.m3u"))
	if err != nil {
		t.Fatal(err)
	}
	if want := sep("Files", "X", "Y", "Z.flac") + "\n"; string(data) != want {
		t.Errorf("playlist = %q, want %q", data, want)
	}
	if strings.Contains(string(data), "broken") {
		t.Error("unopenable file should not be listed")
	}
	if rec.count(LevelError, "broken.mp3") != 1 {
		t.Error("unopenable file should be reported once as an error")
	}

	linked := 0
	err = filepath.WalkDir(filepath.Join(cfg.OutputDir, cfg.FilesDir), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			linked++
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if linked != 1 {
		t.Errorf("got %d linked files, want 1", linked)
	}
	if s := m.Stats()[0]; s.Linked != 1 || s.Skipped != 1 {
		t.Errorf("stats = %+v, want 1 linked and 1 skipped", s)
	}
}

func TestManager_LinkFailureOmitsFile(t *testing.T) {
	fx := newFixture(t)
	cfg := testConfig(fx.cfgRoot)
	rec := &recorder{}

	m := newManager(cfg, failingLinkFS{err: os.ErrPermission}, fx.source, rec.record)
	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "test.m3u8"))
	if err != nil {
		t.Fatalf("playlist should still be written: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("playlist = %q, want empty", data)
	}
	if rec.count(LevelError, "a.flac") != 1 {
		t.Error("link failure should be reported once as an error")
	}
	if s := m.Stats()[0]; s.Failed != 1 {
		t.Errorf("Failed = %d, want 1", s.Failed)
	}
}

func TestManager_Conflict(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	a := filepath.Join(root, "music", "a.flac")
	b := filepath.Join(root, "copy", "a.flac")
	writeMedia(t, a)
	writeMedia(t, b)

	playlist := filepath.Join(cfg.InputDir, "Dupes.m3u")
	writeMedia(t, playlist)
	if err := os.WriteFile(playlist, []byte(a+"\n"+b+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	source := fakeSource{a: tagged("X", "Y", "Z"), b: tagged("X", "Y", "Z")}
	rec := &recorder{}
	m := newManager(cfg, ioutils.OS{}, source, rec.record)
	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if rec.count(LevelWarning, "share the destination") != 1 {
		t.Error("expected one conflict warning")
	}
	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "Dupes.m3u"))
	if err != nil {
		t.Fatal(err)
	}
	line := sep("Files", "X", "Y", "Z.flac")
	if string(data) != line+"\n"+line+"\n" {
		t.Errorf("playlist = %q", data)
	}
}

func TestManager_Cancelled(t *testing.T) {
	fx := newFixture(t)
	cfg := testConfig(fx.cfgRoot)

	ctx, cancel := context.WithCancel(context.Background())
	m := newManager(cfg, ioutils.OS{}, fx.source, nil)
	if err := m.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	if err := m.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Start() error = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "test.m3u8")); !os.IsNotExist(err) {
		t.Error("cancelled run should not write the playlist")
	}
}

func TestManager_Initialize(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	for _, name := range []string{"b.M3U8", "a.m3u", "notes.txt", "c.pls"} {
		writeMedia(t, filepath.Join(cfg.InputDir, name))
	}
	if err := os.MkdirAll(filepath.Join(cfg.InputDir, "dir.m3u"), 0755); err != nil {
		t.Fatal(err)
	}

	m := newManager(cfg, ioutils.OS{}, fakeSource{}, nil)
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := strings.Join(m.GetPlaylistNames(), ",")
	if got != "a.m3u,b.M3U8" {
		t.Errorf("playlists = %s, want a.m3u,b.M3U8", got)
	}

	missing := newManager(testConfig(filepath.Join(root, "nope")), ioutils.OS{}, fakeSource{}, nil)
	if err := missing.Initialize(context.Background()); err == nil {
		t.Error("Initialize() should fail for a missing input directory")
	}
}

func TestNewManager_RejectsUnknownSource(t *testing.T) {
	settings := config.DefaultSettings()
	settings.MetadataSources = []string{"mediainfo"}
	if _, err := NewManager(settings, nil); err == nil {
		t.Error("NewManager() should reject unknown metadata sources")
	}
}
