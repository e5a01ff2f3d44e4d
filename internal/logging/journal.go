package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
)

// FieldRunID is the attribute carrying the run identifier.
const FieldRunID = "run_id"

// Entry is one buffered log record.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   []slog.Attr
}

// Journal accumulates log records in memory and writes them out once,
// usually when the process exits.
//
// Records below the journal's level are dropped. Every record carries the
// run ID.
type Journal struct {
	mu      sync.Mutex
	runID   string
	level   slog.Leveler
	entries []Entry
}

// NewJournal creates a Journal keeping records at or above level.
func NewJournal(level slog.Leveler) *Journal {
	if level == nil {
		level = slog.LevelWarn
	}
	return &Journal{runID: uuid.NewString(), level: level}
}

// RunID returns the identifier attached to every record of this journal.
func (j *Journal) RunID() string {
	return j.runID
}

// Handler returns a slog.Handler that appends to the journal.
func (j *Journal) Handler() slog.Handler {
	return &journalHandler{journal: j}
}

// Logger returns a logger writing into the journal.
func (j *Journal) Logger() *slog.Logger {
	return slog.New(j.Handler())
}

// Len returns the number of buffered records.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// Entries returns a copy of the buffered records.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Entry(nil), j.entries...)
}

// Counts returns the number of buffered warnings and errors.
func (j *Journal) Counts() (warnings, errs int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return countLevels(j.entries)
}

func countLevels(entries []Entry) (warnings, errs int) {
	for _, e := range entries {
		switch {
		case e.Level >= slog.LevelError:
			errs++
		case e.Level >= slog.LevelWarn:
			warnings++
		}
	}
	return warnings, errs
}

// Flush renders every buffered record to w and empties the journal.
//
// Output is colored when w is a terminal. Nothing is written when the
// journal is empty.
func (j *Journal) Flush(w io.Writer) error {
	j.mu.Lock()
	entries := j.entries
	j.entries = nil
	j.mu.Unlock()

	if len(entries) == 0 {
		return nil
	}

	st := newStyles(w)
	var buf bytes.Buffer

	warnings, errs := countLevels(entries)
	buf.WriteString(st.paint(st.header, fmt.Sprintf("%s, %s (run %s)",
		plural(warnings, "warning"), plural(errs, "error"), j.runID)))
	buf.WriteByte('\n')

	for _, e := range entries {
		buf.WriteString(st.paint(st.dim, e.Time.Format("15:04:05")))
		buf.WriteByte(' ')
		buf.WriteString(st.paint(st.level(e.Level), levelLabel(e.Level)))
		buf.WriteByte(' ')
		buf.WriteString(e.Message)
		for _, attr := range e.Attrs {
			if attr.Key == FieldRunID {
				continue
			}
			buf.WriteString(st.paint(st.dim, fmt.Sprintf(" %s=%s", attr.Key, formatValue(attr.Value))))
		}
		buf.WriteByte('\n')
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func (j *Journal) append(e Entry) {
	j.mu.Lock()
	j.entries = append(j.entries, e)
	j.mu.Unlock()
}

type journalHandler struct {
	journal *Journal
	attrs   []slog.Attr
	groups  []string
}

func (h *journalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.journal.level.Level()
}

func (h *journalHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.journal.level.Level() {
		return nil
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	attrs := make([]slog.Attr, 0, len(h.attrs)+record.NumAttrs()+1)
	attrs = append(attrs, slog.String(FieldRunID, h.journal.runID))
	attrs = append(attrs, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		attrs = append(attrs, h.qualify(attr))
		return true
	})

	h.journal.append(Entry{
		Time:    ts,
		Level:   record.Level,
		Message: strings.TrimSpace(record.Message),
		Attrs:   attrs,
	})
	return nil
}

func (h *journalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &journalHandler{journal: h.journal, groups: h.groups}
	next.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, attr := range attrs {
		next.attrs = append(next.attrs, h.qualify(attr))
	}
	return next
}

func (h *journalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &journalHandler{
		journal: h.journal,
		attrs:   h.attrs,
		groups:  append(append([]string(nil), h.groups...), name),
	}
}

func (h *journalHandler) qualify(attr slog.Attr) slog.Attr {
	if len(h.groups) == 0 {
		return attr
	}
	return slog.Attr{Key: strings.Join(h.groups, ".") + "." + attr.Key, Value: attr.Value}
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN "
	case level >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}

func formatValue(v slog.Value) string {
	s := v.Resolve().String()
	if strings.ContainsAny(s, " \t\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

type styles struct {
	color  bool
	header lipgloss.Style
	dim    lipgloss.Style
	warn   lipgloss.Style
	err    lipgloss.Style
	plain  lipgloss.Style
}

func (s styles) paint(style lipgloss.Style, text string) string {
	if !s.color {
		return text
	}
	return style.Render(text)
}

func (s styles) level(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return s.err
	case level >= slog.LevelWarn:
		return s.warn
	default:
		return s.plain
	}
}

func newStyles(w io.Writer) styles {
	if !ShouldColorize(w) {
		return styles{}
	}
	r := lipgloss.NewRenderer(w)
	return styles{
		color:  true,
		header: r.NewStyle().Bold(true),
		dim:    r.NewStyle().Foreground(lipgloss.Color("#666666")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("#FFA500")).Bold(true),
		err:    r.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
		plain:  r.NewStyle(),
	}
}

// ShouldColorize reports whether w is a terminal.
func ShouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
