// Package tui provides a Bubble Tea terminal user interface for playlist-organizer.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/playlist-organizer/internal/config"
	ioutils "github.com/handiism/playlist-organizer/internal/io"
	"github.com/handiism/playlist-organizer/internal/organize"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	playlistStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is the number of log lines kept on screen.
const maxLogs = 10

// errCancelled is reported when the user aborts a run.
var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateOrganizing
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   organize.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	playlists []string
	stats     []organize.Stats
	warnings  int
	errors    int
	err       error

	// Run context
	ctx    context.Context
	cancel context.CancelFunc

	// Manager of the current run and the release of its output lock
	manager *organize.Manager
	unlock  func()
	events  chan organize.ProgressEvent

	// Progress
	totalFiles     int32
	processedFiles int32

	// Options
	verbose  bool
	dryRun   bool
	coverArt bool

	width  int
	height int
}

// NewModel creates a new TUI model starting from settings.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "path/to/playlists"
	ti.SetValue(settings.InputDir)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		events:    make(chan organize.ProgressEvent, 256),
		dryRun:    settings.DryRun,
		coverArt:  settings.SaveCoverArt,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one event from the manager.
	ProgressMsg struct {
		Event organize.ProgressEvent
	}

	// InitDoneMsg is sent when the playlists have been listed.
	InitDoneMsg struct {
		Playlists []string
		Manager   *organize.Manager
		Unlock    func()
		Err       error
	}

	// OrganizeDoneMsg is sent when every playlist has been processed.
	OrganizeDoneMsg struct {
		Processed int32
		Total     int32
		Stats     []organize.Stats
		Err       error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateOrganizing || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = errCancelled
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateInitializing
				return m, tea.Batch(m.initializeRun(), m.spinner.Tick, m.waitForEvent())
			}

		case "f2":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "f3":
			if m.state == StateInput {
				m.dryRun = !m.dryRun
				return m, nil
			}

		case "f4":
			if m.state == StateInput {
				m.coverArt = !m.coverArt
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new run
				m.cancel()
				m.state = StateInput
				m.logs = nil
				m.playlists = nil
				m.stats = nil
				m.warnings = 0
				m.errors = 0
				m.err = nil
				m.processedFiles = 0
				m.totalFiles = 0
				m.manager = nil
				m.unlock = nil
				m.events = make(chan organize.ProgressEvent, 256)
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.Focus()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		m = m.addLog(msg.Event)
		cmds = append(cmds, m.waitForEvent())

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.playlists = msg.Playlists
			m.manager = msg.Manager
			m.unlock = msg.Unlock
			m.state = StateOrganizing
			cmds = append(cmds, m.startRun(), m.tickProgress())
		}

	case OrganizeDoneMsg:
		m.processedFiles = msg.Processed
		m.totalFiles = msg.Total
		m.stats = msg.Stats
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateOrganizing {
			m.processedFiles, m.totalFiles = m.manager.GetProgress()

			var percent float64
			if m.totalFiles > 0 {
				percent = float64(m.processedFiles) / float64(m.totalFiles)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// addLog records an event, counting warnings and errors even when the line
// itself is not shown.
func (m Model) addLog(event organize.ProgressEvent) Model {
	switch event.Level {
	case organize.LevelWarning:
		m.warnings++
	case organize.LevelError:
		m.errors++
	case organize.LevelVerbose:
		if !m.verbose {
			return m
		}
	}

	m.logs = append(m.logs, LogEntry{Message: event.Message, Level: event.Level})
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
	return m
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent blocks until the manager reports the next event.
//
// The events channel is closed once the run can no longer report anything,
// after a failed initialization or when startRun returns, which ends the
// wait after the buffered events have been drained.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case event, ok := <-events:
			if !ok {
				return nil
			}
			return ProgressMsg{Event: event}
		case <-ctx.Done():
			return nil
		}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("♪ Playlist Organizer"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Rebuild a music library from your playlists"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateOrganizing:
		b.WriteString(m.viewOrganizing())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Playlist directory:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Verbose output (f2)\n", checkbox(m.verbose)))
	b.WriteString(fmt.Sprintf("  %s Dry run, change nothing (f3)\n", checkbox(m.dryRun)))
	b.WriteString(fmt.Sprintf("  %s Export cover art (f4)\n", checkbox(m.coverArt)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output path: %s", m.settings.OutputDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Looking for playlists..."))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewOrganizing() string {
	var b strings.Builder

	if len(m.playlists) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Found %d playlist(s):", len(m.playlists))))
		b.WriteString("\n")
		for _, name := range m.playlists {
			b.WriteString(playlistStyle.Render(fmt.Sprintf("  ♪ %s", name)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.processedFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d | Warnings: %d | Errors: %d",
		m.processedFiles,
		m.totalFiles,
		m.warnings,
		m.errors,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var linked, existing, planned, skipped, failed int
	for _, s := range m.stats {
		linked += s.Linked
		existing += s.Existing
		planned += s.Planned
		skipped += s.Skipped + s.Missing
		failed += s.Failed
	}

	title := "✓ Organizing Complete!"
	if m.dryRun {
		title = "✓ Dry Run Complete!"
	}

	var b strings.Builder
	box := boxStyle.Render(fmt.Sprintf(
		"%s\n\n"+
			"Playlists: %d\n"+
			"Linked: %d\n"+
			"Already organized: %d\n"+
			"Planned: %d\n"+
			"Skipped: %d\n"+
			"Failed: %d",
		title,
		len(m.stats),
		linked,
		existing,
		planned,
		skipped,
		failed,
	))
	b.WriteString(box)
	b.WriteString("\n")
	if m.warnings > 0 || m.errors > 0 {
		b.WriteString(warningStyle.Render(fmt.Sprintf("%d warning(s), %d error(s)", m.warnings, m.errors)))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case organize.LevelError:
			style = errorStyle
			prefix = "✗"
		case organize.LevelWarning:
			style = warningStyle
			prefix = "!"
		case organize.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case organize.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • f2: verbose • f3: dry run • f4: cover art • esc: quit"
	case StateInitializing, StateOrganizing:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

// runSettings applies the screen options to a copy of the settings.
func (m Model) runSettings() *config.Settings {
	settings := *m.settings
	settings.InputDir = strings.TrimSpace(m.textInput.Value())
	settings.DryRun = m.dryRun
	settings.SaveCoverArt = m.coverArt
	return &settings
}

// initializeRun validates the settings, locks the output, creates the
// manager and lists the playlists.
//
// The lock is held until startRun returns. On failure it is released here
// and the events channel is closed.
func (m Model) initializeRun() tea.Cmd {
	settings := m.runSettings()
	ctx := m.ctx
	events := m.events

	return func() tea.Msg {
		unlock := func() {}
		fail := func(err error) tea.Msg {
			unlock()
			close(events)
			return InitDoneMsg{Err: err}
		}

		if err := settings.Validate(); err != nil {
			return fail(err)
		}

		if settings.LockOutput && !settings.DryRun {
			release, err := ioutils.LockOutput(settings.OutputDir)
			if err != nil {
				return fail(err)
			}
			unlock = release
		}

		manager, err := organize.NewManager(settings, func(event organize.ProgressEvent) {
			select {
			case events <- event:
			case <-ctx.Done():
			}
		})
		if err != nil {
			return fail(err)
		}

		if err := manager.Initialize(ctx); err != nil {
			return fail(err)
		}

		return InitDoneMsg{
			Playlists: manager.GetPlaylistNames(),
			Manager:   manager,
			Unlock:    unlock,
		}
	}
}

// startRun processes the playlists in the background, then releases the
// output lock and closes the events channel.
func (m Model) startRun() tea.Cmd {
	manager := m.manager
	unlock := m.unlock
	ctx := m.ctx
	events := m.events

	return func() tea.Msg {
		defer close(events)
		if unlock != nil {
			defer unlock()
		}

		if manager == nil {
			return OrganizeDoneMsg{Err: errors.New("no manager")}
		}

		err := manager.Start(ctx)
		processed, total := manager.GetProgress()

		return OrganizeDoneMsg{
			Processed: processed,
			Total:     total,
			Stats:     manager.Stats(),
			Err:       err,
		}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
