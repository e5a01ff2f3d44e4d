// Package logging buffers warnings and errors for the end of a run.
//
// A Journal is a log/slog sink that keeps records in memory instead of
// writing them immediately, so a long run prints a single report on exit:
//
//	journal := logging.NewJournal(slog.LevelWarn)
//	logger := journal.Logger()
//	logger.Warn("no usable metadata", "file", "/music/track07.mp3")
//	...
//	journal.Flush(os.Stderr)
//
// Flush colors the report with lipgloss when the writer is a terminal.
// Every record carries the run ID under the "run_id" key.
package logging
