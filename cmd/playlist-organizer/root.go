package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/handiism/playlist-organizer/internal/config"
	ioutils "github.com/handiism/playlist-organizer/internal/io"
	"github.com/handiism/playlist-organizer/internal/logging"
	"github.com/handiism/playlist-organizer/internal/organize"
	"github.com/spf13/cobra"
)

type options struct {
	input      string
	output     string
	configPath string
	verbose    bool
	dryRun     bool
	coverArt   bool
}

func newRootCommand() *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "playlist-organizer",
		Short: "Organize the media referenced by playlists into Artist/Album/Title",
		Long: "Reads every playlist in the input directory, hard links each referenced file to\n" +
			"<output>/Files/<artist>/<album>/<title>.<ext> using its embedded metadata, and\n" +
			"writes a playlist of the same name pointing at the new layout.\n\n" +
			"For interactive mode, use: playlist-organizer-tui",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), settings, opts.verbose, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "Directory containing the playlists (overrides config)")
	flags.StringVarP(&opts.output, "output", "o", "", "Output directory (overrides config)")
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a JSON or TOML config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Show every file as it is processed")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Show what would be done without changing anything")
	flags.BoolVar(&opts.coverArt, "cover-art", false, "Export embedded cover art into album directories")

	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// loadSettings reads the config file and applies the flags that were set.
func loadSettings(cmd *cobra.Command, opts options) (*config.Settings, error) {
	settings := config.DefaultSettings()
	if opts.configPath != "" {
		var err error
		settings, err = config.Load(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		settings.InputDir = opts.input
	}
	if flags.Changed("output") {
		settings.OutputDir = opts.output
	}
	if flags.Changed("dry-run") {
		settings.DryRun = opts.dryRun
	}
	if flags.Changed("cover-art") {
		settings.SaveCoverArt = opts.coverArt
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return settings, nil
}

// run organizes every playlist. Warnings and errors are collected and
// written to stderr once, when run returns.
func run(ctx context.Context, settings *config.Settings, verbose bool, stdout, stderr io.Writer) error {
	journal := logging.NewJournal(slog.LevelWarn)
	defer journal.Flush(stderr)
	logger := journal.Logger()

	if settings.LockOutput && !settings.DryRun {
		unlock, err := ioutils.LockOutput(settings.OutputDir)
		if err != nil {
			return err
		}
		defer unlock()
	}

	manager, err := organize.NewManager(settings, func(event organize.ProgressEvent) {
		switch event.Level {
		case organize.LevelWarning:
			logger.Warn(event.Message)
		case organize.LevelError:
			logger.Error(event.Message)
		case organize.LevelVerbose:
			if verbose {
				fmt.Fprintln(stdout, "   "+event.Message)
			}
		case organize.LevelSuccess:
			fmt.Fprintln(stdout, "✓ "+event.Message)
		default:
			fmt.Fprintln(stdout, "› "+event.Message)
		}
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, "♪ Playlist Organizer")
	if settings.DryRun {
		fmt.Fprintln(stdout, "[Dry run - nothing will be changed]")
	}
	fmt.Fprintln(stdout)

	runErr := manager.Run(ctx)

	if stats := manager.Stats(); len(stats) > 0 {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, renderSummary(stats))
	}

	if runErr != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(stdout, "\nOrganizing cancelled.")
			return ctx.Err()
		}
		return runErr
	}

	processed, total := manager.GetProgress()
	warnings, errs := journal.Counts()
	fmt.Fprintf(stdout, "Complete! Processed %d/%d files, %d warning(s), %d error(s)\n", processed, total, warnings, errs)
	return nil
}
