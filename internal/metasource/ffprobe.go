package metasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// FFprobe reads container and stream tags by running ffprobe.
type FFprobe struct {
	// Binary is the ffprobe executable. Empty means "ffprobe" from PATH.
	Binary string

	// Timeout bounds a single invocation. Zero means no limit.
	Timeout time.Duration

	// run executes the command and returns stdout. Tests replace it.
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	Index     int        `json:"index"`
	CodecType string     `json:"codec_type"`
	Tags      Dictionary `json:"tags"`
}

type probeFormat struct {
	FormatName string     `json:"format_name"`
	Tags       Dictionary `json:"tags"`
}

// Name implements Source.
func (f *FFprobe) Name() string { return NameFFprobe }

// Open runs ffprobe against path and decodes the format and stream tags.
func (f *FFprobe) Open(ctx context.Context, path string) (Handle, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("ffprobe inspect: empty path")
	}

	binary := strings.TrimSpace(f.Binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	run := f.run
	if run == nil {
		run = runCommand
	}
	output, err := run(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe inspect: %w", err)
	}
	return parseProbe(output)
}

func parseProbe(output []byte) (*StaticHandle, error) {
	var probe probeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("ffprobe parse: %w", err)
	}
	if probe.Format.FormatName == "" && len(probe.Streams) == 0 {
		return nil, ErrUnrecognized
	}

	sort.SliceStable(probe.Streams, func(i, j int) bool {
		return probe.Streams[i].Index < probe.Streams[j].Index
	})

	handle := &StaticHandle{
		Container: probe.Format.Tags,
		Streams:   make([]Dictionary, len(probe.Streams)),
	}
	for i, stream := range probe.Streams {
		handle.Streams[i] = stream.Tags
	}
	return handle, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(string(exitErr.Stderr)); msg != "" {
				return nil, fmt.Errorf("%w: %s", err, msg)
			}
		}
		return nil, err
	}
	return out, nil
}
