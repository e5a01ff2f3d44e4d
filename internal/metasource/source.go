package metasource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrUnrecognized means the file is not a media container any source
	// understands.
	ErrUnrecognized = errors.New("not a recognized media container")

	// ErrNoSources is returned by an empty Chain.
	ErrNoSources = errors.New("no metadata sources configured")
)

// Entry is one key/value pair of a metadata dictionary.
type Entry struct {
	Key   string
	Value string
}

// Dictionary is an ordered list of metadata pairs.
//
// Order is the order reported by the source, which matters for
// first-match-wins consumers when a dictionary carries the same key twice
// in different letter case.
type Dictionary []Entry

// Get returns the first value whose key matches key case-insensitively.
func (d Dictionary) Get(key string) (string, bool) {
	for _, e := range d {
		if strings.EqualFold(e.Key, key) {
			return e.Value, true
		}
	}
	return "", false
}

// UnmarshalJSON decodes a JSON object while keeping its key order.
//
// Non-string values are kept as their raw JSON text.
func (d *Dictionary) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*d = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("metadata dictionary: expected object, got %v", tok)
	}

	var out Dictionary
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("metadata dictionary: unexpected key %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			value = string(raw)
		}
		out = append(out, Entry{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*d = out
	return nil
}

// DictionaryFromMap builds a dictionary from a map, ordering keys
// alphabetically so results are deterministic.
func DictionaryFromMap(m map[string]string) Dictionary {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := make(Dictionary, 0, len(keys))
	for _, k := range keys {
		d = append(d, Entry{Key: k, Value: m[k]})
	}
	return d
}

// Handle is an opened media container.
type Handle interface {
	// ContainerMetadata returns the container-level dictionary.
	ContainerMetadata() Dictionary

	// StreamCount returns the number of streams in the container.
	StreamCount() int

	// StreamMetadata returns the dictionary of the stream at index,
	// in ascending stream order.
	StreamMetadata(index int) Dictionary

	// Close releases the handle.
	Close() error
}

// Source opens media containers and exposes their metadata.
type Source interface {
	// Name identifies the source in logs and configuration.
	Name() string

	// Open inspects the file at path. It fails when the file cannot be
	// read as a recognized container.
	Open(ctx context.Context, path string) (Handle, error)
}

// StaticHandle is a Handle whose metadata was fully read at open time.
type StaticHandle struct {
	Container Dictionary
	Streams   []Dictionary
}

// ContainerMetadata implements Handle.
func (h *StaticHandle) ContainerMetadata() Dictionary { return h.Container }

// StreamCount implements Handle.
func (h *StaticHandle) StreamCount() int { return len(h.Streams) }

// StreamMetadata implements Handle. Out of range indexes yield nil.
func (h *StaticHandle) StreamMetadata(index int) Dictionary {
	if index < 0 || index >= len(h.Streams) {
		return nil
	}
	return h.Streams[index]
}

// Close implements Handle.
func (h *StaticHandle) Close() error { return nil }

// Chain tries each source in order and returns the first handle that opens.
type Chain []Source

// Name lists the chained source names.
func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, s := range c {
		names[i] = s.Name()
	}
	return strings.Join(names, ",")
}

// Open implements Source. When every source fails, the returned error joins
// the individual failures.
func (c Chain) Open(ctx context.Context, path string) (Handle, error) {
	if len(c) == 0 {
		return nil, ErrNoSources
	}

	var errs []error
	for _, src := range c {
		h, err := src.Open(ctx, path)
		if err == nil {
			return h, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
	}
	return nil, errors.Join(errs...)
}

// Source names accepted by New.
const (
	NameFFprobe = "ffprobe"
	NameTagLib  = "taglib"
	NameTag     = "tag"
	NameID3     = "id3v2"
)

// Names returns every source name accepted by New.
func Names() []string {
	return []string{NameFFprobe, NameTagLib, NameTag, NameID3}
}

// Options configures the sources built by New.
type Options struct {
	// FFprobeBinary is the ffprobe executable. Defaults to "ffprobe".
	FFprobeBinary string

	// FFprobeTimeout bounds a single ffprobe invocation. Zero means no limit.
	FFprobeTimeout time.Duration
}

// New builds a Chain from source names, in the given order.
func New(names []string, opts Options) (Chain, error) {
	if len(names) == 0 {
		return nil, ErrNoSources
	}

	chain := make(Chain, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case NameFFprobe:
			chain = append(chain, &FFprobe{Binary: opts.FFprobeBinary, Timeout: opts.FFprobeTimeout})
		case NameTagLib:
			chain = append(chain, TagLib{})
		case NameTag:
			chain = append(chain, Tag{})
		case NameID3:
			chain = append(chain, ID3{})
		default:
			return nil, fmt.Errorf("unknown metadata source %q", name)
		}
	}
	return chain, nil
}
