package fetch

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrEmptySource is returned when a source identifier is blank.
var ErrEmptySource = errors.New("source must not be empty")

// Source identifies one thing to fetch: either a remote URL or a path on the
// local filesystem (a single file or a directory of files). A Source is
// immutable once parsed.
type Source struct {
	raw   string
	local bool
	path  string
}

// ParseSource classifies a raw source identifier. "file://" URLs and bare
// paths are local; anything with a URL scheme and host is remote.
func ParseSource(raw string) (Source, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Source{}, ErrEmptySource
	}

	if strings.HasPrefix(trimmed, "file://") {
		u, err := url.Parse(trimmed)
		if err != nil {
			return Source{}, fmt.Errorf("parsing source %q: %w", raw, err)
		}
		return Source{raw: trimmed, local: true, path: filepath.FromSlash(u.Path)}, nil
	}

	if u, err := url.Parse(trimmed); err == nil && u.Scheme != "" && u.Host != "" {
		return Source{raw: trimmed}, nil
	}

	// No scheme: a plain filesystem path.
	return Source{raw: trimmed, local: true, path: trimmed}, nil
}

// MustParseSource is a ParseSource that panics on error, for use with
// hard-coded identifiers.
func MustParseSource(raw string) Source {
	src, err := ParseSource(raw)
	if err != nil {
		panic(err)
	}
	return src
}

// ParseSources parses a list of raw identifiers, preserving order.
func ParseSources(raw []string) ([]Source, error) {
	sources := make([]Source, 0, len(raw))
	for _, r := range raw {
		src, err := ParseSource(r)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// String returns the identifier the source was parsed from.
func (s Source) String() string {
	return s.raw
}

// IsLocal reports whether the source refers to the local filesystem.
func (s Source) IsLocal() bool {
	return s.local
}

// LocalPath returns the filesystem path for a local source, or "" for a
// remote one.
func (s Source) LocalPath() string {
	return s.path
}
