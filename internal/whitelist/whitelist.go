// Package whitelist implements the URL allowlist predicate: a URL is
// whitelisted iff any configured pattern matches it. Patterns are
// glob-style; a pattern containing a "/" is matched against the full URL,
// any other pattern against the URL's host.
package whitelist

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

type pattern struct {
	raw  string
	g    glob.Glob
	full bool
}

// Allowlist is an ordered, immutable set of URL patterns.
type Allowlist struct {
	patterns []pattern
}

// New compiles the given patterns. Pattern order is preserved, although it
// only affects which pattern matches first, not the outcome.
func New(raw []string) (*Allowlist, error) {
	patterns := make([]pattern, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		g, err := glob.Compile(r)
		if err != nil {
			return nil, fmt.Errorf("compiling whitelist pattern %q: %w", r, err)
		}
		patterns = append(patterns, pattern{
			raw:  r,
			g:    g,
			full: strings.Contains(r, "/"),
		})
	}
	return &Allowlist{patterns: patterns}, nil
}

// Contains reports whether any pattern matches the given URL. Host patterns
// are matched against the URL's hostname; full patterns against the whole
// URL string. An unparseable URL is matched as a bare host.
func (a *Allowlist) Contains(rawURL string) bool {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	host = strings.ToLower(host)

	for _, p := range a.patterns {
		if p.full {
			if p.g.Match(rawURL) {
				return true
			}
			continue
		}
		if p.g.Match(host) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled patterns.
func (a *Allowlist) Len() int {
	return len(a.patterns)
}
