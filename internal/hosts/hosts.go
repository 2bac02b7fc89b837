// Package hosts consumes fetched blocklists: it parses hosts-file style
// content into a blocked-host set and answers whether a URL should be
// blocked, taking the whitelist into account.
package hosts

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/blockfetch/blockfetch/internal/whitelist"
)

// selfHosts are entries every hosts file carries for the local machine.
// They are never treated as blocked domains.
var selfHosts = map[string]struct{}{
	"localhost":             {},
	"localhost.localdomain": {},
	"broadcasthost":         {},
	"local":                 {},
	"0.0.0.0":               {},
	"ip6-localhost":         {},
	"ip6-loopback":          {},
}

// Set is a mutable collection of blocked hostnames. It is safe for
// concurrent use.
type Set struct {
	mu    sync.RWMutex
	hosts map[string]struct{}
}

// NewSet returns an empty host set.
func NewSet() *Set {
	return &Set{hosts: make(map[string]struct{})}
}

// Add records a single blocked hostname.
func (s *Set) Add(host string) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return
	}
	if _, self := selfHosts[host]; self {
		return
	}
	s.mu.Lock()
	s.hosts[host] = struct{}{}
	s.mu.Unlock()
}

// ReadFrom parses one blocklist in hosts-file format and adds every entry.
// Supported line shapes: "0.0.0.0 example.com", a bare "example.com", and
// "#" comments (whole-line or trailing). It returns the number of hosts
// added from this reader.
func (s *Set) ReadFrom(r io.Reader) (int, error) {
	before := s.Len()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		switch len(fields) {
		case 0:
			continue
		case 1:
			s.Add(fields[0])
		default:
			// "<redirect-ip> host [aliases...]" form.
			for _, f := range fields[1:] {
				s.Add(f)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return s.Len() - before, fmt.Errorf("reading blocklist: %w", err)
	}
	return s.Len() - before, nil
}

// Contains reports whether the host or any of its parent domains is
// blocked, so a blocked "ads.example.com" also blocks "x.ads.example.com".
func (s *Set) Contains(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for host != "" {
		if _, ok := s.hosts[host]; ok {
			return true
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			return false
		}
		host = host[i+1:]
	}
	return false
}

// Len returns the number of blocked hosts.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hosts)
}

// Save writes the set to path, one host per line in sorted order, via a
// temp file and rename so readers never see a partial file.
func (s *Set) Save(path string) error {
	s.mu.RLock()
	sorted := make([]string, 0, len(s.hosts))
	for h := range s.hosts {
		sorted = append(sorted, h)
	}
	s.mu.RUnlock()
	sort.Strings(sorted)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating data directory %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp hosts file: %w", err)
	}
	w := bufio.NewWriter(tmp)
	for _, h := range sorted {
		fmt.Fprintln(w, h)
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing hosts file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("closing temp hosts file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replacing hosts file: %w", err)
	}
	return nil
}

// Load reads a previously saved host set from path.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening hosts file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	set := NewSet()
	if _, err := set.ReadFrom(f); err != nil {
		return nil, err
	}
	return set, nil
}

// Blocker combines a blocked-host set with the whitelist predicate.
// The whitelist always wins.
type Blocker struct {
	set   *Set
	allow *whitelist.Allowlist
}

// NewBlocker creates a blocker over the given set and allowlist.
func NewBlocker(set *Set, allow *whitelist.Allowlist) *Blocker {
	return &Blocker{set: set, allow: allow}
}

// IsBlocked reports whether requests to rawURL should be blocked.
func (b *Blocker) IsBlocked(rawURL string) bool {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	if b.allow != nil && b.allow.Contains(rawURL) {
		return false
	}
	return b.set.Contains(host)
}
