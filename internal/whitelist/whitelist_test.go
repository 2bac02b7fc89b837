package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowlist_Contains(t *testing.T) {
	allow, err := New([]string{
		"*.qutebrowser.org",
		"ads.goodsite.example",
		"https://cdn.example.com/allowed/*",
		"",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, allow.Len(), "blank patterns are dropped")

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"host pattern matches subdomain", "https://www.qutebrowser.org/page", true},
		{"host pattern is case-insensitive on host", "https://WWW.QUTEBROWSER.ORG/", true},
		{"exact host pattern", "http://ads.goodsite.example/banner", true},
		{"full-URL pattern", "https://cdn.example.com/allowed/lib.js", true},
		{"full-URL pattern misses other paths", "https://cdn.example.com/blocked/lib.js", false},
		{"unrelated host", "https://ads.malware.example/", false},
		{"bare host string", "ads.goodsite.example", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, allow.Contains(tt.url))
		})
	}
}

func TestAllowlist_Empty(t *testing.T) {
	allow, err := New(nil)
	require.NoError(t, err)
	assert.False(t, allow.Contains("https://anything.example.com/"))
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New([]string{"[unterminated"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "whitelist pattern")
}
