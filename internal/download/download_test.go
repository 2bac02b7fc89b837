package download

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockfetch/blockfetch/internal/fetch"
)

func waitDone(t *testing.T, j fetch.Handle) {
	t.Helper()
	select {
	case <-j.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("download never completed")
	}
}

func TestManager_Fetch(t *testing.T) {
	const payload = "ads.example.com\ntracker.example.net\n"

	var gotUA, gotExtra string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotExtra = r.Header.Get("X-Blockfetch-Test")
		_, _ = io.WriteString(w, payload)
	}))
	defer srv.Close()

	m := NewManager(Config{
		UserAgent:    "blockfetch-test",
		ExtraHeaders: map[string]string{"X-Blockfetch-Test": "1"},
		TempDir:      t.TempDir(),
	}, zerolog.Nop())

	h := m.Fetch(context.Background(), fetch.MustParseSource(srv.URL+"/ads.txt"))
	waitDone(t, h)

	require.True(t, h.Successful())
	assert.Equal(t, "blockfetch-test", gotUA)
	assert.Equal(t, "1", gotExtra)

	body := h.Body()
	require.NotNil(t, body)
	content, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, payload, string(content))
	require.NoError(t, body.Close())
}

func TestManager_Fetch_RemovesSpoolFileOnClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ads.example.com")
	}))
	defer srv.Close()

	tempDir := t.TempDir()
	m := NewManager(Config{TempDir: tempDir}, zerolog.Nop())

	h := m.Fetch(context.Background(), fetch.MustParseSource(srv.URL))
	waitDone(t, h)
	require.True(t, h.Successful())

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "spool file should exist while the body is open")
	assert.True(t, strings.HasPrefix(entries[0].Name(), "blockfetch-"))

	require.NoError(t, h.Body().Close())
	entries, err = os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "spool file should be removed on close")
}

func TestManager_Fetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	m := NewManager(Config{TempDir: t.TempDir()}, zerolog.Nop())
	h := m.Fetch(context.Background(), fetch.MustParseSource(srv.URL+"/missing.txt"))
	waitDone(t, h)

	job, ok := h.(*Job)
	require.True(t, ok)
	assert.False(t, h.Successful())
	require.Error(t, job.Err())
	assert.Contains(t, job.Err().Error(), "404")
}

func TestManager_Fetch_ConnectionRefused(t *testing.T) {
	// Grab a port that nothing is listening on.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	m := NewManager(Config{TempDir: t.TempDir()}, zerolog.Nop())
	h := m.Fetch(context.Background(), fetch.MustParseSource(url))
	waitDone(t, h)
	assert.False(t, h.Successful())
}

func TestManager_Fetch_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	m := NewManager(Config{TempDir: t.TempDir()}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	h := m.Fetch(ctx, fetch.MustParseSource(srv.URL))
	cancel()

	waitDone(t, h)
	assert.False(t, h.Successful())
}

func TestManager_ConcurrencyCap(t *testing.T) {
	var active, peak int32
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		_, _ = io.WriteString(w, "x.example.com")
	}))
	defer srv.Close()

	m := NewManager(Config{MaxConcurrent: 2, TempDir: t.TempDir()}, zerolog.Nop())

	handles := make([]fetch.Handle, 0, 6)
	for i := 0; i < 6; i++ {
		handles = append(handles, m.Fetch(context.Background(), fetch.MustParseSource(srv.URL)))
	}
	for _, h := range handles {
		waitDone(t, h)
		require.True(t, h.Successful())
		require.NoError(t, h.Body().Close())
	}

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, int32(2))
}

func TestJob_ID(t *testing.T) {
	a := newJob(fetch.MustParseSource("https://lists.example.com/a"))
	b := newJob(fetch.MustParseSource("https://lists.example.com/b"))
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}
