package download

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/blockfetch/blockfetch/internal/fetch"
)

// DefaultMaxConcurrent is the download concurrency cap used when the
// configuration does not set one.
const DefaultMaxConcurrent = 4

// defaultTimeout bounds a single download, connection to last byte.
const defaultTimeout = 5 * time.Minute

// Config controls how remote blocklists are retrieved.
type Config struct {
	// HTTPClient to use for requests. A default client with a timeout is
	// used when nil.
	HTTPClient *http.Client

	// UserAgent sent with every request, if non-empty.
	UserAgent string

	// ExtraHeaders to add to every request.
	ExtraHeaders map[string]string

	// MaxConcurrent caps the number of downloads running at once.
	// Values below 1 fall back to DefaultMaxConcurrent.
	MaxConcurrent int64

	// TempDir is where in-progress downloads are spooled. Empty means the
	// system temp directory.
	TempDir string
}

// Manager starts and bounds asynchronous downloads. It implements
// fetch.Backend.
type Manager struct {
	cfg    Config
	client *http.Client
	sem    *semaphore.Weighted
	log    zerolog.Logger
}

// NewManager creates a download manager with the given configuration.
func NewManager(cfg Config, log zerolog.Logger) *Manager {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	limit := cfg.MaxConcurrent
	if limit < 1 {
		limit = DefaultMaxConcurrent
	}
	return &Manager{
		cfg:    cfg,
		client: client,
		sem:    semaphore.NewWeighted(limit),
		log:    log,
	}
}

// Fetch starts an asynchronous download of src and returns its job handle.
// The job's Done channel closes when the download has finished; transport
// and HTTP status failures surface through Successful, never as a
// synchronous error.
func (m *Manager) Fetch(ctx context.Context, src fetch.Source) fetch.Handle {
	j := newJob(src)
	m.log.Debug().
		Str("component", "download").
		Str("job_id", j.id).
		Str("url", src.String()).
		Msg("download queued")
	go j.run(ctx, m)
	return j
}
