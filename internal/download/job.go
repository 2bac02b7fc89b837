package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/oklog/ulid/v2"

	"github.com/blockfetch/blockfetch/internal/fetch"
)

// Job is one asynchronous download. It satisfies fetch.Handle.
//
// The run goroutine is the only writer of ok, err and body, and it finishes
// before the done channel closes, so readers that wait on Done need no
// further synchronization.
type Job struct {
	id   string
	src  fetch.Source
	done chan struct{}

	ok   bool
	err  error
	body io.ReadCloser
}

func newJob(src fetch.Source) *Job {
	return &Job{
		id:   ulid.Make().String(),
		src:  src,
		done: make(chan struct{}),
	}
}

// ID returns the job's ULID, used in logs and temp-file names.
func (j *Job) ID() string { return j.id }

// Source returns the source being downloaded.
func (j *Job) Source() fetch.Source { return j.src }

// Successful reports whether the download completed with a 2xx status and
// no transport error. Only valid after Done has closed.
func (j *Job) Successful() bool { return j.ok }

// Err returns the failure cause, or nil. Only valid after Done has closed.
func (j *Job) Err() error { return j.err }

// Body returns the spooled response content. Only valid on success; closing
// it removes the backing temp file.
func (j *Job) Body() io.ReadCloser { return j.body }

// Done is closed exactly once when the download has finished.
func (j *Job) Done() <-chan struct{} { return j.done }

func (j *Job) run(ctx context.Context, m *Manager) {
	defer close(j.done)

	if err := m.sem.Acquire(ctx, 1); err != nil {
		j.fail(m, fmt.Errorf("waiting for download slot: %w", err))
		return
	}
	defer m.sem.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.src.String(), nil)
	if err != nil {
		j.fail(m, fmt.Errorf("setting up request: %w", err))
		return
	}
	if m.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", m.cfg.UserAgent)
	}
	for k, v := range m.cfg.ExtraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		j.fail(m, err)
		return
	}
	defer resp.Body.Close() //nolint:errcheck // nothing to do about a close error here

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		j.fail(m, fmt.Errorf("unexpected status %s", resp.Status))
		return
	}

	out, err := os.CreateTemp(m.cfg.TempDir, "blockfetch-"+j.id+"-*")
	if err != nil {
		j.fail(m, fmt.Errorf("creating spool file: %w", err))
		return
	}

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(out.Name())
		j.fail(m, fmt.Errorf("reading response: %w", err))
		return
	}
	if _, err := out.Seek(0, io.SeekStart); err != nil {
		_ = out.Close()
		_ = os.Remove(out.Name())
		j.fail(m, fmt.Errorf("rewinding spool file: %w", err))
		return
	}

	j.ok = true
	j.body = &spoolFile{File: out}
	m.log.Debug().
		Str("component", "download").
		Str("job_id", j.id).
		Str("url", j.src.String()).
		Int64("bytes", written).
		Msg("download finished")
}

func (j *Job) fail(m *Manager, err error) {
	j.err = err
	m.log.Warn().
		Str("component", "download").
		Str("job_id", j.id).
		Str("url", j.src.String()).
		Err(err).
		Msg("download failed")
}

// spoolFile removes the backing temp file when closed.
type spoolFile struct {
	*os.File
}

func (s *spoolFile) Close() error {
	err := s.File.Close()
	if rmErr := os.Remove(s.File.Name()); err == nil {
		err = rmErr
	}
	return err
}
