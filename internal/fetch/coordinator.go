package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Coordinator usage errors.
var (
	ErrAlreadyInitiated = errors.New("batch has already been initiated")
	ErrNilCallback      = errors.New("per-item and all-done callbacks cannot be nil")
)

// ItemFunc receives the content of one successfully fetched source. The
// reader is only valid for the duration of the call; the coordinator closes
// the underlying stream as soon as the callback returns, panicking or not.
type ItemFunc func(r io.Reader)

// DoneFunc receives the number of successful retrievals once every operation
// in the batch has completed. It is invoked exactly once per batch.
type DoneFunc func(succeeded int)

// Coordinator tracks a batch of blocklist retrievals to completion.
//
// Per-item callbacks run in completion order, not source order, on whichever
// goroutine resolves the operation: the caller's own goroutine for local
// sources, a waiter goroutine for remote ones. The all-done callback fires
// strictly after every per-item callback has returned. Callbacks must not
// call back into the coordinator.
type Coordinator struct {
	sources  []Source
	onItem   ItemFunc
	onDone   DoneFunc
	backend  Backend
	reporter Reporter
	log      zerolog.Logger

	// mu serializes all state transitions. It is deliberately held while
	// user callbacks run so the all-done callback cannot fire before a
	// concurrent per-item callback has returned.
	mu         sync.Mutex
	inFlight   map[Handle]struct{}
	succeeded  int
	registered bool
	started    bool
	finished   bool
}

// New creates a coordinator over the given sources. No retrievals start
// until Initiate is called. The backend may be nil when every source is
// local.
func New(sources []Source, onItem ItemFunc, onAllDone DoneFunc, backend Backend) *Coordinator {
	return &Coordinator{
		sources:  sources,
		onItem:   onItem,
		onDone:   onAllDone,
		backend:  backend,
		reporter: nopReporter{},
		log:      zerolog.Nop(),
		inFlight: make(map[Handle]struct{}),
	}
}

// WithReporter sets the diagnostic reporter for unreadable local files.
func (c *Coordinator) WithReporter(r Reporter) *Coordinator {
	c.reporter = r
	return c
}

// WithLogger sets the logger used for per-operation debug logging.
func (c *Coordinator) WithLogger(log zerolog.Logger) *Coordinator {
	c.log = log
	return c
}

// Initiate expands every source into retrieval operations and dispatches
// them. It may be called at most once; a second call returns
// ErrAlreadyInitiated.
//
// An empty source list invokes the all-done callback synchronously with a
// count of zero before Initiate returns. Local sources also resolve inline,
// so their per-item callbacks run on the calling goroutine.
func (c *Coordinator) Initiate(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyInitiated
	}
	if c.onItem == nil || c.onDone == nil {
		c.mu.Unlock()
		return ErrNilCallback
	}
	c.started = true

	if len(c.sources) == 0 {
		c.finished = true
		c.mu.Unlock()
		c.onDone(0)
		return nil
	}
	c.mu.Unlock()

	for _, src := range c.sources {
		c.dispatch(ctx, src)
	}

	// Registration is complete. If every operation already resolved (all
	// sources local, or an instant backend), the all-done callback has not
	// fired yet because the registered flag was still false; fire it here.
	// The same check runs at the tail of every resolve, which closes the
	// race with remote operations finishing while dispatch is still going.
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registered = true
	if len(c.inFlight) == 0 && !c.finished {
		c.finished = true
		c.onDone(c.succeeded)
	}
	return nil
}

// dispatch expands one source into zero or more tracked operations.
func (c *Coordinator) dispatch(ctx context.Context, src Source) {
	if !src.IsLocal() {
		h := c.backend.Fetch(ctx, src)
		c.track(h)
		c.log.Debug().
			Str("component", "fetch").
			Str("source", src.String()).
			Msg("remote retrieval dispatched")
		go func() {
			<-h.Done()
			c.resolve(h)
		}()
		return
	}

	path := src.LocalPath()
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			c.reporter.Error(fmt.Sprintf("blockfetch: error while reading %s: %v", path, err))
			return
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			c.importLocal(src, filepath.Join(path, entry.Name()))
		}
		return
	}

	c.importLocal(src, path)
}

// importLocal treats a file on disk as if it had been downloaded. A file
// that cannot be opened is reported and skipped entirely: it is never
// tracked and counts as neither success nor failure.
func (c *Coordinator) importLocal(src Source, path string) {
	f, err := os.Open(path)
	if err != nil {
		c.reporter.Error(fmt.Sprintf("blockfetch: error while reading %s: %v", path, err))
		return
	}
	h := newLocalHandle(src, f)
	c.track(h)
	c.resolve(h)
}

func (c *Coordinator) track(h Handle) {
	c.mu.Lock()
	c.inFlight[h] = struct{}{}
	c.mu.Unlock()
}

// resolve settles one completed operation. It runs exactly once per tracked
// handle; resolving an untracked handle indicates a double-resolution bug
// and panics.
func (c *Coordinator) resolve(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.inFlight[h]; !ok {
		panic(fmt.Sprintf("fetch: operation for %q resolved twice", h.Source()))
	}
	delete(c.inFlight, h)

	if h.Successful() {
		c.succeeded++
		c.deliver(h.Body())
	} else {
		c.log.Debug().
			Str("component", "fetch").
			Str("source", h.Source().String()).
			Msg("retrieval failed")
	}

	if len(c.inFlight) == 0 && c.registered && !c.finished {
		c.finished = true
		c.onDone(c.succeeded)
	}
}

// deliver hands the body to the per-item callback and closes it on every
// exit path. A panicking callback still closes the stream, then propagates
// to whichever goroutine invoked resolution.
func (c *Coordinator) deliver(body io.ReadCloser) {
	defer body.Close() //nolint:errcheck // the stream has been fully consumed or abandoned
	c.onItem(body)
}
