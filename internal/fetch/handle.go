package fetch

import (
	"context"
	"io"
)

// Handle represents one in-flight or completed retrieval.
//
// A handle is owned by the coordinator from the moment it is tracked until
// it is resolved and its body closed. Successful and Body must only be
// consulted after Done has been closed.
type Handle interface {
	// Source returns the source this retrieval originated from.
	Source() Source

	// Successful reports whether the retrieval completed without error.
	Successful() bool

	// Body returns the fetched content. It is valid only when Successful
	// reports true, and is closed by the coordinator after the per-item
	// callback returns.
	Body() io.ReadCloser

	// Done is closed exactly once when the retrieval has finished,
	// successfully or not.
	Done() <-chan struct{}
}

// Backend starts remote retrievals on behalf of the coordinator. Fetch must
// always return a handle; transport failures surface through the handle's
// Successful flag once its Done channel closes.
type Backend interface {
	Fetch(ctx context.Context, src Source) Handle
}

// Reporter receives user-facing diagnostics. The coordinator uses it only
// for local files that cannot be opened.
type Reporter interface {
	Error(msg string)
}

type nopReporter struct{}

func (nopReporter) Error(string) {}

// localHandle stands in for a real download when the source is a file on
// disk. It is created already completed and successful.
type localHandle struct {
	src  Source
	body io.ReadCloser
	done chan struct{}
}

func newLocalHandle(src Source, body io.ReadCloser) *localHandle {
	h := &localHandle{src: src, body: body, done: make(chan struct{})}
	close(h.done)
	return h
}

func (h *localHandle) Source() Source        { return h.src }
func (h *localHandle) Successful() bool      { return true }
func (h *localHandle) Body() io.ReadCloser   { return h.body }
func (h *localHandle) Done() <-chan struct{} { return h.done }
