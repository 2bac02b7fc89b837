// Package fetch aggregates a batch of blocklist retrievals into a single
// asynchronous unit of work.
//
// A Coordinator takes an ordered list of sources (remote URLs or local
// files/directories), delivers the content of each successful retrieval to a
// per-item callback, and invokes an all-done callback exactly once with the
// number of successful retrievals after every operation has completed. Local
// sources are read inline; remote sources are dispatched to a Backend and
// resolve asynchronously. Callers never need to know which path a given
// source took.
package fetch
