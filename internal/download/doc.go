// Package download is the HTTP backend for remote blocklist retrievals.
//
// A Manager starts one asynchronous Job per URL, spooling the response body
// into a temporary file. Jobs satisfy fetch.Handle: the coordinator waits on
// their Done channel and reads the spooled content back through Body. The
// number of simultaneously running downloads is capped with a weighted
// semaphore.
package download
