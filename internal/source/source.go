// Package source provides transcript inputs for the detection pipeline: a
// stdin reader for piping transcripts in, and a websocket client for live
// speech-to-text feeds.
package source

import "context"

// Source delivers transcript fragments one at a time. Read blocks until a
// fragment is available, the source is exhausted (io.EOF), or ctx is done.
// Implementations skip blank fragments.
type Source interface {
	// Read returns the next non-empty transcript fragment.
	Read(ctx context.Context) (string, error)

	// Kind names the source for logs and metric attributes.
	Kind() string

	// Close releases the underlying input.
	Close() error
}
