package storage

import "context"

// Fetcher reads a catalog document from wherever it lives. Implementations
// exist for the local filesystem and for gs:// objects.
type Fetcher interface {
	// Fetch returns the raw document bytes for source.
	Fetch(ctx context.Context, source string) ([]byte, error)
}
