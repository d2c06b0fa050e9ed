package storage

import (
	"context"
	"fmt"
	"os"
)

// LocalFetcher reads catalog documents from the filesystem.
type LocalFetcher struct{}

func NewLocalFetcher() *LocalFetcher { return &LocalFetcher{} }

func (f *LocalFetcher) Fetch(_ context.Context, source string) ([]byte, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return data, nil
}
