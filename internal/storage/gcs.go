package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
)

// GCSFetcher downloads catalog documents addressed as gs://bucket/object.
type GCSFetcher struct {
	client *gcs.Client
}

func NewGCSFetcher(ctx context.Context) (*GCSFetcher, error) {
	c, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSFetcher{client: c}, nil
}

func (f *GCSFetcher) Close() error { return f.client.Close() }

func (f *GCSFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	bucket, object, err := splitGCSURL(source)
	if err != nil {
		return nil, err
	}

	r, err := f.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s: %w", bucket, object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read gs://%s/%s: %w", bucket, object, err)
	}
	return data, nil
}

func splitGCSURL(source string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(source, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// URL: %q", source)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("malformed gs:// URL: %q", source)
	}
	return bucket, object, nil
}
