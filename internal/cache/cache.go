package cache

import (
	"context"
	"time"
)

// Cache stores JSON-serialized values with a TTL. Used for query embeddings,
// which stay valid across index rebuilds (keys carry the embedding model),
// so expiry is the only invalidation.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
}
