package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/concesa/salesagent/config"
	"github.com/concesa/salesagent/internal/cache"
	"github.com/concesa/salesagent/internal/models"
	"github.com/concesa/salesagent/internal/utils"
	"github.com/concesa/salesagent/internal/workers"
)

// Retriever answers catalog queries against the current index generation.
// Query embeddings are cached by model and query hash; they survive index
// rebuilds because the embedding model, not the index, determines them.
type Retriever struct {
	index   *Index
	pool    *workers.EmbedPool
	cache   cache.Cache
	model   string
	topK    int
	maxTopK int
	ttl     time.Duration
	log     *logrus.Logger
}

func NewRetriever(cfg *config.Config, index *Index, pool *workers.EmbedPool, c cache.Cache, log *logrus.Logger) *Retriever {
	return &Retriever{
		index:   index,
		pool:    pool,
		cache:   c,
		model:   cfg.EmbeddingModel,
		topK:    cfg.TopK,
		maxTopK: cfg.MaxTopK,
		ttl:     cfg.EmbedCacheTTL,
		log:     log,
	}
}

// Search embeds the query and returns the best k chunks. k <= 0 selects the
// configured default; anything above the maximum is clamped, not rejected.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	const op = "Retriever.Search"

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "query must not be empty", nil)
	}
	if k <= 0 {
		k = r.topK
	}
	if k > r.maxTopK {
		k = r.maxTopK
	}

	vec, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, utils.E(utils.CodeRetrievalUnavailable, op, "could not embed query", err)
	}
	Normalize(vec)

	return r.index.Search(vec, k)
}

func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	key := embedCacheKey(r.model, query)

	var cached []float32
	if hit, err := r.cache.GetJSON(ctx, key, &cached); err == nil && hit && len(cached) > 0 {
		return cached, nil
	}

	vecs, err := r.pool.EmbedAll(ctx, r.model, []string{query})
	if err != nil {
		return nil, err
	}
	if err := r.cache.SetJSON(ctx, key, vecs[0], r.ttl); err != nil {
		r.log.WithError(err).Debug("embedding cache write failed")
	}
	return vecs[0], nil
}

func embedCacheKey(model, query string) string {
	sum := sha256.Sum256([]byte(query))
	return "emb:" + model + ":" + hex.EncodeToString(sum[:16])
}
