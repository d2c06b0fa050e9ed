package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concesa/salesagent/config"
	"github.com/concesa/salesagent/internal/cache"
	"github.com/concesa/salesagent/internal/providers/embedding"
	"github.com/concesa/salesagent/internal/storage"
	"github.com/concesa/salesagent/internal/utils"
	"github.com/concesa/salesagent/internal/workers"
)

const retrieverSource = `ROTOMARTILLO industrial para perforar concreto armado, brocas SDS incluidas, tarifa diaria de 850 lempiras.

DEMOLEDORA electrica de 65 libras para romper losas y cimientos, tarifa diaria de 1200 lempiras.

MEZCLADORA de concreto con tambor de nueve pies y motor a gasolina, tarifa diaria de 650 lempiras.

ANDAMIOS metalicos certificados por seccion completa con plataforma, tarifa diaria de 120 lempiras.
`

// countingProvider wraps a real embedder and records provider hits, so cache
// tests can tell a cached query from a re-embedded one.
type countingProvider struct {
	inner embedding.Provider
	calls atomic.Int32
}

func (p *countingProvider) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	p.calls.Add(1)
	return p.inner.Embed(ctx, model, texts)
}

func (p *countingProvider) Close() error { return p.inner.Close() }

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string, []string) ([][]float32, error) {
	return nil, errors.New("embedder down")
}

func (failingEmbedder) Close() error { return nil }

type retrieverHarness struct {
	cfg       *config.Config
	provider  *countingProvider
	index     *Index
	retriever *Retriever
}

func newRetrieverHarness(t *testing.T) *retrieverHarness {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		CatalogSource:  filepath.Join(dir, "catalogo.txt"),
		IndexDir:       filepath.Join(dir, "index"),
		ChunkSize:      120,
		ChunkOverlap:   20,
		TopK:           3,
		MaxTopK:        5,
		EmbeddingModel: "mock",
		EmbeddingDim:   64,
		EmbedCacheTTL:  time.Minute,
	}
	require.NoError(t, os.WriteFile(cfg.CatalogSource, []byte(retrieverSource), 0o644))

	provider := &countingProvider{inner: embedding.NewMockEmbedder(64)}
	pool := &workers.EmbedPool{Embedder: provider, NumWorkers: 2, BatchSize: 8, Retries: 1, Logger: testLogger()}
	ix := NewIndex()
	indexer := NewIndexer(cfg, storage.NewLocalFetcher(), pool, ix, testLogger())
	require.NoError(t, indexer.Ensure(context.Background()))

	return &retrieverHarness{
		cfg:       cfg,
		provider:  provider,
		index:     ix,
		retriever: NewRetriever(cfg, ix, pool, cache.NewMemoryCache(), testLogger()),
	}
}

func TestRetriever_SearchRanksMatchingChunk(t *testing.T) {
	h := newRetrieverHarness(t)

	results, err := h.retriever.Search(context.Background(), "rotomartillo para perforar concreto", 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Contains(t, strings.ToLower(results[0].Text), "rotomartillo")
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.GreaterOrEqual(t, results[1].Score, results[2].Score)
}

func TestRetriever_SearchEmptyQuery(t *testing.T) {
	h := newRetrieverHarness(t)

	_, err := h.retriever.Search(context.Background(), "", 3)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = h.retriever.Search(context.Background(), "   ", 3)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestRetriever_SearchClampsK(t *testing.T) {
	h := newRetrieverHarness(t)

	man, ok := h.index.Manifest()
	require.True(t, ok)
	want := man.ChunkCount
	if want > h.cfg.MaxTopK {
		want = h.cfg.MaxTopK
	}

	results, err := h.retriever.Search(context.Background(), "tarifa diaria", 50)
	require.NoError(t, err)
	assert.Len(t, results, want)
}

func TestRetriever_CachesQueryEmbeddings(t *testing.T) {
	h := newRetrieverHarness(t)
	base := h.provider.calls.Load()

	_, err := h.retriever.Search(context.Background(), "mezcladora de concreto", 2)
	require.NoError(t, err)
	_, err = h.retriever.Search(context.Background(), "mezcladora de concreto", 2)
	require.NoError(t, err)
	assert.Equal(t, base+1, h.provider.calls.Load())

	_, err = h.retriever.Search(context.Background(), "andamios certificados", 2)
	require.NoError(t, err)
	assert.Equal(t, base+2, h.provider.calls.Load())
}

func TestRetriever_SearchIndexNotBuilt(t *testing.T) {
	cfg := &config.Config{TopK: 3, MaxTopK: 5, EmbeddingModel: "mock", EmbedCacheTTL: time.Minute}
	pool := &workers.EmbedPool{Embedder: embedding.NewMockEmbedder(8), Retries: 1, Logger: testLogger()}
	r := NewRetriever(cfg, NewIndex(), pool, cache.NewMemoryCache(), testLogger())

	_, err := r.Search(context.Background(), "rotomartillo", 3)
	assert.True(t, utils.IsCode(err, utils.CodeResourceUnavailable))
}

func TestRetriever_SearchEmbedFailure(t *testing.T) {
	h := newRetrieverHarness(t)
	pool := &workers.EmbedPool{Embedder: failingEmbedder{}, Retries: 1, Logger: testLogger()}
	r := NewRetriever(h.cfg, h.index, pool, cache.NewMemoryCache(), testLogger())

	_, err := r.Search(context.Background(), "rotomartillo", 3)
	assert.True(t, utils.IsCode(err, utils.CodeRetrievalUnavailable))
}
