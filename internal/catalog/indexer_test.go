package catalog

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concesa/salesagent/config"
	"github.com/concesa/salesagent/internal/storage"
	"github.com/concesa/salesagent/internal/utils"
	"github.com/concesa/salesagent/internal/workers"
)

const indexerSource = `DEMOLEDOR ELECTRICO
Tarifa diaria L.1,200. Ideal para demolicion de concreto y mamposteria pesada.

ROTOMARTILLO INDUSTRIAL
Tarifa diaria L.850. Perforacion y cincelado en concreto armado.

MEZCLADORA DE CONCRETO
Tarifa diaria L.650. Tambor de nueve pies cubicos, motor a gasolina.
`

// countingEmbedder returns deterministic vectors and records how many times
// the provider was hit, so tests can tell a rebuild from an artifact reuse.
type countingEmbedder struct {
	dim   int
	calls atomic.Int32
}

func (e *countingEmbedder) Embed(_ context.Context, _ string, texts []string) ([][]float32, error) {
	e.calls.Add(1)
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, e.dim)
		for j, r := range text {
			vec[j%e.dim] += float32(r%13) + 1
		}
		out[i] = vec
	}
	return out, nil
}

func (e *countingEmbedder) Close() error { return nil }

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type indexerHarness struct {
	cfg      *config.Config
	embedder *countingEmbedder
	index    *Index
	indexer  *Indexer
}

// newIndexerHarness wires an Indexer against dir/catalogo.txt with artifacts
// under dir/index. Reusing the same dir across harnesses simulates a restart.
func newIndexerHarness(t *testing.T, dir string) *indexerHarness {
	t.Helper()

	cfg := &config.Config{
		CatalogSource:  filepath.Join(dir, "catalogo.txt"),
		IndexDir:       filepath.Join(dir, "index"),
		ChunkSize:      60,
		ChunkOverlap:   10,
		EmbeddingModel: "mock-model",
		EmbeddingDim:   4,
	}
	emb := &countingEmbedder{dim: 4}
	pool := &workers.EmbedPool{Embedder: emb, NumWorkers: 2, BatchSize: 4, Retries: 1, Logger: testLogger()}
	ix := NewIndex()
	return &indexerHarness{
		cfg:      cfg,
		embedder: emb,
		index:    ix,
		indexer:  NewIndexer(cfg, storage.NewLocalFetcher(), pool, ix, testLogger()),
	}
}

func writeSource(t *testing.T, h *indexerHarness, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(h.cfg.CatalogSource, []byte(content), 0o644))
}

func TestIndexer_EnsureBuildsAndPersists(t *testing.T) {
	h := newIndexerHarness(t, t.TempDir())
	writeSource(t, h, indexerSource)

	require.NoError(t, h.indexer.Ensure(context.Background()))

	assert.True(t, h.index.Ready())
	man, ok := h.index.Manifest()
	require.True(t, ok)
	assert.Equal(t, 1, man.Generation)
	assert.Equal(t, 4, man.Dim)
	assert.Greater(t, man.ChunkCount, 1)
	assert.Positive(t, h.embedder.calls.Load())

	_, err := os.Stat(filepath.Join(h.cfg.IndexDir, manifestFile))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(h.cfg.IndexDir, chunksFile))
	assert.NoError(t, err)
}

func TestIndexer_EnsureReusesArtifacts(t *testing.T) {
	dir := t.TempDir()

	first := newIndexerHarness(t, dir)
	writeSource(t, first, indexerSource)
	require.NoError(t, first.indexer.Ensure(context.Background()))

	// Same source and config: a restarted process must load the artifacts
	// without calling the embedder at all.
	second := newIndexerHarness(t, dir)
	require.NoError(t, second.indexer.Ensure(context.Background()))

	assert.Zero(t, second.embedder.calls.Load())
	man, ok := second.index.Manifest()
	require.True(t, ok)
	assert.Equal(t, 1, man.Generation)

	results, err := second.index.Search([]float32{1, 0, 0, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestIndexer_EnsureRebuildsWhenSourceChanges(t *testing.T) {
	dir := t.TempDir()

	first := newIndexerHarness(t, dir)
	writeSource(t, first, indexerSource)
	require.NoError(t, first.indexer.Ensure(context.Background()))
	oldMan, _ := first.index.Manifest()

	second := newIndexerHarness(t, dir)
	writeSource(t, second, indexerSource+"\nCOMPACTADORA DE PLANCHA\nTarifa diaria L.950.\n")
	require.NoError(t, second.indexer.Ensure(context.Background()))

	assert.Positive(t, second.embedder.calls.Load())
	newMan, ok := second.index.Manifest()
	require.True(t, ok)
	assert.NotEqual(t, oldMan.SourceSHA256, newMan.SourceSHA256)
}

func TestIndexer_RebuildIncrementsGeneration(t *testing.T) {
	h := newIndexerHarness(t, t.TempDir())
	writeSource(t, h, indexerSource)
	require.NoError(t, h.indexer.Ensure(context.Background()))

	man, err := h.indexer.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, man.Generation)

	man, err = h.indexer.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, man.Generation)

	current, ok := h.index.Manifest()
	require.True(t, ok)
	assert.Equal(t, 3, current.Generation)
}

func TestIndexer_EnsureEmptySource(t *testing.T) {
	h := newIndexerHarness(t, t.TempDir())
	writeSource(t, h, "   \n\n  ")

	err := h.indexer.Ensure(context.Background())
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestIndexer_EnsureMissingSource(t *testing.T) {
	h := newIndexerHarness(t, t.TempDir())

	err := h.indexer.Ensure(context.Background())
	assert.True(t, utils.IsCode(err, utils.CodeResourceUnavailable))
}
