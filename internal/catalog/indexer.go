package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/concesa/salesagent/config"
	"github.com/concesa/salesagent/internal/models"
	"github.com/concesa/salesagent/internal/storage"
	"github.com/concesa/salesagent/internal/utils"
	"github.com/concesa/salesagent/internal/workers"
)

const (
	manifestFile = "manifest.json"
	chunksFile   = "chunks.json"
)

// Indexer builds the catalog index and keeps its on-disk artifacts in sync.
// Ensure reuses artifacts when the source and build parameters are unchanged,
// so restarts do not re-embed an unchanged catalog.
type Indexer struct {
	source       string
	dir          string
	chunkSize    int
	chunkOverlap int
	model        string
	dim          int

	fetcher storage.Fetcher
	pool    *workers.EmbedPool
	index   *Index
	log     *logrus.Logger

	mu sync.Mutex // one build at a time
}

func NewIndexer(cfg *config.Config, fetcher storage.Fetcher, pool *workers.EmbedPool, index *Index, log *logrus.Logger) *Indexer {
	return &Indexer{
		source:       cfg.CatalogSource,
		dir:          cfg.IndexDir,
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		model:        cfg.EmbeddingModel,
		dim:          cfg.EmbeddingDim,
		fetcher:      fetcher,
		pool:         pool,
		index:        index,
		log:          log,
	}
}

// Ensure makes the index ready: loads persisted artifacts when their
// fingerprint matches the current source and configuration, builds from
// scratch otherwise.
func (ix *Indexer) Ensure(ctx context.Context) error {
	const op = "Indexer.Ensure"

	ix.mu.Lock()
	defer ix.mu.Unlock()

	data, err := ix.fetcher.Fetch(ctx, ix.source)
	if err != nil {
		return utils.E(utils.CodeResourceUnavailable, op, "catalog source unreadable", err)
	}
	sum := fingerprint(data)

	if gen, err := ix.loadArtifacts(sum); err == nil {
		ix.index.swap(gen)
		ix.log.WithFields(logrus.Fields{
			"chunks":     gen.manifest.ChunkCount,
			"generation": gen.manifest.Generation,
		}).Info("catalog index loaded from artifacts")
		return nil
	} else if !os.IsNotExist(err) {
		ix.log.WithError(err).Info("index artifacts not reusable, rebuilding")
	}

	gen, err := ix.build(ctx, data, sum, 1)
	if err != nil {
		return err
	}
	ix.index.swap(gen)
	return nil
}

// Rebuild re-embeds the catalog unconditionally and swaps in the new
// generation. Queries keep hitting the old generation until the swap.
func (ix *Indexer) Rebuild(ctx context.Context) (Manifest, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	const op = "Indexer.Rebuild"

	data, err := ix.fetcher.Fetch(ctx, ix.source)
	if err != nil {
		return Manifest{}, utils.E(utils.CodeResourceUnavailable, op, "catalog source unreadable", err)
	}

	next := 1
	if m, ok := ix.index.Manifest(); ok {
		next = m.Generation + 1
	}
	gen, err := ix.build(ctx, data, fingerprint(data), next)
	if err != nil {
		return Manifest{}, err
	}
	ix.index.swap(gen)
	return gen.manifest, nil
}

func (ix *Indexer) build(ctx context.Context, data []byte, sum string, genNum int) (*generation, error) {
	const op = "Indexer.build"
	start := time.Now()

	chunks := Split(string(data), ix.chunkSize, ix.chunkOverlap)
	if len(chunks) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "catalog document produced no chunks", nil)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vecs, err := ix.pool.EmbedAll(ctx, ix.model, texts)
	if err != nil {
		return nil, utils.E(utils.CodeResourceUnavailable, op, "embedding provider failed", err)
	}

	dim := ix.dim
	if dim <= 0 && len(vecs) > 0 {
		dim = len(vecs[0])
	}
	for i, v := range vecs {
		if len(v) != dim {
			return nil, utils.E(utils.CodeResourceUnavailable, op,
				fmt.Sprintf("embedding %d has dimension %d, want %d", i, len(v), dim), nil)
		}
		Normalize(v)
		chunks[i].Embedding = v
	}

	gen := &generation{
		manifest: Manifest{
			SourceSHA256:   sum,
			ChunkSize:      ix.chunkSize,
			ChunkOverlap:   ix.chunkOverlap,
			EmbeddingModel: ix.model,
			Dim:            dim,
			ChunkCount:     len(chunks),
			Generation:     genNum,
			BuiltAt:        time.Now().UTC(),
		},
		chunks: chunks,
	}

	if err := ix.persistArtifacts(gen); err != nil {
		// The in-memory generation is complete; losing artifacts only costs
		// a re-embed on the next restart.
		ix.log.WithError(err).Warn("failed to persist index artifacts")
	}

	ix.log.WithFields(logrus.Fields{
		"chunks":     len(chunks),
		"generation": genNum,
		"elapsed":    time.Since(start).Round(time.Millisecond).String(),
	}).Info("catalog index built")
	return gen, nil
}

func (ix *Indexer) loadArtifacts(sum string) (*generation, error) {
	raw, err := os.ReadFile(filepath.Join(ix.dir, manifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.SourceSHA256 != sum {
		return nil, fmt.Errorf("source changed since last build")
	}
	if m.ChunkSize != ix.chunkSize || m.ChunkOverlap != ix.chunkOverlap {
		return nil, fmt.Errorf("chunking parameters changed since last build")
	}
	if m.EmbeddingModel != ix.model {
		return nil, fmt.Errorf("embedding model changed since last build")
	}
	if ix.dim > 0 && m.Dim != ix.dim {
		return nil, fmt.Errorf("embedding dimension changed since last build")
	}

	raw, err = os.ReadFile(filepath.Join(ix.dir, chunksFile))
	if err != nil {
		return nil, err
	}
	var chunks []models.Chunk
	if err := json.Unmarshal(raw, &chunks); err != nil {
		return nil, fmt.Errorf("parse chunks: %w", err)
	}
	if len(chunks) != m.ChunkCount {
		return nil, fmt.Errorf("chunk count %d does not match manifest %d", len(chunks), m.ChunkCount)
	}
	for i, c := range chunks {
		if len(c.Embedding) != m.Dim {
			return nil, fmt.Errorf("chunk %d has dimension %d, want %d", i, len(c.Embedding), m.Dim)
		}
	}
	return &generation{manifest: m, chunks: chunks}, nil
}

func (ix *Indexer) persistArtifacts(gen *generation) error {
	if err := os.MkdirAll(ix.dir, 0o755); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(ix.dir, chunksFile), gen.chunks); err != nil {
		return err
	}
	// Manifest last: a manifest on disk implies complete chunk artifacts.
	return writeJSON(filepath.Join(ix.dir, manifestFile), gen.manifest)
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
