package catalog

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/concesa/salesagent/internal/models"
	"github.com/concesa/salesagent/internal/utils"
)

// Manifest fingerprints one index generation. A build is reusable iff every
// input field matches the current configuration and source document.
type Manifest struct {
	SourceSHA256   string    `json:"source_sha256"`
	ChunkSize      int       `json:"chunk_size"`
	ChunkOverlap   int       `json:"chunk_overlap"`
	EmbeddingModel string    `json:"embedding_model"`
	Dim            int       `json:"dim"`
	ChunkCount     int       `json:"chunk_count"`
	Generation     int       `json:"generation"`
	BuiltAt        time.Time `json:"built_at"`
}

type generation struct {
	manifest Manifest
	chunks   []models.Chunk // embeddings unit-normalized, ids dense from 0
}

// Index is a flat in-process cosine index. Rebuilds assemble a complete new
// generation off to the side and publish it with one pointer swap, so reads
// are never blocked and never observe a half-built state.
type Index struct {
	current atomic.Pointer[generation]
}

func NewIndex() *Index { return &Index{} }

func (ix *Index) Ready() bool { return ix.current.Load() != nil }

func (ix *Index) Manifest() (Manifest, bool) {
	gen := ix.current.Load()
	if gen == nil {
		return Manifest{}, false
	}
	return gen.manifest, true
}

func (ix *Index) swap(gen *generation) { ix.current.Store(gen) }

// Search returns the k best chunks for a unit-normalized query vector,
// ordered by score descending with chunk id as the tie-break.
func (ix *Index) Search(query []float32, k int) ([]models.SearchResult, error) {
	const op = "Index.Search"

	gen := ix.current.Load()
	if gen == nil {
		return nil, utils.E(utils.CodeResourceUnavailable, op, "index not built", nil)
	}
	if len(query) != gen.manifest.Dim {
		return nil, utils.E(utils.CodeInvalidArgument, op,
			fmt.Sprintf("query dimension %d does not match index dimension %d", len(query), gen.manifest.Dim), nil)
	}
	if k <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "k must be positive", nil)
	}
	if k > len(gen.chunks) {
		k = len(gen.chunks)
	}

	type scored struct {
		id    int
		score float64
	}
	scores := make([]scored, len(gen.chunks))
	for i, c := range gen.chunks {
		scores[i] = scored{id: c.ID, score: dot(query, c.Embedding)}
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].id < scores[j].id
	})

	results := make([]models.SearchResult, 0, k)
	for _, s := range scores[:k] {
		results = append(results, models.SearchResult{
			ChunkID: s.id,
			Text:    gen.chunks[s.id].Text,
			Score:   s.score,
		})
	}
	return results, nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Normalize scales vec to unit length in place. Zero vectors stay zero.
func Normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
