package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// MockEmbedder produces deterministic bag-of-words vectors: each token is
// hashed into a bucket, so texts sharing words land near each other. Good
// enough for offline development and ranking tests, useless for semantics.
type MockEmbedder struct {
	dim int
}

func NewMockEmbedder(dim int) *MockEmbedder {
	if dim <= 0 {
		dim = 256
	}
	return &MockEmbedder{dim: dim}
}

var _ Provider = (*MockEmbedder)(nil)

func (m *MockEmbedder) Embed(_ context.Context, _ string, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, m.dim)
		for _, token := range strings.Fields(strings.ToLower(text)) {
			token = strings.Trim(token, ".,;:!?¿¡()\"'")
			if token == "" {
				continue
			}
			h := fnv.New32a()
			h.Write([]byte(token))
			vec[int(h.Sum32())%m.dim]++
		}
		normalize(vec)
		out[i] = vec
	}
	return out, nil
}

func (m *MockEmbedder) Close() error { return nil }

func normalize(vec []float32) {
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
