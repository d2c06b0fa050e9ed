package models

// Chunk is one slice of the catalog document. IDs are positions within a
// single index generation and restart from zero on every rebuild.
type Chunk struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	Offset    int       `json:"offset"` // byte offset of the slice in the source
	Embedding []float32 `json:"embedding,omitempty"`
}

// SearchResult is one retrieval hit, ranked by cosine similarity.
type SearchResult struct {
	ChunkID int     `json:"chunk_id"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}
