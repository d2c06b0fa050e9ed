package embedding

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/concesa/salesagent/config"
)

// NewFromConfig returns the OpenAI embedder when an API key is configured,
// otherwise the deterministic mock so the index can still be built offline.
func NewFromConfig(cfg *config.Config, log *logrus.Logger) Provider {
	if cfg.LLMProvider == "mock" || cfg.OpenAIAPIKey == "" {
		log.Warn("no embeddings API key, using mock embedder")
		return NewMockEmbedder(cfg.EmbeddingDim)
	}
	return NewOpenAIEmbedder(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, 60*time.Second)
}
