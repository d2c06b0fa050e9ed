package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/concesa/salesagent/config"
)

// NewFromConfig selects the provider from LLM_PROVIDER. An openai selection
// without an API key degrades to the mock so local runs work out of the box.
func NewFromConfig(ctx context.Context, cfg *config.Config, log *logrus.Logger) (Provider, error) {
	switch cfg.LLMProvider {
	case "mock":
		log.Warn("LLM_PROVIDER=mock, replies are canned")
		return NewMockProvider(), nil
	case "vertex":
		if cfg.VertexProjectID == "" {
			return nil, fmt.Errorf("LLM_PROVIDER=vertex requires VERTEX_PROJECT_ID")
		}
		return NewVertexGemini(ctx, cfg.VertexProjectID, cfg.VertexLocation, "gemini-1.5-flash")
	case "openai", "":
		if cfg.OpenAIAPIKey == "" {
			log.Warn("OPENAI_API_KEY not set, using mock LLM provider")
			return NewMockProvider(), nil
		}
		return NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, 2*time.Minute), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}
