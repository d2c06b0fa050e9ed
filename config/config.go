package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Tier grants Percent off the gross rental price once the rental
// lasts at least MinDays days.
type Tier struct {
	MinDays int
	Percent int
}

type Config struct {
	Port string

	// Catalog / retrieval.
	CatalogSource  string
	IndexDir       string
	ChunkSize      int
	ChunkOverlap   int
	TopK           int
	MaxTopK        int
	EmbeddingModel string
	EmbeddingDim   int
	EmbedRetries   int
	EmbedCacheTTL  time.Duration
	EmbedWorkers   int

	// Agent.
	AgentProfile  string
	MaxIterations int
	ArgRetries    int
	ToolTimeout   time.Duration
	TurnTimeout   time.Duration

	// Business rules.
	PricingTiers []Tier
	Holidays     []string

	// Storage.
	CRMDB     string
	RedisAddr string

	// Providers.
	LLMProvider     string
	OpenAIBaseURL   string
	OpenAIAPIKey    string
	VertexProjectID string
	VertexLocation  string

	SessionMaxTurns int
}

// DefaultHolidays are the fixed-date Honduran public holidays, as
// month-day entries applied to every year.
var DefaultHolidays = []string{
	"01-01", // Año Nuevo
	"04-14", // Día de las Américas
	"05-01", // Día del Trabajo
	"09-15", // Día de la Independencia
	"10-03", // Natalicio de Morazán
	"10-12", // Día de la Raza
	"10-21", // Día de las Fuerzas Armadas
	"12-25", // Navidad
}

const defaultPricingTiers = "7:10,14:15,30:20"

func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "8000"),

		CatalogSource:  getEnv("CATALOG_SOURCE", "./data/catalogo.txt"),
		IndexDir:       getEnv("INDEX_DIR", "./data/index"),
		ChunkSize:      getEnvInt("CHUNK_SIZE", 500),
		ChunkOverlap:   getEnvInt("CHUNK_OVERLAP", 100),
		TopK:           getEnvInt("TOP_K", 3),
		MaxTopK:        getEnvInt("MAX_TOP_K", 10),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDim:   getEnvInt("EMBEDDING_DIM", 1536),
		EmbedRetries:   getEnvInt("EMBED_RETRIES", 3),
		EmbedCacheTTL:  getEnvMillis("EMBED_CACHE_TTL_MS", 5*time.Minute),
		EmbedWorkers:   getEnvInt("EMBED_WORKERS", 4),

		AgentProfile:  getEnv("AGENT_PROFILE", "balanced"),
		MaxIterations: getEnvInt("MAX_ITERATIONS", 5),
		ArgRetries:    getEnvInt("ARG_RETRIES", 2),
		ToolTimeout:   getEnvMillis("TOOL_TIMEOUT_MS", 10*time.Second),
		TurnTimeout:   getEnvMillis("TURN_TIMEOUT_MS", 60*time.Second),

		CRMDB:     getEnv("CRM_DB", "./data/crm.db"),
		RedisAddr: getEnv("REDIS_ADDR", ""),

		LLMProvider:     getEnv("LLM_PROVIDER", "openai"),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		VertexProjectID: getEnv("VERTEX_PROJECT_ID", ""),
		VertexLocation:  getEnv("VERTEX_LOCATION", "us-central1"),

		SessionMaxTurns: getEnvInt("SESSION_MAX_TURNS", 20),
	}

	tiers, err := ParsePricingTiers(getEnv("PRICING_TIERS", defaultPricingTiers))
	if err != nil {
		return nil, fmt.Errorf("PRICING_TIERS: %w", err)
	}
	cfg.PricingTiers = tiers

	if raw := os.Getenv("HOLIDAYS"); raw != "" {
		days, err := ParseHolidays(raw)
		if err != nil {
			return nil, fmt.Errorf("HOLIDAYS: %w", err)
		}
		cfg.Holidays = days
	} else {
		cfg.Holidays = DefaultHolidays
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.ChunkOverlap)
	}
	if c.TopK < 1 {
		return fmt.Errorf("TOP_K must be at least 1, got %d", c.TopK)
	}
	if c.MaxTopK < c.TopK {
		return fmt.Errorf("MAX_TOP_K (%d) must not be below TOP_K (%d)", c.MaxTopK, c.TopK)
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("EMBEDDING_DIM must be positive, got %d", c.EmbeddingDim)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("MAX_ITERATIONS must be at least 1, got %d", c.MaxIterations)
	}
	if c.SessionMaxTurns < 1 {
		return fmt.Errorf("SESSION_MAX_TURNS must be at least 1, got %d", c.SessionMaxTurns)
	}
	if c.EmbedWorkers < 1 {
		return fmt.Errorf("EMBED_WORKERS must be at least 1, got %d", c.EmbedWorkers)
	}
	return nil
}

// ParsePricingTiers parses "7:10,14:15,30:20" into discount tiers sorted by
// minimum duration. Thresholds must be unique and discounts must not shrink
// as the rental gets longer.
func ParsePricingTiers(s string) ([]Tier, error) {
	parts := strings.Split(s, ",")
	tiers := make([]Tier, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("malformed tier %q, want minDays:percent", part)
		}
		minDays, err := strconv.Atoi(strings.TrimSpace(kv[0]))
		if err != nil {
			return nil, fmt.Errorf("malformed tier %q: %w", part, err)
		}
		percent, err := strconv.Atoi(strings.TrimSpace(kv[1]))
		if err != nil {
			return nil, fmt.Errorf("malformed tier %q: %w", part, err)
		}
		if minDays <= 0 {
			return nil, fmt.Errorf("tier %q: minDays must be positive", part)
		}
		if percent < 0 || percent > 100 {
			return nil, fmt.Errorf("tier %q: percent must be in [0,100]", part)
		}
		tiers = append(tiers, Tier{MinDays: minDays, Percent: percent})
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("no tiers in %q", s)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinDays < tiers[j].MinDays })
	for i := 1; i < len(tiers); i++ {
		if tiers[i].MinDays == tiers[i-1].MinDays {
			return nil, fmt.Errorf("duplicate tier threshold %d", tiers[i].MinDays)
		}
		if tiers[i].Percent < tiers[i-1].Percent {
			return nil, fmt.Errorf("discount must not decrease with duration: %d%% at %d days after %d%% at %d days",
				tiers[i].Percent, tiers[i].MinDays, tiers[i-1].Percent, tiers[i-1].MinDays)
		}
	}
	return tiers, nil
}

// ParseHolidays parses a comma-separated list of MM-DD entries observed
// every year, e.g. "01-01,09-15".
func ParseHolidays(s string) ([]string, error) {
	parts := strings.Split(s, ",")
	days := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := time.Parse("01-02", part)
		if err != nil {
			return nil, fmt.Errorf("malformed holiday %q, want MM-DD: %w", part, err)
		}
		days = append(days, t.Format("01-02"))
	}
	return days, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvMillis(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return fallback
}
