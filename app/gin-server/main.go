package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/concesa/salesagent/config"
	"github.com/concesa/salesagent/internal/agent"
	"github.com/concesa/salesagent/internal/api/handlers"
	"github.com/concesa/salesagent/internal/api/middleware"
	"github.com/concesa/salesagent/internal/api/routes"
	"github.com/concesa/salesagent/internal/cache"
	"github.com/concesa/salesagent/internal/catalog"
	"github.com/concesa/salesagent/internal/logger"
	"github.com/concesa/salesagent/internal/providers/embedding"
	"github.com/concesa/salesagent/internal/providers/llm"
	crmrepo "github.com/concesa/salesagent/internal/repositories/crm"
	"github.com/concesa/salesagent/internal/services"
	"github.com/concesa/salesagent/internal/storage"
	"github.com/concesa/salesagent/internal/workers"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	l := logger.New()
	ctx := context.Background()

	// CRM database
	if err := config.InitDB(cfg.CRMDB); err != nil {
		l.Fatalf("database init error: %v", err)
	}
	if err := crmrepo.Migrate(config.DB); err != nil {
		l.Fatalf("migration error: %v", err)
	}
	if err := crmrepo.SeedStock(config.DB, time.Now()); err != nil {
		l.Fatalf("stock seed error: %v", err)
	}

	// Embedding cache: Redis when configured, in-process otherwise
	var embCache cache.Cache
	if cfg.RedisAddr != "" {
		if err := config.InitRedis(cfg.RedisAddr); err != nil {
			l.Fatalf("redis init error: %v", err)
		}
		embCache = cache.NewRedisCache(config.RedisClient)
	} else {
		embCache = cache.NewMemoryCache()
	}

	// Catalog index
	embedder := embedding.NewFromConfig(cfg, l)
	defer embedder.Close()

	pool := &workers.EmbedPool{
		Embedder:   embedder,
		NumWorkers: cfg.EmbedWorkers,
		Retries:    cfg.EmbedRetries,
		Logger:     l,
	}

	var fetcher storage.Fetcher
	if strings.HasPrefix(cfg.CatalogSource, "gs://") {
		gcs, err := storage.NewGCSFetcher(ctx)
		if err != nil {
			l.Fatalf("GCS client error: %v", err)
		}
		fetcher = gcs
	} else {
		fetcher = storage.NewLocalFetcher()
	}

	index := catalog.NewIndex()
	indexer := catalog.NewIndexer(cfg, fetcher, pool, index, l)
	if err := indexer.Ensure(ctx); err != nil {
		l.Fatalf("catalog index error: %v", err)
	}
	retriever := catalog.NewRetriever(cfg, index, pool, embCache, l)

	// Repositories and services
	customers := crmrepo.NewCustomerRepo(config.DB)
	interests := crmrepo.NewInterestRepo(config.DB)
	conversations := crmrepo.NewConversationRepo(config.DB)
	stock := crmrepo.NewStockRepo(config.DB)

	crmSvc := services.NewCRMService(config.DB, customers, interests, conversations, stock)
	sessions := services.NewSessionStore(cfg.SessionMaxTurns)
	pricing := services.NewPricingService(cfg.PricingTiers)
	schedule := services.NewScheduleService(cfg.Holidays)
	availability := services.NewAvailabilityService(stock)

	// Agent
	provider, err := llm.NewFromConfig(ctx, cfg, l)
	if err != nil {
		l.Fatalf("LLM provider error: %v", err)
	}
	defer provider.Close()

	profile, err := agent.ProfileByName(cfg.AgentProfile)
	if err != nil {
		l.Fatalf("agent profile error: %v", err)
	}
	l.WithFields(logrus.Fields{
		"profile": profile.Name,
		"model":   profile.Model,
	}).Info("agent profile loaded")

	orch := agent.NewOrchestrator(cfg, profile, provider, sessions, crmSvc, retriever, pricing, availability, schedule, l)

	// HTTP server
	r := gin.New()
	r.Use(middleware.RequestLogger(l), gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Info:    handlers.NewInfoHandler(profile),
		Chat:    handlers.NewChatHandler(orch),
		Session: handlers.NewSessionHandler(sessions),
		CRM:     handlers.NewCRMHandler(crmSvc),
		Catalog: handlers.NewCatalogHandler(indexer, index),
		Health:  handlers.NewHealthHandler(index, crmSvc, sessions),
	})

	l.WithField("port", cfg.Port).Info("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		l.Fatalf("server error: %v", err)
	}
}
