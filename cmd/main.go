package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hmo-chatbot-backend/internal/ai"
	"hmo-chatbot-backend/internal/config"
	"hmo-chatbot-backend/internal/logger"
	"hmo-chatbot-backend/internal/telemetry"
	"hmo-chatbot-backend/middleware"
	"hmo-chatbot-backend/routes"
	"hmo-chatbot-backend/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Telemetry
	shutdownTracer, err := telemetry.InitTracer("hmo-chatbot-backend")
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	} else {
		defer shutdownTracer()
	}
	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to init metrics:", err)
	}

	// AI clients
	generator, err := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTier)
	if err != nil {
		log.Fatal("Failed to init Gemini client:", err)
	}
	defer generator.Close()

	embedder, err := ai.NewGeminiEmbedder(cfg.GeminiAPIKey, cfg.GoogleEmbeddingsModel)
	if err != nil {
		log.Fatal("Failed to init embedder:", err)
	}
	defer embedder.Close()

	// Build the knowledge index at startup. The service does not come up
	// without a searchable corpus.
	chunker := services.NewChunker(cfg.MaxChunkSize, cfg.ChunkOverlap, cfg.MinChunkSize)

	buildCtx, cancelBuild := context.WithTimeout(context.Background(), 15*time.Minute)
	chunks, err := services.BuildChunks(buildCtx, cfg.KnowledgeDir, chunker, embedder, cfg.VectorDim)
	cancelBuild()
	if err != nil {
		log.Fatal("Failed to build knowledge index:", err)
	}
	logger.Info("Knowledge base embedded", "chunks", len(chunks), "dir", cfg.KnowledgeDir)

	var store services.KnowledgeStore
	var atlas *services.AtlasIndex
	if cfg.VectorSearchEnabled {
		mongoClient, err := config.ConnectMongoDB(cfg)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			mongoClient.Disconnect(ctx)
		}()

		collection := mongoClient.Database(cfg.DBName).Collection(config.ChunkCollection)
		atlas = services.NewAtlasIndex(collection, cfg.VectorIndexName)
		replaceCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		err = atlas.Replace(replaceCtx, chunks)
		cancel()
		if err != nil {
			log.Fatal("Failed to load chunks into Atlas:", err)
		}
		store = atlas
	} else {
		store = services.NewMemoryIndex(chunks, cfg.MinSimilarity)
	}
	index := services.NewIndexProvider(store)

	// Scheduled reindex keeps the corpus fresh without a restart. The new
	// index is built completely before the atomic swap.
	if cfg.ReindexCron != "" {
		reindexer := services.NewReindexer()
		err := reindexer.Schedule(cfg.ReindexCron, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
			defer cancel()
			fresh, err := services.BuildChunks(ctx, cfg.KnowledgeDir, chunker, embedder, cfg.VectorDim)
			if err != nil {
				return err
			}
			if atlas != nil {
				if err := atlas.Replace(ctx, fresh); err != nil {
					return err
				}
				return nil
			}
			index.Swap(services.NewMemoryIndex(fresh, cfg.MinSimilarity))
			return nil
		})
		if err != nil {
			log.Fatal("Failed to schedule reindex:", err)
		}
		reindexer.Start()
		defer reindexer.Stop()
	}

	// Conversation pipeline
	schema := services.DefaultSchema()
	collector := services.NewCollector(schema, services.CorrectionFallback(cfg.CorrectionFallback))
	scoper := services.NewScoper(embedder, schema)
	synthesizer := services.NewSynthesizer(generator, cfg.MaxHistoryTurns)
	chatService := services.NewChatService(collector, scoper, index, synthesizer, cfg.RetrievalTopK)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.EnrichTrace())
	router.Use(middleware.MetricsMiddleware(metrics))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With"}
	router.Use(cors.New(corsConfig))

	// Rate limiting is optional; without Redis the service runs unlimited
	if cfg.RedisURL != "" {
		rdb, err := config.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, rate limiting disabled", "error", err)
		} else {
			defer rdb.Close()
			router.Use(middleware.RateLimitMiddleware(rdb, cfg))
		}
	}

	// Setup routes
	routes.SetupChatRoutes(router, chatService, metrics)
	routes.SetupHealthRoutes(router, index)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
