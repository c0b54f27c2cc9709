package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nitinog10/Campus-mitra/api/handlers"
	"github.com/nitinog10/Campus-mitra/api/routes"
	"github.com/nitinog10/Campus-mitra/config"
	"github.com/nitinog10/Campus-mitra/internal/agent/chunker"
	"github.com/nitinog10/Campus-mitra/internal/agent/pdf"
	"github.com/nitinog10/Campus-mitra/internal/cache"
	"github.com/nitinog10/Campus-mitra/internal/embedding"
	"github.com/nitinog10/Campus-mitra/internal/llm"
	"github.com/nitinog10/Campus-mitra/internal/service/chat"
	"github.com/nitinog10/Campus-mitra/internal/service/document"
	"github.com/nitinog10/Campus-mitra/internal/vectorstore"
	"github.com/nitinog10/Campus-mitra/pkg/logger"
)

func main() {
	// init logger
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/pipeline.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.Get()
	if !cfg.Configured() {
		log.Warn("OPENAI_API_KEY is not set; ingestion and chat will be rejected")
	}

	// init cache and restore the disk mirror
	metaCache := cache.New(cache.Config{MirrorPath: cfg.CacheFilePath}, log)
	if err := metaCache.LoadMirror(); err != nil {
		log.Warn("Failed to load cache mirror", logger.Error(err))
	}

	embedder := embedding.NewClient(embedding.Config{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.EmbeddingModel,
	})
	generator := llm.NewClient(llm.Config{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
	})
	store := vectorstore.NewStore(embedder, log)

	docService := document.NewService(
		pdf.NewParser(log),
		chunker.New(cfg.ChunkSize, cfg.ChunkOverlap),
		store,
		metaCache,
		log,
		&document.ServiceConfig{
			StorageRoot: cfg.VectorStorePath,
			Configured:  cfg.Configured(),
		},
	)

	// pick up indexes persisted by earlier runs
	if restored, err := docService.ReconcileFromDisk(); err != nil {
		log.Warn("Disk reconciliation failed", logger.Error(err))
	} else if restored > 0 {
		log.Info("Restored documents from disk", logger.Int("count", restored))
	}

	chatService := chat.NewService(
		docService,
		generator,
		chat.NewMemory(),
		chat.NewMemoizer(),
		log,
		&chat.ServiceConfig{
			Configured: cfg.Configured(),
			ChatModel:  cfg.ChatModel,
			RAGModel:   cfg.RAGModel,
			SearchK:    cfg.SimilarityK,
		},
	)

	// init handlers
	h := handlers.NewHandlers(docService, chatService, log, cfg.MaxFileSize)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	// start server
	go func() {
		log.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error:", logger.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown:", logger.Error(err))
	}
}
