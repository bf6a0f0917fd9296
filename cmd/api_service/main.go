package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atende-ai/atende/internal/blob"
	"github.com/atende-ai/atende/internal/config"
	"github.com/atende-ai/atende/internal/database/minio"
	"github.com/atende-ai/atende/internal/database/postgres"
	"github.com/atende-ai/atende/internal/document_service/api"
	docservice "github.com/atende-ai/atende/internal/document_service/service"
	"github.com/atende-ai/atende/internal/document_service/store"
	"github.com/atende-ai/atende/internal/embedding"
	"github.com/atende-ai/atende/internal/llm"
	"github.com/atende-ai/atende/internal/models"
	ragapi "github.com/atende-ai/atende/internal/rag_service/api"
	ragservice "github.com/atende-ai/atende/internal/rag_service/service"
	"github.com/atende-ai/atende/pkg/logger"
)

func main() {
	// 1. Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// 2. Initialize logger
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	appLogger := logger.New("api_service", "", "")
	appLogger.Info("Logger initialized for API Service")

	// 3. Connect to Postgres and migrate the schema
	db, err := postgres.GetDB(&cfg.Databases.Postgres)
	if err != nil {
		appLogger.Fatal(fmt.Sprintf("Failed to connect to postgres: %v", err))
	}
	defer postgres.Close()
	if err := db.AutoMigrate(&models.Organization{}, &models.Agent{}, &models.Document{}, &models.DocumentChunk{}); err != nil {
		appLogger.Fatal(fmt.Sprintf("Failed to migrate schema: %v", err))
	}
	appLogger.Info("Postgres connection established")

	// 4. Connect to MinIO
	minioClient, err := minio.GetClient(&cfg.Databases.MinIO)
	if err != nil {
		appLogger.Fatal(fmt.Sprintf("Failed to connect to minio: %v", err))
	}
	blobStore := blob.NewMinIOStore(minioClient, cfg.Databases.MinIO.Bucket, appLogger)
	appLogger.Info("MinIO connection established")

	// 5. Work queue
	workQueue, err := buildQueue(cfg, appLogger)
	if err != nil {
		appLogger.Fatal(fmt.Sprintf("Failed to initialize queue: %v", err))
	}
	defer workQueue.Close()
	appLogger.Info(fmt.Sprintf("Work queue initialized (%s)", cfg.Queue.Engine))

	// 6. Vector store
	vectorStore, err := buildVectorStore(cfg, db)
	if err != nil {
		appLogger.Fatal(fmt.Sprintf("Failed to initialize vector store: %v", err))
	}
	appLogger.Info(fmt.Sprintf("Vector store initialized (%s)", cfg.Vector.Engine))

	// 7. Embedding and LLM clients
	embedModel, err := embedding.NewModel(&cfg.Embedding)
	if err != nil {
		appLogger.Fatal(fmt.Sprintf("Failed to create embedding model: %v", err))
	}
	llmClient, err := llm.New(&cfg.LLM)
	if err != nil {
		appLogger.Fatal(fmt.Sprintf("Failed to create llm client: %v", err))
	}

	// 8. Services and handlers
	documentStore := store.NewGormDocumentStore(db)
	agentStore := store.NewGormAgentStore(db)
	organizationStore := store.NewGormOrganizationStore(db)

	docSvc := docservice.NewService(documentStore, organizationStore, blobStore, workQueue, vectorStore, cfg.Upload.MaxFileSize, appLogger)
	ragSvc := ragservice.NewService(embedModel, vectorStore, documentStore, agentStore, llmClient, appLogger)

	docHandler := api.NewHandler(docSvc)
	ragHandler := ragapi.NewHandler(ragSvc)

	health := func(c *gin.Context) {
		if err := postgres.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router := api.SetupRouter(docHandler, ragHandler.Query, cfg.Auth.JwtSecret, health)

	// 9. Serve with graceful shutdown
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}
	go func() {
		appLogger.Info("API service listening on " + cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal(fmt.Sprintf("HTTP server failed: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down API service")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("Forced shutdown: %v", err))
	}
	appLogger.Info("API service stopped")
}
