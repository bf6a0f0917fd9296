package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/atende-ai/atende/internal/blob"
	"github.com/atende-ai/atende/internal/chunking"
	"github.com/atende-ai/atende/internal/config"
	"github.com/atende-ai/atende/internal/database/minio"
	"github.com/atende-ai/atende/internal/database/postgres"
	"github.com/atende-ai/atende/internal/document_service/store"
	"github.com/atende-ai/atende/internal/embedding"
	"github.com/atende-ai/atende/internal/extraction"
	"github.com/atende-ai/atende/internal/ingestion_service/consumer"
	"github.com/atende-ai/atende/internal/ingestion_service/service"
	"github.com/atende-ai/atende/internal/models"
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
	appLogger := logger.New("ingestion_worker", "", "")
	appLogger.Info("Logger initialized for Ingestion Worker")

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

	// 5. Work queue and vector store
	workQueue, err := buildQueue(cfg, appLogger)
	if err != nil {
		appLogger.Fatal(fmt.Sprintf("Failed to initialize queue: %v", err))
	}
	defer workQueue.Close()

	vectorStore, err := buildVectorStore(cfg, db)
	if err != nil {
		appLogger.Fatal(fmt.Sprintf("Failed to initialize vector store: %v", err))
	}
	appLogger.Info(fmt.Sprintf("Queue (%s) and vector store (%s) initialized", cfg.Queue.Engine, cfg.Vector.Engine))

	// 6. Embedding model with batching
	model, err := embedding.NewModel(&cfg.Embedding)
	if err != nil {
		appLogger.Fatal(fmt.Sprintf("Failed to create embedding model: %v", err))
	}
	embedder := embedding.NewBatchClient(model)

	// 7. Extraction with OCR
	ocr := extraction.NewTesseractEngine(cfg.Ingestion.OCRLanguage)
	extractor := extraction.NewExtractor(ocr, appLogger)

	// 8. Processor and consumer pool
	processor := service.NewProcessor(
		store.NewGormDocumentStore(db),
		blobStore,
		extractor,
		embedder,
		vectorStore,
		chunking.Options{ChunkSize: cfg.Ingestion.ChunkSize, Overlap: cfg.Ingestion.Overlap},
		cfg.Ingestion.StepTimeoutDuration(),
		appLogger,
	)
	workers := consumer.NewConsumer(workQueue, processor, cfg.Ingestion.Concurrency, appLogger)

	// 9. Run until interrupted
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		appLogger.Info("Shutting down ingestion worker")
		cancel()
	}()

	if err := workers.Run(ctx); err != nil {
		appLogger.Fatal(fmt.Sprintf("Worker pool stopped with error: %v", err))
	}
	appLogger.Info("Ingestion worker stopped")
}
