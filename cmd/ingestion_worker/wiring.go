package main

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/atende-ai/atende/internal/config"
	milvusdb "github.com/atende-ai/atende/internal/database/milvus"
	"github.com/atende-ai/atende/internal/database/redis"
	"github.com/atende-ai/atende/internal/queue"
	"github.com/atende-ai/atende/internal/vectorstore"
	"github.com/atende-ai/atende/pkg/logger"
)

// buildQueue selects the configured work-queue backend.
func buildQueue(cfg *config.AppConfig, log *logger.Logger) (queue.Queue, error) {
	switch cfg.Queue.Engine {
	case "kafka":
		return queue.NewKafkaQueue(&cfg.Databases.Kafka, log)
	case "redis":
		client, err := redis.GetClient(&cfg.Databases.Redis)
		if err != nil {
			return nil, err
		}
		return queue.NewRedisQueue(client, cfg.Databases.Redis.Key, log), nil
	default:
		return nil, fmt.Errorf("unsupported queue engine: %s", cfg.Queue.Engine)
	}
}

// buildVectorStore selects the configured vector search engine.
func buildVectorStore(cfg *config.AppConfig, db *gorm.DB) (vectorstore.Store, error) {
	switch cfg.Vector.Engine {
	case "pgvector":
		return vectorstore.NewPgvectorStore(db), nil
	case "milvus":
		mc, err := milvusdb.GetClient(context.Background(), &cfg.Databases.Milvus)
		if err != nil {
			return nil, err
		}
		collection := cfg.Databases.Milvus.Collection
		if err := mc.EnsureCollection(context.Background(), collection, cfg.Vector.Dimension); err != nil {
			return nil, err
		}
		return vectorstore.NewMilvusStore(db, mc, collection), nil
	default:
		return nil, fmt.Errorf("unsupported vector engine: %s", cfg.Vector.Engine)
	}
}
