package milvus

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/atende-ai/atende/internal/config"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

var (
	instance *MilvusClient
	once     sync.Once
	initErr  error
)

// MilvusClient bundles the Milvus client instance and its configuration.
type MilvusClient struct {
	Client client.Client
	Config *config.MilvusConfig
}

// GetClient creates and returns a Milvus client as a singleton.
func GetClient(ctx context.Context, cfg *config.MilvusConfig) (*MilvusClient, error) {
	once.Do(func() {
		c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
		if err != nil {
			initErr = fmt.Errorf("failed to connect to Milvus: %w", err)
			return
		}
		log.Println("Connected to Milvus")
		instance = &MilvusClient{Client: c, Config: cfg}
	})
	return instance, initErr
}

// EnsureCollection creates the chunk-vector collection and its index when
// missing, then loads it for search. dim is the embedding dimensionality.
func (c *MilvusClient) EnsureCollection(ctx context.Context, collection string, dim int) error {
	has, err := c.Client.HasCollection(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check Milvus collection %s: %w", collection, err)
	}

	if !has {
		schema := entity.NewSchema().
			WithName(collection).
			WithDescription("Per-chunk embedding vectors with tenant scoping fields").
			WithField(entity.NewField().WithName("id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(64).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName("document_id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
			WithField(entity.NewField().WithName("organization_id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
			WithField(entity.NewField().WithName("agent_id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
			WithField(entity.NewField().WithName("embedding").WithDataType(entity.FieldTypeFloatVector).WithDim(int64(dim)))

		if err := c.Client.CreateCollection(ctx, schema, 1); err != nil {
			return fmt.Errorf("failed to create Milvus collection %s: %w", collection, err)
		}

		idx, err := entity.NewIndexAUTOINDEX(entity.COSINE)
		if err != nil {
			return fmt.Errorf("failed to build Milvus index definition: %w", err)
		}
		if err := c.Client.CreateIndex(ctx, collection, "embedding", idx, false); err != nil {
			return fmt.Errorf("failed to create Milvus index: %w", err)
		}
	}

	if err := c.Client.LoadCollection(ctx, collection, false); err != nil {
		return fmt.Errorf("failed to load Milvus collection %s: %w", collection, err)
	}
	return nil
}

// Close safely shuts down the Milvus connection.
func (c *MilvusClient) Close() {
	if c != nil && c.Client != nil {
		c.Client.Close()
	}
}

// HealthCheck verifies Milvus connectivity.
func (c *MilvusClient) HealthCheck(ctx context.Context) error {
	if c == nil || c.Client == nil {
		return fmt.Errorf("milvus client not initialized")
	}
	if _, err := c.Client.ListCollections(ctx); err != nil {
		return fmt.Errorf("milvus health check failed: %w", err)
	}
	return nil
}
