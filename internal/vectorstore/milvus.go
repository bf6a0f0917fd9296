package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	milvusdb "github.com/atende-ai/atende/internal/database/milvus"
	"github.com/atende-ai/atende/internal/models"
)

// MilvusStore is a hybrid store: chunk rows live in Postgres while the
// vectors live in a Milvus collection indexed with cosine similarity.
// Postgres stays the source of truth for chunk text and metadata.
type MilvusStore struct {
	db         *gorm.DB
	milvus     *milvusdb.MilvusClient
	collection string
}

// NewMilvusStore creates a Milvus-backed vector store.
func NewMilvusStore(db *gorm.DB, mc *milvusdb.MilvusClient, collection string) *MilvusStore {
	return &MilvusStore{db: db, milvus: mc, collection: collection}
}

// Upsert writes chunk rows to Postgres and their vectors to Milvus. Existing
// vectors for the same chunk ids are removed first so re-ingestion does not
// accumulate duplicates.
func (s *MilvusStore) Upsert(ctx context.Context, records []ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	chunks := make([]models.DocumentChunk, len(records))
	ids := make([]string, len(records))
	docIDs := make([]string, len(records))
	orgIDs := make([]string, len(records))
	agentIDs := make([]string, len(records))
	vectors := make([][]float32, len(records))
	for i, r := range records {
		chunks[i] = models.DocumentChunk{
			ID:         r.ID,
			DocumentID: r.DocumentID,
			ChunkIndex: r.ChunkIndex,
			Content:    r.Content,
			TokenCount: r.TokenCount,
			PageNumber: r.PageNumber,
			Metadata:   datatypes.JSONMap(r.Metadata),
		}
		ids[i] = r.ID
		docIDs[i] = r.DocumentID
		orgIDs[i] = r.OrganizationID
		agentIDs[i] = r.AgentID
		vectors[i] = r.Embedding
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "document_id"}, {Name: "chunk_index"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"content", "token_count", "page_number", "metadata",
		}),
	}).Create(&chunks).Error
	if err != nil {
		return fmt.Errorf("failed to upsert %d chunk rows: %w", len(records), err)
	}

	expr := fmt.Sprintf(`id in [%s]`, quoteList(ids))
	if err := s.milvus.Client.Delete(ctx, s.collection, "", expr); err != nil {
		return fmt.Errorf("failed to drop stale vectors: %w", err)
	}

	idCol := entity.NewColumnVarChar("id", ids)
	docCol := entity.NewColumnVarChar("document_id", docIDs)
	orgCol := entity.NewColumnVarChar("organization_id", orgIDs)
	agentCol := entity.NewColumnVarChar("agent_id", agentIDs)
	vecCol := entity.NewColumnFloatVector("embedding", len(vectors[0]), vectors)

	_, err = s.milvus.Client.Insert(ctx, s.collection, "", idCol, docCol, orgCol, agentCol, vecCol)
	if err != nil {
		return fmt.Errorf("failed to insert vectors into milvus: %w", err)
	}
	return nil
}

// Search queries Milvus for the nearest vectors within one organization,
// then hydrates content and metadata from the Postgres chunk rows.
func (s *MilvusStore) Search(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error) {
	if opts.OrganizationID == "" {
		return nil, fmt.Errorf("organization id is required for search")
	}
	opts = opts.withDefaults()

	expr := fmt.Sprintf(`organization_id == "%s"`, opts.OrganizationID)
	if opts.AgentID != "" {
		expr += fmt.Sprintf(` and agent_id == "%s"`, opts.AgentID)
	}

	searchParams, _ := entity.NewIndexIvfFlatSearchParam(10)
	searchResults, err := s.milvus.Client.Search(
		ctx, s.collection, []string{}, expr, []string{"id", "document_id"},
		[]entity.Vector{entity.FloatVector(query)},
		"embedding", entity.COSINE, opts.TopK, searchParams,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}

	type hit struct {
		chunkID string
		score   float64
	}
	var hits []hit
	for _, res := range searchResults {
		var idCol *entity.ColumnVarChar
		for _, field := range res.Fields {
			if field.Name() == "id" {
				idCol, _ = field.(*entity.ColumnVarChar)
			}
		}
		if idCol == nil {
			continue
		}
		idData := idCol.Data()
		for i := 0; i < res.ResultCount; i++ {
			score := float64(res.Scores[i])
			if score < opts.MinScore {
				continue
			}
			hits = append(hits, hit{chunkID: idData[i], score: score})
		}
	}
	if len(hits) == 0 {
		return []SearchResult{}, nil
	}

	chunkIDs := make([]string, len(hits))
	for i, h := range hits {
		chunkIDs[i] = h.chunkID
	}
	var rows []models.DocumentChunk
	if err := s.db.WithContext(ctx).Where("id IN ?", chunkIDs).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to hydrate chunks: %w", err)
	}
	byID := make(map[string]models.DocumentChunk, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		row, ok := byID[h.chunkID]
		if !ok {
			continue
		}
		results = append(results, SearchResult{
			ChunkID:    row.ID,
			DocumentID: row.DocumentID,
			ChunkIndex: row.ChunkIndex,
			Content:    row.Content,
			Score:      h.score,
			Metadata:   map[string]interface{}(row.Metadata),
		})
	}
	return results, nil
}

// DeleteByDocument removes a document's chunk rows and its Milvus vectors.
func (s *MilvusStore) DeleteByDocument(ctx context.Context, documentID string) error {
	expr := fmt.Sprintf(`document_id == "%s"`, documentID)
	if err := s.milvus.Client.Delete(ctx, s.collection, "", expr); err != nil {
		return fmt.Errorf("failed to delete vectors for document %s: %w", documentID, err)
	}
	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&models.DocumentChunk{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete chunks for document %s: %w", documentID, err)
	}
	return nil
}

// ClearEmbeddings drops a document's vectors from Milvus while keeping the
// chunk rows in Postgres.
func (s *MilvusStore) ClearEmbeddings(ctx context.Context, documentID string) error {
	expr := fmt.Sprintf(`document_id == "%s"`, documentID)
	if err := s.milvus.Client.Delete(ctx, s.collection, "", expr); err != nil {
		return fmt.Errorf("failed to clear vectors for document %s: %w", documentID, err)
	}
	return nil
}

func quoteList(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = fmt.Sprintf("%q", id)
	}
	return strings.Join(quoted, ", ")
}

var _ Store = (*MilvusStore)(nil)
