package vectorstore

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atende-ai/atende/internal/models"
)

// PgvectorStore keeps chunk rows and their embeddings together in Postgres,
// using the pgvector extension for cosine search.
type PgvectorStore struct {
	db *gorm.DB
}

// NewPgvectorStore creates a Postgres-backed vector store.
func NewPgvectorStore(db *gorm.DB) *PgvectorStore {
	return &PgvectorStore{db: db}
}

// Upsert writes chunk rows, replacing content and embedding for any row that
// already exists with the same document and chunk index.
func (s *PgvectorStore) Upsert(ctx context.Context, records []ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	chunks := make([]models.DocumentChunk, len(records))
	for i, r := range records {
		encoded := EncodeVector(r.Embedding)
		chunks[i] = models.DocumentChunk{
			ID:         r.ID,
			DocumentID: r.DocumentID,
			ChunkIndex: r.ChunkIndex,
			Content:    r.Content,
			TokenCount: r.TokenCount,
			PageNumber: r.PageNumber,
			Metadata:   datatypes.JSONMap(r.Metadata),
			Embedding:  &encoded,
		}
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "document_id"}, {Name: "chunk_index"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"content", "token_count", "page_number", "metadata", "embedding",
		}),
	}).Create(&chunks).Error
	if err != nil {
		return fmt.Errorf("failed to upsert %d chunks: %w", len(records), err)
	}
	return nil
}

type pgvectorHit struct {
	ID         string
	DocumentID string
	ChunkIndex int
	Content    string
	Metadata   datatypes.JSONMap
	Score      float64
}

// Search runs a cosine similarity query joined to the documents table so
// results never cross an organization boundary. Rows with null embeddings
// are skipped.
func (s *PgvectorStore) Search(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error) {
	if opts.OrganizationID == "" {
		return nil, fmt.Errorf("organization id is required for search")
	}
	opts = opts.withDefaults()
	encoded := EncodeVector(query)

	sql := `
		SELECT dc.id, dc.document_id, dc.chunk_index, dc.content, dc.metadata,
		       1 - (dc.embedding::vector <=> ?::vector) AS score
		FROM document_chunks dc
		JOIN documents d ON d.id = dc.document_id
		WHERE d.organization_id = ?
		  AND dc.embedding IS NOT NULL`
	args := []interface{}{encoded, opts.OrganizationID}

	if opts.AgentID != "" {
		sql += ` AND d.agent_id = ?`
		args = append(args, opts.AgentID)
	}

	sql += `
		  AND 1 - (dc.embedding::vector <=> ?::vector) >= ?
		ORDER BY dc.embedding::vector <=> ?::vector
		LIMIT ?`
	args = append(args, encoded, opts.MinScore, encoded, opts.TopK)

	var hits []pgvectorHit
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&hits).Error; err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	results := make([]SearchResult, len(hits))
	for i, h := range hits {
		results[i] = SearchResult{
			ChunkID:    h.ID,
			DocumentID: h.DocumentID,
			ChunkIndex: h.ChunkIndex,
			Content:    h.Content,
			Score:      h.Score,
			Metadata:   map[string]interface{}(h.Metadata),
		}
	}
	return results, nil
}

// DeleteByDocument removes every chunk row belonging to a document.
func (s *PgvectorStore) DeleteByDocument(ctx context.Context, documentID string) error {
	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&models.DocumentChunk{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete chunks for document %s: %w", documentID, err)
	}
	return nil
}

// ClearEmbeddings nulls the embedding column for a document's chunks while
// keeping the rows so the text remains queryable by id.
func (s *PgvectorStore) ClearEmbeddings(ctx context.Context, documentID string) error {
	err := s.db.WithContext(ctx).
		Model(&models.DocumentChunk{}).
		Where("document_id = ?", documentID).
		Update("embedding", nil).Error
	if err != nil {
		return fmt.Errorf("failed to clear embeddings for document %s: %w", documentID, err)
	}
	return nil
}

var _ Store = (*PgvectorStore)(nil)
