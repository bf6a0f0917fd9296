// Package service implements the document ingestion pipeline: fetch the
// stored file, extract text, chunk it, embed the chunks and persist them to
// the vector store.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/atende-ai/atende/internal/blob"
	"github.com/atende-ai/atende/internal/chunking"
	"github.com/atende-ai/atende/internal/document_service/store"
	"github.com/atende-ai/atende/internal/embedding"
	"github.com/atende-ai/atende/internal/extraction"
	"github.com/atende-ai/atende/internal/models"
	"github.com/atende-ai/atende/internal/vectorstore"
	"github.com/atende-ai/atende/pkg/logger"
)

// Processor runs the ingestion pipeline for one document at a time. It is
// safe for concurrent use; each document flows through independently.
type Processor struct {
	documents   store.DocumentStore
	blobs       blob.Store
	extractor   *extraction.Extractor
	embedder    embedding.Model
	vectors     vectorstore.Store
	chunkOpts   chunking.Options
	stepTimeout time.Duration
	log         *logger.Logger
}

// NewProcessor creates an ingestion processor. stepTimeout bounds each
// external call (blob fetch, extraction, embedding, vector writes).
func NewProcessor(documents store.DocumentStore, blobs blob.Store, extractor *extraction.Extractor, embedder embedding.Model, vectors vectorstore.Store, chunkOpts chunking.Options, stepTimeout time.Duration, log *logger.Logger) *Processor {
	if stepTimeout <= 0 {
		stepTimeout = 60 * time.Second
	}
	return &Processor{
		documents:   documents,
		blobs:       blobs,
		extractor:   extractor,
		embedder:    embedder,
		vectors:     vectors,
		chunkOpts:   chunkOpts,
		stepTimeout: stepTimeout,
		log:         log,
	}
}

// Process ingests one document end to end. Any failure marks the document
// failed with the error message stored verbatim, then returns the error.
func (p *Processor) Process(ctx context.Context, documentID string) error {
	doc, err := p.documents.FindByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load document %s: %w", documentID, err)
	}

	plog := p.log.WithPayload(map[string]interface{}{
		"documentId":     documentID,
		"organizationId": doc.OrganizationID,
		"fileType":       doc.FileType,
	})
	plog.Info("Starting document ingestion")

	if err := p.run(ctx, doc, plog); err != nil {
		p.markFailed(doc.ID, err, plog)
		return err
	}
	return nil
}

func (p *Processor) run(ctx context.Context, doc *models.Document, plog *logger.Logger) error {
	// Re-ingestion replaces prior output wholesale.
	existing, err := p.documents.CountChunks(ctx, doc.ID)
	if err != nil {
		return err
	}
	if existing > 0 {
		plog.Info(fmt.Sprintf("Removing %d existing chunks before re-ingestion", existing))
		if err := p.step(ctx, func(sc context.Context) error {
			return p.vectors.DeleteByDocument(sc, doc.ID)
		}); err != nil {
			return fmt.Errorf("failed to remove existing chunks: %w", err)
		}
	}

	if err := p.documents.Update(ctx, doc.ID, map[string]interface{}{
		"status": models.StatusProcessing,
	}); err != nil {
		return err
	}

	var data []byte
	if err := p.step(ctx, func(sc context.Context) error {
		var err error
		data, err = p.blobs.Get(sc, doc.StorageBucket, doc.StorageKey)
		return err
	}); err != nil {
		return fmt.Errorf("failed to fetch stored file: %w", err)
	}

	var extracted extraction.Result
	if err := p.step(ctx, func(sc context.Context) error {
		var err error
		extracted, err = p.extractor.Extract(sc, doc.FileType, data)
		return err
	}); err != nil {
		return fmt.Errorf("text extraction failed: %w", err)
	}

	text := normalizeText(extracted.Text)
	if text == "" {
		return fmt.Errorf("document produced no extractable text")
	}

	// Extraction metadata is merged into the document record; the chunks
	// carry only the extraction fields themselves.
	docMeta := make(map[string]interface{}, len(doc.Metadata)+len(extracted.Metadata)+2)
	for k, v := range doc.Metadata {
		docMeta[k] = v
	}
	for k, v := range extracted.Metadata {
		docMeta[k] = v
	}
	docMeta["extractedAt"] = time.Now().UTC().Format(time.RFC3339)
	docMeta["textLength"] = len(text)
	if err := p.documents.Update(ctx, doc.ID, map[string]interface{}{
		"metadata": datatypes.JSONMap(docMeta),
	}); err != nil {
		return fmt.Errorf("failed to record document metadata: %w", err)
	}

	chunks := chunking.Split(text, doc.ID, extracted.Metadata, p.chunkOpts)
	if len(chunks) == 0 {
		return fmt.Errorf("chunking produced no chunks")
	}
	plog.Info(fmt.Sprintf("Split document into %d chunks", len(chunks)))

	contents := make([]string, len(chunks))
	for i, c := range chunks {
		contents[i] = c.Content
	}

	var vectors [][]float32
	if err := p.step(ctx, func(sc context.Context) error {
		var err error
		vectors, err = p.embedder.EmbedBatch(sc, contents)
		return err
	}); err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: %d vectors for %d chunks", len(vectors), len(chunks))
	}

	agentID := ""
	if doc.AgentID != nil {
		agentID = *doc.AgentID
	}
	records := make([]vectorstore.ChunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.ChunkRecord{
			ID:             uuid.New().String(),
			DocumentID:     doc.ID,
			OrganizationID: doc.OrganizationID,
			AgentID:        agentID,
			ChunkIndex:     c.Index,
			Content:        c.Content,
			TokenCount:     c.TokenCount,
			PageNumber:     c.PageNumber,
			Metadata:       c.Metadata,
			Embedding:      vectors[i],
		}
	}
	if err := p.step(ctx, func(sc context.Context) error {
		return p.vectors.Upsert(sc, records)
	}); err != nil {
		return fmt.Errorf("failed to persist chunks: %w", err)
	}

	now := time.Now()
	if err := p.documents.Update(ctx, doc.ID, map[string]interface{}{
		"status":           models.StatusProcessed,
		"chunk_count":      len(chunks),
		"processing_error": "",
		"processed_at":     &now,
	}); err != nil {
		return err
	}

	plog.WithPayload(map[string]interface{}{
		"documentId": doc.ID,
		"chunks":     len(chunks),
	}).Info("Document ingestion completed")
	return nil
}

// step runs one pipeline stage under the per-step timeout.
func (p *Processor) step(ctx context.Context, fn func(context.Context) error) error {
	sc, cancel := context.WithTimeout(ctx, p.stepTimeout)
	defer cancel()
	return fn(sc)
}

// markFailed records the failure on the document. The error text is stored
// verbatim so a reprocess decision can be made from the record alone.
func (p *Processor) markFailed(documentID string, cause error, plog *logger.Logger) {
	plog.Error(fmt.Sprintf("Document ingestion failed: %v", cause))
	err := p.documents.Update(context.Background(), documentID, map[string]interface{}{
		"status":           models.StatusFailed,
		"processing_error": cause.Error(),
	})
	if err != nil {
		plog.Error(fmt.Sprintf("Failed to record ingestion failure: %v", err))
	}
}
