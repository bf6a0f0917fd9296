// Package service implements document lifecycle management: upload,
// listing, deletion and reprocessing.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/atende-ai/atende/internal/blob"
	"github.com/atende-ai/atende/internal/document_service/store"
	"github.com/atende-ai/atende/internal/models"
	"github.com/atende-ai/atende/internal/queue"
	"github.com/atende-ai/atende/internal/vectorstore"
	"github.com/atende-ai/atende/pkg/logger"
)

// Validation failures surfaced to API callers as 4xx responses.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds the maximum allowed size")
	ErrQuotaExceeded       = errors.New("organization document quota exceeded")
	ErrEmptyFile           = errors.New("file is empty")
)

// DefaultMaxFileSize caps uploads at 50MB unless configured otherwise.
const DefaultMaxFileSize = 50 * 1024 * 1024

// allowedFileTypes maps the accepted extensions to their canonical type.
var allowedFileTypes = map[string]string{
	".pdf":  "pdf",
	".docx": "docx",
	".md":   "md",
	".txt":  "txt",
	".png":  "png",
	".jpg":  "jpg",
	".jpeg": "jpeg",
}

// Service coordinates document persistence, blob storage, the vector store
// and the ingestion queue.
type Service struct {
	documents     store.DocumentStore
	organizations store.OrganizationStore
	blobs         blob.Store
	queue         queue.Queue
	vectors       vectorstore.Store
	maxFileSize   int64
	log           *logger.Logger
}

// NewService creates a document service. maxFileSize of 0 selects the default.
func NewService(documents store.DocumentStore, organizations store.OrganizationStore, blobs blob.Store, q queue.Queue, vectors vectorstore.Store, maxFileSize int64, log *logger.Logger) *Service {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Service{
		documents:     documents,
		organizations: organizations,
		blobs:         blobs,
		queue:         q,
		vectors:       vectors,
		maxFileSize:   maxFileSize,
		log:           log,
	}
}

// UploadInput carries one uploaded file and its tenant context.
type UploadInput struct {
	OrganizationID string
	AgentID        string
	Filename       string
	Data           []byte
}

// Upload validates the file, persists it to blob storage and the database,
// and enqueues it for asynchronous ingestion. The returned document is in
// status "uploaded"; processing happens in the background.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*models.Document, error) {
	if len(in.Data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(in.Data)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, len(in.Data), s.maxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(in.Filename))
	fileType, ok := allowedFileTypes[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}

	org, err := s.organizations.FindByID(ctx, in.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}
	count, err := s.documents.CountByOrganization(ctx, in.OrganizationID)
	if err != nil {
		return nil, err
	}
	if org.MaxDocuments > 0 && count >= int64(org.MaxDocuments) {
		return nil, fmt.Errorf("%w: %d of %d documents used", ErrQuotaExceeded, count, org.MaxDocuments)
	}

	docID := uuid.New().String()
	safeName := sanitizeFilename(in.Filename)
	doc := &models.Document{
		ID:               docID,
		OrganizationID:   in.OrganizationID,
		Filename:         safeName,
		OriginalFilename: in.Filename,
		FileType:         fileType,
		FileSize:         int64(len(in.Data)),
		MimeType:         mimetype.Detect(in.Data).String(),
		StorageBucket:    s.blobs.Bucket(),
		Status:           models.StatusUploaded,
		Version:          1,
	}
	if in.AgentID != "" {
		doc.AgentID = &in.AgentID
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/documents/%s/%s", in.OrganizationID, docID, safeName)
	if _, err := s.blobs.Put(ctx, key, in.Data, doc.MimeType, map[string]string{
		"organization-id": in.OrganizationID,
		"document-id":     docID,
	}); err != nil {
		// roll back the record so the quota is not consumed by a ghost
		if delErr := s.documents.Delete(ctx, docID); delErr != nil {
			s.log.Error(fmt.Sprintf("Failed to remove document %s after storage failure: %v", docID, delErr))
		}
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	if err := s.documents.Update(ctx, docID, map[string]interface{}{"storage_key": key}); err != nil {
		return nil, err
	}
	doc.StorageKey = key

	if err := s.queue.Enqueue(ctx, queue.Message{DocumentID: docID}); err != nil {
		s.log.WithPayload(map[string]interface{}{"documentId": docID}).
			Error(fmt.Sprintf("Failed to enqueue document for processing: %v", err))
		return nil, fmt.Errorf("failed to enqueue document: %w", err)
	}

	s.log.WithPayload(map[string]interface{}{
		"documentId": docID,
		"fileType":   fileType,
		"fileSize":   doc.FileSize,
	}).Info("Document uploaded and queued for processing")
	return doc, nil
}

// List returns one page of an organization's documents, newest first.
func (s *Service) List(ctx context.Context, organizationID string, limit, offset int) ([]models.Document, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.documents.FindByOrganization(ctx, organizationID, limit, offset)
}

// Get returns one document scoped to the organization.
func (s *Service) Get(ctx context.Context, id, organizationID string) (*models.Document, error) {
	return s.documents.FindByIDForOrganization(ctx, id, organizationID)
}

// Delete removes a document together with its stored file and every chunk
// derived from it. The chunks go first so a deleted document can never keep
// answering similarity queries; the record goes last so a partial failure
// leaves the document visible for a retry.
func (s *Service) Delete(ctx context.Context, id, organizationID string) error {
	doc, err := s.documents.FindByIDForOrganization(ctx, id, organizationID)
	if err != nil {
		return err
	}

	if err := s.vectors.DeleteByDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document chunks: %w", err)
	}
	if doc.StorageKey != "" {
		if err := s.blobs.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, blob.ErrNotFound) {
			return fmt.Errorf("failed to delete stored file: %w", err)
		}
	}
	return s.documents.Delete(ctx, id)
}

// Reprocess re-enqueues a document for ingestion. Used after failures and
// after pipeline changes; the pipeline replaces existing chunks in place.
func (s *Service) Reprocess(ctx context.Context, id, organizationID string) (*models.Document, error) {
	doc, err := s.documents.FindByIDForOrganization(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}
	if doc.Status == models.StatusProcessing {
		return nil, fmt.Errorf("document %s is already being processed", id)
	}

	fields := map[string]interface{}{
		"status":           models.StatusUploaded,
		"processing_error": "",
		"version":          doc.Version + 1,
	}
	if err := s.documents.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	if err := s.queue.Enqueue(ctx, queue.Message{DocumentID: id}); err != nil {
		return nil, fmt.Errorf("failed to enqueue document: %w", err)
	}

	doc.Status = models.StatusUploaded
	doc.ProcessingError = ""
	doc.Version++
	return doc, nil
}

// sanitizeFilename strips path separators and control characters so the
// storage key stays a flat, predictable path.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7F:
			continue
		case r == '/' || r == '\\':
			sb.WriteByte('_')
		default:
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "upload"
	}
	return sb.String()
}
