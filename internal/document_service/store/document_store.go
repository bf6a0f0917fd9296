package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/atende-ai/atende/internal/models"
)

// GormDocumentStore is the Postgres-backed DocumentStore.
type GormDocumentStore struct {
	db *gorm.DB
}

// NewGormDocumentStore creates a document store over the given connection.
func NewGormDocumentStore(db *gorm.DB) *GormDocumentStore {
	return &GormDocumentStore{db: db}
}

func (s *GormDocumentStore) Create(ctx context.Context, doc *models.Document) error {
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (s *GormDocumentStore) FindByID(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find document %s: %w", id, err)
	}
	return &doc, nil
}

func (s *GormDocumentStore) FindByIDForOrganization(ctx context.Context, id, organizationID string) (*models.Document, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find document %s: %w", id, err)
	}
	return &doc, nil
}

func (s *GormDocumentStore) FindByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]models.Document, int64, error) {
	var total int64
	base := s.db.WithContext(ctx).Model(&models.Document{}).
		Where("organization_id = ?", organizationID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	var docs []models.Document
	err := s.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&docs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, total, nil
}

func (s *GormDocumentStore) CountByOrganization(ctx context.Context, organizationID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Document{}).
		Where("organization_id = ?", organizationID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

func (s *GormDocumentStore) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&models.Document{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update document %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormDocumentStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Document{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormDocumentStore) CountChunks(ctx context.Context, documentID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.DocumentChunk{}).
		Where("document_id = ?", documentID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

func (s *GormDocumentStore) FindNamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	var docs []models.Document
	err := s.db.WithContext(ctx).
		Select("id", "original_filename").
		Where("id IN ?", ids).
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load document names: %w", err)
	}
	names := make(map[string]string, len(docs))
	for _, d := range docs {
		names[d.ID] = d.OriginalFilename
	}
	return names, nil
}

var _ DocumentStore = (*GormDocumentStore)(nil)
