package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/atende-ai/atende/internal/models"
)

// GormAgentStore is the Postgres-backed AgentStore.
type GormAgentStore struct {
	db *gorm.DB
}

// NewGormAgentStore creates an agent store over the given connection.
func NewGormAgentStore(db *gorm.DB) *GormAgentStore {
	return &GormAgentStore{db: db}
}

func (s *GormAgentStore) FindByIDForOrganization(ctx context.Context, id, organizationID string) (*models.Agent, error) {
	var agent models.Agent
	err := s.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find agent %s: %w", id, err)
	}
	return &agent, nil
}

var _ AgentStore = (*GormAgentStore)(nil)

// GormOrganizationStore is the Postgres-backed OrganizationStore.
type GormOrganizationStore struct {
	db *gorm.DB
}

// NewGormOrganizationStore creates an organization store over the given connection.
func NewGormOrganizationStore(db *gorm.DB) *GormOrganizationStore {
	return &GormOrganizationStore{db: db}
}

func (s *GormOrganizationStore) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	var org models.Organization
	err := s.db.WithContext(ctx).First(&org, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find organization %s: %w", id, err)
	}
	return &org, nil
}

var _ OrganizationStore = (*GormOrganizationStore)(nil)
