// Package store persists documents, agents and organizations for the
// document and RAG services.
package store

import (
	"context"
	"errors"

	"github.com/atende-ai/atende/internal/models"
)

// ErrNotFound is returned when a record does not exist or belongs to
// another organization.
var ErrNotFound = errors.New("record not found")

// DocumentStore persists document records.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	FindByID(ctx context.Context, id string) (*models.Document, error)
	// FindByIDForOrganization looks a document up within one tenant;
	// documents of other organizations report ErrNotFound.
	FindByIDForOrganization(ctx context.Context, id, organizationID string) (*models.Document, error)
	FindByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]models.Document, int64, error)
	CountByOrganization(ctx context.Context, organizationID string) (int64, error)
	// Update applies a partial column update to one document.
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	// CountChunks reports how many chunk rows a document currently has.
	CountChunks(ctx context.Context, documentID string) (int64, error)
	// FindNamesByIDs maps document ids to their original filenames.
	FindNamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

// AgentStore reads agent configuration.
type AgentStore interface {
	FindByIDForOrganization(ctx context.Context, id, organizationID string) (*models.Agent, error)
}

// OrganizationStore reads organization quotas.
type OrganizationStore interface {
	FindByID(ctx context.Context, id string) (*models.Organization, error)
}
