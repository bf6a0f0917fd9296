package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/atende-ai/atende/internal/models"
)

// MemoryDocumentStore is an in-process DocumentStore used in tests.
type MemoryDocumentStore struct {
	mu     sync.RWMutex
	docs   map[string]models.Document
	chunks map[string]int64
}

// NewMemoryDocumentStore creates an empty in-memory document store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		docs:   make(map[string]models.Document),
		chunks: make(map[string]int64),
	}
}

func (s *MemoryDocumentStore) Create(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	s.docs[doc.ID] = *doc
	return nil
}

func (s *MemoryDocumentStore) FindByID(ctx context.Context, id string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (s *MemoryDocumentStore) FindByIDForOrganization(ctx context.Context, id, organizationID string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok || doc.OrganizationID != organizationID {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (s *MemoryDocumentStore) FindByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]models.Document, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []models.Document
	for _, doc := range s.docs {
		if doc.OrganizationID == organizationID {
			all = append(all, doc)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (s *MemoryDocumentStore) CountByOrganization(ctx context.Context, organizationID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, doc := range s.docs {
		if doc.OrganizationID == organizationID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryDocumentStore) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return ErrNotFound
	}
	for key, value := range fields {
		switch key {
		case "status":
			if v, ok := value.(models.DocumentStatus); ok {
				doc.Status = v
			} else if v, ok := value.(string); ok {
				doc.Status = models.DocumentStatus(v)
			}
		case "storage_key":
			doc.StorageKey, _ = value.(string)
		case "processing_error":
			doc.ProcessingError, _ = value.(string)
		case "chunk_count":
			switch v := value.(type) {
			case int:
				doc.ChunkCount = v
			case int64:
				doc.ChunkCount = int(v)
			}
		case "version":
			switch v := value.(type) {
			case int:
				doc.Version = v
			case int64:
				doc.Version = int(v)
			}
		case "processed_at":
			if v, ok := value.(*time.Time); ok {
				doc.ProcessedAt = v
			} else if v, ok := value.(time.Time); ok {
				doc.ProcessedAt = &v
			}
		case "metadata":
			if v, ok := value.(datatypes.JSONMap); ok {
				doc.Metadata = v
			} else if v, ok := value.(map[string]interface{}); ok {
				doc.Metadata = datatypes.JSONMap(v)
			}
		}
	}
	doc.UpdatedAt = time.Now()
	s.docs[id] = doc
	return nil
}

func (s *MemoryDocumentStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	delete(s.chunks, id)
	return nil
}

func (s *MemoryDocumentStore) CountChunks(ctx context.Context, documentID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunks[documentID], nil
}

// SetChunkCount fixes the chunk row count reported for a document.
func (s *MemoryDocumentStore) SetChunkCount(documentID string, count int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[documentID] = count
}

func (s *MemoryDocumentStore) FindNamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if doc, ok := s.docs[id]; ok {
			names[id] = doc.OriginalFilename
		}
	}
	return names, nil
}

var _ DocumentStore = (*MemoryDocumentStore)(nil)

// MemoryAgentStore is an in-process AgentStore used in tests.
type MemoryAgentStore struct {
	mu     sync.RWMutex
	agents map[string]models.Agent
	err    error
}

// NewMemoryAgentStore creates an empty in-memory agent store.
func NewMemoryAgentStore() *MemoryAgentStore {
	return &MemoryAgentStore{agents: make(map[string]models.Agent)}
}

// Put stores an agent.
func (s *MemoryAgentStore) Put(agent models.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[agent.ID] = agent
}

// Fail makes every lookup return the given error.
func (s *MemoryAgentStore) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *MemoryAgentStore) FindByIDForOrganization(ctx context.Context, id, organizationID string) (*models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	agent, ok := s.agents[id]
	if !ok || agent.OrganizationID != organizationID {
		return nil, ErrNotFound
	}
	return &agent, nil
}

var _ AgentStore = (*MemoryAgentStore)(nil)

// MemoryOrganizationStore is an in-process OrganizationStore used in tests.
type MemoryOrganizationStore struct {
	mu   sync.RWMutex
	orgs map[string]models.Organization
}

// NewMemoryOrganizationStore creates an empty in-memory organization store.
func NewMemoryOrganizationStore() *MemoryOrganizationStore {
	return &MemoryOrganizationStore{orgs: make(map[string]models.Organization)}
}

// Put stores an organization.
func (s *MemoryOrganizationStore) Put(org models.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[org.ID] = org
}

func (s *MemoryOrganizationStore) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.orgs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &org, nil
}

var _ OrganizationStore = (*MemoryOrganizationStore)(nil)
