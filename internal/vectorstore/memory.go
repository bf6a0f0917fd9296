package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

type memoryRecord struct {
	ChunkRecord
	cleared bool
}

// MemoryStore is an in-process Store used in tests and local development.
// It computes exact cosine similarity over all stored vectors.
type MemoryStore struct {
	mu sync.RWMutex
	// keyed by documentID + chunkIndex so upserts replace in place
	records map[string]*memoryRecord
}

// NewMemoryStore creates an empty in-memory vector store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*memoryRecord)}
}

func upsertKey(documentID string, chunkIndex int) string {
	return fmt.Sprintf("%s#%d", documentID, chunkIndex)
}

// Upsert stores records, replacing any with the same document and chunk index.
func (s *MemoryStore) Upsert(ctx context.Context, records []ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		stored := r
		stored.Embedding = append([]float32(nil), r.Embedding...)
		s.records[upsertKey(r.DocumentID, r.ChunkIndex)] = &memoryRecord{ChunkRecord: stored}
	}
	return nil
}

// Search scans every stored vector and returns the topK cosine matches
// within the organization, at or above the score floor.
func (s *MemoryStore) Search(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error) {
	opts = opts.withDefaults()

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Scan in key order so equal scores always tie-break the same way.
	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var results []SearchResult
	for _, key := range keys {
		rec := s.records[key]
		if rec.cleared {
			continue
		}
		if rec.OrganizationID != opts.OrganizationID {
			continue
		}
		if opts.AgentID != "" && rec.AgentID != opts.AgentID {
			continue
		}
		score := CosineSimilarity(query, rec.Embedding)
		if score < opts.MinScore {
			continue
		}
		results = append(results, SearchResult{
			ChunkID:    rec.ID,
			DocumentID: rec.DocumentID,
			ChunkIndex: rec.ChunkIndex,
			Content:    rec.Content,
			Score:      score,
			Metadata:   rec.Metadata,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > opts.TopK {
		results = results[:opts.TopK]
	}
	return results, nil
}

// DeleteByDocument removes every record belonging to a document.
func (s *MemoryStore) DeleteByDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, rec := range s.records {
		if rec.DocumentID == documentID {
			delete(s.records, key)
		}
	}
	return nil
}

// ClearEmbeddings marks a document's records as having no vector. The
// records stay present but never match a search.
func (s *MemoryStore) ClearEmbeddings(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.DocumentID == documentID {
			rec.cleared = true
			rec.Embedding = nil
		}
	}
	return nil
}

// Count returns the number of stored records for a document, cleared or not.
func (s *MemoryStore) Count(documentID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rec := range s.records {
		if rec.DocumentID == documentID {
			n++
		}
	}
	return n
}

// CosineSimilarity returns the cosine of the angle between two vectors,
// or 0 when either vector has zero magnitude or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ Store = (*MemoryStore)(nil)
