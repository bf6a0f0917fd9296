// Package vectorstore persists chunk embeddings and serves tenant-scoped
// similarity search over them.
package vectorstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ChunkRecord is one chunk with its embedding, ready to be persisted.
type ChunkRecord struct {
	ID             string
	DocumentID     string
	OrganizationID string
	AgentID        string
	ChunkIndex     int
	Content        string
	TokenCount     int
	PageNumber     *int
	Metadata       map[string]interface{}
	Embedding      []float32
}

// SearchOptions scope and tune a similarity query. OrganizationID is
// mandatory; every search is confined to one tenant.
type SearchOptions struct {
	OrganizationID string
	AgentID        string
	TopK           int
	MinScore       float64
}

const (
	// DefaultTopK is the number of results returned when TopK is unset.
	DefaultTopK = 5
	// DefaultMinScore is the similarity floor applied when MinScore is unset.
	DefaultMinScore = 0.7
)

func (o SearchOptions) withDefaults() SearchOptions {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.MinScore <= 0 {
		o.MinScore = DefaultMinScore
	}
	return o
}

// SearchResult is one similarity hit, ordered by descending score.
type SearchResult struct {
	ChunkID    string                 `json:"chunkId"`
	DocumentID string                 `json:"documentId"`
	ChunkIndex int                    `json:"chunkIndex"`
	Content    string                 `json:"content"`
	Score      float64                `json:"score"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Store persists embeddings and answers similarity queries.
type Store interface {
	// Upsert writes chunk records, replacing any existing row with the
	// same document and chunk index.
	Upsert(ctx context.Context, records []ChunkRecord) error

	// Search returns the most similar chunks within one organization,
	// ordered by descending cosine similarity.
	Search(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error)

	// DeleteByDocument removes every chunk belonging to a document.
	DeleteByDocument(ctx context.Context, documentID string) error

	// ClearEmbeddings nulls out the vectors for a document's chunks while
	// keeping the chunk rows and their text.
	ClearEmbeddings(ctx context.Context, documentID string) error
}

// EncodeVector renders a float32 vector in the pgvector text format,
// e.g. "[0.1,0.2,0.3]".
func EncodeVector(v []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

// DecodeVector parses the pgvector text format back into a float32 vector.
func DecodeVector(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("malformed vector literal: %q", s)
	}
	body := s[1 : len(s)-1]
	if body == "" {
		return []float32{}, nil
	}
	parts := strings.Split(body, ",")
	v := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("malformed vector component %d: %w", i, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}
