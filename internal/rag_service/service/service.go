// Package service implements retrieval augmented generation: embed the
// question, search the vector store within the caller's organization, and
// generate a grounded answer from the retrieved chunks.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atende-ai/atende/internal/document_service/store"
	"github.com/atende-ai/atende/internal/embedding"
	"github.com/atende-ai/atende/internal/llm"
	"github.com/atende-ai/atende/internal/models"
	"github.com/atende-ai/atende/internal/vectorstore"
	"github.com/atende-ai/atende/pkg/logger"
)

// DefaultSystemPrompt instructs the model to answer only from the supplied
// context. Agents can override it with their own prompt.
const DefaultSystemPrompt = "You are a helpful assistant. Answer the question using ONLY the provided context. " +
	"If the context does not contain the answer, say you don't know. Do not invent information."

// NoResultsAnswer is returned without calling the model when retrieval
// finds nothing above the similarity floor.
const NoResultsAnswer = "I could not find any relevant information in the knowledge base to answer your question."

const sourceExcerptLength = 200

// Defaults applied when a request does not specify generation parameters
// and no agent overrides them.
const (
	DefaultModel       = "gpt-4o"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// QueryInput is one RAG question with its tenant context.
type QueryInput struct {
	OrganizationID string
	AgentID        string
	Question       string
	TopK           int
	MinScore       float64
}

// Source cites one retrieved chunk that backed the answer.
type Source struct {
	DocumentID   string  `json:"documentId"`
	DocumentName string  `json:"documentName"`
	ChunkID      string  `json:"chunkId"`
	ChunkIndex   int     `json:"chunkIndex"`
	Excerpt      string  `json:"excerpt"`
	Score        float64 `json:"score"`
}

// QueryResult is the generated answer with its citations and timing.
type QueryResult struct {
	QueryID    string   `json:"queryId"`
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources"`
	TokensUsed int      `json:"tokensUsed"`
	Model      string   `json:"model"`
	ElapsedMs  int64    `json:"elapsedMs"`
}

// Service wires the embedding model, vector store, document names and the
// LLM into the query pipeline.
type Service struct {
	embedder  embedding.Model
	vectors   vectorstore.Store
	documents store.DocumentStore
	agents    store.AgentStore
	llm       llm.LLM
	log       *logger.Logger
}

// NewService creates a RAG service.
func NewService(embedder embedding.Model, vectors vectorstore.Store, documents store.DocumentStore, agents store.AgentStore, model llm.LLM, log *logger.Logger) *Service {
	return &Service{
		embedder:  embedder,
		vectors:   vectors,
		documents: documents,
		agents:    agents,
		llm:       model,
		log:       log,
	}
}

// Query answers a question from the organization's ingested documents.
// Agent resolution is the only soft failure: a missing or broken agent
// lookup falls back to the defaults instead of failing the query.
func (s *Service) Query(ctx context.Context, in QueryInput) (*QueryResult, error) {
	started := time.Now()
	queryID := uuid.New().String()
	qlog := s.log.WithPayload(map[string]interface{}{
		"queryId":        queryID,
		"organizationId": in.OrganizationID,
	})

	if strings.TrimSpace(in.Question) == "" {
		return nil, fmt.Errorf("question must not be empty")
	}
	if in.OrganizationID == "" {
		return nil, fmt.Errorf("organization id is required")
	}

	agent := s.resolveAgent(ctx, in, qlog)
	model := DefaultModel
	if agent != nil && agent.LLMModel != "" {
		model = agent.LLMModel
	}

	queryVector, err := s.embedder.Embed(ctx, in.Question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	hits, err := s.vectors.Search(ctx, queryVector, vectorstore.SearchOptions{
		OrganizationID: in.OrganizationID,
		AgentID:        in.AgentID,
		TopK:           in.TopK,
		MinScore:       in.MinScore,
	})
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	if len(hits) == 0 {
		qlog.Info("No relevant chunks found for query")
		return &QueryResult{
			QueryID:   queryID,
			Answer:    NoResultsAnswer,
			Sources:   []Source{},
			Model:     model,
			ElapsedMs: time.Since(started).Milliseconds(),
		}, nil
	}

	docIDs := make([]string, 0, len(hits))
	seen := make(map[string]bool, len(hits))
	for _, hit := range hits {
		if !seen[hit.DocumentID] {
			seen[hit.DocumentID] = true
			docIDs = append(docIDs, hit.DocumentID)
		}
	}
	names, err := s.documents.FindNamesByIDs(ctx, docIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source documents: %w", err)
	}

	contextBlock := buildContext(hits, names)
	req := llm.Request{
		SystemPrompt: DefaultSystemPrompt,
		UserPrompt:   fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock, in.Question),
		Model:        model,
		Temperature:  DefaultTemperature,
		MaxTokens:    DefaultMaxTokens,
	}
	if agent != nil {
		if agent.SystemPrompt != "" {
			req.SystemPrompt = agent.SystemPrompt
		}
		req.Temperature = agent.Temperature
		if agent.MaxTokens > 0 {
			req.MaxTokens = agent.MaxTokens
		}
	}

	resp, err := s.llm.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}

	sources := make([]Source, len(hits))
	for i, hit := range hits {
		sources[i] = Source{
			DocumentID:   hit.DocumentID,
			DocumentName: names[hit.DocumentID],
			ChunkID:      hit.ChunkID,
			ChunkIndex:   hit.ChunkIndex,
			Excerpt:      excerpt(hit.Content),
			Score:        hit.Score,
		}
	}

	result := &QueryResult{
		QueryID:    queryID,
		Answer:     resp.Content,
		Sources:    sources,
		TokensUsed: resp.TokensUsed,
		Model:      resp.Model,
		ElapsedMs:  time.Since(started).Milliseconds(),
	}
	qlog.WithPayload(map[string]interface{}{
		"queryId":   queryID,
		"sources":   len(sources),
		"elapsedMs": result.ElapsedMs,
	}).Info("Query answered")
	return result, nil
}

func (s *Service) resolveAgent(ctx context.Context, in QueryInput, qlog *logger.Logger) *models.Agent {
	if in.AgentID == "" {
		return nil
	}
	agent, err := s.agents.FindByIDForOrganization(ctx, in.AgentID, in.OrganizationID)
	if err != nil {
		qlog.Warn(fmt.Sprintf("Agent %s could not be resolved, using defaults: %v", in.AgentID, err))
		return nil
	}
	return agent
}

// buildContext renders retrieved chunks as numbered, named source blocks.
func buildContext(hits []vectorstore.SearchResult, names map[string]string) string {
	blocks := make([]string, len(hits))
	for i, hit := range hits {
		name := names[hit.DocumentID]
		if name == "" {
			name = "unknown"
		}
		blocks[i] = fmt.Sprintf("[Source %d: %s]\n%s", i+1, name, hit.Content)
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= sourceExcerptLength {
		return content
	}
	return string(runes[:sourceExcerptLength]) + "..."
}
