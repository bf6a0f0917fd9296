package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/atende-ai/atende/internal/document_service/store"
	"github.com/atende-ai/atende/internal/llm"
	"github.com/atende-ai/atende/internal/models"
	"github.com/atende-ai/atende/internal/vectorstore"
	"github.com/atende-ai/atende/pkg/logger"
)

// fixedEmbedder returns the same vector for every text.
type fixedEmbedder struct {
	vector []float32
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector, nil
}

func (f *fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

// recordingLLM captures the request and returns a canned answer.
type recordingLLM struct {
	lastRequest llm.Request
	answer      string
}

func (r *recordingLLM) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	r.lastRequest = req
	return &llm.Response{Content: r.answer, TokensUsed: 42, Model: req.Model}, nil
}

type ragFixture struct {
	svc     *Service
	vectors *vectorstore.MemoryStore
	docs    *store.MemoryDocumentStore
	agents  *store.MemoryAgentStore
	llm     *recordingLLM
}

func newRAGFixture(t *testing.T) *ragFixture {
	t.Helper()
	vectors := vectorstore.NewMemoryStore()
	docs := store.NewMemoryDocumentStore()
	agents := store.NewMemoryAgentStore()
	model := &recordingLLM{answer: "The answer is 42."}
	svc := NewService(
		&fixedEmbedder{vector: []float32{1, 0, 0}},
		vectors, docs, agents, model,
		logger.New("rag_service_test", "", ""),
	)
	return &ragFixture{svc: svc, vectors: vectors, docs: docs, agents: agents, llm: model}
}

func (f *ragFixture) seedChunk(t *testing.T, chunkID, docID, org string, vec []float32, content string) {
	t.Helper()
	f.docs.Create(context.Background(), &models.Document{
		ID:               docID,
		OrganizationID:   org,
		OriginalFilename: docID + ".txt",
	})
	err := f.vectors.Upsert(context.Background(), []vectorstore.ChunkRecord{{
		ID:             chunkID,
		DocumentID:     docID,
		OrganizationID: org,
		ChunkIndex:     0,
		Content:        content,
		Embedding:      vec,
	}})
	if err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}
}

func TestQueryReturnsGroundedAnswerWithSources(t *testing.T) {
	f := newRAGFixture(t)
	f.seedChunk(t, "c1", "doc-1", "org-1", []float32{1, 0, 0}, "The refund policy allows returns within 30 days.")

	result, err := f.svc.Query(context.Background(), QueryInput{
		OrganizationID: "org-1",
		Question:       "What is the refund policy?",
	})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}

	if result.Answer != "The answer is 42." {
		t.Errorf("unexpected answer: %q", result.Answer)
	}
	if result.QueryID == "" {
		t.Error("query id should be set")
	}
	if len(result.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(result.Sources))
	}
	src := result.Sources[0]
	if src.DocumentID != "doc-1" || src.DocumentName != "doc-1.txt" || src.ChunkID != "c1" {
		t.Errorf("unexpected source: %+v", src)
	}

	if !strings.Contains(f.llm.lastRequest.UserPrompt, "[Source 1: doc-1.txt]") {
		t.Errorf("prompt missing source header: %q", f.llm.lastRequest.UserPrompt)
	}
	if !strings.Contains(f.llm.lastRequest.UserPrompt, "refund policy allows returns") {
		t.Errorf("prompt missing chunk content")
	}
	if f.llm.lastRequest.Model != DefaultModel {
		t.Errorf("model = %q, want default %q", f.llm.lastRequest.Model, DefaultModel)
	}
}

func TestQueryNoResultsSkipsLLM(t *testing.T) {
	f := newRAGFixture(t)
	sentinel := &recordingLLM{answer: "should never be used"}
	f.llm = sentinel
	f.svc.llm = sentinel

	result, err := f.svc.Query(context.Background(), QueryInput{
		OrganizationID: "org-1",
		Question:       "Anything at all?",
	})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}

	if result.Answer != NoResultsAnswer {
		t.Errorf("expected the no-results answer, got %q", result.Answer)
	}
	if len(result.Sources) != 0 {
		t.Errorf("expected no sources, got %d", len(result.Sources))
	}
	if result.Model != DefaultModel {
		t.Errorf("model = %q, want default %q", result.Model, DefaultModel)
	}
	if sentinel.lastRequest.UserPrompt != "" {
		t.Error("LLM should not be called when retrieval is empty")
	}
}

func TestQuerySourcesCarryChunkIndex(t *testing.T) {
	f := newRAGFixture(t)
	f.docs.Create(context.Background(), &models.Document{
		ID:               "doc-1",
		OrganizationID:   "org-1",
		OriginalFilename: "doc-1.txt",
	})
	err := f.vectors.Upsert(context.Background(), []vectorstore.ChunkRecord{{
		ID:             "c7",
		DocumentID:     "doc-1",
		OrganizationID: "org-1",
		ChunkIndex:     7,
		Content:        "The seventh chunk.",
		Embedding:      []float32{1, 0, 0},
	}})
	if err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}

	result, err := f.svc.Query(context.Background(), QueryInput{
		OrganizationID: "org-1",
		Question:       "Which chunk?",
	})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(result.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(result.Sources))
	}
	if result.Sources[0].ChunkIndex != 7 {
		t.Errorf("chunk index = %d, want 7", result.Sources[0].ChunkIndex)
	}
}

func TestQueryScopedToOrganization(t *testing.T) {
	f := newRAGFixture(t)
	f.seedChunk(t, "c-other", "doc-other", "org-2", []float32{1, 0, 0}, "Another tenant's secret.")

	result, err := f.svc.Query(context.Background(), QueryInput{
		OrganizationID: "org-1",
		Question:       "What is the secret?",
	})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if result.Answer != NoResultsAnswer {
		t.Errorf("query must not see other organizations' chunks, got %q", result.Answer)
	}
}

func TestQueryAgentOverridesGeneration(t *testing.T) {
	f := newRAGFixture(t)
	f.seedChunk(t, "c1", "doc-1", "org-1", []float32{1, 0, 0}, "Relevant content.")
	f.agents.Put(models.Agent{
		ID:             "agent-1",
		OrganizationID: "org-1",
		SystemPrompt:   "Answer like a pirate.",
		LLMModel:       "gpt-4o-mini",
		Temperature:    0.2,
		MaxTokens:      256,
	})

	_, err := f.svc.Query(context.Background(), QueryInput{
		OrganizationID: "org-1",
		AgentID:        "agent-1",
		Question:       "Say something.",
	})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}

	req := f.llm.lastRequest
	if req.SystemPrompt != "Answer like a pirate." {
		t.Errorf("system prompt not overridden: %q", req.SystemPrompt)
	}
	if req.Model != "gpt-4o-mini" || req.Temperature != 0.2 || req.MaxTokens != 256 {
		t.Errorf("generation parameters not overridden: %+v", req)
	}
}

func TestQueryAgentLookupFailureIsSoft(t *testing.T) {
	f := newRAGFixture(t)
	f.seedChunk(t, "c1", "doc-1", "org-1", []float32{1, 0, 0}, "Relevant content.")
	f.agents.Fail(errors.New("database is down"))

	result, err := f.svc.Query(context.Background(), QueryInput{
		OrganizationID: "org-1",
		AgentID:        "agent-1",
		Question:       "Still works?",
	})
	if err != nil {
		t.Fatalf("agent lookup failure must not fail the query: %v", err)
	}
	if result.Answer == "" {
		t.Error("expected an answer despite agent failure")
	}
	if f.llm.lastRequest.SystemPrompt != DefaultSystemPrompt {
		t.Errorf("expected default system prompt, got %q", f.llm.lastRequest.SystemPrompt)
	}
}

func TestQueryRejectsEmptyQuestion(t *testing.T) {
	f := newRAGFixture(t)
	if _, err := f.svc.Query(context.Background(), QueryInput{
		OrganizationID: "org-1",
		Question:       "   ",
	}); err == nil {
		t.Error("blank question should be rejected")
	}
}

func TestExcerptTruncation(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := excerpt(long)
	if len([]rune(got)) != sourceExcerptLength+3 {
		t.Errorf("excerpt length = %d, want %d", len([]rune(got)), sourceExcerptLength+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("long excerpt should end with ellipsis")
	}

	short := "short content"
	if excerpt(short) != short {
		t.Error("short content should pass through unchanged")
	}
}
