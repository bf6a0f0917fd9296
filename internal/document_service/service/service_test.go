package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/atende-ai/atende/internal/blob"
	"github.com/atende-ai/atende/internal/document_service/store"
	"github.com/atende-ai/atende/internal/models"
	"github.com/atende-ai/atende/internal/queue"
	"github.com/atende-ai/atende/internal/vectorstore"
	"github.com/atende-ai/atende/pkg/logger"
)

type testService struct {
	svc     *Service
	docs    *store.MemoryDocumentStore
	blobs   *blob.MemoryStore
	queue   *queue.MemoryQueue
	vectors *vectorstore.MemoryStore
}

func newTestService(t *testing.T) *testService {
	t.Helper()
	docs := store.NewMemoryDocumentStore()
	orgs := store.NewMemoryOrganizationStore()
	orgs.Put(models.Organization{ID: "org-1", Name: "Acme", MaxDocuments: 3})
	blobs := blob.NewMemoryStore("documents")
	q := queue.NewMemoryQueue(16)
	vectors := vectorstore.NewMemoryStore()
	svc := NewService(docs, orgs, blobs, q, vectors, 0, logger.New("document_service_test", "", ""))
	return &testService{svc: svc, docs: docs, blobs: blobs, queue: q, vectors: vectors}
}

func drainOne(t *testing.T, q *queue.MemoryQueue) queue.Message {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var got queue.Message
	q.Consume(ctx, func(ctx context.Context, msg queue.Message) error {
		got = msg
		cancel()
		return nil
	})
	return got
}

func TestUploadHappyPath(t *testing.T) {
	f := newTestService(t)

	doc, err := f.svc.Upload(context.Background(), UploadInput{
		OrganizationID: "org-1",
		Filename:       "notes.txt",
		Data:           []byte("hello world"),
	})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if doc.Status != models.StatusUploaded {
		t.Errorf("expected status uploaded, got %s", doc.Status)
	}
	if doc.FileType != "txt" {
		t.Errorf("expected file type txt, got %s", doc.FileType)
	}
	wantKey := "org-1/documents/" + doc.ID + "/notes.txt"
	if doc.StorageKey != wantKey {
		t.Errorf("storage key = %q, want %q", doc.StorageKey, wantKey)
	}

	data, err := f.blobs.Get(context.Background(), f.blobs.Bucket(), doc.StorageKey)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if !bytes.Equal(data, []byte("hello world")) {
		t.Errorf("stored bytes differ from upload")
	}

	msg := drainOne(t, f.queue)
	if msg.DocumentID != doc.ID {
		t.Errorf("queued document id = %q, want %q", msg.DocumentID, doc.ID)
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	f := newTestService(t)

	_, err := f.svc.Upload(context.Background(), UploadInput{
		OrganizationID: "org-1",
		Filename:       "payload.exe",
		Data:           []byte("MZ"),
	})
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Errorf("expected ErrUnsupportedFileType, got %v", err)
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	docs := store.NewMemoryDocumentStore()
	orgs := store.NewMemoryOrganizationStore()
	orgs.Put(models.Organization{ID: "org-1", MaxDocuments: 10})
	svc := NewService(docs, orgs, blob.NewMemoryStore("documents"), queue.NewMemoryQueue(4), vectorstore.NewMemoryStore(), 16, logger.New("test", "", ""))

	_, err := svc.Upload(context.Background(), UploadInput{
		OrganizationID: "org-1",
		Filename:       "big.txt",
		Data:           []byte(strings.Repeat("x", 17)),
	})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestUploadEnforcesQuota(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Upload(ctx, UploadInput{
			OrganizationID: "org-1",
			Filename:       "doc.md",
			Data:           []byte("# heading"),
		})
		if err != nil {
			t.Fatalf("upload %d failed: %v", i, err)
		}
	}

	_, err := f.svc.Upload(ctx, UploadInput{
		OrganizationID: "org-1",
		Filename:       "one-too-many.md",
		Data:           []byte("# heading"),
	})
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	f := newTestService(t)

	_, err := f.svc.Upload(context.Background(), UploadInput{
		OrganizationID: "org-1",
		Filename:       "empty.txt",
		Data:           nil,
	})
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("expected ErrEmptyFile, got %v", err)
	}
}

func TestGetScopedToOrganization(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	doc, err := f.svc.Upload(ctx, UploadInput{
		OrganizationID: "org-1",
		Filename:       "scoped.txt",
		Data:           []byte("secret"),
	})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if _, err := f.svc.Get(ctx, doc.ID, "org-1"); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}
	if _, err := f.svc.Get(ctx, doc.ID, "org-2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cross-tenant lookup should report not found, got %v", err)
	}
}

func TestDeleteRemovesFileAndRecord(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	doc, err := f.svc.Upload(ctx, UploadInput{
		OrganizationID: "org-1",
		Filename:       "gone.txt",
		Data:           []byte("bye"),
	})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if err := f.svc.Delete(ctx, doc.ID, "org-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := f.svc.Get(ctx, doc.ID, "org-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("record should be gone, got %v", err)
	}
	if _, err := f.blobs.Get(ctx, f.blobs.Bucket(), doc.StorageKey); !errors.Is(err, blob.ErrNotFound) {
		t.Errorf("stored file should be gone, got %v", err)
	}
}

func TestDeleteRemovesSearchableChunks(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	doc, err := f.svc.Upload(ctx, UploadInput{
		OrganizationID: "org-1",
		Filename:       "policies.txt",
		Data:           []byte("confidential content"),
	})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	err = f.vectors.Upsert(ctx, []vectorstore.ChunkRecord{{
		ID:             "chunk-1",
		DocumentID:     doc.ID,
		OrganizationID: "org-1",
		ChunkIndex:     0,
		Content:        "confidential content",
		Embedding:      []float32{1, 0, 0},
	}})
	if err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}

	if err := f.svc.Delete(ctx, doc.ID, "org-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	results, err := f.vectors.Search(ctx, []float32{1, 0, 0}, vectorstore.SearchOptions{OrganizationID: "org-1"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("deleted document's chunks must not be searchable, got %d result(s)", len(results))
	}
	if n := f.vectors.Count(doc.ID); n != 0 {
		t.Errorf("expected chunk records gone, got %d", n)
	}
}

func TestReprocessResetsStatusAndEnqueues(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	doc, err := f.svc.Upload(ctx, UploadInput{
		OrganizationID: "org-1",
		Filename:       "retry.txt",
		Data:           []byte("content"),
	})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	drainOne(t, f.queue)

	f.docs.Update(ctx, doc.ID, map[string]interface{}{
		"status":           models.StatusFailed,
		"processing_error": "embedding provider not configured",
	})

	updated, err := f.svc.Reprocess(ctx, doc.ID, "org-1")
	if err != nil {
		t.Fatalf("Reprocess returned error: %v", err)
	}
	if updated.Status != models.StatusUploaded {
		t.Errorf("status = %s, want uploaded", updated.Status)
	}
	if updated.ProcessingError != "" {
		t.Errorf("processing error should be cleared, got %q", updated.ProcessingError)
	}
	if updated.Version != doc.Version+1 {
		t.Errorf("version = %d, want %d", updated.Version, doc.Version+1)
	}

	msg := drainOne(t, f.queue)
	if msg.DocumentID != doc.ID {
		t.Errorf("expected document re-enqueued, got %q", msg.DocumentID)
	}
}

func TestReprocessRejectsInFlightDocument(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	doc, _ := f.svc.Upload(ctx, UploadInput{
		OrganizationID: "org-1",
		Filename:       "busy.txt",
		Data:           []byte("content"),
	})
	drainOne(t, f.queue)
	f.docs.Update(ctx, doc.ID, map[string]interface{}{"status": models.StatusProcessing})

	if _, err := f.svc.Reprocess(ctx, doc.ID, "org-1"); err == nil {
		t.Error("reprocessing an in-flight document should fail")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"plain.txt":          "plain.txt",
		"../../etc/passwd":   "passwd",
		"with\x00control.md": "withcontrol.md",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
