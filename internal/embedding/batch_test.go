package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeModel records every batch it receives and returns a vector whose first
// component encodes the global input index, so ordering bugs are visible.
type fakeModel struct {
	calls  [][]string
	offset int
	err    error
}

func (f *fakeModel) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (f *fakeModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(f.offset), 0.5}
		f.offset++
	}
	return out, nil
}

func newTestBatchClient(model Model) *BatchClient {
	c := NewBatchClient(model)
	c.delay = 0
	return c
}

func TestBatchClientSplitsAndPreservesOrder(t *testing.T) {
	fake := &fakeModel{}
	client := newTestBatchClient(fake)

	texts := make([]string, 250)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk %d", i)
	}

	embeddings, err := client.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch returned error: %v", err)
	}

	if len(fake.calls) != 3 {
		t.Errorf("expected 3 provider calls, got %d", len(fake.calls))
	}
	wantSizes := []int{100, 100, 50}
	for i, call := range fake.calls {
		if len(call) != wantSizes[i] {
			t.Errorf("call %d: expected %d texts, got %d", i, wantSizes[i], len(call))
		}
	}

	if len(embeddings) != len(texts) {
		t.Fatalf("expected %d embeddings, got %d", len(texts), len(embeddings))
	}
	for i, emb := range embeddings {
		if emb[0] != float32(i) {
			t.Fatalf("embedding %d out of order: got marker %v", i, emb[0])
		}
	}
}

func TestBatchClientEmptyInput(t *testing.T) {
	fake := &fakeModel{}
	client := newTestBatchClient(fake)

	embeddings, err := client.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch returned error: %v", err)
	}
	if len(embeddings) != 0 {
		t.Errorf("expected empty result, got %d embeddings", len(embeddings))
	}
	if len(fake.calls) != 0 {
		t.Errorf("provider should not be called for empty input, got %d calls", len(fake.calls))
	}
}

func TestBatchClientPropagatesProviderError(t *testing.T) {
	fake := &fakeModel{err: ErrProviderUnavailable}
	client := newTestBatchClient(fake)

	_, err := client.EmbedBatch(context.Background(), []string{"hello"})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestBatchClientSingleBatch(t *testing.T) {
	fake := &fakeModel{}
	client := newTestBatchClient(fake)

	embeddings, err := client.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch returned error: %v", err)
	}
	if len(fake.calls) != 1 {
		t.Errorf("expected 1 provider call, got %d", len(fake.calls))
	}
	if len(embeddings) != 3 {
		t.Errorf("expected 3 embeddings, got %d", len(embeddings))
	}
}
