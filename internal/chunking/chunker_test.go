package chunking

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestSplitShortTextYieldsSingleChunk(t *testing.T) {
	text := "A short note that fits in one chunk."
	chunks := Split(text, "doc-1", nil, Options{})

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.Index != 0 {
		t.Errorf("index = %d, want 0", c.Index)
	}
	if c.Content != text {
		t.Errorf("content altered: %q", c.Content)
	}
	if c.TokenCount != (len(text)+3)/4 {
		t.Errorf("token count = %d, want %d", c.TokenCount, (len(text)+3)/4)
	}
	if c.Metadata["chunkIndex"] != 0 {
		t.Errorf("metadata chunkIndex = %v, want 0", c.Metadata["chunkIndex"])
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	text := buildParagraphs(40)
	a := Split(text, "doc-1", map[string]interface{}{"source": "test"}, Options{ChunkSize: 100, Overlap: 10})
	b := Split(text, "doc-1", map[string]interface{}{"source": "test"}, Options{ChunkSize: 100, Overlap: 10})

	if !reflect.DeepEqual(a, b) {
		t.Error("identical input must produce identical chunks")
	}
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	// Two paragraphs where the break falls in the second half of the window.
	para1 := strings.Repeat("alpha beta gamma. ", 20) // ~360 bytes
	para2 := strings.Repeat("delta epsilon zeta. ", 30)
	text := para1 + "\n\n" + para2

	chunks := Split(text, "doc-1", nil, Options{ChunkSize: 100, Overlap: 10}) // 400-byte window

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Content, ".") {
		t.Errorf("first chunk should end at the paragraph break, got %q", tail(chunks[0].Content))
	}
	if strings.Contains(chunks[0].Content, "delta") {
		t.Error("first chunk crossed the paragraph boundary")
	}
}

func TestSplitIndexesAreSequential(t *testing.T) {
	chunks := Split(buildParagraphs(60), "doc-1", nil, Options{ChunkSize: 100, Overlap: 10})
	if len(chunks) < 3 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Fatalf("chunk %d has index %d", i, c.Index)
		}
		if c.DocumentID != "doc-1" {
			t.Fatalf("chunk %d has document %q", i, c.DocumentID)
		}
	}
}

func TestSplitCoversAllContent(t *testing.T) {
	text := buildParagraphs(50)
	chunks := Split(text, "doc-1", nil, Options{ChunkSize: 100, Overlap: 10})

	// Every distinctive marker must appear in at least one chunk.
	for i := 0; i < 50; i++ {
		marker := fmt.Sprintf("marker%02d", i)
		found := false
		for _, c := range chunks {
			if strings.Contains(c.Content, marker) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("marker %s lost during chunking", marker)
		}
	}
}

func TestSplitChunksStayWithinWindow(t *testing.T) {
	chunks := Split(buildParagraphs(50), "doc-1", nil, Options{ChunkSize: 100, Overlap: 10})
	for i, c := range chunks {
		if len(c.Content) > 100*4 {
			t.Errorf("chunk %d exceeds the window: %d bytes", i, len(c.Content))
		}
		if c.Content != strings.TrimSpace(c.Content) {
			t.Errorf("chunk %d not trimmed", i)
		}
		if len(c.Content) == 0 {
			t.Errorf("chunk %d is empty", i)
		}
	}
}

func TestSplitCarriesPageNumber(t *testing.T) {
	chunks := Split("short text", "doc-1", map[string]interface{}{"pageNumber": 7}, Options{})
	if chunks[0].PageNumber == nil || *chunks[0].PageNumber != 7 {
		t.Errorf("page number not carried: %v", chunks[0].PageNumber)
	}
}

func TestEstimateTokens(t *testing.T) {
	cases := map[string]int{
		"":      0,
		"a":     1,
		"abcd":  1,
		"abcde": 2,
	}
	for in, want := range cases {
		if got := estimateTokens(in); got != want {
			t.Errorf("estimateTokens(%q) = %d, want %d", in, got, want)
		}
	}
}

func buildParagraphs(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString(fmt.Sprintf("Sentence with marker%02d follows the previous one. ", i))
		sb.WriteString("It continues with enough prose to make the paragraph meaningful.\n\n")
	}
	return sb.String()
}

func tail(s string) string {
	if len(s) <= 40 {
		return s
	}
	return "..." + s[len(s)-40:]
}
