package chunking

import (
	"regexp"
	"strings"
)

const (
	// DefaultChunkSize is the target chunk size in approximate tokens.
	DefaultChunkSize = 500
	// DefaultOverlap is the overlap between consecutive chunks in approximate tokens.
	DefaultOverlap = 50
)

// sentenceEnd matches sentence-ending punctuation followed by whitespace.
var sentenceEnd = regexp.MustCompile(`[.!?]\s`)

// Options tunes the chunking window. Zero values fall back to the defaults.
type Options struct {
	ChunkSize int // approximate tokens per chunk
	Overlap   int // approximate tokens re-included in the next chunk
}

// Chunk is one bounded segment of a document's text. Index is zero-based and
// unique per document; it is assigned in scan order and persisted downstream,
// so the boundary heuristic must stay stable across versions.
type Chunk struct {
	DocumentID string
	Index      int
	Content    string
	TokenCount int
	PageNumber *int
	Metadata   map[string]interface{}
}

// Split cuts text into overlapping chunks sized for embedding-model input.
//
// Token counts are approximated as 1 token per 4 bytes; no real tokenizer is
// involved. A window of ChunkSize*4 bytes slides over the text, and each cut
// prefers (in order) a paragraph break, a sentence end, or a whitespace found
// past the half-window mark, falling back to a hard cut. The window then
// advances by at least one byte, re-including Overlap*4 bytes for context
// continuity. Pure function of its inputs.
func Split(text, documentID string, metadata map[string]interface{}, opts Options) []Chunk {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	overlap := opts.Overlap
	if overlap <= 0 {
		overlap = DefaultOverlap
	}

	chunkSizeChars := chunkSize * 4
	overlapChars := overlap * 4

	if len(text) <= chunkSizeChars {
		return []Chunk{{
			DocumentID: documentID,
			Index:      0,
			Content:    strings.TrimSpace(text),
			TokenCount: estimateTokens(text),
			PageNumber: pageNumberOf(metadata),
			Metadata:   chunkMetadata(metadata, 0),
		}}
	}

	var chunks []Chunk
	start := 0
	index := 0

	for start < len(text) {
		end := start + chunkSizeChars
		if end > len(text) {
			end = len(text)
		}

		// Not the last chunk: search backward for a natural break point.
		if end < len(text) {
			window := text[start:end]
			half := chunkSizeChars / 2

			if p := strings.LastIndex(window, "\n\n"); p > half {
				end = start + p + 2
			} else if m := sentenceBreak(window, half); m > 0 {
				end = start + m
			} else if sp := strings.LastIndex(window, " "); sp > half {
				end = start + sp + 1
			}
		}

		content := strings.TrimSpace(text[start:end])
		if len(content) > 0 {
			chunks = append(chunks, Chunk{
				DocumentID: documentID,
				Index:      index,
				Content:    content,
				TokenCount: estimateTokens(content),
				PageNumber: pageNumberOf(metadata),
				Metadata:   chunkMetadata(metadata, index),
			})
			index++
		}

		// Guarantees forward progress even when the overlap would stall the loop.
		next := end - overlapChars
		if next < start+1 {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// sentenceBreak returns the end offset of the chosen sentence boundary within
// window, or 0 when none qualifies. It picks the first sentence end past the
// half mark, falling back to the last one seen; the pick only counts when it
// itself lies past the half mark.
func sentenceBreak(window string, half int) int {
	matches := sentenceEnd.FindAllStringIndex(window, -1)
	var last []int
	for _, m := range matches {
		if m[0] > half {
			last = m
			break
		}
		last = m
	}
	if last != nil && last[0] > half {
		return last[1]
	}
	return 0
}

// estimateTokens approximates the token count as ceil(len/4).
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}

func pageNumberOf(metadata map[string]interface{}) *int {
	if metadata == nil {
		return nil
	}
	if v, ok := metadata["pageNumber"].(int); ok {
		return &v
	}
	return nil
}

func chunkMetadata(metadata map[string]interface{}, index int) map[string]interface{} {
	md := make(map[string]interface{}, len(metadata)+1)
	for k, v := range metadata {
		md[k] = v
	}
	md["chunkIndex"] = index
	return md
}
