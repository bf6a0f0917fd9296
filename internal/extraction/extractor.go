// Package extraction converts raw uploaded file bytes into plain text plus
// format-specific metadata, ahead of chunking and embedding.
package extraction

import (
	"context"
	"errors"
	"fmt"

	"github.com/atende-ai/atende/pkg/logger"
)

// ErrUnsupportedFileType is returned when the declared file type has no extractor.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// Result is the outcome of a successful extraction.
type Result struct {
	Text     string
	Metadata map[string]interface{}
}

// OCREngine recognizes text in an image. Confidence is a 0-100 score.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte) (text string, confidence float64, err error)
}

// Extractor dispatches raw file bytes to the parser for their declared type.
type Extractor struct {
	ocr OCREngine
	log *logger.Logger
}

// NewExtractor creates an Extractor. ocr may be nil when image support is not
// needed; extracting an image without an engine fails.
func NewExtractor(ocr OCREngine, log *logger.Logger) *Extractor {
	return &Extractor{ocr: ocr, log: log}
}

// Extract converts data into plain text according to fileType.
// Supported types: pdf, docx, png, jpg, jpeg, md, txt.
func (e *Extractor) Extract(ctx context.Context, fileType string, data []byte) (Result, error) {
	switch fileType {
	case "pdf":
		return e.extractPDF(data)
	case "docx":
		return e.extractDocx(data)
	case "png", "jpg", "jpeg":
		return e.extractImage(ctx, data)
	case "md", "txt":
		return Result{Text: string(data), Metadata: map[string]interface{}{}}, nil
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedFileType, fileType)
	}
}

func (e *Extractor) extractImage(ctx context.Context, data []byte) (Result, error) {
	if e.ocr == nil {
		return Result{}, fmt.Errorf("failed to extract text from image: no OCR engine configured")
	}

	text, confidence, err := e.ocr.Recognize(ctx, data)
	if err != nil {
		e.log.WithPayload(map[string]interface{}{"bytes": len(data)}).Error(fmt.Sprintf("OCR recognition failed: %v", err))
		return Result{}, fmt.Errorf("failed to extract text from image: %w", err)
	}

	return Result{
		Text: text,
		Metadata: map[string]interface{}{
			"confidence": confidence,
			"extracted":  true,
		},
	}, nil
}
