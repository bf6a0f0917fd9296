package extraction

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine implements OCREngine with a local tesseract installation.
type TesseractEngine struct {
	language string
}

// NewTesseractEngine creates an engine recognizing the given language
// (tesseract language code, e.g. "por" or "eng").
func NewTesseractEngine(language string) *TesseractEngine {
	return &TesseractEngine{language: language}
}

// Recognize runs OCR over the image bytes and reports the mean word
// confidence alongside the recognized text.
func (t *TesseractEngine) Recognize(ctx context.Context, image []byte) (string, float64, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if t.language != "" {
		if err := client.SetLanguage(t.language); err != nil {
			return "", 0, fmt.Errorf("failed to set OCR language: %w", err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", 0, fmt.Errorf("failed to load image for OCR: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("OCR recognition failed: %w", err)
	}

	confidence := 0.0
	if boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD); err == nil && len(boxes) > 0 {
		var sum float64
		for _, b := range boxes {
			sum += b.Confidence
		}
		confidence = sum / float64(len(boxes))
	}

	return text, confidence, nil
}

var _ OCREngine = (*TesseractEngine)(nil)
