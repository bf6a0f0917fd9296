package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/atende-ai/atende/pkg/logger"
)

type stubOCR struct {
	text       string
	confidence float64
	err        error
}

func (s *stubOCR) Recognize(ctx context.Context, image []byte) (string, float64, error) {
	if s.err != nil {
		return "", 0, s.err
	}
	return s.text, s.confidence, nil
}

func testLogger() *logger.Logger {
	return logger.New("extraction_test", "", "")
}

func TestExtractPlainTextPassthrough(t *testing.T) {
	e := NewExtractor(nil, testLogger())
	for _, fileType := range []string{"txt", "md"} {
		res, err := e.Extract(context.Background(), fileType, []byte("# Title\n\nBody text."))
		if err != nil {
			t.Fatalf("Extract(%s) returned error: %v", fileType, err)
		}
		if res.Text != "# Title\n\nBody text." {
			t.Errorf("Extract(%s) altered content: %q", fileType, res.Text)
		}
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	e := NewExtractor(nil, testLogger())
	_, err := e.Extract(context.Background(), "xlsx", []byte("data"))
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Errorf("expected ErrUnsupportedFileType, got %v", err)
	}
}

func TestExtractImageUsesOCR(t *testing.T) {
	e := NewExtractor(&stubOCR{text: "recognized text", confidence: 88.5}, testLogger())

	res, err := e.Extract(context.Background(), "png", []byte{0x89, 0x50})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if res.Text != "recognized text" {
		t.Errorf("text = %q", res.Text)
	}
	if res.Metadata["confidence"] != 88.5 {
		t.Errorf("confidence = %v, want 88.5", res.Metadata["confidence"])
	}
}

func TestExtractImageWithoutEngine(t *testing.T) {
	e := NewExtractor(nil, testLogger())
	if _, err := e.Extract(context.Background(), "jpg", []byte{0xFF, 0xD8}); err == nil {
		t.Error("image extraction without an OCR engine should fail")
	}
}

func TestExtractImageOCRFailure(t *testing.T) {
	e := NewExtractor(&stubOCR{err: errors.New("tesseract crashed")}, testLogger())
	if _, err := e.Extract(context.Background(), "jpeg", []byte{0xFF, 0xD8}); err == nil {
		t.Error("OCR failure should propagate")
	}
}
