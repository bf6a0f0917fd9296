package extraction

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// extractPDF parses the whole document into plain text and collects the
// standard document-information fields when present.
func (e *Extractor) extractPDF(data []byte) (Result, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("failed to extract text from PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return Result{}, fmt.Errorf("failed to extract text from PDF: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return Result{}, fmt.Errorf("failed to extract text from PDF: %w", err)
	}

	metadata := map[string]interface{}{
		"pages": reader.NumPage(),
	}
	info := reader.Trailer().Key("Info")
	for key, field := range map[string]string{
		"Title":        "title",
		"Author":       "author",
		"Creator":      "creator",
		"Producer":     "producer",
		"CreationDate": "creationDate",
		"ModDate":      "modificationDate",
	} {
		if v := info.Key(key).Text(); v != "" {
			metadata[field] = v
		}
	}

	return Result{Text: buf.String(), Metadata: metadata}, nil
}
