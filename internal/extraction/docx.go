package extraction

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/v2/document"
)

// extractDocx pulls the raw text out of a Word document, paragraph by
// paragraph. Formatting, tables and embedded media are discarded.
func (e *Extractor) extractDocx(data []byte) (Result, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("failed to extract text from DOCX: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for _, p := range doc.Paragraphs() {
		for _, r := range p.Runs() {
			sb.WriteString(r.Text())
		}
		sb.WriteString("\n")
	}

	return Result{
		Text:     sb.String(),
		Metadata: map[string]interface{}{"extracted": true},
	}, nil
}
