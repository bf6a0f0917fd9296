package service

import (
	"regexp"
	"strings"
)

var (
	crlf          = strings.NewReplacer("\r\n", "\n", "\r", "\n")
	excessNewline = regexp.MustCompile(`\n{3,}`)
	runSpaces     = regexp.MustCompile(`[ \t]+`)
	controlChars  = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")
)

// normalizeText cleans extracted text before chunking: unify line endings,
// collapse blank-line runs to one paragraph break, collapse space runs, and
// strip non-printing control characters. Control characters are stripped
// after whitespace collapsing, so a stripped character between spaces does
// not merge them.
func normalizeText(text string) string {
	text = crlf.Replace(text)
	text = excessNewline.ReplaceAllString(text, "\n\n")
	text = runSpaces.ReplaceAllString(text, " ")
	text = controlChars.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
