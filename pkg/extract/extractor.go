// Package extract turns uploaded source material into plain text. Files are
// decoded by format (plain text, PDF, DOCX); URLs are fetched with a timeout
// and size cap, then reduced to readable article text.
package extract

import (
	"errors"
	"path/filepath"
	"strings"
)

// Kind-specific extraction failures. ErrUnsupportedFormat and ErrEmptySource
// mark permanently bad sources; ErrFetch wraps network-class failures.
var (
	ErrUnsupportedFormat = errors.New("extract: unsupported source format")
	ErrEmptySource       = errors.New("extract: source contains no text")
	ErrOversizeSource    = errors.New("extract: source exceeds size limit")
	ErrFetch             = errors.New("extract: fetch failed")
)

// Extractor extracts plain text from uploaded bytes.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractBytes extracts text from content based on the source filename.
// Supported formats: .txt, .md, .rst (plain), .pdf, .docx. Anything else is
// rejected rather than guessed at.
func (e *Extractor) ExtractBytes(content []byte, filename string) (string, error) {
	if len(content) == 0 {
		return "", ErrEmptySource
	}

	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".rst", "":
		text, err = extractPlain(content)
	case ".pdf":
		text, err = extractPDF(content)
	case ".docx":
		text, err = extractDOCX(content)
	default:
		return "", ErrUnsupportedFormat
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrEmptySource
	}
	return text, nil
}
