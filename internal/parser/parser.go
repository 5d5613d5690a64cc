package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/reportgest/internal/document"
)

// ErrUnsupported is returned by ForFile for extensions no reader handles.
var ErrUnsupported = errors.New("unsupported file extension")

// Parser converts raw document bytes into an ordered block document.
type Parser interface {
	Parse(r io.Reader, filename string) (*document.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".docx":     true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
}

// Options tunes the readers returned by ForFile.
type Options struct {
	FallbackPdftotext bool
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".docx":
		return &DOCXParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// IsDOCX reports whether filename has the primary report extension.
func IsDOCX(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".docx")
}

// IsTemporary reports whether a file name belongs to an editor lock or
// temporary file, or is hidden.
func IsTemporary(filename string) bool {
	base := filepath.Base(filename)
	return strings.HasPrefix(base, "~$") ||
		strings.HasPrefix(base, ".~lock") ||
		strings.HasPrefix(base, ".")
}

func baseName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
