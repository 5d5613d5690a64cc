// Package jsonblock isolates embedded JSON-LD objects from flattened document
// text by brace matching.
package jsonblock

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/dgallion1/reportgest/internal/document"
)

// Schema types looked up in report documents.
const (
	TypeBreadcrumbList = "BreadcrumbList"
	TypeFAQPage        = "FAQPage"
)

// Mode selects the brace scanner.
type Mode string

const (
	// ModeDepth counts every brace, including ones inside string literals.
	ModeDepth Mode = "depth"
	// ModeStrict skips braces inside string literals and validates the span.
	ModeStrict Mode = "strict"
)

// ParseMode maps a config value to a Mode, defaulting to ModeDepth.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeStrict)) {
		return ModeStrict
	}
	return ModeDepth
}

// Flatten joins the non-empty paragraph texts of doc with newlines.
func Flatten(doc *document.Document) string {
	var lines []string
	for _, p := range doc.Paragraphs() {
		if p.Text != "" {
			lines = append(lines, p.Text)
		}
	}
	return strings.Join(lines, "\n")
}

// Find extracts the object of the given type with the scanner chosen by mode.
func Find(text, typeName string, mode Mode) string {
	if mode == ModeStrict {
		return ExtractStrict(text, typeName)
	}
	return Extract(text, typeName)
}

// openingBrace locates the `{` that precedes the first "@type" marker for
// typeName, or -1.
func openingBrace(text, typeName string) int {
	re := regexp.MustCompile(`"@type"\s*:\s*"` + regexp.QuoteMeta(typeName) + `"`)
	loc := re.FindStringIndex(text)
	if loc == nil {
		return -1
	}
	return strings.LastIndexByte(text[:loc[0]], '{')
}

// Extract returns the balanced span starting at the nearest `{` before the
// type marker. It returns "" when there is no marker, no opening brace, or the
// depth never returns to zero.
func Extract(text, typeName string) string {
	start := openingBrace(text, typeName)
	if start < 0 {
		return ""
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// ExtractStrict is Extract with string-literal awareness: braces inside quoted
// strings do not count. The span must also be valid JSON.
func ExtractStrict(text, typeName string) string {
	start := openingBrace(text, typeName)
	if start < 0 {
		return ""
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				span := text[start : i+1]
				if !json.Valid([]byte(span)) {
					return ""
				}
				return span
			}
		}
	}
	return ""
}
