// Package marker recognises heading lines and section markers in loosely
// templated report text.
package marker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/reportgest/internal/textnorm"
)

// titleHeadingRe matches a bare title heading: optional "A." or "1.2" prefix,
// one of the title phrases, then only separators or whitespace.
var titleHeadingRe = regexp.MustCompile(`(?i)^\s*` +
	`(?:[A-Za-z]\.)?` +
	`(?:\d+(?:\.\d+)*)?` +
	`[.)]?\s*` +
	`(?:report\s*title|full\s*title|full\s*report\s*title|title\s*\(long[-\s]*form\))` +
	`[\s:–-]*$`)

// IsTitleHeading reports whether line is a title heading with no content.
func IsTitleHeading(line string) bool {
	return titleHeadingRe.MatchString(line)
}

func isSeparator(r rune) bool {
	return r == ':' || r == '-' || r == '–'
}

// InlineRemainder splits line on its first colon or dash and returns the
// trimmed right-hand side. It returns "" when there is no separator, the right
// side is empty, or the right side is itself a title heading.
func InlineRemainder(line string) string {
	i := strings.IndexFunc(line, isSeparator)
	if i < 0 {
		return ""
	}
	return remainderAt(line, i)
}

func remainderAt(line string, i int) string {
	_, size := utf8.DecodeRuneInString(line[i:])
	right := strings.TrimSpace(line[i+size:])
	if right == "" || IsTitleHeading(right) {
		return ""
	}
	return right
}

// MatchTitleLine recognises a title heading either on its own or in the
// "label: value" form. A bare heading returns (true, ""); an inline heading
// returns (true, value).
func MatchTitleLine(line string) (bool, string) {
	if IsTitleHeading(line) {
		return true, ""
	}
	for i, r := range line {
		if !isSeparator(r) {
			continue
		}
		if !IsTitleHeading(line[:i]) {
			continue
		}
		if rest := remainderAt(line, i); rest != "" {
			return true, rest
		}
		return true, ""
	}
	return false, ""
}

var (
	leadingSymbolsRe = regexp.MustCompile(`^[^\p{L}\p{N}_]+`)
	sectionPrefixRe  = regexp.MustCompile(`(?i)section\s*\d+[:\-]?\s*`)
	numberPrefixRe   = regexp.MustCompile(`^\d+[.\-)]\s*`)
)

// CleanHeading reduces a heading line to comparable lowercase text: pictographs,
// leading symbols, "Section N:" and "N." prefixes are removed.
func CleanHeading(text string) string {
	text = strings.TrimSpace(textnorm.StripEmoji(strings.TrimSpace(text)))
	text = leadingSymbolsRe.ReplaceAllString(text, "")
	text = sectionPrefixRe.ReplaceAllString(text, "")
	text = numberPrefixRe.ReplaceAllString(text, "")
	return strings.ToLower(textnorm.CollapseSpace(text))
}

// ContainsAny returns the first phrase contained in text, or "".
func ContainsAny(text string, phrases []string) string {
	for _, p := range phrases {
		if p != "" && strings.Contains(text, p) {
			return p
		}
	}
	return ""
}

// HasPrefixAny reports whether text starts with any of the phrases.
func HasPrefixAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// TitleCase upper-cases the first letter of every word and lower-cases the
// rest, treating any non-letter as a word boundary ("end-user" → "End-User").
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		isLetter := unicode.IsLetter(r)
		switch {
		case isLetter && !prevLetter:
			b.WriteString(strings.ToUpper(string(r)))
		case isLetter:
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}
