// Package textnorm cleans paragraph and cell text before it is matched or
// rendered: pictographic code points are dropped and whitespace is collapsed.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// pictographs covers the emoji and symbol blocks removed from document text.
var pictographs = rangetable.Merge(
	&unicode.RangeTable{
		R16: []unicode.Range16{
			{Lo: 0x200d, Hi: 0x200d, Stride: 1}, // zero-width joiner
			{Lo: 0x2600, Hi: 0x26ff, Stride: 1}, // misc symbols
			{Lo: 0x2700, Hi: 0x27bf, Stride: 1}, // dingbats
			{Lo: 0x2b00, Hi: 0x2bff, Stride: 1}, // arrows & symbols
			{Lo: 0xfe0f, Hi: 0xfe0f, Stride: 1}, // emoji presentation selector
		},
	},
	&unicode.RangeTable{
		R32: []unicode.Range32{
			{Lo: 0x1f1e0, Hi: 0x1f1ff, Stride: 1}, // flags
			{Lo: 0x1f300, Hi: 0x1f5ff, Stride: 1}, // symbols & pictographs
			{Lo: 0x1f600, Hi: 0x1f64f, Stride: 1}, // emoticons
			{Lo: 0x1f680, Hi: 0x1f6ff, Stride: 1}, // transport & map
			{Lo: 0x1f700, Hi: 0x1f77f, Stride: 1}, // alchemical
			{Lo: 0x1f780, Hi: 0x1f7ff, Stride: 1}, // geometric extended
			{Lo: 0x1f800, Hi: 0x1f8ff, Stride: 1}, // supplemental arrows
			{Lo: 0x1f900, Hi: 0x1f9ff, Stride: 1}, // supplemental symbols
			{Lo: 0x1fa00, Hi: 0x1faff, Stride: 1}, // chess, symbols
		},
	},
)

// IsPictograph reports whether r is removed by StripEmoji.
func IsPictograph(r rune) bool {
	return unicode.Is(pictographs, r)
}

// StripEmoji removes pictographic code points and leaves everything else,
// including whitespace, untouched.
func StripEmoji(s string) string {
	if s == "" {
		return ""
	}
	// Fast path: most paragraphs carry no pictographs.
	if strings.IndexFunc(s, IsPictograph) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if IsPictograph(r) {
			return -1
		}
		return r
	}, s)
}

// Normalize strips pictographs, collapses whitespace runs to a single space
// and trims the result. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	return CollapseSpace(StripEmoji(s))
}

// CollapseSpace collapses whitespace runs to a single space and trims.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
