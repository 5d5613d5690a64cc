// Package title resolves a report title through an ordered fallback chain
// across paragraphs and tables.
package title

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/reportgest/internal/document"
	"github.com/dgallion1/reportgest/internal/marker"
	"github.com/dgallion1/reportgest/internal/textnorm"
)

// NotAvailable is returned when no strategy finds a title.
const NotAvailable = "Title Not Available"

// DefaultYearRange is appended to titles that carry no year range.
const DefaultYearRange = "–2024–2030"

var yearRangeRe = regexp.MustCompile(`20\d{2}\s*[-–]\s*20\d{2}`)

// Source names the strategy that produced a title.
type Source string

const (
	SourceHeading  Source = "heading"
	SourceTable    Source = "table"
	SourceInline   Source = "inline"
	SourceFilename Source = "filename"
	SourceNotFound Source = "none"
)

// Result is a resolved title and the strategy that found it.
type Result struct {
	Title  string
	Source Source
}

// Resolve runs the fallback chain for doc and returns the post-processed title,
// or NotAvailable.
func Resolve(doc *document.Document, phrases marker.Phrases) string {
	return ResolveDetailed(doc, phrases).Title
}

// ResolveDetailed is Resolve with the winning strategy attached.
func ResolveDetailed(doc *document.Document, phrases marker.Phrases) Result {
	strategies := []func(*document.Document, marker.Phrases) (string, Source){
		fromHeading,
		fromTable,
		fromInlineOrFilename,
	}
	for _, find := range strategies {
		if candidate, src := find(doc, phrases); candidate != "" {
			return Result{Title: Finalize(candidate, doc.Name), Source: src}
		}
	}
	return Result{Title: NotAvailable, Source: SourceNotFound}
}

// fromHeading finds a title heading and returns its inline value or the next
// paragraph.
func fromHeading(doc *document.Document, _ marker.Phrases) (string, Source) {
	expectNext := false
	for _, p := range doc.Paragraphs() {
		text := textnorm.StripEmoji(p.Text)
		if expectNext {
			if t := strings.TrimSpace(text); t != "" {
				return t, SourceHeading
			}
			continue
		}
		if matched, rest := marker.MatchTitleLine(text); matched {
			if rest != "" {
				return rest, SourceHeading
			}
			expectNext = true
		}
	}
	return "", SourceNotFound
}

// fromTable finds a title label cell and returns its right neighbour or,
// failing that, the cell below it.
func fromTable(doc *document.Document, phrases marker.Phrases) (string, Source) {
	for _, tbl := range doc.Tables() {
		for r, row := range tbl.Rows {
			for c, cell := range row {
				label := strings.ToLower(textnorm.Normalize(cell.Text))
				if label == "" || marker.ContainsAny(label, phrases.TitleCells) == "" {
					continue
				}
				if next := tbl.CellText(r, c+1); next != "" {
					return next, SourceTable
				}
				if below := tbl.CellText(r+1, c); below != "" {
					return below, SourceTable
				}
			}
		}
	}
	return "", SourceNotFound
}

// fromInlineOrFilename looks for an inline title after a title prefix, or a
// paragraph that names the file and mentions the forecast.
func fromInlineOrFilename(doc *document.Document, phrases marker.Phrases) (string, Source) {
	name := strings.ToLower(doc.Name)
	for _, p := range doc.Paragraphs() {
		low := strings.ToLower(p.Text)
		if marker.HasPrefixAny(low, phrases.TitlePrefixes) {
			if rest := marker.InlineRemainder(p.Text); rest != "" {
				return rest, SourceInline
			}
		}
		if name != "" && strings.HasPrefix(low, name) && strings.Contains(low, phrases.TitleForecastWord) {
			return p.Text, SourceFilename
		}
	}
	return "", SourceNotFound
}

// Finalize prefixes the filename when missing, appends DefaultYearRange when no
// year range is present and normalizes the text after the filename. The
// filename itself is kept verbatim so the result always starts with it.
func Finalize(candidate, filename string) string {
	prefix, rest, sep := filename, candidate, " "
	if n := len(filename); len(candidate) >= n && strings.EqualFold(candidate[:n], filename) {
		prefix, rest = candidate[:n], candidate[n:]
		if r, _ := utf8.DecodeRuneInString(rest); rest != "" && !unicode.IsSpace(r) {
			sep = ""
		}
	}
	rest = textnorm.Normalize(rest)
	if !HasYearRange(prefix + sep + rest) {
		rest = strings.TrimSpace(rest + " " + DefaultYearRange)
	}
	if prefix == "" {
		return rest
	}
	if rest == "" {
		return prefix
	}
	return prefix + sep + rest
}

// HasYearRange reports whether s contains a 20YY-20YY range with a hyphen or
// en dash.
func HasYearRange(s string) bool {
	return yearRangeRe.MatchString(s)
}
