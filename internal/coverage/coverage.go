// Package coverage finds the report coverage table and reads or re-renders it.
package coverage

import (
	"fmt"
	"html"
	"strings"

	"github.com/dgallion1/reportgest/internal/document"
	"github.com/dgallion1/reportgest/internal/marker"
	"github.com/dgallion1/reportgest/internal/textnorm"
)

// Heading precedes the rendered coverage table.
const Heading = "<h2><strong>7.1. Report Coverage Table</strong></h2>"

const (
	headerBackground = "#5b9bd5"
	oddBackground    = "#deeaf6"
	evenBackground   = "#ffffff"
	borderColor      = "#9cc2e5"
	firstColWidth    = "263px"
	otherColWidth    = "303px"
)

// FindTable returns the first table whose first row mentions any keyword, or
// nil.
func FindTable(doc *document.Document, keywords []string) *document.Table {
	for _, tbl := range doc.Tables() {
		row := tbl.Row(0)
		if len(row) == 0 {
			continue
		}
		texts := make([]string, len(row))
		for i, c := range row {
			texts[i] = strings.ToLower(c.Text)
		}
		if marker.ContainsAny(strings.Join(texts, " "), keywords) != "" {
			return tbl
		}
	}
	return nil
}

// RenderStyled renders tbl as a styled HTML table under Heading. A nil table
// renders as "".
func RenderStyled(tbl *document.Table) string {
	if tbl == nil {
		return ""
	}
	lines := []string{
		Heading,
		`<table cellspacing="0" style="border-collapse:collapse; width:100%"><tbody>`,
	}
	for r, row := range tbl.Rows {
		lines = append(lines, "<tr>")
		for c, cell := range row {
			lines = append(lines, renderCell(r, c, cell.Text))
		}
		lines = append(lines, "</tr>")
	}
	lines = append(lines, "</tbody></table>")
	return strings.Join(lines, "\n")
}

func renderCell(r, c int, text string) string {
	bg := evenBackground
	switch {
	case r == 0:
		bg = headerBackground
	case r%2 == 1:
		bg = oddBackground
	}
	style := fmt.Sprintf("background-color:%s; border:1px solid %s; vertical-align:top; padding:4px; width:%s",
		bg, borderColor, otherColWidth)
	if c == 0 {
		style = fmt.Sprintf("background-color:%s; border:1px solid %s; vertical-align:top; padding:4px;width:%s",
			bg, borderColor, firstColWidth)
	}
	text = html.EscapeString(textnorm.StripEmoji(strings.TrimSpace(text)))
	if r == 0 || c == 0 {
		return fmt.Sprintf(`<td style="%s"><p><strong>%s</strong></p></td>`, style, text)
	}
	return fmt.Sprintf(`<td style="%s"><p>%s</p></td>`, style, text)
}

// Render finds the coverage table in doc and renders it.
func Render(doc *document.Document, phrases marker.Phrases) string {
	return RenderStyled(FindTable(doc, phrases.CoverageKeywords))
}

// Lookup returns the value paired with the first attribute containing target
// in a table headed by attrHeader and valueHeader. Every such table is
// scanned and the last one with a match wins. "USD" in the value becomes "$".
func Lookup(doc *document.Document, attrHeader, valueHeader, target string) string {
	found := ""
	for _, tbl := range doc.Tables() {
		attrIdx, valueIdx := -1, -1
		for i, c := range tbl.Row(0) {
			h := strings.ToLower(strings.TrimSpace(c.Text))
			if h == attrHeader && attrIdx < 0 {
				attrIdx = i
			}
			if h == valueHeader && valueIdx < 0 {
				valueIdx = i
			}
		}
		if attrIdx < 0 || valueIdx < 0 {
			continue
		}
		for r := 1; r < len(tbl.Rows); r++ {
			attr := strings.ToLower(tbl.CellText(r, attrIdx))
			if strings.Contains(attr, target) {
				found = strings.TrimSpace(strings.ReplaceAll(tbl.CellText(r, valueIdx), "USD", "$"))
				break
			}
		}
	}
	return found
}

// Forecast looks up the configured forecast attribute in doc.
func Forecast(doc *document.Document, phrases marker.Phrases) string {
	return Lookup(doc, phrases.AttributeHeader, phrases.ValueHeader, phrases.ForecastAttribute)
}
