package parser

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/dgallion1/reportgest/internal/document"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	// go-docx needs a ReaderAt+size, so write to temp file.
	tmp, err := os.CreateTemp("", "reportgest-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	f, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	return FromDocx(f, filename), nil
}

// FromDocx adapts a parsed go-docx file to a block document.
func FromDocx(f *docx.Docx, filename string) *document.Document {
	doc := &document.Document{Name: baseName(filename)}
	for _, item := range f.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			doc.Append(docxParagraph(v))
		case *docx.Table:
			doc.Append(docxTable(v))
		}
	}
	return doc
}

func docxParagraph(para *docx.Paragraph) document.Block {
	var runs []document.Run
	var text strings.Builder
	for _, child := range para.Children {
		var run *docx.Run
		switch c := child.(type) {
		case *docx.Run:
			run = c
		case *docx.Hyperlink:
			run = &c.Run
		default:
			continue
		}
		r := docxRun(run)
		if r.Text == "" {
			continue
		}
		text.WriteString(r.Text)
		runs = append(runs, r)
	}
	style := "Normal"
	if para.Properties != nil && para.Properties.Style != nil && para.Properties.Style.Val != "" {
		style = DisplayStyleName(para.Properties.Style.Val)
	}
	return document.NewParagraph(text.String(), style, runs...)
}

func docxRun(run *docx.Run) document.Run {
	var buf strings.Builder
	for _, rc := range run.Children {
		switch c := rc.(type) {
		case *docx.Text:
			buf.WriteString(c.Text)
		case *docx.Tab:
			buf.WriteByte('\t')
		case *docx.BarterRabbet:
			buf.WriteByte('\n')
		}
	}
	r := document.Run{Text: buf.String()}
	if props := run.RunProperties; props != nil {
		r.Bold = props.Bold != nil
		r.Italic = props.Italic != nil
	}
	return r
}

func docxTable(tbl *docx.Table) document.Block {
	rows := make([][]string, 0, len(tbl.TableRows))
	for _, row := range tbl.TableRows {
		cells := make([]string, 0, len(row.TableCells))
		for _, cell := range row.TableCells {
			var lines []string
			for _, para := range cell.Paragraphs {
				b := docxParagraph(para)
				lines = append(lines, b.Paragraph.Text)
			}
			cells = append(cells, strings.Join(lines, "\n"))
		}
		rows = append(rows, cells)
	}
	return document.NewTable(rows)
}

// DisplayStyleName turns a style id such as "Heading1" or "ListParagraph" into
// its display form ("Heading 1", "List Paragraph"). Ids that already contain
// spaces are returned unchanged.
func DisplayStyleName(id string) string {
	if strings.ContainsRune(id, ' ') {
		return id
	}
	rs := []rune(id)
	var b strings.Builder
	for i, r := range rs {
		if i > 0 {
			prev := rs[i-1]
			lowerToUpper := unicode.IsLower(prev) && unicode.IsUpper(r)
			letterToDigit := unicode.IsLetter(prev) && unicode.IsDigit(r)
			if lowerToUpper || letterToDigit {
				b.WriteByte(' ')
			}
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
