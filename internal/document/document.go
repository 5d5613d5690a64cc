package document

import "strings"

// Kind tags the variant held by a Block.
type Kind int

const (
	KindParagraph Kind = iota
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindTable:
		return "table"
	}
	return "unknown"
}

// Document is a parsed source document as an ordered block stream.
type Document struct {
	Name   string  // Base filename without extension
	Blocks []Block // Source order
}

// Block is one paragraph or one table. Exactly one of Paragraph/Table is set.
type Block struct {
	Kind      Kind
	Paragraph *Paragraph
	Table     *Table
}

// Paragraph is a styled run of text.
type Paragraph struct {
	Text  string // Trimmed source text
	Style string // Display style name, e.g. "Heading 2", "List Paragraph"
	Runs  []Run
}

// Run is a formatted span inside a paragraph.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

// Table is an ordered grid of cells. Rows may be ragged.
type Table struct {
	Rows [][]Cell
}

// Cell is a single table cell.
type Cell struct {
	Text string
}

// NewParagraph builds a paragraph block. Empty runs default to one plain run
// carrying the full text.
func NewParagraph(text, style string, runs ...Run) Block {
	text = strings.TrimSpace(text)
	if len(runs) == 0 && text != "" {
		runs = []Run{{Text: text}}
	}
	return Block{
		Kind:      KindParagraph,
		Paragraph: &Paragraph{Text: text, Style: style, Runs: runs},
	}
}

// NewTable builds a table block from rows of cell text.
func NewTable(rows [][]string) Block {
	t := &Table{Rows: make([][]Cell, 0, len(rows))}
	for _, row := range rows {
		cells := make([]Cell, len(row))
		for i, text := range row {
			cells[i] = Cell{Text: strings.TrimSpace(text)}
		}
		t.Rows = append(t.Rows, cells)
	}
	return Block{Kind: KindTable, Table: t}
}

// Append adds a block, dropping paragraphs with no text.
func (d *Document) Append(b Block) {
	if b.Kind == KindParagraph && (b.Paragraph == nil || b.Paragraph.Text == "") {
		return
	}
	if b.Kind == KindTable && b.Table == nil {
		return
	}
	d.Blocks = append(d.Blocks, b)
}

// Paragraphs returns paragraph blocks in document order.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, b := range d.Blocks {
		if b.Kind == KindParagraph && b.Paragraph != nil {
			out = append(out, b.Paragraph)
		}
	}
	return out
}

// Tables returns table blocks in document order.
func (d *Document) Tables() []*Table {
	var out []*Table
	for _, b := range d.Blocks {
		if b.Kind == KindTable && b.Table != nil {
			out = append(out, b.Table)
		}
	}
	return out
}

// IsList reports whether the paragraph carries a list style.
func (p *Paragraph) IsList() bool {
	return strings.Contains(strings.ToLower(p.Style), "list")
}

// IsHeading reports whether the paragraph carries a heading style.
func (p *Paragraph) IsHeading() bool {
	return strings.Contains(strings.ToLower(p.Style), "heading")
}

// HeadingLevel returns the numeric level of a "Heading N" style, or 2 when the
// style is a heading without a usable number. Non-headings return 0.
func (p *Paragraph) HeadingLevel() int {
	if !strings.HasPrefix(p.Style, "Heading") {
		return 0
	}
	rest := strings.TrimSpace(strings.TrimPrefix(p.Style, "Heading"))
	if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
		return int(rest[0] - '0')
	}
	return 2
}

// Row returns the cells of row i, or nil when out of range.
func (t *Table) Row(i int) []Cell {
	if i < 0 || i >= len(t.Rows) {
		return nil
	}
	return t.Rows[i]
}

// CellText returns the trimmed text at (row, col), or "" when out of range.
func (t *Table) CellText(row, col int) string {
	r := t.Row(row)
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col].Text
}
