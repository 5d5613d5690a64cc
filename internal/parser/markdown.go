package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/reportgest/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark with GFM tables.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(src))

	doc := &document.Document{Name: baseName(filename)}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		mdBlock(doc, n, src)
	}
	return doc, nil
}

func mdBlock(doc *document.Document, n ast.Node, src []byte) {
	switch node := n.(type) {
	case *ast.Heading:
		doc.Append(mdParagraph(node, fmt.Sprintf("Heading %d", node.Level), src))
	case *ast.Paragraph, *ast.TextBlock:
		doc.Append(mdParagraph(node, "Normal", src))
	case *ast.List:
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			mdListItem(doc, item, src)
		}
	case *ast.Blockquote:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			mdBlock(doc, c, src)
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		// Embedded JSON-LD is often fenced; keep each line as its own paragraph.
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			doc.Append(document.NewParagraph(string(seg.Value(src)), "Normal"))
		}
	case *extast.Table:
		doc.Append(document.NewTable(mdTableRows(node, src)))
	}
}

// mdListItem emits the item's own text as one list paragraph, then any
// nested lists.
func mdListItem(doc *document.Document, item ast.Node, src []byte) {
	var runs []document.Run
	var nested []ast.Node
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*ast.List); ok {
			nested = append(nested, c)
			continue
		}
		if len(runs) > 0 {
			runs = append(runs, document.Run{Text: " "})
		}
		runs = append(runs, mdRuns(c, src, false, false)...)
	}
	doc.Append(document.NewParagraph(joinRuns(runs), "List Paragraph", runs...))
	for _, n := range nested {
		mdBlock(doc, n, src)
	}
}

func mdParagraph(n ast.Node, style string, src []byte) document.Block {
	runs := mdRuns(n, src, false, false)
	return document.NewParagraph(joinRuns(runs), style, runs...)
}

// mdRuns flattens the inline children of n into formatted runs.
func mdRuns(n ast.Node, src []byte, bold, italic bool) []document.Run {
	var runs []document.Run
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			t := string(node.Segment.Value(src))
			switch {
			case node.HardLineBreak():
				t += "\n"
			case node.SoftLineBreak():
				t += " "
			}
			runs = append(runs, document.Run{Text: t, Bold: bold, Italic: italic})
		case *ast.String:
			runs = append(runs, document.Run{Text: string(node.Value), Bold: bold, Italic: italic})
		case *ast.Emphasis:
			b, i := bold, italic
			if node.Level >= 2 {
				b = true
			} else {
				i = true
			}
			runs = append(runs, mdRuns(node, src, b, i)...)
		case *ast.AutoLink:
			runs = append(runs, document.Run{Text: string(node.Label(src)), Bold: bold, Italic: italic})
		default:
			runs = append(runs, mdRuns(node, src, bold, italic)...)
		}
	}
	return runs
}

func mdTableRows(tbl *extast.Table, src []byte) [][]string {
	var rows [][]string
	for r := tbl.FirstChild(); r != nil; r = r.NextSibling() {
		var cells []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, joinRuns(mdRuns(c, src, false, false)))
		}
		rows = append(rows, cells)
	}
	return rows
}

func joinRuns(runs []document.Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}
