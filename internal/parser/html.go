package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/reportgest/internal/document"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Headings, paragraphs, list items and tables
// become blocks; <b>/<strong> and <i>/<em> become run formatting.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &document.Document{Name: baseName(filename)}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				doc.Append(htmlParagraph(n, fmt.Sprintf("Heading %d", level)))
				return
			}

			// Skip non-content elements.
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "head":
				return
			case "p", "blockquote":
				doc.Append(htmlParagraph(n, "Normal"))
				return
			case "li":
				doc.Append(htmlParagraph(n, "List Paragraph"))
				return
			case "table":
				doc.Append(document.NewTable(htmlTableRows(n)))
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Find <body> or use whole document.
	if body := findBody(root); body != nil {
		walk(body)
	} else {
		walk(root)
	}
	return doc, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// htmlParagraph collects the text nodes under n as runs, tracking enclosing
// emphasis elements.
func htmlParagraph(n *html.Node, style string) document.Block {
	var runs []document.Run
	var text strings.Builder
	var collect func(*html.Node, bool, bool)
	collect = func(n *html.Node, bold, italic bool) {
		switch n.Type {
		case html.TextNode:
			if n.Data == "" {
				return
			}
			text.WriteString(n.Data)
			runs = append(runs, document.Run{Text: n.Data, Bold: bold, Italic: italic})
			return
		case html.ElementNode:
			switch n.Data {
			case "b", "strong":
				bold = true
			case "i", "em":
				italic = true
			case "br":
				text.WriteByte('\n')
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c, bold, italic)
		}
	}
	collect(n, false, false)
	return document.NewParagraph(text.String(), style, runs...)
}

func htmlTableRows(tbl *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, textContent(c))
				}
			}
			rows = append(rows, cells)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(tbl)
	return rows
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
