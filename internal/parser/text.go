package parser

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/reportgest/internal/document"
)

var (
	textBulletRe  = regexp.MustCompile(`^\s*[-*•]\s+`)
	textHeadingRe = regexp.MustCompile(`^(#{1,6})\s+`)
)

// TextParser handles plain text files. Every non-blank line is a paragraph;
// "- " bullets become list items and "#" prefixes become headings.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &document.Document{Name: baseName(filename)}
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		switch {
		case textHeadingRe.MatchString(line):
			m := textHeadingRe.FindStringSubmatch(line)
			doc.Append(document.NewParagraph(line[len(m[0]):], fmt.Sprintf("Heading %d", len(m[1]))))
		case textBulletRe.MatchString(line):
			doc.Append(document.NewParagraph(textBulletRe.ReplaceAllString(line, ""), "List Paragraph"))
		default:
			doc.Append(document.NewParagraph(line, "Normal"))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return doc, nil
}
