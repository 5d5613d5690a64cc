package capture

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/dgallion1/reportgest/internal/document"
	"github.com/dgallion1/reportgest/internal/marker"
	"github.com/dgallion1/reportgest/internal/textnorm"
)

// Description captures the narrative sections, from the first section heading
// up to the summary/FAQ stop phrase.
func Description(doc *document.Document, phrases marker.Phrases) string {
	cleaned := func(p *document.Paragraph) string {
		return marker.CleanHeading(p.Text)
	}
	return Run(doc, Rules{
		Start: func(p *document.Paragraph) bool {
			return marker.ContainsAny(cleaned(p), phrases.DescriptionSections) != ""
		},
		StartMode: StartProcess,
		Skip: func(p *document.Paragraph) bool {
			return textnorm.Normalize(p.Text) == ""
		},
		Stop: func(p *document.Paragraph) bool {
			return phrases.DescriptionStop != "" && strings.Contains(cleaned(p), phrases.DescriptionStop)
		},
		Section: func(p *document.Paragraph) (string, bool) {
			phrase := marker.ContainsAny(cleaned(p), phrases.DescriptionSections)
			if phrase == "" {
				return "", false
			}
			return "<h2>" + html.EscapeString(marker.TitleCase(phrase)) + "</h2>", true
		},
		Render: func(p *document.Paragraph) Fragment {
			content := RunMarkup(p.Runs)
			if p.IsList() {
				return Fragment{HTML: "<li>" + content + "</li>", Item: true}
			}
			return Fragment{HTML: "<p>" + content + "</p>"}
		},
		Join:      "\n",
		ListOpen:  "<ul>",
		ListClose: "</ul>",
	})
}

var numberedLineRe = regexp.MustCompile(`^\d+[.)]\s`)

// TableOfContents captures everything after the contents heading. Reaching the
// figures list switches to tail scanning, which ends at the next heading or
// numbered line.
func TableOfContents(doc *document.Document, phrases marker.Phrases) string {
	lower := func(p *document.Paragraph) string {
		return strings.ToLower(textnorm.StripEmoji(p.Text))
	}
	out := Run(doc, Rules{
		Start: func(p *document.Paragraph) bool {
			return strings.Contains(lower(p), phrases.TOCStart)
		},
		StartMode: StartSkip,
		Tail: func(p *document.Paragraph) bool {
			return phrases.TOCTail != "" && strings.Contains(lower(p), phrases.TOCTail)
		},
		TailEnd: func(p *document.Paragraph) bool {
			return p.IsHeading() || numberedLineRe.MatchString(textnorm.StripEmoji(p.Text))
		},
		Render:    paragraphFragment,
		ListOpen:  "<ul>",
		ListClose: "</ul>",
	})
	return strings.TrimSpace(out)
}

// BreadcrumbRaw accumulates raw paragraph text from the first paragraph that
// opens a JSON object up to a schema stop phrase.
func BreadcrumbRaw(doc *document.Document, phrases marker.Phrases) string {
	out := Run(doc, Rules{
		Start: func(p *document.Paragraph) bool {
			return strings.HasPrefix(p.Text, "{")
		},
		StartMode: StartProcess,
		Stop: func(p *document.Paragraph) bool {
			return marker.ContainsAny(strings.ToLower(p.Text), phrases.BreadcrumbStop) != ""
		},
		Render: func(p *document.Paragraph) Fragment {
			return Fragment{HTML: p.Text}
		},
	})
	return strings.TrimSpace(out)
}

// paragraphFragment renders a paragraph by style: list items become <li>,
// "Heading N" becomes <hN>, anything else <p>.
func paragraphFragment(p *document.Paragraph) Fragment {
	text := html.EscapeString(strings.TrimSpace(textnorm.StripEmoji(p.Text)))
	if text == "" {
		return Fragment{}
	}
	if strings.HasPrefix(strings.ToLower(p.Style), "list") {
		return Fragment{HTML: "<li>" + text + "</li>", Item: true}
	}
	if level := p.HeadingLevel(); level > 0 {
		return Fragment{HTML: fmt.Sprintf("<h%d>%s</h%d>", level, text, level)}
	}
	return Fragment{HTML: "<p>" + text + "</p>"}
}

// RunMarkup concatenates runs with bold/italic tags. Pictographs are removed,
// whitespace-only runs are dropped and spacing between runs stays outside the
// tags.
func RunMarkup(runs []document.Run) string {
	var b strings.Builder
	pendingSpace := false
	for _, r := range runs {
		raw := textnorm.StripEmoji(r.Text)
		text := strings.TrimSpace(raw)
		if text == "" {
			if raw != "" {
				pendingSpace = true
			}
			continue
		}
		if b.Len() > 0 && (pendingSpace || startsWithSpace(raw)) {
			b.WriteByte(' ')
		}
		text = html.EscapeString(text)
		switch {
		case r.Bold && r.Italic:
			b.WriteString("<b><i>" + text + "</i></b>")
		case r.Bold:
			b.WriteString("<b>" + text + "</b>")
		case r.Italic:
			b.WriteString("<i>" + text + "</i>")
		default:
			b.WriteString(text)
		}
		pendingSpace = endsWithSpace(raw)
	}
	return b.String()
}

func startsWithSpace(s string) bool {
	for _, r := range s {
		return unicode.IsSpace(r)
	}
	return false
}

func endsWithSpace(s string) bool {
	return s != "" && strings.TrimRightFunc(s, unicode.IsSpace) != s
}
