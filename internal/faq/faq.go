// Package faq renders an FAQPage JSON-LD block as numbered question/answer
// markup.
package faq

import (
	"encoding/json"
	"fmt"
	"strings"
)

// escaper emits the entity forms the catalog import expects.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

func escape(s string) string { return escaper.Replace(s) }

type page struct {
	MainEntity []json.RawMessage `json:"mainEntity"`
}

type entry struct {
	Name           any `json:"name"`
	AcceptedAnswer struct {
		Text any `json:"text"`
	} `json:"acceptedAnswer"`
}

// Entry is one question/answer pair.
type Entry struct {
	N        int
	Question string
	Answer   string
}

// Parse decodes block and returns its complete entries. N is the position of
// the entry in mainEntity, so skipped entries leave gaps in numbering.
func Parse(block string) ([]Entry, error) {
	if strings.TrimSpace(block) == "" {
		return nil, nil
	}
	var pg page
	if err := json.Unmarshal([]byte(block), &pg); err != nil {
		return nil, fmt.Errorf("decode faq page: %w", err)
	}
	var out []Entry
	for i, raw := range pg.MainEntity {
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		q := textValue(e.Name)
		a := textValue(e.AcceptedAnswer.Text)
		if q == "" || a == "" {
			continue
		}
		out = append(out, Entry{N: i + 1, Question: q, Answer: a})
	}
	return out, nil
}

func textValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// Render returns the methodology markup for an FAQPage block, or "" when the
// block is empty or malformed.
func Render(block string) string {
	entries, err := Parse(block)
	if err != nil {
		return ""
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("<p><strong>Q%d: %s</strong><br>A%d: %s</p>",
			e.N, escape(e.Question), e.N, escape(e.Answer)))
	}
	return strings.Join(lines, "\n")
}
