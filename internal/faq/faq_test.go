package faq

import (
	"strings"
	"testing"
)

func TestRender_TwoEntries(t *testing.T) {
	block := `{
  "@type": "FAQPage",
  "mainEntity": [
    {"@type": "Question", "name": "What is <R&D> spend?", "acceptedAnswer": {"text": "About \"5%\"."}},
    {"@type": "Question", "name": "Who leads?", "acceptedAnswer": {"text": "Acme & Co."}}
  ]
}`
	want := "<p><strong>Q1: What is &lt;R&amp;D&gt; spend?</strong><br>A1: About &quot;5%&quot;.</p>\n" +
		"<p><strong>Q2: Who leads?</strong><br>A2: Acme &amp; Co.</p>"
	if got := Render(block); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_SkipsIncompleteEntries(t *testing.T) {
	block := `{"mainEntity": [
    {"name": "No answer"},
    {"name": "  ", "acceptedAnswer": {"text": "blank question"}},
    {"name": "Kept", "acceptedAnswer": {"text": "yes"}},
    "not an object",
    {"name": 42, "acceptedAnswer": {"text": "numeric name"}}
  ]}`
	got := Render(block)
	if strings.Count(got, "<p>") != 1 {
		t.Fatalf("expected one rendered entry, got %q", got)
	}
	if !strings.Contains(got, "Q3: Kept") || !strings.Contains(got, "A3: yes") {
		t.Errorf("expected entry numbered by position, got %q", got)
	}
}

func TestRender_Malformed(t *testing.T) {
	for _, block := range []string{"", "{not json", `["array"]`, `{"mainEntity": "nope"}`} {
		if got := Render(block); got != "" {
			t.Errorf("Render(%q): expected empty, got %q", block, got)
		}
	}
}

func TestParse_Error(t *testing.T) {
	if _, err := Parse("{broken"); err == nil {
		t.Error("expected decode error")
	}
}

func TestRender_KeepsEmoji(t *testing.T) {
	block := `{"mainEntity": [{"name": "Is demand rising? 📈", "acceptedAnswer": {"text": "Yes ✅ it's rising."}}]}`
	want := "<p><strong>Q1: Is demand rising? 📈</strong><br>A1: Yes ✅ it&#x27;s rising.</p>"
	if got := Render(block); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
