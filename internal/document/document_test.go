package document

import "testing"

func TestDocument_AppendDropsEmptyParagraphs(t *testing.T) {
	var d Document
	d.Append(NewParagraph("  ", "Normal"))
	d.Append(NewParagraph("kept", "Normal"))
	d.Append(NewTable([][]string{{"a", "b"}}))

	if len(d.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(d.Blocks))
	}
	if len(d.Paragraphs()) != 1 {
		t.Errorf("expected 1 paragraph, got %d", len(d.Paragraphs()))
	}
	if len(d.Tables()) != 1 {
		t.Errorf("expected 1 table, got %d", len(d.Tables()))
	}
}

func TestNewParagraph_DefaultRun(t *testing.T) {
	b := NewParagraph(" hello ", "Normal")
	if b.Paragraph.Text != "hello" {
		t.Errorf("expected trimmed text %q, got %q", "hello", b.Paragraph.Text)
	}
	if len(b.Paragraph.Runs) != 1 || b.Paragraph.Runs[0].Text != "hello" {
		t.Errorf("expected a single plain run, got %+v", b.Paragraph.Runs)
	}
}

func TestParagraph_StyleQueries(t *testing.T) {
	tests := []struct {
		style   string
		list    bool
		heading bool
		level   int
	}{
		{"List Paragraph", true, false, 0},
		{"List Bullet", true, false, 0},
		{"Heading 1", false, true, 1},
		{"Heading 3", false, true, 3},
		{"Heading", false, true, 2},
		{"Normal", false, false, 0},
		{"", false, false, 0},
	}
	for _, tt := range tests {
		p := &Paragraph{Style: tt.style}
		if p.IsList() != tt.list {
			t.Errorf("style=%q: expected IsList=%v", tt.style, tt.list)
		}
		if p.IsHeading() != tt.heading {
			t.Errorf("style=%q: expected IsHeading=%v", tt.style, tt.heading)
		}
		if p.HeadingLevel() != tt.level {
			t.Errorf("style=%q: expected level %d, got %d", tt.style, tt.level, p.HeadingLevel())
		}
	}
}

func TestTable_CellTextOutOfRange(t *testing.T) {
	tbl := NewTable([][]string{{"a", "b"}, {"c"}}).Table
	if got := tbl.CellText(1, 1); got != "" {
		t.Errorf("expected empty text for ragged row, got %q", got)
	}
	if got := tbl.CellText(5, 0); got != "" {
		t.Errorf("expected empty text for missing row, got %q", got)
	}
	if got := tbl.CellText(0, 1); got != "b" {
		t.Errorf("expected %q, got %q", "b", got)
	}
}
