package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitCells_Empty(t *testing.T) {
	parts := SplitCells("", 10)
	if len(parts) != 1 || parts[0] != "" {
		t.Fatalf("expected one empty part, got %q", parts)
	}
}

func TestSplitCells_FitsOneCell(t *testing.T) {
	parts := SplitCells("short", 10)
	if len(parts) != 1 || parts[0] != "short" {
		t.Fatalf("expected single part, got %q", parts)
	}
}

func TestSplitCells_ExactMultiple(t *testing.T) {
	parts := SplitCells("abcdef", 3)
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[0] != "abc" || parts[1] != "def" {
		t.Errorf("expected [abc def], got %q", parts)
	}
}

func TestSplitCells_Remainder(t *testing.T) {
	text := strings.Repeat("x", DefaultCellLimit*2+5)
	parts := SplitCells(text, 0)

	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(parts))
	}
	if len(parts[0]) != DefaultCellLimit || len(parts[1]) != DefaultCellLimit {
		t.Errorf("expected full leading parts, got %d and %d", len(parts[0]), len(parts[1]))
	}
	if len(parts[2]) != 5 {
		t.Errorf("expected 5-char tail, got %d", len(parts[2]))
	}
	if strings.Join(parts, "") != text {
		t.Error("expected parts to reassemble the input")
	}
}

func TestSplitCells_MultiByte(t *testing.T) {
	text := strings.Repeat("é–", 5) // 10 characters
	parts := SplitCells(text, 4)
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(parts))
	}
	for i, p := range parts {
		if !utf8.ValidString(p) {
			t.Errorf("part %d is not valid UTF-8: %q", i, p)
		}
	}
	if utf8.RuneCountInString(parts[0]) != 4 || utf8.RuneCountInString(parts[2]) != 2 {
		t.Errorf("unexpected part sizes: %q", parts)
	}
	if strings.Join(parts, "") != text {
		t.Error("expected parts to reassemble the input")
	}
}

func TestSplit_NumbersChunks(t *testing.T) {
	chunks := Split("abcdefg", Config{Limit: 3})
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i+1 {
			t.Errorf("expected index %d, got %d", i+1, c.Index)
		}
	}
	if got := chunks[1].Column("Discription_Part"); got != "Discription_Part2" {
		t.Errorf("expected %q, got %q", "Discription_Part2", got)
	}
}

func TestFits(t *testing.T) {
	if !Fits("ééé", 3) {
		t.Error("expected 3 characters to fit a 3-character cell")
	}
	if Fits("abcd", 3) {
		t.Error("expected 4 characters not to fit")
	}
}
