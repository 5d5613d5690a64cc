package chunker

import (
	"fmt"
	"unicode/utf8"
)

// DefaultCellLimit is the largest number of characters a spreadsheet cell holds.
const DefaultCellLimit = 32767

// Config controls cell chunking.
type Config struct {
	Limit int // Maximum characters per chunk.
}

// DefaultConfig returns the spreadsheet cell ceiling.
func DefaultConfig() Config {
	return Config{Limit: DefaultCellLimit}
}

// Chunk is one numbered slice of a larger value.
type Chunk struct {
	Index int    `json:"index"` // 1-based
	Text  string `json:"text"`
}

// Column returns the export column for this chunk, e.g. "Discription_Part2".
func (c Chunk) Column(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, c.Index)
}

// SplitCells breaks text into consecutive pieces of at most limit characters.
// Boundaries are length-based and never split a UTF-8 sequence. Empty text
// yields a single empty piece.
func SplitCells(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultCellLimit
	}
	if text == "" {
		return []string{""}
	}
	var parts []string
	start, n := 0, 0
	for i := range text {
		if n == limit {
			parts = append(parts, text[start:i])
			start, n = i, 0
		}
		n++
	}
	return append(parts, text[start:])
}

// Split is SplitCells with numbered chunks.
func Split(text string, cfg Config) []Chunk {
	parts := SplitCells(text, cfg.Limit)
	chunks := make([]Chunk, len(parts))
	for i, p := range parts {
		chunks[i] = Chunk{Index: i + 1, Text: p}
	}
	return chunks
}

// Fits reports whether text fits in one cell.
func Fits(text string, limit int) bool {
	if limit <= 0 {
		limit = DefaultCellLimit
	}
	return len(text) <= limit || utf8.RuneCountInString(text) <= limit
}
