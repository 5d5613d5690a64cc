package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/reportgest/internal/document"
)

// CSVParser handles CSV files. The whole file becomes one table block, so an
// attribute sheet exported from a report can be looked up like a docx table.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &document.Document{Name: baseName(filename)}
	if len(records) == 0 {
		return doc, nil
	}
	doc.Append(document.NewTable(records))
	return doc, nil
}
