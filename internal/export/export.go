// Package export writes extracted records to spreadsheet, CSV and Markdown
// sinks.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dgallion1/reportgest/internal/record"
)

// SheetName is the worksheet records are written to.
const SheetName = "Records"

// ErrUnknownFormat is returned for output paths without a known extension.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an output file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// WriteFile writes records to path in the format its extension names.
func WriteFile(path string, records []*record.Record) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	switch format {
	case FormatXLSX:
		err = WriteXLSX(f, records)
	default:
		err = WriteCSV(f, records)
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", path, cerr)
	}
	return err
}

// WriteXLSX writes one header row and one row per record to a single sheet.
// Cells longer than the spreadsheet limit are truncated by the writer; the
// Discription_Part columns carry the full merged text.
func WriteXLSX(w io.Writer, records []*record.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := record.Header(records)
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := writeRow(f, 1, header); err != nil {
		return err
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	row := 2
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if err := writeRow(f, row, rec.Row(header)); err != nil {
			return err
		}
		row++
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	return nil
}

// WriteCSV writes records as CSV with the same columns as WriteXLSX.
func WriteCSV(w io.Writer, records []*record.Record) error {
	cw := csv.NewWriter(w)
	header := record.Header(records)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if err := cw.Write(rec.Row(header)); err != nil {
			return fmt.Errorf("write csv row %s: %w", rec.File, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
