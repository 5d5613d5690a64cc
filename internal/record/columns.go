package record

import "strconv"

// PartPrefix names the chunked merged-description columns.
const PartPrefix = "Discription_Part"

// Column is one named export cell.
type Column struct {
	Name  string
	Value string
}

// BaseColumns lists the fixed export columns in catalog order. Chunk columns
// follow them.
var BaseColumns = []string{
	"File", "Title", "Description", "TOC", "Segmentation", "Methodology",
	"Publish_Date", "Currency", "Single Price", "Corporate Price", "skucode",
	"Total Page", "Date", "urlNp", "Meta Discription", "Meta Keys", "Base Year",
	"history", "Enterprise Price", "SEOTITLE", "BreadCrumb Text", "Schema 1",
	"Schema 2", "Report", "Discription",
}

// Columns returns the record as ordered export cells, chunk parts last.
func (r *Record) Columns() []Column {
	values := []string{
		r.File, r.Title, r.Description, r.TOC, r.Segmentation, r.Methodology,
		r.PublishDate, r.Currency, strconv.Itoa(r.SinglePrice), strconv.Itoa(r.CorporatePrice), r.SKU,
		r.TotalPage, r.Date, r.URLSlug, r.MetaDescription, r.MetaKeywords, r.BaseYear,
		r.History, strconv.Itoa(r.EnterprisePrice), r.SEOTitle, r.BreadcrumbText, r.Schema1,
		r.Schema2, r.Report, r.Merged,
	}
	cols := make([]Column, 0, len(values)+len(r.MergedParts))
	for i, name := range BaseColumns {
		cols = append(cols, Column{Name: name, Value: values[i]})
	}
	for _, part := range r.MergedParts {
		cols = append(cols, Column{Name: part.Column(PartPrefix), Value: part.Text})
	}
	return cols
}

// Header returns the column names for a set of records: BaseColumns followed
// by as many part columns as the widest record needs.
func Header(records []*Record) []string {
	parts := 0
	for _, r := range records {
		if r != nil && len(r.MergedParts) > parts {
			parts = len(r.MergedParts)
		}
	}
	header := make([]string, 0, len(BaseColumns)+parts)
	header = append(header, BaseColumns...)
	for i := 1; i <= parts; i++ {
		header = append(header, PartPrefix+strconv.Itoa(i))
	}
	return header
}

// Row returns the record's values aligned to header. Missing columns are empty.
func (r *Record) Row(header []string) []string {
	byName := make(map[string]string, len(header))
	for _, c := range r.Columns() {
		byName[c.Name] = c.Value
	}
	row := make([]string, len(header))
	for i, name := range header {
		row[i] = byName[name]
	}
	return row
}
