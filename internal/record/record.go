// Package record assembles the per-document output row from the scanners.
package record

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/reportgest/internal/capture"
	"github.com/dgallion1/reportgest/internal/chunker"
	"github.com/dgallion1/reportgest/internal/coverage"
	"github.com/dgallion1/reportgest/internal/document"
	"github.com/dgallion1/reportgest/internal/faq"
	"github.com/dgallion1/reportgest/internal/jsonblock"
	"github.com/dgallion1/reportgest/internal/marker"
	"github.com/dgallion1/reportgest/internal/title"
)

// Record is one extracted document.
type Record struct {
	File            string          `json:"file"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	TOC             string          `json:"toc"`
	Segmentation    string          `json:"segmentation"`
	Methodology     string          `json:"methodology"`
	PublishDate     string          `json:"publish_date"`
	Currency        string          `json:"currency"`
	SinglePrice     int             `json:"single_price"`
	CorporatePrice  int             `json:"corporate_price"`
	EnterprisePrice int             `json:"enterprise_price"`
	SKU             string          `json:"sku"`
	TotalPage       string          `json:"total_page"`
	Date            string          `json:"date"`
	URLSlug         string          `json:"url_slug"`
	MetaDescription string          `json:"meta_description"`
	MetaKeywords    string          `json:"meta_keywords"`
	BaseYear        string          `json:"base_year"`
	History         string          `json:"history"`
	SEOTitle        string          `json:"seo_title"`
	BreadcrumbText  string          `json:"breadcrumb_text"`
	Schema1         string          `json:"schema_1"`
	Schema2         string          `json:"schema_2"`
	Report          string          `json:"report"`
	Merged          string          `json:"merged"`
	MergedParts     []chunker.Chunk `json:"merged_parts"`
	TitleSource     title.Source    `json:"title_source"`
}

// Fixed holds the values that do not come from the document.
type Fixed struct {
	Segmentation    string
	Currency        string
	SinglePrice     int
	CorporatePrice  int
	EnterprisePrice int
	BaseYear        string
	History         string
}

// DefaultFixed returns the catalog defaults.
func DefaultFixed() Fixed {
	return Fixed{
		Segmentation:    "<p>.</p>",
		Currency:        "USD",
		SinglePrice:     4485,
		CorporatePrice:  6449,
		EnterprisePrice: 8339,
		BaseYear:        "2024",
		History:         "2019-2023",
	}
}

// Options configures an Assembler.
type Options struct {
	Phrases   marker.Phrases
	Fixed     Fixed
	JSONMode  jsonblock.Mode
	CellLimit int
	Now       func() time.Time
}

// DefaultOptions returns options for the standard report template.
func DefaultOptions() Options {
	return Options{
		Phrases:   marker.DefaultPhrases(),
		Fixed:     DefaultFixed(),
		JSONMode:  jsonblock.ModeDepth,
		CellLimit: chunker.DefaultCellLimit,
		Now:       time.Now,
	}
}

// Result is the outcome of assembling one document. Err is set when some part
// of the record could not be produced; the record still carries every field
// that was.
type Result struct {
	Record *Record
	Err    error
}

// OK reports whether assembly finished without error.
func (r Result) OK() bool { return r.Err == nil }

// Assembler builds records. It is safe for concurrent use.
type Assembler struct {
	opts Options
}

// NewAssembler returns an Assembler, filling unset options with defaults.
func NewAssembler(opts Options) *Assembler {
	def := DefaultOptions()
	if len(opts.Phrases.DescriptionSections) == 0 {
		opts.Phrases = def.Phrases
	}
	if opts.Fixed == (Fixed{}) {
		opts.Fixed = def.Fixed
	}
	if opts.JSONMode == "" {
		opts.JSONMode = def.JSONMode
	}
	if opts.CellLimit <= 0 {
		opts.CellLimit = def.CellLimit
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	return &Assembler{opts: opts}
}

// Assemble extracts every field of doc. fileName is the source file name with
// its extension; the document name is derived from it when doc.Name is empty.
// doc is not modified.
func (a *Assembler) Assemble(doc *document.Document, fileName string) (res Result) {
	if doc.Name == "" {
		named := *doc
		named.Name = BaseName(fileName)
		doc = &named
	}
	rec := &Record{File: fileName}
	res.Record = rec
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("assemble %s: %v", fileName, r)
			rec.Merged = "ERROR: " + res.Err.Error()
			rec.MergedParts = chunker.Split(rec.Merged, chunker.Config{Limit: a.opts.CellLimit})
		}
	}()

	ph := a.opts.Phrases
	fx := a.opts.Fixed
	now := a.opts.Now()
	sku := strings.ToLower(doc.Name)

	tr := title.ResolveDetailed(doc, ph)
	rec.Title = tr.Title
	rec.TitleSource = tr.Source
	rec.Description = capture.Description(doc, ph)
	rec.TOC = capture.TableOfContents(doc, ph)
	rec.Segmentation = fx.Segmentation
	rec.PublishDate = now.Format("January 2006")
	rec.Currency = fx.Currency
	rec.SinglePrice = fx.SinglePrice
	rec.CorporatePrice = fx.CorporatePrice
	rec.EnterprisePrice = fx.EnterprisePrice
	rec.SKU = sku
	rec.Date = now.Format("2006-01-02")
	rec.URLSlug = sku
	rec.MetaDescription = MetaDescription(doc, ph)
	rec.BaseYear = fx.BaseYear
	rec.History = fx.History

	forecast := coverage.Forecast(doc, ph)
	rec.SEOTitle = SEOTitle(doc.Name, forecast)
	rec.BreadcrumbText = BreadcrumbText(doc.Name, forecast)

	flat := jsonblock.Flatten(doc)
	rec.Schema1 = jsonblock.Find(flat, jsonblock.TypeBreadcrumbList, a.opts.JSONMode)
	if rec.Schema1 == "" {
		rec.Schema1 = capture.BreadcrumbRaw(doc, ph)
	}
	rec.Schema2 = jsonblock.Find(flat, jsonblock.TypeFAQPage, a.opts.JSONMode)
	rec.Methodology = faq.Render(rec.Schema2)

	merged, err := merge(
		func() string { return rec.Description },
		func() string {
			rec.Report = coverage.Render(doc, ph)
			return rec.Report
		},
	)
	if err != nil {
		rec.Merged = "ERROR: " + err.Error()
		res.Err = err
	} else {
		rec.Merged = merged
	}
	rec.MergedParts = chunker.Split(rec.Merged, chunker.Config{Limit: a.opts.CellLimit})
	return res
}

// ErrMerge wraps failures while merging description and coverage markup.
var ErrMerge = errors.New("merge description and coverage")

// merge joins the description and coverage markup. A panic while producing
// either part is returned as an error.
func merge(descFn, covFn func() string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMerge, r)
		}
	}()
	desc, cov := descFn(), covFn()
	if desc == "" && cov == "" {
		return "", nil
	}
	return desc + "\n\n" + cov, nil
}

// MetaDescription returns the first paragraph after the first one mentioning
// the meta anchor phrase.
func MetaDescription(doc *document.Document, phrases marker.Phrases) string {
	found := false
	for _, p := range doc.Paragraphs() {
		if !found {
			found = strings.Contains(strings.ToLower(p.Text), phrases.MetaAnchor)
			continue
		}
		if p.Text != "" {
			return p.Text
		}
	}
	return ""
}

// SEOTitle is "<name> Size (<forecast>) 2030", or name alone without a forecast.
func SEOTitle(name, forecast string) string {
	if forecast == "" {
		return name
	}
	return name + " Size (" + forecast + ") 2030"
}

// BreadcrumbText is "<name> Report 2030", or name alone without a forecast.
func BreadcrumbText(name, forecast string) string {
	if forecast == "" {
		return name
	}
	return name + " Report 2030"
}

// BaseName strips directory and extension from a file name.
func BaseName(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Failure returns the diagnostic result for a document that could not be
// read or assembled. The record keeps the file identity and carries the error
// in the merged description so it still lands in an export row.
func (a *Assembler) Failure(fileName string, err error) Result {
	name := BaseName(fileName)
	sku := strings.ToLower(name)
	merged := "ERROR: " + err.Error()
	rec := &Record{
		File:        filepath.Base(fileName),
		Title:       title.NotAvailable,
		TitleSource: title.SourceNotFound,
		SKU:         sku,
		URLSlug:     sku,
		SEOTitle:    name,
		Merged:      merged,
		MergedParts: chunker.Split(merged, chunker.Config{Limit: a.opts.CellLimit}),
	}
	return Result{Record: rec, Err: err}
}
