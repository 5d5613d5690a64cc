package marker

// Phrases is the heuristic vocabulary the scanners match against. Every value
// is lowercase; matching lowercases the document side.
type Phrases struct {
	// DescriptionSections start description capture and become <h2> sub-headings.
	DescriptionSections []string `yaml:"description_sections"`
	// DescriptionStop ends description capture.
	DescriptionStop string `yaml:"description_stop"`

	TOCStart string `yaml:"toc_start"`
	// TOCTail switches table-of-contents capture to tail scanning.
	TOCTail string `yaml:"toc_tail"`

	// BreadcrumbStop ends raw breadcrumb accumulation.
	BreadcrumbStop []string `yaml:"breadcrumb_stop"`

	// TitleCells locate the title inside a table cell.
	TitleCells []string `yaml:"title_cells"`
	// TitlePrefixes mark a paragraph that carries the title inline.
	TitlePrefixes []string `yaml:"title_prefixes"`
	// TitleForecastWord qualifies a filename-prefixed paragraph as a title.
	TitleForecastWord string `yaml:"title_forecast_word"`

	// CoverageKeywords identify the coverage table by its first row.
	CoverageKeywords []string `yaml:"coverage_keywords"`

	AttributeHeader string `yaml:"attribute_header"`
	ValueHeader     string `yaml:"value_header"`
	// ForecastAttribute is the attribute whose value feeds the SEO title.
	ForecastAttribute string `yaml:"forecast_attribute"`

	// MetaAnchor is the paragraph phrase after which the meta description starts.
	MetaAnchor string `yaml:"meta_anchor"`
}

// DefaultPhrases returns the phrase table for the market report template.
func DefaultPhrases() Phrases {
	return Phrases{
		DescriptionSections: []string{
			"introduction and strategic context",
			"market segmentation and forecast scope",
			"market trends and innovation landscape",
			"competitive intelligence and benchmarking",
			"regional landscape and adoption outlook",
			"end-user dynamics and use case",
			"recent developments + opportunities & restraints",
		},
		DescriptionStop:   "report summary, faqs, and seo schema",
		TOCStart:          "table of contents",
		TOCTail:           "list of figures",
		BreadcrumbStop:    []string{"json copy", "faq schema"},
		TitleCells:        []string{"report title", "full title", "full report title"},
		TitlePrefixes:     []string{"full report title", "full title"},
		TitleForecastWord: "forecast",
		CoverageKeywords:  []string{"report attribute", "report coverage table"},
		AttributeHeader:   "report attribute",
		ValueHeader:       "details",
		ForecastAttribute: "revenue forecast in 2030",
		MetaAnchor:        "introduction",
	}
}

// Merge returns p with every non-empty field of override applied on top.
func (p Phrases) Merge(override Phrases) Phrases {
	if len(override.DescriptionSections) > 0 {
		p.DescriptionSections = override.DescriptionSections
	}
	if override.DescriptionStop != "" {
		p.DescriptionStop = override.DescriptionStop
	}
	if override.TOCStart != "" {
		p.TOCStart = override.TOCStart
	}
	if override.TOCTail != "" {
		p.TOCTail = override.TOCTail
	}
	if len(override.BreadcrumbStop) > 0 {
		p.BreadcrumbStop = override.BreadcrumbStop
	}
	if len(override.TitleCells) > 0 {
		p.TitleCells = override.TitleCells
	}
	if len(override.TitlePrefixes) > 0 {
		p.TitlePrefixes = override.TitlePrefixes
	}
	if override.TitleForecastWord != "" {
		p.TitleForecastWord = override.TitleForecastWord
	}
	if len(override.CoverageKeywords) > 0 {
		p.CoverageKeywords = override.CoverageKeywords
	}
	if override.AttributeHeader != "" {
		p.AttributeHeader = override.AttributeHeader
	}
	if override.ValueHeader != "" {
		p.ValueHeader = override.ValueHeader
	}
	if override.ForecastAttribute != "" {
		p.ForecastAttribute = override.ForecastAttribute
	}
	if override.MetaAnchor != "" {
		p.MetaAnchor = override.MetaAnchor
	}
	return p
}
