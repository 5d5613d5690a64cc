package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/reportgest/internal/marker"
)

// ErrPhrasesNotFound is returned when the configured phrase file is missing.
var ErrPhrasesNotFound = errors.New("phrase file not found")

// LoadPhrases reads a YAML phrase table from path and merges it over the
// defaults. An empty path returns the defaults.
func LoadPhrases(path string) (marker.Phrases, error) {
	def := marker.DefaultPhrases()
	if path == "" {
		return def, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return def, fmt.Errorf("%w: %s", ErrPhrasesNotFound, path)
		}
		return def, fmt.Errorf("read phrase file: %w", err)
	}

	var override marker.Phrases
	if err := yaml.Unmarshal(data, &override); err != nil {
		return def, fmt.Errorf("parse phrase file %s: %w", path, err)
	}
	return def.Merge(lowerPhrases(override)), nil
}

// lowerPhrases lower-cases every phrase; matching is done on lowered text.
func lowerPhrases(p marker.Phrases) marker.Phrases {
	lowerAll := func(in []string) []string {
		out := make([]string, len(in))
		for i, s := range in {
			out[i] = strings.ToLower(strings.TrimSpace(s))
		}
		return out
	}
	lower := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

	p.DescriptionSections = lowerAll(p.DescriptionSections)
	p.DescriptionStop = lower(p.DescriptionStop)
	p.TOCStart = lower(p.TOCStart)
	p.TOCTail = lower(p.TOCTail)
	p.BreadcrumbStop = lowerAll(p.BreadcrumbStop)
	p.TitleCells = lowerAll(p.TitleCells)
	p.TitlePrefixes = lowerAll(p.TitlePrefixes)
	p.TitleForecastWord = lower(p.TitleForecastWord)
	p.CoverageKeywords = lowerAll(p.CoverageKeywords)
	p.AttributeHeader = lower(p.AttributeHeader)
	p.ValueHeader = lower(p.ValueHeader)
	p.ForecastAttribute = lower(p.ForecastAttribute)
	p.MetaAnchor = lower(p.MetaAnchor)
	return p
}
