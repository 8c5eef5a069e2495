package extract

import (
	"fmt"
	"strings"
	"time"

	"BondLens/internal/holdings"
	"BondLens/internal/normalize"
)

const (
	defaultSchemeMarker       = "SCHEME:"
	defaultSchemeHeaderOffset = 3
	defaultSchemeDataOffset   = 5
)

// schemeSpan is one fund's block inside a scheme-per-block sheet.
// End is exclusive: the next marker row, or the end of the sheet.
type schemeSpan struct {
	Name  string
	Start int
	End   int
}

// findSchemeSpans scans the first column once and returns the ordered list
// of scheme blocks.
func findSchemeSpans(rows [][]string, marker string) []schemeSpan {
	var spans []schemeSpan
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		c := normalize.CleanText(row[0])
		if !strings.HasPrefix(strings.ToUpper(c), marker) {
			continue
		}
		name := normalize.CleanText(c[len(marker):])
		if len(spans) > 0 {
			spans[len(spans)-1].End = i
		}
		spans = append(spans, schemeSpan{Name: name, Start: i, End: len(rows)})
	}
	return spans
}

// extractSchemes handles sheets carrying several funds separated by a
// recurring marker. Header and data rows sit at fixed offsets below each
// marker; each block becomes its own canonical table. A block that fails
// structurally is reported and does not abort its siblings.
func (e *Extractor) extractSchemes(rows [][]string, spec SourceSpec, asOf time.Time) ([]*holdings.Table, error) {
	marker := strings.ToUpper(spec.SchemeMarker)
	if marker == "" {
		marker = defaultSchemeMarker
	}
	headerOff := spec.SchemeHeaderOffset
	if headerOff == 0 {
		headerOff = defaultSchemeHeaderOffset
	}
	dataOff := spec.SchemeDataOffset
	if dataOff == 0 {
		dataOff = defaultSchemeDataOffset
	}

	spans := findSchemeSpans(rows, marker)
	if len(spans) == 0 {
		return nil, fmt.Errorf("%s: %w", spec.AMC, ErrSchemeNotFound)
	}

	var tables []*holdings.Table
	var errs []string
	for _, span := range spans {
		table, err := e.extractRegion(rows, span.Start+headerOff, span.Start+dataOff, span.End, spec, span.Name, asOf)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		tables = append(tables, table)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("%s: all %d schemes failed: %s", spec.AMC, len(spans), strings.Join(errs, "; "))
	}
	return tables, nil
}

// Scheme categorization keywords routing a scheme name to a fund type, for
// sources that pack every fund of a house into one workbook.
var schemeCategories = []struct {
	fundType string
	keywords []string
}{
	{"liquid", []string{"liquid", "overnight"}},
	{"money-market", []string{"money market"}},
	{"ultra-short", []string{"ultra short", "low duration"}},
	{"short-duration", []string{"short term", "short duration"}},
	{"corporate-bond", []string{"corporate bond", "credit risk", "medium term"}},
	{"gilt", []string{"gilt", "g-sec", "government securities"}},
	{"banking-psu", []string{"banking", "psu"}},
	{"dynamic-bond", []string{"dynamic bond", "income"}},
}

// CategorizeScheme maps a scheme name to a coarse fund type, or "" when no
// keyword matches.
func CategorizeScheme(name string) string {
	n := strings.ToLower(normalize.CleanText(name))
	for _, c := range schemeCategories {
		for _, k := range c.keywords {
			if strings.Contains(n, k) {
				return c.fundType
			}
		}
	}
	return ""
}
