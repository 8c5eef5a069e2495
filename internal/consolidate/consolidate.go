package consolidate

import (
	"BondLens/internal/classify"
	"BondLens/internal/holdings"
	"BondLens/internal/rating"
)

// Consolidate concatenates per-source canonical tables into one dataset,
// stamping AMC and fund name on rows missing them, and standardizes the
// rating column for the whole set in one pass so rating-coverage statistics
// are computed post-consolidation. Nothing is deduplicated here: duplicate
// semantics belong to the validator, because a duplicate ISIN across AMCs
// is expected while one within a single extract may be a bug.
func Consolidate(tables []*holdings.Table, ratingCfg rating.Config, kw classify.Keywords) *holdings.Table {
	out := &holdings.Table{
		AMC:           "ALL",
		FundName:      "consolidated",
		ParseFailures: make(map[string]int),
	}
	for _, t := range tables {
		for field, n := range t.ParseFailures {
			out.ParseFailures[field] += n
		}
		for _, h := range t.Rows {
			if h.AMC == "" {
				h.AMC = t.AMC
			}
			if h.FundName == "" {
				h.FundName = t.FundName
			}
			h.RatingStandardized = rating.Standardize(h.RatingRaw, h.InstrumentName, ratingCfg)
			classify.Enrich(&h, kw)
			out.Rows = append(out.Rows, h)
		}
	}
	return out
}
