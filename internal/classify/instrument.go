package classify

import (
	"strings"

	"BondLens/internal/holdings"
	"BondLens/internal/normalize"
)

// Instrument buckets a holding into the coarse instrument taxonomy used by
// the aggregates workbook. Checked in order of specificity.
func Instrument(h holdings.Holding) string {
	name := strings.ToLower(normalize.CleanText(h.InstrumentName))
	switch {
	case h.SecurityType == holdings.CashEquivalent:
		return "Overnight"
	case strings.Contains(name, "treasury bill") || strings.Contains(name, "t-bill") || strings.Contains(name, "tbill") || strings.Contains(name, " tb "):
		return "T-Bill"
	case strings.Contains(name, "sdl") || strings.Contains(name, "state development loan"):
		return "SDL"
	case strings.Contains(name, "goi") || strings.Contains(name, "g-sec") || strings.Contains(name, "gsec") || strings.Contains(name, "government of india"):
		return "G-Sec"
	case strings.Contains(name, "commercial paper") || hasWord(name, "cp"):
		return "CP"
	case strings.Contains(name, "certificate of deposit") || hasWord(name, "cd"):
		return "CD"
	case strings.Contains(name, "at1") || strings.Contains(name, "tier ii") || strings.Contains(name, "tier 2") || strings.Contains(name, "tier-2") || strings.Contains(name, "perpetual"):
		return "AT1/Tier-2"
	default:
		return "Corporate Bond"
	}
}

// MaturityBucket places a holding into a residual-maturity band relative to
// the as-of date. Perpetual or undated paper lands in its own band.
func MaturityBucket(h holdings.Holding) string {
	if h.MaturityDate == nil {
		return "Perpetual/NA"
	}
	years := h.MaturityDate.Sub(h.AsOfDate).Hours() / (24 * 365.25)
	switch {
	case years < 1:
		return "<1Y"
	case years < 3:
		return "1-3Y"
	case years < 5:
		return "3-5Y"
	case years < 7:
		return "5-7Y"
	case years < 10:
		return "7-10Y"
	default:
		return ">10Y"
	}
}

func hasWord(name, w string) bool {
	for _, f := range strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '-' || r == '(' || r == ')'
	}) {
		if f == w {
			return true
		}
	}
	return false
}

// Enrich fills the derived fields on a holding in place of the extractor,
// after classification and rating standardization are done.
func Enrich(h *holdings.Holding, kw Keywords) {
	h.IssuerName = Issuer(h.InstrumentName, kw)
	h.InstrumentType = Instrument(*h)
	h.MaturityBucket = MaturityBucket(*h)
}
