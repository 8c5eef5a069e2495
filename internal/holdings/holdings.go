package holdings

import (
	"time"

	"github.com/shopspring/decimal"
)

// SecurityType tags a portfolio line with its coarse instrument category.
type SecurityType string

const (
	SummaryRow       SecurityType = "summary_row"
	CashEquivalent   SecurityType = "cash_equivalent"
	Derivative       SecurityType = "derivative"
	SpecialSituation SecurityType = "special_situation"
	ISINSecurity     SecurityType = "isin_security"
	OtherSecurity    SecurityType = "other_security"
)

// Holding is one normalized portfolio line item. Monetary values are in lacs
// regardless of how the source reported them. Fields a source may omit or
// garble carry null instead of a zero value, so coverage checks can see the
// gap instead of a silent zero.
type Holding struct {
	FundName           string
	AMC                string
	ISIN               string
	InstrumentName     string
	MarketValueLacs    decimal.NullDecimal
	PctToNAV           decimal.NullDecimal
	YieldPct           decimal.NullDecimal
	RatingRaw          string
	RatingStandardized string
	Quantity           decimal.NullDecimal
	MaturityDate       *time.Time
	AsOfDate           time.Time
	SecurityType       SecurityType

	// Enrichment fields, derived after extraction.
	IssuerName     string
	InstrumentType string
	MaturityBucket string
}

// Table is one source's canonical output, or the consolidated set.
// ParseFailures counts cells that were present but unparseable, per
// canonical field; the extractor degrades those cells to null and the
// validator surfaces the count.
type Table struct {
	AMC           string
	FundName      string
	Rows          []Holding
	ParseFailures map[string]int
}

// Securities returns the rows that represent actual holdings, excluding
// subtotal/grand-total rows captured by range scanning. Every aggregate over
// a table must go through this.
func (t *Table) Securities() []Holding {
	out := make([]Holding, 0, len(t.Rows))
	for _, h := range t.Rows {
		if h.SecurityType == SummaryRow {
			continue
		}
		out = append(out, h)
	}
	return out
}

// TotalMarketValue sums market value over non-summary rows.
func (t *Table) TotalMarketValue() decimal.Decimal {
	total := decimal.Zero
	for _, h := range t.Securities() {
		if h.MarketValueLacs.Valid {
			total = total.Add(h.MarketValueLacs.Decimal)
		}
	}
	return total
}

// SumPctToNAV sums the NAV percentage over non-summary rows with a value.
func (t *Table) SumPctToNAV() decimal.Decimal {
	total := decimal.Zero
	for _, h := range t.Securities() {
		if h.PctToNAV.Valid {
			total = total.Add(h.PctToNAV.Decimal)
		}
	}
	return total
}

// Coverage returns the non-null fraction for the named column over
// non-summary rows. Returns 1 for an empty table so an empty extract does
// not masquerade as a coverage failure (the zero-rows case is its own gate).
func (t *Table) Coverage(column string) float64 {
	rows := t.Securities()
	if len(rows) == 0 {
		return 1
	}
	n := 0
	for _, h := range rows {
		if columnPresent(h, column) {
			n++
		}
	}
	return float64(n) / float64(len(rows))
}

func columnPresent(h Holding, column string) bool {
	switch column {
	case "isin":
		return h.ISIN != ""
	case "instrument_name":
		return h.InstrumentName != ""
	case "market_value_lacs":
		return h.MarketValueLacs.Valid
	case "pct_to_nav":
		return h.PctToNAV.Valid
	case "yield_pct":
		return h.YieldPct.Valid
	case "rating_raw":
		return h.RatingRaw != ""
	case "rating_standardized":
		return h.RatingStandardized != ""
	case "quantity":
		return h.Quantity.Valid
	case "maturity_date":
		return h.MaturityDate != nil
	}
	return false
}
