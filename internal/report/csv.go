package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"BondLens/internal/holdings"

	"github.com/shopspring/decimal"
)

var canonicalHeader = []string{
	"fund_name", "amc", "isin", "instrument_name", "market_value_lacs",
	"pct_to_nav", "yield_pct", "rating_raw", "rating_standardized",
	"quantity", "maturity_date", "as_of_date", "security_type",
	"issuer_name", "instrument_type", "maturity_bucket",
}

// WriteCanonicalCSV serializes a table to the canonical flat file, one row
// per holding with a header row. The file is overwritten on each run, never
// appended.
func WriteCanonicalCSV(path string, table *holdings.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create canonical csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(canonicalHeader); err != nil {
		return err
	}
	for _, h := range table.Rows {
		maturity := ""
		if h.MaturityDate != nil {
			maturity = h.MaturityDate.Format("2006-01-02")
		}
		record := []string{
			h.FundName,
			h.AMC,
			h.ISIN,
			h.InstrumentName,
			nullDecimalString(h.MarketValueLacs),
			nullDecimalString(h.PctToNAV),
			nullDecimalString(h.YieldPct),
			h.RatingRaw,
			h.RatingStandardized,
			nullDecimalString(h.Quantity),
			maturity,
			h.AsOfDate.Format("2006-01-02"),
			string(h.SecurityType),
			h.IssuerName,
			h.InstrumentType,
			h.MaturityBucket,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func nullDecimalString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
