package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"BondLens/internal/holdings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// WriteAggregatesWorkbook renders the per-AMC breakdown workbook: one
// summary sheet with weighted-average yields, then instrument-type, rating
// and maturity-bucket breakdowns of the consolidated set.
func WriteAggregatesWorkbook(path string, consolidated *holdings.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, consolidated); err != nil {
		return err
	}
	breakdowns := []struct {
		sheet string
		key   func(h holdings.Holding) string
	}{
		{"By Instrument Type", func(h holdings.Holding) string { return h.InstrumentType }},
		{"By Rating", func(h holdings.Holding) string {
			if h.RatingStandardized == "" {
				return "Unrated"
			}
			return h.RatingStandardized
		}},
		{"By Maturity Bucket", func(h holdings.Holding) string { return h.MaturityBucket }},
	}
	for _, b := range breakdowns {
		if err := writeBreakdownSheet(f, b.sheet, consolidated, b.key); err != nil {
			return err
		}
	}
	f.DeleteSheet("Sheet1")
	return f.SaveAs(path)
}

func writeSummarySheet(f *excelize.File, t *holdings.Table) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := []interface{}{"AMC", "Fund", "Holdings", "Market Value (Lacs)", "Weighted Avg Yield %"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	type key struct{ amc, fund string }
	type agg struct {
		n             int
		value         decimal.Decimal
		yieldWeighted decimal.Decimal
		yieldBase     decimal.Decimal
	}
	groups := make(map[key]*agg)
	for _, h := range t.Securities() {
		k := key{h.AMC, h.FundName}
		a := groups[k]
		if a == nil {
			a = &agg{}
			groups[k] = a
		}
		a.n++
		if h.MarketValueLacs.Valid {
			a.value = a.value.Add(h.MarketValueLacs.Decimal)
			if h.YieldPct.Valid {
				a.yieldWeighted = a.yieldWeighted.Add(h.YieldPct.Decimal.Mul(h.MarketValueLacs.Decimal))
				a.yieldBase = a.yieldBase.Add(h.MarketValueLacs.Decimal)
			}
		}
	}
	keys := make([]key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].amc != keys[j].amc {
			return keys[i].amc < keys[j].amc
		}
		return keys[i].fund < keys[j].fund
	})
	for i, k := range keys {
		a := groups[k]
		wavg := ""
		if a.yieldBase.IsPositive() {
			wavg = a.yieldWeighted.Div(a.yieldBase).Round(2).String()
		}
		row := []interface{}{k.amc, k.fund, a.n, a.value.Round(2).String(), wavg}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func writeBreakdownSheet(f *excelize.File, sheet string, t *holdings.Table, keyFn func(holdings.Holding) string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := []interface{}{"Bucket", "Holdings", "Market Value (Lacs)", "% of Total"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	counts := make(map[string]int)
	values := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, h := range t.Securities() {
		k := keyFn(h)
		if k == "" {
			k = "Other"
		}
		counts[k]++
		if h.MarketValueLacs.Valid {
			values[k] = values[k].Add(h.MarketValueLacs.Decimal)
			total = total.Add(h.MarketValueLacs.Decimal)
		}
	}
	buckets := make([]string, 0, len(counts))
	for k := range counts {
		buckets = append(buckets, k)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return values[buckets[i]].GreaterThan(values[buckets[j]])
	})
	for i, b := range buckets {
		pct := ""
		if total.IsPositive() {
			pct = values[b].Div(total).Mul(decimal.NewFromInt(100)).Round(2).String()
		}
		row := []interface{}{b, counts[b], values[b].Round(2).String(), pct}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}
