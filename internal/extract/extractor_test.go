package extract

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"BondLens/internal/classify"
	"BondLens/internal/holdings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var asOf = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

func writeXLSX(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func newTestExtractor() *Extractor {
	return New(classify.DefaultKeywords())
}

func TestExtractSingleSource(t *testing.T) {
	path := writeXLSX(t, "Portfolio", [][]interface{}{
		{"Monthly Portfolio Disclosure"},
		{},
		{"Name of the Instrument", "ISIN", "Rating", "Quantity", "Market Value", "% to NAV", "Yield"},
		{"7.26% GOI 2033", "IN0020230085", "SOV", "1000", "100.00", "10.00", "7.10"},
		{"HDFC Bank Ltd NCD", "INE040A08567", "CRISIL AAA", "500", "200.00", "20.00", "7.80"},
		{"LIC Housing Finance NCD", "INE115A07OD6", "CRISIL AAA", "300", "300.00", "70.00", "7.95"},
		{"Grand Total", "", "", "", "600.00", "100.00", ""},
	})
	spec := SourceSpec{AMC: "HDFC", FundName: "hdfc-corporate-bond", Unit: "lacs"}

	tables, err := newTestExtractor().Extract(path, spec, asOf)
	require.NoError(t, err)
	require.Len(t, tables, 1)

	table := tables[0]
	// Grand Total carries no ISIN and drops out in default mode.
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "HDFC", table.AMC)
	assert.Equal(t, "hdfc-corporate-bond", table.FundName)

	sum, _ := table.SumPctToNAV().Float64()
	assert.InDelta(t, 100.0, sum, 0.001)
	total, _ := table.TotalMarketValue().Float64()
	assert.InDelta(t, 600.0, total, 0.001)

	h := table.Rows[0]
	assert.Equal(t, "IN0020230085", h.ISIN)
	assert.Equal(t, "7.26% GOI 2033", h.InstrumentName)
	assert.Equal(t, "SOV", h.RatingRaw)
	assert.Equal(t, holdings.ISINSecurity, h.SecurityType)
	assert.Equal(t, asOf, h.AsOfDate)
	require.True(t, h.Quantity.Valid)
	assert.Empty(t, table.ParseFailures)
}

func TestExtractDetectsCroreUnit(t *testing.T) {
	path := writeXLSX(t, "Portfolio", [][]interface{}{
		{"Name of the Instrument", "ISIN", "Market Value (Rs. in Crores)", "% to NAV"},
		{"NABARD Bond", "INE261F08EA8", "5.00", "100.00"},
	})
	spec := SourceSpec{AMC: "ICICI", FundName: "icici-bond"}

	tables, err := newTestExtractor().Extract(path, spec, asOf)
	require.NoError(t, err)

	v, _ := tables[0].Rows[0].MarketValueLacs.Decimal.Float64()
	assert.InDelta(t, 500.0, v, 0.001)
}

func TestExtractMissingColumn(t *testing.T) {
	path := writeXLSX(t, "Portfolio", [][]interface{}{
		{"Name of the Instrument", "ISIN", "% to NAV"},
		{"NABARD Bond", "INE261F08EA8", "100.00"},
	})
	spec := SourceSpec{AMC: "ICICI", FundName: "icici-bond"}

	_, err := newTestExtractor().Extract(path, spec, asOf)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), FieldMarketValue)
}

func TestExtractEnhancedModeKeepsCashAndSummaryRows(t *testing.T) {
	path := writeXLSX(t, "Portfolio", [][]interface{}{
		{"Name of the Instrument", "ISIN", "Market Value", "% to NAV"},
		{"HDFC Bank Ltd NCD", "INE040A08567", "800.00", "80.00"},
		{"TREPS", "", "150.00", "15.00"},
		{"Net Current Assets", "", "50.00", "5.00"},
		{"Grand Total", "", "1000.00", "100.00"},
	})
	spec := SourceSpec{AMC: "ICICI", FundName: "icici-liquid", Unit: "lacs", Enhanced: true}

	tables, err := newTestExtractor().Extract(path, spec, asOf)
	require.NoError(t, err)

	table := tables[0]
	require.Len(t, table.Rows, 4)
	assert.Equal(t, holdings.CashEquivalent, table.Rows[1].SecurityType)
	assert.Equal(t, holdings.SummaryRow, table.Rows[2].SecurityType)
	assert.Equal(t, holdings.SummaryRow, table.Rows[3].SecurityType)

	// Aggregates skip the captured summary rows.
	assert.Len(t, table.Securities(), 2)
	sum, _ := table.SumPctToNAV().Float64()
	assert.InDelta(t, 95.0, sum, 0.001)
}

func TestExtractDomesticOnlyDropsForeignISINs(t *testing.T) {
	path := writeXLSX(t, "Portfolio", [][]interface{}{
		{"Name of the Instrument", "ISIN", "Market Value", "% to NAV"},
		{"HDFC Bank Ltd NCD", "INE040A08567", "600.00", "60.00"},
		{"Apple Inc", "US0378331005", "400.00", "40.00"},
	})
	spec := SourceSpec{AMC: "UTI", FundName: "uti-bond", Unit: "lacs", DomesticOnly: true}

	tables, err := newTestExtractor().Extract(path, spec, asOf)
	require.NoError(t, err)
	require.Len(t, tables[0].Rows, 1)
	assert.Equal(t, "INE040A08567", tables[0].Rows[0].ISIN)
}

func TestExtractRescalesFractionPercentages(t *testing.T) {
	path := writeXLSX(t, "Portfolio", [][]interface{}{
		{"Name of the Instrument", "ISIN", "Market Value", "% to NAV"},
		{"A Bond", "INE040A08567", "100.00", "0.10"},
		{"B Bond", "INE115A07OD6", "200.00", "0.20"},
		{"C Bond", "INE261F08EA8", "700.00", "0.70"},
	})
	spec := SourceSpec{AMC: "SBI", FundName: "sbi-bond", Unit: "lacs"}

	tables, err := newTestExtractor().Extract(path, spec, asOf)
	require.NoError(t, err)

	sum, _ := tables[0].SumPctToNAV().Float64()
	assert.InDelta(t, 100.0, sum, 0.001)
	nav, _ := tables[0].Rows[0].PctToNAV.Decimal.Float64()
	assert.InDelta(t, 10.0, nav, 0.001)
}

func TestExtractPositionalColumns(t *testing.T) {
	path := writeXLSX(t, "Portfolio", [][]interface{}{
		{"col a", "col b", "col c", "col d"},
		{"HDFC Bank Ltd NCD", "INE040A08567", "600.00", "60.00"},
		{"LIC Housing NCD", "INE115A07OD6", "400.00", "40.00"},
	})
	spec := SourceSpec{
		AMC: "SBI", FundName: "sbi-bond", Unit: "lacs",
		HeaderRow: 1, Positional: true,
		Positions: map[string]int{
			FieldInstrument:  0,
			FieldISIN:        1,
			FieldMarketValue: 2,
			FieldPctToNAV:    3,
		},
	}

	tables, err := newTestExtractor().Extract(path, spec, asOf)
	require.NoError(t, err)
	require.Len(t, tables[0].Rows, 2)
	total, _ := tables[0].TotalMarketValue().Float64()
	assert.InDelta(t, 1000.0, total, 0.001)
}

func TestExtractCountsUnparseableCells(t *testing.T) {
	path := writeXLSX(t, "Portfolio", [][]interface{}{
		{"Name of the Instrument", "ISIN", "Market Value", "% to NAV", "Yield"},
		{"A Bond", "INE040A08567", "N.A.", "60.00", "refer note"},
		{"B Bond", "INE115A07OD6", "400.00", "40.00", "7.50"},
	})
	spec := SourceSpec{AMC: "SBI", FundName: "sbi-bond", Unit: "lacs"}

	tables, err := newTestExtractor().Extract(path, spec, asOf)
	require.NoError(t, err)

	table := tables[0]
	require.Len(t, table.Rows, 2)
	assert.False(t, table.Rows[0].MarketValueLacs.Valid)
	assert.Equal(t, 1, table.ParseFailures[FieldMarketValue])
	assert.Equal(t, 1, table.ParseFailures[FieldYield])
}

func TestExtractNoValidRows(t *testing.T) {
	path := writeXLSX(t, "Portfolio", [][]interface{}{
		{"Name of the Instrument", "ISIN", "Market Value", "% to NAV"},
		{"Grand Total", "", "600.00", "100.00"},
	})
	spec := SourceSpec{AMC: "SBI", FundName: "sbi-bond", Unit: "lacs"}

	_, err := newTestExtractor().Extract(path, spec, asOf)
	assert.ErrorIs(t, err, ErrNoValidRows)
}

func TestExtractSchemes(t *testing.T) {
	path := writeXLSX(t, "All Schemes", [][]interface{}{
		{"SCHEME: UTI Liquid Fund"},
		{},
		{},
		{"Name of the Instrument", "ISIN", "Market Value", "% to NAV"},
		{},
		{"91 Days Treasury Bill", "IN002026X012", "500.00", "50.00"},
		{"HDFC Bank CD", "INE040A16AB3", "500.00", "50.00"},
		{},
		{"SCHEME: UTI Gilt Fund"},
		{},
		{},
		{"Name of the Instrument", "ISIN", "Market Value", "% to NAV"},
		{},
		{"7.26% GOI 2033", "IN0020230085", "1000.00", "100.00"},
	})
	spec := SourceSpec{AMC: "UTI", Unit: "lacs", SchemeDetection: true}

	tables, err := newTestExtractor().Extract(path, spec, asOf)
	require.NoError(t, err)
	require.Len(t, tables, 2)

	assert.Equal(t, "UTI Liquid Fund", tables[0].FundName)
	assert.Len(t, tables[0].Rows, 2)
	assert.Equal(t, "UTI Gilt Fund", tables[1].FundName)
	assert.Len(t, tables[1].Rows, 1)
	assert.Equal(t, "UTI Liquid Fund", tables[0].Rows[0].FundName)
}

func TestExtractSchemesNoMarker(t *testing.T) {
	path := writeXLSX(t, "All Schemes", [][]interface{}{
		{"Name of the Instrument", "ISIN", "Market Value", "% to NAV"},
		{"7.26% GOI 2033", "IN0020230085", "1000.00", "100.00"},
	})
	spec := SourceSpec{AMC: "UTI", Unit: "lacs", SchemeDetection: true}

	_, err := newTestExtractor().Extract(path, spec, asOf)
	assert.ErrorIs(t, err, ErrSchemeNotFound)
}

func TestFindSchemeSpans(t *testing.T) {
	rows := [][]string{
		{"SCHEME: Alpha"},
		{"data"},
		{"SCHEME: Beta"},
		{"data"},
		{"data"},
	}
	spans := findSchemeSpans(rows, "SCHEME:")
	require.Len(t, spans, 2)
	assert.Equal(t, schemeSpan{Name: "Alpha", Start: 0, End: 2}, spans[0])
	assert.Equal(t, schemeSpan{Name: "Beta", Start: 2, End: 5}, spans[1])
}

func TestCategorizeScheme(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"UTI Liquid Fund", "liquid"},
		{"UTI Overnight Fund", "liquid"},
		{"ABC Money Market Fund", "money-market"},
		{"ABC Ultra Short Duration Fund", "ultra-short"},
		{"ABC Gilt Fund", "gilt"},
		{"ABC Banking & PSU Debt Fund", "banking-psu"},
		{"ABC Balanced Advantage", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategorizeScheme(tt.name), tt.name)
	}
}

func TestResolveSheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Index"))
	_, err := f.NewSheet("Portfolio Mar 2026")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Portfolio Mar 2026", "A1",
		&[]interface{}{"Name of the Instrument", "ISIN", "Market Value", "% to NAV"}))
	path := filepath.Join(t.TempDir(), "multi.xlsx")
	require.NoError(t, f.SaveAs(path))

	wb, err := OpenWorkbook(path)
	require.NoError(t, err)

	got, err := wb.ResolveSheet("portfolio")
	require.NoError(t, err)
	assert.Equal(t, "Portfolio Mar 2026", got)

	got, err = wb.ResolveSheet("Index")
	require.NoError(t, err)
	assert.Equal(t, "Index", got)

	// Unmatched hints fall back to the first sheet.
	got, err = wb.ResolveSheet("does not exist")
	require.NoError(t, err)
	assert.Equal(t, "Index", got)
}

func TestOpenWorkbookCSVFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	data := "Name of the Instrument,ISIN,Market Value,% to NAV\n" +
		"HDFC Bank Ltd NCD,INE040A08567,600.00,60.00\n" +
		"LIC Housing NCD,INE115A07OD6,400.00,40.00\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	spec := SourceSpec{AMC: "AXIS", FundName: "axis-bond", Unit: "lacs"}
	tables, err := newTestExtractor().Extract(path, spec, asOf)
	require.NoError(t, err)
	require.Len(t, tables[0].Rows, 2)
	total, _ := tables[0].TotalMarketValue().Float64()
	assert.InDelta(t, 1000.0, total, 0.001)
}

func TestFindHeaderRowScansLeadingRows(t *testing.T) {
	rows := [][]string{
		{"Fund House Disclosure"},
		{""},
		{"Name of the Instrument", "ISIN Code", "Market Value", "% to Net Assets"},
	}
	idx, err := findHeaderRow(rows, SourceSpec{})
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = findHeaderRow([][]string{{"no headers here"}}, SourceSpec{})
	assert.ErrorIs(t, err, ErrHeaderNotFound)
}
