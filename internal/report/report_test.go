package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"BondLens/internal/holdings"
	"BondLens/internal/quality"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *holdings.Table {
	asOf := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	maturity := time.Date(2033, 6, 10, 0, 0, 0, 0, time.UTC)
	return &holdings.Table{
		AMC:      "ALL",
		FundName: "consolidated",
		Rows: []holdings.Holding{
			{
				FundName: "hdfc-corporate-bond", AMC: "HDFC",
				ISIN: "INE040A08567", InstrumentName: "HDFC Bank Ltd NCD",
				MarketValueLacs:    decimal.NewNullDecimal(decimal.NewFromInt(600)),
				PctToNAV:           decimal.NewNullDecimal(decimal.NewFromInt(60)),
				YieldPct:           decimal.NewNullDecimal(decimal.NewFromFloat(7.8)),
				RatingRaw:          "CRISIL AAA", RatingStandardized: "AAA",
				MaturityDate: &maturity, AsOfDate: asOf,
				SecurityType: holdings.ISINSecurity,
				IssuerName:   "HDFC Bank Ltd", InstrumentType: "Corporate Bond",
				MaturityBucket: "7-10Y",
			},
			{
				FundName: "hdfc-corporate-bond", AMC: "HDFC",
				ISIN: "IN0020230085", InstrumentName: "7.26% GOI 2033",
				MarketValueLacs:    decimal.NewNullDecimal(decimal.NewFromInt(400)),
				PctToNAV:           decimal.NewNullDecimal(decimal.NewFromInt(40)),
				RatingStandardized: "SOVEREIGN",
				AsOfDate:           asOf, SecurityType: holdings.ISINSecurity,
				IssuerName: "Government of India", InstrumentType: "G-Sec",
				MaturityBucket: "7-10Y",
			},
		},
		ParseFailures: map[string]int{},
	}
}

func TestWriteCanonicalCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "canonical_holdings.csv")
	require.NoError(t, WriteCanonicalCSV(path, sampleTable()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, canonicalHeader, records[0])
	assert.Equal(t, "INE040A08567", records[1][2])
	assert.Equal(t, "600", records[1][4])
	assert.Equal(t, "2033-06-10", records[1][10])
	// Null fields serialize as empty strings, not zeros.
	assert.Equal(t, "", records[2][6])
	assert.Equal(t, "", records[2][10])
}

func TestFormatVerdict(t *testing.T) {
	v := &quality.Verdict{
		Gates: []quality.GateResult{
			{Name: "nav_sanity", Passed: true, Info: []string{"all sources in band"}},
			{Name: "duplicate_isin", Passed: false,
				Critical: []string{"HDFC/f1: ISIN INE040A08567 appears 2 times with identical market value"},
				Warnings: []string{"split lot noted"}},
		},
		Passed: false,
	}
	out := FormatVerdict(v)
	assert.Contains(t, out, "DATA QUALITY VERDICT: FAILED (1 critical, 1 warnings)")
	assert.Contains(t, out, "[PASS] nav_sanity")
	assert.Contains(t, out, "[FAIL] duplicate_isin")
	assert.Contains(t, out, "CRITICAL: HDFC/f1: ISIN INE040A08567")
}

func TestWriteRunLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "run_log.json")
	rl := &RunLog{
		RunID:    "run-1",
		AsOfDate: "2026-03-31",
		Sources: []SourceRun{
			{AMC: "HDFC", FundName: "f1", File: "hdfc.xlsx", Rows: 120},
			{AMC: "SBI", File: "sbi.xlsx", Error: "header row not found"},
		},
		TotalRows: 120,
		Passed:    true,
	}
	require.NoError(t, WriteRunLog(path, rl))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got RunLog
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "run-1", got.RunID)
	require.Len(t, got.Sources, 2)
	assert.Equal(t, "header row not found", got.Sources[1].Error)
}

func TestWriteAggregatesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "aggregates.xlsx")
	require.NoError(t, WriteAggregatesWorkbook(path, sampleTable()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
