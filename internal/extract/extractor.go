package extract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"BondLens/internal/classify"
	"BondLens/internal/holdings"
	"BondLens/internal/normalize"

	"github.com/shopspring/decimal"
)

// Structural extraction failures. Reported per source; siblings continue.
var (
	ErrSheetNotFound  = errors.New("no matching sheet in workbook")
	ErrHeaderNotFound = errors.New("header row not found")
	ErrMissingColumn  = errors.New("required column not found")
	ErrSchemeNotFound = errors.New("no scheme marker found in sheet")
	ErrNoValidRows    = errors.New("no valid rows after filtering")
)

// Canonical field keys used in column mappings.
const (
	FieldISIN         = "isin"
	FieldInstrument   = "instrument_name"
	FieldMarketValue  = "market_value"
	FieldPctToNAV     = "pct_to_nav"
	FieldYield        = "yield"
	FieldRating       = "rating"
	FieldQuantity     = "quantity"
	FieldMaturityDate = "maturity_date"
)

// SourceSpec is the declarative per-(AMC, fund) extraction contract, loaded
// from sources.yml. Institution quirks live here, not in code.
type SourceSpec struct {
	AMC      string `yaml:"amc"`
	FundName string `yaml:"fund_name"`
	File     string `yaml:"file"`
	Sheet    string `yaml:"sheet"`

	// HeaderRow is a 1-based fixed index; 0 means detect by scanning.
	HeaderRow int `yaml:"header_row"`

	// Columns maps canonical fields to header names. Positions maps them to
	// 0-based column indexes for sources with unreliable headers.
	Columns    map[string]string `yaml:"columns"`
	Positions  map[string]int    `yaml:"positions"`
	Positional bool              `yaml:"positional"`

	// Unit is lacs, crores or raw; empty means detect from header text.
	Unit string `yaml:"unit"`

	// Enhanced keeps every row with a non-blank instrument name, capturing
	// cash/derivative/summary rows for completeness validation. The default
	// keeps ISIN-bearing rows only.
	Enhanced     bool `yaml:"enhanced"`
	DomesticOnly bool `yaml:"domestic_only"`

	// Scheme-per-block layouts: one sheet holding several funds separated
	// by a recurring marker, with header and data at fixed row offsets
	// below each marker.
	SchemeDetection    bool   `yaml:"scheme_detection"`
	SchemeMarker       string `yaml:"scheme_marker"`
	SchemeHeaderOffset int    `yaml:"scheme_header_offset"`
	SchemeDataOffset   int    `yaml:"scheme_data_offset"`
}

// Extractor turns one workbook into canonical tables. Stateless across
// invocations; each call is a pure function of (file, spec, as-of date).
type Extractor struct {
	Keywords classify.Keywords
}

func New(kw classify.Keywords) *Extractor {
	return &Extractor{Keywords: kw}
}

// Extract processes one source file into canonical tables, one per fund.
// Single-fund layouts yield one table; scheme-per-block layouts yield one
// per detected scheme. Structural problems return a typed error; cell-level
// junk degrades to null fields.
func (e *Extractor) Extract(path string, spec SourceSpec, asOf time.Time) ([]*holdings.Table, error) {
	wb, err := OpenWorkbook(path)
	if err != nil {
		return nil, err
	}
	sheet, err := wb.ResolveSheet(spec.Sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.AMC, err)
	}
	rows := wb.Rows(sheet)

	if spec.SchemeDetection {
		return e.extractSchemes(rows, spec, asOf)
	}

	headerIdx, err := findHeaderRow(rows, spec)
	if err != nil {
		return nil, fmt.Errorf("%s sheet %q: %w", spec.AMC, sheet, err)
	}
	table, err := e.extractRegion(rows, headerIdx, headerIdx+1, len(rows), spec, spec.FundName, asOf)
	if err != nil {
		return nil, err
	}
	return []*holdings.Table{table}, nil
}

// findHeaderRow locates the header: a fixed configured index, or the first
// of the leading rows holding a cell starting with "isin" or containing a
// NAV-percentage label.
func findHeaderRow(rows [][]string, spec SourceSpec) (int, error) {
	if spec.HeaderRow > 0 {
		if spec.HeaderRow > len(rows) {
			return 0, ErrHeaderNotFound
		}
		return spec.HeaderRow - 1, nil
	}
	limit := len(rows)
	if limit > 50 {
		limit = 50
	}
	for i := 0; i < limit; i++ {
		for _, cell := range rows[i] {
			c := normalize.NormAlias(cell)
			if strings.HasPrefix(c, "isin") ||
				strings.Contains(c, "% to nav") ||
				strings.Contains(c, "% to net assets") {
				return i, nil
			}
		}
	}
	return 0, ErrHeaderNotFound
}

// Header aliases shared across AMCs; per-source names come from SourceSpec.
var commonAliases = map[string][]string{
	FieldISIN:         {"isin", "isin code", "isin no", "isin no."},
	FieldInstrument:   {"name of the instrument", "name of instrument", "instrument", "security name", "name of the security", "company/issuer/instrument name", "particulars"},
	FieldMarketValue:  {"market value", "market/fair value", "exposure", "amount"},
	FieldPctToNAV:     {"% to nav", "% to net assets", "% of nav", "% age to nav", "percentage to nav"},
	FieldYield:        {"yield", "ytm", "yield %", "annualised yield", "yield of the instrument", "yield to maturity"},
	FieldRating:       {"rating", "rating / industry", "rating/industry", "industry/rating", "industry / rating"},
	FieldQuantity:     {"quantity", "qty", "no. of units"},
	FieldMaturityDate: {"maturity", "maturity date", "date of maturity"},
}

// Substring fallbacks for headers that drift release to release.
var fuzzyHints = map[string][]string{
	FieldMarketValue:  {"market", "value", "exposure"},
	FieldPctToNAV:     {"nav", "net assets"},
	FieldYield:        {"yield", "ytm"},
	FieldRating:       {"rating"},
	FieldMaturityDate: {"matur"},
	FieldQuantity:     {"quantity", "qty"},
}

var requiredFields = []string{FieldISIN, FieldInstrument, FieldMarketValue}

// resolveColumns maps canonical fields to column indexes for one header row.
// Exact configured name first, then the shared alias table, then substring
// fallback. A missing required column is a structural error naming the field.
func resolveColumns(header []string, spec SourceSpec) (map[string]int, error) {
	if spec.Positional {
		cols := make(map[string]int, len(spec.Positions))
		for field, idx := range spec.Positions {
			cols[field] = idx
		}
		for _, f := range requiredFields {
			if _, ok := cols[f]; !ok {
				return nil, fmt.Errorf("%w: %s (positional)", ErrMissingColumn, f)
			}
		}
		return cols, nil
	}

	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = normalize.NormAlias(h)
	}
	find := func(names []string) int {
		for _, n := range names {
			for i, h := range norm {
				if h == n || strings.HasPrefix(h, n+" (") {
					return i
				}
			}
		}
		return -1
	}

	cols := make(map[string]int)
	for field, aliases := range commonAliases {
		names := aliases
		if cfg, ok := spec.Columns[field]; ok {
			names = append([]string{normalize.NormAlias(cfg)}, aliases...)
		}
		if i := find(names); i >= 0 {
			cols[field] = i
			continue
		}
		if hints, ok := fuzzyHints[field]; ok {
			if i := findBySubstring(norm, hints); i >= 0 {
				cols[field] = i
			}
		}
	}
	for _, f := range requiredFields {
		if _, ok := cols[f]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, f)
		}
	}
	return cols, nil
}

func findBySubstring(norm []string, hints []string) int {
	for i, h := range norm {
		if h == "" {
			continue
		}
		for _, hint := range hints {
			if strings.Contains(h, hint) {
				return i
			}
		}
	}
	return -1
}

// extractRegion converts one header+data slice into a canonical table.
func (e *Extractor) extractRegion(rows [][]string, headerIdx, dataStart, dataEnd int, spec SourceSpec, fundName string, asOf time.Time) (*holdings.Table, error) {
	if headerIdx >= len(rows) {
		return nil, ErrHeaderNotFound
	}
	header := rows[headerIdx]
	cols, err := resolveColumns(header, spec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.AMC, err)
	}

	unit := normalize.Unit(spec.Unit)
	if unit == "" {
		unit = normalize.DetectUnitFromHeaders(headerContext(rows, headerIdx), normalize.UnitRaw)
	}

	table := &holdings.Table{
		AMC:           spec.AMC,
		FundName:      fundName,
		ParseFailures: make(map[string]int),
	}

	cell := func(row []string, field string) (string, bool) {
		idx, ok := cols[field]
		if !ok || idx >= len(row) {
			return "", false
		}
		return row[idx], true
	}

	for r := dataStart; r < dataEnd && r < len(rows); r++ {
		row := rows[r]
		if allEmptyRow(row) {
			continue
		}
		rawISIN, _ := cell(row, FieldISIN)
		rawName, _ := cell(row, FieldInstrument)
		name := normalize.CleanText(rawName)

		isin := ""
		if normalize.IsValidISIN(rawISIN) {
			isin = normalize.NormalizeISIN(rawISIN)
			if spec.DomesticOnly && !normalize.IsIndianISIN(isin) {
				isin = ""
			}
		}

		if spec.Enhanced {
			if name == "" {
				continue
			}
		} else if isin == "" {
			continue
		}

		h := holdings.Holding{
			FundName:       fundName,
			AMC:            spec.AMC,
			ISIN:           isin,
			InstrumentName: name,
			AsOfDate:       asOf,
		}
		h.MarketValueLacs = e.parseMoney(row, cell, table, unit)
		h.PctToNAV = parseField(row, cell, table, FieldPctToNAV)
		h.YieldPct = parseField(row, cell, table, FieldYield)
		h.Quantity = parseField(row, cell, table, FieldQuantity)
		if raw, ok := cell(row, FieldRating); ok {
			h.RatingRaw = normalize.CleanText(raw)
		}
		h.MaturityDate = parseMaturity(row, cell, table, name)
		h.SecurityType = classify.SecurityType(name, isin, e.Keywords)
		table.Rows = append(table.Rows, h)
	}

	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("%s fund %q: %w", spec.AMC, fundName, ErrNoValidRows)
	}

	rescalePercentages(table)
	return table, nil
}

type cellFn func(row []string, field string) (string, bool)

func (e *Extractor) parseMoney(row []string, cell cellFn, table *holdings.Table, unit normalize.Unit) decimal.NullDecimal {
	raw, ok := cell(row, FieldMarketValue)
	if !ok {
		return decimal.NullDecimal{}
	}
	v := normalize.ParseNumeric(raw)
	if !v.Valid {
		if normalize.CleanText(raw) != "" {
			table.ParseFailures[FieldMarketValue]++
		}
		return v
	}
	return decimal.NullDecimal{Decimal: normalize.ToLacs(v.Decimal, unit), Valid: true}
}

func parseField(row []string, cell cellFn, table *holdings.Table, field string) decimal.NullDecimal {
	raw, ok := cell(row, field)
	if !ok {
		return decimal.NullDecimal{}
	}
	v := normalize.ParseNumeric(raw)
	if !v.Valid && normalize.CleanText(raw) != "" {
		table.ParseFailures[field]++
	}
	return v
}

func parseMaturity(row []string, cell cellFn, table *holdings.Table, name string) *time.Time {
	if raw, ok := cell(row, FieldMaturityDate); ok {
		c := normalize.CleanText(raw)
		if c != "" {
			if t, err := normalize.ParseDate(c); err == nil {
				return &t
			}
			table.ParseFailures[FieldMaturityDate]++
		}
	}
	return normalize.ParseMaturityDate(name)
}

// rescalePercentages fixes columns a source stored as 0-1 fractions.
// Detection and correction happen once per column per file, using only this
// file's own data.
func rescalePercentages(table *holdings.Table) {
	nav := make([]decimal.NullDecimal, len(table.Rows))
	yld := make([]decimal.NullDecimal, len(table.Rows))
	for i, h := range table.Rows {
		nav[i] = h.PctToNAV
		yld[i] = h.YieldPct
	}
	nav = normalize.RescaleFraction(nav)
	yld = normalize.RescaleFraction(yld)
	for i := range table.Rows {
		table.Rows[i].PctToNAV = nav[i]
		table.Rows[i].YieldPct = yld[i]
	}
}

// headerContext returns the header row plus the two rows above it, where
// unit labels like "(Rs. in Lacs)" usually sit.
func headerContext(rows [][]string, headerIdx int) []string {
	var out []string
	start := headerIdx - 2
	if start < 0 {
		start = 0
	}
	for i := start; i <= headerIdx && i < len(rows); i++ {
		out = append(out, rows[i]...)
	}
	return out
}

func allEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
