package quality

import (
	"fmt"
	"sort"
	"time"

	"BondLens/internal/extract"
	"BondLens/internal/holdings"
	"BondLens/internal/normalize"
	"BondLens/internal/rating"

	"github.com/shopspring/decimal"
)

// Validator runs the nine data-quality gates over the per-source tables and
// the consolidated dataset. Gates are independent and all run even when an
// earlier one fails; a gate whose own precondition is unmet (consolidated
// table absent) reports a critical failure for itself and is skipped.
type Validator struct {
	thresholds Thresholds
	ratingCfg  rating.Config
}

func NewValidator(t Thresholds, rc rating.Config) *Validator {
	return &Validator{thresholds: t, ratingCfg: rc}
}

// Validate produces one verdict for one dataset snapshot.
func (v *Validator) Validate(sources []*holdings.Table, consolidated *holdings.Table, asOf time.Time) *Verdict {
	verdict := &Verdict{}
	verdict.add(v.gateDateIntegrity(sources, asOf))
	verdict.add(v.gateNAVSanity(sources))
	verdict.add(v.gateDuplicateISIN(sources))
	verdict.add(v.gateISINFormat(consolidated))
	verdict.add(v.gateTypeRange(sources, consolidated))
	verdict.add(v.gateOutliers(consolidated))
	verdict.add(v.gateCoverage(sources))
	verdict.add(v.gateBusinessLogic(sources, consolidated))
	verdict.add(v.gateRatingQuality(consolidated))

	verdict.Passed = true
	for _, g := range verdict.Gates {
		if !g.Passed {
			verdict.Passed = false
		}
	}
	return verdict
}

func missingConsolidated(name string) GateResult {
	return GateResult{
		Name:     name,
		Critical: []string{"consolidated dataset absent; gate skipped"},
	}
}

func sourceLabel(t *holdings.Table) string {
	if t.FundName != "" {
		return t.AMC + "/" + t.FundName
	}
	return t.AMC
}

// Gate 1: maturity dates parse, and no date sits an implausible distance
// from the as-of date.
func (v *Validator) gateDateIntegrity(sources []*holdings.Table, asOf time.Time) GateResult {
	g := GateResult{Name: "date_integrity"}
	for _, t := range sources {
		if n := t.ParseFailures[extract.FieldMaturityDate]; n > 0 {
			g.Critical = append(g.Critical,
				fmt.Sprintf("%s: %d unparseable maturity dates", sourceLabel(t), n))
		}
		for _, h := range t.Securities() {
			if h.MaturityDate == nil {
				continue
			}
			years := h.MaturityDate.Sub(asOf).Hours() / (24 * 365.25)
			if years > v.thresholds.MaxMaturityYears {
				g.Warnings = append(g.Warnings,
					fmt.Sprintf("%s: maturity %s on %q is %.0f years past as-of",
						sourceLabel(t), h.MaturityDate.Format("2006-01-02"), h.InstrumentName, years))
			} else if years < -v.thresholds.MaxMaturityYears {
				g.Warnings = append(g.Warnings,
					fmt.Sprintf("%s: maturity %s on %q is far in the past",
						sourceLabel(t), h.MaturityDate.Format("2006-01-02"), h.InstrumentName))
			}
		}
	}
	return g
}

// Gate 2: each source's pct_to_nav sum lies in the configured band, with no
// negative percentages.
func (v *Validator) gateNAVSanity(sources []*holdings.Table) GateResult {
	g := GateResult{Name: "nav_sanity"}
	for _, t := range sources {
		label := sourceLabel(t)
		rows := t.Securities()
		valid := 0
		for _, h := range rows {
			if h.PctToNAV.Valid {
				valid++
				nav, _ := h.PctToNAV.Decimal.Float64()
				if nav < 0 {
					g.Critical = append(g.Critical,
						fmt.Sprintf("%s: negative pct_to_nav %.4f on %q", label, nav, h.InstrumentName))
				} else if nav > v.thresholds.SingleNAVWarn {
					g.Warnings = append(g.Warnings,
						fmt.Sprintf("%s: holding %q at %.2f%% of NAV", label, h.InstrumentName, nav))
				}
			}
		}
		if valid == 0 {
			g.Critical = append(g.Critical, fmt.Sprintf("%s: pct_to_nav column missing or empty", label))
			continue
		}
		sum, _ := t.SumPctToNAV().Float64()
		if sum < v.thresholds.NAVSumMin || sum > v.thresholds.NAVSumMax {
			g.Critical = append(g.Critical,
				fmt.Sprintf("%s: pct_to_nav sums to %.2f, outside [%.0f, %.0f]",
					label, sum, v.thresholds.NAVSumMin, v.thresholds.NAVSumMax))
		}
	}
	return g
}

// Gate 3: a repeated ISIN inside one source with the same market value is a
// likely extraction bug; with different values it is a legitimate split lot.
// The same ISIN across two AMCs is expected and only noted.
func (v *Validator) gateDuplicateISIN(sources []*holdings.Table) GateResult {
	g := GateResult{Name: "duplicate_isin"}
	holders := make(map[string][]string)
	for _, t := range sources {
		label := sourceLabel(t)
		seen := make(map[string][]decimal.NullDecimal)
		for _, h := range t.Securities() {
			if h.ISIN == "" {
				continue
			}
			seen[h.ISIN] = append(seen[h.ISIN], h.MarketValueLacs)
			if len(seen[h.ISIN]) == 1 {
				holders[h.ISIN] = append(holders[h.ISIN], label)
			}
		}
		for isin, values := range seen {
			if len(values) < 2 {
				continue
			}
			sameValue := false
			for i := 0; i < len(values) && !sameValue; i++ {
				for j := i + 1; j < len(values); j++ {
					if values[i].Valid && values[j].Valid && values[i].Decimal.Equal(values[j].Decimal) {
						sameValue = true
						break
					}
				}
			}
			if sameValue {
				g.Critical = append(g.Critical,
					fmt.Sprintf("%s: ISIN %s appears %d times with identical market value", label, isin, len(values)))
			} else {
				g.Warnings = append(g.Warnings,
					fmt.Sprintf("%s: ISIN %s appears %d times with differing market values (split lot)", label, isin, len(values)))
			}
		}
	}
	for isin, srcs := range holders {
		if len(srcs) > 1 {
			g.Info = append(g.Info,
				fmt.Sprintf("ISIN %s held by %d sources (expected overlap)", isin, len(srcs)))
		}
	}
	sort.Strings(g.Critical)
	sort.Strings(g.Warnings)
	sort.Strings(g.Info)
	return g
}

// Gate 4: every non-null ISIN is structurally valid, and rows meant to
// carry one do.
func (v *Validator) gateISINFormat(consolidated *holdings.Table) GateResult {
	if consolidated == nil {
		return missingConsolidated("isin_format")
	}
	g := GateResult{Name: "isin_format"}
	malformed, missing := 0, 0
	for _, h := range consolidated.Securities() {
		if h.ISIN != "" && !normalize.IsValidISIN(h.ISIN) {
			malformed++
		}
		if h.ISIN == "" && (h.SecurityType == holdings.ISINSecurity || h.SecurityType == holdings.OtherSecurity) {
			missing++
		}
	}
	if malformed > 0 {
		g.Critical = append(g.Critical, fmt.Sprintf("%d malformed ISINs in consolidated dataset", malformed))
	}
	if missing > 0 {
		g.Critical = append(g.Critical, fmt.Sprintf("%d security rows missing an ISIN", missing))
	}
	return g
}

// Gate 5: numeric columns parsed cleanly and hold plausible signs.
func (v *Validator) gateTypeRange(sources []*holdings.Table, consolidated *holdings.Table) GateResult {
	g := GateResult{Name: "type_range_integrity"}
	for _, t := range sources {
		label := sourceLabel(t)
		for _, field := range []string{extract.FieldMarketValue, extract.FieldPctToNAV, extract.FieldYield, extract.FieldQuantity} {
			if n := t.ParseFailures[field]; n > 0 {
				g.Critical = append(g.Critical,
					fmt.Sprintf("%s: %d unparseable %s cells", label, n, field))
			}
		}
	}
	if consolidated == nil {
		g.Critical = append(g.Critical, "consolidated dataset absent; range checks skipped")
		return g
	}
	for _, h := range consolidated.Securities() {
		if h.MarketValueLacs.Valid && h.MarketValueLacs.Decimal.IsNegative() {
			g.Critical = append(g.Critical,
				fmt.Sprintf("%s: negative market value on %q", h.AMC, h.InstrumentName))
		}
		if h.YieldPct.Valid {
			y, _ := h.YieldPct.Decimal.Float64()
			if y < 0 {
				g.Critical = append(g.Critical,
					fmt.Sprintf("%s: negative yield %.4f on %q", h.AMC, y, h.InstrumentName))
			} else if y > v.thresholds.SingleYieldHigh {
				g.Warnings = append(g.Warnings,
					fmt.Sprintf("%s: yield %.2f%% on %q looks extreme", h.AMC, y, h.InstrumentName))
			}
		}
		if h.PctToNAV.Valid {
			nav, _ := h.PctToNAV.Decimal.Float64()
			if nav > v.thresholds.SingleNAVHigh {
				g.Warnings = append(g.Warnings,
					fmt.Sprintf("%s: pct_to_nav %.2f%% on %q looks extreme", h.AMC, nav, h.InstrumentName))
			}
		}
	}
	return g
}

// Gate 6: extreme single-name concentration is critical; statistical value
// outliers are warnings.
func (v *Validator) gateOutliers(consolidated *holdings.Table) GateResult {
	if consolidated == nil {
		return missingConsolidated("outlier_detection")
	}
	g := GateResult{Name: "outlier_detection"}
	var values []float64
	for _, h := range consolidated.Securities() {
		if h.PctToNAV.Valid {
			nav, _ := h.PctToNAV.Decimal.Float64()
			if nav > v.thresholds.MaxSingleNAV {
				g.Critical = append(g.Critical,
					fmt.Sprintf("%s: holding %q at %.2f%% of NAV exceeds %.0f%% concentration ceiling",
						h.AMC, h.InstrumentName, nav, v.thresholds.MaxSingleNAV))
			}
		}
		if h.MarketValueLacs.Valid {
			f, _ := h.MarketValueLacs.Decimal.Float64()
			values = append(values, f)
		}
	}
	if len(values) >= 10 {
		p99 := percentile(values, 0.99)
		limit := p99 * v.thresholds.OutlierP99Mul
		for _, h := range consolidated.Securities() {
			if !h.MarketValueLacs.Valid {
				continue
			}
			f, _ := h.MarketValueLacs.Decimal.Float64()
			if f > limit {
				g.Warnings = append(g.Warnings,
					fmt.Sprintf("%s: market value %.0f lacs on %q exceeds %.1fx the 99th percentile",
						h.AMC, f, h.InstrumentName, v.thresholds.OutlierP99Mul))
			}
		}
	}
	return g
}

// Gate 7: per-column coverage per source. Misses on 100%-required columns
// are critical; softer thresholds log as findings without blocking. Average
// and minimum coverage across sources are always reported.
func (v *Validator) gateCoverage(sources []*holdings.Table) GateResult {
	g := GateResult{Name: "coverage"}
	columns := make([]string, 0, len(v.thresholds.Coverage))
	for c := range v.thresholds.Coverage {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	for _, col := range columns {
		min, sum, n := 1.0, 0.0, 0
		threshold := v.thresholds.Coverage[col]
		for _, t := range sources {
			c := t.Coverage(col)
			sum += c
			n++
			if c < min {
				min = c
			}
			if c < threshold {
				msg := fmt.Sprintf("%s: %s coverage %.1f%% below required %.1f%%",
					sourceLabel(t), col, c*100, threshold*100)
				if v.thresholds.RequiresFull(col) {
					g.Critical = append(g.Critical, msg)
				} else {
					g.Warnings = append(g.Warnings, msg)
				}
			}
		}
		if n > 0 {
			g.Info = append(g.Info,
				fmt.Sprintf("%s coverage: avg %.1f%%, min %.1f%% across %d sources",
					col, sum/float64(n)*100, min*100, n))
		}
	}
	return g
}

// Gate 8: portfolio-plausibility findings. Warning-only by design; this
// gate never blocks the overall verdict.
func (v *Validator) gateBusinessLogic(sources []*holdings.Table, consolidated *holdings.Table) GateResult {
	g := GateResult{Name: "business_logic"}
	for _, t := range sources {
		n := len(t.Securities())
		if n < v.thresholds.MinHoldings {
			g.Warnings = append(g.Warnings,
				fmt.Sprintf("%s: only %d holdings, diversification looks thin", sourceLabel(t), n))
		}
		if n > v.thresholds.MaxHoldings {
			g.Warnings = append(g.Warnings,
				fmt.Sprintf("%s: %d holdings, possible duplication", sourceLabel(t), n))
		}
	}
	if consolidated == nil {
		return g
	}
	rows := consolidated.Securities()
	if len(rows) == 0 {
		return g
	}

	yieldSum, yieldN, unrated := 0.0, 0, 0
	navs := make([]float64, 0, len(rows))
	for _, h := range rows {
		if h.YieldPct.Valid {
			y, _ := h.YieldPct.Decimal.Float64()
			yieldSum += y
			yieldN++
		}
		if h.RatingStandardized == "" {
			unrated++
		}
		if h.PctToNAV.Valid {
			nav, _ := h.PctToNAV.Decimal.Float64()
			navs = append(navs, nav)
		}
	}
	if yieldN > 0 {
		avg := yieldSum / float64(yieldN)
		if avg < v.thresholds.YieldPlausibleMin || avg > v.thresholds.YieldPlausibleMax {
			g.Warnings = append(g.Warnings,
				fmt.Sprintf("average yield %.2f%% outside plausible band [%.0f, %.0f]",
					avg, v.thresholds.YieldPlausibleMin, v.thresholds.YieldPlausibleMax))
		}
	}
	if share := float64(unrated) / float64(len(rows)); share > v.thresholds.MaxUnratedShare {
		g.Warnings = append(g.Warnings,
			fmt.Sprintf("%.1f%% of holdings unrated, above %.0f%% ceiling",
				share*100, v.thresholds.MaxUnratedShare*100))
	}
	if len(navs) >= 10 {
		sort.Sort(sort.Reverse(sort.Float64Slice(navs)))
		top10 := 0.0
		for i := 0; i < 10; i++ {
			top10 += navs[i]
		}
		if top10 > v.thresholds.Top10Concentration {
			g.Warnings = append(g.Warnings,
				fmt.Sprintf("top-10 holdings carry %.1f%% of NAV, above %.0f%%",
					top10, v.thresholds.Top10Concentration))
		}
	}
	return g
}

// Gate 9: rating standardization quality over the consolidated set.
func (v *Validator) gateRatingQuality(consolidated *holdings.Table) GateResult {
	if consolidated == nil {
		return missingConsolidated("rating_standardization")
	}
	g := GateResult{Name: "rating_standardization"}
	rows := consolidated.Securities()
	// An empty consolidated set means every extraction failed; that is a
	// produced-nothing run, not a clean one.
	if len(rows) == 0 {
		g.Critical = append(g.Critical, "consolidated dataset holds no security rows")
		return g
	}

	rawN, stdN, junkValue := 0, 0, decimal.Zero
	total := decimal.Zero
	for _, h := range rows {
		if h.RatingRaw != "" {
			rawN++
		}
		if h.RatingStandardized != "" {
			stdN++
			if v.ratingCfg.Rank(h.RatingStandardized) < 0 {
				g.Critical = append(g.Critical,
					fmt.Sprintf("grade %q on %q is outside the canonical vocabulary",
						h.RatingStandardized, h.InstrumentName))
			}
			if h.MarketValueLacs.Valid && v.ratingCfg.IsJunk(h.RatingStandardized) {
				junkValue = junkValue.Add(h.MarketValueLacs.Decimal)
			}
		}
		if h.MarketValueLacs.Valid {
			total = total.Add(h.MarketValueLacs.Decimal)
		}
	}

	if rawN > 0 {
		rate := float64(stdN) / float64(rawN)
		if rate < v.thresholds.MinStandardizationRate {
			g.Critical = append(g.Critical,
				fmt.Sprintf("standardization rate %.1f%% below required %.1f%%",
					rate*100, v.thresholds.MinStandardizationRate*100))
		}
	}
	if share := float64(stdN) / float64(len(rows)); share < v.thresholds.MinStandardizedShare {
		g.Critical = append(g.Critical,
			fmt.Sprintf("standardized-rating coverage %.1f%% below required %.1f%%",
				share*100, v.thresholds.MinStandardizedShare*100))
	}
	if total.IsPositive() {
		junkShare, _ := junkValue.Div(total).Float64()
		if junkShare > v.thresholds.MaxJunkShare {
			g.Critical = append(g.Critical,
				fmt.Sprintf("junk-grade exposure %.1f%% of market value, above %.0f%% ceiling",
					junkShare*100, v.thresholds.MaxJunkShare*100))
		}
	}

	// Spot checks: known agency-prefixed spellings must keep mapping to
	// their expected grades under the live config.
	for _, sc := range []struct{ raw, want string }{
		{"CRISIL AAA (CE)", "AAA"},
		{"ICRA A1+", "A1+"},
		{"SOV", "SOVEREIGN"},
	} {
		if got := rating.Standardize(sc.raw, "", v.ratingCfg); got != sc.want {
			g.Critical = append(g.Critical,
				fmt.Sprintf("spot check: %q standardized to %q, expected %q", sc.raw, got, sc.want))
		}
	}
	return g
}

func percentile(values []float64, p float64) float64 {
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	idx := int(float64(len(s)-1) * p)
	return s[idx]
}
