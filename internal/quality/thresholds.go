package quality

// Thresholds is the single home for every validation number. The gates read
// from here only, so policy tuning never touches gate code.
type Thresholds struct {
	// Gate 1: far-future/past maturity band, in years from the as-of date.
	MaxMaturityYears float64 `yaml:"max_maturity_years"`

	// Gate 2: acceptable band for a source's pct_to_nav sum. The upper
	// bound leaves room for cash/derivative exposure missing from
	// ISIN-only extracts.
	NAVSumMin float64 `yaml:"nav_sum_min"`
	NAVSumMax float64 `yaml:"nav_sum_max"`

	// Single-holding warning lines.
	SingleNAVWarn   float64 `yaml:"single_nav_warn"`   // gate 2
	SingleNAVHigh   float64 `yaml:"single_nav_high"`   // gate 5
	SingleYieldHigh float64 `yaml:"single_yield_high"` // gate 5

	// Gate 6: hard concentration ceiling and the value-outlier multiple
	// over the 99th percentile.
	MaxSingleNAV  float64 `yaml:"max_single_nav"`
	OutlierP99Mul float64 `yaml:"outlier_p99_multiple"`

	// Gate 7: minimum non-null fraction per canonical column.
	Coverage map[string]float64 `yaml:"coverage"`

	// Gate 8: plausibility lines, all warning-only.
	YieldPlausibleMin  float64 `yaml:"yield_plausible_min"`
	YieldPlausibleMax  float64 `yaml:"yield_plausible_max"`
	MaxUnratedShare    float64 `yaml:"max_unrated_share"`
	Top10Concentration float64 `yaml:"top10_concentration"`
	MinHoldings        int     `yaml:"min_holdings"`
	MaxHoldings        int     `yaml:"max_holdings"`

	// Gate 9: standardization quality floors and the junk-exposure ceiling.
	MinStandardizationRate float64 `yaml:"min_standardization_rate"`
	MinStandardizedShare   float64 `yaml:"min_standardized_share"`
	MaxJunkShare           float64 `yaml:"max_junk_share"`
}

// DefaultThresholds is the published policy. Deployments override via
// quality.yml.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxMaturityYears: 50,
		NAVSumMin:        92,
		NAVSumMax:        110,
		SingleNAVWarn:    25,
		SingleNAVHigh:    50,
		SingleYieldHigh:  25,
		MaxSingleNAV:     30,
		OutlierP99Mul:    10,
		Coverage: map[string]float64{
			"isin":              1.00,
			"instrument_name":   1.00,
			"market_value_lacs": 1.00,
			"pct_to_nav":        0.92,
			"rating_raw":        0.80,
			"yield_pct":         0.70,
			"maturity_date":     0.50,
		},
		YieldPlausibleMin:      4,
		YieldPlausibleMax:      15,
		MaxUnratedShare:        0.25,
		Top10Concentration:     60,
		MinHoldings:            5,
		MaxHoldings:            2000,
		MinStandardizationRate: 0.70,
		MinStandardizedShare:   0.60,
		MaxJunkShare:           0.10,
	}
}

// RequiresFull reports whether a column is a 100%-coverage column, whose
// misses are critical rather than soft.
func (t Thresholds) RequiresFull(column string) bool {
	return t.Coverage[column] >= 1.0
}
