package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Unit identifies how a source reports monetary values.
type Unit string

const (
	UnitLacs   Unit = "lacs"
	UnitCrores Unit = "crores"
	UnitRaw    Unit = "raw" // unlabelled base-currency units
)

var (
	croreToLacs = decimal.NewFromInt(100)
	rawToLacs   = decimal.NewFromInt(100000)
	hundred     = decimal.NewFromInt(100)
	one         = decimal.NewFromInt(1)
)

// DetectUnitFromHeaders inspects header text for a unit label. Sources label
// the value column "(Rs. in Lacs)", "Rs. in Crores" and similar; unlabelled
// columns are assumed to be raw currency units.
func DetectUnitFromHeaders(headers []string, fallback Unit) Unit {
	for _, h := range headers {
		l := NormAlias(h)
		if strings.Contains(l, "crore") {
			return UnitCrores
		}
		if strings.Contains(l, "lac") || strings.Contains(l, "lakh") {
			return UnitLacs
		}
	}
	return fallback
}

// ToLacs converts a monetary value in the given unit to lacs.
func ToLacs(v decimal.Decimal, unit Unit) decimal.Decimal {
	switch unit {
	case UnitCrores:
		return v.Mul(croreToLacs)
	case UnitRaw:
		return v.Div(rawToLacs)
	default:
		return v
	}
}

// NeedsFractionRescale reports whether a percentage column was stored as
// 0-1 fractions: true when the maximum observed value is below 1. Applied
// at most once per column per file, using only that file's own data.
func NeedsFractionRescale(col []decimal.NullDecimal) bool {
	seen := false
	for _, v := range col {
		if !v.Valid {
			continue
		}
		seen = true
		if v.Decimal.GreaterThanOrEqual(one) {
			return false
		}
	}
	return seen
}

// RescaleFraction multiplies every non-null value by 100 when the column
// holds fractions. Re-running it on corrected data is a no-op because the
// corrected maximum is no longer below 1.
func RescaleFraction(col []decimal.NullDecimal) []decimal.NullDecimal {
	if !NeedsFractionRescale(col) {
		return col
	}
	out := make([]decimal.NullDecimal, len(col))
	for i, v := range col {
		if v.Valid {
			out[i] = decimal.NullDecimal{Decimal: v.Decimal.Mul(hundred), Valid: true}
		}
	}
	return out
}
