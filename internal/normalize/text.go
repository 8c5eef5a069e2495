package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const nbsp = "\u00a0"

// CleanText strips spreadsheet line-break artifacts and collapses whitespace.
// Returns "" for empty input, never errors.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "_x000D_", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, nbsp, " ")
	return strings.Join(strings.Fields(s), " ")
}

// NormAlias lowercases and collapses a header cell for alias matching.
func NormAlias(s string) string {
	return strings.ToLower(CleanText(s))
}

var thousandsRe = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{2,3})*(\.\d+)?$`)

// ParseNumeric parses a cell into a decimal, handling thousands separators,
// currency junk, and accounting-style parenthesized negatives. Malformed
// input yields null, never an error.
func ParseNumeric(s string) decimal.NullDecimal {
	s = CleanText(s)
	if s == "" || s == "-" || s == "--" {
		return decimal.NullDecimal{}
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimPrefix(s, "₹"))
	if thousandsRe.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	if neg {
		d = d.Neg()
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
