package normalize

import (
	"regexp"
	"strings"
)

var (
	isinRe       = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)
	indianISINRe = regexp.MustCompile(`^IN[A-Z0-9]{10}$`)
)

// NormalizeISIN uppercases and strips whitespace from a candidate ISIN cell.
func NormalizeISIN(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

// IsValidISIN reports whether s is a structurally valid 12-character ISIN.
// Empty or junk input is false, never an error.
func IsValidISIN(s string) bool {
	return isinRe.MatchString(NormalizeISIN(s))
}

// IsIndianISIN applies the narrower domestic-market rule (IN prefix).
// Sources that only ever hold domestic paper opt into this via config.
func IsIndianISIN(s string) bool {
	return indianISINRe.MatchString(NormalizeISIN(s))
}
