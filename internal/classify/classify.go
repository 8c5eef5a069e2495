package classify

import (
	"regexp"
	"strings"

	"BondLens/internal/holdings"
	"BondLens/internal/normalize"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Keywords holds the per-deployment keyword lists driving security-type
// classification. Lists vary by source so they are configuration, not code.
type Keywords struct {
	Summary    []string `yaml:"summary"`
	Cash       []string `yaml:"cash"`
	Derivative []string `yaml:"derivative"`
	Special    []string `yaml:"special"`
	Sovereign  []string `yaml:"sovereign"`
}

// DefaultKeywords covers the vocabulary seen across published disclosures.
// Deployments override via keywords.yml.
func DefaultKeywords() Keywords {
	return Keywords{
		Summary: []string{
			"total", "sub total", "subtotal", "grand total", "net assets",
			"net current assets", "net receivables", "portfolio total",
		},
		Cash: []string{
			"treps", "tri-party repo", "triparty repo", "reverse repo",
			"net current asset", "cash", "cblo", "corporate debt market development fund",
			"margin", "fixed deposit",
		},
		Derivative: []string{
			"interest rate swap", "irs", "future", "futures", "option",
			"forward rate agreement", "fra", "derivative",
		},
		Special: []string{
			"segregated", "side pocket", "side-pocket", "default",
			"under resolution", "written off",
		},
		Sovereign: []string{
			"goi", "government of india", "govt of india", "g-sec", "gsec",
			"government securities", "sovereign", "treasury bill", "t-bill",
			"tbill", "state development loan", "sdl",
		},
	}
}

func matchAny(name string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// SecurityType classifies one instrument name. Summary rows are tested
// first so totals never pass as real holdings; cash, derivatives and
// special situations follow; the remainder splits on ISIN validity.
func SecurityType(instrumentName, isin string, kw Keywords) holdings.SecurityType {
	name := strings.ToLower(normalize.CleanText(instrumentName))
	switch {
	case matchAny(name, kw.Summary):
		return holdings.SummaryRow
	case matchAny(name, kw.Cash):
		return holdings.CashEquivalent
	case matchAny(name, kw.Derivative):
		return holdings.Derivative
	case matchAny(name, kw.Special):
		return holdings.SpecialSituation
	case normalize.IsValidISIN(isin):
		return holdings.ISINSecurity
	default:
		return holdings.OtherSecurity
	}
}

// IsSovereign reports whether the instrument name carries a sovereign token.
func IsSovereign(instrumentName string, kw Keywords) bool {
	name := strings.ToLower(normalize.CleanText(instrumentName))
	for _, k := range kw.Sovereign {
		if containsToken(name, k) {
			return true
		}
	}
	return false
}

func containsToken(name, token string) bool {
	if !strings.Contains(name, token) {
		return false
	}
	// Single-word tokens must match on word boundaries so "goi" does not
	// fire inside "going".
	if strings.ContainsAny(token, " -") {
		return true
	}
	for _, w := range strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '(' || r == ')' || r == ',' || r == '/'
	}) {
		if w == token {
			return true
		}
	}
	return false
}

const maxIssuerWords = 6

var (
	stateTitle     = cases.Title(language.English)
	couponPrefixRe = regexp.MustCompile(`^[\d.]+%?\s+`)
	sdlStateRe     = regexp.MustCompile(`(?i)^[\d.]*%?\s*([A-Za-z ]+?)\s+(?:SDL|state development loan)`)
	qualifierRe    = regexp.MustCompile(`(?i)\b(ncd|bond|bonds|debenture|debentures|series|sr|tranche|at1|tier|cp|cd|secured|unsecured|redeemable|non convertible|non-convertible|perpetual|mat)\b`)
)

// Issuer extracts a best-effort issuer name from an instrument name.
// Sovereign paper maps to a canonical government issuer; everything else
// strips coupon prefixes and trailing instrument-type qualifiers and keeps
// the leading tokens. Degrades to a truncated prefix, never errors.
func Issuer(instrumentName string, kw Keywords) string {
	name := normalize.CleanText(instrumentName)
	if name == "" {
		return ""
	}
	if m := sdlStateRe.FindStringSubmatch(name); m != nil {
		state := strings.TrimSpace(m[1])
		if state != "" {
			return "Government of " + stateTitle.String(strings.ToLower(state)) + " (SDL)"
		}
	}
	if IsSovereign(name, kw) {
		return "Government of India"
	}
	name = couponPrefixRe.ReplaceAllString(name, "")
	if loc := qualifierRe.FindStringIndex(name); loc != nil && loc[0] > 0 {
		name = strings.TrimSpace(name[:loc[0]])
	}
	name = strings.Trim(name, " -.,")
	words := strings.Fields(name)
	if len(words) > maxIssuerWords {
		words = words[:maxIssuerWords]
	}
	return strings.Join(words, " ")
}
