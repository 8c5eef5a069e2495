package classify

import (
	"testing"
	"time"

	"BondLens/internal/holdings"

	"github.com/stretchr/testify/assert"
)

func TestSecurityTypePriority(t *testing.T) {
	kw := DefaultKeywords()
	tests := []struct {
		name string
		isin string
		want holdings.SecurityType
	}{
		{"Grand Total", "", holdings.SummaryRow},
		{"Sub Total", "INE040A01034", holdings.SummaryRow},
		{"TREPS / Reverse Repo", "", holdings.CashEquivalent},
		{"Net Current Assets", "", holdings.SummaryRow},
		{"Interest Rate Swap Pay Fixed", "", holdings.Derivative},
		{"Segregated Portfolio - DHFL", "INE202B07HU2", holdings.SpecialSituation},
		{"HDFC Bank Ltd NCD SR 5", "INE040A08567", holdings.ISINSecurity},
		{"Unlisted Paper", "", holdings.OtherSecurity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SecurityType(tt.name, tt.isin, kw))
		})
	}
}

func TestIssuer(t *testing.T) {
	kw := DefaultKeywords()
	tests := []struct {
		in   string
		want string
	}{
		{"HDFC Bank Ltd NCD SR 5", "HDFC Bank Ltd"},
		{"7.26% GOI 2033", "Government of India"},
		{"182 Days Treasury Bill", "Government of India"},
		{"7.65% Maharashtra SDL 2032", "Government of Maharashtra (SDL)"},
		{"7.12% TAMIL NADU SDL 2031", "Government of Tamil Nadu (SDL)"},
		{"8.55% LIC Housing Finance Ltd NCD", "LIC Housing Finance Ltd"},
		{"Power Finance Corporation Ltd Series 214 Bond", "Power Finance Corporation Ltd"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Issuer(tt.in, kw))
		})
	}
}

func TestIssuerTruncatesLongNames(t *testing.T) {
	kw := DefaultKeywords()
	got := Issuer("Some Very Long Structured Obligation Vehicle Trust Of Issuances Eleven", kw)
	assert.LessOrEqual(t, len(splitWords(got)), maxIssuerWords)
	assert.NotEmpty(t, got)
}

func splitWords(s string) []string {
	var out []string
	w := ""
	for _, r := range s + " " {
		if r == ' ' {
			if w != "" {
				out = append(out, w)
				w = ""
			}
			continue
		}
		w += string(r)
	}
	return out
}

func TestInstrumentBuckets(t *testing.T) {
	asOf := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		typ  holdings.SecurityType
		want string
	}{
		{"91 Days Treasury Bill", holdings.ISINSecurity, "T-Bill"},
		{"7.65% Maharashtra SDL 2032", holdings.ISINSecurity, "SDL"},
		{"7.26% GOI 2033", holdings.ISINSecurity, "G-Sec"},
		{"NABARD Commercial Paper", holdings.ISINSecurity, "CP"},
		{"HDFC Bank CD 12/12/2026", holdings.ISINSecurity, "CD"},
		{"SBI AT1 Perpetual", holdings.ISINSecurity, "AT1/Tier-2"},
		{"LIC Housing Finance NCD", holdings.ISINSecurity, "Corporate Bond"},
		{"TREPS", holdings.CashEquivalent, "Overnight"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := holdings.Holding{InstrumentName: tt.name, SecurityType: tt.typ, AsOfDate: asOf}
			assert.Equal(t, tt.want, Instrument(h))
		})
	}
}

func TestMaturityBuckets(t *testing.T) {
	asOf := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	mk := func(y int) *time.Time {
		d := time.Date(y, 6, 30, 0, 0, 0, 0, time.UTC)
		return &d
	}
	tests := []struct {
		maturity *time.Time
		want     string
	}{
		{mk(2026), "<1Y"},
		{mk(2028), "1-3Y"},
		{mk(2030), "3-5Y"},
		{mk(2032), "5-7Y"},
		{mk(2035), "7-10Y"},
		{mk(2045), ">10Y"},
		{nil, "Perpetual/NA"},
	}
	for _, tt := range tests {
		h := holdings.Holding{MaturityDate: tt.maturity, AsOfDate: asOf}
		assert.Equal(t, tt.want, MaturityBucket(h))
	}
}
