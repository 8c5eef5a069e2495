package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardizeAgencyPrefixes(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		raw  string
		want string
	}{
		{"CRISIL AAA (CE)", "AAA"},
		{"ICRA A1+", "A1+"},
		{"[ICRA]A1+", "A1+"},
		{"CARE AA+ (Stable)", "AA+"},
		{"IND AA-", "AA-"},
		{"BWR A+", "A+"},
		{"AAA", "AAA"},
		{"SOV", "SOVEREIGN"},
		{"crisil aaa/stable", "AAA"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Standardize(tt.raw, "", cfg))
		})
	}
}

func TestStandardizeSovereignOverride(t *testing.T) {
	cfg := DefaultConfig()
	// The instrument name wins regardless of the raw rating value.
	assert.Equal(t, "SOVEREIGN", Standardize("", "7.26% GOI 2033", cfg))
	assert.Equal(t, "SOVEREIGN", Standardize("AAA", "7.26% GOI 2033", cfg))
	assert.Equal(t, "SOVEREIGN", Standardize("junk", "182 Days Treasury Bill", cfg))
}

func TestStandardizeNumericArtifact(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "", Standardize("0.06271996470050001", "", cfg))
	assert.Equal(t, "", Standardize("12.5", "", cfg))
}

func TestStandardizeUnrateable(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "", Standardize("", "", cfg))
	assert.Equal(t, "", Standardize("Unrated", "", cfg))
	assert.Equal(t, "", Standardize("pending", "", cfg))
}

func TestStandardizeSplitRatingWorstGrade(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "AA", Standardize("AA+/AA", "", cfg))
	assert.Equal(t, "AA-", Standardize("CRISIL AA / ICRA AA-", "", cfg))
	assert.Equal(t, "A1", Standardize("A1+, A1", "", cfg))
}

func TestStandardizeIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	inputs := []string{"CRISIL AAA (CE)", "ICRA A1+", "SOV", "CARE AA+ (Stable)", "AA+/AA"}
	for _, raw := range inputs {
		once := Standardize(raw, "", cfg)
		twice := Standardize(once, "", cfg)
		assert.Equal(t, once, twice, "not idempotent for %q", raw)
	}
}

func TestIsJunk(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.IsJunk("BB+"))
	assert.True(t, cfg.IsJunk("D"))
	assert.False(t, cfg.IsJunk("BBB-"))
	assert.False(t, cfg.IsJunk("SOVEREIGN"))
	assert.False(t, cfg.IsJunk(""))
}
