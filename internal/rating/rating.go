package rating

import (
	"regexp"
	"strings"

	"BondLens/internal/normalize"
)

// Config carries the rating vocabulary: agency name prefixes to strip, the
// alias table from raw spellings to canonical grades, the total order over
// grades (best first, used to resolve split ratings to the worst grade),
// and the sovereign-indicator tokens. All of it is data, not code.
type Config struct {
	Agencies   []string          `yaml:"agencies"`
	Aliases    map[string]string `yaml:"aliases"`
	GradeOrder []string          `yaml:"grade_order"`
	Sovereign  []string          `yaml:"sovereign"`
	JunkFloor  string            `yaml:"junk_floor"`
}

// DefaultConfig mirrors the grade vocabulary of the Indian agencies.
// Deployments override via rating_map.yml.
func DefaultConfig() Config {
	return Config{
		Agencies: []string{
			"crisil", "icra", "care", "ind-ra", "ind", "india ratings",
			"brickwork", "bwr", "acuite", "fitch",
		},
		Aliases: map[string]string{
			"aaa": "AAA", "aa+": "AA+", "aa": "AA", "aa-": "AA-",
			"a+": "A+", "a": "A", "a-": "A-",
			"a1+": "A1+", "a1": "A1", "a2+": "A2+", "a2": "A2", "a3+": "A3+", "a3": "A3",
			"bbb+": "BBB+", "bbb": "BBB", "bbb-": "BBB-",
			"bb+": "BB+", "bb": "BB", "bb-": "BB-",
			"b+": "B+", "b": "B", "b-": "B-",
			"c": "C", "d": "D",
			"sov": "SOVEREIGN", "sovereign": "SOVEREIGN", "gsec": "SOVEREIGN",
			"aaa(ce)": "AAA", "aaa (ce)": "AAA", "aaa(so)": "AAA",
		},
		GradeOrder: []string{
			"SOVEREIGN",
			"AAA", "AA+", "AA", "AA-",
			"A1+", "A1", "A+", "A", "A-",
			"A2+", "A2", "A3+", "A3",
			"BBB+", "BBB", "BBB-",
			"BB+", "BB", "BB-",
			"B+", "B", "B-",
			"C", "D",
		},
		Sovereign: []string{
			"goi", "government of india", "govt of india", "g-sec", "gsec",
			"sovereign", "treasury bill", "t-bill", "sdl",
			"state development loan",
		},
		JunkFloor: "BB+",
	}
}

// Rank returns the position of a canonical grade in the configured order,
// or -1 for a grade outside the vocabulary. Higher rank is worse.
func (c Config) Rank(grade string) int {
	for i, g := range c.GradeOrder {
		if g == grade {
			return i
		}
	}
	return -1
}

// IsJunk reports whether a canonical grade sits at or below the junk floor.
func (c Config) IsJunk(grade string) bool {
	r, floor := c.Rank(grade), c.Rank(c.JunkFloor)
	return r >= 0 && floor >= 0 && r >= floor
}

var (
	numericArtifactRe = regexp.MustCompile(`^\d+\.\d+$`)
	trailingParenRe   = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	trailingSlashRe   = regexp.MustCompile(`\s*/.*$`)
	splitSepRe        = regexp.MustCompile(`[\s/,&]+`)
)

// Standardize maps a raw agency-prefixed rating string to a canonical grade,
// or "" when the input is unrateable. Sovereign instruments standardize to
// SOVEREIGN regardless of the raw value. Idempotent, never errors.
func Standardize(rawRating, instrumentName string, cfg Config) string {
	if isSovereignName(instrumentName, cfg) {
		return "SOVEREIGN"
	}
	raw := strings.ToLower(normalize.CleanText(rawRating))
	if raw == "" {
		return ""
	}
	// A bare decimal fraction in the rating cell is a misaligned-column
	// artifact, not a grade.
	if numericArtifactRe.MatchString(raw) {
		return ""
	}
	cleaned := stripAgencies(raw, cfg.Agencies)
	// Tokenize first so a split rating like "AA+/AA" resolves to the worst
	// grade instead of stopping at the first one.
	worst, worstRank, n := "", -1, 0
	for _, tok := range splitSepRe.Split(cleaned, -1) {
		g, ok := matchGrade(tok, cfg)
		if !ok {
			continue
		}
		n++
		if r := cfg.Rank(g); r > worstRank {
			worst, worstRank = g, r
		}
	}
	if n > 0 {
		return worst
	}
	if g, ok := matchGrade(cleaned, cfg); ok {
		return g
	}
	return ""
}

func isSovereignName(instrumentName string, cfg Config) bool {
	name := strings.ToLower(normalize.CleanText(instrumentName))
	if name == "" {
		return false
	}
	for _, tok := range cfg.Sovereign {
		if strings.ContainsAny(tok, " -") {
			if strings.Contains(name, tok) {
				return true
			}
			continue
		}
		for _, w := range strings.FieldsFunc(name, func(r rune) bool {
			return r == ' ' || r == '(' || r == ')' || r == ',' || r == '/' || r == '%'
		}) {
			if w == tok {
				return true
			}
		}
	}
	return false
}

// stripAgencies removes leading agency names in their observed spellings:
// "CRISIL AAA", "CRISIL - AAA", "[ICRA]A1+".
func stripAgencies(s string, agencies []string) string {
	s = strings.TrimSpace(s)
	for changed := true; changed; {
		changed = false
		for _, a := range agencies {
			for _, prefix := range []string{"[" + a + "]", a + " - ", a + "-", a + " "} {
				if strings.HasPrefix(s, prefix) && len(s) > len(prefix) {
					s = strings.TrimSpace(s[len(prefix):])
					changed = true
				}
			}
		}
	}
	return s
}

// matchGrade resolves one cleaned token: exact alias first, then a prefix
// match where the remainder starts with whitespace, a parenthesis or a slash.
func matchGrade(s string, cfg Config) (string, bool) {
	s = strings.TrimSpace(trailingParenRe.ReplaceAllString(s, ""))
	if s == "" {
		return "", false
	}
	if g, ok := cfg.Aliases[s]; ok {
		return g, true
	}
	if g, ok := cfg.Aliases[strings.TrimSpace(trailingSlashRe.ReplaceAllString(s, ""))]; ok {
		return g, true
	}
	// Canonical grades fed back in are already standard.
	if cfg.Rank(strings.ToUpper(s)) >= 0 {
		return strings.ToUpper(s), true
	}
	for alias, g := range cfg.Aliases {
		if strings.HasPrefix(s, alias) {
			rest := s[len(alias):]
			if rest == "" || strings.IndexAny(rest, " (/") == 0 {
				return g, true
			}
		}
	}
	return "", false
}
