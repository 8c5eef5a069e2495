package quality

// GateResult is one gate's finding set. Critical entries fail the gate;
// warnings and informational notes never do on their own.
type GateResult struct {
	Name     string   `json:"name"`
	Passed   bool     `json:"passed"`
	Critical []string `json:"critical,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Info     []string `json:"info,omitempty"`
}

// Verdict is the full output of one validation run: every gate's itemized
// findings plus the overall AND. Findings are always fully enumerated so a
// single run surfaces every problem across all sources.
type Verdict struct {
	Gates  []GateResult `json:"gates"`
	Passed bool         `json:"passed"`
}

func (v *Verdict) add(g GateResult) {
	g.Passed = len(g.Critical) == 0
	v.Gates = append(v.Gates, g)
}

// CriticalCount totals critical findings across gates.
func (v *Verdict) CriticalCount() int {
	n := 0
	for _, g := range v.Gates {
		n += len(g.Critical)
	}
	return n
}

// WarningCount totals warnings across gates.
func (v *Verdict) WarningCount() int {
	n := 0
	for _, g := range v.Gates {
		n += len(g.Warnings)
	}
	return n
}

// Gate returns the named gate's result, or nil.
func (v *Verdict) Gate(name string) *GateResult {
	for i := range v.Gates {
		if v.Gates[i].Name == name {
			return &v.Gates[i]
		}
	}
	return nil
}
