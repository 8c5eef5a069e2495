package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"BondLens/internal/quality"
)

// FormatVerdict renders a verdict as the plain-text triage report: every
// gate with its full finding lists, no early exit.
func FormatVerdict(v *quality.Verdict) string {
	var b strings.Builder
	status := "PASSED"
	if !v.Passed {
		status = "FAILED"
	}
	fmt.Fprintf(&b, "DATA QUALITY VERDICT: %s (%d critical, %d warnings)\n",
		status, v.CriticalCount(), v.WarningCount())
	b.WriteString(strings.Repeat("=", 64) + "\n")
	for _, g := range v.Gates {
		mark := "PASS"
		if !g.Passed {
			mark = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] %s\n", mark, g.Name)
		for _, m := range g.Critical {
			fmt.Fprintf(&b, "  CRITICAL: %s\n", m)
		}
		for _, m := range g.Warnings {
			fmt.Fprintf(&b, "  warning:  %s\n", m)
		}
		for _, m := range g.Info {
			fmt.Fprintf(&b, "  info:     %s\n", m)
		}
	}
	return b.String()
}

// WriteVerdictReport writes the triage report next to the other outputs.
func WriteVerdictReport(path string, v *quality.Verdict) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(FormatVerdict(v)), 0644)
}
