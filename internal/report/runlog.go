package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// SourceRun is one source's entry in the run journal.
type SourceRun struct {
	AMC      string `json:"amc"`
	FundName string `json:"fund_name,omitempty"`
	File     string `json:"file"`
	Rows     int    `json:"rows"`
	Error    string `json:"error,omitempty"`
}

// RunLog is the per-run journal written next to the outputs so an operator
// can see which sources ran, which failed and why, without reading logs.
type RunLog struct {
	RunID     string      `json:"run_id"`
	AsOfDate  string      `json:"as_of_date"`
	StartedAt time.Time   `json:"started_at"`
	Duration  string      `json:"duration"`
	Sources   []SourceRun `json:"sources"`
	TotalRows int         `json:"total_rows"`
	Passed    bool        `json:"passed"`
}

// WriteRunLog serializes the journal as JSON, overwriting the previous run.
func WriteRunLog(path string, rl *RunLog) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rl, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
