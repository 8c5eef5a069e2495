package pipeline

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"BondLens/internal/config"
	"BondLens/internal/consolidate"
	"BondLens/internal/extract"
	"BondLens/internal/holdings"
	"BondLens/internal/logger"
	"BondLens/internal/quality"
	"BondLens/internal/report"
	"BondLens/internal/store"

	"github.com/google/uuid"
)

// RunResult is one completed pipeline run: the per-source tally, the
// consolidated dataset and its verdict.
type RunResult struct {
	RunID        string
	AsOfDate     time.Time
	StartedAt    time.Time
	Duration     time.Duration
	Sources      []report.SourceRun
	Consolidated *holdings.Table
	Verdict      *quality.Verdict
}

// Runner executes extraction runs and keeps the latest result for the API.
type Runner struct {
	cfg   *config.RunConfig
	sink  *store.Store
	mu    sync.Mutex
	last  *RunResult
	runMu sync.Mutex
}

func NewRunner(cfg *config.RunConfig, sink *store.Store) *Runner {
	return &Runner{cfg: cfg, sink: sink}
}

// Last returns the most recent run result, or nil before the first run.
func (r *Runner) Last() *RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Run executes one full extraction-validation cycle. A failing source is
// recorded and its siblings continue; only infrastructure problems with the
// output directory abort the run. The returned error is nil even when the
// verdict fails: automation derives its exit status from the verdict.
func (r *Runner) Run() (*RunResult, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	started := time.Now()
	res := &RunResult{
		RunID:     uuid.NewString(),
		AsOfDate:  r.cfg.AsOfDate,
		StartedAt: started,
	}
	audit(fmt.Sprintf("pipeline run %s started, %d sources", res.RunID, len(r.cfg.Sources)))

	ex := extract.New(r.cfg.Keywords)
	var tables []*holdings.Table
	for _, spec := range r.cfg.Sources {
		path := filepath.Join(r.cfg.SourceDir, spec.File)
		run := report.SourceRun{AMC: spec.AMC, FundName: spec.FundName, File: spec.File}
		extracted, err := ex.Extract(path, spec, r.cfg.AsOfDate)
		if err != nil {
			run.Error = err.Error()
			audit(fmt.Sprintf("source %s failed: %v", spec.AMC, err))
		} else {
			for _, t := range extracted {
				run.Rows += len(t.Rows)
			}
			tables = append(tables, extracted...)
		}
		res.Sources = append(res.Sources, run)
	}

	res.Consolidated = consolidate.Consolidate(tables, r.cfg.Rating, r.cfg.Keywords)
	validator := quality.NewValidator(r.cfg.Thresholds, r.cfg.Rating)
	res.Verdict = validator.Validate(tables, res.Consolidated, r.cfg.AsOfDate)
	res.Duration = time.Since(started)

	if err := r.writeOutputs(res); err != nil {
		return res, err
	}
	if r.sink != nil {
		if err := r.sink.SaveRun(res.RunID, res.Consolidated, res.Verdict); err != nil {
			// The filesystem outputs are the system of record; a sink
			// failure is reported, not fatal.
			audit(fmt.Sprintf("store: %v", err))
			log.Printf("store: %v", err)
		}
	}

	r.mu.Lock()
	r.last = res
	r.mu.Unlock()
	audit(fmt.Sprintf("pipeline run %s finished: passed=%v, %d rows, %d criticals",
		res.RunID, res.Verdict.Passed, len(res.Consolidated.Rows), res.Verdict.CriticalCount()))
	return res, nil
}

func (r *Runner) writeOutputs(res *RunResult) error {
	out := r.cfg.OutputDir
	if err := report.WriteCanonicalCSV(filepath.Join(out, "canonical_holdings.csv"), res.Consolidated); err != nil {
		return fmt.Errorf("write canonical csv: %w", err)
	}
	if err := report.WriteVerdictReport(filepath.Join(out, "verdict.txt"), res.Verdict); err != nil {
		return fmt.Errorf("write verdict report: %w", err)
	}
	if err := report.WriteAggregatesWorkbook(filepath.Join(out, "aggregates.xlsx"), res.Consolidated); err != nil {
		return fmt.Errorf("write aggregates workbook: %w", err)
	}
	total := 0
	for _, s := range res.Sources {
		total += s.Rows
	}
	rl := &report.RunLog{
		RunID:     res.RunID,
		AsOfDate:  res.AsOfDate.Format("2006-01-02"),
		StartedAt: res.StartedAt,
		Duration:  res.Duration.String(),
		Sources:   res.Sources,
		TotalRows: total,
		Passed:    res.Verdict.Passed,
	}
	if err := report.WriteRunLog(filepath.Join(out, "run_log.json"), rl); err != nil {
		return fmt.Errorf("write run log: %w", err)
	}
	return nil
}

func audit(msg string) {
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(msg)
	}
}
