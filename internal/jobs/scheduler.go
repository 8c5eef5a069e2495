package jobs

import (
	"fmt"
	"log"
	"time"

	"BondLens/internal/config"
	"BondLens/internal/logger"
	"BondLens/internal/pipeline"
	"BondLens/internal/serviceiface"

	"github.com/robfig/cron/v3"
)

// CronService schedules pipeline runs on the disclosure cadence: AMCs
// publish monthly portfolios by the 10th, so the default schedule fires on
// the 11th with retries for stragglers.
type CronService struct {
	cfg    map[string]interface{}
	runner *pipeline.Runner
	cron   *cron.Cron
}

func NewCronService(cfg map[string]interface{}, runner *pipeline.Runner) serviceiface.Service {
	return &CronService{cfg: cfg, runner: runner}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	schedule := config.DefaultRunSchedule
	if v, ok := s.cfg["schedule"].(string); ok && v != "" {
		schedule = v
	}
	tz := config.DefaultTimeZone
	if v, ok := s.cfg["timezone"].(string); ok && v != "" {
		tz = v
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("load timezone %s: %w", tz, err)
	}

	s.cron = cron.New(cron.WithLocation(loc))
	_, err = s.cron.AddFunc(schedule, func() {
		if err := runWithRetry(s.runner, 3, time.Minute); err != nil {
			log.Printf("scheduled pipeline run failed: %v", err)
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit(fmt.Sprintf("scheduled run failed: %v", err))
			}
		}
	})
	if err != nil {
		return fmt.Errorf("register pipeline schedule %q: %w", schedule, err)
	}
	s.cron.Start()

	log.Printf("Cron service started, pipeline scheduled %q in %s", schedule, tz)
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("cron service started with pipeline schedule " + schedule)
	}
	return nil
}

func (s *CronService) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Println("Cron service stopped.")
	return nil
}

// runWithRetry retries infrastructure failures with doubling backoff.
// A failing verdict is a result, not an error, and is never retried.
func runWithRetry(runner *pipeline.Runner, attempts int, backoff time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}
		if _, err = runner.Run(); err == nil {
			return nil
		}
	}
	return err
}
