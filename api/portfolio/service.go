package portfolio

import (
	"BondLens/internal/pipeline"
	"BondLens/internal/serviceiface"
)

const defaultPort = 7143

// PortfolioService is a lightweight service wrapper for the pipeline's
// read API and run trigger.
type PortfolioService struct {
	cfg    map[string]interface{}
	runner *pipeline.Runner
}

func NewPortfolioService(cfg map[string]interface{}, runner *pipeline.Runner) serviceiface.Service {
	return &PortfolioService{cfg: cfg, runner: runner}
}

func (s *PortfolioService) Name() string {
	return "portfolio"
}

func (s *PortfolioService) Start() error {
	go StartPortfolioService(s.runner, cfgPort(s.cfg, defaultPort))
	return nil
}

func (s *PortfolioService) Stop() error {
	return nil
}

func cfgPort(cfg map[string]interface{}, fallback int) int {
	switch v := cfg["port"].(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return fallback
}
