package api

import "BondLens/internal/serviceiface"

const (
	defaultPort         = 8081
	defaultPortfolioURL = "http://localhost:7143"
)

type GatewayService struct {
	config map[string]interface{}
}

func NewGatewayService(cfg map[string]interface{}) serviceiface.Service {
	return &GatewayService{config: cfg}
}

func (s *GatewayService) Name() string {
	return "gateway"
}

func (s *GatewayService) Start() error {
	target, _ := s.config["portfolio_url"].(string)
	if target == "" {
		target = defaultPortfolioURL
	}
	go StartGateway(cfgPort(s.config, defaultPort), target)
	return nil
}

func (s *GatewayService) Stop() error {
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
