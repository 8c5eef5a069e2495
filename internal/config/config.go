package config

import (
	"fmt"
	"os"
	"time"

	"BondLens/internal/classify"
	"BondLens/internal/extract"
	"BondLens/internal/quality"
	"BondLens/internal/rating"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeZone = "Asia/Kolkata"

	// Disclosure cadence: AMCs publish monthly portfolios by the 10th.
	DefaultRunSchedule = "0 7 11 * *"

	DefaultSourceDir = "./data/source"
	DefaultOutputDir = "./data/output"
	DefaultConfigDir = "./config"
)

// RunConfig is the explicit run-configuration object threaded through the
// pipeline; no file path or as-of date is baked into functions.
type RunConfig struct {
	SourceDir string
	OutputDir string
	ConfigDir string
	AsOfDate  time.Time
	DBURL     string

	Sources    []extract.SourceSpec
	Keywords   classify.Keywords
	Rating     rating.Config
	Thresholds quality.Thresholds
}

// FromEnv builds a RunConfig from environment variables, falling back to
// defaults, then loads the YAML configuration set from the config dir.
func FromEnv() (*RunConfig, error) {
	cfg := &RunConfig{
		SourceDir: envOr("PIPELINE_SOURCE_DIR", DefaultSourceDir),
		OutputDir: envOr("PIPELINE_OUTPUT_DIR", DefaultOutputDir),
		ConfigDir: envOr("PIPELINE_CONFIG_DIR", DefaultConfigDir),
		DBURL:     os.Getenv("PIPELINE_DB_URL"),
	}
	asOf := os.Getenv("PIPELINE_AS_OF_DATE")
	if asOf == "" {
		cfg.AsOfDate = lastMonthEnd(time.Now())
	} else {
		t, err := time.Parse("2006-01-02", asOf)
		if err != nil {
			return nil, fmt.Errorf("PIPELINE_AS_OF_DATE: %w", err)
		}
		cfg.AsOfDate = t
	}
	if err := cfg.loadFiles(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// lastMonthEnd gives the previous month-end, the as-of date a monthly
// disclosure describes.
func lastMonthEnd(now time.Time) time.Time {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 0, -1)
}

func (c *RunConfig) loadFiles() error {
	sources, err := LoadSources(c.ConfigDir + "/sources.yml")
	if err != nil {
		return err
	}
	c.Sources = sources

	c.Keywords = classify.DefaultKeywords()
	if err := loadOptionalYAML(c.ConfigDir+"/keywords.yml", &c.Keywords); err != nil {
		return err
	}
	c.Rating = rating.DefaultConfig()
	if err := loadOptionalYAML(c.ConfigDir+"/rating_map.yml", &c.Rating); err != nil {
		return err
	}
	c.Thresholds = quality.DefaultThresholds()
	if err := loadOptionalYAML(c.ConfigDir+"/quality.yml", &c.Thresholds); err != nil {
		return err
	}
	return nil
}

type sourcesFile struct {
	Sources []extract.SourceSpec `yaml:"sources"`
}

// LoadSources reads the per-AMC extraction specs. A missing or empty file
// is a configuration error: the pipeline has nothing to run.
func LoadSources(path string) ([]extract.SourceSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load sources config: %w", err)
	}
	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sources config: %w", err)
	}
	if len(f.Sources) == 0 {
		return nil, fmt.Errorf("sources config %s lists no sources", path)
	}
	for i, s := range f.Sources {
		if s.AMC == "" {
			return nil, fmt.Errorf("sources config: entry %d missing amc", i)
		}
		if s.File == "" {
			return nil, fmt.Errorf("sources config: %s missing file", s.AMC)
		}
	}
	return f.Sources, nil
}

// loadOptionalYAML overlays a YAML file onto defaults when the file exists.
func loadOptionalYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
