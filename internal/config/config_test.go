package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"BondLens/internal/quality"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastMonthEnd(t *testing.T) {
	assert.Equal(t,
		time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		lastMonthEnd(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t,
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		lastMonthEnd(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLoadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yml")
	data := `sources:
  - amc: HDFC
    fund_name: hdfc-corporate-bond
    file: hdfc.xlsx
    unit: lacs
  - amc: UTI
    file: uti.xlsx
    scheme_detection: true
    domestic_only: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	sources, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "HDFC", sources[0].AMC)
	assert.Equal(t, "lacs", sources[0].Unit)
	assert.True(t, sources[1].SchemeDetection)
	assert.True(t, sources[1].DomesticOnly)
}

func TestLoadSourcesRejectsIncompleteEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yml")
	require.NoError(t, os.WriteFile(path, []byte("sources:\n  - amc: HDFC\n"), 0o644))
	_, err := LoadSources(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing file")

	require.NoError(t, os.WriteFile(path, []byte("sources: []\n"), 0o644))
	_, err = LoadSources(path)
	assert.Error(t, err)
}

func TestLoadOptionalYAMLOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quality.yml")
	require.NoError(t, os.WriteFile(path, []byte("nav_sum_min: 90\n"), 0o644))

	th := quality.DefaultThresholds()
	require.NoError(t, loadOptionalYAML(path, &th))
	assert.Equal(t, 90.0, th.NAVSumMin)
	// Untouched fields keep their defaults.
	assert.Equal(t, quality.DefaultThresholds().NAVSumMax, th.NAVSumMax)

	// A missing file is not an error; defaults stand.
	th2 := quality.DefaultThresholds()
	require.NoError(t, loadOptionalYAML(filepath.Join(t.TempDir(), "absent.yml"), &th2))
	assert.Equal(t, quality.DefaultThresholds(), th2)
}
