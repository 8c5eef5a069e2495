package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCfgPort(t *testing.T) {
	assert.Equal(t, defaultPort, cfgPort(nil, defaultPort))
	assert.Equal(t, 9081, cfgPort(map[string]interface{}{"port": 9081}, defaultPort))
	assert.Equal(t, 9081, cfgPort(map[string]interface{}{"port": float64(9081)}, defaultPort))
	assert.Equal(t, defaultPort, cfgPort(map[string]interface{}{"port": -1}, defaultPort))
}
