// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/db47h/logicsim/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logicsim.yaml")
	data := []byte(`
tick_rate: 250
log:
  level: debug
metrics:
  addr: ":9090"
tracing:
  enabled: true
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250.0, cfg.TickRate)
	assert.Equal(t, 0, cfg.StepLimit)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Len(t, cfg.SimulatorOptions(nil, nil), 1)
}

func TestLoadDefault(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestParseInvalid(t *testing.T) {
	td := []struct {
		name string
		data string
	}{
		{"rate", "tick_rate: -1"},
		{"limit", "step_limit: -5"},
		{"level", "log: {level: loud}"},
		{"yaml", "tick_rate: [1"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			assert.Error(t, config.Parse([]byte(d.data), config.Default()))
		})
	}
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
