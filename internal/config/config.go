// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config loads the YAML configuration of the logicsim command.
//
package config

import (
	"log/slog"
	"os"

	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/internal/logging"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the simulator configuration.
//
//	tick_rate: 10        # ticks per second in timed runs
//	step_limit: 0        # micro-steps per pass, 0 for the default
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  addr: ":9090"      # empty to disable the /metrics endpoint
//	tracing:
//	  enabled: false
//
type Config struct {
	TickRate  float64        `yaml:"tick_rate"`
	StepLimit int            `yaml:"step_limit"`
	Log       logging.Config `yaml:"log"`
	Metrics   struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Tracing struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"tracing"`
}

// Default returns the default configuration.
//
func Default() *Config {
	return &Config{
		TickRate: 10,
		Log:      logging.Config{Level: "info", Format: "text"},
	}
}

// Load reads a YAML configuration file. Missing fields keep their default
// value. An empty path returns the default configuration.
//
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := Parse(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML data into cfg and validates the result.
//
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, "parse config")
	}
	return cfg.Validate()
}

// Validate checks configuration values.
//
func (c *Config) Validate() error {
	if c.TickRate <= 0 {
		return errors.Errorf("invalid tick_rate %v", c.TickRate)
	}
	if c.StepLimit < 0 {
		return errors.Errorf("invalid step_limit %d", c.StepLimit)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// SimulatorOptions returns the simulator options matching c.
//
func (c *Config) SimulatorOptions(log *slog.Logger, m logicsim.Metrics) []logicsim.Option {
	opts := []logicsim.Option{logicsim.WithStepLimit(c.StepLimit)}
	if log != nil {
		opts = append(opts, logicsim.WithLogger(log))
	}
	if m != nil {
		opts = append(opts, logicsim.WithMetrics(m))
	}
	return opts
}
