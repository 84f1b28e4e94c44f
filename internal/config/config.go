// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the configuration of the check command.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dashmon/latencystat/latstat"
	"github.com/dashmon/latencystat/provider"
)

// Source kinds.
const (
	SourcePostgres = "postgres"
	SourceInflux   = "influx"
	SourceFile     = "file"
)

type Config struct {
	Alpha       float64  `yaml:"alpha"`
	SampleSize  *int     `yaml:"sample_size"`
	Parallelism int      `yaml:"parallelism"`
	Endpoints   []string `yaml:"endpoints"`

	Comparison IntervalConfig  `yaml:"comparison"`
	ComparedTo *IntervalConfig `yaml:"compared_to"`

	Source  SourceConfig  `yaml:"source"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// IntervalConfig is either an absolute interval, or a window of the
// given length ending when the check runs.
type IntervalConfig struct {
	Start  time.Time     `yaml:"start"`
	End    time.Time     `yaml:"end"`
	Window time.Duration `yaml:"window"`
}

type SourceConfig struct {
	Kind     string         `yaml:"kind"`
	Postgres PostgresConfig `yaml:"postgres"`
	Influx   InfluxConfig   `yaml:"influx"`
	File     FileConfig     `yaml:"file"`
}

type PostgresConfig struct {
	ConnString    string `yaml:"conn_string"`
	RequestTable  string `yaml:"request_table"`
	EndpointTable string `yaml:"endpoint_table"`
}

type InfluxConfig struct {
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	Measurement string `yaml:"measurement"`
	EndpointTag string `yaml:"endpoint_tag"`
	Field       string `yaml:"field"`
}

type FileConfig struct {
	Paths []string `yaml:"paths"`
}

type MetricsConfig struct {
	// Textfile, if set, is where the check command writes its
	// metrics.
	Textfile string `yaml:"textfile"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML configuration at path, fills in defaults, and
// validates it.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse parses a YAML configuration, fills in defaults, and validates
// it.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Alpha == 0 {
		c.Alpha = latstat.DefaultAlpha
	}
	if c.SampleSize == nil {
		n := provider.DefaultSampleSize
		c.SampleSize = &n
	}
	if c.Source.Kind == SourceInflux && c.Source.Influx.Token == "" {
		c.Source.Influx.Token = os.Getenv("INFLUXDB_TOKEN")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("alpha must be in (0, 1), got %v", c.Alpha)
	}
	if *c.SampleSize < 0 {
		return fmt.Errorf("sample_size must not be negative")
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative")
	}
	if err := c.Comparison.validate(true); err != nil {
		return fmt.Errorf("comparison: %w", err)
	}
	if c.ComparedTo != nil {
		if err := c.ComparedTo.validate(false); err != nil {
			return fmt.Errorf("compared_to: %w", err)
		}
	}

	switch c.Source.Kind {
	case SourcePostgres:
		if c.Source.Postgres.ConnString == "" {
			return fmt.Errorf("source.postgres.conn_string is required")
		}
	case SourceInflux:
		in := c.Source.Influx
		if in.URL == "" || in.Org == "" || in.Bucket == "" {
			return fmt.Errorf("source.influx.url, org, and bucket are required")
		}
	case SourceFile:
		if len(c.Source.File.Paths) == 0 {
			return fmt.Errorf("source.file.paths is required")
		}
	case "":
		return fmt.Errorf("source.kind is required")
	default:
		return fmt.Errorf("unknown source.kind %q", c.Source.Kind)
	}
	if len(c.Endpoints) == 0 && c.Source.Kind != SourceFile {
		return fmt.Errorf("endpoints is required for source %s", c.Source.Kind)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func (ic *IntervalConfig) validate(allowWindow bool) error {
	absolute := !ic.Start.IsZero() || !ic.End.IsZero()
	switch {
	case ic.Window != 0 && !allowWindow:
		return fmt.Errorf("window is not allowed here")
	case ic.Window != 0 && absolute:
		return fmt.Errorf("set either window or start and end, not both")
	case ic.Window < 0:
		return fmt.Errorf("window must be positive")
	case ic.Window > 0:
		return nil
	case ic.Start.IsZero() || ic.End.IsZero():
		return fmt.Errorf("start and end are required")
	}
	return latstat.Interval{Start: ic.Start, End: ic.End}.Validate()
}

// Intervals resolves the comparison and compared-to intervals for a
// check running at now. Without an explicit compared_to interval, the
// compared-to interval is the one of equal length that ends where the
// comparison interval starts.
func (c *Config) Intervals(now time.Time) (comparison, comparedTo latstat.Interval) {
	if w := c.Comparison.Window; w > 0 {
		comparison = latstat.Interval{Start: now.Add(-w), End: now}
	} else {
		comparison = latstat.Interval{Start: c.Comparison.Start, End: c.Comparison.End}
	}
	if c.ComparedTo == nil {
		return comparison, comparison.Previous()
	}
	return comparison, latstat.Interval{Start: c.ComparedTo.Start, End: c.ComparedTo.End}
}

// LogLevel returns the parsed log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
