// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dashmon/latencystat/internal/config"
	"github.com/dashmon/latencystat/latstat"
	"github.com/dashmon/latencystat/metrics"
	"github.com/dashmon/latencystat/provider"
	"github.com/dashmon/latencystat/provider/files"
	"github.com/dashmon/latencystat/provider/influx"
	"github.com/dashmon/latencystat/provider/sqldb"
	"github.com/dashmon/latencystat/report"
)

var errRegression = errors.New("median latency regressed")

func (c *cli) newCheckCmd() *cobra.Command {
	var (
		cfgPath          string
		format           string
		failOnRegression bool
		comparisonFlag   string
		comparedToFlag   string
	)
	cmd := &cobra.Command{
		Use:   "check --config config.yaml [flags]",
		Short: "Check configured endpoints for latency changes",
		Long: `check fetches the latencies of the configured endpoints in the
comparison and compared-to intervals from the configured source and
reports the endpoints whose median latency changed significantly.

--comparison and --compared-to override the configured intervals. Both
take "start/end" with RFC 3339 times. Without --compared-to, a
--comparison interval is compared to the configured compared_to
interval, or to the interval of the same length just before it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			log, err := c.logger(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}

			src, err := openSource(cfg, log)
			if err != nil {
				return err
			}
			defer src.close()

			endpoints := cfg.Endpoints
			if len(endpoints) == 0 {
				endpoints = src.endpoints
			}
			comparison, comparedTo := cfg.Intervals(c.now())
			if comparisonFlag != "" {
				if comparison, err = latstat.ParseInterval(comparisonFlag); err != nil {
					return fmt.Errorf("bad --comparison: %w", err)
				}
				if cfg.ComparedTo == nil {
					comparedTo = comparison.Previous()
				}
			}
			if comparedToFlag != "" {
				if comparedTo, err = latstat.ParseInterval(comparedToFlag); err != nil {
					return fmt.Errorf("bad --compared-to: %w", err)
				}
			}
			log.Info("checking endpoints",
				"source", cfg.Source.Kind,
				"endpoints", len(endpoints),
				"comparison", comparison.String(),
				"compared_to", comparedTo.String())

			engine := latstat.NewEngine(latstat.EngineOptions{Alpha: cfg.Alpha})
			obs := metrics.New(nil)
			checker := &latstat.Checker{
				Provider:    src.provider,
				Engine:      engine,
				Observer:    obs,
				Logger:      log,
				Parallelism: cfg.Parallelism,
			}
			checks, err := checker.CheckAll(cmd.Context(), endpoints, comparison, comparedTo)
			if err != nil {
				return err
			}

			rep := report.New(engine.Alpha(), c.now())
			rep.AddChecks(checks)
			if format == "json" {
				err = rep.WriteJSON(cmd.OutOrStdout())
			} else {
				err = rep.WriteText(cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}

			if path := cfg.Metrics.Textfile; path != "" {
				if err := obs.WriteTextfile(path); err != nil {
					return fmt.Errorf("writing metrics: %w", err)
				}
				log.Debug("wrote metrics", "path", path)
			}

			if regressed := rep.Regressions(); failOnRegression && len(regressed) > 0 {
				return fmt.Errorf("%w: %s", errRegression, strings.Join(regressed, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "read configuration from `file`")
	cmd.Flags().StringVar(&format, "format", "text", "output `format`: text or json")
	cmd.Flags().BoolVar(&failOnRegression, "fail-on-regression", false, "exit with status 1 if any endpoint got significantly slower")
	cmd.Flags().StringVar(&comparisonFlag, "comparison", "", "comparison `interval` as start/end")
	cmd.Flags().StringVar(&comparedToFlag, "compared-to", "", "compared-to `interval` as start/end")
	cmd.MarkFlagRequired("config")
	return cmd
}

// A source is an opened latency provider.
type source struct {
	provider latstat.Provider

	// endpoints lists every endpoint the provider knows, if it
	// can tell.
	endpoints []string

	close func()
}

func openSource(cfg *config.Config, log *slog.Logger) (*source, error) {
	// Providers that cannot sample in the store are limited after
	// fetching. A sample size of 0 disables the limit.
	limit := *cfg.SampleSize
	if limit == 0 {
		limit = -1
	}

	switch cfg.Source.Kind {
	case config.SourcePostgres:
		pg := cfg.Source.Postgres
		p, err := sqldb.Open(pg.ConnString, sqldb.Options{
			RequestTable:  pg.RequestTable,
			EndpointTable: pg.EndpointTable,
			SampleSize:    *cfg.SampleSize,
		})
		if err != nil {
			return nil, err
		}
		return &source{provider: p, close: func() { p.Close() }}, nil

	case config.SourceInflux:
		in := cfg.Source.Influx
		p, err := influx.New(influx.Options{
			URL:         in.URL,
			Token:       in.Token,
			Org:         in.Org,
			Bucket:      in.Bucket,
			Measurement: in.Measurement,
			EndpointTag: in.EndpointTag,
			Field:       in.Field,
		})
		if err != nil {
			return nil, err
		}
		return &source{provider: provider.NewLimit(p, limit, nil), close: p.Close}, nil

	case config.SourceFile:
		p, err := files.Load(cfg.Source.File.Paths, files.Options{Logger: log})
		if err != nil {
			return nil, err
		}
		return &source{
			provider:  provider.NewLimit(p, limit, nil),
			endpoints: p.Endpoints(),
			close:     func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
}
