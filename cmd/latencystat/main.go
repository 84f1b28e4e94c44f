// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command latencystat reports endpoints whose median latency changed
// between two intervals.
//
// It has three subcommands:
//
//	latencystat compare [flags] inputs...
//	latencystat check --config config.yaml [flags]
//	latencystat filter [flags] query [inputs...]
//
// compare reads latency files and compares the results grouped by
// the --by key, which defaults to the input file. There must be
// exactly two groups: the first is the compared-to interval and the
// second the comparison interval. A single file can hold both groups
// when they are told apart by a file configuration key:
//
//	interval: before
//	Request /api/cart 120 ms
//	interval: after
//	Request /api/cart 250 ms
//
// compared with "latencystat compare --by interval lat.txt".
//
// check fetches the latencies of the configured endpoints from
// PostgreSQL, InfluxDB, or timestamped latency files, compares each
// endpoint's comparison interval against its compared-to interval,
// and optionally writes Prometheus metrics for the node exporter's
// textfile collector. With --fail-on-regression it exits with status
// 1 if any endpoint got significantly slower.
//
// filter writes the requests matching a query, such as
// ".endpoint:/api/.* env:prod", back out in latency file format.
//
// compare and check print a table by default, or a JSON document with
// --format json. In the table, "~" marks a change that is not
// statistically significant and "?" one that could not be computed.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stderr, time.Now).Execute(); err != nil {
		os.Exit(1)
	}
}

// cli is the state shared by all subcommands.
type cli struct {
	logLevel  string
	logFormat string
	logOut    io.Writer
	now       func() time.Time
}

func newRootCmd(logOut io.Writer, now func() time.Time) *cobra.Command {
	c := &cli{logOut: logOut, now: now}
	root := &cobra.Command{
		Use:          "latencystat",
		Short:        "Detect changes in endpoint median latency",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log `level`: debug, info, warn, or error (default info)")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "", "log `format`: text or json (default text)")
	root.AddCommand(c.newCompareCmd(), c.newCheckCmd(), c.newFilterCmd())
	return root
}

// logger returns a logger configured by the command-line flags,
// falling back to level and format for flags that were not given.
func (c *cli) logger(level, format string) (*slog.Logger, error) {
	if c.logLevel != "" {
		level = c.logLevel
	}
	if c.logFormat != "" {
		format = c.logFormat
	}
	if level == "" {
		level = "info"
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("bad log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "", "text":
		return slog.New(slog.NewTextHandler(c.logOut, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(c.logOut, opts)), nil
	}
	return nil, fmt.Errorf("bad log format %q: want text or json", format)
}

func checkFormat(format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("bad --format %q: want text or json", format)
	}
	return nil
}
