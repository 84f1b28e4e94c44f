// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dashmon/latencystat/latfilter"
	"github.com/dashmon/latencystat/latfmt"
	"github.com/dashmon/latencystat/latstat"
	"github.com/dashmon/latencystat/report"
)

func (c *cli) newCompareCmd() *cobra.Command {
	var (
		by     string
		filter string
		alpha  float64
		format string
	)
	cmd := &cobra.Command{
		Use:   "compare [flags] inputs...",
		Short: "Compare the latencies recorded in latency files",
		Long: `compare reads latency files and compares the median latency of each
endpoint between two groups of results. Results are grouped by the --by
key, which defaults to the input file. The first group is the compared-to
interval and the second the comparison interval. If no inputs are given,
compare reads from stdin.

--filter restricts the comparison to results matching a query such as
'.endpoint:/api/.* -.endpoint:/api/health env:prod'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			if alpha <= 0 || alpha >= 1 {
				return fmt.Errorf("bad --alpha %v: must be in (0, 1)", alpha)
			}
			log, err := c.logger("", "")
			if err != nil {
				return err
			}
			label, err := latfmt.NewExtractor(by)
			if err != nil {
				return fmt.Errorf("bad --by: %w", err)
			}
			var keep *latfilter.Filter
			if filter != "" {
				if keep, err = latfilter.New(filter); err != nil {
					return fmt.Errorf("bad --filter: %w", err)
				}
			}
			engine := latstat.NewEngine(latstat.EngineOptions{Alpha: alpha})

			coll := latstat.NewCollection(label)
			files := &latfmt.Files{Paths: args, AllowStdin: true}
			defer files.Close()
			for files.Scan() {
				res, err := files.Result()
				if err != nil {
					// Non-fatal result parse error.
					log.Warn("skipping malformed request", "error", err)
					continue
				}
				if keep != nil && !keep.Match(res) {
					continue
				}
				if err := coll.Add(res); err != nil {
					log.Warn("skipping request", "error", err)
				}
			}
			if err := files.Err(); err != nil {
				return err
			}

			labels := coll.Labels()
			if len(labels) != 2 {
				return fmt.Errorf("need exactly two groups of results to compare, got %d %q", len(labels), labels)
			}
			before, after := labels[0], labels[1]

			rep := report.New(engine.Alpha(), c.now())
			for _, row := range coll.Compare(engine, after, before) {
				rep.Add(row.Endpoint, after, before, row.Verdict)
			}
			if format == "json" {
				return rep.WriteJSON(cmd.OutOrStdout())
			}
			return rep.WriteText(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&by, "by", latfmt.FileKey, "group results by `key`: a file configuration key, .file, or .date")
	cmd.Flags().StringVar(&filter, "filter", "", "only compare results matching `query`")
	cmd.Flags().Float64Var(&alpha, "alpha", latstat.DefaultAlpha, "significance level")
	cmd.Flags().StringVar(&format, "format", "text", "output `format`: text or json")
	return cmd
}
