// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dashmon/latencystat/latfilter"
	"github.com/dashmon/latencystat/latfmt"
	"github.com/dashmon/latencystat/latunit"
)

func (c *cli) newFilterCmd() *cobra.Command {
	var timeOnly bool
	cmd := &cobra.Command{
		Use:   "filter [flags] query [inputs...]",
		Short: "Print the requests in latency files that match a query",
		Long: `filter reads latency files and writes the requests matching query
to stdout in the same format, so the output can be fed back to compare.
If no inputs are given, filter reads from stdin.

With --time-only, requests whose unit is not a time unit are dropped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := c.logger("", "")
			if err != nil {
				return err
			}
			keep, err := latfilter.New(args[0])
			if err != nil {
				return err
			}

			w := latfmt.NewWriter(cmd.OutOrStdout())
			files := &latfmt.Files{Paths: args[1:], AllowStdin: true}
			defer files.Close()
			for files.Scan() {
				res, err := files.Result()
				if err != nil {
					log.Warn("skipping malformed request", "error", err)
					continue
				}
				if timeOnly && !latunit.IsTime(res.Unit) {
					log.Debug("dropping request", "endpoint", res.Endpoint, "unit", res.Unit)
					continue
				}
				if !keep.Match(res) {
					continue
				}
				if err := w.Write(res); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			return files.Err()
		},
	}
	cmd.Flags().BoolVar(&timeOnly, "time-only", false, "drop requests whose unit is not a time unit")
	return cmd
}
