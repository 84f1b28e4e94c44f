// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package files serves latency samples from latency files.
package files

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dashmon/latencystat/latfmt"
	"github.com/dashmon/latencystat/latunit"
	"github.com/dashmon/latencystat/provider"
)

// Options configures Load.
type Options struct {
	// Open, if non-nil, opens each path. See latfmt.Files.
	Open func(string) (io.ReadCloser, error)

	// Logger receives a warning for every file containing
	// requests without a time. If nil, nothing is logged.
	Logger *slog.Logger
}

// Load reads the latency files at paths and returns a provider that
// serves their requests.
//
// Only requests with a time can be assigned to an interval, so
// requests without one are skipped. Load fails on the first malformed
// request or on a request whose unit is not a time unit.
func Load(paths []string, opts Options) (*provider.Static, error) {
	f := &latfmt.Files{Paths: paths, Open: opts.Open}
	defer f.Close()
	var recs []provider.Record
	untimed := make(map[string]int)
	for f.Scan() {
		res, err := f.Result()
		if err != nil {
			return nil, err
		}
		if res.Time.IsZero() {
			untimed[res.GetFileConfig(latfmt.FileKey)]++
			continue
		}
		unit, factor := latunit.TidyUnit(res.Unit)
		if unit != latunit.Seconds {
			return nil, fmt.Errorf("%s: %s: unit %q is not a time unit", res.GetFileConfig(latfmt.FileKey), res.Endpoint, res.Unit)
		}
		recs = append(recs, provider.Record{
			Endpoint: res.Endpoint,
			Time:     res.Time,
			Latency:  res.Value * factor,
		})
	}
	if err := f.Err(); err != nil {
		return nil, err
	}

	if opts.Logger != nil {
		for _, path := range paths {
			if n := untimed[path]; n > 0 {
				opts.Logger.Warn("skipped requests without a time", "file", path, "count", n)
			}
		}
	}
	return provider.NewStatic(recs)
}
