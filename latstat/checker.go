// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latstat

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/dashmon/latencystat/latstat")

// A Provider returns the latencies recorded for an endpoint during an
// interval, in any order. It returns an empty sample, not an error,
// if no requests were recorded.
//
// Latencies must be non-negative.
type Provider interface {
	FetchLatencies(ctx context.Context, endpoint string, iv Interval) ([]float64, error)
}

// An Observer is notified of the outcome of each check.
type Observer interface {
	ObserveVerdict(endpoint string, v *Verdict, elapsed time.Duration)
	ObserveFetchError(endpoint string)
}

// A Checker fetches latency samples from a Provider and evaluates
// them.
type Checker struct {
	Provider Provider

	// Engine evaluates samples. If nil, an Engine with default
	// options is used.
	Engine *Engine

	// Observer, if non-nil, is notified of every verdict and
	// fetch failure.
	Observer Observer

	// Logger receives one record per check. If nil, nothing is
	// logged.
	Logger *slog.Logger

	// Parallelism bounds the number of endpoints CheckAll
	// checks at once. If <= 0, GOMAXPROCS is used.
	Parallelism int
}

// A Check is the verdict for one endpoint and pair of intervals.
type Check struct {
	Endpoint   string
	Comparison Interval
	ComparedTo Interval
	Verdict    *Verdict
}

// Check compares the latencies of endpoint during comparison against
// those during comparedTo.
func (c *Checker) Check(ctx context.Context, endpoint string, comparison, comparedTo Interval) (*Check, error) {
	ctx, span := tracer.Start(ctx, "Checker.Check")
	defer span.End()
	span.SetAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("comparison", comparison.String()),
		attribute.String("compared_to", comparedTo.String()),
	)

	start := time.Now()
	cmpSample, err := c.fetch(ctx, endpoint, comparison)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}
	refSample, err := c.fetch(ctx, endpoint, comparedTo)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}

	v := c.engine().Evaluate(cmpSample, refSample)
	elapsed := time.Since(start)
	span.SetAttributes(attribute.Bool("significant", v.Significant))
	if c.Observer != nil {
		c.Observer.ObserveVerdict(endpoint, v, elapsed)
	}
	c.logger().LogAttrs(ctx, slog.LevelDebug, "checked endpoint",
		slog.String("endpoint", endpoint),
		slog.Int("comparison_n", len(cmpSample)),
		slog.Int("compared_to_n", len(refSample)),
		slog.Bool("significant", v.Significant),
		slog.Duration("elapsed", elapsed),
	)
	if v.Significant {
		c.logger().LogAttrs(ctx, slog.LevelInfo, "median latency changed",
			slog.String("endpoint", endpoint),
			slog.Float64("comparison_median", *v.ComparisonMedian),
			slog.Float64("compared_to_median", *v.ComparedToMedian),
			slog.Float64("percentual_diff", *v.PercentualDiff),
		)
	}

	return &Check{
		Endpoint:   endpoint,
		Comparison: comparison,
		ComparedTo: comparedTo,
		Verdict:    v,
	}, nil
}

// CheckAll checks each of endpoints concurrently. The returned checks
// are in the order of endpoints. The first error cancels the
// remaining checks and is returned.
func (c *Checker) CheckAll(ctx context.Context, endpoints []string, comparison, comparedTo Interval) ([]*Check, error) {
	limit := c.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	checks := make([]*Check, len(endpoints))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, endpoint := range endpoints {
		g.Go(func() error {
			check, err := c.Check(ctx, endpoint, comparison, comparedTo)
			if err != nil {
				return err
			}
			checks[i] = check
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return checks, nil
}

func (c *Checker) fetch(ctx context.Context, endpoint string, iv Interval) ([]float64, error) {
	sample, err := c.Provider.FetchLatencies(ctx, endpoint, iv)
	if err != nil {
		if c.Observer != nil {
			c.Observer.ObserveFetchError(endpoint)
		}
		c.logger().LogAttrs(ctx, slog.LevelWarn, "fetching latencies failed",
			slog.String("endpoint", endpoint),
			slog.String("interval", iv.String()),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("fetching %s latencies for %s: %w", endpoint, iv, err)
	}
	return sample, nil
}

func (c *Checker) engine() *Engine {
	if c.Engine == nil {
		return NewEngine(EngineOptions{})
	}
	return c.Engine
}

func (c *Checker) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}
