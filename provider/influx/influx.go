// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package influx serves latency samples from request durations stored
// in InfluxDB 2.
//
// Each request is a point of a measurement with an endpoint tag and a
// duration field in milliseconds.
package influx

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/dashmon/latencystat/latstat"
	"github.com/dashmon/latencystat/provider"
)

var tracer = otel.Tracer("github.com/dashmon/latencystat/provider/influx")

// Options configures a Provider.
type Options struct {
	URL, Token, Org, Bucket string

	// Measurement, EndpointTag, and Field locate the request
	// durations. They default to "request", "endpoint", and
	// "duration".
	Measurement string
	EndpointTag string
	Field       string
}

// Provider reads latencies from an InfluxDB bucket.
type Provider struct {
	client influxdb2.Client
	query  api.QueryAPI
	flux   string
}

// New returns a Provider for the server and bucket named by opts.
func New(opts Options) (*Provider, error) {
	if opts.URL == "" || opts.Org == "" || opts.Bucket == "" {
		return nil, fmt.Errorf("influx: url, org, and bucket must be set")
	}
	if opts.Measurement == "" {
		opts.Measurement = "request"
	}
	if opts.EndpointTag == "" {
		opts.EndpointTag = "endpoint"
	}
	if opts.Field == "" {
		opts.Field = "duration"
	}

	client := influxdb2.NewClient(opts.URL, opts.Token)
	return &Provider{
		client: client,
		query:  client.QueryAPI(opts.Org),
		flux:   buildFlux(opts),
	}, nil
}

// Everything that depends on the caller goes through query
// parameters, so endpoint names cannot inject Flux.
func buildFlux(opts Options) string {
	return fmt.Sprintf(`from(bucket: %q)
  |> range(start: time(v: params.start), stop: time(v: params.stop))
  |> filter(fn: (r) => r._measurement == %q)
  |> filter(fn: (r) => r[%q] == params.endpoint)
  |> filter(fn: (r) => r._field == %q)
  |> keep(columns: ["_time", "_value"])`,
		opts.Bucket, opts.Measurement, opts.EndpointTag, opts.Field)
}

// Flux returns the Flux query p runs.
func (p *Provider) Flux() string {
	return p.flux
}

type queryParams struct {
	Endpoint string `json:"endpoint"`
	Start    string `json:"start"`
	Stop     string `json:"stop"`
}

// FetchLatencies returns the latencies, in seconds, of the requests
// to endpoint made during iv.
func (p *Provider) FetchLatencies(ctx context.Context, endpoint string, iv latstat.Interval) (sample []float64, err error) {
	if err := iv.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "influx.FetchLatencies")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "query failed")
		}
		span.SetAttributes(attribute.Int("sample_size", len(sample)))
		span.End()
	}()
	span.SetAttributes(attribute.String("endpoint", endpoint))

	result, err := p.query.QueryWithParams(ctx, p.flux, queryParams{
		Endpoint: endpoint,
		Start:    iv.Start.Format(time.RFC3339Nano),
		Stop:     iv.End.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("influx query: %w", err)
	}
	defer result.Close()

	sample = []float64{}
	for result.Next() {
		ms, err := toFloat(result.Record().Value())
		if err != nil {
			return nil, fmt.Errorf("influx record at %s: %w", result.Record().Time().Format(time.RFC3339), err)
		}
		sample = append(sample, ms/1000)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("reading influx results: %w", err)
	}
	if err := provider.Validate(endpoint, sample); err != nil {
		return nil, err
	}
	return sample, nil
}

func toFloat(v any) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("duration has type %T, want a number", v)
}

// Close releases the client's resources.
func (p *Provider) Close() {
	p.client.Close()
}

var _ latstat.Provider = (*Provider)(nil)
