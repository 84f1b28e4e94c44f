// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sqldb serves latency samples from the request log of a
// monitoring dashboard stored in PostgreSQL.
//
// The request log is a table of requests, each with a duration in
// milliseconds, a request time, and a reference to a row of an
// endpoint table holding the endpoint's name.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	// Registers the "postgres" driver.
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/dashmon/latencystat/latstat"
	"github.com/dashmon/latencystat/provider"
)

var tracer = otel.Tracer("github.com/dashmon/latencystat/provider/sqldb")

// Options configures a Provider.
type Options struct {
	// RequestTable and EndpointTable name the request log and
	// endpoint tables. They default to "Request" and "Endpoint".
	RequestTable  string
	EndpointTable string

	// SampleSize is the largest number of latencies fetched per
	// interval, selected at random by the database. If zero, all
	// latencies are fetched.
	SampleSize int
}

// Provider reads latencies from a request log.
type Provider struct {
	db    *sql.DB
	query string
	limit int
}

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Open opens the PostgreSQL database at connString.
func Open(connString string, opts Options) (*Provider, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	p, err := New(db, opts)
	if err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

// New returns a Provider that queries db.
func New(db *sql.DB, opts Options) (*Provider, error) {
	if opts.RequestTable == "" {
		opts.RequestTable = "Request"
	}
	if opts.EndpointTable == "" {
		opts.EndpointTable = "Endpoint"
	}
	for _, name := range []string{opts.RequestTable, opts.EndpointTable} {
		if !identRE.MatchString(name) {
			return nil, fmt.Errorf("invalid table name %q", name)
		}
	}
	if opts.SampleSize < 0 {
		return nil, fmt.Errorf("negative sample size %d", opts.SampleSize)
	}
	return &Provider{
		db:    db,
		query: buildQuery(opts.RequestTable, opts.EndpointTable, opts.SampleSize > 0),
		limit: opts.SampleSize,
	}, nil
}

// Query returns the SQL text p runs. Its parameters are the endpoint
// name, the interval start and end, and, if sampling, the sample size.
func (p *Provider) Query() string {
	return p.query
}

func buildQuery(requests, endpoints string, sample bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, `SELECT r.duration FROM %q r JOIN %q e ON r.endpoint_id = e.id`, requests, endpoints)
	b.WriteString(` WHERE e.name = $1 AND r.time_requested >= $2 AND r.time_requested < $3`)
	if sample {
		b.WriteString(` ORDER BY random() LIMIT $4`)
	}
	return b.String()
}

// FetchLatencies returns the latencies, in seconds, of the requests
// to endpoint made during iv.
func (p *Provider) FetchLatencies(ctx context.Context, endpoint string, iv latstat.Interval) (sample []float64, err error) {
	if err := iv.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "sqldb.FetchLatencies")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "query failed")
		}
		span.SetAttributes(attribute.Int("sample_size", len(sample)))
		span.End()
	}()
	span.SetAttributes(attribute.String("endpoint", endpoint))

	args := []any{endpoint, iv.Start, iv.End}
	if p.limit > 0 {
		args = append(args, p.limit)
	}
	rows, err := p.db.QueryContext(ctx, p.query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying latencies: %w", err)
	}
	defer rows.Close()

	sample = []float64{}
	for rows.Next() {
		var ms float64
		if err := rows.Scan(&ms); err != nil {
			return nil, fmt.Errorf("scanning latency: %w", err)
		}
		sample = append(sample, ms/1000)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading latencies: %w", err)
	}
	if err := provider.Validate(endpoint, sample); err != nil {
		return nil, err
	}
	return sample, nil
}

// Close closes the underlying database.
func (p *Provider) Close() error {
	return p.db.Close()
}

var _ latstat.Provider = (*Provider)(nil)
