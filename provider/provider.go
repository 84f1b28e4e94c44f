// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package provider contains latency sample providers that do not
// depend on an external store, and helpers shared by the providers in
// its subpackages.
package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/dashmon/latencystat/latstat"
)

// ErrNegativeLatency is returned for a latency that is negative or not
// a number.
var ErrNegativeLatency = errors.New("provider: negative latency")

// Validate checks that every latency in sample is a non-negative
// number.
func Validate(endpoint string, sample []float64) error {
	for _, x := range sample {
		if !(x >= 0) || math.IsInf(x, 0) {
			return fmt.Errorf("%s: latency %v: %w", endpoint, x, ErrNegativeLatency)
		}
	}
	return nil
}

// A Record is one request latency, in seconds.
type Record struct {
	Endpoint string
	Time     time.Time
	Latency  float64
}

// Static serves latencies from an in-memory set of records.
type Static struct {
	byEndpoint map[string][]Record
}

// NewStatic returns a Static provider serving records. records is not
// retained.
func NewStatic(records []Record) (*Static, error) {
	s := &Static{byEndpoint: make(map[string][]Record)}
	for _, rec := range records {
		if err := Validate(rec.Endpoint, []float64{rec.Latency}); err != nil {
			return nil, err
		}
		s.byEndpoint[rec.Endpoint] = append(s.byEndpoint[rec.Endpoint], rec)
	}
	for _, recs := range s.byEndpoint {
		slices.SortStableFunc(recs, func(a, b Record) int {
			return a.Time.Compare(b.Time)
		})
	}
	return s, nil
}

// Endpoints returns the endpoints s has records for, sorted.
func (s *Static) Endpoints() []string {
	eps := make([]string, 0, len(s.byEndpoint))
	for ep := range s.byEndpoint {
		eps = append(eps, ep)
	}
	slices.Sort(eps)
	return eps
}

// FetchLatencies returns the latencies of endpoint recorded during
// iv, in time order.
func (s *Static) FetchLatencies(ctx context.Context, endpoint string, iv latstat.Interval) ([]float64, error) {
	if err := iv.Validate(); err != nil {
		return nil, err
	}
	recs := s.byEndpoint[endpoint]
	lo, _ := slices.BinarySearchFunc(recs, iv.Start, func(r Record, t time.Time) int {
		return r.Time.Compare(t)
	})
	sample := []float64{}
	for _, rec := range recs[lo:] {
		if !iv.Contains(rec.Time) {
			break
		}
		sample = append(sample, rec.Latency)
	}
	return sample, nil
}

var _ latstat.Provider = (*Static)(nil)
