// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latstat

import (
	"errors"

	"github.com/aclements/go-moremath/stats"
)

// ErrSampleSize is returned when a comparison is attempted with an
// empty sample on either side.
var ErrSampleSize = errors.New("latstat: sample is empty")

// A Distribution is a sorted latency sample and its center.
type Distribution struct {
	// Values is a sorted copy of the sample. It is never the
	// slice passed to NewDistribution.
	Values []float64

	// Center is the median of Values. It is NaN if Values is
	// empty.
	Center float64
}

type DistributionOptions struct{}

// NewDistribution returns the distribution of values. values is not
// modified.
func NewDistribution(values []float64, opts DistributionOptions) *Distribution {
	samp := stats.Sample{Xs: append([]float64(nil), values...)}
	// Speed up order statistics.
	samp.Sort()
	return &Distribution{
		Values: samp.Xs,
		// Quantile interpolates between the two middle
		// values of an even-sized sample, which is the
		// ordinary median.
		Center: samp.Quantile(0.5),
	}
}

// N returns the number of observations in d.
func (d *Distribution) N() int {
	return len(d.Values)
}

// Comparison is the result of comparing two distributions.
type Comparison struct {
	// P is the p-value of Mood's median test of the two
	// distributions.
	P float64

	// Delta is the percent change from the compared-to center to
	// this distribution's center. It is nil if the compared-to
	// center is zero.
	Delta *float64

	N1, N2 int
}

// Compare compares d against the baseline d2. Delta is directional
// (d relative to d2), while P is symmetric in d and d2.
//
// Compare returns ErrSampleSize if either distribution is empty.
func (d *Distribution) Compare(d2 *Distribution) (Comparison, error) {
	res, err := medianTestSorted(d.Values, d2.Values)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{
		P:     res.P,
		Delta: percentDiff(d.Center, d2.Center),
		N1:    d.N(),
		N2:    d2.N(),
	}, nil
}

// percentDiff returns the percent change from ref to x, or nil if ref
// is zero.
func percentDiff(x, ref float64) *float64 {
	if ref == 0 {
		return nil
	}
	diff := (x - ref) / ref * 100
	return &diff
}
