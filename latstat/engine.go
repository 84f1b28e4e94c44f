// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package latstat decides whether the latency of an endpoint changed
// between two intervals.
//
// The central type is Engine, whose Evaluate method compares two
// latency samples: it computes their medians, the relative change
// between them, and the p-value of Mood's median test, and combines
// these into a Verdict. Evaluate is a pure function of its inputs and
// an Engine may be shared by any number of goroutines.
//
// Checker and Collection feed an Engine from a Provider or from
// parsed latency files.
package latstat

// DefaultAlpha is the significance level used when EngineOptions
// does not set one. A change is reported as significant only if the
// median test's p-value is below it.
const DefaultAlpha = 0.05

// EngineOptions configures an Engine.
type EngineOptions struct {
	// Alpha is the significance level. If zero, DefaultAlpha is
	// used.
	Alpha float64
}

// An Engine evaluates pairs of latency samples.
type Engine struct {
	alpha float64
}

// NewEngine returns an Engine configured by opts.
func NewEngine(opts EngineOptions) *Engine {
	alpha := opts.Alpha
	if alpha == 0 {
		alpha = DefaultAlpha
	}
	return &Engine{alpha: alpha}
}

// Alpha returns the significance level of e.
func (e *Engine) Alpha() float64 {
	return e.alpha
}

// Evaluate compares the latencies observed in the comparison interval
// against those observed in the compared-to interval.
//
// All values must be non-negative. Neither slice is modified; both are
// retained by the returned Verdict.
//
// If either sample is empty, the Verdict is not significant and
// carries only the samples. Otherwise it is significant if the
// percentual difference between the medians is defined and non-zero,
// and the median test rejects equal medians at e's significance level.
// Swapping the samples negates the direction of the difference but
// not the p-value.
func (e *Engine) Evaluate(comparison, comparedTo []float64) *Verdict {
	v := &Verdict{
		ComparisonSample: comparison,
		ComparedToSample: comparedTo,
	}
	if len(comparison) == 0 || len(comparedTo) == 0 {
		return v
	}

	d1 := NewDistribution(comparison, DistributionOptions{})
	d2 := NewDistribution(comparedTo, DistributionOptions{})
	cmp, err := d1.Compare(d2)
	if err != nil {
		// Unreachable: both samples are non-empty.
		return v
	}

	m1, m2, p := d1.Center, d2.Center, cmp.P
	v.ComparisonMedian = &m1
	v.ComparedToMedian = &m2
	v.PercentualDiff = cmp.Delta
	v.P = &p
	v.Significant = cmp.Delta != nil && *cmp.Delta != 0 && p < e.alpha
	return v
}
