// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latstat

// A Verdict is the outcome of comparing the latencies of one endpoint
// in two intervals. Verdicts are values: nothing in this package
// modifies a Verdict after Evaluate returns it.
//
// Numeric fields are nil when they could not be computed. A nil
// PercentualDiff is distinct from a zero one: the former means the
// change is undefined, the latter that the medians are equal.
type Verdict struct {
	// Significant reports whether the comparison median differs
	// from the compared-to median with p below the engine's
	// alpha.
	Significant bool

	// ComparisonMedian and ComparedToMedian are the medians of
	// the two samples. They are nil unless both samples are
	// non-empty.
	ComparisonMedian *float64
	ComparedToMedian *float64

	// PercentualDiff is the change of ComparisonMedian relative
	// to ComparedToMedian, in percent. It is nil if either sample
	// is empty or ComparedToMedian is zero.
	PercentualDiff *float64

	// P is the p-value of Mood's median test. It is nil if the
	// test was not run.
	P *float64

	// ComparisonSample and ComparedToSample are the samples the
	// verdict was computed from, in the order they were given.
	ComparisonSample []float64
	ComparedToSample []float64
}

// Inconclusive reports whether v was computed without running the
// significance test, which happens when either sample is empty.
func (v *Verdict) Inconclusive() bool {
	return v.P == nil
}

// VerdictMeta is the exported form of a Verdict's measurements.
type VerdictMeta struct {
	LatenciesSample  LatenciesSample `json:"latencies_sample"`
	ComparisonMedian *float64        `json:"comparison_median"`
	ComparedToMedian *float64        `json:"compared_to_median"`
	PercentualDiff   *float64        `json:"percentual_diff"`
}

// LatenciesSample groups the raw samples of a VerdictMeta.
type LatenciesSample struct {
	ComparisonInterval []float64 `json:"comparison_interval"`
	ComparedToInterval []float64 `json:"compared_to_interval"`
}

// Meta returns the measurements of v in the layout consumed by
// reports. Empty samples are non-nil so they encode as [] rather than
// null.
func (v *Verdict) Meta() VerdictMeta {
	return VerdictMeta{
		LatenciesSample: LatenciesSample{
			ComparisonInterval: nonNil(v.ComparisonSample),
			ComparedToInterval: nonNil(v.ComparedToSample),
		},
		ComparisonMedian: v.ComparisonMedian,
		ComparedToMedian: v.ComparedToMedian,
		PercentualDiff:   v.PercentualDiff,
	}
}

func nonNil(xs []float64) []float64 {
	if xs == nil {
		return []float64{}
	}
	return xs
}
