// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latstat

import (
	"encoding/json"
	"math"
	"slices"
	"testing"
)

func repeat(x float64, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = x
	}
	return xs
}

func checkFloat(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Errorf("%s: got nil, want %v", name, want)
	} else if !aeq(*got, want) {
		t.Errorf("%s: got %v, want %v", name, *got, want)
	}
}

func checkNil(t *testing.T, name string, got *float64) {
	t.Helper()
	if got != nil {
		t.Errorf("%s: got %v, want nil", name, *got)
	}
}

func TestEvaluateIdentical(t *testing.T) {
	e := NewEngine(EngineOptions{})
	v := e.Evaluate(repeat(100, 4), repeat(100, 4))

	if v.Significant {
		t.Error("identical samples reported as significant")
	}
	checkFloat(t, "comparison median", v.ComparisonMedian, 100)
	checkFloat(t, "compared-to median", v.ComparedToMedian, 100)
	checkFloat(t, "percentual diff", v.PercentualDiff, 0)
	checkFloat(t, "p", v.P, 1)
	if v.Inconclusive() {
		t.Error("verdict is inconclusive")
	}
}

func TestEvaluateEqualMediansSpread(t *testing.T) {
	// Same median, but the comparison sample is spread around it, so
	// the median test alone would reject.
	comparison := append(repeat(1, 10), repeat(9, 10)...)
	comparison = append(comparison, 5)
	comparedTo := repeat(5, 21)

	v := NewEngine(EngineOptions{}).Evaluate(comparison, comparedTo)
	checkFloat(t, "comparison median", v.ComparisonMedian, 5)
	checkFloat(t, "compared-to median", v.ComparedToMedian, 5)
	checkFloat(t, "percentual diff", v.PercentualDiff, 0)
	if v.P == nil || *v.P >= DefaultAlpha {
		t.Fatalf("p = %v, want below %v", v.P, DefaultAlpha)
	}
	if v.Significant {
		t.Errorf("zero change reported as significant (p=%v)", *v.P)
	}
}

func TestEvaluateSameMultiset(t *testing.T) {
	e := NewEngine(EngineOptions{Alpha: 0.99})
	v := e.Evaluate([]float64{1, 2, 3, 4, 5}, []float64{5, 4, 3, 2, 1})
	checkFloat(t, "percentual diff", v.PercentualDiff, 0)
	checkFloat(t, "comparison median", v.ComparisonMedian, 3)
	if v.Significant {
		t.Error("reordered sample reported as significant")
	}
}

func TestEvaluateShift(t *testing.T) {
	e := NewEngine(EngineOptions{})
	v := e.Evaluate(repeat(500, 20), repeat(100, 20))

	if !v.Significant {
		t.Error("5x slowdown not reported as significant")
	}
	checkFloat(t, "comparison median", v.ComparisonMedian, 500)
	checkFloat(t, "compared-to median", v.ComparedToMedian, 100)
	checkFloat(t, "percentual diff", v.PercentualDiff, 400)
	checkFloat(t, "p", v.P, math.Erfc(math.Sqrt(36.1/2)))
	if *v.P >= 1e-8 {
		t.Errorf("got p %v, want < 1e-8", *v.P)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	e := NewEngine(EngineOptions{})
	for _, test := range []struct {
		name               string
		comparison, compTo []float64
	}{
		{"empty comparison", nil, []float64{100, 200}},
		{"empty compared-to", []float64{100, 200}, []float64{}},
		{"both empty", nil, nil},
	} {
		t.Run(test.name, func(t *testing.T) {
			v := e.Evaluate(test.comparison, test.compTo)
			if v.Significant {
				t.Error("empty sample reported as significant")
			}
			if !v.Inconclusive() {
				t.Error("verdict is not inconclusive")
			}
			checkNil(t, "comparison median", v.ComparisonMedian)
			checkNil(t, "compared-to median", v.ComparedToMedian)
			checkNil(t, "percentual diff", v.PercentualDiff)
			checkNil(t, "p", v.P)
			if !slices.Equal(v.ComparisonSample, test.comparison) || !slices.Equal(v.ComparedToSample, test.compTo) {
				t.Errorf("samples not retained: got %v and %v", v.ComparisonSample, v.ComparedToSample)
			}
		})
	}
}

func TestEvaluateZeroComparedTo(t *testing.T) {
	e := NewEngine(EngineOptions{})
	v := e.Evaluate([]float64{50, 60, 55}, []float64{0, 0, 0})

	if v.Significant {
		t.Error("undefined change reported as significant")
	}
	checkFloat(t, "comparison median", v.ComparisonMedian, 55)
	checkFloat(t, "compared-to median", v.ComparedToMedian, 0)
	checkNil(t, "percentual diff", v.PercentualDiff)
	if v.P == nil {
		t.Error("median test was not run")
	}
}

func TestEvaluateDirection(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6}
	b := []float64{4, 5, 6, 7, 8, 9}
	e := NewEngine(EngineOptions{})

	ab := e.Evaluate(a, b)
	ba := e.Evaluate(b, a)

	checkFloat(t, "a vs b diff", ab.PercentualDiff, (3.5-6.5)/6.5*100)
	checkFloat(t, "b vs a diff", ba.PercentualDiff, (6.5-3.5)/3.5*100)
	if !aeq(*ab.P, *ba.P) {
		t.Errorf("p depends on order: %v vs %v", *ab.P, *ba.P)
	}
	if ab.Significant != ba.Significant {
		t.Errorf("significance depends on order: %v vs %v", ab.Significant, ba.Significant)
	}
	// p is about 0.24.
	if ab.Significant {
		t.Error("overlapping samples reported as significant at the default alpha")
	}
}

func TestEvaluateAlpha(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6}
	b := []float64{4, 5, 6, 7, 8, 9}

	if got := NewEngine(EngineOptions{}).Alpha(); got != DefaultAlpha {
		t.Errorf("default alpha: got %v, want %v", got, DefaultAlpha)
	}
	e := NewEngine(EngineOptions{Alpha: 0.5})
	if got := e.Alpha(); got != 0.5 {
		t.Errorf("alpha: got %v, want 0.5", got)
	}
	if v := e.Evaluate(a, b); !v.Significant {
		t.Errorf("p %v not significant at alpha 0.5", *v.P)
	}
}

func TestEvaluateSingletons(t *testing.T) {
	v := NewEngine(EngineOptions{}).Evaluate([]float64{2}, []float64{1})
	checkFloat(t, "comparison median", v.ComparisonMedian, 2)
	checkFloat(t, "compared-to median", v.ComparedToMedian, 1)
	checkFloat(t, "percentual diff", v.PercentualDiff, 100)
	checkFloat(t, "p", v.P, 1)
	if v.Significant {
		t.Error("single observations reported as significant")
	}
}

func TestEvaluateDoesNotModify(t *testing.T) {
	a := []float64{30, 10, 20}
	b := []float64{3, 1, 2}
	v := NewEngine(EngineOptions{}).Evaluate(a, b)
	if !slices.Equal(a, []float64{30, 10, 20}) || !slices.Equal(b, []float64{3, 1, 2}) {
		t.Errorf("inputs were modified: %v %v", a, b)
	}
	if !slices.Equal(v.ComparisonSample, a) || !slices.Equal(v.ComparedToSample, b) {
		t.Errorf("samples not retained in order: %v %v", v.ComparisonSample, v.ComparedToSample)
	}
}

func TestVerdictMeta(t *testing.T) {
	e := NewEngine(EngineOptions{})
	for _, test := range []struct {
		name               string
		comparison, compTo []float64
		want               string
	}{
		{
			"empty",
			nil, []float64{100, 200},
			`{"latencies_sample":{"comparison_interval":[],"compared_to_interval":[100,200]},"comparison_median":null,"compared_to_median":null,"percentual_diff":null}`,
		},
		{
			"zero compared-to",
			[]float64{50, 60, 55}, []float64{0, 0, 0},
			`{"latencies_sample":{"comparison_interval":[50,60,55],"compared_to_interval":[0,0,0]},"comparison_median":55,"compared_to_median":0,"percentual_diff":null}`,
		},
		{
			"identical",
			[]float64{100}, []float64{100},
			`{"latencies_sample":{"comparison_interval":[100],"compared_to_interval":[100]},"comparison_median":100,"compared_to_median":100,"percentual_diff":0}`,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			data, err := json.Marshal(e.Evaluate(test.comparison, test.compTo).Meta())
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != test.want {
				t.Errorf("got %s\nwant %s", data, test.want)
			}
		})
	}
}
