// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latstat

import (
	"math"
	"sort"

	"github.com/aclements/go-moremath/mathx"
	"github.com/aclements/go-moremath/stats"
)

// MedianTestResult is the result of Mood's median test.
type MedianTestResult struct {
	// N1 and N2 are the sizes of the two samples.
	N1, N2 int

	// GrandMedian is the median of the pooled samples.
	GrandMedian float64

	// Above1 and Above2 are the number of observations in each
	// sample strictly above GrandMedian. The remaining N1-Above1
	// and N2-Above2 observations are at or below it.
	Above1, Above2 int

	// Statistic is the Pearson chi-squared statistic of the 2x2
	// contingency table, with Yates' continuity correction.
	Statistic float64

	// P is the p-value of the null hypothesis that both samples
	// were drawn from populations with the same median.
	P float64
}

// MedianTest performs Mood's median test on x1 and x2.
//
// Each sample is split into the observations above the median of the
// pooled data and those at or below it, and the resulting 2x2
// contingency table is tested for independence. The test is
// symmetric: swapping x1 and x2 transposes the table and yields the
// same statistic and p-value.
//
// If every pooled observation lies on the same side of the grand
// median (in particular, if all observations are equal), the table
// carries no evidence of a difference and the result has Statistic 0
// and P 1.
//
// MedianTest returns ErrSampleSize if either sample is empty. x1 and
// x2 are not modified.
func MedianTest(x1, x2 []float64) (*MedianTestResult, error) {
	s1 := append([]float64(nil), x1...)
	s2 := append([]float64(nil), x2...)
	sort.Float64s(s1)
	sort.Float64s(s2)
	return medianTestSorted(s1, s2)
}

// medianTestSorted is MedianTest for samples that are already sorted.
func medianTestSorted(x1, x2 []float64) (*MedianTestResult, error) {
	n1, n2 := len(x1), len(x2)
	if n1 == 0 || n2 == 0 {
		return nil, ErrSampleSize
	}

	pooled := stats.Sample{Xs: mergeSorted(x1, x2), Sorted: true}
	grand := pooled.Quantile(0.5)

	res := &MedianTestResult{
		N1:          n1,
		N2:          n2,
		GrandMedian: grand,
		Above1:      countAbove(x1, grand),
		Above2:      countAbove(x2, grand),
	}

	above := res.Above1 + res.Above2
	n := n1 + n2
	if above == 0 || above == n {
		res.P = 1
		return res, nil
	}

	observed := [2][2]float64{
		{float64(res.Above1), float64(res.Above2)},
		{float64(n1 - res.Above1), float64(n2 - res.Above2)},
	}
	rows := [2]float64{float64(above), float64(n - above)}
	cols := [2]float64{float64(n1), float64(n2)}

	var chi2 float64
	for i := range observed {
		for j := range observed[i] {
			expected := rows[i] * cols[j] / float64(n)
			// Yates' correction moves each observed count
			// toward its expectation by at most 1/2.
			diff := math.Abs(expected - observed[i][j])
			diff -= math.Min(0.5, diff)
			chi2 += diff * diff / expected
		}
	}
	res.Statistic = chi2
	res.P = chiSquaredSF(chi2, 1)
	return res, nil
}

// chiSquaredSF returns the survival function of the chi-squared
// distribution with k degrees of freedom at x.
func chiSquaredSF(x float64, k int) float64 {
	if x <= 0 {
		return 1
	}
	return mathx.GammaIncComp(float64(k)/2, x/2)
}

// countAbove returns the number of values in sorted xs that are
// strictly greater than m.
func countAbove(xs []float64, m float64) int {
	return len(xs) - sort.Search(len(xs), func(i int) bool { return xs[i] > m })
}

// mergeSorted returns the sorted union of sorted slices a and b.
func mergeSorted(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
