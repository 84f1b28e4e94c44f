// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package provider

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashmon/latencystat/latstat"
)

var (
	noon = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	hour = latstat.Interval{Start: noon, End: noon.Add(time.Hour)}
)

func TestStatic(t *testing.T) {
	s, err := NewStatic([]Record{
		{"/a", noon.Add(30 * time.Minute), 0.3},
		{"/a", noon, 0.1},
		{"/a", noon.Add(time.Hour), 9},
		{"/a", noon.Add(-time.Second), 9},
		{"/b", noon.Add(time.Minute), 0.2},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, s.Endpoints())

	got, err := s.FetchLatencies(context.Background(), "/a", hour)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.3}, got)

	got, err = s.FetchLatencies(context.Background(), "/missing", hour)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = s.FetchLatencies(context.Background(), "/a", latstat.Interval{Start: noon, End: noon})
	assert.ErrorIs(t, err, latstat.ErrBadInterval)
}

func TestStaticRejectsNegative(t *testing.T) {
	for _, bad := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := NewStatic([]Record{{"/a", noon, bad}})
		assert.ErrorIs(t, err, ErrNegativeLatency, "latency %v", bad)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("/a", nil))
	assert.NoError(t, Validate("/a", []float64{0, 1.5}))
	err := Validate("/a", []float64{1, -0.5})
	require.ErrorIs(t, err, ErrNegativeLatency)
	assert.Contains(t, err.Error(), "/a")
}

type sliceProvider []float64

func (p sliceProvider) FetchLatencies(ctx context.Context, endpoint string, iv latstat.Interval) ([]float64, error) {
	return p, nil
}

func TestLimit(t *testing.T) {
	full := make(sliceProvider, 1000)
	for i := range full {
		full[i] = float64(i)
	}

	l := NewLimit(full, 0, rand.NewPCG(1, 2))
	got, err := l.FetchLatencies(context.Background(), "/a", hour)
	require.NoError(t, err)
	require.Len(t, got, DefaultSampleSize)

	// The subset has no repeats and is drawn from the sample.
	sorted := slices.Clone(got)
	slices.Sort(sorted)
	assert.Len(t, slices.Compact(sorted), DefaultSampleSize)
	assert.GreaterOrEqual(t, sorted[0], 0.0)
	assert.Less(t, sorted[len(sorted)-1], 1000.0)

	// The underlying sample is not modified.
	for i, x := range full {
		require.Equal(t, float64(i), x)
	}
}

func TestLimitSmallSample(t *testing.T) {
	small := sliceProvider{3, 1, 2}
	for _, n := range []int{0, 3, 10, -1} {
		got, err := NewLimit(small, n, nil).FetchLatencies(context.Background(), "/a", hour)
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 1, 2}, got, "n=%d", n)
	}

	got, err := NewLimit(small, 2, rand.NewPCG(3, 4)).FetchLatencies(context.Background(), "/a", hour)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Subset(t, []float64{1, 2, 3}, got)
}

func TestLimitZeroValue(t *testing.T) {
	l := &Limit{Provider: sliceProvider{1, 2, 3, 4}, N: 1}
	got, err := l.FetchLatencies(context.Background(), "/a", hour)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
