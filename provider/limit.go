// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package provider

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/dashmon/latencystat/latstat"
)

// DefaultSampleSize is the number of latencies a Limit keeps when N
// is zero.
const DefaultSampleSize = 500

// Limit bounds the size of the samples returned by a provider. Larger
// samples are replaced by a uniformly random subset.
type Limit struct {
	Provider latstat.Provider

	// N is the largest sample Limit returns. If zero,
	// DefaultSampleSize is used; if negative, samples are
	// returned unchanged.
	N int

	mu   sync.Mutex
	rand *rand.Rand
}

// NewLimit returns a Limit that draws its subsets using src. If src
// is nil, a randomly seeded source is used.
func NewLimit(p latstat.Provider, n int, src rand.Source) *Limit {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Limit{Provider: p, N: n, rand: rand.New(src)}
}

// FetchLatencies fetches a sample from the underlying provider and
// returns at most l.N of its latencies. A truncated sample is in
// random order.
func (l *Limit) FetchLatencies(ctx context.Context, endpoint string, iv latstat.Interval) ([]float64, error) {
	sample, err := l.Provider.FetchLatencies(ctx, endpoint, iv)
	if err != nil {
		return nil, err
	}
	n := l.N
	if n == 0 {
		n = DefaultSampleSize
	}
	if n < 0 || len(sample) <= n {
		return sample, nil
	}

	// Partial Fisher-Yates shuffle of a copy.
	out := append([]float64(nil), sample...)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rand == nil {
		l.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	for i := 0; i < n; i++ {
		j := i + l.rand.IntN(len(out)-i)
		out[i], out[j] = out[j], out[i]
	}
	return out[:n], nil
}

var _ latstat.Provider = (*Limit)(nil)
