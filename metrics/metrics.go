// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics exports latency verdicts as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dashmon/latencystat/latstat"
)

// Verdict outcomes, used as the "outcome" label.
const (
	OutcomeSignificant    = "significant"
	OutcomeNotSignificant = "not_significant"
	OutcomeInconclusive   = "inconclusive"
)

// Metrics records verdicts. It implements latstat.Observer.
type Metrics struct {
	reg *prometheus.Registry

	verdicts    *prometheus.CounterVec
	duration    prometheus.Histogram
	fetchErrors *prometheus.CounterVec
	diff        *prometheus.GaugeVec
	median      *prometheus.GaugeVec
}

// New registers the verdict metrics with reg and returns them. If reg
// is nil, a new registry is used.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		reg: reg,
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "latencystat_verdicts_total",
			Help: "Verdicts computed, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "latencystat_check_duration_seconds",
			Help:    "Time to fetch both samples of an endpoint and evaluate them.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "latencystat_fetch_errors_total",
			Help: "Failed latency sample fetches, by endpoint.",
		}, []string{"endpoint"}),
		diff: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "latencystat_percentual_diff",
			Help: "Change of the median latency relative to the compared-to interval, in percent.",
		}, []string{"endpoint"}),
		median: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "latencystat_median_latency_seconds",
			Help: "Median latency of the last check, by interval.",
		}, []string{"endpoint", "interval"}),
	}
	reg.MustRegister(m.verdicts, m.duration, m.fetchErrors, m.diff, m.median)
	return m
}

// Registry returns the registry m is registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Outcome classifies v.
func Outcome(v *latstat.Verdict) string {
	switch {
	case v.Inconclusive():
		return OutcomeInconclusive
	case v.Significant:
		return OutcomeSignificant
	}
	return OutcomeNotSignificant
}

// ObserveVerdict records v as the latest verdict for endpoint.
func (m *Metrics) ObserveVerdict(endpoint string, v *latstat.Verdict, elapsed time.Duration) {
	m.verdicts.WithLabelValues(Outcome(v)).Inc()
	m.duration.Observe(elapsed.Seconds())

	if v.PercentualDiff != nil {
		m.diff.WithLabelValues(endpoint).Set(*v.PercentualDiff)
	} else {
		m.diff.DeleteLabelValues(endpoint)
	}
	for interval, median := range map[string]*float64{
		"comparison":  v.ComparisonMedian,
		"compared_to": v.ComparedToMedian,
	} {
		if median != nil {
			m.median.WithLabelValues(endpoint, interval).Set(*median)
		} else {
			m.median.DeleteLabelValues(endpoint, interval)
		}
	}
}

// ObserveFetchError counts a failed fetch for endpoint.
func (m *Metrics) ObserveFetchError(endpoint string) {
	m.fetchErrors.WithLabelValues(endpoint).Inc()
}

// WriteTextfile writes all metrics of m's registry to path in the
// text format read by the node exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}

var _ latstat.Observer = (*Metrics)(nil)
