// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report renders latency verdicts as text tables and JSON
// documents.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/dashmon/latencystat/latstat"
	"github.com/dashmon/latencystat/latunit"
)

// AnswerType identifies median latency answers.
const AnswerType = "MEDIAN_LATENCY"

// A Report is the set of verdicts computed by one run.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Alpha       float64   `json:"alpha"`
	Answers     []*Answer `json:"answers"`
}

// An Answer is the verdict for one endpoint.
type Answer struct {
	Type          string `json:"type"`
	Endpoint      string `json:"endpoint"`
	IsSignificant bool   `json:"is_significant"`

	// ComparisonInterval and ComparedToInterval label the
	// samples. They are interval strings for checks and file
	// labels for file comparisons.
	ComparisonInterval string `json:"comparison_interval"`
	ComparedToInterval string `json:"compared_to_interval"`

	P    *float64            `json:"p_value"`
	Meta latstat.VerdictMeta `json:"meta"`

	verdict *latstat.Verdict
}

// New returns an empty report stamped with a fresh run ID.
func New(alpha float64, now time.Time) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: now.UTC(),
		Alpha:       alpha,
		Answers:     []*Answer{},
	}
}

// Add appends the verdict for endpoint to r.
func (r *Report) Add(endpoint, comparison, comparedTo string, v *latstat.Verdict) {
	r.Answers = append(r.Answers, &Answer{
		Type:               AnswerType,
		Endpoint:           endpoint,
		IsSignificant:      v.Significant,
		ComparisonInterval: comparison,
		ComparedToInterval: comparedTo,
		P:                  v.P,
		Meta:               v.Meta(),
		verdict:            v,
	})
}

// AddChecks appends the verdict of each check to r.
func (r *Report) AddChecks(checks []*latstat.Check) {
	for _, c := range checks {
		r.Add(c.Endpoint, c.Comparison.String(), c.ComparedTo.String(), c.Verdict)
	}
}

// Regressions returns the endpoints whose median latency increased
// significantly.
func (r *Report) Regressions() []string {
	var eps []string
	for _, a := range r.Answers {
		if a.IsSignificant && *a.verdict.PercentualDiff > 0 {
			eps = append(eps, a.Endpoint)
		}
	}
	return eps
}

// WriteJSON writes r to w as an indented JSON document.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes r to w as a table with one row per endpoint.
//
// A change that is not significant is shown as "~". A change that
// could not be computed is shown as "?".
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "endpoint\tcompared to\tcomparison\tchange\tp\tn\n")
	for _, a := range r.Answers {
		v := a.verdict
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\tn=%d+%d\n",
			a.Endpoint,
			duration(v.ComparedToMedian),
			duration(v.ComparisonMedian),
			change(v),
			pValue(v.P),
			len(v.ComparedToSample), len(v.ComparisonSample))
	}
	return tw.Flush()
}

func duration(sec *float64) string {
	if sec == nil {
		return "-"
	}
	return latunit.Duration(*sec)
}

func change(v *latstat.Verdict) string {
	switch {
	case v.PercentualDiff == nil:
		return "?"
	case !v.Significant:
		return "~"
	}
	return fmt.Sprintf("%+.2f%%", *v.PercentualDiff)
}

func pValue(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("p=%.3f", *p)
}
