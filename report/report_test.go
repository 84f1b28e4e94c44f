// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashmon/latencystat/latstat"
)

func repeat(x float64, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = x
	}
	return xs
}

var generated = time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)

func testReport() *Report {
	e := latstat.NewEngine(latstat.EngineOptions{})
	r := New(e.Alpha(), generated)
	r.Add("/slow", "new", "old", e.Evaluate(repeat(0.5, 20), repeat(0.1, 20)))
	r.Add("/same", "new", "old", e.Evaluate(repeat(0.1, 4), repeat(0.1, 4)))
	r.Add("/idle", "new", "old", e.Evaluate(nil, []float64{0.1}))
	return r
}

func TestWriteText(t *testing.T) {
	var out strings.Builder
	require.NoError(t, testReport().WriteText(&out))
	want := `endpoint  compared to  comparison  change    p        n
/slow     100ms        500ms       +400.00%  p=0.000  n=20+20
/same     100ms        100ms       ~         p=1.000  n=4+4
/idle     -            -           ?         -        n=1+0
`
	assert.Equal(t, want, out.String())
}

func TestWriteJSON(t *testing.T) {
	var out strings.Builder
	require.NoError(t, testReport().WriteJSON(&out))

	var doc struct {
		RunID       string    `json:"run_id"`
		GeneratedAt time.Time `json:"generated_at"`
		Alpha       float64   `json:"alpha"`
		Answers     []map[string]any
	}
	require.NoError(t, json.Unmarshal([]byte(out.String()), &doc))

	_, err := uuid.Parse(doc.RunID)
	assert.NoError(t, err, "run_id %q", doc.RunID)
	assert.True(t, doc.GeneratedAt.Equal(generated))
	assert.Equal(t, latstat.DefaultAlpha, doc.Alpha)
	require.Len(t, doc.Answers, 3)

	slow := doc.Answers[0]
	assert.Equal(t, AnswerType, slow["type"])
	assert.Equal(t, "/slow", slow["endpoint"])
	assert.Equal(t, true, slow["is_significant"])
	assert.Equal(t, "new", slow["comparison_interval"])
	assert.Equal(t, "old", slow["compared_to_interval"])
	meta := slow["meta"].(map[string]any)
	assert.InDelta(t, 400, meta["percentual_diff"], 1e-9)
	assert.InDelta(t, 0.5, meta["comparison_median"], 1e-12)
	samples := meta["latencies_sample"].(map[string]any)
	assert.Len(t, samples["comparison_interval"], 20)
	assert.Len(t, samples["compared_to_interval"], 20)

	idle := doc.Answers[2]
	assert.Equal(t, false, idle["is_significant"])
	assert.Nil(t, idle["p_value"])
	meta = idle["meta"].(map[string]any)
	assert.Nil(t, meta["percentual_diff"])
	assert.Nil(t, meta["comparison_median"])
	samples = meta["latencies_sample"].(map[string]any)
	assert.Equal(t, []any{}, samples["comparison_interval"])
}

func TestRegressions(t *testing.T) {
	e := latstat.NewEngine(latstat.EngineOptions{})
	r := testReport()
	r.Add("/faster", "new", "old", e.Evaluate(repeat(0.1, 20), repeat(0.5, 20)))
	assert.Equal(t, []string{"/slow"}, r.Regressions())
}

func TestAddChecks(t *testing.T) {
	noon := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cmp := latstat.Interval{Start: noon, End: noon.Add(time.Hour)}
	r := New(latstat.DefaultAlpha, generated)
	r.AddChecks([]*latstat.Check{{
		Endpoint:   "/a",
		Comparison: cmp,
		ComparedTo: cmp.Previous(),
		Verdict:    latstat.NewEngine(latstat.EngineOptions{}).Evaluate([]float64{1}, []float64{1}),
	}})
	require.Len(t, r.Answers, 1)
	assert.Equal(t, "2024-05-01T12:00:00Z/2024-05-01T13:00:00Z", r.Answers[0].ComparisonInterval)
	assert.Equal(t, "2024-05-01T11:00:00Z/2024-05-01T12:00:00Z", r.Answers[0].ComparedToInterval)
}
