// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latstat

import (
	"fmt"

	"github.com/dashmon/latencystat/latfmt"
	"github.com/dashmon/latencystat/latunit"
)

// A Collection groups latency results by endpoint and interval label.
//
// The interval label of a result is whatever the Collection's label
// extractor returns for it. By default this is the file the result
// was read from, so the results of two files can be compared
// directly.
type Collection struct {
	label latfmt.Extractor

	// endpoints and labels record the order in which each
	// endpoint and label was first observed.
	endpoints []string
	labels    []string
	seenEP    map[string]bool
	seenLabel map[string]bool

	cells map[cellKey][]float64
}

type cellKey struct {
	endpoint, label string
}

// A Row is the verdict for one endpoint of a Collection.
type Row struct {
	Endpoint string
	Verdict  *Verdict
}

// NewCollection returns an empty Collection that labels results using
// label. If label is nil, results are labeled by latfmt.FileKey.
func NewCollection(label latfmt.Extractor) *Collection {
	if label == nil {
		label = func(res *latfmt.Result) string {
			return res.GetFileConfig(latfmt.FileKey)
		}
	}
	return &Collection{
		label:     label,
		seenEP:    make(map[string]bool),
		seenLabel: make(map[string]bool),
		cells:     make(map[cellKey][]float64),
	}
}

// Add adds result to c. The latency is converted to seconds. Add
// returns an error, and does not record result, if its unit is not a
// time unit. Add does not retain result.
func (c *Collection) Add(result *latfmt.Result) error {
	unit, factor := latunit.TidyUnit(result.Unit)
	if unit != latunit.Seconds {
		return fmt.Errorf("%s: unit %q is not a time unit", result.Endpoint, result.Unit)
	}
	label := c.label(result)

	if !c.seenEP[result.Endpoint] {
		c.seenEP[result.Endpoint] = true
		c.endpoints = append(c.endpoints, result.Endpoint)
	}
	if !c.seenLabel[label] {
		c.seenLabel[label] = true
		c.labels = append(c.labels, label)
	}

	key := cellKey{result.Endpoint, label}
	c.cells[key] = append(c.cells[key], result.Value*factor)
	return nil
}

// Endpoints returns the endpoints of c in the order they were first
// added.
func (c *Collection) Endpoints() []string {
	return c.endpoints
}

// Labels returns the interval labels of c in the order they were
// first added.
func (c *Collection) Labels() []string {
	return c.labels
}

// Sample returns the latencies, in seconds, of endpoint under label,
// in the order they were added.
func (c *Collection) Sample(endpoint, label string) []float64 {
	return c.cells[cellKey{endpoint, label}]
}

// Compare evaluates, for every endpoint of c, the sample labeled
// comparison against the sample labeled comparedTo. Endpoints missing
// from either label yield an inconclusive verdict. Rows are in
// endpoint order.
func (c *Collection) Compare(e *Engine, comparison, comparedTo string) []Row {
	rows := make([]Row, 0, len(c.endpoints))
	for _, ep := range c.endpoints {
		rows = append(rows, Row{
			Endpoint: ep,
			Verdict:  e.Evaluate(c.Sample(ep, comparison), c.Sample(ep, comparedTo)),
		})
	}
	return rows
}
