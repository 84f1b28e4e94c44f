// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package latfilter selects latency results with a boolean query.
//
// A query is a sequence of key:value matches combined with AND, OR,
// "-" (not) and parentheses. Adjacent matches are ANDed. Keys are
// those accepted by latfmt.NewExtractor and values are regular
// expressions that must match the whole extracted value. For example:
//
//	.endpoint:/api/.* -.endpoint:/api/health env:(prod canary)
package latfilter

import (
	"fmt"

	"github.com/dashmon/latencystat/latfilter/internal/kvql"
	"github.com/dashmon/latencystat/latfmt"
)

// SyntaxError is returned by New for malformed queries.
type SyntaxError = kvql.SyntaxError

// A Filter matches latency results against a query.
type Filter struct {
	query      kvql.Query
	extractors map[string]latfmt.Extractor
}

// New parses query into a Filter.
func New(query string) (*Filter, error) {
	q, err := kvql.Parse(query)
	if err != nil {
		return nil, err
	}
	f := &Filter{query: q, extractors: make(map[string]latfmt.Extractor)}
	if err := f.bind(query, q); err != nil {
		return nil, err
	}
	return f, nil
}

// bind resolves the extractor for every key in node.
func (f *Filter) bind(query string, node kvql.Query) error {
	switch node := node.(type) {
	case *kvql.Match:
		if _, ok := f.extractors[node.Key]; ok {
			return nil
		}
		ext, err := latfmt.NewExtractor(node.Key)
		if err != nil {
			return &kvql.SyntaxError{Query: query, Off: node.Off, Msg: err.Error()}
		}
		f.extractors[node.Key] = ext
	case *kvql.And:
		return f.bindAll(query, node.Terms)
	case *kvql.Or:
		return f.bindAll(query, node.Terms)
	case *kvql.Not:
		return f.bind(query, node.Term)
	default:
		panic(fmt.Sprintf("unknown query node type %T", node))
	}
	return nil
}

func (f *Filter) bindAll(query string, terms []kvql.Query) error {
	for _, t := range terms {
		if err := f.bind(query, t); err != nil {
			return err
		}
	}
	return nil
}

// Match reports whether res satisfies f.
func (f *Filter) Match(res *latfmt.Result) bool {
	return f.match(res, f.query)
}

func (f *Filter) match(res *latfmt.Result, node kvql.Query) bool {
	switch node := node.(type) {
	case *kvql.Match:
		return node.Matches(f.extractors[node.Key](res))
	case *kvql.And:
		for _, t := range node.Terms {
			if !f.match(res, t) {
				return false
			}
		}
		return true
	case *kvql.Or:
		for _, t := range node.Terms {
			if f.match(res, t) {
				return true
			}
		}
		return false
	case *kvql.Not:
		return !f.match(res, node.Term)
	}
	panic(fmt.Sprintf("unknown query node type %T", node))
}

// String returns the query in canonical form.
func (f *Filter) String() string {
	return f.query.String()
}
