// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latfmt

import (
	"fmt"
	"time"
)

// An Extractor returns some component of a latency result.
type Extractor func(*Result) string

// NewExtractor returns a function that extracts some component of a
// latency result.
//
// The key must be one of the following:
//
// - ".endpoint" for the endpoint name.
//
// - ".unit" for the latency unit.
//
// - ".date" for the UTC date of the request, or "" if the result has
// no time.
//
// - Any other string is a file configuration key, including FileKey.
func NewExtractor(key string) (Extractor, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("key must not be empty")
	}

	switch key {
	case ".endpoint":
		return extractEndpoint, nil
	case ".unit":
		return extractUnit, nil
	case ".date":
		return extractDate, nil
	}
	if key[0] == '.' && key != FileKey {
		return nil, fmt.Errorf("unknown key %q", key)
	}

	return func(res *Result) string {
		return res.GetFileConfig(key)
	}, nil
}

func extractEndpoint(res *Result) string {
	return res.Endpoint
}

func extractUnit(res *Result) string {
	return res.Unit
}

func extractDate(res *Result) string {
	if res.Time.IsZero() {
		return ""
	}
	return res.Time.UTC().Format(time.DateOnly)
}
