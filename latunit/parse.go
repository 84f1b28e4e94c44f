// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package latunit works with latency units.
//
// Latencies are recorded in whatever time unit the recorder prefers.
// This package normalizes them to seconds and prints seconds with SI
// prefixes.
package latunit

import (
	"fmt"
	"strings"
)

// Seconds is the unit every time unit is normalized to.
const Seconds = "sec"

// secondsPer maps each recognized time unit to its length in seconds.
var secondsPer = map[string]float64{
	"ns":      1e-9,
	"nsec":    1e-9,
	"us":      1e-6,
	"µs":      1e-6, // U+00B5 MICRO SIGN
	"μs":      1e-6, // U+03BC GREEK SMALL LETTER MU
	"usec":    1e-6,
	"ms":      1e-3,
	"msec":    1e-3,
	"s":       1,
	"sec":     1,
	"secs":    1,
	"seconds": 1,
	"min":     60,
	"h":       3600,
}

// Parse returns the length of one unit in seconds. Unit names are
// case-sensitive, except that units of a second or longer are
// accepted in any case.
func Parse(unit string) (float64, error) {
	if f, ok := secondsPer[unit]; ok {
		return f, nil
	}
	if f, ok := secondsPer[strings.ToLower(unit)]; ok && f >= 1 {
		// "MS" could mean megaseconds, so only fold case for
		// units that cannot be confused with a prefix.
		return f, nil
	}
	return 0, fmt.Errorf("unknown time unit %q", unit)
}

// IsTime reports whether unit is a recognized time unit.
func IsTime(unit string) bool {
	_, err := Parse(unit)
	return err == nil
}
