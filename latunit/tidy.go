// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latunit

import "github.com/dashmon/latencystat/latfmt"

// Tidy rewrites the unit and value of result to seconds if its unit
// is a time unit. This is important to do before comparing samples
// recorded in different units, and before applying a Scaler, so the
// scaler doesn't result in nonsense units like "kilomilliseconds".
func Tidy(result *latfmt.Result) {
	tidied, factor := TidyUnit(result.Unit)
	if factor != 1 || tidied != result.Unit {
		result.Value *= factor
		result.Unit = tidied
	}
}

// TidyUnit returns the tidied version of unit and the multiplicative
// factor to convert a value in unit "unit" to a value in unit
// "tidied". Units that are not time units are returned unchanged with
// a factor of 1.
func TidyUnit(unit string) (tidied string, factor float64) {
	f, err := Parse(unit)
	if err != nil {
		return unit, 1
	}
	return Seconds, f
}
