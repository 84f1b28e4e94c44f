// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latstat

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrBadInterval is returned for an interval whose end is not after
// its start.
var ErrBadInterval = errors.New("latstat: interval end is not after start")

// An Interval is the half-open time range [Start, End).
//
// The engine never looks inside an Interval. It only selects which
// latencies a Provider returns.
type Interval struct {
	Start, End time.Time
}

// ParseInterval parses an interval of the form "start/end", where
// start and end are RFC 3339 timestamps.
func ParseInterval(s string) (Interval, error) {
	start, end, ok := strings.Cut(s, "/")
	if !ok {
		return Interval{}, fmt.Errorf("interval %q: missing '/'", s)
	}
	var iv Interval
	var err error
	if iv.Start, err = time.Parse(time.RFC3339, start); err != nil {
		return Interval{}, fmt.Errorf("interval %q: %w", s, err)
	}
	if iv.End, err = time.Parse(time.RFC3339, end); err != nil {
		return Interval{}, fmt.Errorf("interval %q: %w", s, err)
	}
	if err := iv.Validate(); err != nil {
		return Interval{}, fmt.Errorf("interval %q: %w", s, err)
	}
	return iv, nil
}

// Validate returns ErrBadInterval if iv is empty or reversed.
func (iv Interval) Validate() error {
	if !iv.End.After(iv.Start) {
		return ErrBadInterval
	}
	return nil
}

// Contains reports whether t falls within iv.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Duration returns the length of iv.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Previous returns the interval of the same length that ends where iv
// starts.
func (iv Interval) Previous() Interval {
	return Interval{Start: iv.Start.Add(-iv.Duration()), End: iv.Start}
}

// String formats iv as "start/end" in RFC 3339.
func (iv Interval) String() string {
	return iv.Start.Format(time.RFC3339) + "/" + iv.End.Format(time.RFC3339)
}
