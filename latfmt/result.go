// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package latfmt provides a streaming reader and writer for latency
// sample files.
//
// A latency file is line oriented. A line of the form
//
//	Request <endpoint> <latency> <unit> [<time>]
//
// records one request to endpoint that took latency units, optionally
// stamped with the RFC 3339 time the request was made. Lines of the
// form
//
//	key: value
//
// set file-level configuration that applies to every following
// request line, as in the Go benchmark format. A key with an empty
// value removes it. All other lines are ignored.
//
// For example:
//
//	service: checkout
//	interval: before-deploy
//
//	Request /api/cart 12.5 ms 2024-05-01T12:00:00Z
//	Request /api/cart 13 ms 2024-05-01T12:00:01Z
//	Request /api/pay 210 ms
package latfmt

import "time"

// Result is a single request latency and the file configuration in
// effect for it.
type Result struct {
	// FileConfig is the set of file-level key/value pairs in
	// effect for this result.
	//
	// This is modified in place. New keys are appended to the
	// slice. When an existing key changes value, it is updated in
	// place. When a key is deleted, it is removed from the slice.
	FileConfig []Config

	// Endpoint is the name of the endpoint that served the
	// request.
	Endpoint string

	// Value is the latency of the request, in Unit. It is never
	// negative.
	Value float64
	Unit  string

	// Time is when the request was made. It is the zero Time if
	// the line did not record one.
	Time time.Time

	// configPos, if non-nil, maps from Config.Key to index in
	// FileConfig.
	configPos map[string]int

	// permConfig indicates that FileConfig[:permConfig] cannot be
	// overridden.
	permConfig int
}

// Config is a single key/value configuration pair.
type Config struct {
	Key, Value string
}

// Clone makes a copy of Result that shares no state with r.
func (r *Result) Clone() *Result {
	r2 := *r
	r2.FileConfig = append([]Config(nil), r.FileConfig...)
	r2.configPos = nil
	return &r2
}

// GetFileConfig returns the value of file configuration key, or "" if
// it is not set.
func (r *Result) GetFileConfig(key string) string {
	pos, ok := r.FileConfigIndex(key)
	if !ok {
		return ""
	}
	return r.FileConfig[pos].Value
}

// FileConfigIndex returns the index in r.FileConfig of key.
func (r *Result) FileConfigIndex(key string) (pos int, ok bool) {
	if r.configPos == nil {
		r.configPos = make(map[string]int)
		for i, cfg := range r.FileConfig {
			r.configPos[cfg.Key] = i
		}
	}
	pos, ok = r.configPos[key]
	return
}

// setFileConfig sets file configuration key to value, overriding or
// adding the configuration as necessary. perm indicates that this is
// a permanent config value that cannot be overridden by a file.
func (r *Result) setFileConfig(key, value string, perm bool) {
	pos, ok := r.FileConfigIndex(key)
	if ok {
		if !perm && pos < r.permConfig {
			// Cannot override permanent config.
			return
		}
		r.FileConfig[pos].Value = value
		return
	}
	pos = len(r.FileConfig)
	if perm {
		if pos != r.permConfig {
			panic("setting permanent file config after reading file")
		}
		r.permConfig = pos + 1
	}
	r.FileConfig = append(r.FileConfig, Config{key, value})
	r.configPos[key] = pos
}

// deleteFileConfig removes file configuration key, unless it is
// permanent.
func (r *Result) deleteFileConfig(key string) {
	pos, ok := r.FileConfigIndex(key)
	if !ok || pos < r.permConfig {
		return
	}
	copy(r.FileConfig[pos:], r.FileConfig[pos+1:])
	r.FileConfig = r.FileConfig[:len(r.FileConfig)-1]
	delete(r.configPos, key)
	for i := pos; i < len(r.FileConfig); i++ {
		r.configPos[r.FileConfig[i].Key] = i
	}
}
