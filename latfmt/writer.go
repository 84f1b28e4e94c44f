// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latfmt

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"
)

// A Writer writes latency files.
type Writer struct {
	w   io.Writer
	buf bytes.Buffer

	first      bool
	fileConfig map[string]string
	order      []string
	cfg        []Config
}

// NewWriter returns a writer that writes latency records to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, first: true, fileConfig: make(map[string]string)}
}

// Write writes result res to w. If res's file configuration differs
// from the current file configuration in w, it first emits the
// appropriate file configuration lines.
//
// Permanent keys that cannot be written as file configuration, such
// as FileKey, are omitted.
func (w *Writer) Write(res *Result) error {
	w.cfg = w.cfg[:0]
	for _, cfg := range res.FileConfig {
		if r, _ := utf8.DecodeRuneInString(cfg.Key); unicode.IsLower(r) {
			w.cfg = append(w.cfg, cfg)
		}
	}

	// If any file config changed, write out the changes.
	if len(w.fileConfig) != len(w.cfg) {
		w.writeFileConfig()
	} else {
		for _, cfg := range w.cfg {
			if val, ok := w.fileConfig[cfg.Key]; !ok || cfg.Value != val {
				w.writeFileConfig()
				break
			}
		}
	}

	w.buf.WriteString("Request ")
	w.buf.WriteString(res.Endpoint)
	w.buf.WriteByte(' ')
	w.buf.Write(strconv.AppendFloat(nil, res.Value, 'g', -1, 64))
	w.buf.WriteByte(' ')
	w.buf.WriteString(res.Unit)
	if !res.Time.IsZero() {
		w.buf.WriteByte(' ')
		w.buf.WriteString(res.Time.Format(time.RFC3339Nano))
	}
	w.buf.WriteByte('\n')

	w.first = false

	// Flush the buffer out to the io.Writer. Write to the buffer
	// can't fail, so we only have to check if this fails.
	_, err := w.w.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

func (w *Writer) writeFileConfig() {
	if !w.first {
		// Configuration blocks after results get an extra blank.
		w.buf.WriteByte('\n')
		w.first = true
	}

	// Walk keys we know to find changes and deletions.
	for i := 0; i < len(w.order); i++ {
		key := w.order[i]
		have := w.fileConfig[key]
		idx := slices.IndexFunc(w.cfg, func(c Config) bool { return c.Key == key })
		if idx < 0 {
			// Key was deleted.
			fmt.Fprintf(&w.buf, "%s:\n", key)
			delete(w.fileConfig, key)
			copy(w.order[i:], w.order[i+1:])
			w.order = w.order[:len(w.order)-1]
			i--
			continue
		}
		if have == w.cfg[idx].Value {
			// Value did not change.
			continue
		}
		// Value changed.
		cfg := &w.cfg[idx]
		fmt.Fprintf(&w.buf, "%s: %s\n", key, cfg.Value)
		w.fileConfig[key] = cfg.Value
	}

	// Find new keys.
	if len(w.fileConfig) != len(w.cfg) {
		for _, cfg := range w.cfg {
			if _, ok := w.fileConfig[cfg.Key]; ok {
				continue
			}
			// New key.
			fmt.Fprintf(&w.buf, "%s: %s\n", cfg.Key, cfg.Value)
			w.fileConfig[cfg.Key] = cfg.Value
			w.order = append(w.order, cfg.Key)
		}
	}

	w.buf.WriteByte('\n')
}
