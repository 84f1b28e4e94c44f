// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latfmt

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func memOpen(files map[string]string) func(string) (io.ReadCloser, error) {
	return func(path string) (io.ReadCloser, error) {
		data, ok := files[path]
		if !ok {
			return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
		}
		return io.NopCloser(strings.NewReader(data)), nil
	}
}

func TestFiles(t *testing.T) {
	f := &Files{
		Paths: []string{"old", "new"},
		Open: memOpen(map[string]string{
			"old": "env: prod\nRequest /a 1 ms\nRequest /b 2 ms\n",
			"new": "Request /a 3 ms\n",
		}),
	}

	type rec struct {
		file, env, endpoint string
		value               float64
	}
	var got []rec
	for f.Scan() {
		res, err := f.Result()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, rec{res.GetFileConfig(FileKey), res.GetFileConfig("env"), res.Endpoint, res.Value})
	}
	if err := f.Err(); err != nil {
		t.Fatal(err)
	}

	want := []rec{
		{"old", "prod", "/a", 1},
		{"old", "prod", "/b", 2},
		// File configuration does not leak across files.
		{"new", "", "/a", 3},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFilesMissing(t *testing.T) {
	f := &Files{
		Paths: []string{"present", "missing"},
		Open:  memOpen(map[string]string{"present": "Request /a 1 ms\n"}),
	}
	n := 0
	for f.Scan() {
		n++
	}
	if n != 1 {
		t.Errorf("read %d results before the missing file, want 1", n)
	}
	if err := f.Err(); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got error %v, want %v", err, fs.ErrNotExist)
	}
	if f.Scan() {
		t.Error("Scan succeeded after an error")
	}
}

type trackedFile struct {
	io.Reader
	closed *int
}

func (f trackedFile) Close() error {
	*f.closed++
	return nil
}

func TestFilesClose(t *testing.T) {
	closed := 0
	f := &Files{
		Paths: []string{"a", "b"},
		Open: func(path string) (io.ReadCloser, error) {
			return trackedFile{strings.NewReader("Request /a 1 ms\nRequest /b 2 ms\n"), &closed}, nil
		},
	}
	if !f.Scan() {
		t.Fatalf("Scan failed: %v", f.Err())
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if closed != 1 {
		t.Errorf("closed %d files, want 1", closed)
	}
	if f.Scan() {
		t.Error("Scan succeeded after Close")
	}
	if err := f.Close(); err != nil || closed != 1 {
		t.Errorf("second Close: err %v, %d files closed", err, closed)
	}
}

func TestFilesDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lat.txt")
	if err := os.WriteFile(path, []byte("Request /a 7 ms\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := &Files{Paths: []string{path}}
	if !f.Scan() {
		t.Fatalf("Scan failed: %v", f.Err())
	}
	res, err := f.Result()
	if err != nil {
		t.Fatal(err)
	}
	if res.Value != 7 || res.GetFileConfig(FileKey) != path {
		t.Errorf("got value %v from %q, want 7 from %q", res.Value, res.GetFileConfig(FileKey), path)
	}
	if f.Scan() {
		t.Error("unexpected second result")
	}
	if err := f.Err(); err != nil {
		t.Error(err)
	}
}

func TestExtractor(t *testing.T) {
	rd := new(Reader)
	rd.Reset(strings.NewReader("interval: after\nRequest /a 1.5 ms 2024-05-01T23:30:00-02:00\n"), "x", FileKey, "x")
	if !rd.Scan() {
		t.Fatal("no result")
	}
	rec, err := rd.Result()
	if err != nil {
		t.Fatal(err)
	}

	for key, want := range map[string]string{
		".endpoint": "/a",
		".unit":     "ms",
		".date":     "2024-05-02",
		"interval":  "after",
		FileKey:     "x",
		"missing":   "",
	} {
		ext, err := NewExtractor(key)
		if err != nil {
			t.Errorf("NewExtractor(%q): %v", key, err)
			continue
		}
		if got := ext(rec); got != want {
			t.Errorf("extract %q: got %q, want %q", key, got, want)
		}
	}

	for _, key := range []string{"", ".bogus"} {
		if _, err := NewExtractor(key); err == nil {
			t.Errorf("NewExtractor(%q) succeeded", key)
		}
	}
}
