// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latfmt

import (
	"io"
	"os"
)

// FileKey is the permanent file configuration key that Files sets to
// the path each result was read from.
const FileKey = ".file"

// Files reads latency results from a sequence of input files.
//
// Every Result carries a FileKey configuration entry holding the name
// of the file it was read from, exactly as it appears in Paths.
type Files struct {
	// Paths is the list of file names to read in.
	Paths []string

	// AllowStdin indicates that the path "-" should be treated as
	// stdin and if the file list is empty, it should be treated
	// as consisting of stdin.
	AllowStdin bool

	// Open opens a path for reading. If nil, os.Open is used.
	Open func(path string) (io.ReadCloser, error)

	// pos is the position of the next file to read from in Paths
	// when the current file is exhausted.
	pos int

	reader  Reader
	file    io.ReadCloser
	isStdin bool
	closed  bool
	err     error
}

// Scan advances to the next result in the sequence of files and
// returns true if a result was read. The caller should use the Result
// method to get the result. If an I/O error occurs, or this reaches
// the end of the file sequence, it returns false and the caller
// should use the Err method to check for errors.
func (f *Files) Scan() bool {
	for f.err == nil && !f.closed {
		if f.file == nil && !f.openNext() {
			return false
		}
		if f.reader.Scan() {
			return true
		}
		f.err = f.reader.Err()
		// Stdin is never closed.
		if !f.isStdin {
			if err := f.file.Close(); err != nil && f.err == nil {
				f.err = err
			}
		}
		f.file = nil
	}
	return false
}

// openNext opens the next path and points the reader at it. It
// returns false when the paths are exhausted or the open failed.
func (f *Files) openNext() bool {
	var path string
	switch {
	case f.AllowStdin && len(f.Paths) == 0 && f.pos == 0:
		path = "-"
	case f.pos < len(f.Paths):
		path = f.Paths[f.pos]
	default:
		return false
	}
	f.pos++

	f.isStdin = f.AllowStdin && path == "-"
	if f.isStdin {
		f.file = os.Stdin
	} else {
		open := f.Open
		if open == nil {
			open = func(p string) (io.ReadCloser, error) { return os.Open(p) }
		}
		file, err := open(path)
		if err != nil {
			f.err = err
			return false
		}
		f.file = file
	}
	// FileKey is not valid syntax for a file configuration key,
	// so a file cannot overwrite it.
	f.reader.Reset(f.file, path, FileKey, path)
	return true
}

// Result returns the last result read, or an error if the result was
// malformed.
//
// Parse errors are non-fatal, so the caller can continue to call
// Scan.
//
// The caller should not retain the Result object, as it will be
// overwritten by the next call to Scan.
func (f *Files) Result() (*Result, error) {
	return f.reader.Result()
}

// Close closes the file currently being read, if any. After Close,
// Scan returns false. It is safe to call Close after Scan has
// returned false.
func (f *Files) Close() error {
	f.closed = true
	if f.file == nil {
		return nil
	}
	file := f.file
	f.file = nil
	if f.isStdin {
		return nil
	}
	return file.Close()
}

// Err returns the first non-EOF I/O error that was encountered by the
// Files.
func (f *Files) Err() error {
	return f.err
}
