// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latfmt

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"
)

// A Reader reads latency files.
//
// Its API is modeled on bufio.Scanner. To minimize allocation, a
// Reader retains ownership of everything it creates; a caller should
// copy anything it needs to retain.
//
// The zero value of the Reader is a valid Reader, but the user must
// call Reset before using it.
type Reader struct {
	s        *bufio.Scanner
	fileName string
	lineNum  int
	err      error // current I/O error

	result    Result
	resultErr error

	interns map[string]string
}

// SyntaxError represents a syntax error on a particular line of a
// latency file.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (s *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", s.FileName, s.Line, s.Msg)
}

var noResult = errors.New("Reader.Scan has not been called")

// NewReader constructs a reader to parse latency records from r.
// fileName is used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input. This
// also resets all of the file-level configuration values.
//
// fileConfig is an optional list of key/value pairs that become
// permanent file configuration for every result read from ior. A
// file cannot override or delete them.
func (r *Reader) Reset(ior io.Reader, fileName string, fileConfig ...string) {
	r.s = bufio.NewScanner(ior)
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.fileName = fileName
	r.lineNum = 0
	r.err = nil
	r.resultErr = noResult
	if r.interns == nil {
		r.interns = make(map[string]string)
	}

	// Wipe the Result.
	r.result.FileConfig = r.result.FileConfig[:0]
	r.result.Endpoint = ""
	r.result.Value = 0
	r.result.Unit = ""
	r.result.Time = time.Time{}
	r.result.permConfig = 0
	for k := range r.result.configPos {
		delete(r.result.configPos, k)
	}

	if len(fileConfig)%2 != 0 {
		panic("odd-length fileConfig")
	}
	for i := 0; i < len(fileConfig); i += 2 {
		r.result.setFileConfig(fileConfig[i], fileConfig[i+1], true)
	}
}

var requestPrefix = []byte("Request ")

// Scan advances the reader to the next result and returns true if a
// result was read. The caller should use the Result method to get the
// result. If an I/O error occurs, or this reaches the end of the
// file, it returns false and the caller should use the Err method to
// check for errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}

	for r.s.Scan() {
		r.lineNum++
		line := r.s.Bytes()
		if bytes.HasPrefix(line, requestPrefix) {
			// At this point we commit to this being a
			// request line. If it's malformed, we treat
			// that as an error.
			r.resultErr = r.parseRequestLine(line)
			return true
		} else if key, val, ok := parseKeyValueLine(line); ok {
			// Intern key, since there tend to be few
			// unique keys.
			keyStr := r.intern(key)
			if len(val) == 0 {
				r.result.deleteFileConfig(keyStr)
			} else {
				r.result.setFileConfig(keyStr, string(val), false)
			}
		}
		// Ignore the line.
	}

	if err := r.s.Err(); err != nil {
		r.err = fmt.Errorf("%s:%d: %w", r.fileName, r.lineNum, err)
		return false
	}
	r.err = nil
	return false
}

// parseKeyValueLine attempts to parse line as a key: value pair. ok
// indicates whether the line could be parsed.
func parseKeyValueLine(line []byte) (key, val []byte, ok bool) {
	for i := 0; i < len(line); {
		r, n := utf8.DecodeRune(line[i:])
		// key begins with a lower case character ...
		if i == 0 && !unicode.IsLower(r) {
			return
		}
		// and contains no space characters nor upper case
		// characters.
		if unicode.IsSpace(r) || unicode.IsUpper(r) {
			return
		}
		if i > 0 && r == ':' {
			key = line[:i]
			val = line[i+1:]
			break
		}

		i += n
	}
	if len(key) == 0 {
		return
	}
	// Value can be omitted entirely, in which case the colon must
	// still be present, but need not be followed by a space.
	if len(val) == 0 {
		ok = true
		return
	}
	// One or more ASCII space or tab characters separate "key:"
	// from "value."
	for len(val) > 0 && (val[0] == ' ' || val[0] == '\t') {
		val = val[1:]
		ok = true
	}
	return
}

// parseRequestLine parses line as a request record and updates
// r.result. The caller must have already checked that it begins with
// "Request ".
func (r *Reader) parseRequestLine(line []byte) error {
	var f []byte

	line = bytes.TrimLeft(line[len(requestPrefix):], " \t")

	f, line = splitField(line)
	if len(f) == 0 {
		return r.syntaxError("missing endpoint")
	}
	r.result.Endpoint = r.intern(f)

	f, line = splitField(line)
	if len(f) == 0 {
		return r.syntaxError("missing latency")
	}
	val, err := atof(f)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return r.syntaxError("parsing latency: " + err.Error())
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return r.syntaxError("latency is not finite")
	}
	if val < 0 {
		return r.syntaxError("negative latency")
	}
	r.result.Value = val

	f, line = splitField(line)
	if len(f) == 0 {
		return r.syntaxError("missing unit")
	}
	r.result.Unit = r.intern(f)

	r.result.Time = time.Time{}
	f, line = splitField(line)
	if len(f) > 0 {
		t, err := time.Parse(time.RFC3339Nano, string(f))
		if err != nil {
			return r.syntaxError("parsing time: " + err.Error())
		}
		r.result.Time = t
	}
	if len(line) > 0 {
		return r.syntaxError("unexpected text after request")
	}
	return nil
}

func (r *Reader) syntaxError(msg string) error {
	return &SyntaxError{r.fileName, r.lineNum, msg}
}

func (r *Reader) intern(x []byte) string {
	const maxIntern = 1024
	if s, ok := r.interns[string(x)]; ok {
		return s
	}
	if len(r.interns) >= maxIntern {
		// Evict a random item from the interns table.
		for k := range r.interns {
			delete(r.interns, k)
			break
		}
	}
	s := string(x)
	r.interns[s] = s
	return s
}

// Result returns the last result read, or an error if the result was
// malformed.
//
// Parse errors are non-fatal, so the caller can continue to call
// Scan.
//
// The caller should not retain the Result object, as it will be
// overwritten by the next call to Scan.
func (r *Reader) Result() (*Result, error) {
	if r.resultErr != nil {
		return nil, r.resultErr
	}
	return &r.result, nil
}

// Err returns the first non-EOF I/O error that was encountered by the
// Reader.
func (r *Reader) Err() error {
	return r.err
}

// atof parses x as a float, with a fast path for the integral
// latencies most recorders emit.
func atof(x []byte) (float64, error) {
	// The largest int exactly representable in a float64.
	const largestInt = 1<<53 - 1

	var val int64
	for _, ch := range x {
		digit := ch - '0'
		if digit >= 10 {
			goto fail
		}
		val = (val * 10) + int64(digit)
		if val > largestInt {
			goto fail
		}
	}
	return float64(val), nil

fail:
	return strconv.ParseFloat(string(x), 64)
}

const isSpace uint64 = 1<<'\t' | 1<<'\n' | 1<<'\v' | 1<<'\f' | 1<<'\r' | 1<<' '

// splitField consumes and returns non-whitespace in x as field,
// consumes whitespace following the field, and then returns the
// remaining bytes of x.
func splitField(x []byte) (field, rest []byte) {
	// Collect non-whitespace into field.
	var i int
	for i = 0; i < len(x); {
		if x[i] < 128 {
			// Fast path for ASCII
			if (isSpace>>x[i])&1 != 0 {
				rest = x[i+1:]
				break
			}
			i++
		} else {
			// Slow path for Unicode
			r, n := utf8.DecodeRune(x[i:])
			if unicode.IsSpace(r) {
				rest = x[i+n:]
				break
			}
			i += n
		}
	}
	field = x[:i]

	// Strip whitespace from rest.
	for len(rest) > 0 {
		if rest[0] < 128 {
			if (isSpace>>rest[0])&1 == 0 {
				break
			}
			rest = rest[1:]
		} else {
			r, n := utf8.DecodeRune(rest)
			if !unicode.IsSpace(r) {
				break
			}
			rest = rest[n:]
		}
	}
	return
}
