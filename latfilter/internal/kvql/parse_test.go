// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kvql

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	for _, test := range []struct {
		q, want string
	}{
		{"a:b", "a:b"},
		{"a:b c:d", "(a:b AND c:d)"},
		{"a:b AND c:d", "(a:b AND c:d)"},
		{"a:b OR c:d e:f", "(a:b OR (c:d AND e:f))"},
		{"a:b AND c:d OR e:f", "((a:b AND c:d) OR e:f)"},
		{"a:b AND (c:d OR e:f)", "(a:b AND (c:d OR e:f))"},
		{"-a:b", "-a:b"},
		{"--a:b", "--a:b"},
		{"-(a:b c:d)", "-(a:b AND c:d)"},
		{"*", "*"},
		{"a:(b c)", "(a:b OR a:c)"},
		{"a:(b)", "a:b"},
		{".endpoint:/api/cart-v2", ".endpoint:/api/cart-v2"},
		{`a:"x y"`, `a:"x y"`},
		{`a:"say \"hi\""`, `a:"say \"hi\""`},
		{`a:"AND"`, `a:"AND"`},
		{`"a b":c`, `"a b":c`},
	} {
		q, err := Parse(test.q)
		if err != nil {
			t.Errorf("%s: %v", test.q, err)
			continue
		}
		if got := q.String(); got != test.want {
			t.Errorf("%s: got %s, want %s", test.q, got, test.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, test := range []struct {
		q   string
		off int
		msg string
	}{
		{"", 0, "nothing to match"},
		{"a", 0, "expected key:value"},
		{"a:", 0, "expected key:value"},
		{"a:b AND", 7, "nothing to match"},
		{"(a:b", 4, `missing ")"`},
		{"a:b)", 3, `unexpected ")"`},
		{"a:()", 2, "nothing to match"},
		{"a:(b", 4, "expected value"},
		{`a:"b`, 2, "missing end quote"},
		{`a:"b\`, 4, "unterminated escape"},
		{"a:(", 3, "expected value"},
		{"a:b :", 4, `unexpected ":"`},
		{"a:[", 2, "error parsing regexp"},
	} {
		_, err := Parse(test.q)
		se, ok := err.(*SyntaxError)
		if !ok {
			t.Errorf("%q: got error %v, want *SyntaxError", test.q, err)
			continue
		}
		if se.Off != test.off || !strings.Contains(se.Msg, test.msg) {
			t.Errorf("%q: got %q at %d, want %q at %d", test.q, se.Msg, se.Off, test.msg, test.off)
		}
	}
}

func TestSyntaxErrorCaret(t *testing.T) {
	_, err := Parse("µs:x )")
	const want = "syntax error: unexpected \")\"\n\tµs:x )\n\t     ^"
	if err == nil || err.Error() != want {
		t.Errorf("got %q, want %q", err, want)
	}
}

func TestMatch(t *testing.T) {
	q, err := Parse(".endpoint:/api/.*")
	if err != nil {
		t.Fatal(err)
	}
	m := q.(*Match)
	for value, want := range map[string]bool{
		"/api/cart": true,
		"/api/":     true,
		"/apix":     false,
		"x/api/a":   false,
	} {
		if got := m.Matches(value); got != want {
			t.Errorf("Matches(%q) = %v, want %v", value, got, want)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, pat := range []string{
		"plain",
		"x\ty",
		"x\ny",
		`\d+ms`,
		`a"b`,
		`back\\slash "and" quote`,
		"-lead",
		"AND",
		"",
		"é x",
	} {
		m := &Match{Key: "k", Pattern: pat}
		q, err := Parse(m.String())
		if err != nil {
			t.Errorf("%q: parsing %s: %v", pat, m.String(), err)
			continue
		}
		got, ok := q.(*Match)
		if !ok || got.Key != "k" || got.Pattern != pat {
			t.Errorf("%q: %s parsed back as %s", pat, m.String(), q)
		}
	}
}
