// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kvql

import (
	"regexp"
	"strings"
	"unicode"
)

// A Query is a node of a parsed query: a *Match, *And, *Or, or *Not.
type Query interface {
	String() string
}

// A Match tests the value of a single key against a regular
// expression. The expression must match the whole value.
type Match struct {
	Off     int // byte offset of Key in the query
	Key     string
	Pattern string
	re      *regexp.Regexp
}

// Matches reports whether value satisfies m.
func (m *Match) Matches(value string) bool {
	return m.re.MatchString(value)
}

func (m *Match) String() string {
	return quoteWord(m.Key) + ":" + quoteWord(m.Pattern)
}

// And matches if all of its terms match. An And with no terms matches
// everything.
type And struct{ Terms []Query }

func (q *And) String() string {
	if len(q.Terms) == 0 {
		return "*"
	}
	return join(q.Terms, " AND ")
}

// Or matches if any of its terms match.
type Or struct{ Terms []Query }

func (q *Or) String() string { return join(q.Terms, " OR ") }

// Not inverts its term.
type Not struct{ Term Query }

func (q *Not) String() string { return "-" + q.Term.String() }

func join(terms []Query, sep string) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// quoteWord quotes s if the lexer would not read it back as a single
// word. Only '"' and '\' are escaped.
func quoteWord(s string) string {
	if s != "" && s != "AND" && s != "OR" && s[0] != '-' && s[0] != '*' &&
		!strings.ContainsFunc(s, breaksWord) {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

func breaksWord(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune("():\"", r)
}
