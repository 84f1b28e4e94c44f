// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kvql

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokKind is the category of a token.
type tokKind int

const (
	tokEOF tokKind = iota
	tokWord
	tokAnd
	tokOr
	tokNot
	tokAll
	tokColon
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	off  int    // byte offset in the query
	text string // for words, the unescaped contents
}

// lex splits q into tokens, ending with a tokEOF token.
//
// "-" and "*" are operators only at the start of a word, so that
// "/api/cart-v2" is a single word.
func lex(q string) ([]token, error) {
	var toks []token
	pos := 0
	for pos < len(q) {
		r, size := utf8.DecodeRuneInString(q[pos:])
		switch {
		case unicode.IsSpace(r):
			pos += size
		case r == '(':
			toks = append(toks, token{tokLParen, pos, "("})
			pos++
		case r == ')':
			toks = append(toks, token{tokRParen, pos, ")"})
			pos++
		case r == ':':
			toks = append(toks, token{tokColon, pos, ":"})
			pos++
		case r == '-':
			toks = append(toks, token{tokNot, pos, "-"})
			pos++
		case r == '*':
			toks = append(toks, token{tokAll, pos, "*"})
			pos++
		case r == '"':
			text, end, err := lexQuoted(q, pos)
			if err != nil {
				return nil, err
			}
			// Quoted words are never keywords.
			toks = append(toks, token{tokWord, pos, text})
			pos = end
		default:
			end := pos
			for end < len(q) {
				r, size := utf8.DecodeRuneInString(q[end:])
				if unicode.IsSpace(r) || strings.ContainsRune("():\"", r) {
					break
				}
				end += size
			}
			tok := token{tokWord, pos, q[pos:end]}
			switch tok.text {
			case "AND":
				tok.kind = tokAnd
			case "OR":
				tok.kind = tokOr
			}
			toks = append(toks, tok)
			pos = end
		}
	}
	return append(toks, token{tokEOF, len(q), ""}), nil
}

// lexQuoted consumes the quoted word starting at q[start]. A backslash
// escapes the following character.
func lexQuoted(q string, start int) (text string, end int, err error) {
	var b strings.Builder
	for i := start + 1; i < len(q); i++ {
		switch q[i] {
		case '"':
			return b.String(), i + 1, nil
		case '\\':
			if i+1 == len(q) {
				return "", 0, &SyntaxError{q, i, "unterminated escape"}
			}
			i++
		}
		b.WriteByte(q[i])
	}
	return "", 0, &SyntaxError{q, start, "missing end quote"}
}
