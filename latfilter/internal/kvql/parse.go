// Copyright 2026 The latencystat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kvql parses a small boolean query language over key/value
// pairs.
//
// Syntax:
//
//	expr    = andExpr {"OR" andExpr} .
//	andExpr = phrase {"AND" phrase} .
//	phrase  = match {match} .
//	match   = "(" expr ")"
//	        | "-" match
//	        | "*"
//	        | word ":" (word | "(" {word} ")") .
//	word    = [^ ():"]+ | "\"" {[^"\\] | "\\" any} "\""
//
// Values are regular expressions that must match the whole value.
package kvql

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// SyntaxError reports a malformed query.
type SyntaxError struct {
	Query string
	Off   int // byte offset of the error in Query
	Msg   string
}

func (e *SyntaxError) Error() string {
	col := utf8.RuneCountInString(e.Query[:min(e.Off, len(e.Query))])
	return fmt.Sprintf("syntax error: %s\n\t%s\n\t%*s^", e.Msg, e.Query, col, "")
}

// Parse parses q into a Query tree.
func Parse(q string) (Query, error) {
	toks, err := lex(q)
	if err != nil {
		return nil, err
	}
	p := &parser{query: q, toks: toks}
	node, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %q", t.text)
	}
	return node, nil
}

type parser struct {
	query string
	toks  []token
	pos   int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &SyntaxError{p.query, t.off, fmt.Sprintf(format, args...)}
}

func (p *parser) expr() (Query, error) {
	return p.binary(tokOr, p.andExpr, func(terms []Query) Query { return &Or{terms} })
}

func (p *parser) andExpr() (Query, error) {
	return p.binary(tokAnd, p.phrase, func(terms []Query) Query { return &And{terms} })
}

// binary parses operand {op operand}.
func (p *parser) binary(op tokKind, operand func() (Query, error), mk func([]Query) Query) (Query, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	terms := []Query{first}
	for p.peek().kind == op {
		p.next()
		q, err := operand()
		if err != nil {
			return nil, err
		}
		terms = append(terms, q)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return mk(terms), nil
}

// phrase parses adjacent matches, which are implicitly ANDed.
func (p *parser) phrase() (Query, error) {
	var terms []Query
	for {
		switch t := p.peek(); t.kind {
		case tokLParen, tokNot, tokAll, tokWord:
			q, err := p.match()
			if err != nil {
				return nil, err
			}
			terms = append(terms, q)
			continue
		case tokRParen, tokAnd, tokOr, tokEOF:
			if len(terms) == 0 {
				return nil, p.errorf(t, "nothing to match")
			}
		default:
			return nil, p.errorf(t, "unexpected %q", t.text)
		}
		break
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return &And{terms}, nil
}

func (p *parser) match() (Query, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		q, err := p.expr()
		if err != nil {
			return nil, err
		}
		if end := p.next(); end.kind != tokRParen {
			return nil, p.errorf(end, "missing \")\"")
		}
		return q, nil
	case tokNot:
		q, err := p.match()
		if err != nil {
			return nil, err
		}
		return &Not{q}, nil
	case tokAll:
		return &And{}, nil
	case tokWord:
		if p.next().kind != tokColon {
			return nil, p.errorf(t, "expected key:value")
		}
		v := p.next()
		switch v.kind {
		case tokWord:
			return p.newMatch(t, v)
		case tokLParen:
			var terms []Query
			for p.peek().kind == tokWord {
				m, err := p.newMatch(t, p.next())
				if err != nil {
					return nil, err
				}
				terms = append(terms, m)
			}
			if end := p.next(); end.kind != tokRParen {
				return nil, p.errorf(end, "expected value")
			}
			if len(terms) == 0 {
				return nil, p.errorf(v, "nothing to match")
			}
			if len(terms) == 1 {
				return terms[0], nil
			}
			return &Or{terms}, nil
		}
		return nil, p.errorf(t, "expected key:value")
	}
	return nil, p.errorf(t, "expected key:value or subexpression")
}

func (p *parser) newMatch(key, val token) (*Match, error) {
	if _, err := regexp.Compile(val.text); err != nil {
		return nil, p.errorf(val, "%v", err)
	}
	re := regexp.MustCompile("^(?:" + val.text + ")$")
	return &Match{Off: key.off, Key: key.text, Pattern: val.text, re: re}, nil
}
