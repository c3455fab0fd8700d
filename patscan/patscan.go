// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package patscan provides a sparse scanner that finds many patterns in
// source text with a single regular expression pass.
//
// Each registered pattern is wrapped in its own capturing group and all of
// them are joined by alternation:
//
//	(p1)|(p2)|...|(pN)
//
// After a match, the outer group that participated tells which pattern
// fired, and the groups following it are that pattern's own captures.
// Patterns are tried in registration order at each position, so earlier
// patterns win over later ones at the same offset. A pattern registered with
// the Suppress tag is matched (and so consumes its text) but never reported,
// which is how comments hide the statements inside them.
package patscan

import (
	"fmt"
	"iter"
	"regexp"
	"strings"
)

// Tag identifies which registered pattern produced a token.
type Tag int

// Suppress is the tag of patterns whose matches are consumed but dropped.
const Suppress Tag = 0

// Pattern is a registered pattern.
type Pattern struct {
	Tag Tag
	// Expr is a regular expression in RE2 syntax. Flags such as (?i) or
	// (?m) are scoped to the pattern.
	Expr string
}

type subPattern struct {
	tag  Tag
	nsub int
}

// Scanner scans text for a fixed set of patterns.
// It is immutable after construction and safe for concurrent use.
type Scanner struct {
	re   *regexp.Regexp
	subs []subPattern
}

// Token is a match of one registered pattern.
type Token struct {
	Tag Tag

	// Start and End are byte offsets of the whole match in the text.
	Start, End int

	// Groups are the pattern's own captures. A group that did not
	// participate in the match is "".
	Groups []string
}

func (t Token) String() string {
	return fmt.Sprintf("<Token %d@%d: %q>", t.Tag, t.Start, t.Groups)
}

// New compiles patterns into a scanner.
func New(patterns []Pattern) (*Scanner, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("patscan: no patterns")
	}
	var sb strings.Builder
	s := &Scanner{
		subs: make([]subPattern, 0, len(patterns)),
	}
	for i, p := range patterns {
		// compile once only to learn the number of groups.
		re, err := regexp.Compile(p.Expr)
		if err != nil {
			return nil, fmt.Errorf("patscan: pattern %d (tag %d) %q: %w", i, p.Tag, p.Expr, err)
		}
		s.subs = append(s.subs, subPattern{tag: p.Tag, nsub: re.NumSubexp()})
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteByte('(')
		sb.WriteString(p.Expr)
		sb.WriteByte(')')
	}
	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("patscan: combined pattern %q: %w", sb.String(), err)
	}
	s.re = re
	return s, nil
}

// MustNew is like New but panics if patterns can not be compiled.
// It is meant for pattern tables initialized at package load.
func MustNew(patterns []Pattern) *Scanner {
	s, err := New(patterns)
	if err != nil {
		panic(err)
	}
	return s
}

// Next finds the first match in text at or after cursor.
// It returns the token and the cursor to continue from.
// ok is false when there are no more matches.
// Suppressed matches are returned with the Suppress tag.
func (s *Scanner) Next(text []byte, cursor int) (tok Token, next int, ok bool) {
	if cursor < 0 || cursor > len(text) {
		return Token{}, -1, false
	}
	loc := s.re.FindSubmatchIndex(text[cursor:])
	if loc == nil {
		return Token{}, -1, false
	}
	tok = Token{
		Start: cursor + loc[0],
		End:   cursor + loc[1],
	}
	// group 0 is the whole match; pattern i's outer group follows
	// the groups of all patterns before it.
	g := 1
	for _, sp := range s.subs {
		if loc[2*g] >= 0 {
			tok.Tag = sp.tag
			tok.Groups = make([]string, sp.nsub)
			for j := 0; j < sp.nsub; j++ {
				k := g + 1 + j
				if loc[2*k] < 0 {
					continue
				}
				tok.Groups[j] = string(text[cursor+loc[2*k] : cursor+loc[2*k+1]])
			}
			break
		}
		g += 1 + sp.nsub
	}
	next = tok.End
	if tok.End == tok.Start {
		// empty match; make progress.
		next++
	}
	return tok, next, true
}

// Tokens returns the sequence of unsuppressed tokens in text.
// The sequence is lazy; stopping the iteration stops scanning.
func (s *Scanner) Tokens(text []byte) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		cursor := 0
		for cursor <= len(text) {
			tok, next, ok := s.Next(text, cursor)
			if !ok {
				return
			}
			cursor = next
			if tok.Tag == Suppress {
				continue
			}
			if !yield(tok) {
				return
			}
		}
	}
}

// All returns all unsuppressed tokens in text.
func (s *Scanner) All(text []byte) []Token {
	var toks []Token
	for tok := range s.Tokens(text) {
		toks = append(toks, tok)
	}
	return toks
}
