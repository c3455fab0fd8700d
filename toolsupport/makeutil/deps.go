// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package makeutil provides utilities for make style deps files.
package makeutil

import (
	"bufio"
	"io"
	"strings"
)

// Rule is a rule in a deps file.
//
//	<target>: <input> ...
type Rule struct {
	Target string
	Inputs []string
}

// WriteDeps writes rules to w.
// Spaces in names are escaped by '\'.
func WriteDeps(w io.Writer, rules []Rule) error {
	bw := bufio.NewWriter(w)
	for _, r := range rules {
		bw.WriteString(escape(r.Target))
		bw.WriteByte(':')
		for _, in := range r.Inputs {
			bw.WriteByte(' ')
			bw.WriteString(escape(in))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func escape(s string) string {
	return strings.ReplaceAll(s, " ", `\ `)
}

// ParseRules parses all rules of deps contents.
func ParseRules(b []byte) []Rule {
	var rules []Rule
	for len(b) > 0 {
		var line []byte
		line, b = nextLine(b)
		i := targetEnd(line)
		if i < 0 {
			continue
		}
		target, _ := nextToken(line[:i])
		r := Rule{Target: target}
		for s := line[i+1:]; len(s) > 0; {
			var token string
			token, s = nextToken(s)
			if token != "" {
				r.Inputs = append(r.Inputs, token)
			}
		}
		rules = append(rules, r)
	}
	return rules
}

// nextLine returns the next logical line, in which '\'+newline is
// kept as is, and the rest.
func nextLine(b []byte) ([]byte, []byte) {
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case '\\':
			if i+2 < len(b) && b[i+1] == '\r' && b[i+2] == '\n' {
				i++
			}
			i++
		case '\n':
			return b[:i], b[i+1:]
		}
	}
	return b, nil
}

// targetEnd returns the index of ':' that ends the target, or -1.
func targetEnd(line []byte) int {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case ':':
			return i
		}
	}
	return -1
}

// nextToken returns the next token in s, and the rest.
//
//	'\'+newline is space
//	'\'+space is escaped space (not separator)
func nextToken(s []byte) (string, []byte) {
	var sb strings.Builder
	// skip spaces
skipSpaces:
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == '\n' {
			i++
			continue
		}
		if s[i] == '\\' && i+2 < len(s) && s[i+1] == '\r' && s[i+2] == '\n' {
			i += 2
			continue
		}
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			s = s[i:]
			break skipSpaces
		}
	}
	// extract next space not escaped
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case ' ':
				sb.WriteByte(s[i])
			case '\r', '\n':
				// '\'+newline is space
				return sb.String(), s[i+1:]
			default:
				sb.WriteByte('\\')
				sb.WriteByte(s[i])
			}
			continue
		}
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			return sb.String(), s[i+1:]
		}
		sb.WriteByte(s[i])
	}
	return sb.String(), nil
}
