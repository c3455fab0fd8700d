// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/hdldeps/patscan"
	"go.chromium.org/infra/build/hdldeps/query"
)

// LangVHDL is the language name of VHDL sources.
const LangVHDL = "vhdl"

const (
	vhdlLibraryPragma patscan.Tag = iota + 1
	vhdlTranslatePragma
	vhdlLibraryClause
	vhdlUseClause
	vhdlInstantiation
	vhdlPackageDecl
	vhdlEntityDecl
	vhdlArchitectureDecl
)

// vhdlScanner finds statements relevant to dependencies.
// Order matters: pragmas must precede the comment pattern, and comments
// must precede statements so that commented-out code is ignored.
// Pragmas consume the rest of their line.
var vhdlScanner = patscan.MustNew([]patscan.Pattern{
	{Tag: vhdlLibraryPragma, Expr: `(?i)--[ \t]*(?:(?:pragma|synthesis|synopsys|exemplar)[ \t]+library|hdldeps_library)[ \t]+([\w.]+)[^\n]*`},
	{Tag: vhdlTranslatePragma, Expr: `(?i)--[ \t]*(?:pragma|synthesis|synopsys|exemplar)[ \t]+(?:translate|synthesis)_(off|on)\b[^\n]*`},
	{Tag: vhdlTranslatePragma, Expr: `(?i)--[ \t]*rtl_synthesis[ \t]+(off|on)\b[^\n]*`},
	{Tag: patscan.Suppress, Expr: `--[^\n]*`},
	{Tag: patscan.Suppress, Expr: `(?s)/\*.*?\*/`},
	{Tag: vhdlLibraryClause, Expr: `(?i)\blibrary\s+(\w+(?:\s*,\s*\w+)*)\s*;`},
	{Tag: vhdlUseClause, Expr: `(?i)\buse\s+([\w.]+(?:\s*,\s*[\w.]+)*)\s*;`},
	{Tag: vhdlInstantiation, Expr: `(?i)\b\w+\s*:\s*(?:(?:entity|component)\s+)?(?:(\w+)\.)?(\w+)(?:\s*\(\s*(\w+)\s*\)\s*|\s+)(?:generic|port)\s+map\s*\(`},
	{Tag: vhdlPackageDecl, Expr: `(?i)\bpackage\s+(\w+)\s+is\b`},
	{Tag: vhdlEntityDecl, Expr: `(?i)\bentity\s+(\w+)\s+is\b`},
	{Tag: vhdlArchitectureDecl, Expr: `(?i)\barchitecture\s+(\w+)\s+of\s+(\w+)\s+is\b`},
})

// workLibrary names the library of the design unit being analyzed.
const workLibrary = "work"

// stdLibrary is visible in every design unit without a library clause,
// like workLibrary.
const stdLibrary = "std"

// vhdlState is the state of a VHDL file while its tokens are consumed.
type vhdlState struct {
	opts Options

	// library is the destination library of provides.
	library string

	// imported are libraries named by library clauses, in order.
	imported []string

	// active is false between translate_off and translate_on in
	// synthesis mode.
	active bool

	rec Record
}

// VHDLScan extracts dependency facts from VHDL source buf.
// library is the initial destination library of fname; "" means
// opts.DefaultLibrary.
// On a malformed statement, it returns the facts found so far with
// an error wrapping ErrMalformed.
func VHDLScan(fname, library string, buf []byte, opts Options) (Record, error) {
	started := time.Now()
	opts = opts.withDefaults()
	if library == "" {
		library = opts.DefaultLibrary
	}
	s := &vhdlState{
		opts:    opts,
		library: strings.ToLower(library),
		active:  true,
		rec: Record{
			Filename: fname,
		},
	}
	for tok := range vhdlScanner.Tokens(buf) {
		err := s.handle(tok)
		if err != nil {
			return s.rec, fmt.Errorf("line %d: %w", lineOf(buf, tok.Start), err)
		}
	}
	dur := time.Since(started)
	if dur > time.Second {
		log.Infof("slow vhdlScan %s %s", fname, dur)
	}
	return s.rec, nil
}

func (s *vhdlState) handle(tok patscan.Token) error {
	if log.GetLevel() <= log.DebugLevel {
		log.Debugf("token %d %q active=%t", tok.Tag, tok.Groups, s.active)
	}
	switch tok.Tag {
	case vhdlLibraryPragma:
		return s.libraryPragma(tok.Groups[0])
	case vhdlTranslatePragma:
		s.translatePragma(tok.Groups[0])
		return nil
	}
	if !s.active {
		return nil
	}
	switch tok.Tag {
	case vhdlLibraryClause:
		s.libraryClause(tok.Groups[0])
		return nil
	case vhdlUseClause:
		return s.useClause(tok.Groups[0])
	case vhdlInstantiation:
		return s.instantiation(tok.Groups[0], tok.Groups[1], tok.Groups[2])
	case vhdlPackageDecl:
		s.packageDecl(tok.Groups[0])
		return nil
	case vhdlEntityDecl:
		s.entityDecl(tok.Groups[0])
		return nil
	case vhdlArchitectureDecl:
		return s.architectureDecl(tok.Groups[0], tok.Groups[1])
	}
	return fmt.Errorf("unexpected token %v", tok)
}

func (s *vhdlState) libraryPragma(name string) error {
	if !isIdent(name) {
		return fmt.Errorf("%w: library pragma %q", ErrMalformed, name)
	}
	s.library = strings.ToLower(name)
	return nil
}

func (s *vhdlState) translatePragma(value string) {
	if s.opts.Mode != Synthesis {
		return
	}
	switch strings.ToLower(value) {
	case "on":
		s.active = true
	case "off":
		s.active = false
	}
}

func (s *vhdlState) libraryClause(names string) {
	for _, name := range splitList(names) {
		s.imported = append(s.imported, name)
	}
}

func (s *vhdlState) useClause(paths string) error {
	for _, p := range splitList(paths) {
		parts := strings.Split(p, ".")
		if slices.Contains(parts, "") {
			return fmt.Errorf("%w: use %q", ErrMalformed, p)
		}
		// The first part is a library if it is visible, otherwise it is
		// a package or entity in the default library.
		i := 0
		library := strings.ToLower(s.opts.DefaultLibrary)
		if s.visible(parts[0]) {
			library = s.libraryName(parts[0])
			i++
		}
		if i >= len(parts) {
			return fmt.Errorf("%w: use %q: no unit name", ErrMalformed, p)
		}
		name := parts[i]
		if name == "all" {
			// all units of the library; nothing in particular is needed.
			log.Debugf("%s: use %s: skip", s.rec.Filename, p)
			continue
		}
		// Whether name is a package or an entity is not known here.
		unit, err := query.AnyOf(query.Eq(KeyPackage, name), query.Eq(KeyEntity, name))
		if err != nil {
			return err
		}
		need, err := query.AllOf(query.Eq(KeyLibrary, library), unit)
		if err != nil {
			return err
		}
		s.rec.Needs = append(s.rec.Needs, need)
	}
	return nil
}

func (s *vhdlState) visible(library string) bool {
	switch library {
	case workLibrary, stdLibrary:
		return true
	}
	return slices.Contains(s.imported, library)
}

// libraryName resolves work to the destination library.
func (s *vhdlState) libraryName(library string) string {
	if library == workLibrary {
		return s.library
	}
	return library
}

// importedLibraries returns a query that matches any imported library.
func (s *vhdlState) importedLibraries() query.Query {
	switch len(s.imported) {
	case 0:
		return query.Wildcard(KeyLibrary)
	case 1:
		return query.Eq(KeyLibrary, s.libraryName(s.imported[0]))
	}
	q := make(query.Or, 0, len(s.imported))
	for _, lib := range s.imported {
		q = append(q, query.Eq(KeyLibrary, s.libraryName(lib)))
	}
	return q
}

func (s *vhdlState) instantiation(library, entity, arch string) error {
	var libq query.Query
	if library != "" {
		libq = query.Eq(KeyLibrary, s.libraryName(strings.ToLower(library)))
	} else {
		libq = s.importedLibraries()
	}
	var archq query.Query
	if arch != "" {
		archq = query.Eq(KeyArchitecture, strings.ToLower(arch))
	} else {
		archq = query.Wildcard(KeyArchitecture)
	}
	need, err := query.AllOf(libq, query.Eq(KeyEntity, strings.ToLower(entity)), archq)
	if err != nil {
		return err
	}
	s.rec.Needs = append(s.rec.Needs, need)
	return nil
}

func (s *vhdlState) packageDecl(name string) {
	s.rec.Provides = append(s.rec.Provides, query.Attrs{
		KeyLibrary: s.library,
		KeyPackage: strings.ToLower(name),
	})
}

func (s *vhdlState) entityDecl(name string) {
	s.rec.Provides = append(s.rec.Provides, query.Attrs{
		KeyLibrary: s.library,
		KeyEntity:  strings.ToLower(name),
	})
}

func (s *vhdlState) architectureDecl(name, entity string) error {
	entity = strings.ToLower(entity)
	// the architecture body needs its entity.
	need, err := query.AllOf(s.importedLibraries(), query.Eq(KeyEntity, entity))
	if err != nil {
		return err
	}
	s.rec.Needs = append(s.rec.Needs, need)
	s.rec.Provides = append(s.rec.Provides, query.Attrs{
		KeyLibrary:      s.library,
		KeyEntity:       entity,
		KeyArchitecture: strings.ToLower(name),
	})
	return nil
}

// splitList splits a comma separated list of names, lowercased.
func splitList(s string) []string {
	var names []string
	for _, name := range strings.Split(s, ",") {
		names = append(names, strings.ToLower(strings.TrimSpace(name)))
	}
	return names
}

func lineOf(buf []byte, off int) int {
	line := 1
	for _, c := range buf[:min(off, len(buf))] {
		if c == '\n' {
			line++
		}
	}
	return line
}
