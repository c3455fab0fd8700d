// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/hdldeps/query"
)

// DefaultExternal are libraries provided by tools, not by sources.
var DefaultExternal = []string{"ieee", "std"}

// ResolveOptions configures Resolve.
type ResolveOptions struct {
	// External are libraries whose units are not expected in records.
	// Needs naming only external libraries are not checked.
	External []string
}

// DiagKind is a kind of Diagnostic.
type DiagKind int

const (
	// Unresolved means no provide matches the need.
	Unresolved DiagKind = iota + 1
	// Ambiguous means more than one provide matches the need.
	Ambiguous
)

func (k DiagKind) String() string {
	switch k {
	case Unresolved:
		return "unresolved"
	case Ambiguous:
		return "ambiguous"
	}
	return fmt.Sprintf("DiagKind(%d)", int(k))
}

// Provider is a provide of a file.
type Provider struct {
	Filename string
	Attrs    query.Attrs
}

func (p Provider) String() string {
	return fmt.Sprintf("%s%s", p.Filename, query.FromAttrs(p.Attrs))
}

// Diagnostic is a problem of a need.
type Diagnostic struct {
	Kind     DiagKind
	Filename string
	Need     query.Query

	// Providers are matching provides for Ambiguous.
	Providers []Provider
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s need %s", d.Filename, d.Kind, d.Need)
	for _, p := range d.Providers {
		fmt.Fprintf(&sb, "\n\tprovided by %s", p)
	}
	return sb.String()
}

// Resolve matches needs of records against provides of all records.
// A provide satisfies a need when the need Equals the provide.
// It returns diagnostics in order of records and needs.
func Resolve(records []Record, opts ResolveOptions) []Diagnostic {
	var diags []Diagnostic
	nneeds := 0
	nprovides := matchNeeds(records, opts, func(r Record, need query.Query, matched []Provider) {
		nneeds++
		switch len(matched) {
		case 1:
			log.Debugf("%s: %s provided by %s", r.Filename, need, matched[0])
		case 0:
			diags = append(diags, Diagnostic{
				Kind:     Unresolved,
				Filename: r.Filename,
				Need:     need,
			})
		default:
			diags = append(diags, Diagnostic{
				Kind:      Ambiguous,
				Filename:  r.Filename,
				Need:      need,
				Providers: matched,
			})
		}
	})
	log.Infof("resolved %d needs against %d provides: %d problems", nneeds, nprovides, len(diags))
	return diags
}

// Dep is a file and the other files providing its needs.
type Dep struct {
	Filename string
	Inputs   []string
}

// Deps returns, for each record, the sorted files that provide its
// needs. Unresolved needs are ignored, and ambiguous needs depend on
// all matching files.
func Deps(records []Record, opts ResolveOptions) []Dep {
	inputs := make(map[string][]string)
	matchNeeds(records, opts, func(r Record, need query.Query, matched []Provider) {
		for _, p := range matched {
			if p.Filename == r.Filename {
				continue
			}
			inputs[r.Filename] = append(inputs[r.Filename], p.Filename)
		}
	})
	deps := make([]Dep, 0, len(records))
	for _, r := range records {
		in := inputs[r.Filename]
		slices.Sort(in)
		deps = append(deps, Dep{
			Filename: r.Filename,
			Inputs:   slices.Compact(in),
		})
	}
	return deps
}

// matchNeeds calls fn for each need of records not on external
// libraries, with the provides that satisfy it.
// It returns the number of provides.
func matchNeeds(records []Record, opts ResolveOptions, fn func(r Record, need query.Query, matched []Provider)) int {
	var providers []Provider
	for _, r := range records {
		for _, p := range r.Provides {
			providers = append(providers, Provider{Filename: r.Filename, Attrs: p})
		}
	}
	for _, r := range records {
		for _, need := range r.Needs {
			if isExternal(need, opts.External) {
				log.Debugf("%s: skip external %s", r.Filename, need)
				continue
			}
			var matched []Provider
			for _, p := range providers {
				if query.Equals(need, p.Attrs) {
					matched = append(matched, p)
				}
			}
			fn(r, need, matched)
		}
	}
	return len(providers)
}

// isExternal reports whether need names libraries and all of them are
// in external.
func isExternal(need query.Query, external []string) bool {
	found := false
	for it := range query.Items(need) {
		if it.Key != KeyLibrary {
			continue
		}
		if it.Any || !slices.Contains(external, it.Value) {
			return false
		}
		found = true
	}
	return found
}
