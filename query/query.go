// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package query provides boolean queries over attribute maps.
//
// A query is a tree of AND/OR nodes with key/value leaves. It is compared
// with an attribute map by counting the leaves that match:
//
//	lib:work & (pkg:util | ent:util)
//
// matches {lib: work, pkg: util} with count 2, and since the map has two
// entries the query Equals the map. A map with any entry the query does
// not account for is not equal, even if every leaf matched.
//
// Queries are values; composition returns new queries and never modifies
// its operands.
package query

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"
)

var (
	// ErrEmpty is returned when an Empty query is composed into And or Or.
	ErrEmpty = errors.New("cannot compose an empty query")

	// ErrNotConcrete is returned when a query with Or or wildcard items
	// is converted to Attrs.
	ErrNotConcrete = errors.New("query is not concrete")
)

// Attrs is an attribute map a query is compared with.
type Attrs map[string]string

// Query is one of Empty, Item, And or Or.
type Query interface {
	// Compare returns the number of leaf items that match m.
	Compare(m Attrs) int

	// String renders the query, e.g. "(lib:work&ent:top&arch:*)".
	String() string

	isQuery()
}

// Empty is a placeholder for a query that has no operands yet.
type Empty struct{}

func (Empty) isQuery()          {}
func (Empty) Compare(Attrs) int { return 0 }
func (Empty) String() string    { return "()" }

// Item matches a single attribute.
// If Any is set, it matches any value of Key.
type Item struct {
	Key   string
	Value string
	Any   bool
}

// Wildcard returns an item that matches any value of key.
func Wildcard(key string) Item {
	return Item{Key: key, Any: true}
}

// Eq returns an item that matches key with value.
func Eq(key, value string) Item {
	return Item{Key: key, Value: value}
}

func (Item) isQuery() {}

// Compare returns 1 if m has the item, 0 otherwise.
func (it Item) Compare(m Attrs) int {
	v, ok := m[it.Key]
	if !ok {
		return 0
	}
	if it.Any || v == it.Value {
		return 1
	}
	return 0
}

func (it Item) String() string {
	if it.Any {
		return it.Key + ":*"
	}
	return it.Key + ":" + it.Value
}

// And matches when all children match.
type And []Query

func (And) isQuery() {}

// Compare returns the sum of counts of children, or 0 if any child
// doesn't match.
func (a And) Compare(m Attrs) int {
	count := 0
	for _, q := range a {
		n := q.Compare(m)
		if n == 0 {
			return 0
		}
		count += n
	}
	return count
}

func (a And) String() string { return render("&", a) }

// Add returns a new And with q added.
// If q is an And, its children are added instead of q itself.
func (a And) Add(q Query) (And, error) {
	children, err := add(a, q)
	return And(children), err
}

// Or matches when any child matches.
type Or []Query

func (Or) isQuery() {}

// Compare returns the maximum count among children.
func (o Or) Compare(m Attrs) int {
	count := 0
	for _, q := range o {
		if n := q.Compare(m); n > count {
			count = n
		}
	}
	return count
}

func (o Or) String() string { return render("|", o) }

// Add returns a new Or with q added.
// If q is an Or, its children are added instead of q itself.
func (o Or) Add(q Query) (Or, error) {
	children, err := add(o, q)
	return Or(children), err
}

func render(op string, children []Query) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, q := range children {
		if i > 0 {
			sb.WriteString(op)
		}
		sb.WriteString(q.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// add appends q (or q's children if q has the same operator as the
// receiver) to a copy of children.
func add[T And | Or](children T, q Query) ([]Query, error) {
	var src []Query
	switch q := q.(type) {
	case nil, Empty:
		return nil, ErrEmpty
	case T:
		src = q
	default:
		src = []Query{q}
	}
	out := make([]Query, 0, len(children)+len(src))
	out = append(out, children...)
	for _, c := range src {
		switch c.(type) {
		case nil, Empty:
			return nil, ErrEmpty
		}
		out = append(out, c)
	}
	return out, nil
}

// Op is a boolean operator.
type Op int

const (
	OpAnd Op = iota + 1
	OpOr
)

func (op Op) String() string {
	switch op {
	case OpAnd:
		return "&"
	case OpOr:
		return "|"
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// Compose returns lhs op rhs.
// An Empty (or nil) lhs is dropped, so a query may be built up by
// composing into an initially Empty value.
// Operands with the same operator are merged rather than nested.
func Compose(op Op, lhs, rhs Query) (Query, error) {
	switch op {
	case OpAnd:
		var q And
		return compose(q, lhs, rhs)
	case OpOr:
		var q Or
		return compose(q, lhs, rhs)
	}
	return nil, fmt.Errorf("unknown operator %v", op)
}

// composite is an And or an Or.
type composite interface {
	And | Or
	Query
}

func compose[T composite](q T, lhs, rhs Query) (Query, error) {
	switch lhs.(type) {
	case nil, Empty:
	default:
		c, err := add(q, lhs)
		if err != nil {
			return nil, err
		}
		q = T(c)
	}
	c, err := add(q, rhs)
	if err != nil {
		return nil, err
	}
	return T(c), nil
}

// AllOf returns the And of qs.
func AllOf(qs ...Query) (Query, error) {
	return fold(OpAnd, qs)
}

// AnyOf returns the Or of qs.
func AnyOf(qs ...Query) (Query, error) {
	return fold(OpOr, qs)
}

func fold(op Op, qs []Query) (Query, error) {
	var q Query = Empty{}
	for _, x := range qs {
		var err error
		q, err = Compose(op, q, x)
		if err != nil {
			return nil, err
		}
	}
	return q, nil
}

// FromAttrs returns the And of items of m.
// Items are ordered by key, so the rendering is stable.
func FromAttrs(m Attrs) And {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	a := make(And, 0, len(keys))
	for _, k := range keys {
		a = append(a, Eq(k, m[k]))
	}
	return a
}

// Equals reports whether q matches m exactly, i.e. every entry of m is
// accounted for by a matched leaf of q.
func Equals(q Query, m Attrs) bool {
	return q.Compare(m) == len(m)
}

// ToMap converts q to Attrs.
// q must be an Item with value or an And of such items (possibly nested).
func ToMap(q Query) (Attrs, error) {
	m := make(Attrs)
	err := toMap(m, q)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func toMap(m Attrs, q Query) error {
	switch q := q.(type) {
	case Item:
		if q.Any {
			return fmt.Errorf("%w: wildcard %s", ErrNotConcrete, q)
		}
		m[q.Key] = q.Value
		return nil
	case And:
		for _, c := range q {
			err := toMap(m, c)
			if err != nil {
				return err
			}
		}
		return nil
	case Or:
		return fmt.Errorf("%w: %s", ErrNotConcrete, q)
	case Empty, nil:
		return fmt.Errorf("%w: empty", ErrNotConcrete)
	}
	return fmt.Errorf("%w: %T", ErrNotConcrete, q)
}

// Items returns leaves of q in depth-first order.
func Items(q Query) iter.Seq[Item] {
	return func(yield func(Item) bool) {
		items(q, yield)
	}
}

func items(q Query, yield func(Item) bool) bool {
	switch q := q.(type) {
	case Item:
		return yield(q)
	case And:
		for _, c := range q {
			if !items(c, yield) {
				return false
			}
		}
	case Or:
		for _, c := range q {
			if !items(c, yield) {
				return false
			}
		}
	}
	return true
}
