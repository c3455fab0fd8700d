// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package query

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustCompose(t *testing.T, op Op, lhs, rhs Query) Query {
	t.Helper()
	q, err := Compose(op, lhs, rhs)
	if err != nil {
		t.Fatalf("Compose(%v, %v, %v)=_, %v; want nil err", op, lhs, rhs, err)
	}
	return q
}

func TestString(t *testing.T) {
	hello := Eq("Hello", "World")
	foo := Eq("Foo", "Bar")
	one := Eq("1", "2")
	three := Eq("3", "4")
	and := func(lhs, rhs Query) Query { return mustCompose(t, OpAnd, lhs, rhs) }
	or := func(lhs, rhs Query) Query { return mustCompose(t, OpOr, lhs, rhs) }

	for _, tc := range []struct {
		name string
		q    Query
		want string
	}{
		{
			name: "item",
			q:    hello,
			want: "Hello:World",
		},
		{
			name: "wildcard",
			q:    Wildcard("arch"),
			want: "arch:*",
		},
		{
			name: "empty",
			q:    Empty{},
			want: "()",
		},
		{
			name: "and",
			q:    and(hello, foo),
			want: "(Hello:World&Foo:Bar)",
		},
		{
			name: "and3",
			q:    and(and(hello, foo), one),
			want: "(Hello:World&Foo:Bar&1:2)",
		},
		{
			name: "or",
			q:    or(hello, foo),
			want: "(Hello:World|Foo:Bar)",
		},
		{
			name: "complex1",
			q:    and(and(or(hello, foo), one), three),
			want: "((Hello:World|Foo:Bar)&1:2&3:4)",
		},
		{
			name: "complex2",
			q:    or(and(hello, foo), and(one, three)),
			want: "((Hello:World&Foo:Bar)|(1:2&3:4))",
		},
		{
			name: "merge rhs",
			q:    and(hello, and(foo, one)),
			want: "(Hello:World&Foo:Bar&1:2)",
		},
		{
			name: "empty lhs",
			q:    and(Empty{}, hello),
			want: "(Hello:World)",
		},
		{
			name: "from attrs",
			q:    and(FromAttrs(Attrs{"lib": "work", "ent": "top"}), Wildcard("arch")),
			want: "(ent:top&lib:work&arch:*)",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.q.String(); got != tc.want {
				t.Errorf("String()=%q; want %q", got, tc.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	hello := Eq("Hello", "World")
	foo := Eq("Foo", "Bar")
	one := Eq("1", "2")
	three := Eq("3", "4")
	and := func(lhs, rhs Query) Query { return mustCompose(t, OpAnd, lhs, rhs) }
	or := func(lhs, rhs Query) Query { return mustCompose(t, OpOr, lhs, rhs) }

	complex := or(and(hello, foo), and(one, three))
	for _, tc := range []struct {
		name      string
		q         Query
		m         Attrs
		want      int
		wantEqual bool
	}{
		{
			name:      "and",
			q:         and(hello, foo),
			m:         Attrs{"Hello": "World", "Foo": "Bar"},
			want:      2,
			wantEqual: true,
		},
		{
			name:      "item mismatch",
			q:         hello,
			m:         Attrs{"Hello": "Moon"},
			want:      0,
			wantEqual: false,
		},
		{
			name:      "wildcard",
			q:         Wildcard("Hello"),
			m:         Attrs{"Hello": "Moon"},
			want:      1,
			wantEqual: true,
		},
		{
			name:      "wildcard missing",
			q:         Wildcard("Hello"),
			m:         Attrs{"Foo": "Bar"},
			want:      0,
			wantEqual: false,
		},
		{
			name:      "complex first",
			q:         complex,
			m:         Attrs{"Hello": "World", "Foo": "Bar"},
			want:      2,
			wantEqual: true,
		},
		{
			name:      "complex mixed",
			q:         complex,
			m:         Attrs{"Hello": "World", "1": "2"},
			want:      0,
			wantEqual: false,
		},
		{
			name:      "or max",
			q:         or(or(and(hello, foo), and(one, three)), one),
			m:         Attrs{"1": "2", "3": "4"},
			want:      2,
			wantEqual: true,
		},
		{
			name:      "or smaller map",
			q:         or(or(and(hello, foo), and(one, three)), one),
			m:         Attrs{"1": "2"},
			want:      1,
			wantEqual: true,
		},
		{
			name:      "extra key",
			q:         and(hello, foo),
			m:         Attrs{"Hello": "World", "Foo": "Bar", "x": "y"},
			want:      2,
			wantEqual: false,
		},
		{
			name:      "nested and sums",
			q:         and(or(and(hello, foo), one), three),
			m:         Attrs{"Hello": "World", "Foo": "Bar", "3": "4"},
			want:      3,
			wantEqual: true,
		},
		{
			name:      "dependency",
			q:         and(and(or(Eq("lib", "a"), Eq("lib", "b")), Eq("ent", "e")), Wildcard("arch")),
			m:         Attrs{"lib": "b", "ent": "e", "arch": "rtl"},
			want:      3,
			wantEqual: true,
		},
		{
			name:      "dependency no arch",
			q:         and(and(or(Eq("lib", "a"), Eq("lib", "b")), Eq("ent", "e")), Wildcard("arch")),
			m:         Attrs{"lib": "b", "ent": "e"},
			want:      0,
			wantEqual: false,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.q.Compare(tc.m)
			if got != tc.want {
				t.Errorf("%s.Compare(%v)=%d; want %d", tc.q, tc.m, got, tc.want)
			}
			if eq := Equals(tc.q, tc.m); eq != tc.wantEqual {
				t.Errorf("Equals(%s, %v)=%t; want %t", tc.q, tc.m, eq, tc.wantEqual)
			}
			if eq := Equals(tc.q, tc.m); eq != (got == len(tc.m)) {
				t.Errorf("Equals(%s, %v)=%t; Compare=%d len=%d", tc.q, tc.m, eq, got, len(tc.m))
			}
		})
	}
}

func TestCompareAlgebra(t *testing.T) {
	items := []Query{
		Eq("lib", "work"),
		Eq("lib", "other"),
		Eq("ent", "top"),
		Wildcard("arch"),
		Wildcard("pkg"),
		And{Eq("lib", "work"), Eq("ent", "top")},
		Or{Eq("ent", "top"), Eq("pkg", "top")},
	}
	maps := []Attrs{
		{},
		{"lib": "work"},
		{"lib": "work", "ent": "top"},
		{"lib": "work", "ent": "top", "arch": "rtl"},
		{"lib": "other", "pkg": "top"},
	}
	for _, a := range items {
		for _, b := range items {
			or := Or{a, b}
			and := And{a, b}
			for _, m := range maps {
				ca, cb := a.Compare(m), b.Compare(m)
				if got, want := or.Compare(m), max(ca, cb); got != want {
					t.Errorf("%s.Compare(%v)=%d; want %d", or, m, got, want)
				}
				want := ca + cb
				if ca == 0 || cb == 0 {
					want = 0
				}
				if got := and.Compare(m); got != want {
					t.Errorf("%s.Compare(%v)=%d; want %d", and, m, got, want)
				}
			}
		}
	}
}

func TestAddEmpty(t *testing.T) {
	for _, q := range []Query{
		And{Eq("a", "b")},
		Or{Eq("a", "b")},
	} {
		var err error
		switch q := q.(type) {
		case And:
			_, err = q.Add(Empty{})
		case Or:
			_, err = q.Add(Empty{})
		}
		if !errors.Is(err, ErrEmpty) {
			t.Errorf("%s.Add(Empty)=_, %v; want %v", q, err, ErrEmpty)
		}
	}
	_, err := Compose(OpAnd, Eq("a", "b"), Empty{})
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("Compose(&, a:b, Empty)=_, %v; want %v", err, ErrEmpty)
	}
	_, err = Compose(OpOr, Empty{}, Empty{})
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("Compose(|, Empty, Empty)=_, %v; want %v", err, ErrEmpty)
	}
	_, err = And{}.Add(And{Eq("a", "b"), Empty{}})
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("And{}.Add(And{a:b, Empty})=_, %v; want %v", err, ErrEmpty)
	}
}

func TestAddPersistent(t *testing.T) {
	base := And{Eq("a", "1")}
	x, err := base.Add(Eq("b", "2"))
	if err != nil {
		t.Fatal(err)
	}
	y, err := base.Add(Eq("c", "3"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := base.String(), "(a:1)"; got != want {
		t.Errorf("base=%q; want %q", got, want)
	}
	if got, want := x.String(), "(a:1&b:2)"; got != want {
		t.Errorf("x=%q; want %q", got, want)
	}
	if got, want := y.String(), "(a:1&c:3)"; got != want {
		t.Errorf("y=%q; want %q", got, want)
	}
	z, err := Or{Eq("a", "1")}.Add(And{Eq("b", "2"), Eq("c", "3")})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := z.String(), "(a:1|(b:2&c:3))"; got != want {
		t.Errorf("z=%q; want %q", got, want)
	}
}

func TestToMap(t *testing.T) {
	and := func(lhs, rhs Query) Query { return mustCompose(t, OpAnd, lhs, rhs) }
	or := func(lhs, rhs Query) Query { return mustCompose(t, OpOr, lhs, rhs) }

	for _, tc := range []struct {
		name    string
		q       Query
		want    Attrs
		wantErr error
	}{
		{
			name: "item",
			q:    Eq("lib", "work"),
			want: Attrs{"lib": "work"},
		},
		{
			name: "and",
			q:    and(and(Eq("lib", "work"), Eq("ent", "top")), Eq("arch", "rtl")),
			want: Attrs{"lib": "work", "ent": "top", "arch": "rtl"},
		},
		{
			name: "nested and",
			q:    And{Eq("lib", "work"), And{Eq("ent", "top")}},
			want: Attrs{"lib": "work", "ent": "top"},
		},
		{
			name:    "wildcard",
			q:       and(Eq("lib", "work"), Wildcard("arch")),
			wantErr: ErrNotConcrete,
		},
		{
			name:    "or",
			q:       and(Eq("lib", "work"), or(Eq("pkg", "p"), Eq("ent", "p"))),
			wantErr: ErrNotConcrete,
		},
		{
			name:    "empty",
			q:       Empty{},
			wantErr: ErrNotConcrete,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToMap(tc.q)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ToMap(%s)=_, %v; want %v", tc.q, err, tc.wantErr)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ToMap(%s) diff -want +got:\n%s", tc.q, diff)
			}
		})
	}
}

func TestToMapRoundTrip(t *testing.T) {
	for _, q := range []Query{
		Eq("lib", "work"),
		And{Eq("lib", "work"), Eq("ent", "top")},
		And{Eq("lib", "work"), Eq("ent", "top"), Eq("arch", "rtl")},
		And{And{Eq("lib", "x")}, Eq("pkg", "p")},
	} {
		m, err := ToMap(q)
		if err != nil {
			t.Fatalf("ToMap(%s)=_, %v", q, err)
		}
		back := FromAttrs(m)
		if !Equals(back, m) {
			t.Errorf("Equals(%s, %v)=false; want true", back, m)
		}
		if !Equals(q, m) {
			t.Errorf("Equals(%s, %v)=false; want true", q, m)
		}
	}
}

func TestAllOfAnyOf(t *testing.T) {
	q, err := AllOf(Eq("a", "1"), Eq("b", "2"), Wildcard("c"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := q.String(), "(a:1&b:2&c:*)"; got != want {
		t.Errorf("AllOf=%q; want %q", got, want)
	}
	q, err = AnyOf()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := q.(Empty); !ok {
		t.Errorf("AnyOf()=%s; want Empty", q)
	}
	q, err = AnyOf(Eq("lib", "a"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := q.String(), "(lib:a)"; got != want {
		t.Errorf("AnyOf(lib:a)=%q; want %q", got, want)
	}
}

func TestItems(t *testing.T) {
	q := And{Eq("lib", "a"), Or{Eq("pkg", "p"), Eq("ent", "p")}, Wildcard("arch")}
	got := slices.Collect(Items(q))
	want := []Item{Eq("lib", "a"), Eq("pkg", "p"), Eq("ent", "p"), Wildcard("arch")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Items(%s) diff -want +got:\n%s", q, diff)
	}
	for it := range Items(q) {
		if it.Key != "lib" {
			t.Errorf("Items(%s) didn't stop; got %s", q, it)
		}
		break
	}
	if got := slices.Collect(Items(Empty{})); len(got) != 0 {
		t.Errorf("Items(Empty)=%v; want none", got)
	}
}

func TestComposeOp(t *testing.T) {
	a := Eq("a", "1")
	b := Eq("b", "2")
	c := Eq("c", "3")
	for _, tc := range []struct {
		name string
		op   Op
		lhs  Query
		rhs  Query
		want Query
	}{
		{
			name: "and",
			op:   OpAnd,
			lhs:  a,
			rhs:  b,
			want: And{a, b},
		},
		{
			name: "or",
			op:   OpOr,
			lhs:  a,
			rhs:  b,
			want: Or{a, b},
		},
		{
			name: "and-from-empty",
			op:   OpAnd,
			lhs:  Empty{},
			rhs:  a,
			want: And{a},
		},
		{
			name: "or-merge",
			op:   OpOr,
			lhs:  Or{a, b},
			rhs:  c,
			want: Or{a, b, c},
		},
		{
			name: "and-nest-or",
			op:   OpAnd,
			lhs:  Or{a, b},
			rhs:  c,
			want: And{Or{a, b}, c},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Compose(tc.op, tc.lhs, tc.rhs)
			if err != nil {
				t.Fatalf("Compose(%v, %v, %v)=_, %v; want nil err", tc.op, tc.lhs, tc.rhs, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Compose(%v, %v, %v) diff -want +got:\n%s", tc.op, tc.lhs, tc.rhs, diff)
			}
		})
	}
	_, err := Compose(Op(0), a, b)
	if err == nil {
		t.Errorf("Compose(Op(0), %v, %v)=_, nil; want err", a, b)
	}
}
