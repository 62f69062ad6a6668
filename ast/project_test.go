// Copyright © 2020 The Pea Authors under an MIT-style license.

package ast

import (
	"testing"

	"github.com/eaburns/pretty"
	"github.com/eaburns/unconst/token"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		marker string
		want   string
	}{
		{
			name: "no const",
			src:  "impl<T: Clone> Trait for X<T> {}",
			want: "impl<T: Clone> Trait for X<T> {}",
		},
		{
			name: "const marker",
			src:  "impl const Trait for Type {}",
			want: "impl Trait for Type {}",
		},
		{
			name: "negative const",
			src:  "impl<T> const !Trait for X<T> {}",
			want: "impl<T> !Trait for X<T> {}",
		},
		{
			name: "drop first bound",
			src:  "impl<T: ~const Drop + Send> const Trait for X<T> {}",
			want: "impl<T: Send> Trait for X<T> {}",
		},
		{
			name: "drop only bound",
			src:  "impl<T: ~const Drop> const Trait for X<T> {}",
			want: "impl<T> Trait for X<T> {}",
		},
		{
			name: "drop last bound",
			src:  "impl<T: Send + ~const Drop> const Trait for X<T> {}",
			want: "impl<T: Send> Trait for X<T> {}",
		},
		{
			name: "drop middle bound",
			src:  "impl<T: ?Sized + ~const core::ops::Drop + Clone> const Trait for X<T> {}",
			want: "impl<T: ?Sized + Clone> Trait for X<T> {}",
		},
		{
			name: "demote other bound",
			src:  "impl<T: ~const Other> const Trait for X<T> {}",
			want: "impl<T: Other> Trait for X<T> {}",
		},
		{
			name: "demote with generic arguments",
			src:  "impl<T: ~const Drop + ~const Iterator<Item = u8>> const Trait for X<T> {}",
			want: "impl<T: Iterator<Item = u8>> Trait for X<T> {}",
		},
		{
			name: "keep trailing plus",
			src:  "impl<T: Send + ~const Drop +> const Trait for X<T> {}",
			want: "impl<T: Send + > Trait for X<T> {}",
		},
		{
			name: "unjoin angle",
			src:  "impl<T: Vec<u8>+ ~const Drop> const Trait for X<T> {}",
			want: "impl<T: Vec<u8> > Trait for X<T> {}",
		},
		{
			name: "unjoin function output",
			src:  "impl<T: Fn() -> Vec<u8>+ ~const Drop> const Trait for X<T> {}",
			want: "impl<T: Fn() -> Vec<u8> > Trait for X<T> {}",
		},
		{
			name: "associated type with trailing where",
			src:  "impl<T: ~const Drop> const Trait for X<T> { type A<'a> = &'a T where T: 'a; }",
			want: "impl<T> Trait for X<T> { type A<'a> = &'a T where T: 'a; }",
		},
		{
			name: "parenthesized",
			src:  "impl<T: (~const Drop) + Send> const Trait for X<T> {}",
			want: "impl<T: Send> Trait for X<T> {}",
		},
		{
			name: "where clause",
			src:  "impl<T> const Trait for X<T> where T: ~const Drop {}",
			want: "impl<T> Trait for X<T> where T: {}",
		},
		{
			name: "where clause predicates",
			src:  "impl<T, U> const Trait for X<T, U> where T: ~const Drop + ~const Clone, U: Copy, 'a: 'b {}",
			want: "impl<T, U> Trait for X<T, U> where T: Clone, U: Copy, 'a: 'b {}",
		},
		{
			name: "lifetimes first",
			src:  "impl<T, 'a, const N: usize> Trait for X<'a, T, N> {}",
			want: "impl<'a, T, const N: usize> Trait for X<'a, T, N> {}",
		},
		{
			name: "lifetime last",
			src:  "impl<T, 'a> Trait for X<'a, T> {}",
			want: "impl<'a, T, > Trait for X<'a, T> {}",
		},
		{
			name: "method bounds unchanged",
			src:  "impl<T: ~const Drop> const Trait for X<T> { fn f<U: ~const Drop>(u: U) where U: ~const Clone {} }",
			want: "impl<T> Trait for X<T> { fn f<U: ~const Drop>(u: U) where U: ~const Clone {} }",
		},
		{
			name:   "custom marker",
			src:    "impl<T: ~const Destruct + ~const Drop> const Trait for X<T> {}",
			marker: "Destruct",
			want:   "impl<T: Drop> Trait for X<T> {}",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			impl, err := parseString(t, test.src)
			if err != nil {
				t.Fatalf("failed to parse: %s", err)
			}
			marker := test.marker
			if marker == "" {
				marker = DefaultMarker
			}
			got := Project(impl, marker).Tokens()
			if !token.Equal(got, lex(t, test.want)) {
				t.Errorf("got:\n	%s\nexpected:\n	%s", got, test.want)
				t.Log("impl:\n", pretty.String(impl))
			}
		})
	}
}

func TestProjectDoesNotModify(t *testing.T) {
	const src = "impl<T: ~const Drop + ~const Clone> const Trait for X<T> where T: ~const Drop + Send {}"
	impl, err := parseString(t, src)
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	before := impl.Tokens()
	Project(impl, DefaultMarker)
	if impl.Const == nil {
		t.Errorf("Const was cleared")
	}
	if after := impl.Tokens(); !token.Equal(before, after) {
		t.Errorf("got:\n	%s\nexpected:\n	%s", after, before)
	}
	tp := impl.Generics.Params[0].Value.(*TypeParam)
	if b := tp.Bounds[1].Value.(*TraitBound); b.Modifier.Kind != TildeConst {
		t.Errorf("got modifier %v, want TildeConst", b.Modifier.Kind)
	}
}

// Projecting is idempotent: a projected impl has nothing left to remove.
func TestProjectIdempotent(t *testing.T) {
	tests := []string{
		"impl<T: ~const Drop + Send> const Trait for X<T> {}",
		"impl<T: ?Sized + ~const Other, 'a> const Trait for X<T> where T: ~const Drop {}",
		"impl<T: Send + ~const Drop +> const Trait for X<T> {}",
	}
	for _, src := range tests {
		impl, err := parseString(t, src)
		if err != nil {
			t.Errorf("failed to parse [%s]: %s", src, err)
			continue
		}
		once := Project(impl, DefaultMarker).Tokens()
		again, err := Parse(once)
		if err != nil {
			t.Errorf("failed to re-parse [%s]: %s", once, err)
			continue
		}
		if twice := Project(again, DefaultMarker).Tokens(); !token.Equal(once, twice) {
			t.Errorf("got:\n	%s\nexpected:\n	%s", twice, once)
		}
	}
}
