package ast

import (
	"strings"
	"testing"

	"github.com/eaburns/pretty"
	"github.com/eaburns/unconst/loc"
	"github.com/eaburns/unconst/token"
	"github.com/google/go-cmp/cmp"
)

func parseString(t *testing.T, src string) (*Impl, error) {
	t.Helper()
	ts, err := token.Lex(src)
	if err != nil {
		t.Fatalf("failed to lex [%s]: %s", src, err)
	}
	return Parse(ts)
}

func lex(t *testing.T, src string) token.Stream {
	t.Helper()
	ts, err := token.Lex(src)
	if err != nil {
		t.Fatalf("failed to lex [%s]: %s", src, err)
	}
	return ts
}

// Without ~const bounds, re-emitting gives back the input,
// minus any const marker.
func TestReemit(t *testing.T) {
	tests := []string{
		"impl Trait for X {}",
		"impl<T> Trait for X<T> {}",
		"impl<'a, T: 'a + ?Sized> Trait<'a> for &'a T {}",
		"#[cfg(test)] #[inline] impl !Send for X {}",
		"default unsafe impl<T: Sync> Send for X<T> {}",
		"impl<T> Trait for <T as Other>::Assoc {}",
		"impl<T> ::core::ops::Add<T> for X<T> where T: Copy, {}",
		"impl Trait for [u8; 4] {}",
		"impl Trait for (A, B) {}",
		"impl Trait for (A) {}",
		"impl Trait for *const u8 {}",
		"impl Trait for dyn Any + Send {}",
		"impl Trait for fn(u8) -> u8 {}",
		"impl Trait for for<'a> fn(&'a u8) {}",
		"impl<const N: usize, const M: bool = true> Trait for X<N, { M }> {}",
		"impl<#[may_dangle] T, _> Trait for X<T> {}",
		"impl<F> Trait for X<F> where F: for<'b> Fn(&'b u8) -> Option<u8>, 'a: 'b + 'static, T::Item: Clone {}",
		"impl<I: Iterator<Item = u8>, J: Iterator<Item: Clone>> Trait for X<I, J> {}",
		"impl<T> Trait for X<T> where T: Fn::(u8) {}",
		"impl<T> Trait for X<T> where Vec<T>: Clone, T = u8 {}",
		`impl Trait for X {
			#![allow(dead_code)]
			/// Documented.
			type Out = Vec<u8>;
			type Bounded: Clone;
			type Gat<'a> where Self: 'a = &'a u8;
			type Trailing<'a> = &'a T where T: 'a;
			const N: usize = 1 + 2;
			const M: usize;
			pub(crate) const fn f(&mut self, (a, b): (u8, u8)) -> impl Iterator<Item = u8> + '_ { todo!() }
			fn g(self: Box<Self>);
			default fn h<T: ~const Drop>(mut self, x: T) -> T where T: ~const Clone { x }
			async unsafe extern "C" fn v(a: u8, ...);
			m!{}
			n!(x);
			core::o![y];
		}`,
	}
	for _, src := range tests {
		impl, err := parseString(t, src)
		if err != nil {
			t.Errorf("failed to parse [%s]: %s", src, err)
			continue
		}
		if got := impl.Tokens(); !token.Equal(got, lex(t, src)) {
			t.Errorf("got:\n	%s\nexpected:\n	%s", got, src)
			t.Log("impl:\n", pretty.String(impl))
		}
	}
}

func TestParseHeader(t *testing.T) {
	impl, err := parseString(t, "impl<T> const !Trait for X<T> {}")
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	if impl.Const == nil {
		t.Errorf("Const is nil")
	}
	if impl.Trait == nil || impl.Trait.Bang == nil {
		t.Fatalf("got Trait %#v, want a negative trait", impl.Trait)
	}
	if got := impl.Trait.Path.LastName(); got != "Trait" {
		t.Errorf("trait name is %q, want Trait", got)
	}
	if self, ok := impl.SelfType.(*PathType); !ok || self.Path.LastName() != "X" {
		t.Errorf("got self type %s, want X<T>", pretty.String(impl.SelfType))
	}
}

func TestParseBounds(t *testing.T) {
	impl, err := parseString(t, "impl<T: ~const Drop + ?Sized + 'a + (Send) + for<'b> Fn(&'b u8)> Trait for X {}")
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	tp := impl.Generics.Params[0].Value.(*TypeParam)
	var got []string
	for _, b := range tp.Bounds.Values() {
		switch b := b.(type) {
		case *LifetimeBound:
			got = append(got, "lifetime "+b.Lifetime.Text)
		case *TraitBound:
			s := b.Path.LastName()
			switch b.Modifier.Kind {
			case Maybe:
				s = "?" + s
			case TildeConst:
				s = "~const " + s
			}
			if b.Paren {
				s = "(" + s + ")"
			}
			if b.Lifetimes != nil {
				s = "for " + s
			}
			got = append(got, s)
		}
	}
	want := []string{"~const Drop", "?Sized", "lifetime 'a", "(Send)", "for Fn"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want,+got)\n%s", diff)
	}
}

func TestParseVariadic(t *testing.T) {
	tests := []struct {
		src      string
		inputs   int
		variadic bool
	}{
		{src: "fn f(a: u8, ...);", inputs: 1, variadic: true},
		{src: "fn f(...);", inputs: 0, variadic: true},
		{src: "fn f(#[attr] ...);", inputs: 0, variadic: true},
		// Only a final unpunctuated ... is variadic.
		{src: "fn f(a: u8, ...,);", inputs: 2, variadic: false},
		{src: "fn f(a: u8, args: ...);", inputs: 2, variadic: false},
	}
	for _, test := range tests {
		src := "impl Trait for X { " + test.src + " }"
		impl, err := parseString(t, src)
		if err != nil {
			t.Errorf("failed to parse [%s]: %s", src, err)
			continue
		}
		m := impl.Items[0].(*Method)
		if len(m.Sig.Inputs) != test.inputs || (m.Sig.Variadic != nil) != test.variadic {
			t.Errorf("%s: got %d inputs, variadic=%v, want %d inputs, variadic=%v",
				test.src, len(m.Sig.Inputs), m.Sig.Variadic != nil, test.inputs, test.variadic)
		}
		if got := impl.Tokens(); !token.Equal(got, lex(t, src)) {
			t.Errorf("got:\n	%s\nexpected:\n	%s", got, src)
		}
	}
}

func TestParseReceiver(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"self", "self"},
		{"mut self", "mut self"},
		{"&self", "& self"},
		{"&mut self", "& mut self"},
		{"&'a self", "& 'a self"},
		{"&'a mut self", "& 'a mut self"},
		{"self: Box<Self>", "self : Box < Self >"},
		{"mut self: Rc<Self>", "mut self : Rc < Self >"},
	}
	for _, test := range tests {
		src := "impl Trait for X { fn f(" + test.src + ", x: u8) {} }"
		impl, err := parseString(t, src)
		if err != nil {
			t.Errorf("failed to parse [%s]: %s", src, err)
			continue
		}
		sig := impl.Items[0].(*Method).Sig
		r, ok := sig.Inputs[0].Value.(*Receiver)
		if !ok {
			t.Errorf("%s: got %T, want *Receiver", test.src, sig.Inputs[0].Value)
			continue
		}
		if got := fnArgTokens(r).String(); got != test.want {
			t.Errorf("%s: got %q, want %q", test.src, got, test.want)
		}
		if _, ok := sig.Inputs[1].Value.(*TypedArg); !ok {
			t.Errorf("%s: got %T, want *TypedArg", test.src, sig.Inputs[1].Value)
		}
	}
}

func TestParseItems(t *testing.T) {
	const src = `impl Trait for X {
		type A = u8;
		type B: Clone;
		const C: u8 = 1;
		const D: u8;
		fn e() {}
		f!();
		type G<'a> = &'a T where T: 'a;
	}`
	impl, err := parseString(t, src)
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	var got []string
	for _, item := range impl.Items {
		switch item.(type) {
		case *TypeItem:
			got = append(got, "type")
		case *ConstItem:
			got = append(got, "const")
		case *Method:
			got = append(got, "method")
		case *MacroItem:
			got = append(got, "macro")
		case *VerbatimItem:
			got = append(got, "verbatim")
		}
	}
	want := []string{"type", "verbatim", "const", "verbatim", "method", "macro", "verbatim"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want,+got)\n%s", diff)
	}
}

// Macro substitution can wrap the trait type in invisible groups.
func TestParseInvisibleGroup(t *testing.T) {
	wrap := func(ts token.Stream) token.Stream {
		return token.Stream{token.NewGroup(token.NoDelim, ts)}
	}
	join := func(ss ...token.Stream) token.Stream {
		var ts token.Stream
		for _, s := range ss {
			ts = append(ts, s...)
		}
		return ts
	}
	tests := []struct {
		name string
		ts   token.Stream
		want string
		err  string
	}{
		{
			name: "trait",
			ts:   join(lex(t, "impl<T>"), wrap(lex(t, "Trait<T>")), lex(t, "for X<T> {}")),
			want: "impl<T> Trait<T> for X<T> {}",
		},
		{
			name: "nested",
			ts:   join(lex(t, "impl const"), wrap(wrap(lex(t, "a::Trait"))), lex(t, "for X {}")),
			want: "impl a::Trait for X {}",
		},
		{
			name: "qualified self",
			ts:   join(lex(t, "impl<T>"), wrap(lex(t, "<T as X>::Y")), lex(t, "for Z {}")),
			err:  "expected trait path",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			impl, err := Parse(test.ts)
			if test.err != "" {
				if err == nil || err.Error() != test.err {
					t.Fatalf("got error %v, want %s", err, test.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("failed to parse [%s]: %s", test.ts, err)
			}
			got := Project(impl, DefaultMarker).Tokens()
			if !token.Equal(got, lex(t, test.want)) {
				t.Errorf("got:\n	%s\nexpected:\n	%s", got, test.want)
			}
		})
	}
}

func TestPeekGenerics(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"<>", true},
		{"<T>", true},
		{"<'a>", true},
		{"<T: Clone>", true},
		{"<T, U>", true},
		{"<T = u8>", true},
		{"<#[attr] T>", true},
		{"<const N: usize>", true},
		{"<T as Trait>::Assoc", false},
		{"<Vec<T> as Trait>::Assoc", false},
		{"<[T] as Trait>::Assoc", false},
		{"X", false},
	}
	for _, test := range tests {
		c := token.NewCursor(lex(t, test.src))
		if got := peekGenerics(c); got != test.want {
			t.Errorf("peekGenerics(%q)=%v, want %v", test.src, got, test.want)
		}
	}
}

func TestParseError(t *testing.T) {
	tests := []struct {
		src string
		err string
		// at is the source text of the error range, if non-empty.
		at string
	}{
		{src: "struct X;", err: "expected impl"},
		{src: "impl Type { fn f() {} }", err: "expected trait impl block", at: "impl"},
		{src: "impl<T> Type<T> {}", err: "expected trait impl block", at: "impl"},
		{src: "impl const Type {}", err: "expected trait impl block"},
		{src: "impl<T> <T as X>::Y for Z {}", err: "expected trait path", at: "<T as X>::Y"},
		{src: "impl &Trait for Z {}", err: "expected trait path", at: "&Trait"},
		{src: "impl for X {}", err: "expected trait name", at: "for"},
		{src: "impl Self for X {}", err: "expected trait name", at: "Self"},
		{src: "impl Trait for X { fn f(a: u8, self) {} }", err: "unexpected method receiver", at: "self"},
		{src: "impl Trait for X { fn f(&self, &mut self) {} }", err: "unexpected second method receiver", at: "self"},
		{src: "impl Trait for X { fn f(self, self) {} }", err: "unexpected second method receiver"},
		{src: "impl Trait for X { struct S; }", err: "expected impl item", at: "struct"},
		{src: "impl Trait for X { pub m!(); }", err: "expected impl item"},
		{src: "impl Trait for X { fn f() }", err: "expected { or ;"},
		{src: "impl Trait for X {} struct Y;", err: "unexpected token", at: "struct"},
		{src: "impl<T: ~const> Trait for X {}", err: "expected identifier"},
		{src: "impl Trait for X", err: "expected {"},
	}
	for _, test := range tests {
		_, err := parseString(t, test.src)
		if err == nil {
			t.Errorf("expected error matching %q, got nil: %s", test.err, test.src)
			continue
		}
		e, ok := err.(*Error)
		if !ok {
			t.Errorf("got error type %T, want *Error", err)
			continue
		}
		if !strings.Contains(e.Msg, test.err) {
			t.Errorf("got error %q, want matching %q: %s", e.Msg, test.err, test.src)
			continue
		}
		if test.at != "" && text(test.src, e.Range) != test.at {
			t.Errorf("got error at %q, want %q: %s", text(test.src, e.Range), test.at, test.src)
		}
	}
}

func text(src string, r loc.Range) string {
	if r.IsNone() || r[1] > len(src) {
		return ""
	}
	return src[r[0]:r[1]]
}
