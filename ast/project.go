// Copyright © 2020 The Pea Authors under an MIT-style license.

package ast

import "github.com/eaburns/unconst/token"

// DefaultMarker is the name of the trait
// whose ~const bounds are removed by Project.
const DefaultMarker = "Drop"

// Project returns a copy of the impl that is valid
// without const trait syntax.
// The impl's const marker is removed.
// In the bounds of the impl's generic parameters and where clause,
// ~const bounds on the trait named marker are removed,
// and other ~const bounds become plain bounds.
// Bounds of the impl's items are not changed.
//
// The argument is not modified;
// unchanged subtrees are shared with the result.
func Project(impl *Impl, marker string) *Impl {
	p := *impl
	p.Const = nil
	p.Generics = projectGenerics(impl.Generics, marker)
	return &p
}

func projectGenerics(g Generics, marker string) Generics {
	params := make(Punctuated[GenericParam], len(g.Params))
	for i, pair := range g.Params {
		if tp, ok := pair.Value.(*TypeParam); ok {
			c := *tp
			c.Bounds = projectBounds(tp.Bounds, marker)
			pair.Value = &c
		}
		params[i] = pair
	}
	g.Params = params
	if g.Where != nil {
		w := *g.Where
		w.Predicates = make(Punctuated[WherePredicate], len(g.Where.Predicates))
		for i, pair := range g.Where.Predicates {
			if tp, ok := pair.Value.(*TypePredicate); ok {
				c := *tp
				c.Bounds = projectBounds(tp.Bounds, marker)
				pair.Value = &c
			}
			w.Predicates[i] = pair
		}
		g.Where = &w
	}
	return g
}

// projectBounds drops ~const marker bounds, demotes other ~const bounds,
// and keeps the rest.
// Separators of the kept bounds are kept with them,
// but if the list had no trailing separator, the result has none either.
func projectBounds(bs Punctuated[Bound], marker string) Punctuated[Bound] {
	var out Punctuated[Bound]
	for _, pair := range bs {
		tb, ok := pair.Value.(*TraitBound)
		if ok && tb.Modifier.Kind == TildeConst {
			if tb.Path.LastName() == marker {
				continue
			}
			c := *tb
			c.Modifier = Modifier{}
			pair.Value = &c
		}
		out = append(out, pair)
	}
	if out.Trailing() && !bs.Trailing() {
		last := &out[len(out)-1]
		last.Punct = nil
		last.Value = aloneBound(last.Value)
	}
	return out
}

// aloneBound returns the bound with the spacing of its last token Alone.
// A bound that was followed by a + may end in a Joint punct,
// as in A<B>+ or Fn() -> A<B>+,
// which must not join with whatever follows it now.
func aloneBound(b Bound) Bound {
	tb, ok := b.(*TraitBound)
	if !ok || tb.Paren {
		return b
	}
	p, ok := alonePath(tb.Path)
	if !ok {
		return b
	}
	c := *tb
	c.Path = p
	return &c
}

// alonePath returns a copy of the path with its last token Alone,
// or false if that token is not a Joint punct.
func alonePath(path *Path) (*Path, bool) {
	seg, ok := path.Segments.Last()
	if !ok {
		return nil, false
	}
	var args PathArgs
	switch a := seg.Args.(type) {
	case *AngleArgs:
		if len(a.Gt) == 0 || a.Gt[len(a.Gt)-1].Spacing != token.Joint {
			return nil, false
		}
		c := *a
		c.Gt = aloneLast(a.Gt)
		args = &c
	case *ParenArgs:
		out, ok := aloneType(a.Output)
		if !ok {
			return nil, false
		}
		c := *a
		c.Output = out
		args = &c
	default:
		return nil, false
	}
	s := *seg
	s.Args = args
	p := *path
	p.Segments = append(Punctuated[*PathSegment]{}, path.Segments...)
	p.Segments[len(p.Segments)-1].Value = &s
	return &p, true
}

func aloneType(t Type) (Type, bool) {
	switch t := t.(type) {
	case *PathType:
		p, ok := alonePath(t.Path)
		if !ok {
			return nil, false
		}
		c := *t
		c.Path = p
		return &c, true
	case *VerbatimType:
		n := len(t.Tokens)
		if n == 0 || t.Tokens[n-1].Kind != token.Punct || t.Tokens[n-1].Spacing != token.Joint {
			return nil, false
		}
		c := *t
		c.Tokens = aloneLast(t.Tokens)
		return &c, true
	}
	return nil, false
}

func aloneLast(ts token.Stream) token.Stream {
	out := append(token.Stream{}, ts...)
	out[len(out)-1].Spacing = token.Alone
	return out
}
