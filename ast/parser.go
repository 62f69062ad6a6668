// Copyright © 2020 The Pea Authors under an MIT-style license.

package ast

import (
	"fmt"

	"github.com/eaburns/unconst/loc"
	"github.com/eaburns/unconst/token"
)

// An Error is a syntax error at a range of the input.
type Error struct {
	loc.Range
	Msg string
}

func (err *Error) Error() string { return err.Msg }

func errorf(r loc.Range, f string, vs ...interface{}) *Error {
	return &Error{Range: r, Msg: fmt.Sprintf(f, vs...)}
}

// expected returns an error at the next token of c.
func expected(c *token.Cursor, what string) *Error {
	return errorf(c.Span(), "expected %s", what)
}

// Parse parses a stream that must hold exactly one impl item.
func Parse(ts token.Stream) (*Impl, error) {
	c := token.NewCursor(ts)
	impl, err := ParseImpl(c)
	if err != nil {
		return nil, err
	}
	if !c.Eof() {
		return nil, errorf(c.Span(), "unexpected token")
	}
	return impl, nil
}

// ParseImpl parses an impl item at the cursor.
// The item must have a trait: impl Trait for Type.
//
// Parsing is all or nothing:
// on error the returned *Error gives the range of the offending token.
func ParseImpl(c *token.Cursor) (*Impl, error) {
	start := c.Span()
	var impl Impl
	var err error
	if impl.Attrs, err = parseOuterAttrs(c); err != nil {
		return nil, err
	}
	impl.Default = optIdent(c, "default")
	impl.Unsafe = optIdent(c, "unsafe")
	if impl.ImplKw = optIdent(c, "impl"); impl.ImplKw == nil {
		return nil, expected(c, "impl")
	}
	if peekGenerics(c) {
		if impl.Generics, err = parseGenerics(c); err != nil {
			return nil, err
		}
	}
	impl.Const = optIdent(c, "const")

	var bang token.Stream
	if c.PeekPunct("!") && !c.Peek2().IsGroup(token.Brace) {
		bang, _ = c.Punct("!")
	}
	if c.PeekIdent("for") {
		return nil, errorf(c.Span(), "expected trait name")
	}
	firstStart := c.Span()
	first, err := parseType(c, true)
	if err != nil {
		return nil, err
	}
	if !c.PeekIdent("for") {
		return nil, errorf(impl.ImplKw.Range(), "expected trait impl block")
	}
	path, ok := traitPath(first)
	if !ok {
		return nil, errorf(firstStart.Join(first.GetRange()), "expected trait path")
	}
	if name, ok := path.Segments.Last(); !ok || token.IsKeyword(name.Name.Text) {
		return nil, errorf(path.Range, "expected trait name")
	}
	forKw, _ := c.Ident("for")
	impl.Trait = &TraitRef{
		Range: bang.Range().Join(path.Range).Join(forKw.Range),
		Bang:  bang,
		Path:  path,
		For:   token.Stream{forKw},
	}
	if impl.SelfType, err = parseType(c, true); err != nil {
		return nil, err
	}
	if c.PeekIdent("where") {
		if impl.Generics.Where, err = parseWhere(c); err != nil {
			return nil, err
		}
	}

	if !c.PeekGroup(token.Brace) {
		return nil, expected(c, "{")
	}
	impl.Brace = c.Next()
	body := token.Inside(impl.Brace)
	inner, err := parseInnerAttrs(body)
	if err != nil {
		return nil, err
	}
	impl.Attrs = append(impl.Attrs, inner...)
	for !body.Eof() {
		item, err := parseImplItem(body)
		if err != nil {
			return nil, err
		}
		impl.Items = append(impl.Items, item)
	}
	impl.Range = start.Join(impl.Brace.Range)
	return &impl, nil
}

// traitPath returns the path of a type that can name a trait:
// an unqualified path, possibly inside invisible groups.
func traitPath(t Type) (*Path, bool) {
	for {
		g, ok := t.(*GroupType)
		if !ok {
			break
		}
		t = g.Elem
	}
	p, ok := t.(*PathType)
	if !ok || p.QSelf != nil {
		return nil, false
	}
	return p.Path, true
}

// peekGenerics returns whether a < at the cursor starts generic parameters
// as opposed to a qualified self type: impl <T as Trait>::Assoc.
// Only the first three token trees are examined.
func peekGenerics(c *token.Cursor) bool {
	if !c.PeekPunct("<") {
		return false
	}
	second := c.Peek2()
	switch {
	case c.PeekPunctN(1, ">") || c.PeekPunctN(1, "#") || second.IsIdent("const"):
		return true
	case second.IsPlainIdent() || second.Kind == token.Lifetime:
		return c.PeekPunctN(2, ":") || c.PeekPunctN(2, ",") || c.PeekPunctN(2, ">") || c.PeekPunctN(2, "=")
	}
	return false
}

func optIdent(c *token.Cursor, text string) token.Stream {
	if t, ok := c.Ident(text); ok {
		return token.Stream{t}
	}
	return nil
}

func optPunct(c *token.Cursor, op string) token.Stream {
	s, _ := c.Punct(op)
	return s
}

func expectPunct(c *token.Cursor, op string) (token.Stream, error) {
	s, ok := c.Punct(op)
	if !ok {
		return nil, expected(c, op)
	}
	return s, nil
}

func parseOuterAttrs(c *token.Cursor) ([]Attribute, error) {
	var attrs []Attribute
	for c.PeekPunct("#") && !c.PeekPunctN(1, "!") {
		if !c.Peek2().IsGroup(token.Bracket) {
			c.Next()
			return nil, expected(c, "[")
		}
		ts := token.Stream{c.Next(), c.Next()}
		attrs = append(attrs, Attribute{Range: ts.Range(), Tokens: ts})
	}
	return attrs, nil
}

func parseInnerAttrs(c *token.Cursor) ([]Attribute, error) {
	var attrs []Attribute
	for c.PeekPunct("#") && c.PeekPunctN(1, "!") {
		if !c.Peek3().IsGroup(token.Bracket) {
			c.Next()
			c.Next()
			return nil, expected(c, "[")
		}
		ts := token.Stream{c.Next(), c.Next(), c.Next()}
		attrs = append(attrs, Attribute{Range: ts.Range(), Inner: true, Tokens: ts})
	}
	return attrs, nil
}

// parseVis parses an optional visibility:
// pub, pub(crate), pub(self), pub(super), pub(in path), or crate.
func parseVis(c *token.Cursor) token.Stream {
	switch {
	case c.PeekIdent("pub"):
		vis := token.Stream{c.Next()}
		if g := c.Peek(); g.IsGroup(token.Paren) && len(g.Stream) > 0 {
			switch first := g.Stream[0]; {
			case first.IsIdent("crate") || first.IsIdent("self") || first.IsIdent("super"):
				if len(g.Stream) == 1 {
					vis = append(vis, c.Next())
				}
			case first.IsIdent("in"):
				vis = append(vis, c.Next())
			}
		}
		return vis
	case c.PeekIdent("crate") && !c.PeekPunctN(1, "::"):
		return token.Stream{c.Next()}
	}
	return nil
}
