package ast

import (
	"github.com/eaburns/unconst/loc"
	"github.com/eaburns/unconst/token"
)

// parseGenerics parses an optional generic parameter list.
// The where clause is left for the caller,
// since it comes at the end of the item.
func parseGenerics(c *token.Cursor) (Generics, error) {
	var g Generics
	if !c.PeekPunct("<") {
		return g, nil
	}
	g.Lt, _ = c.Punct("<")
	for !c.PeekPunct(">") {
		attrs, err := parseOuterAttrs(c)
		if err != nil {
			return g, err
		}
		var p GenericParam
		switch next := c.Peek(); {
		case next.Kind == token.Lifetime:
			p, err = parseLifetimeParam(c, attrs)
		case next.IsIdent("const"):
			p, err = parseConstParam(c, attrs)
		case next.IsIdent("_"):
			p = &TypeParam{Range: attrRange(attrs).Join(next.Range), Attrs: attrs, Name: c.Next()}
		case next.IsPlainIdent():
			p, err = parseTypeParam(c, attrs)
		default:
			return g, expected(c, "generic parameter")
		}
		if err != nil {
			return g, err
		}
		g.Params.PushValue(p)
		if c.PeekPunct(">") {
			break
		}
		comma, ok := c.Punct(",")
		if !ok {
			return g, expected(c, ", or >")
		}
		g.Params.PushPunct(comma)
	}
	g.Gt, _ = c.Punct(">")
	g.Range = g.Lt.Range().Join(g.Gt.Range())
	return g, nil
}

func attrRange(attrs []Attribute) loc.Range {
	if len(attrs) == 0 {
		return loc.None
	}
	return attrs[0].Range
}

func parseTypeParam(c *token.Cursor, attrs []Attribute) (*TypeParam, error) {
	start := c.Pos()
	p := &TypeParam{Attrs: attrs, Name: c.Next()}
	if p.Colon = optColon(c); p.Colon != nil {
		for !(c.PeekPunct(",") || c.PeekPunct(">") || c.PeekPunct("=") || c.Eof()) {
			b, err := parseBound(c)
			if err != nil {
				return nil, err
			}
			p.Bounds.PushValue(b)
			plus, ok := c.Punct("+")
			if !ok {
				break
			}
			p.Bounds.PushPunct(plus)
		}
	}
	if c.PeekPunct("=") {
		p.Eq, _ = c.Punct("=")
		var err error
		if p.Default, err = parseType(c, true); err != nil {
			return nil, err
		}
	}
	p.Range = attrRange(attrs).Join(c.Since(start).Range())
	return p, nil
}

func parseLifetimeParam(c *token.Cursor, attrs []Attribute) (*LifetimeParam, error) {
	if c.Peek().Kind != token.Lifetime {
		return nil, expected(c, "lifetime")
	}
	p := &LifetimeParam{Attrs: attrs, Lifetime: c.Next()}
	p.Range = attrRange(attrs).Join(p.Lifetime.Range)
	if p.Colon = optColon(c); p.Colon != nil {
		p.Range = p.Range.Join(p.Colon.Range())
		for c.Peek().Kind == token.Lifetime {
			lt := c.Next()
			p.Bounds.PushValue(lt)
			p.Range = p.Range.Join(lt.Range)
			plus, ok := c.Punct("+")
			if !ok {
				break
			}
			p.Bounds.PushPunct(plus)
		}
	}
	return p, nil
}

func parseConstParam(c *token.Cursor, attrs []Attribute) (*ConstParam, error) {
	p := &ConstParam{Attrs: attrs, Const: optIdent(c, "const")}
	if !c.Peek().IsPlainIdent() {
		return nil, expected(c, "identifier")
	}
	p.Name = c.Next()
	var err error
	if p.Colon, err = expectPunct(c, ":"); err != nil {
		return nil, err
	}
	if p.Type, err = parseType(c, true); err != nil {
		return nil, err
	}
	p.Range = attrRange(attrs).Join(p.Const.Range()).Join(p.Type.GetRange())
	if !c.PeekPunct("=") {
		return p, nil
	}
	p.Eq, _ = c.Punct("=")
	start := c.Pos()
	switch next := c.Peek(); {
	case isConstValue(next):
		c.Next()
	case next.IsPunct('-') && c.Peek2().Kind == token.Literal:
		c.Next()
		c.Next()
	case next.Kind == token.Ident || c.PeekPunct("::"):
		if _, err := parsePath(c); err != nil {
			return nil, err
		}
	default:
		return nil, expected(c, "const default value")
	}
	p.Default = c.Since(start)
	p.Range = p.Range.Join(p.Default.Range())
	return p, nil
}

// isConstValue returns whether t is a complete const generic value.
func isConstValue(t token.Tree) bool {
	return t.Kind == token.Literal || t.IsGroup(token.Brace) || t.IsIdent("true") || t.IsIdent("false")
}

// optColon consumes a : that does not start a ::.
func optColon(c *token.Cursor) token.Stream {
	if !c.PeekColon() {
		return nil
	}
	return optPunct(c, ":")
}

// parseBound parses a single bound of a + separated list.
func parseBound(c *token.Cursor) (Bound, error) {
	switch next := c.Peek(); {
	case next.Kind == token.Lifetime:
		c.Next()
		return &LifetimeBound{Range: next.Range, Lifetime: next}, nil
	case next.IsGroup(token.Paren):
		g := c.Next()
		inside := token.Inside(g)
		b, err := parseTraitBound(inside)
		if err != nil {
			return nil, err
		}
		if !inside.Eof() {
			return nil, errorf(inside.Span(), "unexpected token")
		}
		b.Paren = true
		b.Range = g.Range
		return b, nil
	}
	return parseTraitBound(c)
}

func parseTraitBound(c *token.Cursor) (*TraitBound, error) {
	start := c.Span()
	var b TraitBound
	switch {
	case c.PeekPunct("?"):
		b.Modifier = Modifier{Kind: Maybe, Tokens: token.Stream{c.Next()}}
	case c.PeekPunct("~") && c.Peek2().IsIdent("const"):
		b.Modifier = Modifier{Kind: TildeConst, Tokens: token.Stream{c.Next(), c.Next()}}
	}
	if c.PeekIdent("for") {
		var err error
		if b.Lifetimes, err = parseBoundLifetimes(c); err != nil {
			return nil, err
		}
	}
	var err error
	if b.Path, err = parsePath(c); err != nil {
		return nil, err
	}
	last, _ := b.Path.Segments.Last()
	if last.Args == nil && (c.PeekGroup(token.Paren) || c.PeekPunct("::") && c.PeekN(2).IsGroup(token.Paren)) {
		if last.Args, err = parseParenArgs(c); err != nil {
			return nil, err
		}
		last.Range = last.Range.Join(last.Args.GetRange())
		b.Path.Range = b.Path.Range.Join(last.Range)
	}
	b.Range = start.Join(b.Path.Range)
	return &b, nil
}

// parseBoundLifetimes parses a higher-ranked binder: for<'a, 'b>.
func parseBoundLifetimes(c *token.Cursor) (*BoundLifetimes, error) {
	var bl BoundLifetimes
	bl.For = optIdent(c, "for")
	var err error
	if bl.Lt, err = expectPunct(c, "<"); err != nil {
		return nil, err
	}
	for !c.PeekPunct(">") {
		attrs, err := parseOuterAttrs(c)
		if err != nil {
			return nil, err
		}
		p, err := parseLifetimeParam(c, attrs)
		if err != nil {
			return nil, err
		}
		bl.Lifetimes.PushValue(p)
		if c.PeekPunct(">") {
			break
		}
		comma, err := expectPunct(c, ",")
		if err != nil {
			return nil, err
		}
		bl.Lifetimes.PushPunct(comma)
	}
	bl.Gt, _ = c.Punct(">")
	bl.Range = bl.For.Range().Join(bl.Gt.Range())
	return &bl, nil
}

// parseWhere parses a where clause.
// The predicate list ends at the end of input, {, ,, ;, =,
// or a : that does not start a ::.
func parseWhere(c *token.Cursor) (*WhereClause, error) {
	w := &WhereClause{Where: optIdent(c, "where")}
	w.Range = w.Where.Range()
	for !endOfPredicates(c) {
		p, err := parseWherePredicate(c)
		if err != nil {
			return nil, err
		}
		w.Predicates.PushValue(p)
		w.Range = w.Range.Join(p.GetRange())
		comma, ok := c.Punct(",")
		if !ok {
			break
		}
		w.Predicates.PushPunct(comma)
		w.Range = w.Range.Join(comma.Range())
	}
	return w, nil
}

func endOfPredicates(c *token.Cursor) bool {
	return c.Eof() || c.PeekGroup(token.Brace) || c.PeekPunct(",") ||
		c.PeekPunct(";") || c.PeekColon() || c.PeekPunct("=")
}

func parseWherePredicate(c *token.Cursor) (WherePredicate, error) {
	if c.Peek().Kind == token.Lifetime && c.PeekPunctN(1, ":") {
		p := &LifetimePredicate{Lifetime: c.Next(), Colon: optPunct(c, ":")}
		p.Range = p.Lifetime.Range.Join(p.Colon.Range())
		// A lifetime predicate's bounds also end at a ::.
		for !(endOfPredicates(c) || c.PeekPunct(":")) {
			if c.Peek().Kind != token.Lifetime {
				return nil, expected(c, "lifetime")
			}
			lt := c.Next()
			p.Bounds.PushValue(lt)
			p.Range = p.Range.Join(lt.Range)
			plus, ok := c.Punct("+")
			if !ok {
				break
			}
			p.Bounds.PushPunct(plus)
		}
		return p, nil
	}

	start := c.Pos()
	var p TypePredicate
	var err error
	if c.PeekIdent("for") {
		if p.Lifetimes, err = parseBoundLifetimes(c); err != nil {
			return nil, err
		}
	}
	if p.Type, err = parseType(c, true); err != nil {
		return nil, err
	}
	if c.PeekPunct("=") && !c.PeekPunct("==") {
		c.Next()
		if _, err := parseType(c, true); err != nil {
			return nil, err
		}
		ts := c.Since(start)
		return &VerbatimPredicate{Range: ts.Range(), Tokens: ts}, nil
	}
	if p.Colon = optColon(c); p.Colon == nil {
		return nil, expected(c, ":")
	}
	for !endOfPredicates(c) {
		b, err := parseBound(c)
		if err != nil {
			return nil, err
		}
		p.Bounds.PushValue(b)
		plus, ok := c.Punct("+")
		if !ok {
			break
		}
		p.Bounds.PushPunct(plus)
	}
	p.Range = c.Since(start).Range()
	return &p, nil
}
