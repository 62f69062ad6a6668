package ast

import "github.com/eaburns/unconst/token"

// parseImplItem parses an item of an impl body.
// Items that are valid but not modeled,
// like a const without a value or a type with bounds,
// are kept verbatim.
func parseImplItem(c *token.Cursor) (ImplItem, error) {
	begin := c.Pos()
	attrs, err := parseOuterAttrs(c)
	if err != nil {
		return nil, err
	}
	ahead := c.Fork()
	vis := parseVis(ahead)
	var dflt token.Stream
	if ahead.PeekIdent("default") && !ahead.PeekPunctN(1, "!") {
		dflt = optIdent(ahead, "default")
	}
	switch {
	case peekSignature(ahead):
		c.Advance(ahead)
		return parseMethod(c, attrs, vis, dflt)
	case ahead.PeekIdent("const"):
		c.Advance(ahead)
		return parseConstItem(c, begin, attrs, vis, dflt)
	case ahead.PeekIdent("type"):
		c.Advance(ahead)
		return parseTypeItem(c, begin, attrs, vis, dflt)
	case vis == nil && dflt == nil && isPathStart(ahead):
		return parseMacroItem(c, attrs)
	}
	return nil, errorf(ahead.Span(), "expected impl item")
}

// peekSignature returns whether the cursor is at a function signature:
// const, async, unsafe, and extern "abi", each optional, then fn.
func peekSignature(c *token.Cursor) bool {
	f := c.Fork()
	optIdent(f, "const")
	optIdent(f, "async")
	optIdent(f, "unsafe")
	if optIdent(f, "extern") != nil && f.Peek().Kind == token.Literal {
		f.Next()
	}
	return f.PeekIdent("fn")
}

func parseMethod(c *token.Cursor, attrs []Attribute, vis, dflt token.Stream) (*Method, error) {
	m := &Method{Attrs: attrs, Vis: vis, Default: dflt}
	sig, err := parseSignature(c)
	if err != nil {
		return nil, err
	}
	m.Sig = *sig
	switch {
	case c.PeekPunct(";"):
		m.Body = c.Next()
	case c.PeekGroup(token.Brace):
		m.Body = c.Next()
	default:
		return nil, expected(c, "{ or ;")
	}
	m.Range = attrRange(attrs).Join(vis.Range()).Join(dflt.Range()).Join(sig.Range).Join(m.Body.Range)
	return m, nil
}

func parseSignature(c *token.Cursor) (*Signature, error) {
	var s Signature
	start := c.Pos()
	s.Const = optIdent(c, "const")
	s.Async = optIdent(c, "async")
	s.Unsafe = optIdent(c, "unsafe")
	if c.PeekIdent("extern") {
		abiStart := c.Pos()
		c.Next()
		if c.Peek().Kind == token.Literal {
			c.Next()
		}
		s.Abi = c.Since(abiStart)
	}
	if s.Fn = optIdent(c, "fn"); s.Fn == nil {
		return nil, expected(c, "fn")
	}
	if !c.Peek().IsPlainIdent() {
		return nil, expected(c, "identifier")
	}
	s.Name = c.Next()
	var err error
	if s.Generics, err = parseGenerics(c); err != nil {
		return nil, err
	}
	if !c.PeekGroup(token.Paren) {
		return nil, expected(c, "(")
	}
	s.Paren = c.Next()
	if s.Inputs, err = parseFnArgs(token.Inside(s.Paren)); err != nil {
		return nil, err
	}
	if last, ok := s.Inputs.Last(); ok && !s.Inputs.Trailing() {
		if v, ok := last.(*Variadic); ok {
			s.Variadic = v
			s.Inputs = s.Inputs[:len(s.Inputs)-1]
		}
	}
	if arrow, ok := c.Punct("->"); ok {
		s.Arrow = arrow
		if s.Output, err = parseType(c, true); err != nil {
			return nil, err
		}
	}
	if c.PeekIdent("where") {
		if s.Generics.Where, err = parseWhere(c); err != nil {
			return nil, err
		}
	}
	s.Range = c.Since(start).Range()
	return &s, nil
}

// parseFnArgs parses the contents of a function's argument group.
// A self receiver may only be the first argument.
// A bare ... is returned as a *Variadic.
func parseFnArgs(c *token.Cursor) (Punctuated[FnArg], error) {
	var args Punctuated[FnArg]
	hasReceiver := false
	for !c.Eof() {
		attrs, err := parseOuterAttrs(c)
		if err != nil {
			return nil, err
		}
		var arg FnArg
		if dots, ok := c.Punct("..."); ok {
			arg = &Variadic{Range: attrRange(attrs).Join(dots.Range()), Attrs: attrs, Dots: dots}
		} else if r, ok := parseReceiver(c, attrs); ok {
			switch {
			case hasReceiver:
				return nil, errorf(r.Self.Range, "unexpected second method receiver")
			case len(args) > 0:
				return nil, errorf(r.Self.Range, "unexpected method receiver")
			}
			if r.Colon != nil {
				if r.Type, err = parseType(c, true); err != nil {
					return nil, err
				}
				r.Range = r.Range.Join(r.Type.GetRange())
			}
			hasReceiver = true
			arg = r
		} else if arg, err = parseTypedArg(c, attrs); err != nil {
			return nil, err
		}
		args.PushValue(arg)
		if c.Eof() {
			break
		}
		comma, err := expectPunct(c, ",")
		if err != nil {
			return nil, err
		}
		args.PushPunct(comma)
	}
	return args, nil
}

// parseReceiver parses a self receiver up to its optional type,
// returning false without moving the cursor if there is none.
func parseReceiver(c *token.Cursor, attrs []Attribute) (*Receiver, bool) {
	f := c.Fork()
	r := &Receiver{Attrs: attrs}
	if f.PeekPunct("&") && !f.PeekPunct("&&") {
		pos := f.Pos()
		f.Next()
		if f.Peek().Kind == token.Lifetime {
			f.Next()
		}
		r.Ref = f.Since(pos)
	}
	r.Mut = optIdent(f, "mut")
	self, ok := f.Ident("self")
	if !ok || f.PeekPunct("::") {
		return nil, false
	}
	r.Self = self
	if r.Ref == nil {
		r.Colon = optColon(f)
	}
	c.Advance(f)
	r.Range = attrRange(attrs).Join(r.Ref.Range()).Join(r.Mut.Range()).Join(self.Range).Join(r.Colon.Range())
	return r, true
}

func parseTypedArg(c *token.Cursor, attrs []Attribute) (*TypedArg, error) {
	a := &TypedArg{Attrs: attrs}
	start := c.Pos()
	for !c.Eof() && !c.PeekColon() && !c.PeekPunct(",") {
		c.Next()
	}
	if a.Pat = c.Since(start); len(a.Pat) == 0 {
		return nil, expected(c, "pattern")
	}
	if a.Colon = optColon(c); a.Colon == nil {
		return nil, expected(c, ":")
	}
	if dots, ok := c.Punct("..."); ok {
		a.Type = &VerbatimType{Range: dots.Range(), Tokens: dots}
	} else {
		var err error
		if a.Type, err = parseType(c, true); err != nil {
			return nil, err
		}
	}
	a.Range = attrRange(attrs).Join(c.Since(start).Range())
	return a, nil
}

func parseConstItem(c *token.Cursor, begin int, attrs []Attribute, vis, dflt token.Stream) (ImplItem, error) {
	item := &ConstItem{Attrs: attrs, Vis: vis, Default: dflt, Const: optIdent(c, "const")}
	if next := c.Peek(); !next.IsPlainIdent() {
		return nil, expected(c, "identifier or _")
	}
	item.Name = c.Next()
	var err error
	if item.Colon, err = expectPunct(c, ":"); err != nil {
		return nil, err
	}
	if item.Type, err = parseType(c, true); err != nil {
		return nil, err
	}
	if !c.PeekPunct("=") {
		if _, err := expectPunct(c, ";"); err != nil {
			return nil, err
		}
		return verbatimItem(c, begin), nil
	}
	item.Eq, _ = c.Punct("=")
	start := c.Pos()
	for !c.Eof() && !c.PeekPunct(";") {
		c.Next()
	}
	if item.Expr = c.Since(start); len(item.Expr) == 0 {
		return nil, expected(c, "expression")
	}
	if item.Semi, err = expectPunct(c, ";"); err != nil {
		return nil, err
	}
	item.Range = c.Since(begin).Range()
	return item, nil
}

// parseTypeItem parses an associated type.
// A type with bounds, without a value,
// or with a where clause after its value is kept verbatim.
func parseTypeItem(c *token.Cursor, begin int, attrs []Attribute, vis, dflt token.Stream) (ImplItem, error) {
	item := &TypeItem{Attrs: attrs, Vis: vis, Default: dflt, TypeKw: optIdent(c, "type")}
	if !c.Peek().IsPlainIdent() {
		return nil, expected(c, "identifier")
	}
	item.Name = c.Next()
	var err error
	if item.Generics, err = parseGenerics(c); err != nil {
		return nil, err
	}
	colon := optColon(c)
	if colon != nil {
		for !endOfTypeItemBounds(c) {
			if _, err := parseBound(c); err != nil {
				return nil, err
			}
			if endOfTypeItemBounds(c) {
				break
			}
			if _, err := expectPunct(c, "+"); err != nil {
				return nil, err
			}
		}
	}
	if c.PeekIdent("where") {
		if item.Generics.Where, err = parseWhere(c); err != nil {
			return nil, err
		}
	}
	if c.PeekPunct("=") {
		item.Eq, _ = c.Punct("=")
		if item.Type, err = parseType(c, true); err != nil {
			return nil, err
		}
	}
	var trailing *WhereClause
	if item.Type != nil && c.PeekIdent("where") {
		if trailing, err = parseWhere(c); err != nil {
			return nil, err
		}
	}
	if item.Semi, err = expectPunct(c, ";"); err != nil {
		return nil, err
	}
	if colon != nil || item.Type == nil || trailing != nil {
		return verbatimItem(c, begin), nil
	}
	item.Range = c.Since(begin).Range()
	return item, nil
}

func endOfTypeItemBounds(c *token.Cursor) bool {
	return c.PeekIdent("where") || c.PeekPunct("=") || c.PeekPunct(";") || c.Eof()
}

// parseMacroItem parses a macro invocation: path!(...); path![...]; or path!{...}.
func parseMacroItem(c *token.Cursor, attrs []Attribute) (*MacroItem, error) {
	m := &MacroItem{Attrs: attrs}
	var err error
	if m.Path, err = parsePath(c); err != nil {
		return nil, err
	}
	if m.Bang, err = expectPunct(c, "!"); err != nil {
		return nil, err
	}
	if c.Peek().Kind != token.Group {
		return nil, expected(c, "( or [ or {")
	}
	m.Group = c.Next()
	m.Range = attrRange(attrs).Join(m.Path.Range).Join(m.Group.Range)
	if !m.Group.IsGroup(token.Brace) {
		if m.Semi, err = expectPunct(c, ";"); err != nil {
			return nil, err
		}
		m.Range = m.Range.Join(m.Semi.Range())
	}
	return m, nil
}

func verbatimItem(c *token.Cursor, begin int) *VerbatimItem {
	ts := c.Since(begin)
	return &VerbatimItem{Range: ts.Range(), Tokens: ts}
}
