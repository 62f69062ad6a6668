package ast

import "github.com/eaburns/unconst/token"

// parseType parses a type.
// Only path types, including qualified ones, are given structure;
// they are what an impl header must distinguish.
// Other types are kept as verbatim tokens.
//
// If plus is false, a trait object type like dyn A + B
// ends before the +, as it must after & or *.
func parseType(c *token.Cursor, plus bool) (Type, error) {
	start := c.Pos()
	next := c.Peek()
	switch {
	case next.IsGroup(token.NoDelim):
		g := c.Next()
		inside := token.Inside(g)
		elem, err := parseType(inside, true)
		if err != nil {
			return nil, err
		}
		if !inside.Eof() {
			return nil, errorf(inside.Span(), "unexpected token")
		}
		return &GroupType{Range: g.Range, Group: g, Elem: elem}, nil

	case next.IsGroup(token.Paren):
		g := c.Next()
		inside := token.Inside(g)
		if !inside.Eof() {
			if elem, err := parseType(inside, true); err == nil && inside.Eof() {
				return &ParenType{Range: g.Range, Paren: g, Elem: elem}, nil
			}
		}
		// A tuple, the unit type, or a trait object (Trait) + Send.
		if plus && c.PeekPunct("+") && !c.PeekPunct("+=") {
			if err := parseObjectBounds(c); err != nil {
				return nil, err
			}
		}
		return verbatimType(c, start), nil

	case next.IsGroup(token.Bracket):
		// A slice or array.
		c.Next()
		return verbatimType(c, start), nil

	case next.IsPunct('&'):
		for c.PeekPunct("&") {
			c.Next()
		}
		if c.Peek().Kind == token.Lifetime {
			c.Next()
		}
		optIdent(c, "mut")
		if _, err := parseType(c, false); err != nil {
			return nil, err
		}
		return verbatimType(c, start), nil

	case next.IsPunct('*'):
		c.Next()
		if optIdent(c, "const") == nil && optIdent(c, "mut") == nil {
			return nil, expected(c, "const or mut")
		}
		if _, err := parseType(c, false); err != nil {
			return nil, err
		}
		return verbatimType(c, start), nil

	case next.IsPunct('!') || next.IsIdent("_"):
		c.Next()
		return verbatimType(c, start), nil

	case next.IsIdent("fn") || next.IsIdent("unsafe") || next.IsIdent("extern"):
		if err := parseFnPtr(c); err != nil {
			return nil, err
		}
		return verbatimType(c, start), nil

	case next.IsIdent("for"):
		if _, err := parseBoundLifetimes(c); err != nil {
			return nil, err
		}
		if c.PeekIdent("fn") || c.PeekIdent("unsafe") || c.PeekIdent("extern") {
			if err := parseFnPtr(c); err != nil {
				return nil, err
			}
			return verbatimType(c, start), nil
		}
		if _, err := parsePath(c); err != nil {
			return nil, err
		}
		if plus {
			if err := parseObjectBounds(c); err != nil {
				return nil, err
			}
		}
		return verbatimType(c, start), nil

	case next.IsIdent("dyn") || next.IsIdent("impl"):
		c.Next()
		for {
			if _, err := parseBound(c); err != nil {
				return nil, err
			}
			if !plus || !c.PeekPunct("+") || c.PeekPunct("+=") {
				break
			}
			c.Next()
			if !startsBound(c) {
				break
			}
		}
		return verbatimType(c, start), nil

	case next.IsPunct('<'):
		return parseQualifiedPath(c)

	case isPathStart(c):
		p, err := parsePath(c)
		if err != nil {
			return nil, err
		}
		last, _ := p.Segments.Last()
		if last.Args == nil && c.PeekGroup(token.Paren) {
			if last.Args, err = parseParenArgs(c); err != nil {
				return nil, err
			}
			last.Range = last.Range.Join(last.Args.GetRange())
			p.Range = p.Range.Join(last.Range)
		}
		switch {
		case c.PeekPunct("!") && !c.PeekPunct("!=") && c.Peek2().Kind == token.Group:
			// A macro invocation in type position.
			c.Next()
			c.Next()
			return verbatimType(c, start), nil
		case plus && c.PeekPunct("+") && !c.PeekPunct("+="):
			// A bare trait object: Trait + Send.
			if err := parseObjectBounds(c); err != nil {
				return nil, err
			}
			return verbatimType(c, start), nil
		}
		return &PathType{Range: p.Range, Path: p}, nil
	}
	return nil, expected(c, "type")
}

func verbatimType(c *token.Cursor, start int) *VerbatimType {
	ts := c.Since(start)
	return &VerbatimType{Range: ts.Range(), Tokens: ts}
}

// parseObjectBounds parses the + Bound + Bound... following
// the first bound of a trait object type.
func parseObjectBounds(c *token.Cursor) error {
	for c.PeekPunct("+") && !c.PeekPunct("+=") {
		c.Next()
		if !startsBound(c) {
			return nil
		}
		if _, err := parseBound(c); err != nil {
			return err
		}
	}
	return nil
}

func startsBound(c *token.Cursor) bool {
	next := c.Peek()
	return next.Kind == token.Lifetime || next.IsGroup(token.Paren) ||
		c.PeekPunct("?") || c.PeekPunct("~") || next.IsIdent("for") || isPathStart(c)
}

// parseFnPtr parses a function pointer type after any for<...> binder:
// unsafe extern "C" fn(A, B) -> C.
func parseFnPtr(c *token.Cursor) error {
	optIdent(c, "unsafe")
	if optIdent(c, "extern") != nil && c.Peek().Kind == token.Literal {
		c.Next()
	}
	if optIdent(c, "fn") == nil {
		return expected(c, "fn")
	}
	if !c.PeekGroup(token.Paren) {
		return expected(c, "(")
	}
	c.Next()
	if _, ok := c.Punct("->"); ok {
		if _, err := parseType(c, false); err != nil {
			return err
		}
	}
	return nil
}

// parseQualifiedPath parses a path with a qualified self type:
// <T as Trait>::Assoc or <T>::Assoc.
func parseQualifiedPath(c *token.Cursor) (*PathType, error) {
	start := c.Pos()
	c.Next()
	if _, err := parseType(c, true); err != nil {
		return nil, err
	}
	if optIdent(c, "as") != nil {
		if _, err := parsePath(c); err != nil {
			return nil, err
		}
	}
	if _, err := expectPunct(c, ">"); err != nil {
		return nil, err
	}
	qself := c.Since(start)
	if !c.PeekPunct("::") {
		return nil, expected(c, "::")
	}
	p, err := parsePath(c)
	if err != nil {
		return nil, err
	}
	return &PathType{Range: qself.Range().Join(p.Range), QSelf: qself, Path: p}, nil
}

func isPathStart(c *token.Cursor) bool {
	return c.PeekPunct("::") || isSegmentName(c.Peek())
}

func isSegmentName(t token.Tree) bool {
	return t.IsPlainIdent() ||
		t.IsIdent("self") || t.IsIdent("Self") || t.IsIdent("super") || t.IsIdent("crate")
}

// parsePath parses a path with optional generic arguments on each segment:
// ::a::b<T>::c::<U>.
// Parenthesized arguments are left for the caller,
// since only some contexts allow them.
func parsePath(c *token.Cursor) (*Path, error) {
	var p Path
	p.Leading = optPunct(c, "::")
	p.Range = p.Leading.Range()
	for {
		if !isSegmentName(c.Peek()) {
			return nil, expected(c, "identifier")
		}
		seg := &PathSegment{Name: c.Next()}
		seg.Range = seg.Name.Range
		if c.PeekPunct("<") && !c.PeekPunct("<=") && !c.PeekPunct("<-") ||
			c.PeekPunct("::") && c.PeekPunctN(2, "<") {
			args, err := parseAngleArgs(c)
			if err != nil {
				return nil, err
			}
			seg.Args = args
			seg.Range = seg.Range.Join(args.Range)
		}
		p.Segments.PushValue(seg)
		p.Range = p.Range.Join(seg.Range)
		if !c.PeekPunct("::") || !isSegmentName(c.PeekN(2)) {
			return &p, nil
		}
		colons, _ := c.Punct("::")
		p.Segments.PushPunct(colons)
	}
}

// parseAngleArgs parses generic arguments, with or without a turbofish.
func parseAngleArgs(c *token.Cursor) (*AngleArgs, error) {
	var a AngleArgs
	a.Colons = optPunct(c, "::")
	a.Lt, _ = c.Punct("<")
	for !c.PeekPunct(">") {
		arg, err := parseGenericArg(c)
		if err != nil {
			return nil, err
		}
		a.Args.PushValue(arg)
		if c.PeekPunct(">") {
			break
		}
		comma, err := expectPunct(c, ",")
		if err != nil {
			return nil, err
		}
		a.Args.PushPunct(comma)
	}
	a.Gt, _ = c.Punct(">")
	a.Range = a.Colons.Range().Join(a.Lt.Range()).Join(a.Gt.Range())
	return &a, nil
}

func parseGenericArg(c *token.Cursor) (GenericArg, error) {
	start := c.Pos()
	switch next := c.Peek(); {
	case next.Kind == token.Lifetime:
		c.Next()
		return &LifetimeArg{Range: next.Range, Lifetime: next}, nil

	case isConstValue(next) || next.IsPunct('-') && c.Peek2().Kind == token.Literal:
		c.Next()
		if next.IsPunct('-') {
			c.Next()
		}
		ts := c.Since(start)
		return &ConstArg{Range: ts.Range(), Tokens: ts}, nil

	case next.IsPlainIdent() && c.PeekPunctN(1, "=") && !c.PeekPunctN(1, "=="):
		b := &BindingArg{Name: c.Next(), Eq: optPunct(c, "=")}
		var err error
		if b.Type, err = parseType(c, true); err != nil {
			return nil, err
		}
		b.Range = next.Range.Join(b.Type.GetRange())
		return b, nil

	case next.IsPlainIdent() && c.PeekPunctN(1, ":") && !c.PeekPunctN(1, "::"):
		a := &ConstraintArg{Name: c.Next(), Colon: optPunct(c, ":")}
		for !c.PeekPunct(",") && !c.PeekPunct(">") && !c.Eof() {
			b, err := parseBound(c)
			if err != nil {
				return nil, err
			}
			a.Bounds.PushValue(b)
			plus, ok := c.Punct("+")
			if !ok {
				break
			}
			a.Bounds.PushPunct(plus)
		}
		a.Range = c.Since(start).Range()
		return a, nil
	}
	t, err := parseType(c, true)
	if err != nil {
		return nil, err
	}
	return &TypeArg{Range: t.GetRange(), Type: t}, nil
}

// parseParenArgs parses function trait arguments: (A, B) -> C.
func parseParenArgs(c *token.Cursor) (*ParenArgs, error) {
	var a ParenArgs
	a.Colons = optPunct(c, "::")
	if !c.PeekGroup(token.Paren) {
		return nil, expected(c, "(")
	}
	a.Paren = c.Next()
	inside := token.Inside(a.Paren)
	for !inside.Eof() {
		t, err := parseType(inside, true)
		if err != nil {
			return nil, err
		}
		a.Inputs.PushValue(t)
		if inside.Eof() {
			break
		}
		comma, err := expectPunct(inside, ",")
		if err != nil {
			return nil, err
		}
		a.Inputs.PushPunct(comma)
	}
	a.Range = a.Colons.Range().Join(a.Paren.Range)
	if arrow, ok := c.Punct("->"); ok {
		a.Arrow = arrow
		var err error
		if a.Output, err = parseType(c, false); err != nil {
			return nil, err
		}
		a.Range = a.Range.Join(a.Output.GetRange())
	}
	return &a, nil
}
