package ast

import "github.com/eaburns/unconst/token"

// orDefault returns s, or the operator op if s is nil.
func orDefault(s token.Stream, op string) token.Stream {
	if s == nil {
		return token.NewOp(op)
	}
	return s
}

func orKeyword(s token.Stream, kw string) token.Stream {
	if s == nil {
		return token.Stream{token.NewIdent(kw)}
	}
	return s
}

// group returns a group like g with the contents s.
func group(g token.Tree, s token.Stream) token.Tree {
	return token.NewGroup(g.Delim, s).WithRange(g.Range)
}

func attrsTokens(attrs []Attribute, inner bool) token.Stream {
	var ts token.Stream
	for _, a := range attrs {
		if a.Inner == inner {
			ts = append(ts, a.Tokens...)
		}
	}
	return ts
}

// Tokens returns the tokens of the impl item.
// The const marker is never emitted.
// The where clause follows the self type,
// and inner attributes begin the body.
func (n *Impl) Tokens() token.Stream {
	var ts token.Stream
	ts = append(ts, attrsTokens(n.Attrs, false)...)
	ts = append(ts, n.Default...)
	ts = append(ts, n.Unsafe...)
	ts = append(ts, orKeyword(n.ImplKw, "impl")...)
	ts = append(ts, n.Generics.Tokens()...)
	if n.Trait != nil {
		ts = append(ts, n.Trait.Bang...)
		ts = append(ts, n.Trait.Path.Tokens()...)
		ts = append(ts, n.Trait.For...)
	}
	ts = append(ts, typeTokens(n.SelfType)...)
	ts = append(ts, n.Generics.Where.Tokens()...)

	body := attrsTokens(n.Attrs, true)
	for _, item := range n.Items {
		body = append(body, ItemTokens(item)...)
	}
	brace := n.Brace
	if brace.Kind != token.Group {
		brace = token.NewGroup(token.Brace, nil)
	}
	return append(ts, group(brace, body))
}

// Tokens returns the tokens of the generic parameter list,
// without the where clause.
// Lifetime parameters come first;
// they must precede type and const parameters in the output
// regardless of the order in which they were declared.
func (g *Generics) Tokens() token.Stream {
	if len(g.Params) == 0 {
		return nil
	}
	ts := append(token.Stream{}, orDefault(g.Lt, "<")...)
	trailingOrEmpty := true
	for _, p := range g.Params {
		if lt, ok := p.Value.(*LifetimeParam); ok {
			ts = append(ts, lt.Tokens()...)
			ts = append(ts, p.Punct...)
			trailingOrEmpty = p.Punct != nil
		}
	}
	for _, p := range g.Params {
		if _, ok := p.Value.(*LifetimeParam); ok {
			continue
		}
		if !trailingOrEmpty {
			ts = append(ts, token.NewOp(",")...)
			trailingOrEmpty = true
		}
		ts = append(ts, paramTokens(p.Value)...)
		ts = append(ts, p.Punct...)
	}
	return append(ts, orDefault(g.Gt, ">")...)
}

func paramTokens(p GenericParam) token.Stream {
	switch p := p.(type) {
	case *TypeParam:
		return p.Tokens()
	case *LifetimeParam:
		return p.Tokens()
	case *ConstParam:
		return p.Tokens()
	default:
		panic("impossible")
	}
}

// Tokens returns the tokens of the type parameter.
// The : is omitted if there are no bounds.
func (p *TypeParam) Tokens() token.Stream {
	ts := attrsTokens(p.Attrs, false)
	ts = append(ts, p.Name)
	if len(p.Bounds) > 0 {
		ts = append(ts, orDefault(p.Colon, ":")...)
		ts = append(ts, boundsTokens(p.Bounds)...)
	}
	if p.Default != nil {
		ts = append(ts, orDefault(p.Eq, "=")...)
		ts = append(ts, typeTokens(p.Default)...)
	}
	return ts
}

func (p *LifetimeParam) Tokens() token.Stream {
	ts := attrsTokens(p.Attrs, false)
	ts = append(ts, p.Lifetime)
	if len(p.Bounds) > 0 {
		ts = append(ts, orDefault(p.Colon, ":")...)
		ts = append(ts, p.Bounds.tokens(func(t token.Tree) token.Stream { return token.Stream{t} })...)
	}
	return ts
}

func (p *ConstParam) Tokens() token.Stream {
	ts := attrsTokens(p.Attrs, false)
	ts = append(ts, orKeyword(p.Const, "const")...)
	ts = append(ts, p.Name)
	ts = append(ts, orDefault(p.Colon, ":")...)
	ts = append(ts, typeTokens(p.Type)...)
	if p.Default != nil {
		ts = append(ts, orDefault(p.Eq, "=")...)
		ts = append(ts, p.Default...)
	}
	return ts
}

func boundsTokens(bs Punctuated[Bound]) token.Stream {
	return bs.tokens(BoundTokens)
}

// BoundTokens returns the tokens of a bound.
func BoundTokens(b Bound) token.Stream {
	switch b := b.(type) {
	case *LifetimeBound:
		return token.Stream{b.Lifetime}
	case *TraitBound:
		var ts token.Stream
		ts = append(ts, b.Modifier.Tokens...)
		ts = append(ts, b.Lifetimes.Tokens()...)
		ts = append(ts, b.Path.Tokens()...)
		if b.Paren {
			return token.Stream{token.NewGroup(token.Paren, ts).WithRange(b.Range)}
		}
		return ts
	default:
		panic("impossible")
	}
}

func (bl *BoundLifetimes) Tokens() token.Stream {
	if bl == nil {
		return nil
	}
	var ts token.Stream
	ts = append(ts, bl.For...)
	ts = append(ts, orDefault(bl.Lt, "<")...)
	ts = append(ts, bl.Lifetimes.tokens((*LifetimeParam).Tokens)...)
	return append(ts, orDefault(bl.Gt, ">")...)
}

// Tokens returns the tokens of the where clause,
// or nil if it has no predicates.
func (w *WhereClause) Tokens() token.Stream {
	if w == nil || len(w.Predicates) == 0 {
		return nil
	}
	ts := append(token.Stream{}, orKeyword(w.Where, "where")...)
	return append(ts, w.Predicates.tokens(predicateTokens)...)
}

func predicateTokens(p WherePredicate) token.Stream {
	switch p := p.(type) {
	case *TypePredicate:
		var ts token.Stream
		ts = append(ts, p.Lifetimes.Tokens()...)
		ts = append(ts, typeTokens(p.Type)...)
		ts = append(ts, orDefault(p.Colon, ":")...)
		return append(ts, boundsTokens(p.Bounds)...)
	case *LifetimePredicate:
		ts := token.Stream{p.Lifetime}
		ts = append(ts, orDefault(p.Colon, ":")...)
		return append(ts, p.Bounds.tokens(func(t token.Tree) token.Stream { return token.Stream{t} })...)
	case *VerbatimPredicate:
		return p.Tokens
	default:
		panic("impossible")
	}
}

// Tokens returns the tokens of the path.
func (p *Path) Tokens() token.Stream {
	ts := append(token.Stream{}, p.Leading...)
	return append(ts, p.Segments.tokens(segmentTokens)...)
}

func segmentTokens(s *PathSegment) token.Stream {
	ts := token.Stream{s.Name}
	switch a := s.Args.(type) {
	case nil:
	case *AngleArgs:
		ts = append(ts, a.Colons...)
		ts = append(ts, orDefault(a.Lt, "<")...)
		ts = append(ts, a.Args.tokens(argTokens)...)
		ts = append(ts, orDefault(a.Gt, ">")...)
	case *ParenArgs:
		ts = append(ts, a.Colons...)
		ts = append(ts, group(a.Paren, a.Inputs.tokens(typeTokens)))
		if a.Output != nil {
			ts = append(ts, orDefault(a.Arrow, "->")...)
			ts = append(ts, typeTokens(a.Output)...)
		}
	default:
		panic("impossible")
	}
	return ts
}

func argTokens(a GenericArg) token.Stream {
	switch a := a.(type) {
	case *LifetimeArg:
		return token.Stream{a.Lifetime}
	case *TypeArg:
		return typeTokens(a.Type)
	case *ConstArg:
		return a.Tokens
	case *BindingArg:
		ts := token.Stream{a.Name}
		ts = append(ts, orDefault(a.Eq, "=")...)
		return append(ts, typeTokens(a.Type)...)
	case *ConstraintArg:
		ts := token.Stream{a.Name}
		ts = append(ts, orDefault(a.Colon, ":")...)
		return append(ts, boundsTokens(a.Bounds)...)
	default:
		panic("impossible")
	}
}

func typeTokens(t Type) token.Stream {
	switch t := t.(type) {
	case nil:
		return nil
	case *PathType:
		ts := append(token.Stream{}, t.QSelf...)
		return append(ts, t.Path.Tokens()...)
	case *GroupType:
		return token.Stream{group(t.Group, typeTokens(t.Elem))}
	case *ParenType:
		return token.Stream{group(t.Paren, typeTokens(t.Elem))}
	case *VerbatimType:
		return t.Tokens
	default:
		panic("impossible")
	}
}

// ItemTokens returns the tokens of an impl item.
func ItemTokens(item ImplItem) token.Stream {
	switch n := item.(type) {
	case *ConstItem:
		ts := attrsTokens(n.Attrs, false)
		ts = append(ts, n.Vis...)
		ts = append(ts, n.Default...)
		ts = append(ts, n.Const...)
		ts = append(ts, n.Name)
		ts = append(ts, orDefault(n.Colon, ":")...)
		ts = append(ts, typeTokens(n.Type)...)
		ts = append(ts, orDefault(n.Eq, "=")...)
		ts = append(ts, n.Expr...)
		return append(ts, orDefault(n.Semi, ";")...)
	case *Method:
		ts := attrsTokens(n.Attrs, false)
		ts = append(ts, n.Vis...)
		ts = append(ts, n.Default...)
		ts = append(ts, n.Sig.Tokens()...)
		return append(ts, n.Body)
	case *TypeItem:
		ts := attrsTokens(n.Attrs, false)
		ts = append(ts, n.Vis...)
		ts = append(ts, n.Default...)
		ts = append(ts, n.TypeKw...)
		ts = append(ts, n.Name)
		ts = append(ts, n.Generics.Tokens()...)
		ts = append(ts, n.Generics.Where.Tokens()...)
		ts = append(ts, orDefault(n.Eq, "=")...)
		ts = append(ts, typeTokens(n.Type)...)
		return append(ts, orDefault(n.Semi, ";")...)
	case *MacroItem:
		ts := attrsTokens(n.Attrs, false)
		ts = append(ts, n.Path.Tokens()...)
		ts = append(ts, orDefault(n.Bang, "!")...)
		ts = append(ts, n.Group)
		return append(ts, n.Semi...)
	case *VerbatimItem:
		return n.Tokens
	default:
		panic("impossible")
	}
}

// Tokens returns the tokens of the signature, including its where clause.
func (s *Signature) Tokens() token.Stream {
	var ts token.Stream
	ts = append(ts, s.Const...)
	ts = append(ts, s.Async...)
	ts = append(ts, s.Unsafe...)
	ts = append(ts, s.Abi...)
	ts = append(ts, s.Fn...)
	ts = append(ts, s.Name)
	ts = append(ts, s.Generics.Tokens()...)

	args := s.Inputs.tokens(fnArgTokens)
	if s.Variadic != nil {
		if len(s.Inputs) > 0 && !s.Inputs.Trailing() {
			args = append(args, token.NewOp(",")...)
		}
		args = append(args, fnArgTokens(s.Variadic)...)
	}
	paren := s.Paren
	if paren.Kind != token.Group {
		paren = token.NewGroup(token.Paren, nil)
	}
	ts = append(ts, group(paren, args))

	if s.Output != nil {
		ts = append(ts, orDefault(s.Arrow, "->")...)
		ts = append(ts, typeTokens(s.Output)...)
	}
	return append(ts, s.Generics.Where.Tokens()...)
}

func fnArgTokens(a FnArg) token.Stream {
	switch a := a.(type) {
	case *Receiver:
		ts := attrsTokens(a.Attrs, false)
		ts = append(ts, a.Ref...)
		ts = append(ts, a.Mut...)
		ts = append(ts, a.Self)
		if a.Type != nil {
			ts = append(ts, orDefault(a.Colon, ":")...)
			ts = append(ts, typeTokens(a.Type)...)
		}
		return ts
	case *TypedArg:
		ts := attrsTokens(a.Attrs, false)
		ts = append(ts, a.Pat...)
		ts = append(ts, orDefault(a.Colon, ":")...)
		return append(ts, typeTokens(a.Type)...)
	case *Variadic:
		ts := attrsTokens(a.Attrs, false)
		return append(ts, orDefault(a.Dots, "...")...)
	default:
		panic("impossible")
	}
}
