// Package ast is the abstract syntax tree of an impl item
// written with const trait syntax:
// impl const headers and ~const bounds.
//
// Nodes keep the tokens they were parsed from,
// so that re-emitting an unchanged node gives back its input tokens.
// Optional tokens are nil streams when absent.
package ast

import (
	"github.com/eaburns/unconst/loc"
	"github.com/eaburns/unconst/token"
)

// A Node is a node of the AST with location information.
type Node interface {
	GetRange() loc.Range
}

// An Attribute is an outer #[...] or inner #![...] attribute.
type Attribute struct {
	loc.Range
	Inner bool
	// Tokens are the #, the ! if Inner, and the bracket group.
	Tokens token.Stream
}

// An Impl is an impl item.
type Impl struct {
	loc.Range
	// Attrs are the outer attributes followed by
	// the inner attributes at the start of the body.
	Attrs    []Attribute
	Default  token.Stream
	Unsafe   token.Stream
	ImplKw   token.Stream
	Generics Generics
	// Const is the const marker of an impl const item.
	Const    token.Stream
	Trait    *TraitRef
	SelfType Type
	// Brace is the body group; its Stream is the unparsed body.
	Brace token.Tree
	Items []ImplItem
}

// A TraitRef is the Trait for part of an impl header.
type TraitRef struct {
	loc.Range
	// Bang is the ! of a negative impl.
	Bang token.Stream
	Path *Path
	For  token.Stream
}

// Generics is a generic parameter list and its where clause.
type Generics struct {
	loc.Range
	Lt     token.Stream
	Params Punctuated[GenericParam]
	Gt     token.Stream
	Where  *WhereClause
}

// A GenericParam is one of:
// 	*TypeParam
// 	*LifetimeParam
// 	*ConstParam
type GenericParam interface {
	Node
	genericParam()
}

func (*TypeParam) genericParam()     {}
func (*LifetimeParam) genericParam() {}
func (*ConstParam) genericParam()    {}

// A TypeParam is a type parameter: T: Bounds = Default.
type TypeParam struct {
	loc.Range
	Attrs   []Attribute
	Name    token.Tree
	Colon   token.Stream
	Bounds  Punctuated[Bound]
	Eq      token.Stream
	Default Type
}

// A LifetimeParam is a lifetime parameter: 'a: 'b + 'c.
type LifetimeParam struct {
	loc.Range
	Attrs    []Attribute
	Lifetime token.Tree
	Colon    token.Stream
	Bounds   Punctuated[token.Tree]
}

// A ConstParam is a const parameter: const N: usize = 1.
type ConstParam struct {
	loc.Range
	Attrs []Attribute
	Const token.Stream
	Name  token.Tree
	Colon token.Stream
	Type  Type
	Eq    token.Stream
	// Default is the tokens of the default value, if any.
	Default token.Stream
}

// A Bound is one of:
// 	*TraitBound
// 	*LifetimeBound
type Bound interface {
	Node
	bound()
}

func (*TraitBound) bound()    {}
func (*LifetimeBound) bound() {}

// A TraitBound is a trait used as a bound.
type TraitBound struct {
	loc.Range
	// Paren is whether the bound is enclosed in parentheses;
	// if so, the Range is that of the parenthesis group.
	Paren     bool
	Modifier  Modifier
	Lifetimes *BoundLifetimes
	Path      *Path
}

// A LifetimeBound is a lifetime used as a bound.
type LifetimeBound struct {
	loc.Range
	Lifetime token.Tree
}

// A ModifierKind is the kind of a TraitBound modifier.
type ModifierKind int

const (
	// NoModifier is an unmodified bound: Trait.
	NoModifier ModifierKind = iota
	// Maybe is a ?Trait bound.
	Maybe
	// TildeConst is a ~const Trait bound.
	TildeConst
)

// A Modifier is the modifier of a TraitBound.
type Modifier struct {
	Kind ModifierKind
	// Tokens are ? for Maybe or ~ const for TildeConst.
	Tokens token.Stream
}

// BoundLifetimes is a higher-ranked binder: for<'a, 'b>.
type BoundLifetimes struct {
	loc.Range
	For       token.Stream
	Lt        token.Stream
	Lifetimes Punctuated[*LifetimeParam]
	Gt        token.Stream
}

// A WhereClause is a where keyword and its predicates.
type WhereClause struct {
	loc.Range
	Where      token.Stream
	Predicates Punctuated[WherePredicate]
}

// A WherePredicate is one of:
// 	*TypePredicate
// 	*LifetimePredicate
// 	*VerbatimPredicate
type WherePredicate interface {
	Node
	wherePredicate()
}

func (*TypePredicate) wherePredicate()     {}
func (*LifetimePredicate) wherePredicate() {}
func (*VerbatimPredicate) wherePredicate() {}

// A TypePredicate bounds a type: for<'a> T: Bounds.
type TypePredicate struct {
	loc.Range
	Lifetimes *BoundLifetimes
	Type      Type
	Colon     token.Stream
	Bounds    Punctuated[Bound]
}

// A LifetimePredicate bounds a lifetime: 'a: 'b + 'c.
type LifetimePredicate struct {
	loc.Range
	Lifetime token.Tree
	Colon    token.Stream
	Bounds   Punctuated[token.Tree]
}

// A VerbatimPredicate is a predicate kept as tokens,
// for example an equality predicate: T = U.
type VerbatimPredicate struct {
	loc.Range
	Tokens token.Stream
}

// A Path is a possibly-global path: ::a::b<T>::c.
type Path struct {
	loc.Range
	// Leading is the leading :: of a global path.
	Leading  token.Stream
	Segments Punctuated[*PathSegment]
}

// LastName returns the identifier of the last segment.
func (p *Path) LastName() string {
	seg, ok := p.Segments.Last()
	if !ok {
		return ""
	}
	return seg.Name.Text
}

// A PathSegment is an identifier and its arguments.
type PathSegment struct {
	loc.Range
	Name token.Tree
	// Args is nil, *AngleArgs, or *ParenArgs.
	Args PathArgs
}

// PathArgs is one of:
// 	*AngleArgs
// 	*ParenArgs
type PathArgs interface {
	Node
	pathArgs()
}

func (*AngleArgs) pathArgs() {}
func (*ParenArgs) pathArgs() {}

// AngleArgs are generic arguments: <'a, T, N, Item = U>.
type AngleArgs struct {
	loc.Range
	// Colons is the :: of a turbofish.
	Colons token.Stream
	Lt     token.Stream
	Args   Punctuated[GenericArg]
	Gt     token.Stream
}

// ParenArgs are the arguments of a function trait: Fn(A, B) -> C.
type ParenArgs struct {
	loc.Range
	Colons token.Stream
	// Paren is the parenthesis group.
	Paren  token.Tree
	Inputs Punctuated[Type]
	Arrow  token.Stream
	Output Type
}

// A GenericArg is one of:
// 	*LifetimeArg
// 	*TypeArg
// 	*ConstArg
// 	*BindingArg
// 	*ConstraintArg
type GenericArg interface {
	Node
	genericArg()
}

func (*LifetimeArg) genericArg()   {}
func (*TypeArg) genericArg()       {}
func (*ConstArg) genericArg()      {}
func (*BindingArg) genericArg()    {}
func (*ConstraintArg) genericArg() {}

type LifetimeArg struct {
	loc.Range
	Lifetime token.Tree
}

type TypeArg struct {
	loc.Range
	Type Type
}

// A ConstArg is a literal, a negated literal, or a block.
type ConstArg struct {
	loc.Range
	Tokens token.Stream
}

// A BindingArg is an associated type binding: Item = T.
type BindingArg struct {
	loc.Range
	Name token.Tree
	Eq   token.Stream
	Type Type
}

// A ConstraintArg is an associated type bound: Item: Bounds.
type ConstraintArg struct {
	loc.Range
	Name   token.Tree
	Colon  token.Stream
	Bounds Punctuated[Bound]
}

// A Type is one of:
// 	*PathType
// 	*GroupType
// 	*ParenType
// 	*VerbatimType
type Type interface {
	Node
	typ()
}

func (*PathType) typ()     {}
func (*GroupType) typ()    {}
func (*ParenType) typ()    {}
func (*VerbatimType) typ() {}

// A PathType is a path naming a type,
// possibly with a qualified self: <T as Trait>::Assoc.
type PathType struct {
	loc.Range
	// QSelf is the tokens of the <T as Trait> qualifier, if any.
	QSelf token.Stream
	Path  *Path
}

// A GroupType is a type in an invisible-delimiter group,
// as produced by macro substitution.
type GroupType struct {
	loc.Range
	Group token.Tree
	Elem  Type
}

// A ParenType is a parenthesized type: (T).
type ParenType struct {
	loc.Range
	Paren token.Tree
	Elem  Type
}

// A VerbatimType is any other type, kept as tokens.
type VerbatimType struct {
	loc.Range
	Tokens token.Stream
}

// An ImplItem is one of:
// 	*ConstItem
// 	*Method
// 	*TypeItem
// 	*MacroItem
// 	*VerbatimItem
type ImplItem interface {
	Node
	implItem()
}

func (*ConstItem) implItem()    {}
func (*Method) implItem()       {}
func (*TypeItem) implItem()     {}
func (*MacroItem) implItem()    {}
func (*VerbatimItem) implItem() {}

// A ConstItem is an associated constant: const N: T = expr;
type ConstItem struct {
	loc.Range
	Attrs   []Attribute
	Vis     token.Stream
	Default token.Stream
	Const   token.Stream
	Name    token.Tree
	Colon   token.Stream
	Type    Type
	Eq      token.Stream
	// Expr is the tokens of the value expression.
	Expr token.Stream
	Semi token.Stream
}

// A Method is an associated function.
type Method struct {
	loc.Range
	Attrs   []Attribute
	Vis     token.Stream
	Default token.Stream
	Sig     Signature
	// Body is the brace group of the body,
	// or the ; of a declaration without one.
	Body token.Tree
}

// A Signature is the header of a function.
type Signature struct {
	loc.Range
	Const    token.Stream
	Async    token.Stream
	Unsafe   token.Stream
	Abi      token.Stream
	Fn       token.Stream
	Name     token.Tree
	Generics Generics
	// Paren is the argument group; its Stream is unparsed.
	Paren    token.Tree
	Inputs   Punctuated[FnArg]
	Variadic *Variadic
	Arrow    token.Stream
	Output   Type
}

// An FnArg is one of:
// 	*Receiver
// 	*TypedArg
// 	*Variadic
// A *Variadic is only an FnArg when it is not the last,
// unpunctuated argument.
type FnArg interface {
	Node
	fnArg()
}

func (*Receiver) fnArg() {}
func (*TypedArg) fnArg() {}
func (*Variadic) fnArg() {}

// A Receiver is a self argument:
// self, mut self, &self, &'a mut self, or self: T.
type Receiver struct {
	loc.Range
	Attrs []Attribute
	// Ref is the & and optional lifetime of a reference receiver.
	Ref   token.Stream
	Mut   token.Stream
	Self  token.Tree
	Colon token.Stream
	Type  Type
}

// A TypedArg is a pattern and its type.
type TypedArg struct {
	loc.Range
	Attrs []Attribute
	Pat   token.Stream
	Colon token.Stream
	Type  Type
}

// A Variadic is the ... of a C-variadic function.
type Variadic struct {
	loc.Range
	Attrs []Attribute
	Dots  token.Stream
}

// A TypeItem is an associated type: type T<'a> where ... = U;
type TypeItem struct {
	loc.Range
	Attrs    []Attribute
	Vis      token.Stream
	Default  token.Stream
	TypeKw   token.Stream
	Name     token.Tree
	Generics Generics
	Eq       token.Stream
	Type     Type
	Semi     token.Stream
}

// A MacroItem is a macro invocation in item position: m!{...}.
type MacroItem struct {
	loc.Range
	Attrs []Attribute
	Path  *Path
	Bang  token.Stream
	Group token.Tree
	Semi  token.Stream
}

// A VerbatimItem is an impl item kept as tokens,
// including its attributes.
type VerbatimItem struct {
	loc.Range
	Tokens token.Stream
}
