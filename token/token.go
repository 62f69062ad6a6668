// Package token implements Rust token trees:
// lexing source text into nested token streams,
// walking them with a Cursor, and printing them back out.
package token

import "github.com/eaburns/unconst/loc"

// A Kind is the kind of a token tree.
type Kind int

const (
	// Eof is the kind of the zero Tree.
	// A Cursor returns it past the end of its stream.
	Eof Kind = iota
	Ident
	Punct
	Literal
	Lifetime
	Group
)

func (k Kind) String() string {
	switch k {
	case Eof:
		return "end of input"
	case Ident:
		return "identifier"
	case Punct:
		return "punctuation"
	case Literal:
		return "literal"
	case Lifetime:
		return "lifetime"
	case Group:
		return "group"
	default:
		panic("impossible")
	}
}

// A Delim is the delimiter of a group.
type Delim int

const (
	// NoDelim is an invisible delimiter.
	// The lexer never produces it, but streams built by other tools may.
	NoDelim Delim = iota
	Paren
	Bracket
	Brace
)

// Open returns the opening delimiter text.
func (d Delim) Open() string {
	switch d {
	case Paren:
		return "("
	case Bracket:
		return "["
	case Brace:
		return "{"
	default:
		return ""
	}
}

// Close returns the closing delimiter text.
func (d Delim) Close() string {
	switch d {
	case Paren:
		return ")"
	case Bracket:
		return "]"
	case Brace:
		return "}"
	default:
		return ""
	}
}

// Spacing is whether a Punct is immediately followed by another Punct.
type Spacing int

const (
	Alone Spacing = iota
	Joint
)

// A Tree is a single token tree.
// Multi-character operators are sequences of single-character Puncts,
// all but the last with Joint spacing.
type Tree struct {
	loc.Range
	Kind Kind
	// Text is the text of an Ident, Literal, Lifetime, or Punct.
	Text    string
	Spacing Spacing
	Delim   Delim
	// Stream is the contents of a Group.
	Stream Stream
}

// A Stream is a sequence of token trees.
type Stream []Tree

// NewIdent returns a synthesized identifier.
func NewIdent(text string) Tree {
	return Tree{Range: loc.None, Kind: Ident, Text: text}
}

// NewPunct returns a synthesized single-character punct.
func NewPunct(ch byte, spacing Spacing) Tree {
	return Tree{Range: loc.None, Kind: Punct, Text: string(ch), Spacing: spacing}
}

// NewOp returns a synthesized operator, one Punct per character.
func NewOp(op string) Stream {
	var s Stream
	for i := 0; i < len(op); i++ {
		spacing := Joint
		if i == len(op)-1 {
			spacing = Alone
		}
		s = append(s, NewPunct(op[i], spacing))
	}
	return s
}

// NewLiteral returns a synthesized literal.
func NewLiteral(text string) Tree {
	return Tree{Range: loc.None, Kind: Literal, Text: text}
}

// NewString returns a synthesized string literal with the given value.
func NewString(value string) Tree {
	return NewLiteral(Quote(value))
}

// NewLifetime returns a synthesized lifetime. The text includes the '.
func NewLifetime(text string) Tree {
	return Tree{Range: loc.None, Kind: Lifetime, Text: text}
}

// NewGroup returns a synthesized group.
func NewGroup(d Delim, s Stream) Tree {
	return Tree{Range: loc.None, Kind: Group, Delim: d, Stream: s}
}

// WithRange returns a copy of t with its range set to r.
func (t Tree) WithRange(r loc.Range) Tree {
	t.Range = r
	return t
}

// IsIdent returns whether t is the identifier text.
func (t Tree) IsIdent(text string) bool { return t.Kind == Ident && t.Text == text }

// IsPunct returns whether t is the single-character punct ch.
func (t Tree) IsPunct(ch byte) bool {
	return t.Kind == Punct && len(t.Text) == 1 && t.Text[0] == ch
}

// IsGroup returns whether t is a group with delimiter d.
func (t Tree) IsGroup(d Delim) bool { return t.Kind == Group && t.Delim == d }

// IsPlainIdent returns whether t is an identifier that is not a keyword.
func (t Tree) IsPlainIdent() bool { return t.Kind == Ident && !IsKeyword(t.Text) }

// Range returns the range covering the whole stream.
func (s Stream) Range() loc.Range {
	r := loc.None
	for _, t := range s {
		r = r.Join(t.Range)
	}
	return r
}

// Clone returns a deep copy of the stream.
func (s Stream) Clone() Stream {
	if s == nil {
		return nil
	}
	c := make(Stream, len(s))
	for i, t := range s {
		if t.Kind == Group {
			t.Stream = t.Stream.Clone()
		}
		c[i] = t
	}
	return c
}

// Equal returns whether two streams have the same tokens,
// ignoring ranges.
// Spacing is compared only where it matters:
// between a Punct and an immediately following Punct.
func Equal(a, b Stream) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.Kind != y.Kind || x.Text != y.Text || x.Delim != y.Delim {
			return false
		}
		if x.Kind == Punct && i+1 < len(a) && a[i+1].Kind == Punct && x.Spacing != y.Spacing {
			return false
		}
		if x.Kind == Group && !Equal(x.Stream, y.Stream) {
			return false
		}
	}
	return true
}

// The strict and reserved keywords.
// Weak keywords such as union, default, and auto are identifiers.
var keywords = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true, "crate": true,
	"else": true, "enum": true, "extern": true, "false": true, "fn": true,
	"for": true, "if": true, "impl": true, "in": true, "let": true,
	"loop": true, "match": true, "mod": true, "move": true, "mut": true,
	"pub": true, "ref": true, "return": true, "self": true, "Self": true,
	"static": true, "struct": true, "super": true, "trait": true, "true": true,
	"type": true, "unsafe": true, "use": true, "where": true, "while": true,
	"async": true, "await": true, "dyn": true, "abstract": true, "become": true,
	"box": true, "do": true, "final": true, "macro": true, "override": true,
	"priv": true, "typeof": true, "unsized": true, "virtual": true, "yield": true,
	"try": true,
}

// IsKeyword returns whether s is a Rust keyword.
func IsKeyword(s string) bool { return keywords[s] }
