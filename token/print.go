package token

import "strings"

func (t Tree) String() string {
	var s strings.Builder
	buildTreeString(t, &s)
	return s.String()
}

// String returns the tokens separated by single spaces,
// except that Joint puncts are glued to the next punct.
func (s Stream) String() string {
	var b strings.Builder
	buildStreamString(s, &b)
	return b.String()
}

func buildStreamString(ts Stream, s *strings.Builder) {
	for i, t := range ts {
		if i > 0 && !(ts[i-1].Kind == Punct && ts[i-1].Spacing == Joint && t.Kind == Punct) {
			s.WriteRune(' ')
		}
		buildTreeString(t, s)
	}
}

func buildTreeString(t Tree, s *strings.Builder) {
	if t.Kind != Group {
		s.WriteString(t.Text)
		return
	}
	s.WriteString(t.Delim.Open())
	if len(t.Stream) > 0 {
		s.WriteRune(' ')
		buildStreamString(t.Stream, s)
		s.WriteRune(' ')
	}
	s.WriteString(t.Delim.Close())
}

// Format returns the stream as Rust source text laid out for reading.
// Only whitespace differs from String:
// lexing the result gives back an Equal stream.
// Blocks containing items or statements are broken over lines,
// each line after the first prefixed by indent and nesting.
func Format(ts Stream, indent string) string {
	f := formatter{indent: indent}
	f.stream(ts, 0)
	return f.String()
}

type formatter struct {
	strings.Builder
	indent string
}

func (f *formatter) newline(depth int) {
	f.WriteRune('\n')
	f.WriteString(f.indent)
	f.WriteString(strings.Repeat("    ", depth))
}

func (f *formatter) stream(ts Stream, depth int) {
	for i, t := range ts {
		if i > 0 && space(ts, i) {
			f.WriteRune(' ')
		}
		f.tree(t, depth)
	}
}

func (f *formatter) tree(t Tree, depth int) {
	if t.Kind != Group {
		f.WriteString(t.Text)
		return
	}
	if t.Delim == Brace && multiline(t.Stream) {
		f.WriteString("{")
		f.block(t.Stream, depth+1)
		f.newline(depth)
		f.WriteString("}")
		return
	}
	f.WriteString(t.Delim.Open())
	if t.Delim == Brace && len(t.Stream) > 0 {
		f.WriteRune(' ')
	}
	f.stream(t.Stream, depth)
	if t.Delim == Brace && len(t.Stream) > 0 {
		f.WriteRune(' ')
	}
	f.WriteString(t.Delim.Close())
}

// block writes the contents of a multi-line brace group,
// one statement or item per line.
func (f *formatter) block(ts Stream, depth int) {
	start := 0
	for i := range ts {
		if i < len(ts)-1 && !lineEnd(ts, i) {
			continue
		}
		f.newline(depth)
		f.stream(ts[start:i+1], depth)
		start = i + 1
	}
}

func multiline(ts Stream) bool {
	for i, t := range ts {
		if t.IsPunct(';') || t.IsGroup(Brace) || t.IsPunct('#') && i == 0 {
			return true
		}
	}
	return false
}

// lineEnd returns whether a line break follows ts[i] in a block.
func lineEnd(ts Stream, i int) bool {
	t, next := ts[i], ts[i+1]
	switch {
	case t.IsPunct(';'):
		return true
	case t.IsGroup(Bracket):
		// An attribute: #[...] or #![...].
		return i > 0 && (ts[i-1].IsPunct('#') || ts[i-1].IsPunct('!') && i > 1 && ts[i-2].IsPunct('#'))
	case t.IsGroup(Brace):
		return !(next.Kind == Punct && strings.ContainsAny(next.Text, ".?;,)") ||
			next.IsIdent("else") || next.IsIdent("as"))
	case t.IsPunct(','):
		// Match arms in a block.
		return i > 0 && ts[i-1].IsGroup(Brace)
	}
	return false
}

// space returns whether a space goes between ts[i-1] and ts[i].
func space(ts Stream, i int) bool {
	prev, t := ts[i-1], ts[i]
	if prev.Kind == Punct && t.Kind == Punct {
		// Gluing two Alone puncts would lex them Joint.
		return prev.Spacing == Alone
	}
	if prev.Kind == Punct && prev.Spacing == Joint {
		return false
	}
	switch {
	case t.IsPunct(',') || t.IsPunct(';') || t.IsPunct(':') || t.IsPunct('.') || t.IsPunct('?'):
		return false
	case t.IsPunct('>'):
		return false
	case t.IsPunct('<'):
		return prev.Kind != Ident
	case t.IsPunct('!'):
		// A macro call.
		return !(prev.Kind == Ident && i+1 < len(ts) && ts[i+1].Kind == Group)
	case t.Kind == Group && t.Delim != Brace:
		return !(prev.Kind == Ident && !IsKeyword(prev.Text) ||
			prev.Kind == Group ||
			prev.IsIdent("fn") || prev.IsIdent("self") || prev.IsIdent("Self") ||
			prev.IsPunct('!') || prev.IsPunct('#') || prev.IsPunct('&'))
	}
	switch {
	case prev.IsPunct('.') && t.Kind == Literal && i > 1 && ts[i-2].Kind == Literal:
		// 0 . 1 is not 0.1.
		return true
	case prev.IsPunct('<') || prev.IsPunct('.') || prev.IsPunct('&') || prev.IsPunct('#'):
		return false
	case prev.IsPunct(':'):
		// The second colon of a path separator.
		return !(i > 1 && ts[i-2].IsPunct(':') && ts[i-2].Spacing == Joint)
	case prev.IsPunct('!') || prev.IsPunct('?') || prev.IsPunct('~') || prev.IsPunct('*') || prev.IsPunct('-'):
		return !unary(ts, i-1)
	}
	return true
}

// unary returns whether the punct at ts[i] is in prefix position.
func unary(ts Stream, i int) bool {
	if i == 0 {
		return true
	}
	prev := ts[i-1]
	switch prev.Kind {
	case Literal, Lifetime, Group:
		return false
	case Ident:
		return IsKeyword(prev.Text) && prev.Text != "self" && prev.Text != "Self"
	}
	return true
}
