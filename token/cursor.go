package token

import "github.com/eaburns/unconst/loc"

// A Cursor is a position within a token stream.
// Cursors are cheap to copy; Fork and Advance
// implement speculative parsing.
type Cursor struct {
	s Stream
	i int
	// end is the range reported at the end of the stream:
	// the closing delimiter of a group, or the last token.
	end loc.Range
}

// NewCursor returns a cursor at the start of s.
func NewCursor(s Stream) *Cursor {
	end := loc.None
	if len(s) > 0 {
		last := s[len(s)-1].Range
		end = loc.Range{last[1], last[1]}
	}
	return &Cursor{s: s, end: end}
}

// Inside returns a cursor at the start of the contents of group g.
func Inside(g Tree) *Cursor {
	end := loc.None
	if !g.IsNone() {
		end = loc.Range{g.Range[1] - len(g.Delim.Close()), g.Range[1]}
	}
	return &Cursor{s: g.Stream, end: end}
}

// Eof returns whether the cursor is at the end of its stream.
func (c *Cursor) Eof() bool { return c.i >= len(c.s) }

// Pos returns the index of the next token tree.
func (c *Cursor) Pos() int { return c.i }

// Peek returns the next token tree,
// or the zero Tree if at the end of the stream.
func (c *Cursor) Peek() Tree { return c.PeekN(0) }

// Peek2 returns the token tree after the next.
func (c *Cursor) Peek2() Tree { return c.PeekN(1) }

// Peek3 returns the third token tree from the cursor.
func (c *Cursor) Peek3() Tree { return c.PeekN(2) }

// PeekN returns the n-th token tree from the cursor, starting at 0.
func (c *Cursor) PeekN(n int) Tree {
	if c.i+n >= len(c.s) {
		return Tree{Range: c.end}
	}
	return c.s[c.i+n]
}

// Next returns the next token tree and moves past it.
func (c *Cursor) Next() Tree {
	t := c.Peek()
	if !c.Eof() {
		c.i++
	}
	return t
}

// Span returns the range of the next token tree,
// or the end of the stream.
func (c *Cursor) Span() loc.Range { return c.Peek().Range }

// Fork returns a copy of the cursor that can move independently.
func (c *Cursor) Fork() *Cursor {
	f := *c
	return &f
}

// Advance moves the cursor to the position of fork f.
func (c *Cursor) Advance(f *Cursor) { c.i = f.i }

// Rest returns the remaining token trees and moves to the end.
func (c *Cursor) Rest() Stream {
	s := c.s[c.i:]
	c.i = len(c.s)
	return s
}

// Since returns the token trees from position pos to the cursor.
func (c *Cursor) Since(pos int) Stream {
	return c.s[pos:c.i:c.i]
}

// PeekPunct returns whether the upcoming tokens spell the operator op,
// each character but the last Joint to the next.
// Like the compiler's own parser, ":" matches the start of "::".
func (c *Cursor) PeekPunct(op string) bool { return c.PeekPunctN(0, op) }

// PeekPunctN is like PeekPunct, but starts n token trees past the cursor.
func (c *Cursor) PeekPunctN(n int, op string) bool {
	for i := 0; i < len(op); i++ {
		t := c.PeekN(n + i)
		if !t.IsPunct(op[i]) {
			return false
		}
		if i < len(op)-1 && t.Spacing != Joint {
			return false
		}
	}
	return true
}

// PeekColon returns whether the next token is a ":" that does not begin "::".
func (c *Cursor) PeekColon() bool { return c.PeekPunct(":") && !c.PeekPunct("::") }

// Punct consumes the operator op if it is next,
// returning its token trees.
func (c *Cursor) Punct(op string) (Stream, bool) {
	if !c.PeekPunct(op) {
		return nil, false
	}
	s := c.s[c.i : c.i+len(op) : c.i+len(op)]
	c.i += len(op)
	return s, true
}

// PeekIdent returns whether the next token is the identifier or keyword text.
func (c *Cursor) PeekIdent(text string) bool { return c.Peek().IsIdent(text) }

// Ident consumes the identifier or keyword text if it is next.
func (c *Cursor) Ident(text string) (Tree, bool) {
	if !c.PeekIdent(text) {
		return Tree{}, false
	}
	return c.Next(), true
}

// PeekGroup returns whether the next token is a group with delimiter d.
func (c *Cursor) PeekGroup(d Delim) bool { return c.Peek().IsGroup(d) }
