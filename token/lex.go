// Copyright © 2020 The Pea Authors under an MIT-style license.

package token

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/eaburns/unconst/loc"
)

// An Error is a lexical or syntax error at a range of the source.
type Error struct {
	loc.Range
	Msg string
}

func (err *Error) Error() string { return err.Msg }

// Errorf returns an *Error at r.
func Errorf(r loc.Range, msg string) *Error {
	return &Error{Range: r, Msg: msg}
}

// The characters that lex as Punct.
const punctChars = "~!@#$%^&*-=+|;:,.<>/?\\"

func isPunctChar(r rune) bool {
	return r < utf8.RuneSelf && strings.IndexByte(punctChars, byte(r)) >= 0
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

type lexer struct {
	text string
	pos  int
	// stack holds the streams of unclosed groups;
	// the bottom is the top-level stream.
	stack []Stream
	opens []Tree
}

// Lex returns the token stream of Rust source text.
// Ranges are byte offsets into text.
// Comments are dropped, except doc comments,
// which become doc attributes as the compiler does.
func Lex(text string) (Stream, error) {
	lx := &lexer{text: text, stack: []Stream{nil}}
	for {
		if err := lx.skipSpace(); err != nil {
			return nil, err
		}
		if lx.pos >= len(lx.text) {
			break
		}
		if err := lx.next(); err != nil {
			return nil, err
		}
	}
	if len(lx.opens) > 0 {
		open := lx.opens[len(lx.opens)-1]
		return nil, Errorf(open.Range, "unclosed delimiter "+open.Delim.Open())
	}
	return lx.stack[0], nil
}

func (lx *lexer) peekRune(offs int) rune {
	p := lx.pos + offs
	if p >= len(lx.text) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(lx.text[p:])
	return r
}

func (lx *lexer) hasPrefix(s string) bool { return strings.HasPrefix(lx.text[lx.pos:], s) }

func (lx *lexer) emit(t Tree) {
	top := len(lx.stack) - 1
	lx.stack[top] = append(lx.stack[top], t)
}

func (lx *lexer) skipSpace() error {
	for lx.pos < len(lx.text) {
		r, w := utf8.DecodeRuneInString(lx.text[lx.pos:])
		switch {
		case unicode.IsSpace(r):
			lx.pos += w
		case lx.hasPrefix("//"):
			if err := lx.lineComment(); err != nil {
				return err
			}
		case lx.hasPrefix("/*"):
			if err := lx.blockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

func (lx *lexer) lineComment() error {
	start := lx.pos
	end := strings.IndexByte(lx.text[lx.pos:], '\n')
	if end < 0 {
		end = len(lx.text)
	} else {
		end += lx.pos
	}
	body := lx.text[start:end]
	lx.pos = end
	switch {
	case strings.HasPrefix(body, "///") && !strings.HasPrefix(body, "////"):
		lx.doc(false, strings.TrimSuffix(body[3:], "\r"), loc.Range{start, end})
	case strings.HasPrefix(body, "//!"):
		lx.doc(true, strings.TrimSuffix(body[3:], "\r"), loc.Range{start, end})
	}
	return nil
}

func (lx *lexer) blockComment() error {
	start := lx.pos
	depth := 0
	for lx.pos < len(lx.text) {
		switch {
		case lx.hasPrefix("/*"):
			depth++
			lx.pos += 2
		case lx.hasPrefix("*/"):
			depth--
			lx.pos += 2
			if depth == 0 {
				body := lx.text[start:lx.pos]
				switch {
				case strings.HasPrefix(body, "/**") && !strings.HasPrefix(body, "/***") && body != "/**/":
					lx.doc(false, body[3:len(body)-2], loc.Range{start, lx.pos})
				case strings.HasPrefix(body, "/*!"):
					lx.doc(true, body[3:len(body)-2], loc.Range{start, lx.pos})
				}
				return nil
			}
		default:
			_, w := utf8.DecodeRuneInString(lx.text[lx.pos:])
			lx.pos += w
		}
	}
	return Errorf(loc.Range{start, start + 2}, "unterminated block comment")
}

// doc emits #[doc = "text"], or #![doc = "text"] if inner.
func (lx *lexer) doc(inner bool, text string, r loc.Range) {
	spacing := Alone
	if inner {
		spacing = Joint
	}
	lx.emit(NewPunct('#', spacing).WithRange(r))
	if inner {
		lx.emit(NewPunct('!', Alone).WithRange(r))
	}
	lx.emit(Tree{
		Range: r,
		Kind:  Group,
		Delim: Bracket,
		Stream: Stream{
			NewIdent("doc").WithRange(r),
			NewPunct('=', Alone).WithRange(r),
			NewString(text).WithRange(r),
		},
	})
}

func (lx *lexer) next() error {
	r := lx.peekRune(0)
	switch {
	case r == '(' || r == '[' || r == '{':
		lx.open(r)
		return nil
	case r == ')' || r == ']' || r == '}':
		return lx.close(r)
	case r == '"':
		return lx.quoted(lx.pos, 1, '"')
	case r == '\'':
		return lx.quote()
	case r == 'b' || r == 'c' || r == 'r':
		if ok, err := lx.prefixedLiteral(); ok || err != nil {
			return err
		}
		lx.ident()
		return nil
	case isIdentStart(r):
		lx.ident()
		return nil
	case unicode.IsDigit(r):
		lx.number()
		return nil
	case isPunctChar(r):
		start := lx.pos
		lx.pos++
		spacing := Alone
		if next := lx.peekRune(0); isPunctChar(next) {
			spacing = Joint
		}
		lx.emit(Tree{Range: loc.Range{start, lx.pos}, Kind: Punct, Text: string(r), Spacing: spacing})
		return nil
	default:
		_, w := utf8.DecodeRuneInString(lx.text[lx.pos:])
		return Errorf(loc.Range{lx.pos, lx.pos + w}, "unexpected character "+Quote(string(r)))
	}
}

func delimOf(r rune) Delim {
	switch r {
	case '(', ')':
		return Paren
	case '[', ']':
		return Bracket
	default:
		return Brace
	}
}

func (lx *lexer) open(r rune) {
	lx.opens = append(lx.opens, Tree{
		Range: loc.Range{lx.pos, lx.pos + 1},
		Kind:  Group,
		Delim: delimOf(r),
	})
	lx.stack = append(lx.stack, nil)
	lx.pos++
}

func (lx *lexer) close(r rune) error {
	d := delimOf(r)
	if len(lx.opens) == 0 {
		return Errorf(loc.Range{lx.pos, lx.pos + 1}, "unexpected closing delimiter "+d.Close())
	}
	g := lx.opens[len(lx.opens)-1]
	if g.Delim != d {
		return Errorf(loc.Range{lx.pos, lx.pos + 1},
			"mismatched closing delimiter "+d.Close()+", expected "+g.Delim.Close())
	}
	lx.pos++
	g.Range[1] = lx.pos
	g.Stream = lx.stack[len(lx.stack)-1]
	lx.opens = lx.opens[:len(lx.opens)-1]
	lx.stack = lx.stack[:len(lx.stack)-1]
	lx.emit(g)
	return nil
}

func (lx *lexer) ident() {
	start := lx.pos
	if lx.hasPrefix("r#") && isIdentStart(lx.peekRune(2)) {
		lx.pos += 2
	}
	for lx.pos < len(lx.text) {
		r, w := utf8.DecodeRuneInString(lx.text[lx.pos:])
		if !isIdentCont(r) {
			break
		}
		lx.pos += w
	}
	lx.emit(Tree{Range: loc.Range{start, lx.pos}, Kind: Ident, Text: lx.text[start:lx.pos]})
}

// prefixedLiteral lexes b"", b'', br"", c"", cr"", r"", and r#""#.
// It returns false if the text at the current position is not such a literal.
func (lx *lexer) prefixedLiteral() (bool, error) {
	start := lx.pos
	p := 0
	if r := lx.peekRune(0); r == 'b' || r == 'c' {
		p++
	}
	switch lx.peekRune(p) {
	case '"':
		return true, lx.quoted(start, p+1, '"')
	case '\'':
		if p == 1 && lx.peekRune(0) == 'b' {
			return true, lx.quoted(start, p+1, '\'')
		}
		return false, nil
	case 'r':
		p++
		hashes := 0
		for lx.peekRune(p+hashes) == '#' {
			hashes++
		}
		if lx.peekRune(p+hashes) != '"' {
			return false, nil
		}
		return true, lx.raw(start, p+hashes+1, hashes)
	default:
		return false, nil
	}
}

// quoted lexes a string or character literal with escapes
// whose opening quote ends at start+n.
func (lx *lexer) quoted(start, n int, quote byte) error {
	lx.pos = start + n
	for lx.pos < len(lx.text) {
		switch lx.text[lx.pos] {
		case '\\':
			lx.pos += 2
		case quote:
			lx.pos++
			lx.suffix()
			lx.emit(Tree{Range: loc.Range{start, lx.pos}, Kind: Literal, Text: lx.text[start:lx.pos]})
			return nil
		default:
			lx.pos++
		}
	}
	return Errorf(loc.Range{start, start + n}, "unterminated literal")
}

func (lx *lexer) raw(start, n, hashes int) error {
	closing := "\"" + strings.Repeat("#", hashes)
	end := strings.Index(lx.text[start+n:], closing)
	if end < 0 {
		return Errorf(loc.Range{start, start + n}, "unterminated raw string")
	}
	lx.pos = start + n + end + len(closing)
	lx.suffix()
	lx.emit(Tree{Range: loc.Range{start, lx.pos}, Kind: Literal, Text: lx.text[start:lx.pos]})
	return nil
}

// quote lexes a character literal or a lifetime.
func (lx *lexer) quote() error {
	start := lx.pos
	switch {
	case lx.peekRune(1) == '\\':
		return lx.quoted(start, 1, '\'')
	case lx.pos+1 < len(lx.text):
		_, w := utf8.DecodeRuneInString(lx.text[lx.pos+1:])
		if lx.peekRune(1+w) == '\'' {
			return lx.quoted(start, 1, '\'')
		}
	}
	if !isIdentStart(lx.peekRune(1)) {
		return Errorf(loc.Range{start, start + 1}, "unexpected character \"'\"")
	}
	lx.pos++
	if lx.hasPrefix("r#") {
		lx.pos += 2
	}
	for lx.pos < len(lx.text) {
		r, w := utf8.DecodeRuneInString(lx.text[lx.pos:])
		if !isIdentCont(r) {
			break
		}
		lx.pos += w
	}
	lx.emit(Tree{Range: loc.Range{start, lx.pos}, Kind: Lifetime, Text: lx.text[start:lx.pos]})
	return nil
}

func (lx *lexer) number() {
	start := lx.pos
	digit := func(r rune) bool { return unicode.IsDigit(r) || r == '_' }
	if lx.hasPrefix("0x") || lx.hasPrefix("0o") || lx.hasPrefix("0b") {
		lx.pos += 2
		digit = func(r rune) bool {
			return r == '_' || unicode.IsDigit(r) || strings.ContainsRune("abcdefABCDEF", r)
		}
		for lx.pos < len(lx.text) && digit(lx.peekRune(0)) {
			lx.pos++
		}
		lx.suffix()
		lx.emit(Tree{Range: loc.Range{start, lx.pos}, Kind: Literal, Text: lx.text[start:lx.pos]})
		return
	}
	for lx.pos < len(lx.text) && digit(lx.peekRune(0)) {
		lx.pos++
	}
	if lx.peekRune(0) == '.' && unicode.IsDigit(lx.peekRune(1)) {
		lx.pos++
		for lx.pos < len(lx.text) && digit(lx.peekRune(0)) {
			lx.pos++
		}
	}
	if r := lx.peekRune(0); r == 'e' || r == 'E' {
		p := 1
		if s := lx.peekRune(1); s == '+' || s == '-' {
			p++
		}
		if unicode.IsDigit(lx.peekRune(p)) {
			lx.pos += p
			for lx.pos < len(lx.text) && digit(lx.peekRune(0)) {
				lx.pos++
			}
		}
	}
	lx.suffix()
	lx.emit(Tree{Range: loc.Range{start, lx.pos}, Kind: Literal, Text: lx.text[start:lx.pos]})
}

func (lx *lexer) suffix() {
	if !isIdentStart(lx.peekRune(0)) {
		return
	}
	for lx.pos < len(lx.text) {
		r, w := utf8.DecodeRuneInString(lx.text[lx.pos:])
		if !isIdentCont(r) {
			break
		}
		lx.pos += w
	}
}

// Quote returns a Rust string literal for s.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
