package rewrite

import (
	"strings"

	"github.com/eaburns/unconst/ast"
	"github.com/eaburns/unconst/loc"
	"github.com/eaburns/unconst/token"
)

// A SiteKind is the kind of an invocation site.
type SiteKind int

const (
	// MacroSite is a function-like invocation: name! { ... }.
	MacroSite SiteKind = iota
	// AttrSite is an attribute on an impl item: #[name] impl ...
	AttrSite
)

func (k SiteKind) String() string {
	switch k {
	case MacroSite:
		return "macro"
	case AttrSite:
		return "attribute"
	default:
		panic("impossible")
	}
}

// A Site is an invocation found in a source file.
type Site struct {
	// Range is the source text replaced by the expansion.
	// For a MacroSite it spans the path through the closing delimiter
	// and any following semicolon.
	// For an AttrSite it spans the attribute through the item.
	loc.Range
	Kind SiteKind
	// Name is the invoked macro or attribute name.
	Name string
	// Input is the macro input or the decorated item.
	Input token.Stream
	// Args is the attribute arguments.
	Args token.Stream
}

// FindSites returns the invocation sites in a stream, in source order.
// Sites are found at the top level and, recursively,
// inside brace groups that are not themselves invocations.
func FindSites(ts token.Stream, opts Options) []Site {
	var sites []Site
	for i := 0; i < len(ts); i++ {
		t := ts[i]
		switch {
		case t.IsPunct('#') && i+1 < len(ts) && ts[i+1].IsGroup(token.Bracket):
			attr := ts[i+1]
			i++
			name, args, ok := attrName(attr.Stream, opts.attrNames())
			if !ok {
				continue
			}
			begin := i + 1
			end := itemEnd(ts, begin)
			sites = append(sites, Site{
				Range: t.Range.Join(ts[end-1].Range),
				Kind:  AttrSite,
				Name:  name,
				Input: ts[begin:end],
				Args:  args,
			})
			i = end - 1

		case isSegment(t) && i+2 < len(ts) && ts[i+1].IsPunct('!') && ts[i+2].Kind == token.Group &&
			contains(opts.macroNames(), t.Text):
			begin := pathStart(ts, i)
			end := i + 3
			if !ts[i+2].IsGroup(token.Brace) && end < len(ts) && ts[end].IsPunct(';') {
				end++
			}
			sites = append(sites, Site{
				Range: ts[begin].Range.Join(ts[end-1].Range),
				Kind:  MacroSite,
				Name:  t.Text,
				Input: ts[i+2].Stream,
			})
			i = end - 1

		case t.IsGroup(token.Brace):
			sites = append(sites, FindSites(t.Stream, opts)...)
		}
	}
	return sites
}

func isSegment(t token.Tree) bool {
	return t.IsPlainIdent() || t.IsIdent("crate") || t.IsIdent("self") || t.IsIdent("super")
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// pathStart returns the index of the first token
// of the path ending with the identifier at i.
func pathStart(ts token.Stream, i int) int {
	for i >= 2 && ts[i-1].IsPunct(':') && ts[i-2].IsPunct(':') && ts[i-2].Spacing == token.Joint {
		if i < 3 || !isSegment(ts[i-3]) {
			return i - 2
		}
		i -= 3
	}
	return i
}

// attrName returns the name and arguments of an attribute
// of the form path or path(args),
// if the last segment of path is one of names.
func attrName(attr token.Stream, names []string) (string, token.Stream, bool) {
	c := token.NewCursor(attr)
	c.Punct("::")
	var name string
	for {
		if !isSegment(c.Peek()) {
			return "", nil, false
		}
		name = c.Next().Text
		if _, ok := c.Punct("::"); !ok {
			break
		}
	}
	var args token.Stream
	if c.PeekGroup(token.Paren) {
		args = c.Next().Stream
	}
	if !c.Eof() || !contains(names, name) {
		return "", nil, false
	}
	return name, args, true
}

// itemEnd returns the end index of the impl item beginning at i.
// If it does not parse, the item is taken to run
// through the next brace group or semicolon.
func itemEnd(ts token.Stream, i int) int {
	c := token.NewCursor(ts[i:])
	if _, err := ast.ParseImpl(c); err == nil {
		return i + c.Pos()
	}
	for j := i; j < len(ts); j++ {
		if ts[j].IsGroup(token.Brace) || ts[j].IsPunct(';') {
			return j + 1
		}
	}
	return len(ts)
}

// lineIndent returns the whitespace beginning the line containing offset p.
func lineIndent(text string, p int) string {
	start := strings.LastIndexByte(text[:p], '\n') + 1
	end := start
	for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
		end++
	}
	return text[start:end]
}
