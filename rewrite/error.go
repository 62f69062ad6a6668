// Copyright © 2020 The Pea Authors under an MIT-style license.

package rewrite

import (
	"fmt"

	"github.com/eaburns/peggy/peg"

	"github.com/eaburns/unconst/expand"
	"github.com/eaburns/unconst/loc"
)

// A ParseError is a failure to lex a file
// or to expand one of its invocation sites.
type ParseError struct {
	// Path is the file path.
	Path string
	// Text is the file text.
	Text string
	// Range is the range of the failure in Text.
	loc.Range
	// Err is the underlying error.
	Err error
}

func newParseError(path, text string, r loc.Range, err error) *ParseError {
	if er := expand.Range(err); !er.IsNone() {
		r = er
	}
	return &ParseError{Path: path, Text: text, Range: r, Err: err}
}

func (err *ParseError) Unwrap() error { return err.Err }

// Msg returns the message of the underlying error.
func (err *ParseError) Msg() string { return err.Err.Error() }

// Loc returns the location of the failure.
func (err *ParseError) Loc() *loc.Loc {
	return loc.Of(err.Path, err.Text, err.Range)
}

// Pos returns the path:line.col of the start of the failure.
func (err *ParseError) Pos() string {
	l := err.Loc()
	if l == nil {
		return err.Path
	}
	return fmt.Sprintf("%s:%d.%d", l.Path, l.Line[0], l.Col[0])
}

// Tree returns the failure as a peg failure tree:
// a root naming the construct, with the failed expectation as its leaf.
func (err *ParseError) Tree() *peg.Fail {
	pos := err.Range[0]
	if pos < 0 {
		pos = 0
	}
	return &peg.Fail{
		Name: "Impl",
		Pos:  pos,
		Kids: []*peg.Fail{{Pos: pos, Want: err.Msg()}},
	}
}

func (err *ParseError) Error() string {
	e := peg.SimpleError(err.Text, err.Tree())
	e.FilePath = err.Path
	return e.Error()
}
