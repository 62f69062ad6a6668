// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package expand implements the unconst_trait_impl macro drivers.
// Each driver takes the token stream of an invocation
// and returns the stable replacement of the impl item it holds.
package expand

import (
	"errors"

	"github.com/eaburns/unconst/ast"
	"github.com/eaburns/unconst/loc"
	"github.com/eaburns/unconst/token"
)

// Options configure the drivers.
type Options struct {
	// Marker is the trait whose ~const bounds are removed.
	// If empty, ast.DefaultMarker is used.
	Marker string
}

func (o Options) marker() string {
	if o.Marker == "" {
		return ast.DefaultMarker
	}
	return o.Marker
}

// Item expands a function-like invocation.
// The input must be exactly one impl item.
// On error, the returned stream is nil.
func Item(input token.Stream, opts Options) (token.Stream, error) {
	impl, err := ast.Parse(input)
	if err != nil {
		return nil, err
	}
	return ast.Project(impl, opts.marker()).Tokens(), nil
}

// Attr expands an attribute-like invocation on item.
// The attribute arguments are ignored.
func Attr(args, item token.Stream, opts Options) (token.Stream, error) {
	return Item(item, opts)
}

// Debug expands a function-like invocation
// into a string constant holding the display form of the expansion:
//
//	const _: &str = "impl Trait for X {}";
func Debug(input token.Stream, opts Options) (token.Stream, error) {
	out, err := Item(input, opts)
	if err != nil {
		return nil, err
	}
	ts := token.Stream{token.NewIdent("const"), token.NewIdent("_")}
	ts = append(ts, token.NewOp(":")...)
	ts = append(ts, token.NewOp("&")...)
	ts = append(ts, token.NewIdent("str"))
	ts = append(ts, token.NewOp("=")...)
	ts = append(ts, token.NewString(out.String()))
	return append(ts, token.NewOp(";")...), nil
}

// CompileError returns a compile_error! invocation
// reporting err at its source range:
//
//	::core::compile_error! { "message" }
//
// If err has no range, the tokens have none either.
func CompileError(err error) token.Stream {
	r := Range(err)
	ts := withRange(token.NewOp("::"), r)
	ts = append(ts, token.NewIdent("core").WithRange(r))
	ts = append(ts, withRange(token.NewOp("::"), r)...)
	ts = append(ts, token.NewIdent("compile_error").WithRange(r))
	ts = append(ts, withRange(token.NewOp("!"), r)...)
	msg := token.Stream{token.NewString(err.Error()).WithRange(r)}
	return append(ts, token.NewGroup(token.Brace, msg).WithRange(r))
}

// Range returns the source range of a lexical or syntax error,
// or loc.None if err has none.
func Range(err error) loc.Range {
	var tokErr *token.Error
	if errors.As(err, &tokErr) {
		return tokErr.Range
	}
	var astErr *ast.Error
	if errors.As(err, &astErr) {
		return astErr.Range
	}
	return loc.None
}

func withRange(ts token.Stream, r loc.Range) token.Stream {
	for i := range ts {
		ts[i].Range = r
	}
	return ts
}
