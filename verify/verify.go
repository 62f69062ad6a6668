// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package verify checks Rust source text
// against the tree-sitter Rust grammar.
package verify

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/eaburns/unconst/loc"
)

// An Error is a syntax error found by the Rust grammar.
type Error struct {
	loc.Range
	// Line and Col are 1-based.
	Line, Col int
	// Missing is the node kind the grammar expected, if any.
	Missing string
}

func (err *Error) Error() string {
	if err.Missing != "" {
		return fmt.Sprintf("%d.%d: missing %s", err.Line, err.Col, err.Missing)
	}
	return fmt.Sprintf("%d.%d: syntax error", err.Line, err.Col)
}

// Source parses the text as a Rust source file
// and returns an error for each error or missing node,
// in source order.
func Source(ctx context.Context, text string) ([]*Error, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(rust.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}
	var errs []*Error
	var visit func(*sitter.Node)
	visit = func(n *sitter.Node) {
		switch {
		case n.IsMissing():
			errs = append(errs, nodeError(n, n.Type()))
			return
		case n.Type() == "ERROR":
			errs = append(errs, nodeError(n, ""))
			return
		case !n.HasError():
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)
	return errs, nil
}

func nodeError(n *sitter.Node, missing string) *Error {
	p := n.StartPoint()
	return &Error{
		Range:   loc.Range{int(n.StartByte()), int(n.EndByte())},
		Line:    int(p.Row) + 1,
		Col:     int(p.Column) + 1,
		Missing: missing,
	}
}
