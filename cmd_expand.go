package main

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/eaburns/unconst/config"
	"github.com/eaburns/unconst/expand"
	"github.com/eaburns/unconst/rewrite"
	"github.com/eaburns/unconst/token"
	"github.com/eaburns/unconst/verify"
)

const stdinPath = "<stdin>"

type cmdExpand struct {
	gs   *globalState
	attr bool
	args string
}

func (c *cmdExpand) run(cmd *cobra.Command, args []string) error {
	path, text, err := readInput(c.gs, args)
	if err != nil {
		return err
	}
	ts, err := token.Lex(text)
	if err != nil {
		return parseError(path, text, err)
	}
	var attrArgs token.Stream
	if c.attr {
		if attrArgs, err = token.Lex(c.args); err != nil {
			return fmt.Errorf("bad attribute arguments: %w", err)
		}
	}

	opts := expand.Options{Marker: c.gs.conf.MarkerTrait}
	var out token.Stream
	switch {
	case c.attr:
		out, err = expand.Attr(attrArgs, ts, opts)
	case config.Bool(c.gs.conf.DebugString):
		out, err = expand.Debug(ts, opts)
	default:
		out, err = expand.Item(ts, opts)
	}
	if err != nil {
		perr := parseError(path, text, err)
		if !config.Bool(c.gs.conf.KeepGoing) {
			return perr
		}
		c.gs.logger.WithField("loc", perr.Pos()).Warn(perr.Msg())
		out = expand.CompileError(err)
	}

	result := token.Format(out, "")
	if config.Bool(c.gs.conf.Verify) {
		errs, err := verify.Source(cmd.Context(), result)
		if err != nil {
			return err
		}
		for _, e := range errs {
			c.gs.logger.Warnf("invalid expansion: %s", e)
		}
		if len(errs) > 0 {
			return fmt.Errorf("expansion is not valid Rust: %w", errs[0])
		}
	}
	_, err = fmt.Fprintln(c.gs.stdout, result)
	return err
}

// readInput returns the path and contents of the single file argument,
// or of standard input if there is none or it is "-".
func readInput(gs *globalState, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(gs.stdin)
		return stdinPath, string(data), err
	}
	data, err := afero.ReadFile(gs.fs, args[0])
	return args[0], string(data), err
}

func parseError(path, text string, err error) *rewrite.ParseError {
	return &rewrite.ParseError{Path: path, Text: text, Range: expand.Range(err), Err: err}
}

func getCmdExpand(gs *globalState) *cobra.Command {
	c := &cmdExpand{gs: gs}
	cmd := &cobra.Command{
		Use:   "expand [file]",
		Short: "Expand a single impl item",
		Long: `Expand a single impl item, read from the file or standard input,
and print the expansion.

The input is the token stream a macro invocation receives:
an impl item, with or without the const qualifier.`,
		Example: `  echo 'impl<T: ~const Drop> const Default for X<T> {}' | unconst expand`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    c.run,
	}
	cmd.Flags().BoolVar(&c.attr, "as-attr", false, "expand as an attribute on the item")
	cmd.Flags().StringVar(&c.args, "attr-args", "", "attribute arguments, used with --as-attr")
	return cmd
}
