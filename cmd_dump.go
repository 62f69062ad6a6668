package main

import (
	"fmt"

	"github.com/eaburns/pretty"
	"github.com/spf13/cobra"

	"github.com/eaburns/unconst/ast"
	"github.com/eaburns/unconst/loc"
	"github.com/eaburns/unconst/rewrite"
	"github.com/eaburns/unconst/token"
)

type cmdDump struct {
	gs      *globalState
	project bool
}

func (c *cmdDump) run(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, arg := range args {
		path, text, err := readInput(c.gs, []string{arg})
		if err != nil {
			return err
		}
		if err := c.dump(path, text); err != nil {
			return err
		}
	}
	return nil
}

// dump prints the tree of each invocation site in the text.
// If there are no sites, the text must be a single impl item.
func (c *cmdDump) dump(path, text string) error {
	ts, err := token.Lex(text)
	if err != nil {
		return parseError(path, text, err)
	}
	inputs := []token.Stream{ts}
	if sites := rewrite.FindSites(ts, rewriteOptions(c.gs.conf)); len(sites) > 0 {
		inputs = inputs[:0]
		for _, s := range sites {
			inputs = append(inputs, s.Input)
		}
	}
	for _, input := range inputs {
		impl, err := ast.Parse(input)
		if err != nil {
			return parseError(path, text, err)
		}
		if c.project {
			impl = ast.Project(impl, c.gs.conf.MarkerTrait)
		}
		if l := loc.Of(path, text, impl.Range); l != nil {
			fmt.Fprintln(c.gs.stdout, l)
		}
		fmt.Fprintln(c.gs.stdout, pretty.String(impl))
		fmt.Fprintln(c.gs.stdout, "")
	}
	return nil
}

func getCmdDump(gs *globalState) *cobra.Command {
	c := &cmdDump{gs: gs}
	cmd := &cobra.Command{
		Use:   "dump [file...]",
		Short: "Print the syntax tree of each invocation",
		Long: `Print the syntax tree of each invocation in the files,
or of the single impl item making up a file with no invocations.
With no file, standard input is read.`,
		RunE: c.run,
	}
	cmd.Flags().BoolVar(&c.project, "project", false, "print the tree after removing const")
	return cmd
}
