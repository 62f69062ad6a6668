package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eaburns/unconst/rewrite"
)

type cmdRewrite struct {
	gs       *globalState
	write    bool
	list     bool
	diff     bool
	exitCode bool
}

func (c *cmdRewrite) run(cmd *cobra.Command, args []string) error {
	rw := c.gs.rewriter()
	var results []*rewrite.Result
	if len(args) == 0 || len(args) == 1 && args[0] == "-" {
		if c.write {
			return fmt.Errorf("cannot use -w with standard input")
		}
		path, text, err := readInput(c.gs, nil)
		if err != nil {
			return err
		}
		res, err := rw.Source(cmd.Context(), path, text)
		if err != nil {
			return err
		}
		results = []*rewrite.Result{res}
	} else {
		paths, err := rw.Files(args)
		if err != nil {
			return err
		}
		if results, err = rw.Run(cmd.Context(), paths); err != nil {
			return err
		}
	}

	var failed int
	for _, res := range results {
		failed += len(res.Errs)
		if err := c.report(rw, res); err != nil {
			return err
		}
	}
	changed := rewrite.ChangedPaths(results)
	c.gs.logger.WithFields(logrus.Fields{
		"files":   len(results),
		"changed": len(changed),
		"failed":  failed,
	}).Debug("done")
	if c.exitCode && len(changed) > 0 {
		return &exitCode{Code: 2}
	}
	return nil
}

func (c *cmdRewrite) report(rw *rewrite.Rewriter, res *rewrite.Result) error {
	out := c.gs.stdout
	if c.list && res.Changed {
		fmt.Fprintln(out, res.Path)
	}
	if c.diff && res.Changed {
		d, err := unifiedDiff(res)
		if err != nil {
			return err
		}
		c.printDiff(d)
	}
	if c.write {
		return rw.Write(res)
	}
	if !c.list && !c.diff {
		_, err := fmt.Fprint(out, res.Text)
		return err
	}
	return nil
}

func unifiedDiff(res *rewrite.Result) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(res.Orig),
		B:        difflib.SplitLines(res.Text),
		FromFile: res.Path + ".orig",
		ToFile:   res.Path,
		Context:  3,
	})
}

func (c *cmdRewrite) printDiff(d string) {
	var (
		add  = c.gs.color(color.FgGreen)
		del  = c.gs.color(color.FgRed)
		hunk = c.gs.color(color.FgCyan)
		head = c.gs.color(color.Bold)
	)
	for _, line := range strings.SplitAfter(d, "\n") {
		switch {
		case line == "":
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			head.Fprint(c.gs.stdout, line)
		case strings.HasPrefix(line, "@@"):
			hunk.Fprint(c.gs.stdout, line)
		case strings.HasPrefix(line, "+"):
			add.Fprint(c.gs.stdout, line)
		case strings.HasPrefix(line, "-"):
			del.Fprint(c.gs.stdout, line)
		default:
			fmt.Fprint(c.gs.stdout, line)
		}
	}
}

func getCmdRewrite(gs *globalState) *cobra.Command {
	c := &cmdRewrite{gs: gs}
	cmd := &cobra.Command{
		Use:   "rewrite [path...]",
		Short: "Rewrite the invocations in Rust source files",
		Long: `Rewrite the invocations in the .rs files of each path,
which may be a file or a directory searched recursively.
Hidden directories and target directories are skipped.

With no path, standard input is rewritten to standard output.
By default the rewritten files are printed to standard output.`,
		Example: `  unconst rewrite -w src
  unconst rewrite -d --exit-code .`,
		RunE: c.run,
	}
	flags := cmd.Flags()
	flags.BoolVarP(&c.write, "write", "w", false, "write the result to the source files")
	flags.BoolVarP(&c.list, "list", "l", false, "list the files whose text changes")
	flags.BoolVarP(&c.diff, "diff", "d", false, "print a diff of the changes")
	flags.BoolVar(&c.exitCode, "exit-code", false, "exit with status 2 if any file changes")
	return cmd
}
