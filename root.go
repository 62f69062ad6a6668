package main

import (
	"errors"
	"fmt"

	"github.com/eaburns/peggy/peg"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/eaburns/unconst/config"
)

// BannerColor colors the root command description.
var BannerColor = color.New(color.FgCyan)

type rootCommand struct {
	gs  *globalState
	cmd *cobra.Command
}

func newRootCommand(gs *globalState) *rootCommand {
	c := &rootCommand{gs: gs}
	c.cmd = &cobra.Command{
		Use:   "unconst",
		Short: "rewrite impl const blocks into stable Rust",
		Long: BannerColor.Sprint("unconst") + ` rewrites unconst_trait_impl invocations
in Rust source files, removing the const qualifier from trait impls
and the ~const qualifier from their bounds.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}
	c.cmd.PersistentFlags().AddFlagSet(c.persistentFlagSet())
	c.cmd.AddCommand(
		getCmdExpand(gs),
		getCmdRewrite(gs),
		getCmdWatch(gs),
		getCmdDump(gs),
		getCmdVersion(gs),
	)
	return c
}

func (c *rootCommand) persistentFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.BoolVarP(&c.gs.flags.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&c.gs.flags.noColor, "no-color", false, "disable colored output")
	flags.StringVar(&c.gs.flags.logFormat, "log-format", c.gs.flags.logFormat, "log output format: text, json, or raw")
	flags.StringVarP(&c.gs.flags.configPath, "config", "c", c.gs.flags.configPath, "yaml config file")
	flags.Lookup("config").DefValue = config.DefaultPath

	flags.StringSlice("macro", nil, "function-like macro names to expand")
	flags.StringSlice("attr", nil, "attribute names to expand")
	flags.String("marker", "", "trait whose ~const bounds are removed")
	flags.IntP("jobs", "j", 0, "maximum number of files processed at once")
	flags.Bool("debug-string", false, "expand macros to a string constant of their expansion")
	flags.Bool("verify", false, "check each expansion with the Rust grammar")
	flags.BoolP("keep-going", "k", false, "replace failed invocations with compile_error!")
	return flags
}

func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	if err := c.gs.setupLogger(); err != nil {
		return err
	}
	over, err := flagConfig(cmd.Flags())
	if err != nil {
		return err
	}
	conf, err := config.Load(c.gs.fs, c.gs.flags.configPath, c.gs.lookupEnv)
	if err != nil {
		return err
	}
	conf = conf.Apply(over)
	if err := conf.Validate(); err != nil {
		return err
	}
	c.gs.conf = conf
	c.gs.logger.WithFields(logrus.Fields{
		"marker": conf.MarkerTrait,
		"jobs":   conf.Jobs,
	}).Debug("loaded configuration")
	return nil
}

// flagConfig returns the configuration set by changed flags.
func flagConfig(flags *pflag.FlagSet) (config.Config, error) {
	var conf config.Config
	var err error
	if flags.Changed("macro") {
		if conf.MacroNames, err = flags.GetStringSlice("macro"); err != nil {
			return conf, err
		}
	}
	if flags.Changed("attr") {
		if conf.AttributeNames, err = flags.GetStringSlice("attr"); err != nil {
			return conf, err
		}
	}
	if flags.Changed("marker") {
		if conf.MarkerTrait, err = flags.GetString("marker"); err != nil {
			return conf, err
		}
	}
	if flags.Changed("jobs") {
		if conf.Jobs, err = flags.GetInt("jobs"); err != nil {
			return conf, err
		}
		if conf.Jobs < 1 {
			return conf, fmt.Errorf("jobs must be positive, got %d", conf.Jobs)
		}
	}
	for name, p := range map[string]**bool{
		"debug-string": &conf.DebugString,
		"verify":       &conf.Verify,
		"keep-going":   &conf.KeepGoing,
	} {
		if !flags.Changed(name) {
			continue
		}
		b, err := flags.GetBool(name)
		if err != nil {
			return conf, err
		}
		*p = &b
	}
	return conf, nil
}

// An exitCode is an error with a process exit status.
// An exitCode with no error exits quietly.
type exitCode struct {
	err  error
	Code int
}

func (e *exitCode) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.err.Error()
}

func (e *exitCode) Unwrap() error { return e.err }

// execute runs the command line and returns the process exit status.
func execute(gs *globalState) int {
	c := newRootCommand(gs)
	c.cmd.SetArgs(gs.args[1:])
	c.cmd.SetIn(gs.stdin)
	c.cmd.SetOut(gs.stdout)
	c.cmd.SetErr(gs.stderr)
	err := c.cmd.ExecuteContext(gs.ctx)
	if err == nil {
		return 0
	}
	code := 1
	var ec *exitCode
	if errors.As(err, &ec) {
		code = ec.Code
		if ec.err == nil {
			return code
		}
	}
	var pe interface{ Tree() *peg.Fail }
	if errors.As(err, &pe) && gs.flags.verbose {
		peg.PrettyWrite(gs.stderr, pe.Tree())
		fmt.Fprintln(gs.stderr)
	}
	gs.logger.Error(err)
	return code
}
