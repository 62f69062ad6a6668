package main

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/eaburns/unconst/config"
	"github.com/eaburns/unconst/rewrite"
)

// globalState holds everything a command touches outside of itself,
// so that tests can substitute the filesystem, environment, and console.
type globalState struct {
	ctx       context.Context
	fs        afero.Fs
	args      []string
	lookupEnv func(string) (string, bool)

	stdin          io.Reader
	stdout, stderr *consoleWriter
	logger         *logrus.Logger

	flags globalFlags
	// conf is loaded before any subcommand runs.
	conf config.Config
}

type globalFlags struct {
	verbose    bool
	noColor    bool
	logFormat  string
	configPath string
}

func newGlobalState(ctx context.Context) *globalState {
	mu := &sync.Mutex{}
	stdoutTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	stderrTTY := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	stdout := &consoleWriter{colorable.NewColorableStdout(), stdoutTTY, mu}
	stderr := &consoleWriter{colorable.NewColorableStderr(), stderrTTY, mu}
	logger := &logrus.Logger{
		Out:       stderr,
		Formatter: &logrus.TextFormatter{ForceColors: stderrTTY},
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}
	configPath, _ := os.LookupEnv("UNCONST_CONFIG")
	return &globalState{
		ctx:       ctx,
		fs:        afero.NewOsFs(),
		args:      os.Args,
		lookupEnv: os.LookupEnv,
		stdin:     os.Stdin,
		stdout:    stdout,
		stderr:    stderr,
		logger:    logger,
		flags:     globalFlags{logFormat: "text", configPath: configPath},
	}
}

// A consoleWriter serializes writes to a terminal stream.
type consoleWriter struct {
	io.Writer
	isTTY bool
	mutex *sync.Mutex
}

func (w *consoleWriter) Write(p []byte) (int, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.Writer.Write(p)
}

// color returns a color that is disabled
// unless stdout is a terminal and colors are allowed.
func (gs *globalState) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if gs.flags.noColor || !gs.stdout.isTTY {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c
}

// rewriter returns a Rewriter configured by the loaded configuration.
func (gs *globalState) rewriter() *rewrite.Rewriter {
	rw := rewrite.New(gs.fs, gs.logger, rewriteOptions(gs.conf))
	rw.Jobs = gs.conf.Jobs
	return rw
}

func rewriteOptions(conf config.Config) rewrite.Options {
	return rewrite.Options{
		MacroNames: conf.MacroNames,
		AttrNames:  conf.AttributeNames,
		Marker:     conf.MarkerTrait,
		Debug:      config.Bool(conf.DebugString),
		KeepGoing:  config.Bool(conf.KeepGoing),
		Verify:     config.Bool(conf.Verify),
	}
}
