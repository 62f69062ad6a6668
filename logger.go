package main

import (
	"fmt"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
)

// RawFormatter prints only the message of each entry.
type RawFormatter struct{}

// Format renders a single log entry.
func (f RawFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return append([]byte(entry.Message), '\n'), nil
}

func (gs *globalState) setupLogger() error {
	if gs.flags.verbose {
		gs.logger.SetLevel(logrus.DebugLevel)
	}
	if gs.flags.noColor {
		gs.stdout.Writer = colorable.NewNonColorable(gs.stdout.Writer)
		gs.stderr.Writer = colorable.NewNonColorable(gs.stderr.Writer)
	}
	gs.logger.SetOutput(gs.stderr)

	switch gs.flags.logFormat {
	case "raw":
		gs.logger.SetFormatter(&RawFormatter{})
	case "json":
		gs.logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		gs.logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   gs.stderr.isTTY,
			DisableColors: gs.flags.noColor,
		})
	default:
		return fmt.Errorf("unsupported log format %q", gs.flags.logFormat)
	}
	gs.logger.Debugf("log format: %s", gs.flags.logFormat)
	return nil
}
