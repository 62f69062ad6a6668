package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func versionDetails() map[string]string {
	return map[string]string{
		"version": version,
		"go":      runtime.Version(),
		"os":      runtime.GOOS,
		"arch":    runtime.GOARCH,
	}
}

type cmdVersion struct {
	gs     *globalState
	isJSON bool
}

func (c *cmdVersion) run(_ *cobra.Command, _ []string) error {
	if !c.isJSON {
		_, err := fmt.Fprintf(c.gs.stdout, "unconst v%s (%s, %s/%s)\n",
			version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return err
	}
	details, err := json.Marshal(versionDetails())
	if err != nil {
		return fmt.Errorf("failed to produce JSON version details: %w", err)
	}
	_, err = fmt.Fprintln(c.gs.stdout, string(details))
	return err
}

func getCmdVersion(gs *globalState) *cobra.Command {
	c := &cmdVersion{gs: gs}
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show application version",
		Long:  `Show the application version and exit.`,
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	cmd.Flags().BoolVar(&c.isJSON, "json", false, "print the version details as JSON")
	return cmd
}
