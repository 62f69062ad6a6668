// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package config loads unconst settings
// from a yaml file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/mstoykov/envconfig"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/eaburns/unconst/ast"
	"github.com/eaburns/unconst/rewrite"
)

// DefaultPath is the config file read when none is named.
const DefaultPath = ".unconst.yaml"

// DefaultName is the default macro and attribute name.
const DefaultName = rewrite.DefaultName

// Config is the unconst configuration.
// Unset fields are nil or zero,
// so that layers can be applied over one another.
type Config struct {
	// MacroNames are the names of function-like invocations to expand.
	MacroNames []string `yaml:"macro_names" envconfig:"UNCONST_MACRO_NAMES"`
	// AttributeNames are the names of attributes to expand.
	AttributeNames []string `yaml:"attribute_names" envconfig:"UNCONST_ATTRIBUTE_NAMES"`
	// MarkerTrait is the trait whose ~const bounds are removed.
	MarkerTrait string `yaml:"marker_trait" envconfig:"UNCONST_MARKER_TRAIT"`
	// DebugString expands function-like invocations
	// to a string constant of their expansion.
	DebugString *bool `yaml:"debug_string" envconfig:"UNCONST_DEBUG_STRING"`
	// Jobs is the maximum number of files processed at once.
	Jobs int `yaml:"jobs" envconfig:"UNCONST_JOBS"`
	// Verify checks each expansion with the Rust grammar.
	Verify *bool `yaml:"verify" envconfig:"UNCONST_VERIFY"`
	// KeepGoing replaces failed invocations with compile_error!
	// instead of failing the file.
	KeepGoing *bool `yaml:"keep_going" envconfig:"UNCONST_KEEP_GOING"`
}

// Default returns the default configuration.
func Default() Config {
	f := false
	return Config{
		MacroNames:     []string{DefaultName},
		AttributeNames: []string{DefaultName},
		MarkerTrait:    ast.DefaultMarker,
		DebugString:    &f,
		Jobs:           4,
		Verify:         &f,
		KeepGoing:      &f,
	}
}

// Apply returns c with the set fields of o applied over it.
func (c Config) Apply(o Config) Config {
	if o.MacroNames != nil {
		c.MacroNames = o.MacroNames
	}
	if o.AttributeNames != nil {
		c.AttributeNames = o.AttributeNames
	}
	if o.MarkerTrait != "" {
		c.MarkerTrait = o.MarkerTrait
	}
	if o.DebugString != nil {
		c.DebugString = o.DebugString
	}
	if o.Jobs != 0 {
		c.Jobs = o.Jobs
	}
	if o.Verify != nil {
		c.Verify = o.Verify
	}
	if o.KeepGoing != nil {
		c.KeepGoing = o.KeepGoing
	}
	return c
}

// Validate returns an error if the configuration cannot be used.
func (c Config) Validate() error {
	switch {
	case c.Jobs < 0:
		return fmt.Errorf("jobs must be positive, got %d", c.Jobs)
	case len(c.MacroNames) == 0 && len(c.AttributeNames) == 0:
		return errors.New("no macro or attribute names")
	}
	return nil
}

// Load returns the default configuration
// with the file at path and then the environment applied over it.
// If path is empty, DefaultPath is read if it exists.
// Environment variables are looked up with lookup,
// or os.LookupEnv if lookup is nil.
func Load(fs afero.Fs, path string, lookup func(string) (string, bool)) (Config, error) {
	conf := Default()
	disk, err := readFile(fs, path)
	if err != nil {
		return conf, err
	}
	conf = conf.Apply(disk)
	env, err := readEnv(lookup)
	if err != nil {
		return conf, err
	}
	conf = conf.Apply(env)
	return conf, conf.Validate()
}

func readFile(fs afero.Fs, path string) (Config, error) {
	var conf Config
	name := path
	if name == "" {
		name = DefaultPath
	}
	data, err := afero.ReadFile(fs, name)
	switch {
	case path == "" && errors.Is(err, os.ErrNotExist):
		return conf, nil
	case err != nil:
		return conf, err
	}
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return conf, fmt.Errorf("%s: %w", name, err)
	}
	return conf, nil
}

func readEnv(lookup func(string) (string, bool)) (Config, error) {
	var conf Config
	if lookup == nil {
		lookup = os.LookupEnv
	}
	err := envconfig.Process("", &conf, lookup)
	return conf, err
}

// Bool returns the value of b, or false if it is nil.
func Bool(b *bool) bool { return b != nil && *b }
