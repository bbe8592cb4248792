// Package config implements the yaml configuration file format of the
// command line tool. Every setting has a flag counterpart; settings read
// from a file override the flags.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds the tool settings read from a yaml file.
type Config struct {
	// Function names the function to analyze.
	Function string `yaml:"function"`

	// MaxBlockVisits caps the number of block visits of a fixpoint
	// computation. 0 disables the cap.
	MaxBlockVisits int `yaml:"max-block-visits"`

	// Task selects what to do with the analyzed function. See the -task
	// flag for the recognized values.
	Task string `yaml:"task"`

	// Visualize opens a rendering of the CFG with analysis states.
	Visualize bool `yaml:"visualize"`

	// OutputFormat is the image format used when rendering CFGs.
	OutputFormat string `yaml:"output-format"`

	// Nodesep and Minlen tune the graphviz layout of rendered CFGs.
	Nodesep float64 `yaml:"nodesep"`
	Minlen  uint    `yaml:"minlen"`
}

// IsPrintStates reports whether the configured task is printing the
// analysis states.
func (c Config) IsPrintStates() bool {
	return c.Task == "print-states"
}

// IsCfgToDot reports whether the configured task is emitting the CFG in
// dot format.
func (c Config) IsCfgToDot() bool {
	return c.Task == "cfg-to-dot"
}

// Load reads and validates a configuration file. The returned Config holds
// exactly what the file sets, with zero values elsewhere, so callers can
// overlay it onto flag-derived settings. Unknown keys are rejected; they
// are almost always misspelled settings.
func Load(path string) (Config, error) {
	var conf Config

	bytes, err := os.ReadFile(path)
	if err != nil {
		return conf, fmt.Errorf("could not read configuration file: %w", err)
	}

	if err := yaml.UnmarshalStrict(bytes, &conf); err != nil {
		return conf, fmt.Errorf("%s is not a valid configuration file: %w", path, err)
	}

	if conf.MaxBlockVisits < 0 {
		return conf, fmt.Errorf("max-block-visits must be non-negative, got %d",
			conf.MaxBlockVisits)
	}
	if conf.Task != "" && !conf.IsPrintStates() && !conf.IsCfgToDot() {
		return conf, fmt.Errorf("unrecognized task: %s", conf.Task)
	}

	return conf, nil
}
