package utils

import (
	"flag"
	"fmt"
	"strings"
)

type options struct {
	function     string
	configPath   string
	outputFormat string
	task         string
	nodesep      float64
	minlen       uint
	maxIter      uint
	noColorize   bool
	verbose      bool
	visualize    bool
}

const (
	_PRINT_STATES = iota
	_CFG_TO_DOT
)

func CanColorize(col func(...interface{}) string) func(...interface{}) string {
	if opts.noColorize {
		return func(is ...interface{}) string {
			return fmt.Sprintf(strings.Repeat("%s", len(is)), is...)
		}
	}
	return col
}

var task = []struct{ flag, explanation string }{{
	"print-states",
	"Run the dataflow analysis and print the lattice element recorded at every program point",
}, {
	"cfg-to-dot",
	"Create a dot graph of the control-flow graph, annotated with computed entry/exit states",
}}

var opts = &options{}

type optInterface struct{}

type taskInterface struct{}

func Opts() optInterface {
	return optInterface{}
}

func (optInterface) NoColorize() bool {
	return opts.noColorize
}

func (optInterface) Function() string {
	return opts.function
}

func (optInterface) ConfigPath() string {
	return opts.configPath
}

func (optInterface) OutputFormat() string {
	return opts.outputFormat
}

func (optInterface) Minlen() uint {
	return opts.minlen
}

func (optInterface) Nodesep() float64 {
	return opts.nodesep
}

func (optInterface) MaxIterations() int {
	return int(opts.maxIter)
}

func (optInterface) Task() taskInterface {
	return taskInterface{}
}

func (taskInterface) IsPrintStates() bool {
	return opts.task == task[_PRINT_STATES].flag
}

func (taskInterface) IsCfgToDot() bool {
	return opts.task == task[_CFG_TO_DOT].flag
}

func (taskInterface) String() string {
	return opts.task
}

func (taskInterface) IsValid() bool {
	for _, t := range task {
		if opts.task == t.flag {
			return true
		}
	}
	return false
}

func (optInterface) Verbose() bool {
	return opts.verbose
}

func (optInterface) Visualize() bool {
	return opts.visualize
}

// SetDotLayout overrides the graphviz layout settings, e.g. with values
// read from a configuration file.
func SetDotLayout(nodesep float64, minlen uint) {
	opts.nodesep = nodesep
	opts.minlen = minlen
}

// OnVerbose calls the given thunk if verbose logging is enabled.
func (optInterface) OnVerbose(do func()) {
	if opts.verbose {
		do()
	}
}

func init() {
	taskFlag := "\n"
	for _, task := range task {
		taskFlag += task.flag + " -- " + task.explanation + "\n"
	}
	taskFlag += "\n"

	flag.StringVar(&(opts.function), "fun", "main", "target a specific function w. r. t. the given task.\n"+
		"- Function names need not be fully qualified w.r.t. package name. If a simple name is provided, "+
		"the framework will search for a function matching that name across all loaded packages and "+
		"return the first match.\n")
	flag.StringVar(&(opts.configPath), "config", "", "path to a YAML analysis configuration file")
	flag.StringVar(&(opts.outputFormat), "format", "svg", "output file format [svg | png | jpg | ...]")
	flag.StringVar(&(opts.task), "task", task[_PRINT_STATES].flag, "Set the task to do during execution. Options:"+taskFlag)
	flag.UintVar(&(opts.minlen), "minlen", 2, "Minimum edge length (for wider output).")
	flag.Float64Var(&(opts.nodesep), "nodesep", 0.35, "Minimum space between two adjacent nodes in the same rank (for taller output).")
	flag.UintVar(&(opts.maxIter), "max-iterations", 0, "Cap on fixpoint engine block visits. 0 disables the cap. "+
		"Overridden by the configuration file, if one sets it.")
	flag.BoolVar(&(opts.noColorize), "no-colorize", false, "Disable pretty printer colorization")
	flag.BoolVar(&(opts.verbose), "verbose", false, "Enable verbose logging")
	flag.BoolVar(&(opts.visualize), "visualize", false, "Render the annotated CFG to an image via graphviz after analysis")
}

func ParseArgs() {
	flag.Parse()
}

// Args returns the positional (non-flag) command line arguments.
func Args() []string {
	return flag.Args()
}
