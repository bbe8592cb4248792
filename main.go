package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cs-au-dk/monotone/analysis/cfg"
	"github.com/cs-au-dk/monotone/analysis/constprop"
	"github.com/cs-au-dk/monotone/analysis/dataflow"
	"github.com/cs-au-dk/monotone/config"
	"github.com/cs-au-dk/monotone/pkgutil"
	"github.com/cs-au-dk/monotone/utils"
	"github.com/cs-au-dk/monotone/utils/dot"
)

var opts = utils.Opts()

// configuration turns the command line flags into a Config and overlays
// the configuration file on top, if one was given.
func configuration() config.Config {
	conf := config.Config{
		Function:       opts.Function(),
		MaxBlockVisits: opts.MaxIterations(),
		Task:           opts.Task().String(),
		Visualize:      opts.Visualize(),
		OutputFormat:   opts.OutputFormat(),
		Nodesep:        opts.Nodesep(),
		Minlen:         opts.Minlen(),
	}

	path := opts.ConfigPath()
	if path == "" {
		return conf
	}

	file, err := config.Load(path)
	if err != nil {
		log.Fatal(err)
	}

	if file.Function != "" {
		conf.Function = file.Function
	}
	if file.MaxBlockVisits != 0 {
		conf.MaxBlockVisits = file.MaxBlockVisits
	}
	if file.Task != "" {
		conf.Task = file.Task
	}
	if file.Visualize {
		conf.Visualize = true
	}
	if file.OutputFormat != "" {
		conf.OutputFormat = file.OutputFormat
	}
	if file.Nodesep != 0 {
		conf.Nodesep = file.Nodesep
	}
	if file.Minlen != 0 {
		conf.Minlen = file.Minlen
	}

	return conf
}

func main() {
	utils.ParseArgs()

	args := utils.Args()
	if len(args) != 1 {
		log.Fatal("expected exactly one package query as argument")
	}
	if !opts.Task().IsValid() {
		log.Fatalf("unrecognized task: %s", opts.Task())
	}

	// The configuration file only carries tasks that pass config.Load's own
	// validation, so conf.Task is valid from here on.
	conf := configuration()
	utils.SetDotLayout(conf.Nodesep, conf.Minlen)

	pkgs, err := pkgutil.LoadPackages(pkgutil.LoadConfig{}, args[0])
	if err != nil {
		log.Fatalf("failed to load packages: %v", err)
	}

	fset, info, fun, err := pkgutil.FindFunction(pkgs, conf.Function)
	if err != nil {
		log.Fatal(err)
	}

	g, err := cfg.New(fset, fun)
	if err != nil {
		log.Fatal(err)
	}

	defer utils.TimeTrack(time.Now(), "constant propagation")

	res, err := constprop.RunOn(g, info,
		dataflow.WithMaxBlockVisits(conf.MaxBlockVisits))
	if err != nil {
		log.Fatal(err)
	}

	switch {
	case conf.IsCfgToDot():
		cfgToDot(g, res)
	default:
		fmt.Println(res)
	}

	if conf.Visualize {
		visualize(conf, g, res)
	}
}

// annotation renders the computed entry and exit states of a block for
// inclusion in its dot node label.
func annotation(res *dataflow.Result[constprop.Element]) func(b *cfg.Block) string {
	return func(b *cfg.Block) string {
		return fmt.Sprintf("entry: %s | exit: %s", res.EntryOf(b), res.ExitOf(b))
	}
}

func cfgToDot(g *cfg.Cfg, res *dataflow.Result[constprop.Element]) {
	name := g.Fun().Name.Name
	file, err := os.Create(name + ".dot")
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	if err := g.Visualize(annotation(res)).WriteDot(file); err != nil {
		log.Fatalf("failed to write dot graph: %v", err)
	}
	log.Printf("wrote %s.dot\n", name)
}

func visualize(conf config.Config, g *cfg.Cfg, res *dataflow.Result[constprop.Element]) {
	var buf bytes.Buffer
	if err := g.Visualize(annotation(res)).WriteDot(&buf); err != nil {
		log.Fatalf("failed to write dot graph: %v", err)
	}

	img, err := dot.DotToImage("", conf.OutputFormat, buf.Bytes())
	if err != nil {
		log.Fatalf("failed to render CFG: %v", err)
	}
	log.Printf("rendered CFG of %s to %s\n", g.Fun().Name.Name, img)
}
