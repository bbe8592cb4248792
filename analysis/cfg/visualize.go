package cfg

import (
	"fmt"
	"go/printer"
	"strings"

	"github.com/cs-au-dk/monotone/utils"
	"github.com/cs-au-dk/monotone/utils/dot"
)

var opts = utils.Opts()

// Visualize creates a dot graph of the CFG. The optional annotate function
// supplies an extra label line per block (e.g., computed entry/exit states).
func (c *Cfg) Visualize(annotate func(b *Block) string) *dot.DotGraph {
	G := &dot.DotGraph{
		Title: c.fun.Name.Name,
		Options: map[string]string{
			"minlen":  fmt.Sprint(opts.Minlen()),
			"nodesep": fmt.Sprint(opts.Nodesep()),
			"rankdir": "TB",
		},
	}

	blockToDotNode := make(map[*Block]*dot.DotNode)

	for _, b := range c.InOrder() {
		label := b.String()

		lines := []string{}
		for _, n := range b.Nodes() {
			var sb strings.Builder
			if err := printer.Fprint(&sb, c.fset, n); err == nil {
				lines = append(lines, sb.String())
			}
		}
		if len(lines) > 0 {
			label += "\n" + strings.Join(lines, "\n")
		}

		if annotate != nil {
			label += "\n" + annotate(b)
		}

		dnode := &dot.DotNode{
			ID: fmt.Sprintf("%s-block-%d", c.fun.Name.Name, b.Index()),
			Attrs: dot.DotAttrs{
				"label": label,
			},
		}
		if !b.Live() {
			dnode.Attrs["fillcolor"] = "#f2f2f2"
		}

		blockToDotNode[b] = dnode
		G.Nodes = append(G.Nodes, dnode)
	}

	for _, b := range c.InOrder() {
		for _, succ := range b.Succs() {
			G.Edges = append(G.Edges, &dot.DotEdge{
				From: blockToDotNode[b],
				To:   blockToDotNode[succ],
			})
		}
	}

	return G
}
