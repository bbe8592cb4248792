package dataflow

import (
	"fmt"
	"go/ast"
	"go/token"
	"sort"

	"github.com/cs-au-dk/monotone/analysis/cfg"
	L "github.com/cs-au-dk/monotone/analysis/lattice"
	"github.com/cs-au-dk/monotone/utils"
	i "github.com/cs-au-dk/monotone/utils/indenter"

	"github.com/benbjohnson/immutable"
)

// Result is the read-only snapshot of a completed engine run. It is never
// mutated afterwards, so it may be shared freely between consumers
// (verification harnesses, printers, later passes).
type Result[E L.Element[E]] struct {
	g     *cfg.Cfg
	entry []E
	exit  []E

	// after maps every analyzed AST node to the element holding immediately
	// after it. Nodes of unreachable blocks are absent.
	after *immutable.Map[ast.Node, E]

	// points holds every CFG node, analyzed or not, sorted by source
	// position, for deterministic iteration and positional lookup. Keeping
	// unanalyzed nodes ensures that a position inside unreachable code
	// resolves to its own (stateless) node rather than silently binding to
	// an earlier analyzed statement.
	points []ast.Node
}

func makeResult[E L.Element[E]](g *cfg.Cfg, entry, exit []E, after [][]E) *Result[E] {
	m := immutable.NewMap[ast.Node, E](utils.PointerHasher[ast.Node]{})
	points := []ast.Node{}

	for _, b := range g.Blocks() {
		states := after[b.Index()]
		for j, n := range b.Nodes() {
			if states != nil {
				m = m.Set(n, states[j])
			}
			points = append(points, n)
		}
	}

	// Sort by end position; ties (a node and a subexpression sharing an end)
	// are broken by start position so the innermost node comes last.
	sort.Slice(points, func(x, y int) bool {
		nx, ny := points[x], points[y]
		if nx.End() != ny.End() {
			return nx.End() < ny.End()
		}
		return nx.Pos() < ny.Pos()
	})

	return &Result[E]{
		g:      g,
		entry:  entry,
		exit:   exit,
		after:  m,
		points: points,
	}
}

// Cfg returns the CFG the result was computed over.
func (r *Result[E]) Cfg() *cfg.Cfg {
	return r.g
}

// EntryOf returns the element holding at entry of the given block.
// Blocks unreachable from the entry block report ⊥.
func (r *Result[E]) EntryOf(b *cfg.Block) E {
	return r.entry[b.Index()]
}

// ExitOf returns the element holding at exit of the given block.
// Blocks unreachable from the entry block report ⊥.
func (r *Result[E]) ExitOf(b *cfg.Block) E {
	return r.exit[b.Index()]
}

// StateAfter returns the element holding immediately after the given node.
// The second result is false if the node was never analyzed (it belongs to
// an unreachable block, or to a different function).
func (r *Result[E]) StateAfter(n ast.Node) (E, bool) {
	return r.after.Get(n)
}

// StateAt returns the element holding at the given source position: the
// state after the nearest CFG node ending at or before pos. The second
// result is false if no node precedes the position, or if the nearest node
// was never analyzed. This is how program points inside unreachable code
// report "no information", distinct from a ⊥ element inside reachable code.
func (r *Result[E]) StateAt(pos token.Pos) (E, bool) {
	n, found := r.NodeAt(pos)
	if !found {
		var zero E
		return zero, false
	}
	return r.after.Get(n)
}

// NodeAt returns the CFG node governing the given source position: the
// nearest node ending at or before pos.
func (r *Result[E]) NodeAt(pos token.Pos) (ast.Node, bool) {
	// First index with End() > pos; the node before it is the nearest.
	idx := sort.Search(len(r.points), func(i int) bool {
		return r.points[i].End() > pos
	})
	if idx == 0 {
		return nil, false
	}
	return r.points[idx-1], true
}

// Points returns every CFG node in source-position order.
func (r *Result[E]) Points() []ast.Node {
	points := make([]ast.Node, len(r.points))
	copy(points, r.points)
	return points
}

// ForEach executes the given procedure for every analyzed node and its
// after-state, in source-position order.
func (r *Result[E]) ForEach(do func(n ast.Node, state E)) {
	for _, n := range r.points {
		if state, found := r.after.Get(n); found {
			do(n, state)
		}
	}
}

// AllStates returns the full point-to-state mapping as an immutable map.
func (r *Result[E]) AllStates() *immutable.Map[ast.Node, E] {
	return r.after
}

func (r *Result[E]) String() string {
	fset := r.g.FileSet()

	strs := []string{}
	r.ForEach(func(n ast.Node, state E) {
		strs = append(strs, fmt.Sprintf("%s: %s", fset.Position(n.Pos()), state))
	})

	return i.Indenter().Start(r.g.Fun().Name.Name + ": {").
		NestStringsSep(",", strs...).
		End("}")
}
