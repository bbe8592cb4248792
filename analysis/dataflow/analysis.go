package dataflow

import (
	"go/ast"

	L "github.com/cs-au-dk/monotone/analysis/lattice"
)

// Analysis is the contract a concrete forward, monotone dataflow analysis
// must satisfy to plug into the fixpoint engine. The element type E carries
// the lattice operations; the analysis value carries the transfer function
// and whatever auxiliary, externally maintained program state it needs to
// read (e.g., type and constant information).
//
// Transfer must be pure with respect to engine state: it may consult
// auxiliary state, but communicates exclusively through its return value.
// It must also be monotone w.r.t. the lattice order; the engine does not
// detect violations, which surface as non-termination or results breaking
// the entry/exit invariants.
type Analysis[E L.Element[E]] interface {
	// Bottom returns the ⊥ element all block states start from.
	Bottom() E

	// InitialElement is the element seeded at the entry block of the CFG.
	// By convention this is ⊥.
	InitialElement() E

	// Transfer returns the element holding immediately after the given AST
	// node, given the element holding immediately before it.
	Transfer(node ast.Node, elem E) E
}
