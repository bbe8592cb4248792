package dataflow

import (
	"fmt"

	"github.com/cs-au-dk/monotone/analysis/cfg"
	L "github.com/cs-au-dk/monotone/analysis/lattice"
	"github.com/cs-au-dk/monotone/utils"
	"github.com/cs-au-dk/monotone/utils/pq"
)

// Option configures a single engine run.
type Option func(*runConfig)

type runConfig struct {
	maxVisits int
}

// WithMaxBlockVisits caps how many blocks the engine may (re)process before
// giving up with an error. The fixpoint computation of a well-behaved
// analysis always terminates, so the cap is a safety valve against
// non-monotone transfer functions, not part of normal operation.
// A cap of 0 disables the check.
func WithMaxBlockVisits(n int) Option {
	return func(c *runConfig) {
		c.maxVisits = n
	}
}

// RunForward computes the least fixpoint of the analysis over the given CFG:
// for every block an entry and exit element, and for every AST node within a
// block the element holding immediately after it.
//
// Blocks are processed worklist-style in reverse postorder. A block's entry
// element is the join of its predecessors' exit elements (the entry block
// additionally joins the analysis' initial element); its exit element is
// obtained by threading the transfer function through the block's nodes.
// Successors are re-enqueued only when the exit element changed, so the loop
// terminates once nothing changes anymore.
//
// Blocks unreachable from the entry block keep ⊥ entry/exit states and
// receive no per-node states; their ⊥ exits are join identities, so they
// never influence reachable blocks.
func RunForward[E L.Element[E]](g *cfg.Cfg, an Analysis[E], options ...Option) (*Result[E], error) {
	var conf runConfig
	for _, opt := range options {
		opt(&conf)
	}

	blocks := g.Blocks()

	entry := make([]E, len(blocks))
	exit := make([]E, len(blocks))
	for i := range blocks {
		entry[i] = an.Bottom()
		exit[i] = an.Bottom()
	}
	after := make([][]E, len(blocks))

	W := pq.Empty(func(a, b *cfg.Block) bool {
		return a.Order() < b.Order()
	})
	for _, b := range g.InOrder() {
		W.Add(b)
	}

	visits := 0
	for !W.IsEmpty() {
		b := W.GetNext()
		if !b.Live() {
			continue
		}

		visits++
		if conf.maxVisits > 0 && visits > conf.maxVisits {
			return nil, fmt.Errorf(
				"fixpoint not reached after %d block visits over %d blocks; "+
					"the transfer function or join is likely non-monotone",
				conf.maxVisits, len(blocks))
		}

		// entry(b) = ⊔ { exit(p) | p ∈ preds(b) }, seeded at the CFG entry.
		in := an.Bottom()
		for _, p := range b.Preds() {
			in, _ = in.Join(exit[p.Index()])
		}
		if b == g.Entry() {
			in, _ = in.Join(an.InitialElement())
		}
		entry[b.Index()] = in

		// Thread the transfer function through the block, recording the
		// element after every node. Recomputed on every visit.
		nodes := b.Nodes()
		states := make([]E, len(nodes))
		cur := in
		for i, n := range nodes {
			cur = an.Transfer(n, cur)
			states[i] = cur
		}
		after[b.Index()] = states

		if !cur.Eq(exit[b.Index()]) {
			exit[b.Index()] = cur
			for _, succ := range b.Succs() {
				W.Add(succ)
			}
		}
	}

	utils.VerbosePrint("fixpoint of %s reached after %d block visits\n",
		g.Fun().Name.Name, visits)

	return makeResult(g, entry, exit, after), nil
}

// CheckInvariants verifies that a completed run satisfies, for every live
// block B, exit(B) = transfer-through-block(entry(B)) and
// entry(B) = ⊔ of predecessor exits. Intended for tests; a failure means the
// supplied analysis broke its contract.
func CheckInvariants[E L.Element[E]](g *cfg.Cfg, an Analysis[E], res *Result[E]) error {
	for _, b := range g.Blocks() {
		if !b.Live() {
			continue
		}

		in := an.Bottom()
		for _, p := range b.Preds() {
			in, _ = in.Join(res.ExitOf(p))
		}
		if b == g.Entry() {
			in, _ = in.Join(an.InitialElement())
		}
		if !in.Eq(res.EntryOf(b)) {
			return fmt.Errorf("block %d: recorded entry %s differs from recomputed %s",
				b.Index(), res.EntryOf(b), in)
		}

		cur := in
		for _, n := range b.Nodes() {
			cur = an.Transfer(n, cur)
		}
		if !cur.Eq(res.ExitOf(b)) {
			return fmt.Errorf("block %d: recorded exit %s differs from recomputed %s",
				b.Index(), res.ExitOf(b), cur)
		}
	}

	return nil
}
