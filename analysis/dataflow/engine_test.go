package dataflow_test

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"
	"testing"

	"github.com/cs-au-dk/monotone/analysis/cfg"
	"github.com/cs-au-dk/monotone/analysis/dataflow"
	L "github.com/cs-au-dk/monotone/analysis/lattice"
	"github.com/cs-au-dk/monotone/pkgutil"
)

func buildCfg(t *testing.T, src string, fun string) *cfg.Cfg {
	t.Helper()

	res, err := pkgutil.LoadSource(src)
	if err != nil {
		t.Fatal(err)
	}
	fd, err := res.FunctionByName(fun)
	if err != nil {
		t.Fatal(err)
	}
	g, err := cfg.New(res.Fset, fd)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// litAnalysis tracks the integer literal assigned last, without consulting
// type information. Enough structure to drive the engine through joins.
type litAnalysis struct {
	initial L.Flat[int]
}

func (a litAnalysis) Bottom() L.Flat[int] {
	return L.FlatBot[int]()
}

func (a litAnalysis) InitialElement() L.Flat[int] {
	return a.initial
}

func (a litAnalysis) Transfer(n ast.Node, e L.Flat[int]) L.Flat[int] {
	assign, ok := n.(*ast.AssignStmt)
	if !ok || len(assign.Rhs) != 1 {
		return e
	}
	if lit, ok := assign.Rhs[0].(*ast.BasicLit); ok && lit.Kind == token.INT {
		if v, err := strconv.Atoi(lit.Value); err == nil {
			return L.FlatValue(v)
		}
	}
	return e
}

const loopSrc = `package p

func fun(b bool) {
	x := 1
	for b {
		x = 2
	}
	_ = x
}`

// blockWithBlankAssign finds the block holding the final "_ = x" statement.
func blockWithBlankAssign(t *testing.T, g *cfg.Cfg) *cfg.Block {
	t.Helper()

	for _, b := range g.Blocks() {
		for _, n := range b.Nodes() {
			if assign, ok := n.(*ast.AssignStmt); ok {
				if id, ok := assign.Lhs[0].(*ast.Ident); ok && id.Name == "_" {
					return b
				}
			}
		}
	}
	t.Fatal("no block with a blank assignment")
	return nil
}

func TestForwardConvergesOnLoop(t *testing.T) {
	g := buildCfg(t, loopSrc, "fun")
	an := litAnalysis{initial: L.FlatBot[int]()}

	res, err := dataflow.RunForward[L.Flat[int]](g, an)
	if err != nil {
		t.Fatal(err)
	}
	if err := dataflow.CheckInvariants[L.Flat[int]](g, an, res); err != nil {
		t.Error(err)
	}

	// After the loop both 1 (zero iterations) and 2 are possible.
	if exit := res.ExitOf(blockWithBlankAssign(t, g)); !exit.IsTop() {
		t.Errorf("exit after the loop is %s, expected ⊤", exit)
	}
}

func TestInitialElementSeedsEntry(t *testing.T) {
	g := buildCfg(t, `package p

func fun() {
	println()
}`, "fun")
	an := litAnalysis{initial: L.FlatValue(7)}

	res, err := dataflow.RunForward[L.Flat[int]](g, an)
	if err != nil {
		t.Fatal(err)
	}

	if entry := res.EntryOf(g.Entry()); !entry.Is(7) {
		t.Errorf("entry of the entry block is %s, expected 7", entry)
	}
}

func TestUnreachableBlocksStayBottom(t *testing.T) {
	g := buildCfg(t, `package p

func fun() int {
	x := 1
	return x
	x = 2
	return x
}`, "fun")
	an := litAnalysis{initial: L.FlatBot[int]()}

	res, err := dataflow.RunForward[L.Flat[int]](g, an)
	if err != nil {
		t.Fatal(err)
	}

	dead := 0
	for _, b := range g.Blocks() {
		if b.Live() {
			continue
		}
		dead++

		if !res.EntryOf(b).IsBot() || !res.ExitOf(b).IsBot() {
			t.Errorf("unreachable block %d has non-⊥ states", b.Index())
		}
		for _, n := range b.Nodes() {
			if _, found := res.StateAfter(n); found {
				t.Errorf("unreachable block %d has a recorded node state", b.Index())
			}
		}
	}
	if dead == 0 {
		t.Fatal("expected at least one unreachable block")
	}
}

// unstable never lets an exit state settle; the visit cap is the only way
// out of the fixpoint loop.
type unstable struct {
	n int
}

func (u *unstable) Bottom() L.Flat[int] {
	return L.FlatBot[int]()
}

func (u *unstable) InitialElement() L.Flat[int] {
	return L.FlatBot[int]()
}

func (u *unstable) Transfer(ast.Node, L.Flat[int]) L.Flat[int] {
	u.n++
	return L.FlatValue(u.n)
}

func TestMaxBlockVisits(t *testing.T) {
	g := buildCfg(t, loopSrc, "fun")

	_, err := dataflow.RunForward[L.Flat[int]](g, &unstable{},
		dataflow.WithMaxBlockVisits(100))
	if err == nil {
		t.Fatal("expected the visit cap to abort the run")
	}
	if !strings.Contains(err.Error(), "fixpoint not reached") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResultStateAt(t *testing.T) {
	g := buildCfg(t, loopSrc, "fun")
	an := litAnalysis{initial: L.FlatBot[int]()}

	res, err := dataflow.RunForward[L.Flat[int]](g, an)
	if err != nil {
		t.Fatal(err)
	}

	// Before the first node of the function no state is recorded.
	if _, found := res.StateAt(g.Fun().Pos()); found {
		t.Error("found a state before the first program point")
	}

	// At the end of the function the loop join has degraded to ⊤.
	if state, found := res.StateAt(g.Fun().End()); !found || !state.IsTop() {
		t.Errorf("state at function end is %s (found=%v), expected ⊤", state, found)
	}
}
