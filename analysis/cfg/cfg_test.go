package cfg_test

import (
	"go/ast"
	"go/token"
	"testing"

	"github.com/cs-au-dk/monotone/analysis/cfg"
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

const branchSrc = `package p

func fun(b bool) {
	x := 1
	if b {
		x = 2
	} else {
		x = 3
	}
	_ = x
}`

const loopSrc = `package p

func fun(b bool) {
	x := 1
	for b {
		x = 2
	}
	_ = x
}`

func TestEdgesAreSymmetric(t *testing.T) {
	for _, src := range []string{branchSrc, loopSrc} {
		g := buildCfg(t, src, "fun")

		for _, b := range g.Blocks() {
			for _, succ := range b.Succs() {
				found := false
				for _, pred := range succ.Preds() {
					found = found || pred == b
				}
				if !found {
					t.Errorf("block %d is not a predecessor of its successor %d",
						b.Index(), succ.Index())
				}
			}
		}
	}
}

func TestReversePostorder(t *testing.T) {
	g := buildCfg(t, loopSrc, "fun")

	if g.Entry().Order() != 0 {
		t.Errorf("entry block has order %d, expected 0", g.Entry().Order())
	}

	seen := map[int]bool{}
	for _, b := range g.Blocks() {
		if seen[b.Order()] {
			t.Errorf("order %d assigned twice", b.Order())
		}
		seen[b.Order()] = true
	}

	prev := -1
	for _, b := range g.InOrder() {
		if b.Order() <= prev {
			t.Error("InOrder is not sorted by block order")
		}
		prev = b.Order()
	}

	// Outside of cycles, every block is ordered after its predecessors.
	g = buildCfg(t, branchSrc, "fun")
	for _, b := range g.Blocks() {
		for _, succ := range b.Succs() {
			if succ.Order() <= b.Order() {
				t.Errorf("successor %d ordered before block %d in an acyclic graph",
					succ.Index(), b.Index())
			}
		}
	}
}

func TestUnreachableBlocksAreNotLive(t *testing.T) {
	g := buildCfg(t, `package p

func fun() int {
	x := 1
	return x
	x = 2
	return x
}`, "fun")

	dead := 0
	for _, b := range g.Blocks() {
		if !b.Live() {
			dead++
			continue
		}

		if b == g.Entry() {
			continue
		}
		reachable := false
		for _, pred := range b.Preds() {
			reachable = reachable || pred.Live()
		}
		if !reachable {
			t.Errorf("live block %d has no live predecessor", b.Index())
		}
	}
	if dead == 0 {
		t.Fatal("expected at least one dead block")
	}
	if !g.Entry().Live() {
		t.Error("entry block must be live")
	}
}

func TestNewRequiresBody(t *testing.T) {
	fd := &ast.FuncDecl{Name: ast.NewIdent("fun")}
	if _, err := cfg.New(token.NewFileSet(), fd); err == nil {
		t.Error("expected an error for a function without a body")
	}
}

func TestForEachNode(t *testing.T) {
	g := buildCfg(t, branchSrc, "fun")

	count := 0
	g.ForEachNode(func(b *cfg.Block, n ast.Node) {
		count++
	})

	total := 0
	for _, b := range g.Blocks() {
		total += len(b.Nodes())
	}
	if count != total {
		t.Errorf("ForEachNode visited %d nodes, blocks hold %d", count, total)
	}
}
