package constprop_test

import (
	"testing"

	"github.com/cs-au-dk/monotone/analysis/constprop"
	tu "github.com/cs-au-dk/monotone/testutil"

	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
)

type matcher = tu.Matcher[constprop.Element]

func run(t *testing.T, src string, expectations map[string]matcher) {
	t.Helper()
	tu.CheckDataflow(t, src, "fun", tu.ConstProp, expectations)
}

func TestJustInit(t *testing.T) {
	run(t, `package p

func fun() {
	var target int = 1 //@ state(p)
	_ = target
}`, map[string]matcher{
		"p": tu.HasConstantVal(1),
	})
}

// The analysis tracks the variable seen last.
func TestTwoVariables(t *testing.T) {
	run(t, `package p

func fun() {
	var target int = 1 //@ state(p1)
	var other int = 2 //@ state(p2)
	target = 3 //@ state(p3)
	_, _ = target, other
}`, map[string]matcher{
		"p1": tu.HasConstantVal(1),
		"p2": tu.HasConstantVal(2),
		"p3": tu.HasConstantVal(3),
	})
}

func TestAssignment(t *testing.T) {
	run(t, `package p

func fun() {
	var target int = 1 //@ state(p1)
	target = 2 //@ state(p2)
	_ = target
}`, map[string]matcher{
		"p1": tu.HasConstantVal(1),
		"p2": tu.HasConstantVal(2),
	})
}

// Go's short variable declaration behaves like a declaration with an
// initializer.
func TestDefineAssignment(t *testing.T) {
	run(t, `package p

func fun() {
	target := 1 //@ state(p1)
	target = 2 //@ state(p2)
	_ = target
}`, map[string]matcher{
		"p1": tu.HasConstantVal(1),
		"p2": tu.HasConstantVal(2),
	})
}

func TestAssignmentCall(t *testing.T) {
	run(t, `package p

func g() int { return 42 }

func fun() {
	var target int
	target = g() //@ state(p)
	_ = target
}`, map[string]matcher{
		"p": tu.Varies(),
	})
}

func TestAssignmentBinOp(t *testing.T) {
	run(t, `package p

func fun() {
	var target int
	target = 2 + 3 //@ state(p)
	_ = target
}`, map[string]matcher{
		"p": tu.HasConstantVal(5),
	})
}

// Compound assignment degrades to ⊤ even though the result would be
// computable.
func TestPlusAssignment(t *testing.T) {
	run(t, `package p

func fun() {
	var target int = 1 //@ state(p1)
	target += 2 //@ state(p2)
	_ = target
}`, map[string]matcher{
		"p1": tu.HasConstantVal(1),
		"p2": tu.Varies(),
	})
}

// Increment is a compound assignment in disguise.
func TestIncrement(t *testing.T) {
	run(t, `package p

func fun() {
	var target int = 1 //@ state(p1)
	target++ //@ state(p2)
	_ = target
}`, map[string]matcher{
		"p1": tu.HasConstantVal(1),
		"p2": tu.Varies(),
	})
}

func TestSameAssignmentInBranches(t *testing.T) {
	run(t, `package p

func fun(b bool) {
	var target int //@ state(p1)
	if b {
		target = 2 //@ state(pT)
	} else {
		target = 2 //@ state(pF)
	}
	_ = target //@ state(p2)
}`, map[string]matcher{
		"p1": tu.IsUnknown(),
		"pT": tu.HasConstantVal(2),
		"pF": tu.HasConstantVal(2),
		"p2": tu.HasConstantVal(2),
	})
}

func TestSameAssignmentInBranch(t *testing.T) {
	run(t, `package p

func fun(b bool) {
	target := 1 //@ state(p1)
	if b {
		target = 1
	}
	_ = target //@ state(p2)
}`, map[string]matcher{
		"p1": tu.HasConstantVal(1),
		"p2": tu.HasConstantVal(1),
	})
}

func TestNewVarInBranch(t *testing.T) {
	run(t, `package p

func fun(b bool) {
	if b {
		var target int //@ state(p1)
		target = 1 //@ state(p2)
		_ = target
	} else {
		var target int //@ state(p3)
		target = 1 //@ state(p4)
		_ = target
	}
}`, map[string]matcher{
		"p1": tu.IsUnknown(),
		"p2": tu.HasConstantVal(1),
		"p3": tu.IsUnknown(),
		"p4": tu.HasConstantVal(1),
	})
}

func TestDifferentAssignmentInBranches(t *testing.T) {
	run(t, `package p

func fun(b bool) {
	var target int //@ state(p1)
	if b {
		target = 1 //@ state(pT)
	} else {
		target = 2 //@ state(pF)
	}
	_ = target //@ state(p2)
}`, map[string]matcher{
		"p1": tu.IsUnknown(),
		"pT": tu.HasConstantVal(1),
		"pF": tu.HasConstantVal(2),
		"p2": tu.Varies(),
	})
}

func TestDifferentAssignmentInBranch(t *testing.T) {
	run(t, `package p

func fun(b bool) {
	target := 1 //@ state(p1)
	if b {
		target = 3
	}
	_ = target //@ state(p2)
}`, map[string]matcher{
		"p1": tu.HasConstantVal(1),
		"p2": tu.Varies(),
	})
}

const loopSrc = `package p

func fun(b bool) {
	target := 1 //@ state(p1)
	for b {
		target = 2 //@ state(p2)
	}
	_ = target //@ state(p3)
}`

// The assignment in the loop body flows back into the loop head, so after
// the loop the tracked variable may hold either value.
func TestAssignmentInLoop(t *testing.T) {
	run(t, loopSrc, map[string]matcher{
		"p1": tu.HasConstantVal(1),
		"p2": tu.HasConstantVal(2),
		"p3": tu.Varies(),
	})
}

// Program points in unreachable code carry no state at all, as opposed to
// the ⊥ of a reachable point that no assignment dominates.
func TestUnreachableCode(t *testing.T) {
	run(t, `package p

func fun() int {
	target := 1 //@ state(p1)
	return target
	target = 2 //@ state(p2)
	return target
}`, map[string]matcher{
		"p1": tu.HasConstantVal(1),
		"p2": tu.Unanalyzed[constprop.Element](),
	})
}

func TestStatesGolden(t *testing.T) {
	color.NoColor = true

	loadRes := tu.LoadFunction(t, loopSrc, "fun")
	res, err := constprop.RunOn(loadRes.Cfg, loadRes.Info)
	if err != nil {
		t.Fatal(err)
	}

	nm := tu.MakeNotesManager(t, loadRes)

	g := goldie.New(t)
	g.Assert(t, t.Name(), []byte(tu.FormatStates(nm, res)))
}
