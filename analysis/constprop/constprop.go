// Package constprop implements a simplistic version of constant propagation
// as a worked instance of a forward, monotone dataflow analysis. The
// analysis only tracks one variable at a time, namely the one with the most
// recent declaration or assignment encountered.
//
// N.B. The analysis is deliberately simplistic and leaves out details a
// production analysis would need. Most notably, the transfer function does
// not account for the variable's address possibly escaping, after which
// writes through the escaped reference invalidate the tracked value
// undetected.
package constprop

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"

	"github.com/cs-au-dk/monotone/analysis/cfg"
	"github.com/cs-au-dk/monotone/analysis/dataflow"
	L "github.com/cs-au-dk/monotone/analysis/lattice"
	"github.com/cs-au-dk/monotone/utils"

	"github.com/fatih/color"
)

var colorize = struct {
	Key   func(...interface{}) string
	Const func(...interface{}) string
}{
	Key: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgYellow).SprintFunc())(is...)
	},
	Const: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiWhite).SprintFunc())(is...)
	},
}

// VarValue records that a variable holds the given constant value at the
// program point the lattice element is associated with, on all paths
// through the program.
type VarValue struct {
	Var   *types.Var
	Value int64
}

func (vv VarValue) String() string {
	return colorize.Key(vv.Var.Name()) + " = " + colorize.Const(fmt.Sprint(vv.Value))
}

// Element is a member of the constant propagation lattice: the flat lattice
// over variable/value pairs. ⊥ is "no information yet", ⊤ is "varies":
// either more than one value is possible, or evaluation failed.
type Element = L.Flat[VarValue]

// Bot returns the ⊥ element of the constant propagation lattice.
func Bot() Element {
	return L.FlatBot[VarValue]()
}

// Top returns the ⊤ element of the constant propagation lattice.
func Top() Element {
	return L.FlatTop[VarValue]()
}

// Const returns the element recording that v holds the constant value val.
func Const(v *types.Var, val int64) Element {
	return L.FlatValue(VarValue{Var: v, Value: val})
}

// Analysis is the constant propagation transfer function. Its only
// auxiliary program state is the type and constant-folding information
// maintained by the go/types checker.
type Analysis struct {
	info *types.Info
}

var _ dataflow.Analysis[Element] = (*Analysis)(nil)

// New creates a constant propagation analysis reading the given
// type-checker information.
func New(info *types.Info) *Analysis {
	return &Analysis{info: info}
}

// Lattice returns the value domain of the analysis.
func (a *Analysis) Lattice() L.FlatLattice[VarValue] {
	return L.FlatLattice[VarValue]{}
}

func (a *Analysis) Bottom() Element {
	return Bot()
}

func (a *Analysis) InitialElement() Element {
	return Bot()
}

// Transfer recognizes exactly three statement shapes:
//
//  1. declaration of an integer variable with an initializer (a ValueSpec,
//     or Go's := define form),
//  2. a plain single assignment x = rhs,
//  3. a compound assignment x op= e (including x++ and x--, which Go
//     defines as x += 1 and x -= 1).
//
// Every other node is a no-op. For shapes 1 and 2 the right-hand side is
// evaluated through the type checker's constant folding; a side that does
// not fold to an integer constant (a call result, say) degrades to ⊤.
// Shape 3 yields ⊤ unconditionally, even when the operation is provably
// value-preserving (x += 0): compound assignments are never partially
// analyzed. Conservative, and intentional.
func (a *Analysis) Transfer(node ast.Node, elem Element) Element {
	switch n := node.(type) {
	case *ast.ValueSpec:
		return a.transferDecl(n, elem)
	case *ast.AssignStmt:
		return a.transferAssign(n, elem)
	case *ast.IncDecStmt:
		return a.transferIncDec(n, elem)
	}
	return elem
}

func (a *Analysis) transferDecl(spec *ast.ValueSpec, elem Element) Element {
	if len(spec.Names) != 1 || len(spec.Values) != 1 {
		return elem
	}

	v := a.declaredVar(spec.Names[0])
	if v == nil || !isInteger(v.Type()) {
		return elem
	}

	if val, ok := a.evalInt(spec.Values[0]); ok {
		return Const(v, val)
	}
	return Top()
}

func (a *Analysis) transferAssign(assign *ast.AssignStmt, elem Element) Element {
	if len(assign.Lhs) != 1 {
		// Tuple assignments are not one of the recognized shapes.
		return elem
	}

	id, ok := assign.Lhs[0].(*ast.Ident)
	if !ok {
		return elem
	}

	switch assign.Tok {
	case token.DEFINE:
		v := a.declaredVar(id)
		if v == nil || !isInteger(v.Type()) {
			return elem
		}
		if val, ok := a.evalInt(assign.Rhs[0]); ok {
			return Const(v, val)
		}
		return Top()

	case token.ASSIGN:
		v := a.usedVar(id)
		if v == nil {
			return elem
		}
		if val, ok := a.evalInt(assign.Rhs[0]); ok {
			return Const(v, val)
		}
		return Top()

	default:
		// Compound assignment resets the tracked variable to "varies",
		// regardless of whether the right-hand side could be evaluated.
		if a.usedVar(id) == nil {
			return elem
		}
		return Top()
	}
}

func (a *Analysis) transferIncDec(stmt *ast.IncDecStmt, elem Element) Element {
	id, ok := stmt.X.(*ast.Ident)
	if !ok || a.usedVar(id) == nil {
		return elem
	}
	return Top()
}

// declaredVar resolves an identifier in defining position to the variable
// it declares, or nil.
func (a *Analysis) declaredVar(id *ast.Ident) *types.Var {
	if id.Name == "_" {
		return nil
	}
	v, _ := a.info.Defs[id].(*types.Var)
	return v
}

// usedVar resolves an identifier in use position to the variable it refers
// to, or nil.
func (a *Analysis) usedVar(id *ast.Ident) *types.Var {
	if id.Name == "_" {
		return nil
	}
	v, _ := a.info.Uses[id].(*types.Var)
	return v
}

// evalInt asks the type checker's constant folder whether the expression
// denotes an integer constant. The folder stands in for full expression
// evaluation.
func (a *Analysis) evalInt(e ast.Expr) (int64, bool) {
	tv, found := a.info.Types[e]
	if !found || tv.Value == nil {
		return 0, false
	}

	v := constant.ToInt(tv.Value)
	if v.Kind() != constant.Int {
		return 0, false
	}

	return constant.Int64Val(v)
}

func isInteger(t types.Type) bool {
	basic, ok := t.Underlying().(*types.Basic)
	return ok && basic.Info()&types.IsInteger != 0
}

// RunOn runs constant propagation over the given function CFG.
func RunOn(g *cfg.Cfg, info *types.Info, options ...dataflow.Option) (*dataflow.Result[Element], error) {
	return dataflow.RunForward[Element](g, New(info), options...)
}
