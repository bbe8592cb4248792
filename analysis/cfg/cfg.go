package cfg

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/cs-au-dk/monotone/utils/graph"

	tcfg "golang.org/x/tools/go/cfg"
)

// Block is a basic block of a function's CFG: a straight-line, ordered
// sequence of AST nodes together with its predecessor and successor blocks.
// Blocks are owned by the Cfg that created them and are never mutated after
// construction.
type Block struct {
	inner *tcfg.Block
	succs []*Block
	preds []*Block
	live  bool
	// order is the block's position in the deterministic processing order:
	// reverse postorder for blocks reachable from the entry block, with
	// unreachable blocks trailing in index order.
	order int
}

// Index returns the index of the block within its CFG.
func (b *Block) Index() int {
	return int(b.inner.Index)
}

// Order returns the block's position in the deterministic processing order.
func (b *Block) Order() int {
	return b.order
}

// Nodes returns the ordered sequence of AST nodes constituting the block:
// statements, ValueSpecs of declarations, and control-condition expressions.
func (b *Block) Nodes() []ast.Node {
	return b.inner.Nodes
}

// Succs enumerates the successor blocks.
func (b *Block) Succs() []*Block {
	return b.succs
}

// Preds enumerates the predecessor blocks.
func (b *Block) Preds() []*Block {
	return b.preds
}

// Live reports whether the block is reachable from the entry block.
func (b *Block) Live() bool {
	return b.live
}

func (b *Block) String() string {
	return b.inner.String()
}

// Cfg is the engine-facing view of a single function's control flow graph.
// Construction of the underlying block graph is delegated to
// golang.org/x/tools/go/cfg; this wrapper adds predecessor enumeration, the
// entry block and a deterministic reverse postorder.
type Cfg struct {
	fset   *token.FileSet
	fun    *ast.FuncDecl
	inner  *tcfg.CFG
	blocks []*Block
}

// New builds the CFG view of the given function declaration. Calls are
// conservatively assumed to possibly return, so every call site has a
// fall-through successor.
func New(fset *token.FileSet, fun *ast.FuncDecl) (*Cfg, error) {
	if fun.Body == nil {
		return nil, fmt.Errorf("function %s has no body", fun.Name.Name)
	}

	inner := tcfg.New(fun.Body, func(*ast.CallExpr) bool { return true })

	c := &Cfg{
		fset:   fset,
		fun:    fun,
		inner:  inner,
		blocks: make([]*Block, len(inner.Blocks)),
	}

	for i, b := range inner.Blocks {
		c.blocks[i] = &Block{inner: b, order: -1}
	}

	for i, b := range inner.Blocks {
		wb := c.blocks[i]
		for _, succ := range b.Succs {
			ws := c.blocks[succ.Index]
			wb.succs = append(wb.succs, ws)
			ws.preds = append(ws.preds, wb)
		}
	}

	c.computeLive()
	c.computeOrder()

	return c, nil
}

// computeLive marks the blocks reachable from the entry block.
func (c *Cfg) computeLive() {
	G := graph.OfHashable(func(b *Block) []*Block { return b.succs })

	G.BFS(c.Entry(), func(b *Block) bool {
		b.live = true
		return false
	})
}

// computeOrder assigns each block its processing order: reverse postorder
// from the entry block, unreachable blocks trailing in index order.
func (c *Cfg) computeOrder() {
	G := graph.OfHashable(func(b *Block) []*Block { return b.succs })

	next := 0
	for _, b := range G.ReversePostorder(c.Entry()) {
		b.order = next
		next++
	}

	for _, b := range c.blocks {
		if b.order == -1 {
			b.order = next
			next++
		}
	}
}

// Entry returns the entry block of the function.
func (c *Cfg) Entry() *Block {
	return c.blocks[0]
}

// Blocks returns all blocks of the CFG, indexed by Block.Index.
func (c *Cfg) Blocks() []*Block {
	return c.blocks
}

// InOrder returns all blocks sorted by their deterministic processing order.
func (c *Cfg) InOrder() []*Block {
	ordered := make([]*Block, len(c.blocks))
	for _, b := range c.blocks {
		ordered[b.order] = b
	}
	return ordered
}

// Fun returns the function declaration the CFG was built from.
func (c *Cfg) Fun() *ast.FuncDecl {
	return c.fun
}

// FileSet extracts the FileSet from the CFG.
func (c *Cfg) FileSet() *token.FileSet {
	return c.fset
}

// ForEachNode executes the given procedure for each AST node of each block,
// in processing order.
func (c *Cfg) ForEachNode(do func(b *Block, n ast.Node)) {
	for _, b := range c.InOrder() {
		for _, n := range b.Nodes() {
			do(b, n)
		}
	}
}

// Format renders the underlying block graph in the debug format of
// golang.org/x/tools/go/cfg.
func (c *Cfg) Format() string {
	return c.inner.Format(c.fset)
}
