// Package testutil provides the harness for annotation-driven analysis
// tests: it loads a snippet, builds the function CFG, runs an analysis and
// checks recorded states against `//@ state(name)` notes in the source.
package testutil

import (
	"go/ast"
	"testing"

	"github.com/cs-au-dk/monotone/analysis/cfg"
	"github.com/cs-au-dk/monotone/pkgutil"
)

// LoadResult packages everything a dataflow test needs about a snippet:
// the parsed and type-checked source, the function under analysis and its
// control flow graph.
type LoadResult struct {
	*pkgutil.SourceResult
	Fun *ast.FuncDecl
	Cfg *cfg.Cfg
}

// LoadFunction parses and type-checks the given source snippet and builds
// the CFG of the named function. Any failure aborts the test.
func LoadFunction(t *testing.T, src string, fun string) LoadResult {
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

	return LoadResult{
		SourceResult: res,
		Fun:          fd,
		Cfg:          g,
	}
}
