package pkgutil

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// loadMode sets all the packages.Need* options the analyses require:
// syntax trees plus full type and constant information.
const loadMode packages.LoadMode = packages.NeedName | packages.NeedFiles |
	packages.NeedCompiledGoFiles | packages.NeedImports | packages.NeedTypes |
	packages.NeedTypesSizes | packages.NeedSyntax | packages.NeedTypesInfo |
	packages.NeedDeps

// LoadConfig is a structure according to which Go package loading is
// configured. If IncludeTests is true, package loading will also expose test
// functions.
type LoadConfig struct {
	Dir          string
	IncludeTests bool
}

// LoadPackages loads the packages matching the given query with full syntax
// and type information.
func LoadPackages(config LoadConfig, query string) ([]*packages.Package, error) {
	pkgs, err := packages.Load(&packages.Config{
		Mode:  loadMode,
		Dir:   config.Dir,
		Tests: config.IncludeTests,
		Fset:  token.NewFileSet(),
	}, query)
	if err != nil {
		return nil, err
	}

	if packages.PrintErrors(pkgs) > 0 {
		return nil, errors.New("errors encountered while loading packages")
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages matching %q were found", query)
	}

	return pkgs, nil
}

// FindFunction retrieves a function declaration by name across the loaded
// packages, along with the file set and type information of its package.
// The first match wins.
func FindFunction(pkgs []*packages.Package, name string) (
	*token.FileSet, *types.Info, *ast.FuncDecl, error,
) {
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			for _, decl := range file.Decls {
				if fd, ok := decl.(*ast.FuncDecl); ok && fd.Name.Name == name {
					return pkg.Fset, pkg.TypesInfo, fd, nil
				}
			}
		}
	}

	return nil, nil, nil, fmt.Errorf("no function with the name %s was found", name)
}

// SourceResult carries the outcome of parsing and type-checking a single
// in-memory source file.
type SourceResult struct {
	Fset *token.FileSet
	File *ast.File
	Info *types.Info
	Pkg  *types.Package
}

// LoadSource parses and type-checks a single source file given as a string.
// Comments are retained, so annotation notes survive. Soft type errors
// (e.g., a declared-but-unused variable) are tolerated: the checker recovers
// from them and still produces full type and constant information.
func LoadSource(src string) (*SourceResult, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "input.go", src, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	var hard []error
	conf := types.Config{
		Error: func(err error) {
			if terr, ok := err.(types.Error); ok && terr.Soft {
				return
			}
			hard = append(hard, err)
		},
	}

	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}

	pkg, _ := conf.Check("input", fset, []*ast.File{file}, info)
	if len(hard) > 0 {
		return nil, fmt.Errorf("type checking failed: %v", hard[0])
	}

	return &SourceResult{
		Fset: fset,
		File: file,
		Info: info,
		Pkg:  pkg,
	}, nil
}

// FunctionByName retrieves a function declaration from the parsed file by
// name, or an error if no such function exists.
func (r *SourceResult) FunctionByName(name string) (*ast.FuncDecl, error) {
	for _, decl := range r.File.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok && fd.Name.Name == name {
			return fd, nil
		}
	}

	return nil, fmt.Errorf("no function with the name %s was found", name)
}
