package symbols

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"log/slog"
	"path/filepath"
	"sort"

	"golang.org/x/tools/go/packages"
)

// Package is a type-checked package with its syntax.
type Package struct {
	Path  string
	Name  string
	Dir   string
	Fset  *token.FileSet
	Files []*ast.File // sorted by file name
	Types *types.Package
	Info  *types.Info
}

// Filename returns the file name of f.
func (p *Package) Filename(f *ast.File) string {
	return p.Fset.Position(f.Package).Filename
}

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedModule

// Load loads and type-checks the packages matching patterns, relative to dir.
// Listing and syntax errors fail the load. Type errors are only logged:
// the package may call code that has not been generated yet, and the
// declarations are still fully typed. Files written by cligen are reduced
// to their package clause, so stale output never gets in the way.
func Load(ctx context.Context, dir string, patterns ...string) ([]*Package, error) {
	cfg := &packages.Config{
		Context:   ctx,
		Mode:      loadMode,
		Dir:       dir,
		Tests:     false,
		ParseFile: parseFile,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages %v: %w", patterns, err)
	}

	var errs []error
	result := make([]*Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		fatal := false
		for _, e := range pkg.Errors {
			if e.Kind == packages.TypeError {
				slog.WarnContext(ctx, "type error", "package", pkg.PkgPath, "error", e.Error())
				continue
			}
			fatal = true
			errs = append(errs, fmt.Errorf("%s: %s", pkg.PkgPath, e.Msg))
		}
		if fatal || pkg.Types == nil || pkg.TypesInfo == nil {
			continue
		}
		p := &Package{
			Path:  pkg.PkgPath,
			Name:  pkg.Name,
			Fset:  pkg.Fset,
			Files: pkg.Syntax,
			Types: pkg.Types,
			Info:  pkg.TypesInfo,
		}
		if len(pkg.GoFiles) > 0 {
			p.Dir = filepath.Dir(pkg.GoFiles[0])
		}
		sortFiles(p)
		slog.DebugContext(ctx, "loaded package", "path", p.Path, "files", len(p.Files))
		result = append(result, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

// parseFile keeps only the package clause of files generated by cligen.
func parseFile(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
	head, err := parser.ParseFile(fset, filename, src, parser.PackageClauseOnly|parser.ParseComments)
	if err == nil && IsGenerated(head) {
		return head, nil
	}
	return parser.ParseFile(fset, filename, src, parser.AllErrors|parser.ParseComments)
}

// IsGenerated reports whether f carries GeneratedMarker above its package clause.
func IsGenerated(f *ast.File) bool {
	for _, cg := range f.Comments {
		if cg.Pos() > f.Package {
			break
		}
		for _, c := range cg.List {
			if c.Text == GeneratedMarker {
				return true
			}
		}
	}
	return false
}

// FromSource parses and type-checks in-memory files as one package, with
// the same tolerance for type errors and generated files as Load.
// Imports are resolved against the installed standard library and module cache.
func FromSource(path string, files map[string]string) (*Package, error) {
	fset := token.NewFileSet()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var syntax []*ast.File
	for _, name := range names {
		f, err := parseFile(fset, name, []byte(files[name]))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		syntax = append(syntax, f)
	}

	info := &types.Info{
		Defs:  map[*ast.Ident]types.Object{},
		Uses:  map[*ast.Ident]types.Object{},
		Types: map[ast.Expr]types.TypeAndValue{},
	}
	conf := types.Config{
		Importer: importer.Default(),
		Error: func(err error) {
			slog.Warn("type error", "package", path, "error", err)
		},
	}
	tpkg, _ := conf.Check(path, fset, syntax, info)
	if tpkg == nil {
		return nil, fmt.Errorf("type-checking %s failed", path)
	}
	return &Package{
		Path:  path,
		Name:  tpkg.Name(),
		Fset:  fset,
		Files: syntax,
		Types: tpkg,
		Info:  info,
	}, nil
}

func sortFiles(p *Package) {
	sort.SliceStable(p.Files, func(i, j int) bool {
		return p.Filename(p.Files[i]) < p.Filename(p.Files[j])
	})
}
