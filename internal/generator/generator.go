// Package generator drives a generation pass: discover commands, build the
// model, diagnose, emit. Packages are processed concurrently.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/podhmo/cligen/internal/analyzer"
	"github.com/podhmo/cligen/internal/codegen"
	"github.com/podhmo/cligen/internal/config"
	"github.com/podhmo/cligen/internal/converter"
	"github.com/podhmo/cligen/internal/diag"
	"github.com/podhmo/cligen/internal/metadata"
	"github.com/podhmo/cligen/internal/symbols"
)

// LoadError reports packages that could not be loaded or type-checked.
type LoadError struct {
	Patterns []string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", strings.Join(e.Patterns, " "), e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Package is the outcome of one package.
type Package struct {
	Path        string
	Dir         string
	Units       []codegen.Unit
	Commands    []*metadata.CommandDecl
	Diagnostics diag.List
}

// Result is the outcome of a pass, ordered by package path.
type Result struct {
	Packages []*Package
}

// Diagnostics returns the diagnostics of every package.
func (r *Result) Diagnostics() diag.List {
	var all diag.List
	for _, p := range r.Packages {
		all = append(all, p.Diagnostics...)
	}
	return all
}

// HasErrors reports whether an error-level diagnostic was produced.
func (r *Result) HasErrors() bool {
	return r.Diagnostics().HasErrors()
}

// Generate loads the packages matching patterns, relative to cfg.WorkDir.
func Generate(ctx context.Context, cfg *config.Config, patterns ...string) (*Result, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	p, err := newPipeline(cfg)
	if err != nil {
		return nil, err
	}
	pkgs, err := symbols.Load(ctx, cfg.WorkDir, patterns...)
	if err != nil {
		return nil, &LoadError{Patterns: patterns, Err: err}
	}

	result := &Result{Packages: make([]*Package, len(pkgs))}
	g, ctx := errgroup.WithContext(ctx)
	for i, pkg := range pkgs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := p.run(ctx, pkg)
			if err != nil {
				return err
			}
			result.Packages[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateSource runs a pass over in-memory files forming the package path.
func GenerateSource(ctx context.Context, cfg *config.Config, path string, files map[string]string) (*Result, error) {
	p, err := newPipeline(cfg)
	if err != nil {
		return nil, err
	}
	pkg, err := symbols.FromSource(path, files)
	if err != nil {
		return nil, &LoadError{Patterns: []string{path}, Err: err}
	}
	out, err := p.run(ctx, pkg)
	if err != nil {
		return nil, err
	}
	return &Result{Packages: []*Package{out}}, nil
}

// Write stores the units of every package in its directory and removes
// generated files that are no longer produced.
func Write(cfg *config.Config, r *Result) error {
	opts, err := cfg.EmitOptions()
	if err != nil {
		return err
	}
	for _, p := range r.Packages {
		if p.Dir == "" {
			return fmt.Errorf("package %s has no directory", p.Path)
		}
		if err := codegen.Write(p.Dir, p.Units); err != nil {
			return err
		}
		if err := codegen.RemoveStale(p.Dir, p.Units, opts); err != nil {
			return err
		}
	}
	return nil
}

type pipeline struct {
	analyzer analyzer.Config
	emit     codegen.Options
}

func newPipeline(cfg *config.Config) (*pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	settings, err := cfg.Settings()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	opts, err := cfg.EmitOptions()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	ac := analyzer.DefaultConfig()
	ac.Defaults = settings
	ac.Resolver = converter.NewResolver(opts.RuntimeImport)
	return &pipeline{analyzer: ac, emit: opts}, nil
}

func (p *pipeline) run(ctx context.Context, pkg *symbols.Package) (*Package, error) {
	decls := symbols.Scan(pkg)
	r := analyzer.Analyze(ctx, decls, p.analyzer)
	units, err := codegen.Emit(r.Commands, p.emit)
	if err != nil {
		return nil, fmt.Errorf("emitting %s: %w", pkg.Path, err)
	}
	slog.DebugContext(ctx, "generated package",
		"path", pkg.Path,
		"commands", len(r.Commands),
		"units", len(units),
		"diagnostics", len(r.Diagnostics),
		"fingerprint", metadata.Fingerprint(r.Commands))
	return &Package{
		Path:        pkg.Path,
		Dir:         pkg.Dir,
		Units:       units,
		Commands:    r.Commands,
		Diagnostics: r.Diagnostics,
	}, nil
}
