// Package analyzer turns scanned declarations into the command model and
// reports the diagnostics that decide what can be emitted.
package analyzer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/podhmo/cligen/internal/converter"
	"github.com/podhmo/cligen/internal/diag"
	"github.com/podhmo/cligen/internal/metadata"
	"github.com/podhmo/cligen/internal/naming"
	"github.com/podhmo/cligen/internal/symbols"
)

// Config controls an analysis.
type Config struct {
	// Defaults are the settings of root commands.
	Defaults metadata.Settings
	// Resolver decides which types need converters. converter.Default when nil.
	Resolver *converter.Resolver
}

// DefaultConfig uses metadata.DefaultSettings and converter.Default.
func DefaultConfig() Config {
	return Config{Defaults: metadata.DefaultSettings(), Resolver: converter.Default}
}

// Result is the command model of one package.
type Result struct {
	Commands    []*metadata.CommandDecl // in discovery order
	Diagnostics diag.List               // every diagnostic, sorted by position
}

// Roots returns the commands without a parent, in discovery order.
func (r *Result) Roots() []*metadata.CommandDecl {
	var roots []*metadata.CommandDecl
	for _, c := range r.Commands {
		if c.IsRoot() {
			roots = append(roots, c)
		}
	}
	return roots
}

// Lookup finds a command by its Go type name.
func (r *Result) Lookup(typeName string) *metadata.CommandDecl {
	for _, c := range r.Commands {
		if c.TypeName() == typeName {
			return c
		}
	}
	return nil
}

// Analyze builds the command model for decls, which all belong to one
// package. Settings are resolved top-down before any name is computed.
func Analyze(ctx context.Context, decls []*symbols.TypeDecl, cfg Config) *Result {
	if cfg.Resolver == nil {
		cfg.Resolver = converter.Default
	}
	a := &analyzer{cfg: cfg}

	result := &Result{}
	for _, d := range decls {
		result.Commands = append(result.Commands, a.command(d))
	}
	a.link(result.Commands)
	a.breakCycles(result.Commands)
	for _, root := range result.Roots() {
		a.resolveSettings(root, cfg.Defaults)
	}

	for _, cmd := range result.Commands {
		a.members(cmd)
		analyzeRunFunc(cmd)
		analyzeInitializer(ctx, cmd)
		slog.DebugContext(ctx, "analyzed command",
			"type", cmd.TypeName(), "name", cmd.Name,
			"options", len(cmd.Options), "arguments", len(cmd.Arguments))
	}

	for _, cmd := range result.Commands {
		blockedByAncestor(cmd)
	}

	for _, cmd := range result.Commands {
		result.Diagnostics = append(result.Diagnostics, cmd.AllDiagnostics()...)
	}
	result.Diagnostics = append(result.Diagnostics, a.extra...)
	result.Diagnostics.Sort()
	return result
}

type analyzer struct {
	cfg Config
	// extra holds diagnostics on members that belong to no option or argument list.
	extra diag.List
}

func (a *analyzer) command(d *symbols.TypeDecl) *metadata.CommandDecl {
	cmd := &metadata.CommandDecl{
		Decl:        d,
		Constructor: d.Constructor,
		Run:         d.Run,
	}
	attrs, errs := metadata.ParseCommandAttributes(d.Directive, d.Doc)
	cmd.Attributes = attrs
	cmd.ParentName = attrs.Parent
	for _, e := range errs {
		cmd.Diagnostics.Add(diag.New(diag.InvalidAttribute, d.Ref.Pos, d.Ref.Name, d.Ref.Name, e.Key, e.Value, e.Err.Error()))
	}
	if !d.IsStruct {
		cmd.Diagnostics.Add(diag.New(diag.NotAStruct, d.Ref.Pos, d.Ref.Name, d.Ref.Name))
	}
	return cmd
}

// link resolves parent attributes by type name within the package.
func (a *analyzer) link(cmds []*metadata.CommandDecl) {
	byName := make(map[string]*metadata.CommandDecl, len(cmds))
	for _, c := range cmds {
		byName[c.TypeName()] = c
	}
	for _, c := range cmds {
		if c.ParentName == "" {
			continue
		}
		parent, ok := byName[c.ParentName]
		if !ok {
			ref := c.Decl.Ref
			c.Diagnostics.Add(diag.New(diag.ParentNotFound, ref.Pos, ref.Name, ref.Name, c.ParentName))
			continue
		}
		c.Parent = parent
		parent.Children = append(parent.Children, c)
	}
}

// breakCycles reports every command on a parent cycle and detaches it,
// so that the tree can be walked from its roots.
func (a *analyzer) breakCycles(cmds []*metadata.CommandDecl) {
	var cyclic []*metadata.CommandDecl
	for _, c := range cmds {
		var chain []string
		seen := map[*metadata.CommandDecl]bool{}
		cur := c
		for cur != nil && !seen[cur] {
			seen[cur] = true
			chain = append(chain, cur.TypeName())
			cur = cur.Parent
		}
		if cur != c {
			continue // not on a cycle, or only leading into one
		}
		chain = append(chain, c.TypeName())
		ref := c.Decl.Ref
		c.Diagnostics.Add(diag.New(diag.ParentCycle, ref.Pos, ref.Name, ref.Name, strings.Join(chain, " -> ")))
		cyclic = append(cyclic, c)
	}
	for _, c := range cyclic {
		if p := c.Parent; p != nil {
			p.Children = removeChild(p.Children, c)
		}
		c.Parent = nil
	}
}

// blockedByAncestor warns about a command without errors of its own that
// is not generated because a command above it has errors.
func blockedByAncestor(cmd *metadata.CommandDecl) {
	if !cmd.Usable() {
		return
	}
	seen := map[*metadata.CommandDecl]bool{cmd: true}
	for p := cmd.Parent; p != nil && !seen[p]; p = p.Parent {
		seen[p] = true
		if !p.Usable() {
			ref := cmd.Decl.Ref
			cmd.Diagnostics.Add(diag.New(diag.AncestorNotEmitted, ref.Pos, ref.Name, ref.Name, p.TypeName()))
			return
		}
	}
}

func removeChild(children []*metadata.CommandDecl, c *metadata.CommandDecl) []*metadata.CommandDecl {
	out := children[:0]
	for _, child := range children {
		if child != c {
			out = append(out, child)
		}
	}
	return out
}

// resolveSettings applies each command's overrides on top of its parent's
// settings, then resolves the command name under the effective casing.
func (a *analyzer) resolveSettings(cmd *metadata.CommandDecl, inherited metadata.Settings) {
	cmd.Settings = inherited.Apply(cmd.Attributes.Settings)
	cmd.Name = commandName(cmd)
	for _, child := range cmd.Children {
		a.resolveSettings(child, cmd.Settings)
	}
}

func commandName(cmd *metadata.CommandDecl) string {
	if cmd.Attributes.Name != "" {
		return naming.ApplyCasing(cmd.Attributes.Name, cmd.Settings.Casing)
	}
	return naming.ApplyCasing(naming.StripSuffixes(cmd.TypeName(), naming.CommandSuffixes), cmd.Settings.Casing)
}
