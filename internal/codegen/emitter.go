// Package codegen turns analyzed commands into Go source targeting the
// cligen runtime package.
package codegen

import (
	"fmt"
	"strings"

	"github.com/podhmo/cligen/internal/converter"
	"github.com/podhmo/cligen/internal/metadata"
	"github.com/podhmo/cligen/internal/naming"
	"github.com/podhmo/cligen/internal/symbols"
)

// GeneratedMarker is the first line of every generated file, after the
// optional license header.
const GeneratedMarker = symbols.GeneratedMarker

// Options controls file naming and the runtime import path.
type Options struct {
	RuntimeImport string // import path of the runtime package
	OutputSuffix  string // appended to the snake_case type name
	BuildersFile  string // file name of the per-package Builders() index
	Header        string // license text placed above the generated marker
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		RuntimeImport: converter.RuntimeImport,
		OutputSuffix:  "_cligen.go",
		BuildersFile:  "cligen_builders_gen.go",
	}
}

// Unit is one generated file.
type Unit struct {
	Filename string
	Content  []byte
}

// Emittable reports whether code is generated for cmd: the command and
// every ancestor must be free of errors.
func Emittable(cmd *metadata.CommandDecl) bool {
	seen := map[*metadata.CommandDecl]bool{}
	for c := cmd; c != nil; c = c.Parent {
		if seen[c] || !c.Usable() {
			return false
		}
		seen[c] = true
	}
	return true
}

// Emit generates one unit per emittable command, in the given order,
// followed by the Builders() index of the package. The package is the
// one of the first command.
func Emit(cmds []*metadata.CommandDecl, opts Options) ([]Unit, error) {
	var units []Unit
	var emitted []*metadata.CommandDecl
	for _, cmd := range cmds {
		if !Emittable(cmd) {
			continue
		}
		u, err := EmitCommand(cmd, opts)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
		emitted = append(emitted, cmd)
	}
	if len(emitted) == 0 {
		return nil, nil
	}
	index, err := EmitBuilders(emitted, opts)
	if err != nil {
		return nil, err
	}
	return append(units, index), nil
}

// Filename returns the name of the unit generated for cmd.
func Filename(cmd *metadata.CommandDecl, opts Options) string {
	return naming.ApplyCasing(cmd.TypeName(), naming.CasingSnake) + opts.OutputSuffix
}

// EmitCommand generates the builder of a single command.
func EmitCommand(cmd *metadata.CommandDecl, opts Options) (Unit, error) {
	decl := cmd.Decl
	im := NewImports(decl.PkgPath, opts.RuntimeImport)
	e := &commandEmitter{cmd: cmd, im: im}
	e.nameVars()

	var body Builder
	e.writeConstructor(&body)
	body.Blank()
	e.writeBuild(&body)

	filename := Filename(cmd, opts)
	src := assemble(opts.Header, decl.PkgName, im, &body)
	formatted, err := Format(filename, src)
	if err != nil {
		return Unit{}, fmt.Errorf("emitting %s: %w", decl.Name, err)
	}
	return Unit{Filename: filename, Content: formatted}, nil
}

// EmitBuilders generates the Builders() function listing cmds in order.
func EmitBuilders(cmds []*metadata.CommandDecl, opts Options) (Unit, error) {
	if len(cmds) == 0 {
		return Unit{}, fmt.Errorf("no commands to index")
	}
	decl := cmds[0].Decl
	im := NewImports(decl.PkgPath, opts.RuntimeImport)
	rt := im.Use(opts.RuntimeImport, "cligen")

	var body Builder
	body.Line("// Builders returns the builders of the commands declared in this package.")
	body.Block(fmt.Sprintf("func Builders() []*%s.Builder", rt), func() {
		body.Group(fmt.Sprintf("return []*%s.Builder{", rt), "}", func() {
			for _, cmd := range cmds {
				body.Line("New%sBuilder(),", cmd.TypeName())
			}
		})
	})

	src := assemble(opts.Header, decl.PkgName, im, &body)
	formatted, err := Format(opts.BuildersFile, src)
	if err != nil {
		return Unit{}, fmt.Errorf("emitting %s: %w", opts.BuildersFile, err)
	}
	return Unit{Filename: opts.BuildersFile, Content: formatted}, nil
}

func assemble(header, pkgName string, im *Imports, body *Builder) []byte {
	var file Builder
	if header != "" {
		for _, line := range strings.Split(strings.TrimRight(header, "\n"), "\n") {
			if line == "" {
				file.Line("//")
			} else {
				file.Line("// %s", line)
			}
		}
		file.Blank()
	}
	file.Line(GeneratedMarker)
	file.Blank()
	file.Line("package %s", pkgName)
	file.Blank()
	im.Write(&file)
	file.buf.Write(body.Bytes())
	return file.Bytes()
}

type commandEmitter struct {
	cmd  *metadata.CommandDecl
	im   *Imports
	vars map[*metadata.MemberDecl]string
}

func (e *commandEmitter) rt() string {
	return e.im.Use(e.im.runtimeImport(), "cligen")
}

func (e *commandEmitter) self() string { return e.cmd.TypeName() }

func (e *commandEmitter) writeConstructor(b *Builder) {
	rt := e.rt()
	b.Line("// New%sBuilder returns the builder of the %q command.", e.self(), e.cmd.Name)
	b.Block(fmt.Sprintf("func New%sBuilder() *%s.Builder", e.self(), rt), func() {
		b.Group(fmt.Sprintf("return &%s.Builder{", rt), "}", func() {
			b.Line("Definition: %s.TypeOf[%s](),", rt, e.self())
			if p := e.cmd.Parent; p != nil {
				b.Line("Parent:     %s.TypeOf[%s](),", rt, p.TypeName())
			}
			b.Line("Func:       build%s,", e.self())
		})
	})
}

func (e *commandEmitter) writeBuild(b *Builder) {
	rt := e.rt()
	cmd := e.cmd
	b.Block(fmt.Sprintf("func build%s(b *%s.Builder) *%s.Command", e.self(), rt, rt), func() {
		b.Line("cmd := %s.NewCommand(%q)", rt, cmd.Name)
		if d := cmd.Attributes.Description; d != "" {
			b.Line("cmd.Description = %q", d)
		}
		if cmd.Attributes.Hidden {
			b.Line("cmd.Hidden = true")
		}
		if len(cmd.Attributes.Aliases) > 0 {
			b.Line("cmd.Aliases = %s", stringSlice(cmd.Attributes.Aliases))
		}
		if e.hasMembers() {
			b.Blank()
			b.Line("defaults := %s", e.newInstance())
		}

		registered := map[string]bool{}
		for _, o := range cmd.Options {
			if !o.Usable() {
				continue
			}
			b.Blank()
			e.writeOption(b, o, registered)
		}
		for _, a := range cmd.Arguments {
			if !a.Usable() {
				continue
			}
			b.Blank()
			e.writeArgument(b, a, registered)
		}

		b.Blank()
		b.Block("for _, child := range b.Children()", func() {
			b.Line("cmd.AddCommand(child.Build())")
		})

		if cmd.Runnable() {
			b.Blank()
			e.writeBind(b)
			b.Blank()
			e.writeHandler(b)
		}
		b.Line("return cmd")
	})
}

func (e *commandEmitter) hasMembers() bool {
	for _, o := range e.cmd.Options {
		if o.Usable() {
			return true
		}
	}
	for _, a := range e.cmd.Arguments {
		if a.Usable() {
			return true
		}
	}
	return false
}

func (e *commandEmitter) newInstance() string {
	if e.cmd.Constructor != "" {
		return e.cmd.Constructor + "()"
	}
	return fmt.Sprintf("new(%s)", e.self())
}

// nameVars gives every usable member a local variable, unique inside the
// build function even when promoted fields share a Go name.
func (e *commandEmitter) nameVars() {
	e.vars = map[*metadata.MemberDecl]string{}
	used := map[string]bool{}
	add := func(prefix string, m *metadata.MemberDecl) {
		base := prefix + strings.ReplaceAll(m.Selector(), ".", "")
		v := base
		for i := 2; used[v]; i++ {
			v = fmt.Sprintf("%s%d", base, i)
		}
		used[v] = true
		e.vars[m] = v
	}
	for _, o := range e.cmd.Options {
		if o.Usable() {
			add("option", &o.MemberDecl)
		}
	}
	for _, a := range e.cmd.Arguments {
		if a.Usable() {
			add("argument", &a.MemberDecl)
		}
	}
}

func (e *commandEmitter) optionVar(o *metadata.OptionDecl) string     { return e.vars[&o.MemberDecl] }
func (e *commandEmitter) argumentVar(a *metadata.ArgumentDecl) string { return e.vars[&a.MemberDecl] }

func (e *commandEmitter) writeOption(b *Builder, o *metadata.OptionDecl, registered map[string]bool) {
	rt := e.rt()
	v := e.optionVar(o)
	typ := o.Type.Expr(e.im.Qualifier())
	b.Line("%s := %s.NewOption[%s](%q, %s.Parser[%s](b))", v, rt, typ, o.Name, rt, typ)
	e.writeProperties(b, v, &o.MemberDecl)
	for _, alias := range o.Aliases {
		b.Line("%s.AddAlias(%q)", v, alias)
	}
	b.Line("%s.SetDefault(%s)", v, defaultExpr(&o.MemberDecl))
	e.writeConverter(b, &o.MemberDecl, registered)
	b.Line("cmd.Add(%s)", v)
}

func (e *commandEmitter) writeArgument(b *Builder, a *metadata.ArgumentDecl, registered map[string]bool) {
	rt := e.rt()
	v := e.argumentVar(a)
	typ := a.Type.Expr(e.im.Qualifier())
	b.Line("%s := %s.NewArgument[%s](%q, %s.Parser[%s](b))", v, rt, typ, a.Name, rt, typ)
	e.writeProperties(b, v, &a.MemberDecl)
	b.Line("%s.SetDefault(%s)", v, defaultExpr(&a.MemberDecl))
	e.writeConverter(b, &a.MemberDecl, registered)
	b.Line("cmd.Add(%s)", v)
}

func (e *commandEmitter) writeProperties(b *Builder, v string, m *metadata.MemberDecl) {
	for _, p := range m.Attributes.Properties() {
		switch val := p.Value.(type) {
		case string:
			b.Line("%s.%s = %q", v, p.Name, val)
		default:
			b.Line("%s.%s = %v", v, p.Name, val)
		}
	}
	if m.Attributes.Arity != "" {
		b.Line("%s.Arity = %s.Arity%s", v, e.rt(), m.Attributes.Arity)
	}
	if len(m.Attributes.AllowedValues) > 0 {
		args := make([]string, len(m.Attributes.AllowedValues))
		for i, s := range m.Attributes.AllowedValues {
			args[i] = fmt.Sprintf("%q", s)
		}
		b.Line("%s.AllowedValues(%s, %s)", e.rt(), v, strings.Join(args, ", "))
	}
}

// defaultExpr reads the member from the defaults instance.
func defaultExpr(m *metadata.MemberDecl) string {
	if g := m.Member.Getter; g != nil && !g.Field {
		return fmt.Sprintf("defaults.%s()", g.Name)
	}
	return "defaults." + m.Selector()
}

// writeConverter registers the converter of the member's element type,
// once per build function.
func (e *commandEmitter) writeConverter(b *Builder, m *metadata.MemberDecl, registered map[string]bool) {
	conv := m.Converter
	if m.TypeNeedingConverter == nil || conv == nil {
		return
	}
	key := m.TypeNeedingConverter.String()
	if registered[key] {
		return
	}
	registered[key] = true

	rt := e.rt()
	target := conv.Target.Expr(e.im.Qualifier())
	if conv.Kind == converter.TextUnmarshaler {
		b.Line("%s.RegisterConverter(b, %s.UnmarshalText[%s])", rt, rt, target)
		return
	}

	fn := e.im.Qualify(conv.Func.PkgPath, conv.Func.PkgName, conv.Func.Name)
	call := fn + "(input)"
	var ret string
	switch {
	case conv.ReturnsPointer && conv.ReturnsError:
		ret = fmt.Sprintf("%s.DerefE(%s)", rt, call)
	case conv.ReturnsPointer:
		ret = fmt.Sprintf("%s.Deref(%s)", rt, call)
	case conv.ReturnsError:
		ret = call
	default:
		ret = call + ", nil"
	}
	b.Group(fmt.Sprintf("%s.RegisterConverter(b, func(input string) (%s, error) {", rt, target), "})", func() {
		b.Line("return %s", ret)
	})
}

func (e *commandEmitter) writeBind(b *Builder) {
	rt := e.rt()
	cmd := e.cmd
	b.Block(fmt.Sprintf("bind := func(r *%s.ParseResult) *%s", rt, e.self()), func() {
		b.Line("target := %s", e.newInstance())
		for _, o := range cmd.Options {
			if o.Usable() {
				b.Line("%s", assignment(&o.MemberDecl, fmt.Sprintf("%s.OptionValue(r, %s)", rt, e.optionVar(o))))
			}
		}
		for _, a := range cmd.Arguments {
			if a.Usable() {
				b.Line("%s", assignment(&a.MemberDecl, fmt.Sprintf("%s.ArgumentValue(r, %s)", rt, e.argumentVar(a))))
			}
		}
		b.Line("return target")
	})
}

func assignment(m *metadata.MemberDecl, value string) string {
	if s := m.Member.Setter; s != nil && !s.Field {
		return fmt.Sprintf("target.%s(%s)", s.Name, value)
	}
	return fmt.Sprintf("target.%s = %s", m.Selector(), value)
}

func (e *commandEmitter) writeHandler(b *Builder) {
	run := e.cmd.Run
	ctx := e.im.Use("context", "context")
	header := fmt.Sprintf("cmd.SetHandler(func(ctx %s.Context, r *%s.ParseResult) error {", ctx, e.rt())
	b.Group(header, "})", func() {
		arg := ""
		if run.TakesContext {
			arg = "ctx"
		}
		call := fmt.Sprintf("bind(r).%s(%s)", run.Name, arg)
		if run.ReturnsError {
			b.Line("return %s", call)
			return
		}
		b.Line("%s", call)
		b.Line("return nil")
	})
}

func stringSlice(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[]string{" + strings.Join(quoted, ", ") + "}"
}
