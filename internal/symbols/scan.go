package symbols

import (
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"reflect"
	"sort"
)

const maxEmbedDepth = 8

// Scan returns every type declaration in pkg carrying a //cligen:command
// directive, in file order and then source order.
func Scan(pkg *Package) []*TypeDecl {
	s := &scanner{
		pkg:    pkg,
		fields: map[token.Pos]*ast.Field{},
		funcs:  map[token.Pos]*ast.FuncDecl{},
	}
	s.index()

	var decls []*TypeDecl
	for _, file := range pkg.Files {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				_, attrs, ok := findDirective(doc, "command")
				if !ok {
					continue
				}
				if td := s.typeDecl(ts, doc, attrs); td != nil {
					decls = append(decls, td)
				}
			}
		}
	}
	return decls
}

type scanner struct {
	pkg    *Package
	fields map[token.Pos]*ast.Field
	funcs  map[token.Pos]*ast.FuncDecl
}

// index maps identifier positions to their syntax, since go/types objects
// do not carry doc comments.
func (s *scanner) index() {
	for _, file := range s.pkg.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.FuncDecl:
				s.funcs[n.Name.Pos()] = n
			case *ast.Field:
				for _, name := range n.Names {
					s.fields[name.Pos()] = n
				}
			}
			return true
		})
	}
}

func (s *scanner) pos(p token.Pos) token.Position {
	return position(s.pkg.Fset, p)
}

func (s *scanner) typeDecl(ts *ast.TypeSpec, doc *ast.CommentGroup, attrs reflect.StructTag) *TypeDecl {
	obj, ok := s.pkg.Info.Defs[ts.Name].(*types.TypeName)
	if !ok {
		slog.Debug("no type object for declaration", "name", ts.Name.Name)
		return nil
	}
	td := &TypeDecl{
		Ref:       Ref{Name: obj.Name(), Pos: s.pos(ts.Pos())},
		Name:      obj.Name(),
		PkgPath:   s.pkg.Path,
		PkgName:   s.pkg.Name,
		Type:      Of(obj.Type()),
		Doc:       docText(doc),
		Directive: attrs,
	}

	named, ok := obj.Type().(*types.Named)
	if !ok || obj.IsAlias() {
		return td
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return td
	}
	td.IsStruct = true
	td.Members = append(td.Members, s.fieldMembers(td.Name, st, "", nil)...)
	td.Members = append(td.Members, s.accessorMembers(td.Name, named)...)
	td.Run = runMethod(named)
	td.Constructor = constructor(named)
	return td
}

// fieldMembers collects the tagged fields of st. path holds the embedded
// fields st was reached through, outermost first.
func (s *scanner) fieldMembers(owner string, st *types.Struct, viaPointer string, path []string) []*Member {
	var members []*Member
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		tag := reflect.StructTag(st.Tag(i))
		role, tagged := tag.Lookup("cli")

		if f.Embedded() && !tagged {
			if len(path) >= maxEmbedDepth {
				continue
			}
			t := f.Type()
			reason := viaPointer
			if p, ok := t.(*types.Pointer); ok {
				t = p.Elem()
				if reason == "" {
					reason = "promoted through embedded pointer " + f.Name()
				}
			}
			if inner, ok := t.Underlying().(*types.Struct); ok {
				members = append(members, s.fieldMembers(owner, inner, reason, append(path[:len(path):len(path)], f.Name()))...)
			}
			continue
		}
		if !tagged {
			continue
		}

		getterReason := viaPointer
		if getterReason == "" && hasInvalid(f.Type()) {
			getterReason = errInvalidType
		}
		m := &Member{
			Name:     f.Name(),
			Embedded: path,
			Kind:     FieldMember,
			Type:     Of(f.Type()),
			Exported: f.Exported(),
			Role:     role,
			Tag:      tag,
			Getter:   &Accessor{Name: f.Name(), Field: true, Results: []Type{Of(f.Type())}, Reason: getterReason},
			Setter:   &Accessor{Name: f.Name(), Field: true, PointerRecv: true, Params: []Type{Of(f.Type())}, Reason: viaPointer},
		}
		m.Ref = Ref{Name: owner + "." + m.Selector(), Pos: s.pos(f.Pos())}
		if field := s.fields[f.Pos()]; field != nil {
			m.Doc = docText(field.Doc, field.Comment)
		}
		members = append(members, m)
	}
	return members
}

func (s *scanner) accessorMembers(owner string, named *types.Named) []*Member {
	methods := make([]*types.Func, 0, named.NumMethods())
	for i := 0; i < named.NumMethods(); i++ {
		methods = append(methods, named.Method(i))
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i].Pos() < methods[j].Pos() })

	var members []*Member
	for _, fn := range methods {
		decl := s.funcs[fn.Pos()]
		if decl == nil {
			continue
		}
		role, attrs, ok := findDirective(decl.Doc, "option", "argument")
		if !ok {
			continue
		}
		getter := accessor(fn)
		if len(getter.Results) == 1 && hasInvalid(GoType(getter.Results[0])) {
			getter.Reason = errInvalidType
		}
		m := &Member{
			Ref:      Ref{Name: owner + "." + fn.Name(), Pos: s.pos(fn.Pos())},
			Name:     fn.Name(),
			Kind:     AccessorMember,
			Exported: fn.Exported(),
			Doc:      docText(decl.Doc),
			Role:     role,
			Tag:      attrs,
			Getter:   getter,
		}
		if len(getter.Results) == 1 {
			m.Type = getter.Results[0]
		}
		if sel := lookupMethod(named, "Set"+fn.Name()); sel != nil {
			m.Setter = accessor(sel)
		}
		members = append(members, m)
	}
	return members
}

const errInvalidType = "its type does not type-check"

// hasInvalid reports whether t is built from a type that failed to type-check.
func hasInvalid(t types.Type) bool {
	switch t := types.Unalias(t).(type) {
	case *types.Basic:
		return t.Kind() == types.Invalid
	case *types.Pointer:
		return hasInvalid(t.Elem())
	case *types.Slice:
		return hasInvalid(t.Elem())
	case *types.Array:
		return hasInvalid(t.Elem())
	case *types.Map:
		return hasInvalid(t.Key()) || hasInvalid(t.Elem())
	}
	return false
}

func lookupMethod(named *types.Named, name string) *types.Func {
	sel := types.NewMethodSet(types.NewPointer(named)).Lookup(named.Obj().Pkg(), name)
	if sel == nil {
		return nil
	}
	fn, _ := sel.Obj().(*types.Func)
	return fn
}

func accessor(fn *types.Func) *Accessor {
	sig := fn.Type().(*types.Signature)
	a := &Accessor{Name: fn.Name()}
	if recv := sig.Recv(); recv != nil {
		_, a.PointerRecv = recv.Type().(*types.Pointer)
	}
	for i := 0; i < sig.Params().Len(); i++ {
		a.Params = append(a.Params, Of(sig.Params().At(i).Type()))
	}
	for i := 0; i < sig.Results().Len(); i++ {
		a.Results = append(a.Results, Of(sig.Results().At(i).Type()))
	}
	return a
}

// runMethod inspects the Run method of *T. Supported shapes are
// Run(), Run() error, Run(context.Context) and Run(context.Context) error.
func runMethod(named *types.Named) *RunMethod {
	fn := lookupMethod(named, "Run")
	if fn == nil {
		return nil
	}
	sig := fn.Type().(*types.Signature)
	run := &RunMethod{Name: fn.Name(), Supported: true}
	switch sig.Params().Len() {
	case 0:
	case 1:
		run.TakesContext = isContext(sig.Params().At(0).Type())
		run.Supported = run.TakesContext
	default:
		run.Supported = false
	}
	switch sig.Results().Len() {
	case 0:
	case 1:
		run.ReturnsError = isError(sig.Results().At(0).Type())
		run.Supported = run.Supported && run.ReturnsError
	default:
		run.Supported = false
	}
	return run
}

func isContext(t types.Type) bool {
	n, ok := types.Unalias(t).(*types.Named)
	return ok && n.Obj().Pkg() != nil && n.Obj().Pkg().Path() == "context" && n.Obj().Name() == "Context"
}

// constructor finds func New<T>() *T in T's package.
func constructor(named *types.Named) string {
	name := "New" + named.Obj().Name()
	fn, ok := named.Obj().Pkg().Scope().Lookup(name).(*types.Func)
	if !ok {
		return ""
	}
	sig := fn.Type().(*types.Signature)
	if sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return ""
	}
	p, ok := sig.Results().At(0).Type().(*types.Pointer)
	if !ok || !types.Identical(p.Elem(), named) {
		return ""
	}
	return name
}
