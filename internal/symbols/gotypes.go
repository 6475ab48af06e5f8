package symbols

import (
	"go/token"
	"go/types"
)

// goType adapts a types.Type to the Type interface.
type goType struct {
	t types.Type
}

// Of wraps a go/types type. Aliases are resolved to their target.
func Of(t types.Type) Type {
	if t == nil {
		return nil
	}
	return goType{t: types.Unalias(t)}
}

// GoType returns the go/types type behind t, for callers inside the module
// that need to cross back, e.g. the analyzer comparing setter parameters.
func GoType(t Type) types.Type {
	if g, ok := t.(goType); ok {
		return g.t
	}
	return nil
}

func (g goType) Kind() Kind {
	switch g.t.(type) {
	case *types.Basic:
		return KindBasic
	case *types.Named:
		return KindNamed
	case *types.Pointer:
		return KindPointer
	case *types.Slice:
		return KindSlice
	case *types.Array:
		return KindArray
	case *types.Map:
		return KindMap
	case *types.TypeParam:
		return KindTypeParam
	}
	return KindOther
}

func (g goType) Name() string {
	switch t := g.t.(type) {
	case *types.Basic:
		return t.Name()
	case *types.Named:
		return t.Obj().Name()
	case *types.TypeParam:
		return t.Obj().Name()
	}
	return ""
}

func (g goType) PkgPath() string {
	if n, ok := g.t.(*types.Named); ok && n.Obj().Pkg() != nil {
		return n.Obj().Pkg().Path()
	}
	return ""
}

func (g goType) Elem() Type {
	switch t := g.t.(type) {
	case *types.Pointer:
		return Of(t.Elem())
	case *types.Slice:
		return Of(t.Elem())
	case *types.Array:
		return Of(t.Elem())
	case *types.Map:
		return Of(t.Elem())
	}
	return nil
}

func (g goType) BasicUnderlying() bool {
	n, ok := g.t.(*types.Named)
	if !ok {
		return false
	}
	_, ok = n.Underlying().(*types.Basic)
	return ok
}

func (g goType) Scalar() bool {
	b, ok := g.t.Underlying().(*types.Basic)
	if !ok || b.Kind() == types.UnsafePointer {
		return false
	}
	info := b.Info()
	return info&types.IsUntyped == 0 && info&(types.IsBoolean|types.IsString|types.IsInteger|types.IsFloat) != 0
}

func (g goType) String() string {
	return types.TypeString(g.t, nil)
}

func (g goType) Expr(q Qualifier) string {
	if q == nil {
		return types.TypeString(g.t, (*types.Package).Name)
	}
	return types.TypeString(g.t, func(p *types.Package) string {
		return q(p.Path(), p.Name())
	})
}

func (g goType) Identical(other Type) bool {
	o := GoType(other)
	return o != nil && types.Identical(g.t, o)
}

func (g goType) LookupFunc(name string) *Func {
	n, ok := g.t.(*types.Named)
	if !ok || n.Obj().Pkg() == nil {
		return nil
	}
	fn, ok := n.Obj().Pkg().Scope().Lookup(name).(*types.Func)
	if !ok {
		return nil
	}
	return newFunc(fn)
}

func (g goType) PointerImplementsTextUnmarshaler() bool {
	n, ok := g.t.(*types.Named)
	if !ok {
		return false
	}
	sel := types.NewMethodSet(types.NewPointer(n)).Lookup(n.Obj().Pkg(), "UnmarshalText")
	if sel == nil {
		return false
	}
	sig, ok := sel.Type().(*types.Signature)
	if !ok || sig.Params().Len() != 1 || sig.Results().Len() != 1 {
		return false
	}
	param, ok := sig.Params().At(0).Type().(*types.Slice)
	if !ok || !types.Identical(param.Elem(), types.Typ[types.Byte]) {
		return false
	}
	return isError(sig.Results().At(0).Type())
}

func newFunc(fn *types.Func) *Func {
	sig := fn.Type().(*types.Signature)
	f := &Func{
		Name:     fn.Name(),
		Exported: fn.Exported(),
		Variadic: sig.Variadic(),
	}
	if fn.Pkg() != nil {
		f.PkgPath = fn.Pkg().Path()
		f.PkgName = fn.Pkg().Name()
	}
	for i := 0; i < sig.Params().Len(); i++ {
		f.Params = append(f.Params, Of(sig.Params().At(i).Type()))
	}
	for i := 0; i < sig.Results().Len(); i++ {
		f.Results = append(f.Results, Of(sig.Results().At(i).Type()))
	}
	if n := sig.Results().Len(); n > 0 {
		f.ResultError = isError(sig.Results().At(n - 1).Type())
	}
	return f
}

var errorType = types.Universe.Lookup("error").Type()

func isError(t types.Type) bool {
	return types.Identical(t, errorType)
}

// IsError reports whether t is the predeclared error type.
func IsError(t Type) bool {
	g := GoType(t)
	return g != nil && isError(g)
}

// IsString reports whether t is the basic string type.
func IsString(t Type) bool {
	b, ok := GoType(t).(*types.Basic)
	return ok && b.Kind() == types.String
}

func position(fset *token.FileSet, pos token.Pos) token.Position {
	if fset == nil || !pos.IsValid() {
		return token.Position{}
	}
	return fset.Position(pos)
}
