// Package symbols is the narrow view of Go declarations that the analyzer
// works on. The model packages only see the types defined here; go/types and
// go/packages stay behind this package.
package symbols

import (
	"go/token"
	"reflect"
	"strings"
)

// GeneratedMarker is the comment identifying files written by cligen.
const GeneratedMarker = "// Code generated by cligen. DO NOT EDIT."

// Ref points at a source declaration. It is only used for diagnostics.
type Ref struct {
	Name string         // display name, e.g. "RootCommand.Display"
	Pos  token.Position // where the declaration starts
}

// Kind classifies a Type.
type Kind int

const (
	KindOther Kind = iota
	KindBasic
	KindNamed
	KindPointer
	KindSlice
	KindArray
	KindMap
	KindTypeParam
)

// Qualifier returns the package name to use for pkgPath in generated code,
// or "" when the package is the one being generated into.
type Qualifier func(pkgPath, pkgName string) string

// Type is a static type as seen by the converter resolver and the emitter.
type Type interface {
	Kind() Kind
	// Name is the type name for basic and named types, "" otherwise.
	Name() string
	// PkgPath is the defining package of a named type.
	PkgPath() string
	// Elem is the element type of pointers, slices and arrays.
	Elem() Type
	// BasicUnderlying reports whether a named type's underlying type is a basic type.
	BasicUnderlying() bool
	// Scalar reports whether t, or the underlying type of a named t, is a
	// boolean, string, integer or float basic type.
	Scalar() bool
	// String is the fully qualified spelling, e.g. "[]*net/url.URL".
	String() string
	// Expr spells the type as Go source with the given qualifier.
	Expr(q Qualifier) string
	Identical(other Type) bool

	// LookupFunc finds an exported-or-not package level function in the
	// defining package of a named type.
	LookupFunc(name string) *Func
	// PointerImplementsTextUnmarshaler reports whether *T has an
	// UnmarshalText([]byte) error method.
	PointerImplementsTextUnmarshaler() bool
}

// Func is a package level function.
type Func struct {
	Name     string
	PkgPath  string
	PkgName  string
	Exported bool
	Params   []Type
	Variadic bool
	Results  []Type
	// ResultError reports whether the last result is the predeclared error type.
	ResultError bool
}

// TypeDecl is a named type declaration carrying a //cligen:command directive.
type TypeDecl struct {
	Ref      Ref
	Name     string
	PkgPath  string
	PkgName  string
	Type     Type
	IsStruct bool
	Doc      string // doc comment without directive lines

	// Directive is the attribute text after "//cligen:command", in struct tag syntax.
	Directive reflect.StructTag

	Members []*Member
	Run     *RunMethod
	// Constructor is the name of a func New<Name>() *<Name>, if declared.
	Constructor string
}

// MemberKind tells how a member is read and written.
type MemberKind int

const (
	FieldMember MemberKind = iota
	AccessorMember
)

func (k MemberKind) String() string {
	if k == AccessorMember {
		return "accessor"
	}
	return "field"
}

// Member is an annotated struct field or accessor method.
type Member struct {
	Ref  Ref
	Name string
	// Embedded lists the embedded fields a promoted field is reached
	// through, outermost first.
	Embedded []string
	Kind     MemberKind
	Type     Type
	Exported bool
	Doc      string

	// Role is "option" or "argument" (the value of the `cli` tag or the directive name).
	Role string
	// Tag holds the attributes in struct tag syntax.
	Tag reflect.StructTag

	Getter *Accessor
	Setter *Accessor
}

// Selector is the path from the command value to a field, e.g. "Common.Verbose".
// For accessors it is the method name.
func (m *Member) Selector() string {
	if len(m.Embedded) == 0 {
		return m.Name
	}
	return strings.Join(m.Embedded, ".") + "." + m.Name
}

// Accessor describes how a member is read or written.
// For fields, the accessor is the field itself.
type Accessor struct {
	Name        string
	Field       bool
	PointerRecv bool
	Params      []Type
	Results     []Type
	// Reason explains why a field is not reachable, e.g. through a nil embedded pointer.
	Reason string
}

// RunMethod is the entry point a command dispatches to.
type RunMethod struct {
	Name         string
	TakesContext bool
	ReturnsError bool
	Supported    bool
}
