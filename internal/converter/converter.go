// Package converter decides whether a member type can be parsed by the
// runtime as is, and otherwise finds a string converter for it.
package converter

import (
	"fmt"

	"github.com/podhmo/cligen/internal/symbols"
)

// RuntimeImport is the default import path of the runtime package.
const RuntimeImport = "github.com/podhmo/cligen"

// Kind is the shape of a resolved converter.
type Kind int

const (
	// Constructor is func New<T>(s string, ...X) T | *T [, error].
	Constructor Kind = iota + 1
	// Factory is func Parse<T>(s string, ...X) T [, error].
	Factory
	// TextUnmarshaler is (*T).UnmarshalText([]byte) error.
	TextUnmarshaler
)

func (k Kind) String() string {
	switch k {
	case Constructor:
		return "constructor"
	case Factory:
		return "factory"
	case TextUnmarshaler:
		return "text-unmarshaler"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler, for the scan output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Converter is a resolved callable turning a string into Target.
type Converter struct {
	Kind   Kind
	Target symbols.Type
	// Func is the constructor or factory; nil for TextUnmarshaler.
	Func           *symbols.Func
	ReturnsPointer bool
	ReturnsError   bool
}

// Result of resolving a member type.
// A nil TypeNeedingConverter means the type is natively supported.
type Result struct {
	TypeNeedingConverter symbols.Type
	Converter            *Converter
}

// Native reports whether no converter is needed.
func (r Result) Native() bool { return r.TypeNeedingConverter == nil }

// Bindable reports whether values of the type can be produced at all.
func (r Result) Bindable() bool { return r.Native() || r.Converter != nil }

// Resolver holds the allow-list of natively supported types.
type Resolver struct {
	native map[string]bool
}

// stdNative lists the non-basic types the runtime parses itself,
// keyed by "<pkgpath>.<Name>".
var stdNative = []string{
	"math/big.Float",
	"math/big.Int",
	"time.Time",
	"time.Duration",
	"time.Location",
	"time.Month",
	"time.Weekday",
	"github.com/google/uuid.UUID",
	"net/url.URL",
	"net.IP",
	"net.IPNet",
	"net.TCPAddr",
	"net.UDPAddr",
	"net/netip.Addr",
	"net/netip.AddrPort",
	"net/netip.Prefix",
}

// runtimeNative lists the path kinds declared by the runtime package.
var runtimeNative = []string{"Path", "FilePath", "DirPath"}

// NewResolver returns a resolver whose runtime path kinds live in runtimeImport.
func NewResolver(runtimeImport string) *Resolver {
	if runtimeImport == "" {
		runtimeImport = RuntimeImport
	}
	r := &Resolver{native: make(map[string]bool, len(stdNative)+len(runtimeNative))}
	for _, name := range stdNative {
		r.native[name] = true
	}
	for _, name := range runtimeNative {
		r.native[runtimeImport+"."+name] = true
	}
	return r
}

// Default resolves against the default runtime import path.
var Default = NewResolver(RuntimeImport)

// Resolve uses the Default resolver.
func Resolve(t symbols.Type) Result {
	return Default.Resolve(t)
}

// IsNative reports whether t itself is on the allow-list.
// Boolean, string, integer and float types always are, named or not.
func (r *Resolver) IsNative(t symbols.Type) bool {
	switch t.Kind() {
	case symbols.KindBasic:
		return t.Scalar()
	case symbols.KindNamed:
		if t.Scalar() {
			return true
		}
		return r.native[t.PkgPath()+"."+t.Name()]
	}
	return false
}

// Resolve strips pointers and slices/arrays around t until a natively
// supported type is reached. Otherwise the innermost type is the one
// needing a converter, and the converter search runs on it.
func (r *Resolver) Resolve(t symbols.Type) Result {
	cur := t
	for cur != nil {
		if r.IsNative(cur) {
			return Result{}
		}
		unwrapped := false
		if cur.Kind() == symbols.KindPointer {
			cur = cur.Elem()
			unwrapped = true
			if r.IsNative(cur) {
				return Result{}
			}
		}
		if k := cur.Kind(); k == symbols.KindSlice || k == symbols.KindArray {
			cur = cur.Elem()
			unwrapped = true
		}
		if !unwrapped {
			break
		}
	}
	if cur == nil {
		return Result{TypeNeedingConverter: t}
	}
	return Result{TypeNeedingConverter: cur, Converter: Find(cur)}
}

// Find searches the converter of a named type, first match wins:
// New<T>, then Parse<T>, then *T implementing encoding.TextUnmarshaler.
// Pointers, slices and type parameters never have converters.
func Find(t symbols.Type) *Converter {
	if t.Kind() != symbols.KindNamed {
		return nil
	}
	if fn := t.LookupFunc("New" + t.Name()); fn != nil {
		if c := match(t, fn, Constructor); c != nil {
			return c
		}
	}
	if fn := t.LookupFunc("Parse" + t.Name()); fn != nil {
		if c := match(t, fn, Factory); c != nil {
			return c
		}
	}
	if t.PointerImplementsTextUnmarshaler() {
		return &Converter{Kind: TextUnmarshaler, Target: t, ReturnsPointer: true, ReturnsError: true}
	}
	return nil
}

func match(t symbols.Type, fn *symbols.Func, kind Kind) *Converter {
	if !fn.Exported || !acceptsString(fn) {
		return nil
	}
	switch len(fn.Results) {
	case 1:
	case 2:
		if !fn.ResultError {
			return nil
		}
	default:
		return nil
	}

	c := &Converter{Kind: kind, Target: t, Func: fn, ReturnsError: len(fn.Results) == 2}
	ret := fn.Results[0]
	switch {
	case ret.Identical(t):
	case kind == Constructor && ret.Kind() == symbols.KindPointer && ret.Elem().Identical(t):
		c.ReturnsPointer = true
	default:
		return nil
	}
	return c
}

// acceptsString holds for f(s string) and f(s string, opts ...X).
func acceptsString(fn *symbols.Func) bool {
	switch len(fn.Params) {
	case 1:
		return !fn.Variadic && symbols.IsString(fn.Params[0])
	case 2:
		return fn.Variadic && symbols.IsString(fn.Params[0])
	}
	return false
}
