package metadata

import (
	"github.com/podhmo/cligen/internal/converter"
	"github.com/podhmo/cligen/internal/diag"
	"github.com/podhmo/cligen/internal/symbols"
)

// CommandDecl is an annotated struct type together with everything
// cligen needs to generate its builder.
type CommandDecl struct {
	Decl        *symbols.TypeDecl
	Name        string            // resolved CLI name (e.g. "serve")
	Attributes  CommandAttributes // parsed //cligen:command directive
	Settings    Settings          // effective naming conventions
	ParentName  string            // raw parent attribute, a type name in the same package
	Parent      *CommandDecl
	Children    []*CommandDecl // in discovery order
	Options     []*OptionDecl
	Arguments   []*ArgumentDecl
	Constructor string             // func New<Type>() *<Type>, if declared
	Run         *symbols.RunMethod // nil when absent
	Diagnostics diag.List          // command level diagnostics only
}

// TypeName is the Go type name of the command.
func (c *CommandDecl) TypeName() string { return c.Decl.Name }

// IsRoot reports whether the command has no parent.
func (c *CommandDecl) IsRoot() bool { return c.Parent == nil }

// Usable reports whether code can be emitted for the command.
func (c *CommandDecl) Usable() bool { return !c.Diagnostics.HasErrors() }

// Runnable reports whether the command dispatches to a supported Run method.
func (c *CommandDecl) Runnable() bool { return c.Run != nil && c.Run.Supported }

// Path returns the command names from the root down to c.
func (c *CommandDecl) Path() []string {
	var path []string
	seen := map[*CommandDecl]bool{}
	for cur := c; cur != nil && !seen[cur]; cur = cur.Parent {
		seen[cur] = true
		path = append([]string{cur.Name}, path...)
	}
	return path
}

// AllDiagnostics returns the command's diagnostics followed by those of its members.
func (c *CommandDecl) AllDiagnostics() diag.List {
	all := append(diag.List{}, c.Diagnostics...)
	for _, o := range c.Options {
		all = append(all, o.Diagnostics...)
	}
	for _, a := range c.Arguments {
		all = append(all, a.Diagnostics...)
	}
	return all
}

// MemberDecl is what options and arguments have in common.
type MemberDecl struct {
	Member     *symbols.Member
	Type       symbols.Type // declared value type
	Owner      *CommandDecl
	Name       string // resolved CLI name
	Attributes Attributes

	// TypeNeedingConverter is nil when the runtime parses Type natively.
	TypeNeedingConverter symbols.Type
	// Converter is nil when TypeNeedingConverter is nil or no converter was found.
	Converter *converter.Converter

	Diagnostics diag.List
	// Excluded options are reported but not bound: their name is already taken.
	Excluded bool
}

// Usable reports whether the member is emitted. Warnings do not block emission.
func (m *MemberDecl) Usable() bool { return !m.Excluded && !m.Diagnostics.HasErrors() }

// FieldName is the Go name of the backing field or getter.
func (m *MemberDecl) FieldName() string { return m.Member.Name }

// Selector reaches the backing field from the command value, through
// embedded fields when the field is promoted.
func (m *MemberDecl) Selector() string { return m.Member.Selector() }

// OptionDecl is a named option (e.g. --display).
type OptionDecl struct {
	MemberDecl
	Aliases []string // explicit aliases, then the auto-generated short form
}

// ArgumentDecl is a positional argument.
type ArgumentDecl struct {
	MemberDecl
}
