package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/podhmo/cligen/internal/diag"
)

// CommandSummary is a plain, serializable view of a CommandDecl,
// used by the scan output and by Fingerprint.
type CommandSummary struct {
	Type        string            `json:"type" yaml:"type"`
	Package     string            `json:"package" yaml:"package"`
	Name        string            `json:"name" yaml:"name"`
	Path        []string          `json:"path" yaml:"path"`
	Parent      string            `json:"parent,omitempty" yaml:"parent,omitempty"`
	Attributes  CommandAttributes `json:"attributes" yaml:"attributes"`
	Settings    Settings          `json:"settings" yaml:"settings"`
	Constructor string            `json:"constructor,omitempty" yaml:"constructor,omitempty"`
	Run         string            `json:"run,omitempty" yaml:"run,omitempty"`
	Options     []MemberSummary   `json:"options,omitempty" yaml:"options,omitempty"`
	Arguments   []MemberSummary   `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Children    []string          `json:"children,omitempty" yaml:"children,omitempty"`
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// MemberSummary is the serializable view of an option or argument.
type MemberSummary struct {
	Field          string            `json:"field" yaml:"field"`
	Kind           string            `json:"kind" yaml:"kind"`
	Name           string            `json:"name" yaml:"name"`
	Type           string            `json:"type" yaml:"type"`
	Aliases        []string          `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Attributes     Attributes        `json:"attributes" yaml:"attributes"`
	NeedsConverter string            `json:"needsConverter,omitempty" yaml:"needsConverter,omitempty"`
	Converter      string            `json:"converter,omitempty" yaml:"converter,omitempty"`
	Diagnostics    []diag.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Summary returns the serializable view of c.
func (c *CommandDecl) Summary() CommandSummary {
	s := CommandSummary{
		Type:        c.TypeName(),
		Package:     c.Decl.PkgPath,
		Name:        c.Name,
		Path:        c.Path(),
		Attributes:  c.Attributes,
		Settings:    c.Settings,
		Constructor: c.Constructor,
		Diagnostics: c.Diagnostics,
	}
	if c.Parent != nil {
		s.Parent = c.Parent.TypeName()
	}
	if c.Run != nil {
		s.Run = runSignature(c)
	}
	for _, o := range c.Options {
		m := o.summary()
		m.Aliases = o.Aliases
		s.Options = append(s.Options, m)
	}
	for _, a := range c.Arguments {
		s.Arguments = append(s.Arguments, a.summary())
	}
	for _, child := range c.Children {
		s.Children = append(s.Children, child.TypeName())
	}
	return s
}

func runSignature(c *CommandDecl) string {
	var b strings.Builder
	b.WriteString(c.Run.Name)
	if c.Run.TakesContext {
		b.WriteString("(context.Context)")
	} else {
		b.WriteString("()")
	}
	if c.Run.ReturnsError {
		b.WriteString(" error")
	}
	if !c.Run.Supported {
		b.WriteString(" (unsupported)")
	}
	return b.String()
}

func (m *MemberDecl) summary() MemberSummary {
	s := MemberSummary{
		Field:       m.Selector(),
		Kind:        m.Member.Kind.String(),
		Name:        m.Name,
		Attributes:  m.Attributes,
		Diagnostics: m.Diagnostics,
	}
	if m.Type != nil {
		s.Type = m.Type.String()
	}
	if m.TypeNeedingConverter != nil {
		s.NeedsConverter = m.TypeNeedingConverter.String()
	}
	if c := m.Converter; c != nil {
		s.Converter = c.Kind.String()
		if c.Func != nil {
			s.Converter += " " + c.Func.Name
		}
	}
	return s
}

// Fingerprint is a structural digest of a set of commands. Two analyses of
// the same declarations have the same fingerprint.
func Fingerprint(cmds []*CommandDecl) string {
	summaries := make([]CommandSummary, 0, len(cmds))
	for _, c := range cmds {
		summaries = append(summaries, c.Summary())
	}
	b, err := json.Marshal(summaries)
	if err != nil {
		// summaries hold only strings, bools and slices of them
		panic(err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
