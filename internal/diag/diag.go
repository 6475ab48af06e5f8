// Package diag defines the diagnostics reported while analyzing command
// declarations. Diagnostics are values, never Go errors.
package diag

import (
	"fmt"
	"go/token"
	"sort"
	"strings"
)

// Severity of a diagnostic.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Descriptor identifies a kind of diagnostic.
// Format is a fmt template filled with the arguments given to New.
type Descriptor struct {
	ID       string
	Severity Severity
	Title    string
	Format   string
}

var (
	MemberNotExported = &Descriptor{
		ID: "CLI001", Severity: Warning, Title: "member is not exported",
		Format: "%s is not exported; only code in its own package can bind it",
	}
	NoGetter = &Descriptor{
		ID: "CLI002", Severity: Error, Title: "no usable getter",
		Format: "%s has no usable getter: %s",
	}
	NoSetter = &Descriptor{
		ID: "CLI003", Severity: Error, Title: "no usable setter",
		Format: "%s has no usable setter: %s",
	}
	NotBindable = &Descriptor{
		ID: "CLI004", Severity: Warning, Title: "type is not bindable",
		Format: "%s: type %s is not natively supported and no converter was found (New%s, Parse%s or UnmarshalText)",
	}
	InvalidAttribute = &Descriptor{
		ID: "CLI005", Severity: Error, Title: "invalid attribute value",
		Format: "%s: invalid %s %q: %s",
	}
	InvalidRole = &Descriptor{
		ID: "CLI006", Severity: Error, Title: "invalid cli tag",
		Format: "%s: cli tag must be \"option\" or \"argument\", got %q",
	}
	NotAStruct = &Descriptor{
		ID: "CLI010", Severity: Error, Title: "command is not a struct",
		Format: "%s: //cligen:command can only annotate struct types",
	}
	ParentNotFound = &Descriptor{
		ID: "CLI011", Severity: Error, Title: "parent command not found",
		Format: "%s: parent command %q not found",
	}
	ParentCycle = &Descriptor{
		ID: "CLI012", Severity: Error, Title: "parent cycle",
		Format: "%s: parent chain forms a cycle: %s",
	}
	NoRunMethod = &Descriptor{
		ID: "CLI013", Severity: Warning, Title: "no run method",
		Format: "%s has no supported Run method: %s",
	}
	DuplicateName = &Descriptor{
		ID: "CLI014", Severity: Warning, Title: "duplicate name",
		Format: "%s: name %q is already used by %s in this command",
	}
	AncestorNotEmitted = &Descriptor{
		ID: "CLI015", Severity: Warning, Title: "ancestor has errors",
		Format: "%s is not generated because its ancestor %s has errors",
	}
)

// Descriptors lists every descriptor, ordered by ID.
var Descriptors = []*Descriptor{
	MemberNotExported, NoGetter, NoSetter, NotBindable, InvalidAttribute, InvalidRole,
	NotAStruct, ParentNotFound, ParentCycle, NoRunMethod, DuplicateName, AncestorNotEmitted,
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Descriptor *Descriptor    `json:"-" yaml:"-"`
	ID         string         `json:"id" yaml:"id"`
	Severity   Severity       `json:"severity" yaml:"severity"`
	Pos        token.Position `json:"pos" yaml:"pos"`
	Symbol     string         `json:"symbol" yaml:"symbol"`
	Message    string         `json:"message" yaml:"message"`
}

// New renders a diagnostic for the symbol declared at pos.
func New(d *Descriptor, pos token.Position, symbol string, args ...any) Diagnostic {
	return Diagnostic{
		Descriptor: d,
		ID:         d.ID,
		Severity:   d.Severity,
		Pos:        pos,
		Symbol:     symbol,
		Message:    fmt.Sprintf(d.Format, args...),
	}
}

// String prints "file:line:col: severity ID: message", like the go vet family.
func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Pos.IsValid() {
		b.WriteString(d.Pos.String())
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s %s: %s", d.Severity, d.ID, d.Message)
	return b.String()
}

// List is an ordered collection of diagnostics.
type List []Diagnostic

// Add appends a diagnostic.
func (l *List) Add(d Diagnostic) {
	*l = append(*l, d)
}

// HasErrors reports whether any diagnostic is an error.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics of the given severity.
func (l List) Count(s Severity) int {
	n := 0
	for _, d := range l {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// IDs returns the diagnostic IDs in order, for assertions.
func (l List) IDs() []string {
	ids := make([]string, 0, len(l))
	for _, d := range l {
		ids = append(ids, d.ID)
	}
	return ids
}

// Sort orders diagnostics by position, then ID. The sort is stable so
// diagnostics on the same symbol keep their reporting order.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i].Pos, l[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return l[i].ID < l[j].ID
	})
}
