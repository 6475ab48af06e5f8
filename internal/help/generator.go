// Package help renders a preview of the help message of an analyzed command,
// without building or running the generated code.
package help

import (
	"fmt"
	"io"
	"strings"

	"github.com/podhmo/cligen/internal/metadata"
	"github.com/podhmo/cligen/internal/symbols"
)

// GenerateHelp returns the help message of cmd.
func GenerateHelp(cmd *metadata.CommandDecl) string {
	if cmd == nil {
		return "<error>"
	}
	var sb strings.Builder
	generateHelp(&sb, cmd)
	return sb.String()
}

func generateHelp(w io.Writer, cmd *metadata.CommandDecl) {
	path := strings.Join(cmd.Path(), " ")
	if d := cmd.Attributes.Description; d != "" {
		fmt.Fprintf(w, "%s - %s\n\n", path, strings.ReplaceAll(d, "\n", "\n"+strings.Repeat(" ", len(path)+3)))
	} else {
		fmt.Fprintf(w, "%s\n\n", path)
	}

	options := visibleOptions(cmd)
	children := visibleChildren(cmd)

	fmt.Fprintln(w, "Usage:")
	usage := path
	if len(options) > 0 {
		usage += " [flags]"
	}
	for _, a := range cmd.Arguments {
		if a.Usable() && !a.Attributes.Hidden {
			usage += " " + argumentPlaceholder(a)
		}
	}
	fmt.Fprintf(w, "  %s\n", usage)
	if len(children) > 0 {
		fmt.Fprintf(w, "  %s [command]\n", path)
	}

	if len(cmd.Attributes.Aliases) > 0 {
		fmt.Fprintf(w, "\nAliases:\n  %s\n", strings.Join(append([]string{cmd.Name}, cmd.Attributes.Aliases...), ", "))
	}

	if len(children) > 0 {
		fmt.Fprintln(w, "\nCommands:")
		width := 0
		for _, c := range children {
			width = max(width, len(c.Name))
		}
		for _, c := range children {
			fmt.Fprintf(w, "  %-*s  %s\n", width, c.Name, firstLine(c.Attributes.Description))
		}
	}

	if args := visibleArguments(cmd); len(args) > 0 {
		fmt.Fprintln(w, "\nArguments:")
		width := 0
		for _, a := range args {
			width = max(width, len(argumentPlaceholder(a)))
		}
		for _, a := range args {
			fmt.Fprintf(w, "  %-*s  %s%s\n", width, argumentPlaceholder(a), a.Attributes.Description, annotations(&a.MemberDecl))
		}
	}

	fmt.Fprintln(w, "\nFlags:")
	lines := make([]string, 0, len(options)+1)
	for _, o := range options {
		lines = append(lines, optionSignature(o))
	}
	lines = append(lines, "-h, --help")
	width := 0
	for _, l := range lines {
		width = max(width, len(l))
	}
	for i, o := range options {
		help := strings.ReplaceAll(o.Attributes.Description, "\n", "\n"+strings.Repeat(" ", width+6))
		fmt.Fprintf(w, "  %-*s    %s%s\n", width, lines[i], help, annotations(&o.MemberDecl))
	}
	fmt.Fprintf(w, "  %-*s    %s\n", width, "-h, --help", "Show this help message and exit")
}

func visibleOptions(cmd *metadata.CommandDecl) []*metadata.OptionDecl {
	var out []*metadata.OptionDecl
	for _, o := range cmd.Options {
		if o.Usable() && !o.Attributes.Hidden {
			out = append(out, o)
		}
	}
	return out
}

func visibleArguments(cmd *metadata.CommandDecl) []*metadata.ArgumentDecl {
	var out []*metadata.ArgumentDecl
	for _, a := range cmd.Arguments {
		if a.Usable() && !a.Attributes.Hidden {
			out = append(out, a)
		}
	}
	return out
}

func visibleChildren(cmd *metadata.CommandDecl) []*metadata.CommandDecl {
	var out []*metadata.CommandDecl
	for _, c := range cmd.Children {
		if c.Usable() && !c.Attributes.Hidden {
			out = append(out, c)
		}
	}
	return out
}

// optionSignature is e.g. "-d, --display string" or "--tag strings".
func optionSignature(o *metadata.OptionDecl) string {
	names := append(append([]string{}, o.Aliases...), o.Name)
	sig := strings.Join(names, ", ")
	if t := typeIndicator(&o.MemberDecl); t != "" {
		sig += " " + t
	}
	return sig
}

func argumentPlaceholder(a *metadata.ArgumentDecl) string {
	name := a.Name
	if a.Attributes.HelpName != "" {
		name = a.Attributes.HelpName
	}
	if multi(a.Type) || a.Attributes.Arity == metadata.ArityZeroOrMore || a.Attributes.Arity == metadata.ArityOneOrMore {
		name += "..."
	}
	switch {
	case a.Attributes.Arity == metadata.ArityExactlyOne || a.Attributes.Arity == metadata.ArityOneOrMore:
		return "<" + name + ">"
	case a.Attributes.Required && a.Attributes.Arity == "":
		return "<" + name + ">"
	}
	return "[" + name + "]"
}

// typeIndicator is the value placeholder: the help name, or the lower-cased
// element type name, pluralized for collections. Booleans take no value.
func typeIndicator(m *metadata.MemberDecl) string {
	if m.Attributes.HelpName != "" {
		return m.Attributes.HelpName
	}
	t := m.Type
	if t.Kind() == symbols.KindPointer {
		t = t.Elem()
	}
	plural := ""
	if t.Kind() == symbols.KindSlice || t.Kind() == symbols.KindArray {
		t = t.Elem()
		plural = "s"
		if t.Kind() == symbols.KindPointer {
			t = t.Elem()
		}
	}
	name := strings.ToLower(t.Name())
	if name == "" {
		name = "value"
	}
	if name == "bool" && plural == "" {
		return ""
	}
	return name + plural
}

func multi(t symbols.Type) bool {
	if t.Kind() == symbols.KindPointer {
		t = t.Elem()
	}
	return t.Kind() == symbols.KindSlice
}

func annotations(m *metadata.MemberDecl) string {
	var sb strings.Builder
	if m.Attributes.Required {
		sb.WriteString(" (required)")
	}
	if len(m.Attributes.AllowedValues) > 0 {
		quoted := make([]string, len(m.Attributes.AllowedValues))
		for i, v := range m.Attributes.AllowedValues {
			quoted[i] = fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(&sb, " (allowed: %s)", strings.Join(quoted, ", "))
	}
	return sb.String()
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
