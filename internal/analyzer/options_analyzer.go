package analyzer

import (
	"fmt"

	"github.com/podhmo/cligen/internal/diag"
	"github.com/podhmo/cligen/internal/metadata"
	"github.com/podhmo/cligen/internal/naming"
	"github.com/podhmo/cligen/internal/symbols"
)

const (
	roleOption   = "option"
	roleArgument = "argument"
)

// members builds the options and arguments of cmd in declaration order.
// Names are resolved here, so cmd.Settings must already be final.
func (a *analyzer) members(cmd *metadata.CommandDecl) {
	names := newNameTable()
	for _, m := range cmd.Decl.Members {
		if m.Role != roleOption && m.Role != roleArgument {
			a.extra.Add(diag.New(diag.InvalidRole, m.Ref.Pos, m.Ref.Name, m.Ref.Name, m.Role))
			continue
		}

		md := a.member(cmd, m)
		if m.Role == roleArgument {
			if len(md.Attributes.Aliases) > 0 {
				md.Diagnostics.Add(diag.New(diag.InvalidAttribute, m.Ref.Pos, m.Ref.Name,
					m.Ref.Name, "alias", m.Tag.Get("alias"), "arguments are positional and have no aliases"))
			}
			md.Name = argumentName(m, md.Attributes, cmd.Settings)
			cmd.Arguments = append(cmd.Arguments, &metadata.ArgumentDecl{MemberDecl: md})
			continue
		}

		opt := &metadata.OptionDecl{MemberDecl: md}
		opt.Name = optionName(m, md.Attributes, cmd.Settings)
		if !opt.Excluded {
			a.aliases(cmd, opt, names)
		}
		cmd.Options = append(cmd.Options, opt)
	}
}

// member runs the per-member rules in order: exported, getter/setter,
// attributes, converter. An error stops the checks after it. Unexported
// members are only warned about: the generated code lives in the same
// package and can still reach them.
func (a *analyzer) member(cmd *metadata.CommandDecl, m *symbols.Member) metadata.MemberDecl {
	md := metadata.MemberDecl{Member: m, Type: m.Type, Owner: cmd}
	attrs, attrErrs := metadata.ParseAttributes(m.Tag, m.Doc)
	md.Attributes = attrs

	if !m.Exported {
		md.Diagnostics.Add(diag.New(diag.MemberNotExported, m.Ref.Pos, m.Ref.Name, m.Ref.Name))
	}

	if reason := getterProblem(m); reason != "" {
		md.Diagnostics.Add(diag.New(diag.NoGetter, m.Ref.Pos, m.Ref.Name, m.Ref.Name, reason))
	}
	if reason := setterProblem(m); reason != "" {
		md.Diagnostics.Add(diag.New(diag.NoSetter, m.Ref.Pos, m.Ref.Name, m.Ref.Name, reason))
	}
	for _, e := range attrErrs {
		md.Diagnostics.Add(diag.New(diag.InvalidAttribute, m.Ref.Pos, m.Ref.Name, m.Ref.Name, e.Key, e.Value, e.Err.Error()))
	}
	if md.Diagnostics.HasErrors() || m.Type == nil {
		return md
	}

	res := a.cfg.Resolver.Resolve(m.Type)
	md.TypeNeedingConverter = res.TypeNeedingConverter
	md.Converter = res.Converter
	if !res.Bindable() {
		t := res.TypeNeedingConverter
		name := t.Name()
		if name == "" {
			name = "<T>"
		}
		md.Diagnostics.Add(diag.New(diag.NotBindable, m.Ref.Pos, m.Ref.Name, m.Ref.Name, t.String(), name, name))
	}
	return md
}

func getterProblem(m *symbols.Member) string {
	g := m.Getter
	switch {
	case g == nil:
		return "no getter"
	case g.Reason != "":
		return g.Reason
	case len(g.Params) != 0:
		return fmt.Sprintf("%s must take no arguments, it takes %d", g.Name, len(g.Params))
	case len(g.Results) != 1:
		return fmt.Sprintf("%s must return exactly one value, it returns %d", g.Name, len(g.Results))
	}
	return ""
}

func setterProblem(m *symbols.Member) string {
	s := m.Setter
	want := "Set" + m.Name
	switch {
	case s == nil:
		return fmt.Sprintf("missing method %s", want)
	case s.Reason != "":
		return s.Reason
	case s.Field:
		return ""
	case !s.PointerRecv:
		return fmt.Sprintf("%s must have a pointer receiver", want)
	case len(s.Params) != 1:
		return fmt.Sprintf("%s must take exactly one argument, it takes %d", want, len(s.Params))
	case len(s.Results) != 0:
		return fmt.Sprintf("%s must not return values", want)
	case m.Type != nil && !s.Params[0].Identical(m.Type):
		return fmt.Sprintf("%s takes %s, the getter returns %s", want, s.Params[0], m.Type)
	}
	return ""
}

// optionName resolves the CLI name of an option.
// Explicit names keep their spelling apart from casing and are only
// prefixed; names already carrying a prefix are used verbatim.
func optionName(m *symbols.Member, attrs metadata.Attributes, s metadata.Settings) string {
	if n := attrs.Name; n != "" {
		if naming.HasPrefix(n) {
			return n
		}
		return naming.ApplyPrefix(naming.ApplyCasing(n, s.Casing), s.Prefix)
	}
	base := naming.StripSuffixes(m.Name, naming.OptionSuffixes)
	return naming.ApplyPrefix(naming.ApplyCasing(base, s.Casing), s.Prefix)
}

// argumentName resolves the CLI name of an argument. Arguments are never
// prefixed, and an explicit name is used as written.
func argumentName(m *symbols.Member, attrs metadata.Attributes, s metadata.Settings) string {
	if n := attrs.Name; n != "" {
		return n
	}
	return naming.ApplyCasing(naming.StripSuffixes(m.Name, naming.ArgumentSuffixes), s.Casing)
}

// nameTable tracks the option tokens used inside one command.
type nameTable map[string]string // token -> owning member

func newNameTable() nameTable { return nameTable{} }

// aliases claims the option name, then explicit aliases, then the
// auto-generated short form. A taken option name excludes the option;
// a taken explicit alias is dropped with a warning; a taken short form
// is skipped silently.
func (a *analyzer) aliases(cmd *metadata.CommandDecl, opt *metadata.OptionDecl, names nameTable) {
	ref := opt.Member.Ref
	if owner, taken := names[opt.Name]; taken {
		opt.Diagnostics.Add(diag.New(diag.DuplicateName, ref.Pos, ref.Name, ref.Name, opt.Name, owner))
		opt.Excluded = true
		return
	}
	if !opt.Usable() {
		return
	}
	names[opt.Name] = ref.Name

	for _, alias := range opt.Attributes.Aliases {
		if owner, taken := names[alias]; taken {
			opt.Diagnostics.Add(diag.New(diag.DuplicateName, ref.Pos, ref.Name, ref.Name, alias, owner))
			continue
		}
		names[alias] = ref.Name
		opt.Aliases = append(opt.Aliases, alias)
	}

	if !cmd.Settings.ShortFormAutoGenerate {
		return
	}
	short := naming.ShortForm(opt.Name, cmd.Settings.ShortFormPrefix)
	if short == "" || short == opt.Name {
		return
	}
	if _, taken := names[short]; taken {
		return
	}
	names[short] = ref.Name
	opt.Aliases = append(opt.Aliases, short)
}
