package cligen

import (
	"fmt"
	"reflect"
	"strings"
)

// Arity is the allowed count of values of an option or argument.
type Arity int

const (
	// ArityDefault derives the arity from the value type and Required.
	ArityDefault Arity = iota
	ArityZero
	ArityZeroOrOne
	ArityExactlyOne
	ArityZeroOrMore
	ArityOneOrMore
)

func (a Arity) String() string {
	switch a {
	case ArityZero:
		return "Zero"
	case ArityZeroOrOne:
		return "ZeroOrOne"
	case ArityExactlyOne:
		return "ExactlyOne"
	case ArityZeroOrMore:
		return "ZeroOrMore"
	case ArityOneOrMore:
		return "OneOrMore"
	}
	return "Default"
}

const unbounded = -1

// bounds returns the minimum and maximum count; hi is unbounded (-1) for
// the "OrMore" arities.
func (a Arity) bounds() (lo, hi int) {
	switch a {
	case ArityZero:
		return 0, 0
	case ArityZeroOrOne:
		return 0, 1
	case ArityExactlyOne:
		return 1, 1
	case ArityZeroOrMore:
		return 0, unbounded
	case ArityOneOrMore:
		return 1, unbounded
	}
	return 0, unbounded
}

// Symbol holds the settable properties shared by options and arguments.
type Symbol struct {
	Name        string
	Description string
	Required    bool
	Hidden      bool
	HelpName    string
	Arity       Arity

	allowed []string
	typ     reflect.Type
}

func (s *Symbol) symbol() *Symbol { return s }

// Holder is an option or argument that can be added to a Command.
type Holder interface {
	symbol() *Symbol
}

// AllowedValues restricts the raw values accepted by h.
func AllowedValues(h Holder, values ...string) {
	s := h.symbol()
	s.allowed = append(s.allowed, values...)
}

func (s *Symbol) checkAllowed(raw string) error {
	if len(s.allowed) == 0 {
		return nil
	}
	for _, v := range s.allowed {
		if v == raw {
			return nil
		}
	}
	return fmt.Errorf("invalid value %q for %s: allowed values are %s", raw, s.Name, strings.Join(s.allowed, ", "))
}

// effectiveArity resolves ArityDefault from the value type and Required.
func (s *Symbol) effectiveArity() Arity {
	if s.Arity != ArityDefault {
		return s.Arity
	}
	multi := isMulti(s.typ)
	switch {
	case multi && s.Required:
		return ArityOneOrMore
	case multi:
		return ArityZeroOrMore
	case s.Required:
		return ArityExactlyOne
	}
	return ArityZeroOrOne
}

func (s *Symbol) helpName() string {
	if s.HelpName != "" {
		return s.HelpName
	}
	return typeLabel(s.typ)
}

// Option is a named option such as --display.
type Option[T any] struct {
	Symbol
	Aliases []string

	parse      ParseFunc[T]
	def        T
	hasDefault bool
}

// NewOption creates an option whose values are produced by parse.
func NewOption[T any](name string, parse ParseFunc[T]) *Option[T] {
	return &Option[T]{
		Symbol: Symbol{Name: name, typ: TypeOf[T]()},
		parse:  parse,
	}
}

// AddAlias adds another token for the option, e.g. "-d".
func (o *Option[T]) AddAlias(alias string) {
	o.Aliases = append(o.Aliases, alias)
}

// SetDefault sets the value used when the option is absent.
func (o *Option[T]) SetDefault(v T) {
	o.def = v
	o.hasDefault = true
}

func (o *Option[T]) value(raw []string) T {
	if len(raw) == 0 {
		return o.def
	}
	v, err := o.parse(raw)
	if err != nil {
		return o.def
	}
	return v
}

func (o *Option[T]) check(raw []string) error {
	for _, r := range raw {
		if err := o.checkAllowed(r); err != nil {
			return err
		}
	}
	_, err := o.parse(raw)
	return err
}

func (o *Option[T]) aliases() []string { return o.Aliases }

func (o *Option[T]) defaultString() string {
	if !o.hasDefault {
		return ""
	}
	v := reflect.ValueOf(&o.def).Elem()
	if v.IsZero() {
		return ""
	}
	return formatValue(v)
}

// Argument is a positional argument.
type Argument[T any] struct {
	Symbol

	parse      ParseFunc[T]
	def        T
	hasDefault bool
}

// NewArgument creates a positional argument whose values are produced by parse.
func NewArgument[T any](name string, parse ParseFunc[T]) *Argument[T] {
	return &Argument[T]{
		Symbol: Symbol{Name: name, typ: TypeOf[T]()},
		parse:  parse,
	}
}

// SetDefault sets the value used when the argument is absent.
func (a *Argument[T]) SetDefault(v T) {
	a.def = v
	a.hasDefault = true
}

func (a *Argument[T]) value(raw []string) T {
	if len(raw) == 0 {
		return a.def
	}
	v, err := a.parse(raw)
	if err != nil {
		return a.def
	}
	return v
}

func (a *Argument[T]) check(raw []string) error {
	for _, r := range raw {
		if err := a.checkAllowed(r); err != nil {
			return err
		}
	}
	if len(raw) == 0 {
		return nil
	}
	_, err := a.parse(raw)
	return err
}

// optionHolder and argumentHolder are implemented by every Option[T] and Argument[T].
type optionHolder interface {
	Holder
	aliases() []string
	check(raw []string) error
	defaultString() string
}

type argumentHolder interface {
	Holder
	check(raw []string) error
}

var (
	_ optionHolder   = (*Option[string])(nil)
	_ argumentHolder = (*Argument[string])(nil)
)
