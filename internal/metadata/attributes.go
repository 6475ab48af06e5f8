package metadata

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/podhmo/cligen/internal/naming"
)

// Arity is the allowed count of values of an option or argument.
// The empty Arity means "let the runtime decide from the value type".
type Arity string

const (
	ArityZero        Arity = "Zero"
	ArityZeroOrOne   Arity = "ZeroOrOne"
	ArityExactlyOne  Arity = "ExactlyOne"
	ArityZeroOrMore  Arity = "ZeroOrMore"
	ArityOneOrMore   Arity = "OneOrMore"
	arityUnspecified Arity = ""
)

// ParseArity accepts the constant names case-insensitively.
func ParseArity(s string) (Arity, error) {
	for _, a := range []Arity{ArityZero, ArityZeroOrOne, ArityExactlyOne, ArityZeroOrMore, ArityOneOrMore} {
		if strings.EqualFold(string(a), strings.TrimSpace(s)) {
			return a, nil
		}
	}
	return arityUnspecified, fmt.Errorf("want one of Zero, ZeroOrOne, ExactlyOne, ZeroOrMore, OneOrMore")
}

// AttributeError is an attribute value that could not be parsed.
type AttributeError struct {
	Key   string
	Value string
	Err   error
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Key, e.Value, e.Err)
}

func (e *AttributeError) Unwrap() error { return e.Err }

// Attributes is the parsed metadata of an option or argument.
// Recognized tag keys:
//
//	name      overrides the CLI name (suffix stripping is skipped)
//	desc      description, defaults to the doc comment
//	required  "true" / "false"
//	hidden    "true" / "false"
//	helpname  placeholder shown in help, e.g. FILE
//	alias     comma separated aliases (options only)
//	allowed   comma separated allowed values
//	arity     Zero, ZeroOrOne, ExactlyOne, ZeroOrMore or OneOrMore
type Attributes struct {
	Name          string   `json:"name,omitempty" yaml:"name,omitempty"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	Required      bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Hidden        bool     `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	HelpName      string   `json:"helpName,omitempty" yaml:"helpName,omitempty"`
	Aliases       []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	AllowedValues []string `json:"allowedValues,omitempty" yaml:"allowedValues,omitempty"`
	Arity         Arity    `json:"arity,omitempty" yaml:"arity,omitempty"`
}

// Property is one settable field of the runtime option/argument holder.
type Property struct {
	Name  string
	Value any // string or bool
}

// Properties returns the mapped properties that are set, in emission order.
// Name, AllowedValues, Aliases and Arity are not included: each of them
// is emitted in its own way.
func (a Attributes) Properties() []Property {
	var props []Property
	if a.Description != "" {
		props = append(props, Property{Name: "Description", Value: a.Description})
	}
	if a.Required {
		props = append(props, Property{Name: "Required", Value: true})
	}
	if a.Hidden {
		props = append(props, Property{Name: "Hidden", Value: true})
	}
	if a.HelpName != "" {
		props = append(props, Property{Name: "HelpName", Value: a.HelpName})
	}
	return props
}

// ParseAttributes reads member attributes from tag. Doc is used when no desc is given.
// Every invalid value is reported; the corresponding field keeps its zero value.
func ParseAttributes(tag reflect.StructTag, doc string) (Attributes, []*AttributeError) {
	var errs []*AttributeError
	a := Attributes{
		Name:          strings.TrimSpace(tag.Get("name")),
		Description:   tag.Get("desc"),
		HelpName:      tag.Get("helpname"),
		Aliases:       splitList(tag.Get("alias")),
		AllowedValues: splitList(tag.Get("allowed")),
	}
	if a.Description == "" {
		a.Description = doc
	}
	if v, ok := tag.Lookup("required"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, &AttributeError{Key: "required", Value: v, Err: err})
		}
		a.Required = b
	}
	if v, ok := tag.Lookup("hidden"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, &AttributeError{Key: "hidden", Value: v, Err: err})
		}
		a.Hidden = b
	}
	if v, ok := tag.Lookup("arity"); ok {
		arity, err := ParseArity(v)
		if err != nil {
			errs = append(errs, &AttributeError{Key: "arity", Value: v, Err: err})
		}
		a.Arity = arity
	}
	return a, errs
}

// CommandAttributes is the parsed //cligen:command directive.
// Recognized keys: name, desc, parent, alias, hidden, casing, prefix,
// shortprefix and shortauto.
type CommandAttributes struct {
	Name        string           `json:"name,omitempty" yaml:"name,omitempty"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Parent      string           `json:"parent,omitempty" yaml:"parent,omitempty"`
	Aliases     []string         `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Hidden      bool             `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Settings    SettingsOverride `json:"-" yaml:"-"`
}

// ParseCommandAttributes reads command attributes from the directive.
func ParseCommandAttributes(tag reflect.StructTag, doc string) (CommandAttributes, []*AttributeError) {
	var errs []*AttributeError
	a := CommandAttributes{
		Name:        strings.TrimSpace(tag.Get("name")),
		Description: tag.Get("desc"),
		Parent:      strings.TrimSpace(tag.Get("parent")),
		Aliases:     splitList(tag.Get("alias")),
	}
	if a.Description == "" {
		a.Description = doc
	}
	if v, ok := tag.Lookup("hidden"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, &AttributeError{Key: "hidden", Value: v, Err: err})
		}
		a.Hidden = b
	}
	if v, ok := tag.Lookup("casing"); ok {
		c, err := naming.ParseCasing(v)
		if err != nil {
			errs = append(errs, &AttributeError{Key: "casing", Value: v, Err: err})
		} else {
			a.Settings.Casing = &c
		}
	}
	if v, ok := tag.Lookup("prefix"); ok {
		p, err := naming.ParsePrefix(v)
		if err != nil {
			errs = append(errs, &AttributeError{Key: "prefix", Value: v, Err: err})
		} else {
			a.Settings.Prefix = &p
		}
	}
	if v, ok := tag.Lookup("shortprefix"); ok {
		p, err := naming.ParsePrefix(v)
		if err != nil {
			errs = append(errs, &AttributeError{Key: "shortprefix", Value: v, Err: err})
		} else {
			a.Settings.ShortFormPrefix = &p
		}
	}
	if v, ok := tag.Lookup("shortauto"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, &AttributeError{Key: "shortauto", Value: v, Err: err})
		} else {
			a.Settings.ShortFormAutoGenerate = &b
		}
	}
	return a, errs
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
