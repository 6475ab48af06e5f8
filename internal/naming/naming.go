// Package naming resolves CLI-facing names from Go declaration names:
// suffix stripping, casing conventions and prefix conventions.
package naming

import (
	"fmt"
	"strings"
	"unicode"
)

// CommandSuffixes are stripped from command type names ("ServeCommand" -> "Serve").
var CommandSuffixes = []string{
	"RootCliCommand",
	"RootCommand",
	"SubCliCommand",
	"SubCommand",
	"CliCommand",
	"Command",
	"Cli",
}

// OptionSuffixes are stripped from option member names.
var OptionSuffixes = withSuffix(CommandSuffixes, "Option")

// ArgumentSuffixes are stripped from argument member names.
var ArgumentSuffixes = withSuffix(CommandSuffixes, "Argument")

func withSuffix(base []string, suffix string) []string {
	out := make([]string, 0, len(base)+1)
	for _, s := range base {
		out = append(out, s+suffix)
	}
	return append(out, suffix)
}

// StripSuffixes removes the longest suffix of name found in suffixes and
// repeats until none matches, so stripping twice is the same as stripping once.
// A name is never stripped down to the empty string.
func StripSuffixes(name string, suffixes []string) string {
	for {
		best := ""
		for _, s := range suffixes {
			if len(s) > len(best) && len(s) < len(name) && strings.HasSuffix(name, s) {
				best = s
			}
		}
		if best == "" {
			return name
		}
		name = strings.TrimSuffix(name, best)
	}
}

// Prefix is the token put in front of option names.
type Prefix int

const (
	PrefixNone Prefix = iota
	PrefixSingleHyphen
	PrefixDoubleHyphen
	PrefixForwardSlash
)

func (p Prefix) Token() string {
	switch p {
	case PrefixSingleHyphen:
		return "-"
	case PrefixDoubleHyphen:
		return "--"
	case PrefixForwardSlash:
		return "/"
	}
	return ""
}

func (p Prefix) String() string {
	switch p {
	case PrefixSingleHyphen:
		return "single-hyphen"
	case PrefixDoubleHyphen:
		return "double-hyphen"
	case PrefixForwardSlash:
		return "forward-slash"
	}
	return "none"
}

// MarshalText implements encoding.TextMarshaler.
func (p Prefix) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParsePrefix accepts "-", "--", "/", "none" or the spelled out names.
func ParsePrefix(s string) (Prefix, error) {
	switch strings.TrimSpace(s) {
	case "-":
		return PrefixSingleHyphen, nil
	case "--":
		return PrefixDoubleHyphen, nil
	case "/":
		return PrefixForwardSlash, nil
	}
	switch normalize(s) {
	case "none":
		return PrefixNone, nil
	case "singlehyphen", "single":
		return PrefixSingleHyphen, nil
	case "doublehyphen", "double":
		return PrefixDoubleHyphen, nil
	case "forwardslash", "slash":
		return PrefixForwardSlash, nil
	}
	return PrefixNone, fmt.Errorf("unknown prefix convention %q", s)
}

// ApplyPrefix prepends the prefix token. Names that already start with a
// prefix character are returned unchanged. Only options are prefixed.
func ApplyPrefix(name string, p Prefix) string {
	if name == "" || HasPrefix(name) {
		return name
	}
	return p.Token() + name
}

// HasPrefix reports whether name already starts with '-' or '/'.
func HasPrefix(name string) bool {
	return strings.HasPrefix(name, "-") || strings.HasPrefix(name, "/")
}

// TrimPrefix removes any leading prefix characters.
func TrimPrefix(name string) string {
	return strings.TrimLeft(name, "-/")
}

// ShortForm returns the auto-generated short alias of an option name:
// its first letter or digit, lower-cased, with the short-form prefix.
func ShortForm(name string, p Prefix) string {
	for _, r := range TrimPrefix(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return p.Token() + string(unicode.ToLower(r))
		}
	}
	return ""
}
