package naming

import (
	"fmt"
	"strings"
	"unicode"
)

// Casing is a rule for turning a Go identifier into a CLI-facing token.
type Casing int

const (
	CasingNone Casing = iota
	CasingLower
	CasingUpper
	CasingTitle
	CasingPascal
	CasingCamel
	CasingKebab
	CasingSnake
)

var casingNames = map[Casing]string{
	CasingNone:   "none",
	CasingLower:  "lowercase",
	CasingUpper:  "UPPERCASE",
	CasingTitle:  "Title Case",
	CasingPascal: "PascalCase",
	CasingCamel:  "camelCase",
	CasingKebab:  "kebab-case",
	CasingSnake:  "snake_case",
}

func (c Casing) String() string {
	if s, ok := casingNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Casing(%d)", int(c))
}

// MarshalText implements encoding.TextMarshaler, for the scan output.
func (c Casing) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseCasing accepts the spellings used in tags and config files,
// e.g. "kebab-case", "snake_case", "camelCase", "none".
func ParseCasing(s string) (Casing, error) {
	switch normalize(s) {
	case "none", "unmodified":
		return CasingNone, nil
	case "lower", "lowercase":
		return CasingLower, nil
	case "upper", "uppercase":
		return CasingUpper, nil
	case "title", "titlecase":
		return CasingTitle, nil
	case "pascal", "pascalcase":
		return CasingPascal, nil
	case "camel", "camelcase":
		return CasingCamel, nil
	case "kebab", "kebabcase":
		return CasingKebab, nil
	case "snake", "snakecase":
		return CasingSnake, nil
	}
	return CasingNone, fmt.Errorf("unknown casing convention %q", s)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

// ApplyCasing converts name into the given convention.
// Words are split on lower-to-upper transitions, at the end of acronyms
// ("HTTPServer" -> "HTTP", "Server"), between letters and digits, and on
// '_', '-', '.' and spaces.
func ApplyCasing(name string, c Casing) string {
	if c == CasingNone || name == "" {
		return name
	}
	words := Words(name)
	if len(words) == 0 {
		return name
	}

	switch c {
	case CasingLower:
		return strings.ToLower(strings.Join(words, ""))
	case CasingUpper:
		return strings.ToUpper(strings.Join(words, ""))
	case CasingTitle:
		for i, w := range words {
			words[i] = title(w)
		}
		return strings.Join(words, " ")
	case CasingPascal:
		for i, w := range words {
			words[i] = title(w)
		}
		return strings.Join(words, "")
	case CasingCamel:
		for i, w := range words {
			if i == 0 {
				words[i] = strings.ToLower(w)
			} else {
				words[i] = title(w)
			}
		}
		return strings.Join(words, "")
	case CasingKebab:
		return strings.ToLower(strings.Join(words, "-"))
	case CasingSnake:
		return strings.ToLower(strings.Join(words, "_"))
	}
	return name
}

// Words splits an identifier into its words.
func Words(name string) []string {
	runes := []rune(name)
	var words []string
	start := -1
	for i, r := range runes {
		if isSeparator(r) {
			if start >= 0 {
				words = append(words, string(runes[start:i]))
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		if isBoundary(runes, i) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	if start >= 0 {
		words = append(words, string(runes[start:]))
	}
	return words
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
}

func isBoundary(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	switch {
	case unicode.IsDigit(prev) != unicode.IsDigit(cur):
		return true
	case unicode.IsLower(prev) && unicode.IsUpper(cur):
		return true
	case unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
		return true
	}
	return false
}

func title(w string) string {
	runes := []rune(strings.ToLower(w))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
