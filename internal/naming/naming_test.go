package naming

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApplyCasing(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		casing Casing
		want   string
	}{
		{"empty", "", CasingKebab, ""},
		{"lowercase", "test", CasingKebab, "test"},
		{"camelCase", "testString", CasingKebab, "test-string"},
		{"PascalCase", "TestString", CasingKebab, "test-string"},
		{"withNumber", "testString123", CasingKebab, "test-string-123"},
		{"numberInMiddle", "test123String", CasingKebab, "test-123-string"},
		{"allCaps", "TEST", CasingKebab, "test"},
		{"mixedCaps", "TestHTTPResponse", CasingKebab, "test-http-response"},
		{"leadingCaps", "HTTPRequest", CasingKebab, "http-request"},
		{"snake input", "test_string", CasingKebab, "test-string"},
		{"snake digit", "Option1", CasingSnake, "option_1"},
		{"kebab digit", "Argument1", CasingKebab, "argument-1"},
		{"camel", "NullableRefArg", CasingCamel, "nullableRefArg"},
		{"pascal", "user_name", CasingPascal, "UserName"},
		{"title", "UserName", CasingTitle, "User Name"},
		{"lower", "UserName", CasingLower, "username"},
		{"upper", "UserName", CasingUpper, "USERNAME"},
		{"none", "UserName", CasingNone, "UserName"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyCasing(tt.input, tt.casing); got != tt.want {
				t.Errorf("ApplyCasing(%q, %v) = %q, want %q", tt.input, tt.casing, got, tt.want)
			}
		})
	}
}

func TestApplyCasing_Pure(t *testing.T) {
	inputs := []string{"Option1", "HTTPServer2Port", "display", "X"}
	for _, c := range []Casing{CasingNone, CasingLower, CasingUpper, CasingTitle, CasingPascal, CasingCamel, CasingKebab, CasingSnake} {
		for _, in := range inputs {
			first := ApplyCasing(in, c)
			second := ApplyCasing(in, c)
			if first != second {
				t.Errorf("ApplyCasing(%q, %v) not stable: %q vs %q", in, c, first, second)
			}
			if c == CasingNone && first != in {
				t.Errorf("ApplyCasing(%q, none) = %q, want input unchanged", in, first)
			}
		}
	}
}

func TestWords(t *testing.T) {
	got := Words("HTTPServer2Port")
	want := []string{"HTTP", "Server", "2", "Port"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Words() mismatch (-want +got):\n%s", diff)
	}
}

func TestStripSuffixes(t *testing.T) {
	tests := []struct {
		input    string
		suffixes []string
		want     string
	}{
		{"SnakeCaseCliCommand", CommandSuffixes, "SnakeCase"},
		{"RootCommand", CommandSuffixes, "Root"},
		{"Command", CommandSuffixes, "Command"},
		{"NameArgument", ArgumentSuffixes, "Name"},
		{"NameCommandArgument", ArgumentSuffixes, "Name"},
		{"VerboseOption", OptionSuffixes, "Verbose"},
		{"OptionOption", OptionSuffixes, "Option"},
		{"FooOptionOption", OptionSuffixes, "Foo"},
		{"Display", OptionSuffixes, "Display"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := StripSuffixes(tt.input, tt.suffixes)
			if got != tt.want {
				t.Errorf("StripSuffixes(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := StripSuffixes(got, tt.suffixes); again != got {
				t.Errorf("StripSuffixes is not idempotent: %q -> %q -> %q", tt.input, got, again)
			}
		})
	}
}

func TestArgumentSuffixes(t *testing.T) {
	if got, want := len(ArgumentSuffixes), len(CommandSuffixes)+1; got != want {
		t.Fatalf("len(ArgumentSuffixes) = %d, want %d", got, want)
	}
	if ArgumentSuffixes[len(ArgumentSuffixes)-1] != "Argument" {
		t.Errorf("last argument suffix = %q, want bare Argument", ArgumentSuffixes[len(ArgumentSuffixes)-1])
	}
}

func TestApplyPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix Prefix
		want   string
	}{
		{"display", PrefixDoubleHyphen, "--display"},
		{"d", PrefixSingleHyphen, "-d"},
		{"v", PrefixForwardSlash, "/v"},
		{"plain", PrefixNone, "plain"},
		{"--already", PrefixSingleHyphen, "--already"},
	}
	for _, tt := range tests {
		if got := ApplyPrefix(tt.name, tt.prefix); got != tt.want {
			t.Errorf("ApplyPrefix(%q, %v) = %q, want %q", tt.name, tt.prefix, got, tt.want)
		}
	}
}

func TestShortForm(t *testing.T) {
	if got := ShortForm("--option_1", PrefixSingleHyphen); got != "-o" {
		t.Errorf("ShortForm = %q, want -o", got)
	}
	if got := ShortForm("Display", PrefixForwardSlash); got != "/d" {
		t.Errorf("ShortForm = %q, want /d", got)
	}
	if got := ShortForm("--", PrefixSingleHyphen); got != "" {
		t.Errorf("ShortForm = %q, want empty", got)
	}
}

func TestParseConventions(t *testing.T) {
	for in, want := range map[string]Casing{
		"kebab-case": CasingKebab,
		"snake_case": CasingSnake,
		"camelCase":  CasingCamel,
		"PascalCase": CasingPascal,
		"none":       CasingNone,
	} {
		got, err := ParseCasing(in)
		if err != nil || got != want {
			t.Errorf("ParseCasing(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseCasing("shouting"); err == nil {
		t.Error("ParseCasing(shouting) should fail")
	}

	for in, want := range map[string]Prefix{
		"--":            PrefixDoubleHyphen,
		"-":             PrefixSingleHyphen,
		"/":             PrefixForwardSlash,
		"double-hyphen": PrefixDoubleHyphen,
		"none":          PrefixNone,
	} {
		got, err := ParsePrefix(in)
		if err != nil || got != want {
			t.Errorf("ParsePrefix(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParsePrefix("+"); err == nil {
		t.Error("ParsePrefix(+) should fail")
	}
}
