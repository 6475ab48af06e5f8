package metadata

import (
	"go/token"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podhmo/cligen/internal/diag"
	"github.com/podhmo/cligen/internal/naming"
	"github.com/podhmo/cligen/internal/symbols"
)

func TestParseAttributes(t *testing.T) {
	tests := []struct {
		name     string
		tag      reflect.StructTag
		doc      string
		want     Attributes
		wantErrs []string
	}{
		{
			name: "all keys",
			tag:  `cli:"option" name:"Display" desc:"display mode" required:"true" hidden:"false" helpname:"MODE" alias:"-d, --disp" allowed:"Big,Small" arity:"exactlyone"`,
			want: Attributes{
				Name:          "Display",
				Description:   "display mode",
				Required:      true,
				HelpName:      "MODE",
				Aliases:       []string{"-d", "--disp"},
				AllowedValues: []string{"Big", "Small"},
				Arity:         ArityExactlyOne,
			},
		},
		{
			name: "doc as description",
			tag:  `cli:"argument"`,
			doc:  "the input file",
			want: Attributes{Description: "the input file"},
		},
		{
			name:     "invalid values",
			tag:      `cli:"option" required:"yes please" arity:"many"`,
			want:     Attributes{},
			wantErrs: []string{"required", "arity"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := ParseAttributes(tt.tag, tt.doc)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseAttributes() mismatch (-want +got):\n%s", diff)
			}
			var keys []string
			for _, e := range errs {
				keys = append(keys, e.Key)
			}
			assert.Equal(t, tt.wantErrs, keys)
		})
	}
}

func TestAttributes_Properties(t *testing.T) {
	a := Attributes{
		Name:          "ignored",
		Description:   "desc",
		Required:      true,
		Hidden:        true,
		HelpName:      "FILE",
		AllowedValues: []string{"x"},
		Arity:         ArityOneOrMore,
	}
	want := []Property{
		{Name: "Description", Value: "desc"},
		{Name: "Required", Value: true},
		{Name: "Hidden", Value: true},
		{Name: "HelpName", Value: "FILE"},
	}
	assert.Equal(t, want, a.Properties())
	assert.Empty(t, Attributes{}.Properties())
}

func TestParseCommandAttributes(t *testing.T) {
	tag := reflect.StructTag(`name:"serve" parent:"RootCommand" alias:"s,srv" hidden:"true" casing:"snake_case" prefix:"/" shortauto:"false"`)
	got, errs := ParseCommandAttributes(tag, "Serve things.")
	require.Empty(t, errs)
	assert.Equal(t, "serve", got.Name)
	assert.Equal(t, "Serve things.", got.Description)
	assert.Equal(t, "RootCommand", got.Parent)
	assert.Equal(t, []string{"s", "srv"}, got.Aliases)
	assert.True(t, got.Hidden)

	s := DefaultSettings().Apply(got.Settings)
	assert.Equal(t, naming.CasingSnake, s.Casing)
	assert.Equal(t, naming.PrefixForwardSlash, s.Prefix)
	assert.Equal(t, naming.PrefixSingleHyphen, s.ShortFormPrefix)
	assert.False(t, s.ShortFormAutoGenerate)

	_, errs = ParseCommandAttributes(`casing:"loud" shortprefix:"+"`, "")
	require.Len(t, errs, 2)
	assert.Equal(t, "casing", errs[0].Key)
	assert.Equal(t, "shortprefix", errs[1].Key)
}

func TestSettings_Inheritance(t *testing.T) {
	snake := naming.CasingSnake
	parent := DefaultSettings().Apply(SettingsOverride{Casing: &snake})
	child := parent.Apply(SettingsOverride{})
	assert.Equal(t, parent, child)
	assert.Equal(t, naming.PrefixDoubleHyphen, child.Prefix)
}

func TestCommandDecl(t *testing.T) {
	root := &CommandDecl{Decl: &symbols.TypeDecl{Name: "RootCommand", PkgPath: "example.com/app"}, Name: "app"}
	sub := &CommandDecl{Decl: &symbols.TypeDecl{Name: "ServeCommand", PkgPath: "example.com/app"}, Name: "serve", Parent: root}
	root.Children = []*CommandDecl{sub}

	assert.True(t, root.IsRoot())
	assert.False(t, sub.IsRoot())
	assert.Equal(t, []string{"app", "serve"}, sub.Path())
	assert.True(t, sub.Usable())
	assert.False(t, sub.Runnable())

	opt := &OptionDecl{MemberDecl: MemberDecl{Member: &symbols.Member{Name: "Port"}, Owner: sub, Name: "--port"}}
	opt.Diagnostics.Add(diag.New(diag.NoSetter, token.Position{}, "ServeCommand.Port", "ServeCommand.Port", "missing"))
	sub.Options = append(sub.Options, opt)
	assert.False(t, opt.Usable())
	assert.True(t, sub.Usable(), "member errors do not block the command")
	assert.Equal(t, []string{"CLI003"}, sub.AllDiagnostics().IDs())

	summary := root.Summary()
	assert.Equal(t, []string{"ServeCommand"}, summary.Children)
	assert.Equal(t, "--port", sub.Summary().Options[0].Name)
	assert.Equal(t, "RootCommand", sub.Summary().Parent)
}

func TestFingerprint(t *testing.T) {
	build := func(name string) []*CommandDecl {
		return []*CommandDecl{{Decl: &symbols.TypeDecl{Name: "RootCommand"}, Name: name, Settings: DefaultSettings()}}
	}
	assert.Equal(t, Fingerprint(build("app")), Fingerprint(build("app")))
	assert.NotEqual(t, Fingerprint(build("app")), Fingerprint(build("other")))
}
