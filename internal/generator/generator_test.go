package generator

import (
	"context"
	"errors"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podhmo/cligen/internal/config"
	"github.com/podhmo/cligen/internal/diag"
	"github.com/podhmo/cligen/internal/symbols"
)

var spaces = regexp.MustCompile(`\s+`)

func compact(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

func generateOne(t *testing.T, src string) *Package {
	t.Helper()
	r, err := GenerateSource(context.Background(), config.Default(), "example.com/app", map[string]string{"app.go": src})
	require.NoError(t, err)
	require.Len(t, r.Packages, 1)
	return r.Packages[0]
}

func unit(t *testing.T, p *Package, name string) string {
	t.Helper()
	for _, u := range p.Units {
		if u.Filename == name {
			return compact(string(u.Content))
		}
	}
	t.Fatalf("no unit %s", name)
	return ""
}

func TestGenerate_Scenarios(t *testing.T) {
	t.Run("required option with allowed values and alias", func(t *testing.T) {
		p := generateOne(t, `package app

//cligen:command
type RootCommand struct {
	Mode string `+"`"+`cli:"option" name:"Display" required:"true" allowed:"Big,Small" alias:"-d"`+"`"+`
}

func (c *RootCommand) Run() {}
`)
		assert.Empty(t, p.Diagnostics)
		code := unit(t, p, "root_command_cligen.go")
		for _, want := range []string{
			`optionMode := cligen.NewOption[string]("--display", cligen.Parser[string](b))`,
			`optionMode.Required = true`,
			`cligen.AllowedValues(optionMode, "Big", "Small")`,
			`optionMode.AddAlias("-d")`,
		} {
			assert.Contains(t, code, compact(want))
		}
	})

	t.Run("snake case with generated short form", func(t *testing.T) {
		p := generateOne(t, `package app

//cligen:command casing:"snake_case"
type RootCommand struct {
	Option1 string `+"`"+`cli:"option"`+"`"+`
}

func (c *RootCommand) Run() {}
`)
		code := unit(t, p, "root_command_cligen.go")
		assert.Contains(t, code, `cligen.NewOption[string]("--option_1", cligen.Parser[string](b))`)
		assert.Contains(t, code, `optionOption1.AddAlias("-o")`)
	})

	t.Run("constructor converter", func(t *testing.T) {
		p := generateOne(t, `package app

type Color struct{ Name string }

func NewColor(s string) Color { return Color{Name: s} }

//cligen:command
type RootCommand struct {
	Color Color `+"`"+`cli:"option"`+"`"+`
}

func (c *RootCommand) Run() {}
`)
		assert.Empty(t, p.Diagnostics)
		code := unit(t, p, "root_command_cligen.go")
		assert.Contains(t, code, compact(`cligen.RegisterConverter(b, func(input string) (Color, error) {
			return NewColor(input), nil
		})`))
	})

	t.Run("unsupported type", func(t *testing.T) {
		p := generateOne(t, `package app

type Opaque struct{ n int }

//cligen:command
type RootCommand struct {
	Value Opaque `+"`"+`cli:"option"`+"`"+`
}

func (c *RootCommand) Run() {}
`)
		assert.Equal(t, []string{diag.NotBindable.ID}, p.Diagnostics.IDs())
		assert.False(t, p.Diagnostics.HasErrors())
		code := unit(t, p, "root_command_cligen.go")
		assert.NotContains(t, code, "RegisterConverter")
		assert.Contains(t, code, `optionValue := cligen.NewOption[Opaque]("--value", cligen.Parser[Opaque](b))`)
	})

	t.Run("unexported field", func(t *testing.T) {
		p := generateOne(t, `package app

//cligen:command
type RootCommand struct {
	verbose bool `+"`"+`cli:"option"`+"`"+`
}

func (c *RootCommand) Run() {}
`)
		assert.Equal(t, []string{diag.MemberNotExported.ID}, p.Diagnostics.IDs())
		code := unit(t, p, "root_command_cligen.go")
		assert.Contains(t, code, `optionverbose := cligen.NewOption[bool]("--verbose", cligen.Parser[bool](b))`)
		assert.Contains(t, code, `optionverbose.SetDefault(defaults.verbose)`)
		assert.Contains(t, code, `target.verbose = cligen.OptionValue(r, optionverbose)`)
	})
}

func TestGenerateSource_Errors(t *testing.T) {
	p := generateOne(t, `package app

//cligen:command parent:"Missing"
type ServeCommand struct{}

func (c *ServeCommand) Run() {}
`)
	assert.Equal(t, []string{diag.ParentNotFound.ID}, p.Diagnostics.IDs())
	assert.Empty(t, p.Units, "commands with errors are not emitted")

	_, err := GenerateSource(context.Background(), config.Default(), "example.com/bad", map[string]string{"bad.go": "package bad\nfunc {\n"})
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr), "got %v", err)
	assert.Equal(t, []string{"example.com/bad"}, loadErr.Patterns)

	cfg := config.Default()
	cfg.DefaultCasing = "zigzag"
	_, err = GenerateSource(context.Background(), cfg, "example.com/app", map[string]string{"app.go": "package app\n"})
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestGenerateSource_TypeErrors(t *testing.T) {
	p := generateOne(t, `package app

//cligen:command
type RootCommand struct {
	Name  string  `+"`"+`cli:"option"`+"`"+`
	Level Missing `+"`"+`cli:"option"`+"`"+`
}

func (c *RootCommand) Run() {}

func main() { _ = Builders() }
`)
	assert.Equal(t, []string{diag.NoGetter.ID}, p.Diagnostics.IDs())
	code := unit(t, p, "root_command_cligen.go")
	assert.Contains(t, code, `target.Name = cligen.OptionValue(r, optionName)`)
	assert.NotContains(t, code, "Level")
}

func TestNewPipeline_RuntimeImport(t *testing.T) {
	fork := types.NewPackage("example.com/fork/cligen", "cligen")
	filePath := symbols.Of(types.NewNamed(types.NewTypeName(token.NoPos, fork, "FilePath", nil), types.NewStruct(nil, nil), nil))

	p, err := newPipeline(config.Default())
	require.NoError(t, err)
	assert.False(t, p.analyzer.Resolver.IsNative(filePath))

	cfg := config.Default()
	cfg.RuntimeImport = "example.com/fork/cligen"
	p, err = newPipeline(cfg)
	require.NoError(t, err)
	assert.True(t, p.analyzer.Resolver.IsNative(filePath))
}

func TestGenerateSource_Deterministic(t *testing.T) {
	src := `package app

import "time"

//cligen:command
type RootCommand struct {
	Wait  time.Duration ` + "`" + `cli:"option"` + "`" + `
	Files []string      ` + "`" + `cli:"argument"` + "`" + `
}

func (c *RootCommand) Run() error { return nil }

//cligen:command parent:"RootCommand"
type ListCommand struct {
	All bool ` + "`" + `cli:"option"` + "`" + `
}

func (c *ListCommand) Run() {}
`
	first := generateOne(t, src)
	for i := 0; i < 3; i++ {
		again := generateOne(t, src)
		assert.Equal(t, first.Units, again.Units)
		assert.Equal(t, first.Diagnostics, again.Diagnostics)
	}
}

func TestGenerate_Module(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("go.mod", "module example.com/mod\n\ngo 1.23\n")
	write("app/app.go", `package app

//cligen:command name:"app"
type RootCommand struct {
	Name string `+"`"+`cli:"option"`+"`"+`
}

func (c *RootCommand) Run() {}
`)
	write("plain/plain.go", "package plain\n\ntype T struct{}\n")
	write("app/stale_command_cligen.go", "// Code generated by cligen. DO NOT EDIT.\n\npackage app\n")

	cfg := config.Default()
	cfg.WorkDir = dir
	r, err := Generate(context.Background(), cfg, "./...")
	require.NoError(t, err)
	require.Len(t, r.Packages, 2)
	assert.Equal(t, "example.com/mod/app", r.Packages[0].Path)
	assert.Equal(t, "example.com/mod/plain", r.Packages[1].Path)
	assert.Empty(t, r.Packages[1].Units)
	assert.False(t, r.HasErrors())

	require.NoError(t, Write(cfg, r))
	assert.FileExists(t, filepath.Join(dir, "app", "root_command_cligen.go"))
	assert.FileExists(t, filepath.Join(dir, "app", "cligen_builders_gen.go"))
	assert.NoFileExists(t, filepath.Join(dir, "app", "stale_command_cligen.go"))
	assert.NoFileExists(t, filepath.Join(dir, "plain", "cligen_builders_gen.go"))
}

func TestGenerate_Bootstrap(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("go.mod", "module example.com/boot\n\ngo 1.23\n")
	write("main.go", `package main

//cligen:command name:"boot"
type RootCommand struct {
	Name string `+"`"+`cli:"option"`+"`"+`
}

func (c *RootCommand) Run() {}

func main() {
	_ = Builders()
}
`)
	// left behind by a command that was renamed
	write("old_command_cligen.go", "// Code generated by cligen. DO NOT EDIT.\n\npackage main\n\nfunc NewOldCommandBuilder() *OldCommand { return nil }\n")

	cfg := config.Default()
	cfg.WorkDir = dir
	r, err := Generate(context.Background(), cfg, ".")
	require.NoError(t, err)
	require.Len(t, r.Packages, 1)
	assert.Empty(t, r.Diagnostics())
	assert.Len(t, r.Packages[0].Units, 2)

	require.NoError(t, Write(cfg, r))
	assert.FileExists(t, filepath.Join(dir, "root_command_cligen.go"))
	assert.FileExists(t, filepath.Join(dir, "cligen_builders_gen.go"))
	assert.NoFileExists(t, filepath.Join(dir, "old_command_cligen.go"))
}
