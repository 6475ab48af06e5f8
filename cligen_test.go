package cligen

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appValues struct {
	name    string
	verbose bool
	count   int
	tags    []string
	files   []string
}

func newApp(t *testing.T, got *appValues) *Command {
	t.Helper()
	b := &Builder{}
	cmd := NewCommand("app")
	cmd.Description = "An example application.\nWith a longer description."

	name := NewOption[string]("--name", Parser[string](b))
	name.Description = "Who to greet"
	name.AddAlias("-n")
	name.SetDefault("world")
	cmd.Add(name)

	verbose := NewOption[bool]("--verbose", Parser[bool](b))
	verbose.AddAlias("/v")
	cmd.Add(verbose)

	count := NewOption[int]("--count", Parser[int](b))
	cmd.Add(count)

	tags := NewOption[[]string]("--tag", Parser[[]string](b))
	cmd.Add(tags)

	files := NewArgument[[]string]("files", Parser[[]string](b))
	cmd.Add(files)

	cmd.SetHandler(func(ctx context.Context, r *ParseResult) error {
		got.name = OptionValue(r, name)
		got.verbose = OptionValue(r, verbose)
		got.count = OptionValue(r, count)
		got.tags = OptionValue(r, tags)
		got.files = ArgumentValue(r, files)
		return nil
	})
	cmd.SetOutput(io.Discard, io.Discard)
	return cmd
}

func TestCommand_Execute(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want appValues
	}{
		{
			name: "defaults",
			args: nil,
			want: appValues{name: "world"},
		},
		{
			name: "every kind of token",
			args: []string{"-n", "gopher", "/v", "--count=3", "--tag", "a", "--tag", "b", "x.txt", "y.txt"},
			want: appValues{name: "gopher", verbose: true, count: 3, tags: []string{"a", "b"}, files: []string{"x.txt", "y.txt"}},
		},
		{
			name: "explicit boolean",
			args: []string{"--verbose=false", "--name=x"},
			want: appValues{name: "x"},
		},
		{
			name: "last occurrence wins for scalars",
			args: []string{"--count", "1", "--count", "2"},
			want: appValues{name: "world", count: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got appValues
			err := newApp(t, &got).Execute(context.Background(), tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommand_ExecuteErrors(t *testing.T) {
	b := &Builder{}
	build := func() *Command {
		cmd := NewCommand("app")
		mode := NewOption[string]("--mode", Parser[string](b))
		AllowedValues(mode, "fast", "slow")
		cmd.Add(mode)

		once := NewOption[string]("--once", Parser[string](b))
		once.Arity = ArityZeroOrOne
		cmd.Add(once)

		n := NewOption[int]("--n", Parser[int](b))
		cmd.Add(n)

		path := NewArgument[string]("path", Parser[string](b))
		path.Required = true
		cmd.Add(path)

		cmd.SetHandler(func(ctx context.Context, r *ParseResult) error { return nil })
		cmd.SetOutput(io.Discard, io.Discard)
		return cmd
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"allowed values", []string{"--mode", "medium", "p"}, "allowed values are fast, slow"},
		{"at most once", []string{"--once", "a", "--once", "b", "p"}, "--once accepts at most 1 value(s)"},
		{"invalid integer", []string{"--n", "ten", "p"}, `invalid integer "ten"`},
		{"missing argument", []string{"--mode", "fast"}, "missing argument <path>"},
		{"unexpected arguments", []string{"p", "q"}, "unexpected arguments: q"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := build().Execute(context.Background(), tt.args)
			assert.ErrorContains(t, err, tt.want)
		})
	}

	t.Run("required option", func(t *testing.T) {
		cmd := NewCommand("app")
		token := NewOption[string]("--token", Parser[string](b))
		token.Required = true
		cmd.Add(token)
		cmd.SetHandler(func(ctx context.Context, r *ParseResult) error { return nil })
		cmd.SetOutput(io.Discard, io.Discard)

		err := cmd.Execute(context.Background(), nil)
		assert.ErrorContains(t, err, `required flag(s) "token" not set`)
	})
}

func TestCommand_Subcommands(t *testing.T) {
	b := &Builder{}
	var port int
	var ran string

	root := NewCommand("app")
	serve := NewCommand("serve")
	serve.Description = "Run the server"
	serve.Aliases = []string{"s"}
	p := NewOption[int]("--port", Parser[int](b))
	p.AddAlias("-p")
	p.SetDefault(80)
	serve.Add(p)
	serve.SetHandler(func(ctx context.Context, r *ParseResult) error {
		ran = r.Command().Name
		port = OptionValue(r, p)
		return nil
	})
	root.AddCommand(serve)

	var out bytes.Buffer
	root.SetOutput(&out, &out)

	require.NoError(t, root.Execute(context.Background(), []string{"serve", "-p", "8080"}))
	assert.Equal(t, "serve", ran)
	assert.Equal(t, 8080, port)

	require.NoError(t, root.Execute(context.Background(), []string{"s", "--port=1"}))
	assert.Equal(t, 1, port)

	require.NoError(t, root.Execute(context.Background(), []string{"serve"}))
	assert.Equal(t, 80, port)

	out.Reset()
	require.NoError(t, root.Execute(context.Background(), nil), "a command without handler prints help")
	assert.Contains(t, out.String(), "serve")
	assert.Contains(t, out.String(), "Run the server")
}

func TestCommand_Help(t *testing.T) {
	var got appValues
	cmd := newApp(t, &got)
	var out bytes.Buffer
	cmd.SetOutput(&out, &out)

	require.NoError(t, cmd.Execute(context.Background(), []string{"--help"}))
	help := out.String()
	assert.Contains(t, help, "An example application.")
	assert.Contains(t, help, "app [flags] [files...]")
	assert.Contains(t, help, "-n, --name string")
	assert.Contains(t, help, `(default "world")`)
	assert.Contains(t, help, "(also: /v)")
	assert.Equal(t, appValues{}, got, "the handler does not run for --help")
}

func TestCommand_BindArguments(t *testing.T) {
	b := &Builder{}
	first := NewArgument[string]("first", Parser[string](b))
	first.Arity = ArityExactlyOne
	middle := NewArgument[[]string]("middle", Parser[[]string](b))
	last := NewArgument[string]("last", Parser[string](b))
	last.Arity = ArityExactlyOne

	cmd := NewCommand("app")
	cmd.Add(first)
	cmd.Add(middle)
	cmd.Add(last)

	res := &ParseResult{cmd: cmd, values: map[Holder][]string{}}
	require.NoError(t, cmd.bindArguments(res, []string{"1", "2", "3", "4"}))
	assert.Equal(t, "1", ArgumentValue(res, first))
	assert.Equal(t, []string{"2", "3"}, ArgumentValue(res, middle))
	assert.Equal(t, "4", ArgumentValue(res, last))
	assert.Equal(t, []string{"1", "2", "3", "4"}, res.Args())

	res = &ParseResult{cmd: cmd, values: map[Holder][]string{}}
	require.NoError(t, cmd.bindArguments(res, []string{"1", "4"}))
	assert.Empty(t, ArgumentValue(res, middle))
	assert.False(t, res.Has(middle))
	assert.Equal(t, "4", ArgumentValue(res, last))

	res = &ParseResult{cmd: cmd, values: map[Holder][]string{}}
	assert.ErrorContains(t, cmd.bindArguments(res, []string{"1"}), "missing argument <last>")
}

func TestCommand_Normalize(t *testing.T) {
	b := &Builder{}
	root := NewCommand("app")
	verbose := NewOption[bool]("--verbose", Parser[bool](b))
	verbose.AddAlias("/v")
	root.Add(verbose)

	child := NewCommand("run")
	dir := NewOption[string]("-dir", Parser[string](b))
	dir.AddAlias("/d")
	child.Add(dir)
	root.AddCommand(child)

	got := root.normalize([]string{"/v", "run", "/d", "/tmp", "-dir=x", "--", "/d"})
	assert.Equal(t, []string{"--verbose", "run", "--dir", "/tmp", "--dir=x", "--", "/d"}, got)
}
