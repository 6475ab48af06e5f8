// Package cligen is the runtime library used by generated command builders.
//
// The cligen command reads struct types annotated with //cligen:command and
// generates, for each of them, a Builder that creates a Command with typed
// options and arguments, and binds parsed values back onto a fresh instance
// of the struct. Parsing itself is done by github.com/spf13/cobra.
//
//	//go:generate go run github.com/podhmo/cligen/cmd/cligen emit .
//
//	func main() {
//		if err := cligen.Execute(context.Background(), os.Args[1:], app.Builders()...); err != nil {
//			fmt.Fprintln(os.Stderr, err)
//			os.Exit(1)
//		}
//	}
package cligen

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Handler runs a command after its options and arguments were parsed.
type Handler func(ctx context.Context, r *ParseResult) error

// Command is a node of the command tree.
type Command struct {
	Name        string
	Description string
	Hidden      bool
	Aliases     []string

	options   []optionHolder
	arguments []argumentHolder
	children  []*Command
	handler   Handler

	stdout, stderr io.Writer
}

// NewCommand creates a command named name.
func NewCommand(name string) *Command {
	return &Command{Name: name}
}

// Add adds an option or argument. Arguments are consumed in the order they are added.
func (c *Command) Add(h Holder) {
	switch h := h.(type) {
	case optionHolder:
		c.options = append(c.options, h)
	case argumentHolder:
		c.arguments = append(c.arguments, h)
	default:
		panic(fmt.Sprintf("cligen: unsupported holder %T", h))
	}
}

// AddCommand adds a subcommand.
func (c *Command) AddCommand(child *Command) {
	c.children = append(c.children, child)
}

// Commands returns the subcommands.
func (c *Command) Commands() []*Command { return c.children }

// SetHandler sets the function run when this command is invoked.
// A command without handler prints its help.
func (c *Command) SetHandler(h Handler) {
	c.handler = h
}

// SetOutput redirects help and error output, mainly for tests.
func (c *Command) SetOutput(stdout, stderr io.Writer) {
	c.stdout, c.stderr = stdout, stderr
}

// Execute parses args and runs the selected command.
func (c *Command) Execute(ctx context.Context, args []string) error {
	cc := c.Cobra()
	if c.stdout != nil {
		cc.SetOut(c.stdout)
	}
	if c.stderr != nil {
		cc.SetErr(c.stderr)
	}
	cc.SetArgs(c.normalize(args))
	return cc.ExecuteContext(ctx)
}

// Cobra converts the tree rooted at c into cobra commands, for embedding
// into an existing cobra application. Option tokens that pflag cannot
// parse itself (such as "/v") are only understood by Execute.
func (c *Command) Cobra() *cobra.Command {
	res := &ParseResult{cmd: c, values: map[Holder][]string{}}
	cc := &cobra.Command{
		Use:           c.use(),
		Short:         firstLine(c.Description),
		Long:          c.Description,
		Aliases:       c.Aliases,
		Hidden:        c.Hidden,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			return c.bindArguments(res, args)
		},
	}
	for _, o := range c.options {
		c.registerOption(cc, o, res)
	}
	if c.handler != nil {
		cc.RunE = func(cmd *cobra.Command, args []string) error {
			return c.handler(cmd.Context(), res)
		}
	}
	for _, child := range c.children {
		cc.AddCommand(child.Cobra())
	}
	return cc
}

func (c *Command) use() string {
	parts := []string{c.Name}
	if len(c.options) > 0 {
		parts = append(parts, "[flags]")
	}
	for _, a := range c.arguments {
		s := a.symbol()
		lo, hi := s.effectiveArity().bounds()
		name := s.Name
		if s.HelpName != "" {
			name = s.HelpName
		}
		if hi == unbounded {
			name += "..."
		}
		if lo > 0 {
			parts = append(parts, "<"+name+">")
		} else {
			parts = append(parts, "["+name+"]")
		}
	}
	return strings.Join(parts, " ")
}

func (c *Command) registerOption(cc *cobra.Command, o optionHolder, res *ParseResult) {
	s := o.symbol()
	name := flagName(s.Name)

	shorthand := ""
	var others []string
	for _, alias := range o.aliases() {
		if shorthand == "" && isShorthand(alias) && cc.Flags().ShorthandLookup(alias[1:]) == nil {
			shorthand = alias[1:]
			continue
		}
		others = append(others, alias)
	}
	if name != s.Name && "--"+name != s.Name {
		others = append([]string{s.Name}, others...)
	}

	usage := s.Description
	if len(s.allowed) > 0 {
		usage += " (one of: " + strings.Join(s.allowed, ", ") + ")"
	}
	if len(others) > 0 {
		usage += " (also: " + strings.Join(others, ", ") + ")"
	}

	f := cc.Flags().VarPF(&flagValue{opt: o, res: res}, name, shorthand, strings.TrimSpace(usage))
	arity := s.effectiveArity()
	if isBool(s.typ) && arity != ArityExactlyOne && arity != ArityOneOrMore {
		f.NoOptDefVal = "true"
	}
	f.Hidden = s.Hidden
	if lo, _ := arity.bounds(); s.Required || lo > 0 {
		_ = cc.MarkFlagRequired(name)
	}
}

// bindArguments distributes positional args over the arguments in order.
// Each argument takes as many values as its arity allows while leaving
// enough for the minimum of the arguments after it.
func (c *Command) bindArguments(res *ParseResult, args []string) error {
	res.args = args
	mins := make([]int, len(c.arguments))
	for i, a := range c.arguments {
		mins[i], _ = a.symbol().effectiveArity().bounds()
	}

	pos := 0
	for i, a := range c.arguments {
		s := a.symbol()
		lo, hi := s.effectiveArity().bounds()
		rest := 0
		for _, m := range mins[i+1:] {
			rest += m
		}
		take := len(args) - pos - rest
		if hi != unbounded && take > hi {
			take = hi
		}
		if take < lo {
			if len(args)-pos < lo {
				return fmt.Errorf("missing argument <%s>", s.Name)
			}
			take = lo
		}
		raw := args[pos : pos+take]
		if err := a.check(raw); err != nil {
			return fmt.Errorf("argument <%s>: %w", s.Name, err)
		}
		if take > 0 {
			res.values[a] = append([]string(nil), raw...)
		}
		pos += take
	}
	if pos < len(args) {
		if len(c.children) > 0 && pos == 0 {
			return fmt.Errorf("unknown command %q for %q", args[0], c.Name)
		}
		return fmt.Errorf("unexpected arguments: %s", strings.Join(args[pos:], " "))
	}
	return nil
}

// normalize rewrites every declared option token to the --name form that
// pflag understands, following subcommands as they appear.
func (c *Command) normalize(args []string) []string {
	out := make([]string, 0, len(args))
	cur := c
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		tok, val, hasVal := strings.Cut(arg, "=")
		if o := cur.lookupToken(tok); o != nil {
			canonical := "--" + flagName(o.symbol().Name)
			if hasVal {
				out = append(out, canonical+"="+val)
				continue
			}
			out = append(out, canonical)
			if !isBool(o.symbol().typ) && i+1 < len(args) {
				i++
				out = append(out, args[i])
			}
			continue
		}
		if child := cur.lookupChild(arg); child != nil {
			cur = child
		}
		out = append(out, arg)
	}
	return out
}

func (c *Command) lookupToken(tok string) optionHolder {
	for _, o := range c.options {
		if o.symbol().Name == tok {
			return o
		}
		for _, alias := range o.aliases() {
			if alias == tok {
				return o
			}
		}
	}
	return nil
}

func (c *Command) lookupChild(name string) *Command {
	for _, child := range c.children {
		if child.Name == name {
			return child
		}
		for _, alias := range child.Aliases {
			if alias == name {
				return child
			}
		}
	}
	return nil
}

// flagName is the pflag name of an option token: "--dry-run" -> "dry-run".
func flagName(token string) string {
	return strings.TrimLeft(token, "-/")
}

func isShorthand(alias string) bool {
	return len(alias) == 2 && alias[0] == '-' && alias[1] != '-'
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

// ParseResult holds the raw values of one invocation.
type ParseResult struct {
	cmd    *Command
	values map[Holder][]string
	args   []string
}

// Command is the command that was invoked.
func (r *ParseResult) Command() *Command { return r.cmd }

// Args returns the positional arguments.
func (r *ParseResult) Args() []string { return r.args }

// Has reports whether h was given on the command line.
func (r *ParseResult) Has(h Holder) bool { return len(r.values[h]) > 0 }

// OptionValue returns the parsed value of o, or its default when absent.
func OptionValue[T any](r *ParseResult, o *Option[T]) T {
	return o.value(r.values[o])
}

// ArgumentValue returns the parsed value of a, or its default when absent.
func ArgumentValue[T any](r *ParseResult, a *Argument[T]) T {
	return a.value(r.values[a])
}

// flagValue adapts an option to pflag.Value. Values are validated when set,
// and kept raw until the handler asks for them.
type flagValue struct {
	opt optionHolder
	res *ParseResult
}

var _ pflag.Value = (*flagValue)(nil)

func (v *flagValue) String() string {
	if v == nil || v.opt == nil {
		return ""
	}
	return v.opt.defaultString()
}

func (v *flagValue) Set(s string) error {
	sym := v.opt.symbol()
	raw := append(append([]string(nil), v.res.values[v.opt]...), s)
	if sym.Arity != ArityDefault {
		if _, hi := sym.Arity.bounds(); hi != unbounded && len(raw) > hi {
			return fmt.Errorf("%s accepts at most %d value(s)", sym.Name, hi)
		}
	}
	if err := v.opt.check(raw); err != nil {
		return err
	}
	v.res.values[v.opt] = raw
	return nil
}

func (v *flagValue) Type() string {
	return v.opt.symbol().helpName()
}
