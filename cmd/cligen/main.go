package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/shayne/yargs"
	"gopkg.in/yaml.v3"

	"github.com/podhmo/cligen/internal/config"
	"github.com/podhmo/cligen/internal/diag"
	"github.com/podhmo/cligen/internal/generator"
	"github.com/podhmo/cligen/internal/help"
	"github.com/podhmo/cligen/internal/metadata"
)

// errReported means error diagnostics were printed; the exit status is 1
// without a further message.
var errReported = errors.New("errors were reported")

type globalFlags struct{}

type emitFlags struct {
	Config  string `flag:"config" help:"Path to cligen.toml (default: nearest one above the working directory)"`
	DryRun  bool   `flag:"dry-run" help:"Print the generated files instead of writing them"`
	License string `flag:"license" help:"File whose content becomes the header of generated files"`
}

type checkFlags struct {
	Config string `flag:"config" help:"Path to cligen.toml"`
}

type scanFlags struct {
	Config string `flag:"config" help:"Path to cligen.toml"`
	Format string `flag:"format" default:"json" help:"Output format (json|yaml)"`
}

type helpMessageFlags struct {
	Config  string `flag:"config" help:"Path to cligen.toml"`
	Command string `flag:"command" help:"Type name or command path of the command to show (default: every root)"`
}

var helpConfig = yargs.HelpConfig{
	Command: yargs.CommandInfo{
		Name:        "cligen",
		Description: "Generate command builders from annotated Go structs",
		Examples: []string{
			"cligen emit ./...",
			"cligen check ./cmd/...",
			"cligen help-message --command serve ./cmd/app",
		},
	},
	SubCommands: map[string]yargs.SubCommandInfo{
		"emit": {
			Name:        "emit",
			Description: "Generate builder files for the packages matching PATTERN",
			Usage:       "[PATTERN...]",
			Examples:    []string{"cligen emit --dry-run ."},
		},
		"check": {
			Name:        "check",
			Description: "Report diagnostics without writing files",
			Usage:       "[PATTERN...]",
		},
		"scan": {
			Name:        "scan",
			Description: "Dump the analyzed commands",
			Usage:       "[PATTERN...]",
			Examples:    []string{"cligen scan --format yaml ./cmd/app"},
		},
		"help-message": {
			Name:        "help-message",
			Description: "Preview the help message of the analyzed commands",
			Usage:       "[PATTERN...]",
		},
	},
}

type app struct {
	stdout io.Writer
	stderr io.Writer
	dir    string
}

func main() {
	// debug mode: if DEBUG environment variable is set, enable debug logging
	if _, ok := os.LookupEnv("DEBUG"); ok {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	wd, err := os.Getwd()
	if err != nil {
		slog.Error("getwd", "error", err)
		os.Exit(1)
	}
	a := &app{stdout: os.Stdout, stderr: os.Stderr, dir: wd}
	if err := a.run(context.Background(), os.Args[1:]); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	handlers := map[string]yargs.SubcommandHandler{
		"emit":         a.emit,
		"check":        a.check,
		"scan":         a.scan,
		"help-message": a.helpMessage,
	}
	return yargs.RunSubcommands(ctx, args, helpConfig, globalFlags{}, handlers)
}

func (a *app) emit(ctx context.Context, args []string) error {
	result, err := yargs.ParseFlags[emitFlags](trimCommand(args, "emit"))
	if err != nil {
		return err
	}
	flags := result.Flags
	cfg, err := a.config(flags.Config)
	if err != nil {
		return err
	}
	if flags.License != "" {
		cfg.LicenseFile = a.abs(flags.License)
	}

	r, err := generator.Generate(ctx, cfg, patterns(result.Parser)...)
	if err != nil {
		return err
	}
	a.report(r.Diagnostics())

	if flags.DryRun {
		for _, p := range r.Packages {
			for _, u := range p.Units {
				fmt.Fprintf(a.stdout, "// %s\n%s\n", filepath.Join(p.Dir, u.Filename), u.Content)
			}
		}
	} else if err := generator.Write(cfg, r); err != nil {
		return err
	}
	if r.HasErrors() {
		return errReported
	}
	return nil
}

func (a *app) check(ctx context.Context, args []string) error {
	result, err := yargs.ParseFlags[checkFlags](trimCommand(args, "check"))
	if err != nil {
		return err
	}
	cfg, err := a.config(result.Flags.Config)
	if err != nil {
		return err
	}
	r, err := generator.Generate(ctx, cfg, patterns(result.Parser)...)
	if err != nil {
		return err
	}
	diags := r.Diagnostics()
	a.report(diags)
	fmt.Fprintf(a.stderr, "%d error(s), %d warning(s)\n", diags.Count(diag.Error), diags.Count(diag.Warning))
	if diags.HasErrors() {
		return errReported
	}
	return nil
}

func (a *app) scan(ctx context.Context, args []string) error {
	result, err := yargs.ParseFlags[scanFlags](trimCommand(args, "scan"))
	if err != nil {
		return err
	}
	cfg, err := a.config(result.Flags.Config)
	if err != nil {
		return err
	}
	r, err := generator.Generate(ctx, cfg, patterns(result.Parser)...)
	if err != nil {
		return err
	}

	summaries := []metadata.CommandSummary{}
	for _, p := range r.Packages {
		for _, c := range p.Commands {
			summaries = append(summaries, c.Summary())
		}
	}
	switch strings.ToLower(result.Flags.Format) {
	case "json":
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	case "yaml":
		b, err := yaml.Marshal(summaries)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		_, err = a.stdout.Write(b)
		return err
	}
	return fmt.Errorf("unknown format %q, want json or yaml", result.Flags.Format)
}

func (a *app) helpMessage(ctx context.Context, args []string) error {
	result, err := yargs.ParseFlags[helpMessageFlags](trimCommand(args, "help-message"))
	if err != nil {
		return err
	}
	cfg, err := a.config(result.Flags.Config)
	if err != nil {
		return err
	}
	r, err := generator.Generate(ctx, cfg, patterns(result.Parser)...)
	if err != nil {
		return err
	}

	want := result.Flags.Command
	var found []*metadata.CommandDecl
	for _, p := range r.Packages {
		for _, c := range p.Commands {
			if !c.Usable() {
				continue
			}
			switch {
			case want == "" && c.IsRoot():
				found = append(found, c)
			case want != "" && (c.TypeName() == want || c.Name == want || strings.Join(c.Path(), " ") == want):
				found = append(found, c)
			}
		}
	}
	if len(found) == 0 {
		if want != "" {
			return fmt.Errorf("command %q not found", want)
		}
		return errors.New("no command found")
	}
	for i, c := range found {
		if i > 0 {
			fmt.Fprintln(a.stdout)
		}
		fmt.Fprint(a.stdout, help.GenerateHelp(c))
	}
	return nil
}

func (a *app) config(explicit string) (*config.Config, error) {
	if explicit != "" {
		explicit = a.abs(explicit)
	}
	cfg, err := config.Discover(explicit, a.dir)
	if err != nil {
		return nil, err
	}
	cfg.WorkDir = a.dir
	return cfg, nil
}

func (a *app) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.dir, path)
}

var (
	errorLabel   = color.New(color.FgRed, color.Bold)
	warningLabel = color.New(color.FgYellow)
)

// report prints diagnostics with positions relative to the working directory.
func (a *app) report(diags diag.List) {
	for _, d := range diags {
		label := warningLabel
		if d.Severity == diag.Error {
			label = errorLabel
		}
		pos := d.Pos
		if rel, err := filepath.Rel(a.dir, pos.Filename); err == nil && !strings.HasPrefix(rel, "..") {
			pos.Filename = rel
		}
		if pos.IsValid() {
			fmt.Fprintf(a.stderr, "%s: ", pos)
		}
		fmt.Fprintf(a.stderr, "%s %s: %s\n", label.Sprint(d.Severity), d.ID, d.Message)
	}
}

// trimCommand drops the subcommand name handed over by yargs.
func trimCommand(args []string, name string) []string {
	if len(args) > 0 && args[0] == name {
		return args[1:]
	}
	return args
}

func patterns(p *yargs.Parser) []string {
	out := append([]string{}, p.Args...)
	out = append(out, p.RemainingArgs...)
	if len(out) == 0 {
		return []string{"."}
	}
	return out
}
