// Package config holds the configuration of the cligen tool itself: a
// cligen.toml file found upward from the working directory, overridden by
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/podhmo/cligen/internal/codegen"
	"github.com/podhmo/cligen/internal/metadata"
	"github.com/podhmo/cligen/internal/naming"
)

// FileName is the name of the configuration file looked up by Find.
const FileName = "cligen.toml"

// Config is the tool configuration. Zero values mean "use the default".
type Config struct {
	OutputSuffix          string `toml:"output_suffix,omitempty"`
	BuildersFile          string `toml:"builders_file,omitempty"`
	LicenseFile           string `toml:"license_file,omitempty"`
	RuntimeImport         string `toml:"runtime_import,omitempty"`
	DefaultCasing         string `toml:"default_casing,omitempty"`
	DefaultPrefix         string `toml:"default_prefix,omitempty"`
	DefaultShortPrefix    string `toml:"default_short_prefix,omitempty"`
	ShortFormAutoGenerate *bool  `toml:"short_form_auto_generate,omitempty"`

	// Dir is the directory relative paths in the file are resolved against.
	Dir string `toml:"-"`
	// WorkDir is the directory package patterns are resolved against.
	// The process working directory when empty.
	WorkDir string `toml:"-"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	opts := codegen.DefaultOptions()
	return &Config{
		OutputSuffix:  opts.OutputSuffix,
		BuildersFile:  opts.BuildersFile,
		RuntimeImport: opts.RuntimeImport,
	}
}

// Load reads the configuration at path on top of Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Find returns the path of the nearest cligen.toml in startDir or one of its
// parents. It returns os.ErrNotExist when there is none.
func Find(startDir string) (string, error) {
	dir := filepath.Clean(startDir)
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// Discover loads the explicitly given file, or the nearest cligen.toml above
// startDir, or falls back to Default.
func Discover(explicit, startDir string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path, err := Find(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.Dir = startDir
			return cfg, nil
		}
		return nil, err
	}
	return Load(path)
}

// Settings returns the settings of root commands.
func (c *Config) Settings() (metadata.Settings, error) {
	s := metadata.DefaultSettings()
	if c.DefaultCasing != "" {
		v, err := naming.ParseCasing(c.DefaultCasing)
		if err != nil {
			return s, fmt.Errorf("default_casing: %w", err)
		}
		s.Casing = v
	}
	if c.DefaultPrefix != "" {
		v, err := naming.ParsePrefix(c.DefaultPrefix)
		if err != nil {
			return s, fmt.Errorf("default_prefix: %w", err)
		}
		s.Prefix = v
	}
	if c.DefaultShortPrefix != "" {
		v, err := naming.ParsePrefix(c.DefaultShortPrefix)
		if err != nil {
			return s, fmt.Errorf("default_short_prefix: %w", err)
		}
		s.ShortFormPrefix = v
	}
	if c.ShortFormAutoGenerate != nil {
		s.ShortFormAutoGenerate = *c.ShortFormAutoGenerate
	}
	return s, nil
}

// EmitOptions returns the emitter options. The license file, if any, is read
// into the header of every generated file.
func (c *Config) EmitOptions() (codegen.Options, error) {
	opts := codegen.DefaultOptions()
	if c.OutputSuffix != "" {
		opts.OutputSuffix = c.OutputSuffix
	}
	if c.BuildersFile != "" {
		opts.BuildersFile = c.BuildersFile
	}
	if c.RuntimeImport != "" {
		opts.RuntimeImport = c.RuntimeImport
	}
	if c.LicenseFile != "" {
		path := c.LicenseFile
		if !filepath.IsAbs(path) && c.Dir != "" {
			path = filepath.Join(c.Dir, path)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return opts, fmt.Errorf("reading license file: %w", err)
		}
		opts.Header = strings.TrimRight(string(b), "\n")
	}
	return opts, nil
}
