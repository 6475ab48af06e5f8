package codegen

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

// Format gofmt-formats generated source. Imports are written by the
// emitter, so goimports only formats and never resolves packages.
func Format(filename string, src []byte) ([]byte, error) {
	formatted, err := imports.Process(filename, src, &imports.Options{
		FormatOnly: true,
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
	})
	if err != nil {
		return nil, fmt.Errorf("formatting generated code for %s: %w\nsource:\n%s", filename, err, src)
	}
	return formatted, nil
}

// Write stores units in dir. Files whose content did not change are not
// rewritten, so that the modification time of up-to-date files is kept.
func Write(dir string, units []Unit) error {
	for _, u := range units {
		path := filepath.Join(dir, u.Filename)
		if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, u.Content) {
			slog.Debug("unchanged", "file", path)
			continue
		}
		if err := os.WriteFile(path, u.Content, 0644); err != nil {
			return fmt.Errorf("writing generated code to %s: %w", path, err)
		}
		slog.Info("generated", "file", path)
	}
	return nil
}

// IsGenerated reports whether src carries the generated-code marker in
// its leading comments.
func IsGenerated(src []byte) bool {
	for _, line := range bytes.Split(src, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if bytes.Equal(line, []byte(GeneratedMarker)) {
			return true
		}
		if len(line) > 0 && !bytes.HasPrefix(line, []byte("//")) {
			return false
		}
	}
	return false
}

// RemoveStale deletes generated files in dir that match the unit naming
// scheme of opts but are not among units, e.g. after a command was renamed.
func RemoveStale(dir string, units []Unit, opts Options) error {
	keep := map[string]bool{}
	for _, u := range units {
		keep[u.Filename] = true
	}
	candidates, err := filepath.Glob(filepath.Join(dir, "*"+opts.OutputSuffix))
	if err != nil {
		return err
	}
	candidates = append(candidates, filepath.Join(dir, opts.BuildersFile))
	for _, path := range candidates {
		if keep[filepath.Base(path)] {
			continue
		}
		src, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if !IsGenerated(src) {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing stale %s: %w", path, err)
		}
		slog.Info("removed stale", "file", path)
	}
	return nil
}
