package cligen

import (
	"fmt"
	"os"
)

// Path marks a value as a filesystem path. It is not checked.
type Path string

// FilePath is a path that must not name an existing directory.
type FilePath string

// DirPath is a path that must not name an existing regular file.
type DirPath string

func (p Path) String() string     { return string(p) }
func (p FilePath) String() string { return string(p) }
func (p DirPath) String() string  { return string(p) }

// Exists reports whether the file is present.
func (p FilePath) Exists() bool {
	info, err := os.Stat(string(p))
	return err == nil && !info.IsDir()
}

// Exists reports whether the directory is present.
func (p DirPath) Exists() bool {
	info, err := os.Stat(string(p))
	return err == nil && info.IsDir()
}

// ParseFilePath accepts a missing path or an existing non-directory.
func ParseFilePath(s string) (FilePath, error) {
	if s == "" {
		return "", fmt.Errorf("empty file path")
	}
	if info, err := os.Stat(s); err == nil && info.IsDir() {
		return "", fmt.Errorf("%s is a directory, want a file", s)
	}
	return FilePath(s), nil
}

// ParseDirPath accepts a missing path or an existing directory.
func ParseDirPath(s string) (DirPath, error) {
	if s == "" {
		return "", fmt.Errorf("empty directory path")
	}
	if info, err := os.Stat(s); err == nil && !info.IsDir() {
		return "", fmt.Errorf("%s is a file, want a directory", s)
	}
	return DirPath(s), nil
}
