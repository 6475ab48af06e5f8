package cligen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathKinds(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0o644))
	missing := filepath.Join(dir, "missing")

	t.Run("FilePath", func(t *testing.T) {
		p, err := ParseFilePath(file)
		require.NoError(t, err)
		assert.True(t, p.Exists())

		p, err = ParseFilePath(missing)
		require.NoError(t, err)
		assert.False(t, p.Exists())

		_, err = ParseFilePath(dir)
		assert.ErrorContains(t, err, "is a directory")

		_, err = ParseFilePath("")
		assert.Error(t, err)
	})

	t.Run("DirPath", func(t *testing.T) {
		p, err := ParseDirPath(dir)
		require.NoError(t, err)
		assert.True(t, p.Exists())

		p, err = ParseDirPath(missing)
		require.NoError(t, err)
		assert.False(t, p.Exists())

		_, err = ParseDirPath(file)
		assert.ErrorContains(t, err, "is a file")
	})

	t.Run("Parser", func(t *testing.T) {
		b := &Builder{}
		got, err := Parser[DirPath](b)([]string{dir})
		require.NoError(t, err)
		assert.Equal(t, DirPath(dir), got)

		_, err = Parser[FilePath](b)([]string{dir})
		assert.Error(t, err)

		p, err := Parser[Path](b)([]string{dir})
		require.NoError(t, err)
		assert.Equal(t, dir, p.String())
	})
}
