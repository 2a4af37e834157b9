package exclude

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIgnore(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".gitignore")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_CountsPatterns(t *testing.T) {
	path := writeIgnore(t, "# build output\nnode_modules/\n\n*.log\r\n.svelte-kit\n")

	list, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, list.Path)
	assert.Equal(t, 3, list.Patterns)
}

func TestLoad_EmptyFile(t *testing.T) {
	list, err := Load(writeIgnore(t, ""))
	require.NoError(t, err)
	assert.Equal(t, 0, list.Patterns)
	assert.False(t, list.Matches("a.txt", false))
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), ".gitignore"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMatches(t *testing.T) {
	list, err := Load(writeIgnore(t, "*.log\nnode_modules/\n.env\n"))
	require.NoError(t, err)

	cases := []struct {
		name   string
		path   string
		isDir  bool
		expect bool
	}{
		{"LogFile", "x.log", false, true},
		{"NestedLogFile", "logs/server.log", false, true},
		{"NodeModulesDir", "node_modules", true, true},
		{"NodeModulesFile", "node_modules/svelte/package.json", false, true},
		{"EnvFile", ".env", false, true},
		{"RegularFile", "a.txt", false, false},
		{"SourceDir", "src", true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, list.Matches(tc.path, tc.isDir))
		})
	}
}

func TestMatches_NilList(t *testing.T) {
	var list *List
	assert.False(t, list.Matches("x.log", false))
}
