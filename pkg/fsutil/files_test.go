package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), FileModeDefault))

	assert.True(t, IsDir(dir))
	assert.False(t, IsDir(file))
	assert.False(t, IsDir(filepath.Join(dir, "missing")))
}

func TestIsReadable(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), FileModeDefault))

	assert.True(t, IsReadable(file))
	assert.False(t, IsReadable(filepath.Join(dir, "missing")))
}

func TestEnsureDir(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c")

	require.NoError(t, EnsureDir(nested))
	assert.True(t, IsDir(nested))

	// Idempotent on existing directories.
	require.NoError(t, EnsureDir(nested))

	require.Error(t, EnsureDir(""))
}
