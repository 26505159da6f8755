package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/repofetch/test/testutil"
)

func writeConfig(t *testing.T, repoURL, mirrorlistURL string) string {
	t.Helper()

	cfg := "repositories:\n  - name: test\n    enabled: true\n"
	if repoURL != "" {
		cfg += fmt.Sprintf("    baseurls:\n      - %s\n", repoURL)
	}
	if mirrorlistURL != "" {
		cfg += fmt.Sprintf("    mirrorlist: %s\n", mirrorlistURL)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestDownloadCommand(t *testing.T) {
	rs := testutil.NewRepoServer(t, t.TempDir())
	content := []byte("rpm payload bytes")
	rs.WritePackage(t, "pkgs/foo-1.0.rpm", content)

	sum := sha256.Sum256(content)
	digest := hex.EncodeToString(sum[:])

	cfgPath := writeConfig(t, rs.RepoURL(), "")
	destDir := t.TempDir()

	require.NoError(t, runCommand(t, "--config", cfgPath, "download", "pkgs/foo-1.0.rpm",
		"--dest", destDir, "--checksum-type", "sha256", "--checksum", digest))

	got, err := os.ReadFile(filepath.Join(destDir, "foo-1.0.rpm"))
	require.NoError(t, err)
	assert.Equal(t, content, got)

	// A second run finds the verified file and succeeds without refetching.
	require.NoError(t, runCommand(t, "--config", cfgPath, "download", "pkgs/foo-1.0.rpm",
		"--dest", destDir, "--checksum-type", "sha256", "--checksum", digest))
}

func TestDownloadCommandViaMirrorlist(t *testing.T) {
	rs := testutil.NewRepoServer(t, t.TempDir())
	content := []byte("served through the mirrorlist")
	rs.WritePackage(t, "pkgs/bar-2.0.rpm", content)

	cfgPath := writeConfig(t, "", rs.MirrorlistURL())
	destDir := t.TempDir()

	require.NoError(t, runCommand(t, "--config", cfgPath, "download", "pkgs/bar-2.0.rpm",
		"--dest", destDir))

	got, err := os.ReadFile(filepath.Join(destDir, "bar-2.0.rpm"))
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestDownloadCommandManifest(t *testing.T) {
	rs := testutil.NewRepoServer(t, t.TempDir())
	rs.WritePackage(t, "pkgs/a-1.rpm", []byte("package a"))
	rs.WritePackage(t, "pkgs/b-1.rpm", []byte("package b"))

	destDir := t.TempDir()
	manifest := fmt.Sprintf("packages:\n  - url: pkgs/a-1.rpm\n    dest: %s\n  - url: pkgs/b-1.rpm\n    dest: %s\n",
		destDir, destDir)
	manifestPath := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifest), 0o644))

	cfgPath := writeConfig(t, rs.RepoURL(), "")

	require.NoError(t, runCommand(t, "--config", cfgPath, "download", "--manifest", manifestPath))

	for _, name := range []string{"a-1.rpm", "b-1.rpm"} {
		_, err := os.Stat(filepath.Join(destDir, name))
		require.NoError(t, err)
	}
}

func TestDownloadCommandFailure(t *testing.T) {
	rs := testutil.NewRepoServer(t, t.TempDir())
	cfgPath := writeConfig(t, rs.RepoURL(), "")

	err := runCommand(t, "--config", cfgPath, "download", "pkgs/missing.rpm",
		"--dest", t.TempDir(), "--failfast")
	require.Error(t, err)
}

func TestDownloadCommandNoArguments(t *testing.T) {
	cfgPath := writeConfig(t, "https://example.com/repo/", "")
	err := runCommand(t, "--config", cfgPath, "download")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to download")
}
