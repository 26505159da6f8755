package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/repofetch/pkg/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Empty(t, cfg.Repositories)
	assert.Equal(t, DefaultHTTPTimeout, cfg.Settings.HTTPTimeout)
	assert.Equal(t, DefaultMaxParallelDownloads, cfg.Settings.MaxParallelDownloads)
	assert.Equal(t, DefaultUserAgent, cfg.Settings.UserAgent)
	assert.Equal(t, "info", cfg.Settings.LogLevel)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		expectErr error
		check     func(t *testing.T, cfg *Config)
	}{
		{
			name: "full config",
			content: `
repositories:
  - name: fedora
    baseurls:
      - https://mirror.example.com/fedora/
    enabled: true
    priority: 10
  - name: updates
    mirrorlist: https://mirrors.example.com/list
    enabled: false
settings:
  destdir: /var/cache/packages
  http_timeout: 10s
  max_parallel_downloads: 3
  log_level: debug
`,
			check: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Repositories, 2)
				assert.Equal(t, "fedora", cfg.Repositories[0].Name)
				assert.Equal(t, "/var/cache/packages", cfg.Settings.DestDir)
				assert.Equal(t, 10*time.Second, cfg.Settings.HTTPTimeout)
				assert.Equal(t, 3, cfg.Settings.MaxParallelDownloads)
				assert.Equal(t, "debug", cfg.Settings.LogLevel)
			},
		},
		{
			name:    "defaults applied",
			content: "repositories: []\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultHTTPTimeout, cfg.Settings.HTTPTimeout)
				assert.Equal(t, DefaultUserAgent, cfg.Settings.UserAgent)
			},
		},
		{
			name:      "invalid yaml",
			content:   "repositories: [unclosed\n",
			expectErr: errors.ErrConfigParse,
		},
		{
			name: "repository without name",
			content: `
repositories:
  - baseurls: [https://example.com/]
    enabled: true
`,
			expectErr: errors.ErrConfigValidation,
		},
		{
			name: "repository without urls",
			content: `
repositories:
  - name: empty
    enabled: true
`,
			expectErr: errors.ErrConfigValidation,
		},
		{
			name: "duplicate repository names",
			content: `
repositories:
  - name: fedora
    baseurls: [https://a.example.com/]
    enabled: true
  - name: fedora
    baseurls: [https://b.example.com/]
    enabled: true
`,
			expectErr: errors.ErrConfigValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			cfg, err := Load(path)
			if tt.expectErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load("")
	assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Repositories = []*RepositoryConfig{
		{Name: "fedora", BaseURLs: []string{"https://mirror.example.com/fedora/"}, Enabled: true, Priority: 5},
	}
	cfg.Settings.DestDir = "/tmp/pkgs"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Repositories[0].Name, loaded.Repositories[0].Name)
	assert.Equal(t, cfg.Settings.DestDir, loaded.Settings.DestDir)
}

func TestCheckRequiredVersion(t *testing.T) {
	tests := []struct {
		name          string
		required      string
		clientVersion string
		expectErr     error
	}{
		{name: "no constraint", required: "", clientVersion: "1.0.0"},
		{name: "satisfied", required: ">= 1.0.0", clientVersion: "1.2.3"},
		{name: "too old", required: ">= 2.0.0", clientVersion: "1.2.3", expectErr: errors.ErrVersionTooOld},
		{name: "bad client version", required: ">= 1.0.0", clientVersion: "not-a-version", expectErr: errors.ErrConfigValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Settings.RequiredVersion = tt.required

			err := cfg.CheckRequiredVersion(tt.clientVersion)
			if tt.expectErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEnabledRepositories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Repositories = []*RepositoryConfig{
		{Name: "low", BaseURLs: []string{"https://low.example.com/"}, Enabled: true, Priority: 1},
		{Name: "disabled", BaseURLs: []string{"https://off.example.com/"}, Enabled: false, Priority: 99},
		{Name: "high", BaseURLs: []string{"https://high.example.com/"}, Enabled: true, Priority: 10},
	}

	enabled := cfg.EnabledRepositories()
	require.Len(t, enabled, 2)
	assert.Equal(t, "high", enabled[0].Name)
	assert.Equal(t, "low", enabled[1].Name)

	assert.Equal(t, "disabled", cfg.GetRepository("disabled").Name)
	assert.Nil(t, cfg.GetRepository("missing"))
}
