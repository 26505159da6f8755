package cli

import (
	"fmt"

	"github.com/glorpus-work/repofetch/pkg/config"
	"github.com/glorpus-work/repofetch/pkg/download"
	"github.com/glorpus-work/repofetch/pkg/logger"
	"github.com/glorpus-work/repofetch/pkg/repository"
	"github.com/glorpus-work/repofetch/pkg/transfer"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	NoColor    *bool
)

// loadConfig loads the configuration from the --config flag or the default
// location, falling back to defaults when no file exists yet.
func loadConfig() (*config.Config, error) {
	configPath := ""
	if ConfigPath != nil {
		configPath = *ConfigPath
	}

	var cfg *config.Config
	if configPath == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default config path: %w", err)
		}
		if cfg, err = config.Load(defaultPath); err != nil {
			// No config file is fine; run on defaults.
			cfg = config.DefaultConfig()
		}
	} else {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	logLevel := cfg.Settings.LogLevel
	if Verbose != nil && *Verbose {
		logLevel = "debug"
	}
	noColor := NoColor != nil && *NoColor
	logger.InitLogger(logLevel, noColor)

	if err := cfg.CheckRequiredVersion(Version); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildHandle creates a repository handle for the named repository, or for
// the highest-priority enabled repository when name is empty.
func buildHandle(cfg *config.Config, name string) (*repository.Handle, error) {
	var repoCfg *config.RepositoryConfig
	if name == "" {
		enabled := cfg.EnabledRepositories()
		if len(enabled) == 0 {
			return nil, fmt.Errorf("no enabled repositories configured")
		}
		repoCfg = enabled[0]
	} else {
		repoCfg = cfg.GetRepository(name)
		if repoCfg == nil {
			return nil, fmt.Errorf("unknown repository %q", name)
		}
	}

	h := repository.NewHandle(repository.RepoTypeYum)
	h.Interruptible = true
	h.DestDir = cfg.Settings.DestDir
	h.BaseURLs = repoCfg.BaseURLs
	h.MirrorlistURL = repoCfg.Mirrorlist
	return h, nil
}

// buildDownloader wires the transfer engine into a download orchestrator
// using the configured timeout, user agent and worker count.
func buildDownloader(cfg *config.Config) *download.Downloader {
	engine := transfer.NewEngine(cfg.Settings.HTTPTimeout, cfg.Settings.UserAgent, cfg.Settings.MaxParallelDownloads)
	return download.New(engine)
}

// progressPrinter returns a progress callback that writes simple percentage
// updates for a named package.
func progressPrinter(name string) transfer.ProgressFunc {
	var lastPercent int64 = -1
	return func(_ interface{}, total, downloaded int64) {
		if total <= 0 {
			return
		}
		percent := downloaded * 100 / total
		if percent != lastPercent {
			lastPercent = percent
			fmt.Printf("\r%s: %3d%%", name, percent)
			if percent >= 100 {
				fmt.Println()
			}
		}
	}
}
