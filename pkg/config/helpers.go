package config

import (
	"os"
	"path/filepath"
)

// AppName is the name used for configuration paths.
const AppName = "repofetch"

// DefaultConfigPath returns the platform-specific default location of the
// configuration file, e.g. ~/.config/repofetch/config.yaml on Linux.
func DefaultConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName, "config.yaml"), nil
}
