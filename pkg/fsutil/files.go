package fsutil

import (
	"fmt"
	"os"
)

// IsDir reports whether path names an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsReadable reports whether path names an existing file the process can
// open for reading.
func IsReadable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// EnsureDir creates dir (and any missing parents) if it does not exist yet.
func EnsureDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("directory path cannot be empty")
	}
	if err := os.MkdirAll(dir, DirModeDefault); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
