package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/repofetch/pkg/checksum"
	"github.com/glorpus-work/repofetch/pkg/download"
)

// Manifest is a YAML batch description: a list of packages to download.
type Manifest struct {
	Packages []ManifestEntry `yaml:"packages"`
}

// ManifestEntry describes one package in a manifest.
type ManifestEntry struct {
	RelativeURL  string `yaml:"url"`
	Dest         string `yaml:"dest,omitempty"`
	ChecksumType string `yaml:"checksum_type,omitempty"`
	Checksum     string `yaml:"checksum,omitempty"`
	ExpectedSize *int64 `yaml:"size,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
	Resume       bool   `yaml:"resume,omitempty"`
}

// LoadManifest reads a manifest file and builds the package targets it
// describes.
func LoadManifest(path string) ([]*download.PackageTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	targets := make([]*download.PackageTarget, 0, len(manifest.Packages))
	for i, entry := range manifest.Packages {
		algo, err := checksum.Parse(entry.ChecksumType)
		if err != nil {
			return nil, fmt.Errorf("manifest entry %d: %w", i, err)
		}
		size := int64(-1)
		if entry.ExpectedSize != nil {
			size = *entry.ExpectedSize
		}
		target, err := download.NewPackageTarget(entry.RelativeURL, entry.Dest, algo, entry.Checksum,
			size, entry.BaseURL, entry.Resume, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("manifest entry %d: %w", i, err)
		}
		targets = append(targets, target)
	}
	return targets, nil
}
