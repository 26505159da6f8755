package cli

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/repofetch/pkg/checksum"
	"github.com/glorpus-work/repofetch/pkg/download"
)

// NewDownloadCmd creates the download command.
func NewDownloadCmd() *cobra.Command {
	var (
		repoName     string
		dest         string
		checksumType string
		digest       string
		expectedSize int64
		baseURL      string
		resume       bool
		failFast     bool
		manifestPath string
	)

	cmd := &cobra.Command{
		Use:   "download [RELATIVE_URL...]",
		Short: "Download packages from a repository",
		Long: `Download one or more packages from the configured repository.
Packages whose destination already contains a checksum-verified copy are
skipped. Batches can also be described in a YAML manifest via --manifest.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && manifestPath == "" {
				return fmt.Errorf("nothing to download: pass relative URLs or --manifest")
			}
			return runDownload(cmd, args, downloadOptions{
				repoName:     repoName,
				dest:         dest,
				checksumType: checksumType,
				digest:       digest,
				expectedSize: expectedSize,
				baseURL:      baseURL,
				resume:       resume,
				failFast:     failFast,
				manifestPath: manifestPath,
			})
		},
	}

	cmd.Flags().StringVar(&repoName, "repo", "", "repository name (default: highest-priority enabled)")
	cmd.Flags().StringVar(&dest, "dest", "", "destination directory or file path")
	cmd.Flags().StringVar(&checksumType, "checksum-type", "", "checksum algorithm (md5, sha1, sha224, sha256, sha384, sha512)")
	cmd.Flags().StringVar(&digest, "checksum", "", "expected hex digest (single package only)")
	cmd.Flags().Int64Var(&expectedSize, "expected-size", -1, "expected size in bytes (-1 = unknown)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "base URL overriding the repository mirrorlist")
	cmd.Flags().BoolVar(&resume, "resume", false, "resume partially downloaded files")
	cmd.Flags().BoolVar(&failFast, "failfast", false, "abort the batch on the first failure")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "YAML manifest describing the batch")

	return cmd
}

type downloadOptions struct {
	repoName     string
	dest         string
	checksumType string
	digest       string
	expectedSize int64
	baseURL      string
	resume       bool
	failFast     bool
	manifestPath string
}

func runDownload(cmd *cobra.Command, args []string, opts downloadOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	handle, err := buildHandle(cfg, opts.repoName)
	if err != nil {
		return err
	}

	targets, err := buildTargets(args, opts)
	if err != nil {
		return err
	}

	var flags download.Flags
	if opts.failFast {
		flags |= download.FailFast
	}

	downloader := buildDownloader(cfg)
	batchErr := downloader.DownloadPackages(cmd.Context(), handle, targets, flags)

	for _, target := range targets {
		switch {
		case target.Skipped:
			fmt.Printf("%s: already downloaded (%s)\n", target.RelativeURL, target.LocalPath)
		case target.Err != "":
			fmt.Printf("%s: FAILED: %s\n", target.RelativeURL, target.Err)
		case target.LocalPath != "":
			fmt.Printf("%s: saved to %s\n", target.RelativeURL, target.LocalPath)
		}
	}

	return batchErr
}

func buildTargets(args []string, opts downloadOptions) ([]*download.PackageTarget, error) {
	var targets []*download.PackageTarget

	if opts.manifestPath != "" {
		loaded, err := LoadManifest(opts.manifestPath)
		if err != nil {
			return nil, err
		}
		targets = loaded
	}

	algo, err := checksum.Parse(opts.checksumType)
	if err != nil {
		return nil, err
	}
	if opts.digest != "" && len(args) > 1 {
		return nil, fmt.Errorf("--checksum applies to a single package, got %d", len(args))
	}

	for _, relativeURL := range args {
		target, err := download.NewPackageTarget(relativeURL, opts.dest, algo, opts.digest,
			opts.expectedSize, opts.baseURL, opts.resume, progressPrinter(path.Base(relativeURL)), nil)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, nil
}
