package download

import (
	"github.com/glorpus-work/repofetch/pkg/checksum"
	"github.com/glorpus-work/repofetch/pkg/errors"
	"github.com/glorpus-work/repofetch/pkg/transfer"
)

// NewPackageTarget builds a target for one package download.
// relativeURL is required; everything else is optional. LocalPath and Err
// start unset and are populated by DownloadPackages.
func NewPackageTarget(relativeURL, dest string, algo checksum.Algorithm, digest string,
	expectedSize int64, baseURL string, resume bool, progressCb transfer.ProgressFunc, cbData interface{},
) (*PackageTarget, error) {
	if relativeURL == "" {
		return nil, errors.ErrRelativeURLEmpty
	}
	return &PackageTarget{
		RelativeURL:  relativeURL,
		Dest:         dest,
		ChecksumAlgo: algo,
		Checksum:     digest,
		ExpectedSize: expectedSize,
		BaseURL:      baseURL,
		Resume:       resume,
		ProgressCb:   progressCb,
		CbData:       cbData,
	}, nil
}
