package download

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/glorpus-work/repofetch/internal/interrupt"
	"github.com/glorpus-work/repofetch/pkg/checksum"
	"github.com/glorpus-work/repofetch/pkg/errors"
	"github.com/glorpus-work/repofetch/pkg/fsutil"
	"github.com/glorpus-work/repofetch/pkg/logger"
	"github.com/glorpus-work/repofetch/pkg/repository"
	"github.com/glorpus-work/repofetch/pkg/transfer"
)

// Downloader orchestrates package download batches through an Engine.
type Downloader struct {
	Engine Engine
}

// New creates a Downloader backed by the given engine.
func New(engine Engine) *Downloader {
	return &Downloader{Engine: engine}
}

// DownloadPackages downloads a batch of targets from the repository the
// handle points at.
//
// Targets whose destination already holds a byte-for-byte correct artifact
// (checksum verified) are marked with the AlreadyDownloaded sentinel and
// never dispatched; resuming a complete file would fail, so the pre-flight
// skip is the only way to report them as done. The remaining targets go to
// the engine in caller order, and per-target outcomes are copied back into
// Err afterwards.
//
// When the handle is interruptible a SIGINT observer is armed for the
// duration of the call and restored on every exit path. An observed
// interrupt makes the batch result ErrInterrupted, overriding any engine
// error. Without FailFast the batch returns nil even when individual
// transfers failed; the caller inspects each target's Err.
//
// Concurrent interruptible batches are not supported: the signal
// disposition is process-global, so callers must serialize.
func (d *Downloader) DownloadPackages(ctx context.Context, h *repository.Handle, targets []*PackageTarget, flags Flags) error {
	if len(targets) == 0 {
		return nil
	}
	if h == nil {
		return errors.Wrap(errors.ErrBadArgument, "nil handle")
	}
	if h.RepoType != repository.RepoTypeYum {
		return errors.Wrapf(errors.ErrBadRepoType, "%s", h.RepoType)
	}

	var guard *interrupt.Guard
	if h.Interruptible {
		logger.Debug("using own SIGINT handler")
		g, err := interrupt.Arm(ctx)
		if err != nil {
			return err
		}
		guard = g
		ctx = g.Context()
		defer guard.Disarm()
	}

	batchErr := h.PrepareMirrorlist(ctx)

	// Pre-flight runs even when mirrorlist preparation failed: it only
	// touches the local filesystem, and every target must leave with its
	// LocalPath resolved.
	requests := d.preflight(targets)

	if batchErr == nil && len(requests) > 0 {
		batchErr = d.Engine.Run(ctx, h, requests, flags&FailFast != 0)
	}

	// Back-propagate per-request outcomes in enqueue order. Pre-flight
	// skips carry no request, so the sentinel is never overwritten.
	for _, req := range requests {
		if req.Err == "" {
			continue
		}
		if target, ok := req.UserData.(*PackageTarget); ok && target.Err == "" {
			target.Err = req.Err
		}
	}

	if guard != nil {
		guard.Disarm()
		if guard.Interrupted() {
			return errors.ErrInterrupted
		}
	}

	return batchErr
}

// DownloadPackage downloads a single package, defaulting the destination to
// the handle's DestDir and the progress callback to the handle's. The batch
// runs with FailFast, so any per-target failure is the returned error.
func (d *Downloader) DownloadPackage(ctx context.Context, h *repository.Handle, relativeURL, dest string,
	algo checksum.Algorithm, digest string, expectedSize int64, baseURL string, resume bool,
) error {
	if h == nil {
		return errors.Wrap(errors.ErrBadArgument, "nil handle")
	}
	if dest == "" {
		dest = h.DestDir
	}

	target, err := NewPackageTarget(relativeURL, dest, algo, digest, expectedSize, baseURL, resume, h.ProgressCb, h.CbData)
	if err != nil {
		return err
	}

	return d.DownloadPackages(ctx, h, []*PackageTarget{target}, FailFast)
}

// preflight resolves every target's local path and splits the batch into
// already-satisfied targets and transfer requests, preserving caller order.
func (d *Downloader) preflight(targets []*PackageTarget) []*transfer.Request {
	var requests []*transfer.Request
	for _, target := range targets {
		target.LocalPath = resolveLocalPath(target)

		if alreadySatisfied(target) {
			logger.Debug("package is already downloaded (checksum matches)",
				logrus.Fields{"path": target.LocalPath})
			target.Err = AlreadyDownloaded
			target.Skipped = true
			continue
		}

		requests = append(requests, transfer.NewRequest(
			target.RelativeURL,
			target.BaseURL,
			target.LocalPath,
			target.ChecksumAlgo,
			target.Checksum,
			target.ExpectedSize,
			target.Resume,
			target.ProgressCb,
			target.CbData,
			target,
		))
	}
	return requests
}

// resolveLocalPath computes the concrete destination for a target:
// no dest means the basename of the relative URL under the working
// directory, a dest naming an existing directory gets the basename joined
// onto it, anything else is taken verbatim.
func resolveLocalPath(target *PackageTarget) string {
	if target.Dest == "" {
		return path.Base(target.RelativeURL)
	}
	if fsutil.IsDir(target.Dest) {
		return filepath.Join(target.Dest, path.Base(target.RelativeURL))
	}
	return target.Dest
}

// alreadySatisfied reports whether the target's destination already holds a
// file matching its expected checksum. Probe or compare failures fall
// through to a normal download; the engine will overwrite or resume.
func alreadySatisfied(target *PackageTarget) bool {
	if target.Checksum == "" || target.ChecksumAlgo == checksum.Unknown {
		return false
	}
	f, err := os.Open(target.LocalPath)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	matches, err := checksum.Compare(target.ChecksumAlgo, f, target.Checksum, 0)
	return err == nil && matches
}
