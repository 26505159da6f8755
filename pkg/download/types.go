//go:generate mockgen -destination=./mocks/download.go . Engine

// Package download implements the batched package download orchestrator: it
// resolves each target to a local path, skips targets whose destination
// already holds a checksum-verified artifact, hands the rest to the transfer
// engine and back-propagates per-target outcomes.
package download

import (
	"context"

	"github.com/glorpus-work/repofetch/pkg/checksum"
	"github.com/glorpus-work/repofetch/pkg/transfer"
)

// AlreadyDownloaded is the sentinel recorded in PackageTarget.Err when the
// destination file already matched its checksum during pre-flight. It marks
// success, not failure; the Skipped field carries the same information
// without the string overload.
const AlreadyDownloaded = "Already downloaded"

// Flags control batch behavior.
type Flags uint8

const (
	// FailFast aborts the batch on the first transfer error. Targets whose
	// transfer never started keep an empty outcome.
	FailFast Flags = 1 << 0
)

// Engine is the multi-transfer component that moves the bytes. Run returns
// after every submitted request reached a terminal state (or the batch was
// aborted under failfast) and records per-request errors on the requests.
type Engine interface {
	Run(ctx context.Context, src transfer.Source, requests []*transfer.Request, failfast bool) error
}

// PackageTarget describes one package to fetch plus its outcome slot.
// It is created by the caller and mutated only inside DownloadPackages,
// which populates LocalPath and, on failure or pre-flight skip, Err.
type PackageTarget struct {
	// RelativeURL is the path fragment resolved against a mirror (or
	// BaseURL). Required; never mutated.
	RelativeURL string

	// BaseURL, when set, bypasses the handle's mirrorlist for this target.
	BaseURL string

	// Dest is a destination directory or full file path. Empty means the
	// current working directory with the filename derived from RelativeURL.
	Dest string

	// ChecksumAlgo and Checksum describe the expected digest. A target
	// without both is never pre-flight-skipped.
	ChecksumAlgo checksum.Algorithm
	Checksum     string

	// ExpectedSize is the expected byte size; negative means unknown.
	ExpectedSize int64

	// Resume allows byte-range continuation of an incomplete prior attempt.
	Resume bool

	ProgressCb transfer.ProgressFunc
	CbData     interface{}

	// LocalPath is the resolved filesystem path. Set exactly once during
	// pre-flight, before any transfer result is recorded.
	LocalPath string

	// Err is the per-target outcome: empty on success, AlreadyDownloaded on
	// a pre-flight skip, otherwise the transfer error message.
	Err string

	// Skipped reports a pre-flight skip without the sentinel overload.
	Skipped bool
}
