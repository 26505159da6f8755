package transfer

import (
	"github.com/google/uuid"

	"github.com/glorpus-work/repofetch/pkg/checksum"
)

// ProgressFunc is called repeatedly while a transfer is running.
// totalToDownload is the best known total in bytes (0 when unknown) and
// downloaded is the number of bytes written so far, including any resumed
// prefix.
type ProgressFunc func(data interface{}, totalToDownload, downloaded int64)

// Request describes one transfer for the engine. It lives for the duration
// of a single batch. The engine records the per-request outcome in Err;
// an empty Err after Run means the transfer succeeded.
type Request struct {
	// ID is a short identifier used to correlate log lines.
	ID string

	RelativeURL  string
	BaseURL      string // if set, bypasses the mirror source for this request
	LocalPath    string
	ChecksumAlgo checksum.Algorithm
	Checksum     string
	ExpectedSize int64 // negative means unknown
	Resume       bool

	ProgressCb ProgressFunc
	CbData     interface{}

	// UserData is a non-owning back reference for the caller. The engine
	// never touches it.
	UserData interface{}

	// Err is the per-request error message, set by the engine after Run.
	Err string
}

// NewRequest builds a Request for the engine.
func NewRequest(relativeURL, baseURL, localPath string, algo checksum.Algorithm, digest string,
	expectedSize int64, resume bool, progressCb ProgressFunc, cbData, userData interface{},
) *Request {
	return &Request{
		ID:           uuid.NewString(),
		RelativeURL:  relativeURL,
		BaseURL:      baseURL,
		LocalPath:    localPath,
		ChecksumAlgo: algo,
		Checksum:     digest,
		ExpectedSize: expectedSize,
		Resume:       resume,
		ProgressCb:   progressCb,
		CbData:       cbData,
		UserData:     userData,
	}
}
