// Package transfer implements the multi-transfer engine: it moves the bytes
// for a batch of requests over HTTP, with mirror failover, byte-range resume
// and post-download checksum verification.
package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/glorpus-work/repofetch/pkg/checksum"
	"github.com/glorpus-work/repofetch/pkg/errors"
	"github.com/glorpus-work/repofetch/pkg/fsutil"
	"github.com/glorpus-work/repofetch/pkg/logger"
)

// Source provides the mirrors a relative URL is resolved against.
// It must be prepared before Run is called.
type Source interface {
	Mirrors() []*url.URL
}

// Engine downloads batches of requests over HTTP.
type Engine struct {
	client      *http.Client
	userAgent   string
	maxParallel int
}

// NewEngine creates an engine with the given timeout, user agent and worker
// limit. maxParallel <= 0 selects a default based on the CPU count.
func NewEngine(timeout time.Duration, userAgent string, maxParallel int) *Engine {
	if userAgent == "" {
		userAgent = "repofetch/1.0"
	}
	return &Engine{
		client:      &http.Client{Timeout: timeout},
		userAgent:   userAgent,
		maxParallel: maxParallel,
	}
}

// Run transfers every request and records per-request outcomes in Request.Err.
// It returns only when all transfers have reached a terminal state. With
// failfast the first failing transfer aborts the batch and becomes the batch
// error; requests not yet started are left with no recorded outcome.
// Without failfast per-request errors are recorded and Run returns nil,
// unless the context was cancelled.
func (e *Engine) Run(ctx context.Context, src Source, requests []*Request, failfast bool) error {
	if len(requests) == 0 {
		return nil
	}

	workers := e.maxParallel
	if workers <= 0 {
		workers = max(2, runtime.NumCPU()/2)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, req := range requests {
		req := req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				// Batch aborted before this transfer started; leave
				// the outcome unset.
				return err
			}
			if err := e.transfer(gctx, src, req); err != nil {
				req.Err = err.Error()
				logger.Debug("transfer failed", logrus.Fields{"id": req.ID, "url": req.RelativeURL, "error": err})
				if failfast {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "batch aborted")
	}
	return ctx.Err()
}

// transfer downloads one request, trying its base URL or each mirror in turn.
func (e *Engine) transfer(ctx context.Context, src Source, req *Request) error {
	mirrors, err := candidateMirrors(src, req)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(req.LocalPath); dir != "." {
		if err := fsutil.EnsureDir(dir); err != nil {
			return err
		}
	}

	var lastErr error
	for _, mirror := range mirrors {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.fetchFrom(ctx, mirror, req); err != nil {
			logger.Debug("mirror attempt failed", logrus.Fields{"id": req.ID, "mirror": mirror.String(), "error": err})
			lastErr = err
			continue
		}
		return nil
	}
	return errors.Wrapf(lastErr, "cannot download %s", req.RelativeURL)
}

func candidateMirrors(src Source, req *Request) ([]*url.URL, error) {
	if req.BaseURL != "" {
		base, err := url.Parse(req.BaseURL)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidPath, "base URL %q", req.BaseURL)
		}
		return []*url.URL{base}, nil
	}
	if src == nil || len(src.Mirrors()) == 0 {
		return nil, errors.Wrapf(errors.ErrNoMirrors, "for %s", req.RelativeURL)
	}
	return src.Mirrors(), nil
}

// fetchFrom downloads req from a single mirror, resuming when requested and
// verifying the checksum of the complete file.
func (e *Engine) fetchFrom(ctx context.Context, mirror *url.URL, req *Request) error {
	var offset int64
	if req.Resume {
		if st, err := os.Stat(req.LocalPath); err == nil {
			offset = st.Size()
		}
	}

	full := *mirror
	full.Path = path.Join(full.Path, req.RelativeURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, full.String(), http.NoBody)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	httpReq.Header.Set("User-Agent", e.userAgent)
	if offset > 0 {
		httpReq.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return errors.Wrap(err, "download failed")
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		// Server ignored the range request; start over.
		offset = 0
	case http.StatusPartialContent:
	default:
		return fmt.Errorf("unexpected status code: %d: %w", resp.StatusCode, errors.ErrDownloadFailed)
	}

	if req.ExpectedSize >= 0 && resp.ContentLength > 0 && offset+resp.ContentLength > req.ExpectedSize {
		return errors.Wrapf(errors.ErrSizeExceeded, "%d > %d bytes", offset+resp.ContentLength, req.ExpectedSize)
	}

	if err := writeBody(resp, req, offset); err != nil {
		return err
	}
	return verifyLocal(req)
}

func writeBody(resp *http.Response, req *Request, offset int64) error {
	flags := os.O_CREATE | os.O_WRONLY
	if offset > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(req.LocalPath, flags, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(err, "could not open destination file")
	}

	total := req.ExpectedSize
	if total < 0 && resp.ContentLength > 0 {
		total = offset + resp.ContentLength
	}
	if total < 0 {
		total = 0
	}

	written, err := copyWithProgress(f, resp, req, offset, total)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = errors.Wrap(cerr, "could not close destination file")
	}
	if err != nil {
		return err
	}
	if req.ExpectedSize >= 0 && written > req.ExpectedSize {
		return errors.Wrapf(errors.ErrSizeExceeded, "%d > %d bytes", written, req.ExpectedSize)
	}
	return nil
}

func copyWithProgress(f *os.File, resp *http.Response, req *Request, offset, total int64) (int64, error) {
	buf := make([]byte, 32*1024)
	downloaded := offset
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return downloaded, errors.Wrap(werr, "could not write file")
			}
			downloaded += int64(n)
			if req.ProgressCb != nil {
				req.ProgressCb(req.CbData, total, downloaded)
			}
			if req.ExpectedSize >= 0 && downloaded > req.ExpectedSize {
				return downloaded, errors.Wrapf(errors.ErrSizeExceeded, "%d > %d bytes", downloaded, req.ExpectedSize)
			}
		}
		if err != nil {
			if err == io.EOF {
				return downloaded, nil
			}
			return downloaded, errors.Wrap(err, "could not read response")
		}
	}
}

// verifyLocal compares the finished file against the request's checksum,
// when one was provided.
func verifyLocal(req *Request) error {
	if req.Checksum == "" || req.ChecksumAlgo == checksum.Unknown {
		return nil
	}
	f, err := os.Open(req.LocalPath)
	if err != nil {
		return errors.Wrap(err, "open for checksum")
	}
	defer func() { _ = f.Close() }()

	matches, err := checksum.Compare(req.ChecksumAlgo, f, req.Checksum, 0)
	if err != nil {
		return err
	}
	if !matches {
		return errors.Wrapf(errors.ErrChecksumMismatch, "file %s", req.LocalPath)
	}
	return nil
}
