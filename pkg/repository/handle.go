// Package repository provides the repository handle the download orchestrator
// operates on: repository type, destination defaults and the mirrorlist the
// transfer engine resolves relative URLs against.
package repository

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/glorpus-work/repofetch/pkg/errors"
	"github.com/glorpus-work/repofetch/pkg/logger"
	"github.com/glorpus-work/repofetch/pkg/transfer"
	"github.com/sirupsen/logrus"
)

// RepoType tags the kind of repository a handle points at.
type RepoType int

// Known repository types.
const (
	RepoTypeUnknown RepoType = iota
	RepoTypeYum
)

// String returns the repository type name.
func (t RepoType) String() string {
	if t == RepoTypeYum {
		return "yum"
	}
	return "unknown"
}

// Handle describes one configured repository. The download orchestrator
// reads it; the only mutation is the lazily prepared mirrorlist.
type Handle struct {
	RepoType      RepoType
	Interruptible bool

	// DestDir is the default destination directory for single-package
	// downloads without an explicit dest.
	DestDir string

	// ProgressCb and CbData are the default progress callback and its
	// opaque payload for targets that do not carry their own.
	ProgressCb transfer.ProgressFunc
	CbData     interface{}

	// BaseURLs are static mirrors. MirrorlistURL optionally names a remote
	// mirrorlist (one URL per line) fetched during preparation.
	BaseURLs      []string
	MirrorlistURL string

	// Client is used to fetch the mirrorlist; http.DefaultClient when nil.
	Client *http.Client

	mu       sync.Mutex
	prepared bool
	mirrors  []*url.URL
}

// NewHandle creates a handle for a repository of the given type.
func NewHandle(repoType RepoType) *Handle {
	return &Handle{RepoType: repoType}
}

// PrepareMirrorlist resolves the handle's mirrors: static base URLs first,
// then the entries of the remote mirrorlist when one is configured.
// Preparation is idempotent; the first successful call wins.
func (h *Handle) PrepareMirrorlist(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.prepared {
		return nil
	}

	var mirrors []*url.URL
	for _, raw := range h.BaseURLs {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" {
			return errors.Wrapf(errors.ErrInvalidPath, "base URL %q", raw)
		}
		mirrors = append(mirrors, u)
	}

	if h.MirrorlistURL != "" {
		fetched, err := fetchMirrorlist(ctx, h.httpClient(), h.MirrorlistURL)
		if err != nil {
			return err
		}
		mirrors = append(mirrors, fetched...)
	}

	if len(mirrors) == 0 {
		return errors.ErrNoMirrors
	}

	logger.Debug("mirrorlist prepared", logrus.Fields{"repo_type": h.RepoType.String(), "mirrors": len(mirrors)})
	h.mirrors = mirrors
	h.prepared = true
	return nil
}

// Mirrors returns the prepared mirrorlist. It is nil until
// PrepareMirrorlist succeeds.
func (h *Handle) Mirrors() []*url.URL {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mirrors
}

func (h *Handle) httpClient() *http.Client {
	if h.Client != nil {
		return h.Client
	}
	return http.DefaultClient
}
