// Package testutil provides test helpers shared across packages.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// RepoServer is a package repository for tests: it serves files under /repo/
// from a local directory and a plain-text mirrorlist pointing back at itself.
type RepoServer struct {
	Server *httptest.Server
	Dir    string
}

// NewRepoServer creates and starts a repository server rooted at dir.
// The server is shut down automatically when the test ends.
func NewRepoServer(t *testing.T, dir string) *RepoServer {
	t.Helper()

	rs := &RepoServer{Dir: dir}

	mux := http.NewServeMux()
	mux.Handle("/repo/", http.StripPrefix("/repo/", http.FileServer(http.Dir(dir))))
	mux.HandleFunc("/mirrorlist.txt", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# test mirrors\n" + rs.RepoURL() + "\n"))
	})

	rs.Server = httptest.NewServer(mux)
	t.Cleanup(rs.Server.Close)
	return rs
}

// RepoURL returns the base URL packages are served under.
func (rs *RepoServer) RepoURL() string {
	return rs.Server.URL + "/repo/"
}

// MirrorlistURL returns the URL of the plain-text mirrorlist.
func (rs *RepoServer) MirrorlistURL() string {
	return rs.Server.URL + "/mirrorlist.txt"
}

// WritePackage stores a package file under the server's root and returns its
// path on disk.
func (rs *RepoServer) WritePackage(t *testing.T, relPath string, content []byte) string {
	t.Helper()

	full := filepath.Join(rs.Dir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("failed to create package dir: %v", err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		t.Fatalf("failed to write package: %v", err)
	}
	return full
}
