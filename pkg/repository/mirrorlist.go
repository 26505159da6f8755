package repository

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/glorpus-work/repofetch/pkg/errors"
)

// fetchMirrorlist downloads and parses a plain-text mirrorlist: one base URL
// per line, blank lines and '#' comments ignored.
func fetchMirrorlist(ctx context.Context, client *http.Client, listURL string) ([]*url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create mirrorlist request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrMirrorlistUnreadable, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d: %w", resp.StatusCode, errors.ErrMirrorlistUnreadable)
	}
	return parseMirrorlist(resp.Body)
}

func parseMirrorlist(r io.Reader) ([]*url.URL, error) {
	var mirrors []*url.URL
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		u, err := url.Parse(line)
		if err != nil || u.Scheme == "" {
			return nil, errors.Wrapf(errors.ErrInvalidPath, "mirrorlist entry %q", line)
		}
		mirrors = append(mirrors, u)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrMirrorlistUnreadable, err.Error())
	}
	return mirrors, nil
}
