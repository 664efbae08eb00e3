package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Source opens a named feed.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// DirSource reads feeds from a local directory.
type DirSource struct {
	Dir string
}

// Open implements Source.
func (s DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open feed %s: %w", name, err)
	}
	return f, nil
}

// HTTPSource fetches feeds relative to a base URL.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// Open implements Source. Any non-2xx response is an error.
func (s HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	target, err := url.JoinPath(strings.TrimRight(s.BaseURL, "/"), name)
	if err != nil {
		return nil, fmt.Errorf("invalid feed URL for %s: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", name, err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", target, resp.Status)
	}
	return resp.Body, nil
}
