package build

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the upstream source distribution root.
const DefaultBaseURL = "https://www.python.org/ftp/python"

// HTTPClient is the subset of http.Client the fetcher needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads source archives into a build workspace.
type Fetcher struct {
	client  HTTPClient
	baseURL string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient substitutes the HTTP client, mainly for tests.
func WithHTTPClient(client HTTPClient) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithBaseURL points the fetcher at a mirror.
func WithBaseURL(url string) FetcherOption {
	return func(f *Fetcher) {
		if url != "" {
			f.baseURL = url
		}
	}
}

// NewFetcher creates a fetcher for the upstream distribution site.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:  http.DefaultClient,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the source tarball for the given full version into
// destDir and returns the local archive path.
func (f *Fetcher) Fetch(ctx context.Context, fullVersion, destDir string) (string, error) {
	url := fmt.Sprintf("%s/%s/Python-%s.tgz", f.baseURL, fullVersion, fullVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch: build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch: unexpected status %d for %s", resp.StatusCode, url)
	}

	archivePath := filepath.Join(destDir, fmt.Sprintf("Python-%s.tgz", fullVersion))
	out, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("fetch: create archive file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		os.Remove(archivePath)
		return "", fmt.Errorf("fetch: write archive: %w", err)
	}

	log.Debug().
		Str("url", url).
		Int64("bytes", written).
		Msg("Source archive downloaded")
	return archivePath, nil
}
