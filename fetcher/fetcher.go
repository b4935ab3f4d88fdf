// Package fetcher retrieves chapter markup fragments over HTTP or from a
// local content directory.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Options configures the fetcher behavior.
type Options struct {
	// BaseURL is the content origin. A value without an http(s) scheme is
	// treated as a local directory of fragments.
	BaseURL        string
	UserAgent      string
	TimeoutSeconds int
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		UserAgent:      "Compendium/1.0 (Terminal Viewer)",
		TimeoutSeconds: 30,
	}
}

// Client fetches fragments from one content origin.
type Client struct {
	opts       Options
	httpClient *http.Client
}

// New creates a fetcher for the given options.
func New(opts Options) *Client {
	def := DefaultOptions()
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.TimeoutSeconds <= 0 {
		opts.TimeoutSeconds = def.TimeoutSeconds
	}
	return &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout: time.Duration(opts.TimeoutSeconds) * time.Second,
		},
	}
}

// Fetch retrieves the backing markup for a chapter filename. The fetch path
// is derived deterministically from the filename.
func (c *Client) Fetch(ctx context.Context, filename string) (string, error) {
	if strings.HasPrefix(c.opts.BaseURL, "http://") || strings.HasPrefix(c.opts.BaseURL, "https://") {
		return c.fetchHTTP(ctx, filename)
	}
	return c.fetchFile(filename)
}

func (c *Client) fetchHTTP(ctx context.Context, filename string) (string, error) {
	url := strings.TrimSuffix(c.opts.BaseURL, "/") + "/" + filename

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return string(body), nil
}

func (c *Client) fetchFile(filename string) (string, error) {
	path := filepath.Join(c.opts.BaseURL, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
