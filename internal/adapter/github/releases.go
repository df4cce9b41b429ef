// Package github provides an HTTP client for the GitHub releases API.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/smarterbot/smartermcp/internal/domain/release"
	"github.com/smarterbot/smartermcp/internal/resilience"
)

const defaultBaseURL = "https://api.github.com"

// Client fetches release metadata from the GitHub API. Unauthenticated
// requests are fine for the low polling volume this service generates.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewClient creates a GitHub API client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetBaseURL overrides the API endpoint, used in tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// SetToken attaches a personal access token to raise the rate limit.
func (c *Client) SetToken(token string) {
	c.token = token
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// LatestRelease fetches the newest published release of repo ("owner/name").
func (c *Client) LatestRelease(ctx context.Context, repo string) (*release.Release, error) {
	data, err := c.doRequest(ctx, fmt.Sprintf("/repos/%s/releases/latest", repo))
	if err != nil {
		return nil, fmt.Errorf("latest release for %s: %w", repo, err)
	}

	var rel release.Release
	if err := json.Unmarshal(data, &rel); err != nil {
		return nil, fmt.Errorf("unmarshal release: %w", err)
	}
	if rel.TagName == "" {
		return nil, fmt.Errorf("release for %s has no tag", repo)
	}
	return &rel, nil
}

func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	var result []byte
	call := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("User-Agent", "smartermcp-update-checker")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 400 {
			return fmt.Errorf("github API error %d: %s", resp.StatusCode, string(data))
		}

		result = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := call(); err != nil {
		return nil, err
	}
	return result, nil
}
