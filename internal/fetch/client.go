// Package fetch retrieves rendered wiki pages through the MediaWiki action
// API and prepares them for parsing: boilerplate cleanup and conversion to
// markdown.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Client talks to a MediaWiki action API endpoint.
type Client struct {
	apiURL       string
	userAgent    string
	maxRedirects int
	httpClient   *http.Client
	log          *slog.Logger
}

func NewClient(apiURL, userAgent string, maxRedirects int, log *slog.Logger) *Client {
	if maxRedirects <= 0 {
		maxRedirects = 5
	}
	return &Client{
		apiURL:       apiURL,
		userAgent:    userAgent,
		maxRedirects: maxRedirects,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		log: log,
	}
}

// PageRevID returns the latest revision id of the page.
func (c *Client) PageRevID(ctx context.Context, title string) (int64, error) {
	params := url.Values{
		"action": {"query"},
		"titles": {title},
		"prop":   {"revisions"},
		"rvprop": {"ids"},
		"format": {"json"},
	}
	body, err := c.get(ctx, params)
	if err != nil {
		return 0, err
	}

	var resp struct {
		Query struct {
			Pages map[string]struct {
				Revisions []struct {
					RevID int64 `json:"revid"`
				} `json:"revisions"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("decode revision response for %q: %w", title, err)
	}
	for _, page := range resp.Query.Pages {
		if len(page.Revisions) > 0 {
			return page.Revisions[0].RevID, nil
		}
	}
	return 0, fmt.Errorf("no revision found for %q", title)
}

// PageHTML fetches the rendered HTML of a page and cleans it. Wiki redirect
// stubs are followed up to the configured depth.
func (c *Client) PageHTML(ctx context.Context, title string) (string, error) {
	return c.pageHTML(ctx, title, 0)
}

func (c *Client) pageHTML(ctx context.Context, title string, depth int) (string, error) {
	if depth > c.maxRedirects {
		return "", fmt.Errorf("too many redirects fetching %q", title)
	}

	params := url.Values{
		"action": {"parse"},
		"page":   {title},
		"format": {"json"},
	}
	body, err := c.get(ctx, params)
	if err != nil {
		return "", err
	}

	var resp struct {
		Parse struct {
			Text map[string]string `json:"text"`
		} `json:"parse"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode parse response for %q: %w", title, err)
	}
	raw := resp.Parse.Text["*"]
	if raw == "" {
		return "", fmt.Errorf("page %q has no rendered text", title)
	}

	if target := redirectTarget(raw); target != "" {
		c.log.Info("following wiki redirect", "from", title, "to", target)
		return c.pageHTML(ctx, target, depth+1)
	}

	cleaned, err := Clean(raw)
	if err != nil {
		return "", fmt.Errorf("clean page %q: %w", title, err)
	}
	return cleaned, nil
}

// get performs one API request. Transport failures and upstream 5xx are
// wrapped as retryable.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("wiki api request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, &RetryableError{Err: fmt.Errorf("wiki api status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wiki api status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("read wiki api response: %w", err)}
	}
	return body, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
