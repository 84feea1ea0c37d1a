package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client fetches the national fuel price feed.
type Client struct {
	url  string
	http *http.Client
}

// NewClient returns a Client for the given feed URL.
func NewClient(url string) *Client {
	return &Client{
		url: url,
		http: &http.Client{
			Timeout: 2 * time.Minute, // the full export is tens of MB
		},
	}
}

// Fetch downloads and decodes the feed. Any network, status or decode
// failure is returned as an error; callers log it and abort the run.
func (c *Client) Fetch(ctx context.Context) ([]Station, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("feed: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed: GET %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feed: GET %s: unexpected status %d", c.url, resp.StatusCode)
	}

	var stations []Station
	if err := json.NewDecoder(resp.Body).Decode(&stations); err != nil {
		return nil, fmt.Errorf("feed: decode response: %w", err)
	}
	return stations, nil
}
