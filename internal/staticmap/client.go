package staticmap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout is the default timeout for upstream fetches
const DefaultTimeout = 30 * time.Second

// Client fetches static map images over HTTP
type Client struct {
	// BaseURL is the endpoint the query string is appended to, Endpoint if empty
	BaseURL string

	// HTTPClient is the client used for fetches
	HTTPClient *http.Client
}

// NewClient returns a new Client for the static map endpoint
func NewClient() *Client {
	return &Client{
		BaseURL: Endpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Fetch performs the request and returns the raw response body and the
// reported content type. The request must have a center set.
func (c *Client) Fetch(ctx context.Context, r *Request) ([]byte, string, error) {
	base := c.BaseURL
	if base == "" {
		base = Endpoint
	}

	u, err := r.url(base)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The API returns a short plaintext explanation on errors
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, "", fmt.Errorf("map HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// Image fetches the request and decodes the response
func (c *Client) Image(ctx context.Context, r *Request) (*Image, error) {
	data, contentType, err := c.Fetch(ctx, r)
	if err != nil {
		return nil, err
	}

	return Decode(data, contentType)
}
