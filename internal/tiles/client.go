package tiles

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxCapabilitiesSize bounds the document read from a server
const maxCapabilitiesSize = 16 << 20

// StatusError is returned for a non-2xx capabilities response
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// CapabilitiesResult is a parsed document together with its layer list
type CapabilitiesResult struct {
	Capabilities *Capabilities
	Layers       []LayerInfo
}

// Client fetches WMTS capability documents
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client; a nil httpClient gets a 30 second timeout
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{httpClient: httpClient}
}

// FetchCapabilities makes one GET request for url and parses the response. It does not retry.
func (c *Client) FetchCapabilities(ctx context.Context, url string) (*CapabilitiesResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build capabilities request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: statusText(resp)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCapabilitiesSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read capabilities: %w", err)
	}

	caps, err := ParseCapabilities(data)
	if err != nil {
		return nil, err
	}
	return &CapabilitiesResult{Capabilities: caps, Layers: caps.Layers()}, nil
}

// statusText strips the code from resp.Status ("404 Not Found" -> "Not Found")
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
