package httpclient

import (
	"context"
	"net/http"
	"time"
)

// ClientType represents the type of HTTP client configuration
type ClientType string

const (
	// FeedClient uses a short overall timeout, suitable for fetching feed XML
	// and episode pages
	FeedClient ClientType = "feed"

	// MediaClient has no overall timeout; audio payloads can legitimately take
	// minutes to stream and are bounded by the caller's size ceiling instead
	MediaClient ClientType = "media"
)

// UserAgent avoids 403/406 responses from podcast CDNs that reject the default
// Go User-Agent.
const UserAgent = "Mozilla/5.0 (compatible; podcast-archive/1.0)"

// HTTPClient wraps an http.Client with configuration
type HTTPClient struct {
	client     *http.Client
	clientType ClientType
}

// NewClient creates a new HTTP client with the specified type
func NewClient(clientType ClientType) *HTTPClient {
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Follow up to 10 redirects; podcast audio URLs commonly bounce
			// through several tracking hosts
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	if clientType == FeedClient {
		client.Timeout = 30 * time.Second
	}

	return &HTTPClient{
		client:     client,
		clientType: clientType,
	}
}

// Do executes an HTTP request with the standard headers set
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", UserAgent)
	return c.client.Do(req)
}

// Std exposes the configured http.Client for libraries that accept one
// directly, such as gofeed. Callers taking this path set their own
// User-Agent header.
func (c *HTTPClient) Std() *http.Client {
	return c.client
}

// Get is a convenience method for GET requests
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}
