// scraper/fetcher.go
package scraper

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// StatusConnError is the sentinel status recorded when the fetch never
// produced an HTTP response (DNS failure, refused connection, timeout).
// It is distinct from every real HTTP status code.
const StatusConnError = -1

// Fetcher performs the network request for one target URL.
type Fetcher interface {
	Fetch(url string) (statusCode int, body string, err error)
}

// HTTPFetcher fetches pages with a bounded per-request timeout.
type HTTPFetcher struct {
	client http.Client
}

// NewHTTPFetcher returns a fetcher whose requests are cut off after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPFetcher{client: http.Client{Timeout: timeout}}
}

// Fetch performs a GET against the URL. The body is returned only for a
// 200 response; for any other status the body is dropped and only the code
// is reported.
func (f *HTTPFetcher) Fetch(url string) (int, string, error) {
	resp, err := f.client.Get(url)
	if err != nil {
		return 0, "", fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, "", nil
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("failed to read response body from %s: %w", url, err)
	}
	return resp.StatusCode, string(bodyBytes), nil
}
