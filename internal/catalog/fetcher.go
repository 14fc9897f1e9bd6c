package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxResponseBytes caps the catalog body read into memory.
const maxResponseBytes = 32 << 20

var (
	// ErrUnexpectedStatus is returned for non-200 catalog responses.
	ErrUnexpectedStatus = errors.New("unexpected catalog response status")
	// ErrResponseTooLarge is returned when the body exceeds the read limit.
	ErrResponseTooLarge = errors.New("catalog response too large")
)

// Fetcher retrieves the raw product collection.
type Fetcher interface {
	FetchProducts(ctx context.Context) ([]byte, error)
}

// HTTPFetcher issues one GET to a fixed catalog URL.
type HTTPFetcher struct {
	client   *http.Client
	url      string
	maxBytes int64
}

// NewHTTPFetcher creates a fetcher for url. A nil client means a plain
// http.Client without timeout; the request is bounded only by ctx.
func NewHTTPFetcher(url string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPFetcher{client: client, url: url, maxBytes: maxResponseBytes}
}

// WithMaxBytes overrides the body size limit.
func (f *HTTPFetcher) WithMaxBytes(n int64) *HTTPFetcher {
	f.maxBytes = n
	return f
}

// FetchProducts downloads the catalog body.
func (f *HTTPFetcher) FetchProducts(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	// One byte past the limit tells a full body from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, f.maxBytes)
	}
	return body, nil
}
