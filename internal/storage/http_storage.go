package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPAssetFetcher fetches assets from a static file host.
type HTTPAssetFetcher struct {
	baseURL string
	client  *http.Client
	backoff time.Duration
}

// NewHTTPAssetFetcher creates a fetcher rooted at baseURL.
func NewHTTPAssetFetcher(baseURL string, timeout time.Duration) *HTTPAssetFetcher {
	transport := &http.Transport{
		// Template assets come from one host
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAssetFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		backoff: time.Second,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
	}
}

func (h *HTTPAssetFetcher) Fetch(ctx context.Context, assetPath string) (*Blob, error) {
	p, err := cleanPath(assetPath)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+p, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "Go-Shoe-Studio/1.0")

	// Retry logic (3 attempts) - only retry on transient errors
	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		resp, err = h.client.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
		}

		if err == nil && resp.StatusCode == http.StatusOK {
			break
		}

		if err == nil {
			resp.Body.Close()
			switch {
			case resp.StatusCode == http.StatusNotFound:
				return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
			case resp.StatusCode >= 400 && resp.StatusCode < 500:
				// 4xx client errors are non-retryable
				return nil, fmt.Errorf("failed to fetch %s: client error: status code %d", p, resp.StatusCode)
			default:
				lastErr = fmt.Errorf("server error: status code %d", resp.StatusCode)
			}
			resp = nil
		}

		if attempt < 2 {
			select {
			case <-time.After(time.Duration(attempt+1) * h.backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	if resp == nil {
		return nil, fmt.Errorf("failed to fetch %s after 3 attempts: %w", p, lastErr)
	}
	defer resp.Body.Close()

	return readBlob(p, resp.Body)
}
