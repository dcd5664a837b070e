package alert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AcceptHeader requests the feed's structured content types
const AcceptHeader = "application/geo+json, application/json"

const maxRedirects = 10

// Fetch performs a GET following redirects and records fetch provenance.
// The returned FetchInfo holds the final URL, the response status, and the
// ordered URLs visited before the final one. A non-2xx status is not an
// error here; callers decide what a given status means.
func Fetch(ctx context.Context, client *http.Client, url, userAgent string, timeout time.Duration) (FetchInfo, []byte, error) {
	redirects := []string{}

	// Derive a per-request client so the redirect chain capture does not
	// leak between concurrent fetches.
	c := &http.Client{
		Transport: client.Transport,
		Jar:       client.Jar,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errors.New("stopped after too many redirects")
			}
			redirects = append(redirects, via[len(via)-1].URL.String())
			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return FetchInfo{}, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", AcceptHeader)

	resp, err := c.Do(req)
	if err != nil {
		return FetchInfo{}, nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchInfo{}, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	info := FetchInfo{
		FetchedURL: resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Redirects:  redirects,
	}

	return info, body, nil
}
