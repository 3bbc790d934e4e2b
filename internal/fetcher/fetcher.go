// Package fetcher downloads news pages over HTTP for the crawler.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
)

// Fetcher defines the interface for downloading a single page.
type Fetcher interface {
	// Fetch performs one GET and returns the UTF-8 decoded body. Any failure
	// is returned as a *FetchError.
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetchError reports a page that could not be fetched: transport error,
// timeout, non-2xx status, or an anti-bot block page. Callers treat it as
// "no data for this URL" and move on.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Block      BlockType
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Blocked reports whether the site refused the request: a detected anti-bot
// page, or a 403, 429 or 503 status.
func (e *FetchError) Blocked() bool {
	if e.Block != BlockNone {
		return true
	}
	switch e.StatusCode {
	case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	}
	return false
}
