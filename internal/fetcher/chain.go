package fetcher

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/pkg/firecrawl"
)

// Chain fetches through a primary Fetcher and retries blocked pages through
// Firecrawl. Other failures are returned unchanged.
type Chain struct {
	primary Fetcher
	fc      firecrawl.Client
	waitFor int
}

// NewChain wraps primary with a Firecrawl fallback. waitForMs is passed to
// Firecrawl for pages that render client-side.
func NewChain(primary Fetcher, fc firecrawl.Client, waitForMs int) *Chain {
	return &Chain{primary: primary, fc: fc, waitFor: waitForMs}
}

// Fetch implements Fetcher.
func (c *Chain) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, err := c.primary.Fetch(ctx, url)
	if err == nil {
		return body, nil
	}

	var fe *FetchError
	if !errors.As(err, &fe) || !fe.Blocked() || ctx.Err() != nil {
		return nil, err
	}

	zap.L().Debug("fetcher: primary blocked, trying firecrawl",
		zap.String("url", url),
		zap.Int("status", fe.StatusCode),
		zap.String("block", string(fe.Block)),
	)

	resp, fcErr := c.fc.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:     url,
		Formats: []string{firecrawl.FormatRawHTML},
		WaitFor: c.waitFor,
	})
	if fcErr != nil {
		return nil, &FetchError{URL: url, StatusCode: fe.StatusCode, Block: fe.Block, Cause: eris.Wrap(fcErr, "firecrawl fallback")}
	}

	html := resp.Data.RawHTML
	if html == "" {
		html = resp.Data.HTML
	}
	if html == "" {
		return nil, &FetchError{URL: url, StatusCode: fe.StatusCode, Block: fe.Block, Cause: eris.New("firecrawl fallback: empty page")}
	}
	return []byte(html), nil
}
