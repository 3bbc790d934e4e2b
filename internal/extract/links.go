// Package extract pulls article links and article text out of news HTML.
package extract

import (
	"bytes"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/rotisserie/eris"
)

// ExtractLinks applies selector to the root page and returns the set of
// absolute article URLs it points at, sorted. Relative hrefs are resolved
// against rootURL. An empty result is not an error.
func ExtractLinks(html []byte, rootURL, selector string) ([]string, error) {
	base, err := url.Parse(rootURL)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: parse root url %s", rootURL)
	}
	if !base.IsAbs() {
		return nil, eris.Errorf("extract: root url %s is not absolute", rootURL)
	}
	if _, err := cascadia.Compile(selector); err != nil {
		return nil, eris.Wrapf(err, "extract: compile selector %q", selector)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "extract: parse root html")
	}

	seen := make(map[string]struct{})
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		if link := resolveLink(base, href); link != "" {
			seen[link] = struct{}{}
		}
	})

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)
	return links, nil
}

// resolveLink turns an href into an absolute http(s) URL without fragment.
// It returns "" for hrefs that cannot point at an article.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := ref
	if !ref.IsAbs() {
		abs = base.ResolveReference(ref)
	}
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}
