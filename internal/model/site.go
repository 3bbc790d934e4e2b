package model

import "net/url"

// Default candidate extraction rules, tried in order. First match wins.
var (
	DefaultTitleSelectors = []string{"h1", "h2", "h3"}
	DefaultBodySelectors  = []string{"article", "div#articleBodyContents", "div.article_body"}
)

// SiteConfig describes how to crawl one news source.
type SiteConfig struct {
	RootURL        string   `json:"root_url" yaml:"root_url" mapstructure:"root_url"`
	LinkSelector   string   `json:"link_selector" yaml:"link_selector" mapstructure:"link_selector"`
	TitleSelectors []string `json:"title_selectors,omitempty" yaml:"title_selectors" mapstructure:"title_selectors"`
	BodySelectors  []string `json:"body_selectors,omitempty" yaml:"body_selectors" mapstructure:"body_selectors"`
}

// TitleRules returns the configured title selectors or the defaults.
func (s SiteConfig) TitleRules() []string {
	if len(s.TitleSelectors) > 0 {
		return s.TitleSelectors
	}
	return DefaultTitleSelectors
}

// BodyRules returns the configured body selectors or the defaults.
func (s SiteConfig) BodyRules() []string {
	if len(s.BodySelectors) > 0 {
		return s.BodySelectors
	}
	return DefaultBodySelectors
}

// Host returns the host portion of the root URL, or the raw root URL if it
// cannot be parsed.
func (s SiteConfig) Host() string {
	u, err := url.Parse(s.RootURL)
	if err != nil || u.Host == "" {
		return s.RootURL
	}
	return u.Host
}

// RawPage is a fetched document, consumed immediately by an extractor.
type RawPage struct {
	URL  string
	Body []byte
}
