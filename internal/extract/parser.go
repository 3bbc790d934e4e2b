package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

// Parser extracts a title and body from an article page using ordered
// candidate selectors. The first rule that matches wins.
type Parser struct {
	TitleRules []string
	BodyRules  []string
}

// NewParser builds a Parser from a site's configured rules.
func NewParser(site model.SiteConfig) *Parser {
	return &Parser{
		TitleRules: site.TitleRules(),
		BodyRules:  site.BodyRules(),
	}
}

// Parse returns the article found in html, or false when no title or body
// container matches. A false result is an expected outcome, not an error.
func (p *Parser) Parse(html []byte, pageURL string) (*model.Article, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		zap.L().Debug("extract: unparseable html", zap.String("url", pageURL), zap.Error(err))
		return nil, false
	}

	title := p.findTitle(doc)
	if title == "" {
		zap.L().Debug("extract: no title", zap.String("url", pageURL))
		return nil, false
	}

	body := p.findBody(doc)
	if body == nil {
		zap.L().Debug("extract: no body container", zap.String("url", pageURL))
		return nil, false
	}

	return &model.Article{
		Title:   norm.NFC.String(title),
		Content: norm.NFC.String(paragraphText(body)),
		URL:     pageURL,
	}, true
}

func (p *Parser) findTitle(doc *goquery.Document) string {
	for _, rule := range p.TitleRules {
		if title := strings.TrimSpace(doc.Find(rule).First().Text()); title != "" {
			return title
		}
	}
	return ""
}

func (p *Parser) findBody(doc *goquery.Document) *goquery.Selection {
	for _, rule := range p.BodyRules {
		if sel := doc.Find(rule).First(); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

// paragraphText joins the trimmed text of every <p> inside body, one per line.
func paragraphText(body *goquery.Selection) string {
	var parts []string
	body.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n")
}
