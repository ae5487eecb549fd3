package site

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageDiagnosis reports how a content page delivers its body, which is
// useful when the site's markup shifts and the extractor stops finding
// anything.
type PageDiagnosis struct {
	// StaticContent is set when the content div is already populated in
	// the static HTML.
	StaticContent bool
	// EmbeddedScript is set when a script tag defines the `const content`
	// variable the page renders from.
	EmbeddedScript bool
	// Excerpt holds the first part of the static content, if any.
	Excerpt string
}

const excerptLimit = 200

// Inspect fetches pageURL statically and reports where its content
// lives: rendered into the selector, embedded in script, or neither
// (browser-only).
func (c *Client) Inspect(ctx context.Context, pageURL, selector string) (*PageDiagnosis, error) {
	html, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	d := &PageDiagnosis{}
	if node := doc.Find(selector).First(); node.Length() > 0 {
		if inner, err := node.Html(); err == nil && strings.TrimSpace(inner) != "" {
			d.StaticContent = true
			d.Excerpt = inner
			if len(d.Excerpt) > excerptLimit {
				d.Excerpt = d.Excerpt[:excerptLimit]
			}
		}
	}
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(s.Text(), "const content") {
			d.EmbeddedScript = true
			return false
		}
		return true
	})
	return d, nil
}
