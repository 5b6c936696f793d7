package support

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/odvcencio/wdrive/pkg/webdriver"
)

// PageDocument parses the current page source.
func PageDocument(ctx context.Context, s *webdriver.Session) (*goquery.Document, error) {
	src, err := s.PageSource(ctx)
	if err != nil {
		return nil, err
	}
	return parse(src)
}

// ElementDocument parses the outer HTML of el.
func ElementDocument(ctx context.Context, el *webdriver.Element) (*goquery.Document, error) {
	v, err := el.Property(ctx, "outerHTML")
	if err != nil {
		return nil, err
	}
	html, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: outerHTML is %T", webdriver.ErrProtocol, v)
	}
	return parse(html)
}

func parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// Link is an anchor found in a document.
type Link struct {
	Text string
	Href string
}

// Links lists anchors with an href, in document order.
func Links(doc *goquery.Document) []Link {
	var out []Link
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		out = append(out, Link{Text: strings.TrimSpace(a.Text()), Href: href})
	})
	return out
}

// Texts returns the trimmed text of every node matching selector.
func Texts(doc *goquery.Document, selector string) []string {
	var out []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}
