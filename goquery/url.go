package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/coursegrab"
)

// parseDocument parses html and determines the base URL that relative
// links resolve against, honoring a <base href> element.
func parseDocument(html, pageURL string) (*goquery.Document, *url.URL, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil, coursegrab.Errorf(coursegrab.EINVALID, "invalid page URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, coursegrab.Errorf(coursegrab.EINVALID, "failed to parse HTML: %v", err)
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(ref)
		}
	}
	return doc, base, nil
}

// resolveHref resolves href against base. Opaque references such as
// "javascript:" and "mailto:" are returned unchanged.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.Opaque != "" {
		return href
	}
	return base.ResolveReference(ref).String()
}

// collapse trims s and collapses inner whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
