package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/coursegrab"
	"golang.org/x/net/html"
)

// Ensure Snapshotter implements coursegrab.Snapshotter.
var _ coursegrab.Snapshotter = (*Snapshotter)(nil)

// hiddenTextSelector matches anchor children whose text is not part of the
// visible link label.
const hiddenTextSelector = ".screenreader-only, .ui-icon, .lock_icon"

// Snapshotter converts rendered markup into a PageSnapshot.
type Snapshotter struct{}

// NewSnapshotter creates a new Snapshotter.
func NewSnapshotter() *Snapshotter {
	return &Snapshotter{}
}

// Snapshot extracts the page title and every anchor with an href, in
// document order.
func (s *Snapshotter) Snapshot(markup string, pageURL string) (*coursegrab.PageSnapshot, error) {
	doc, base, err := parseDocument(markup, pageURL)
	if err != nil {
		return nil, err
	}

	snap := &coursegrab.PageSnapshot{
		URL:   pageURL,
		Title: collapse(doc.Find("title").First().Text()),
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if strings.TrimSpace(href) == "" {
			return
		}
		snap.Anchors = append(snap.Anchors, anchor(sel, resolveHref(base, href)))
	})

	return snap, nil
}

func anchor(sel *goquery.Selection, href string) coursegrab.Anchor {
	a := coursegrab.Anchor{
		Href:      href,
		Text:      visibleText(sel),
		OwnText:   ownText(sel),
		ItemTitle: collapse(sel.Find(".ig-title").First().Text()),
		NameLabel: collapse(sel.Find("span.ef-name").First().Text()),
		Attrs:     make(map[string]string),
		Wrapper:   wrapper(sel),
	}
	for _, attr := range sel.Nodes[0].Attr {
		a.Attrs[strings.ToLower(attr.Key)] = attr.Val
	}
	if class, ok := sel.Attr("class"); ok {
		a.Classes = strings.Fields(class)
	}
	return a
}

// visibleText returns the anchor's text without screen-reader and icon
// children.
func visibleText(sel *goquery.Selection) string {
	clone := sel.Clone()
	clone.Find(hiddenTextSelector).Remove()
	return collapse(clone.Text())
}

// ownText returns the first non-blank text node that is a direct child of
// the anchor.
func ownText(sel *goquery.Selection) string {
	var text string
	sel.Contents().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if c.Nodes[0].Type != html.TextNode {
			return true
		}
		text = collapse(c.Nodes[0].Data)
		return text == ""
	})
	return text
}

// wrapper finds the closest recognized content container of an anchor.
func wrapper(sel *goquery.Selection) coursegrab.Wrapper {
	if item := sel.Closest("li.context_module_item"); item.Length() > 0 {
		itemType, _ := item.Attr("data-item-type")
		return coursegrab.Wrapper{Kind: coursegrab.WrapperModuleItem, ItemType: itemType}
	}
	if sel.Closest(".user_content").Length() > 0 {
		return coursegrab.Wrapper{Kind: coursegrab.WrapperUserContent}
	}
	if sel.Closest(".wiki_content").Length() > 0 {
		return coursegrab.Wrapper{Kind: coursegrab.WrapperWikiContent}
	}
	return coursegrab.Wrapper{}
}
