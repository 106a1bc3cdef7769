package coursegrab

import "slices"

// WrapperKind identifies the content container an anchor was found in.
type WrapperKind int

// Content containers recognized by the classifier.
const (
	WrapperNone WrapperKind = iota
	WrapperModuleItem
	WrapperUserContent
	WrapperWikiContent
)

// Wrapper describes the closest recognized container enclosing an anchor.
// ItemType is only set for module items (e.g. "Assignment", "Page").
type Wrapper struct {
	Kind     WrapperKind
	ItemType string
}

// Anchor is the fixed set of facts about one hyperlink that classification
// needs. It is produced by a Snapshotter and never refers back to a live DOM.
type Anchor struct {
	// Href is the absolute target address, or the raw value for
	// non-hierarchical schemes such as "javascript:".
	Href string

	// Text is the visible text, excluding screen-reader and icon children.
	Text string

	// OwnText is the concatenation of the anchor's direct text nodes.
	OwnText string

	// ItemTitle is the text of a nested module-item title element.
	ItemTitle string

	// NameLabel is the text of a nested file-name display element.
	NameLabel string

	Attrs   map[string]string
	Classes []string
	Wrapper Wrapper
}

// Attr returns the value of an attribute and whether it is present.
func (a *Anchor) Attr(name string) (string, bool) {
	v, ok := a.Attrs[name]
	return v, ok
}

// HasClass reports whether the anchor carries the class.
func (a *Anchor) HasClass(class string) bool {
	return slices.Contains(a.Classes, class)
}

// PageSnapshot is a capability-limited view of a rendered page: its address,
// title and anchors.
type PageSnapshot struct {
	URL     string
	Title   string
	Anchors []Anchor
}

// Snapshotter converts rendered markup into a PageSnapshot.
type Snapshotter interface {
	Snapshot(html string, pageURL string) (*PageSnapshot, error)
}
